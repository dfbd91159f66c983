package dialog

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/SIDHANTH-S/Voigent/internal/facts"
	"github.com/SIDHANTH-S/Voigent/internal/metrics"
)

func defaultPick(n int) int { return rand.IntN(n) }

// canonicalTopics is the fixed list the contextual-help suggestion logic
// diffs against the discussed-topics set.
var canonicalTopics = []string{"revenue", "expenses", "customers", "inventory", "profit", "risks", "opportunities"}

// Responder turns an intent plus a metrics snapshot into reply text. Each
// intent has a bank of equivalent phrasings; every entry in a bank carries the
// same facts, so the chooser only affects wording, never content.
type Responder struct {
	store *facts.Store
	pick  func(n int) int
}

// NewResponder builds a responder. pick selects an index in [0,n) from a bank
// of n phrasings; pass nil for the default random source. Tests inject a
// fixed chooser for exact-output assertions.
func NewResponder(store *facts.Store, pick func(n int) int) *Responder {
	if pick == nil {
		pick = defaultPick
	}
	return &Responder{store: store, pick: pick}
}

func (r *Responder) choose(bank []string) string {
	return bank[r.pick(len(bank))]
}

var openings = []string{
	"Hey! Just pulled up your latest numbers. What would you like to know?",
	"Hi there! I've been looking at how things are going - want the highlights or got something specific in mind?",
	"Hello! Your business data's all updated. What's on your mind today?",
	"Hey! I'm all caught up with your numbers. Revenue, customers, inventory - what interests you?",
	"Hi! Just synced with your business data. Anything particular you want to dig into?",
}

// Opening returns a conversation opener; used both for the greeting intent
// and for session start before any user utterance exists.
func (r *Responder) Opening() string {
	return r.choose(openings)
}

// Generate produces the reply for a locally handled intent. turns is the
// transcript length including the current user turn. Greeting mutates memory
// (clears topic tracking); everything else only reads it.
func (r *Responder) Generate(intent Intent, snap metrics.Snapshot, utterance string, mem *Memory, turns int) string {
	input := strings.ToLower(utterance)

	switch intent.Kind {
	case Greeting:
		mem.ClearTopics()
		return r.Opening()
	case Overview:
		return r.overview(snap)
	case Financial:
		return r.financial(input, snap)
	case Inventory:
		return r.inventory(input, snap)
	case Customers:
		return r.customers(input, snap)
	case Expense:
		return r.expenses(snap)
	case Revenue:
		return r.revenue(snap)
	case Profit:
		return r.profit(snap)
	case Problems:
		return r.problems(snap)
	case GoodNews:
		return r.goodNews(snap)
	case Risk:
		return r.risks(snap)
	case Opportunity:
		return r.opportunities(snap)
	case SpecificCustomer:
		return r.specificCustomer(intent.Customer, mem)
	case FollowUp:
		return r.followUp(input, snap, mem, turns)
	case Goodbye:
		return r.goodbyeMessage(snap, mem)
	default:
		return r.contextualHelp(mem, turns)
	}
}

func (r *Responder) overview(snap metrics.Snapshot) string {
	o := r.store.Overview
	revenue := metrics.Thousands(o.TotalRevenueRecent)
	expenses := metrics.Thousands(o.TotalExpensesRecent)
	profit := metrics.Thousands(o.NetProfitRecent)
	margin := metrics.Pct(snap.ProfitMargin)

	benchmark := metrics.Pct(r.store.Overview.Benchmarks.AvgProfitMargin)

	// Every benchmark comparison switches to neutral phrasing when the
	// margin is at or below the industry average.
	benchmarkClause := "right in line with industry standards"
	beatsClause := "which is right around the industry average"
	marginClause := fmt.Sprintf("That %s%% profit margin is right around the typical %s%%.", margin, benchmark)
	marginVerdict := fmt.Sprintf("Your %s%% margin is about par for retail.", margin)
	if snap.MarginVsBenchmark > 0 {
		delta := metrics.Points(snap.MarginVsBenchmark)
		benchmarkClause = delta + " points better than industry standards"
		beatsClause = fmt.Sprintf("which beats the industry average by a solid %s points", delta)
		marginClause = fmt.Sprintf("That %s%% profit margin is really healthy - way above the typical %s%%.", margin, benchmark)
		marginVerdict = fmt.Sprintf("Your %s%% margin is excellent for retail.", margin)
	}

	return r.choose([]string{
		fmt.Sprintf("Business is looking pretty strong actually. You're clearing %s in profit on %s revenue - that's a %s%% margin, %s.",
			profit, revenue, margin, beatsClause),
		fmt.Sprintf("Things are going well! Recent numbers show %s in revenue with about %s in expenses, netting you %s. %s",
			revenue, expenses, profit, marginClause),
		fmt.Sprintf("Pretty solid overall. You've pulled in %s recently, spent %s, and pocketed about %s. %s",
			revenue, expenses, profit, marginVerdict),
		fmt.Sprintf("You're in good shape! Revenue of %s with %s profit means you're keeping %s%% of every rupee. That's %s.",
			revenue, profit, margin, benchmarkClause),
	})
}

func (r *Responder) financial(input string, snap metrics.Snapshot) string {
	o := r.store.Overview
	margin := metrics.Pct(snap.ProfitMargin)
	delta := metrics.Points(snap.MarginVsBenchmark)

	if strings.Contains(input, "margin") || strings.Contains(input, "profitable") {
		return r.choose([]string{
			fmt.Sprintf("Your profit margin is sitting at %s%%, which is really healthy for retail. Industry average is around 45%%, so you're doing %s points better. Nice work keeping costs under control.", margin, delta),
			fmt.Sprintf("That margin is strong - %s%%. You're keeping about %.2f rupees of every rupee after expenses, which beats most retail businesses.", margin, snap.ProfitMargin/100),
			fmt.Sprintf("%s%% profit margin - that's excellent actually. Most retailers are lucky to see 45%%, so you're outperforming the benchmark by %s points.", margin, delta),
		})
	}

	return r.choose([]string{
		fmt.Sprintf("Financially, you're in solid shape. Revenue at %s, expenses at %s, netting %s. That's a %s%% margin, which is %s points above industry average.",
			metrics.Thousands(o.TotalRevenueRecent), metrics.Thousands(o.TotalExpensesRecent), metrics.Thousands(o.NetProfitRecent), margin, delta),
		fmt.Sprintf("The numbers look good. You're spending about %s%% of revenue on expenses and keeping %s%% as profit. That efficiency is well above what most retailers manage.",
			metrics.Pct(snap.ExpenseRatio), margin),
		fmt.Sprintf("Strong financial position - %s profit on %s revenue. Your %s%% margin tells me you're managing costs really well.",
			metrics.Thousands(o.NetProfitRecent), metrics.Thousands(o.TotalRevenueRecent), margin),
	})
}

// outOfStockNames joins the short spoken names of out-of-stock products.
func (r *Responder) outOfStockNames() string {
	names := make([]string, 0, len(r.store.Products.OutOfStock))
	for _, p := range r.store.Products.OutOfStock {
		names = append(names, p.DisplayName)
	}
	return joinAnd(names)
}

func (r *Responder) inventory(input string, snap metrics.Snapshot) string {
	oos := r.store.Products.OutOfStock
	names := r.outOfStockNames()
	loss := metrics.Rupees(snap.EstimatedWeeklyLoss)

	if strings.Contains(input, "critical") || strings.Contains(input, "urgent") || strings.Contains(input, "immediate") {
		return fmt.Sprintf("You've got %d items completely out - %s. Between them, that's probably costing you %s a week in lost sales. I'd prioritize getting those restocked ASAP.",
			len(oos), names, loss)
	}

	bank := []string{
		fmt.Sprintf("You've got %d items completely out of stock right now - %s. That's probably costing you around %s a week. Everything else looks decent, though %d items are near their reorder points.",
			len(oos), names, loss, len(snap.CriticalStock)),
		fmt.Sprintf("%d items need immediate attention - %s are at zero. Based on their usual sales velocity, every week they're out is lost revenue. I'm also seeing %d items getting low, under 50 units each.",
			len(oos), names, len(snap.LowStock)),
		fmt.Sprintf("Your inventory health score is %s%%. The main issue is those %d out-of-stock items - %s. Get those restocked and you're back in good shape. %d items are well-stocked above 150 units.",
			metrics.Score(snap.InventoryHealth), len(oos), names, len(snap.WellStocked)),
	}
	if len(oos) >= 2 {
		bank = append(bank, fmt.Sprintf("Yeah, two items hit zero - the %s and %s. With those normally moving about %d and %d units weekly, you're missing sales every day they're out. Plus %d other items are running under 50 units.",
			oos[0].DisplayName, oos[1].DisplayName, oos[0].AvgWeeklySales, oos[1].AvgWeeklySales, len(snap.LowStock)))
	}
	return r.choose(bank)
}

func (r *Responder) customers(input string, snap metrics.Snapshot) string {
	cs := r.store.Customers
	if len(cs) < 3 {
		return r.contextualHelp(NewMemory(), 0)
	}
	top3 := metrics.Pct(snap.Top3Percentage)

	if strings.Contains(input, "best") || strings.Contains(input, "top") || strings.Contains(input, "biggest") || strings.Contains(input, "main") {
		return r.choose([]string{
			fmt.Sprintf("Definitely %s - they're your anchor customer at %s. %s and %s round out the top 3. Together, those three account for %s%% of your revenue, so keeping them happy is critical.",
				cs[0].Name, metrics.Thousands(cs[0].Revenue), cs[1].Name, cs[2].Name, top3),
			fmt.Sprintf("%s is your MVP by far - %s in revenue. Add in %s at %s and %s at %s, and those three are basically carrying %s%% of your business.",
				cs[0].Name, metrics.Thousands(cs[0].Revenue), cs[1].Name, metrics.Thousands(cs[1].Revenue), cs[2].Name, metrics.Thousands(cs[2].Revenue), top3),
			fmt.Sprintf("Your top customer is %s hands down - %s, which is more than double your #2. Your top 3 together represent %s%% of revenue, so they're worth extra attention.",
				cs[0].Name, metrics.Thousands(cs[0].Revenue), top3),
		})
	}

	if strings.Contains(input, "risk") || strings.Contains(input, "worry") || strings.Contains(input, "concern") {
		return fmt.Sprintf("You've got %d customers I'd call at-risk - %s. They haven't ordered recently, which might mean they're going elsewhere. Worth a quick check-in to keep those relationships warm.",
			len(snap.AtRisk), joinNames(snap.AtRisk))
	}

	total := r.store.Overview.TotalActiveCustomers
	return r.choose([]string{
		fmt.Sprintf("You've got %d active customers, but it's really a tale of two groups. Your top 3 bring in %s%% of revenue - that's heavy concentration. The good news is %s at %s is stable and loyal.",
			total, top3, cs[0].Name, metrics.Thousands(cs[0].Revenue)),
		fmt.Sprintf("Customer base is %d strong, with %d showing growth. The concentration risk is real though - %s%% from your top 3 means you need to keep them very happy. Average customer value is %s.",
			total, len(snap.Growing), top3, metrics.Rupees(snap.AvgCustomerValue)),
		fmt.Sprintf("Looking at your customer spread, it's pretty top-heavy. %s alone is %s, and your top 3 make up %s%% of everything. That's both good news - they're loyal - and a dependency worth managing.",
			cs[0].Name, metrics.Thousands(cs[0].Revenue), top3),
	})
}

func (r *Responder) expenses(snap metrics.Snapshot) string {
	total := metrics.Thousands(r.store.Expenses.Total)
	salaries := metrics.Thousands(snap.SalaryExpenses)
	salaryPct := metrics.Pct(snap.SalaryPercentage)
	rent := metrics.Thousands(r.store.Expenses.CategoryTotal("rent"))

	return r.choose([]string{
		fmt.Sprintf("Salaries dominate your expenses at %s - that's %s%% of your total %s spend. Then you've got rent at %s, utilities around ₹6k, and smaller amounts for marketing and transportation. Pretty standard cost structure for retail.",
			salaries, salaryPct, total, rent),
		fmt.Sprintf("Most of it's going to your team - %s in salaries, about %s%% of total expenses. Add %s rent and ₹6k utilities, and you're at ₹90k in fixed costs. The rest is marketing, transport, and supplies - all variable.",
			salaries, salaryPct, rent),
		fmt.Sprintf("Your biggest line item is definitely people - %s in salaries (%s%%). Rent's %s, utilities ₹6k. Together, your fixed costs are about %s monthly, with %s in variables like marketing and delivery.",
			salaries, salaryPct, rent, metrics.Thousands(snap.FixedCosts), metrics.Thousands(snap.VariableCosts)),
		fmt.Sprintf("Breaking it down: %s for salaries (%s%%), %s rent, ₹6k utilities - that's mostly fixed. You're spending about %s%% of revenue on expenses total, which is pretty efficient.",
			salaries, salaryPct, rent, metrics.Pct(snap.ExpenseRatio)),
	})
}

func (r *Responder) revenue(snap metrics.Snapshot) string {
	o := r.store.Overview
	allTime := metrics.Lakhs(o.TotalRevenueAllTime)
	recent := metrics.Thousands(o.TotalRevenueRecent)
	avg := metrics.Rupees(snap.AvgCustomerValue)

	return r.choose([]string{
		fmt.Sprintf("Your all-time revenue is %s across %d customers. For the recent period, it's %s, which works out to an average of about %s per customer lifetime value.",
			allTime, o.TotalActiveCustomers, recent, avg),
		fmt.Sprintf("You've pulled in %s total, with %s coming in recently. Average customer value sits at %s, though your top 3 customers pull that number way up.",
			allTime, recent, avg),
		fmt.Sprintf("Recent revenue of %s puts you on track for strong continued performance. All-time you're at %s. With %d customers, that's %s average lifetime value.",
			recent, allTime, o.TotalActiveCustomers, avg),
	})
}

func (r *Responder) profit(snap metrics.Snapshot) string {
	o := r.store.Overview
	allTime := metrics.Lakhs(o.TotalProfitAllTime)
	recent := metrics.Thousands(o.NetProfitRecent)
	margin := metrics.Pct(snap.ProfitMargin)
	delta := metrics.Points(snap.MarginVsBenchmark)

	return r.choose([]string{
		fmt.Sprintf("You've made %s all-time. Recently, net profit is %s with a %s%% margin - that's actually %s points better than typical retail margins. Really solid performance.",
			allTime, recent, margin, delta),
		fmt.Sprintf("Profit picture looks good - %s recently on a %s%% margin. That beats the industry standard of 45%% by %s points. All-time you're at %s.",
			recent, margin, delta, allTime),
		fmt.Sprintf("Your %s%% profit margin is excellent - way above the 45%% industry benchmark. You're netting %s recently, with %s lifetime. You're doing something right with cost control.",
			margin, recent, allTime),
	})
}

func (r *Responder) problems(snap metrics.Snapshot) string {
	var issues []string

	if snap.OutOfStockCount > 0 {
		issues = append(issues, fmt.Sprintf("%d out-of-stock items costing you roughly %s weekly",
			snap.OutOfStockCount, metrics.Rupees(snap.EstimatedWeeklyLoss)))
	}
	if snap.Top3Percentage > 70 {
		issues = append(issues, fmt.Sprintf("heavy customer concentration at %s%% from top 3", metrics.Pct(snap.Top3Percentage)))
	}
	if len(snap.AtRisk) > 0 {
		issues = append(issues, fmt.Sprintf("%d customers haven't ordered recently", len(snap.AtRisk)))
	}

	if len(issues) == 0 {
		return "Honestly, things look pretty clean. No major red flags jumping out. Your margins are healthy, inventory's mostly in good shape, and customers are active. Just keep doing what you're doing."
	}

	extra := ""
	if len(issues) > 1 {
		extra = " Also, " + strings.Join(issues[1:], " and ") + "."
	}
	return fmt.Sprintf("Main thing to watch is %s.%s Otherwise, your business fundamentals are solid - good margins, controlled expenses.", issues[0], extra)
}

func (r *Responder) goodNews(snap metrics.Snapshot) string {
	var wins []string

	if snap.MarginVsBenchmark > 10 {
		wins = append(wins, fmt.Sprintf("your %s%% profit margin crushes the industry average by %s points",
			metrics.Pct(snap.ProfitMargin), metrics.Points(snap.MarginVsBenchmark)))
	}
	if len(snap.Growing) > 0 {
		wins = append(wins, fmt.Sprintf("%d customers showing growth", len(snap.Growing)))
	}
	if snap.ExpenseRatio < 35 {
		wins = append(wins, fmt.Sprintf("expenses only %s%% of revenue - that's super efficient", metrics.Pct(snap.ExpenseRatio)))
	}

	if len(wins) == 0 {
		wins = append(wins,
			fmt.Sprintf("solid %s%% profit margin", metrics.Pct(snap.ProfitMargin)),
			fmt.Sprintf("%d active customer relationships", r.store.Overview.TotalActiveCustomers))
	}

	rest := ""
	if len(wins) > 1 {
		rest = " Plus, " + strings.Join(wins[1:], ", ") + "."
	}
	return fmt.Sprintf("Great question! Here's what's working: %s.%s Your financial health score is %s/100, which is strong.",
		wins[0], rest, metrics.Score(snap.FinancialHealth))
}

func (r *Responder) risks(snap metrics.Snapshot) string {
	var risks []string

	if snap.Top3Percentage > 70 {
		risks = append(risks, fmt.Sprintf("Customer concentration is your biggest risk - %s%% from top 3 customers means if any of them reduce orders, it hits hard", metrics.Pct(snap.Top3Percentage)))
	}
	if len(snap.AtRisk) > 0 {
		risks = append(risks, fmt.Sprintf("%d customers haven't ordered recently - might be drifting away", len(snap.AtRisk)))
	}
	if snap.OutOfStockCount > 0 {
		risks = append(risks, fmt.Sprintf("Out-of-stock items losing you %s weekly in revenue", metrics.Rupees(snap.EstimatedWeeklyLoss)))
	}

	if len(risks) == 0 {
		return "Your risk profile is actually pretty low. Customer base is active, margins are healthy, and you're not over-leveraged on any single dependency. Keep monitoring those inventory levels and you're in good shape."
	}

	rest := ""
	if len(risks) > 1 {
		rest = " Also, " + strings.Join(risks[1:], ". ") + "."
	}
	return fmt.Sprintf("%s.%s That said, your strong margins give you buffer to handle these.", risks[0], rest)
}

func (r *Responder) opportunities(snap metrics.Snapshot) string {
	var opps []string

	if snap.ProfitMargin > 60 {
		opps = append(opps, fmt.Sprintf("With %s%% margins, you could afford to invest more in marketing to grow your customer base", metrics.Pct(snap.ProfitMargin)))
	}
	if len(snap.AtRisk) > 0 {
		var atRiskRevenue float64
		for _, c := range snap.AtRisk {
			atRiskRevenue += c.Revenue
		}
		opps = append(opps, fmt.Sprintf("Re-engaging those %d at-risk customers could add back %s in revenue",
			len(snap.AtRisk), metrics.Thousands(atRiskRevenue)))
	}
	if snap.Top3Percentage > 70 {
		opps = append(opps, "Diversifying beyond your top 3 customers would reduce concentration risk and stabilize revenue")
	}
	lowValue := 0
	for _, c := range r.store.Customers {
		if c.Segment == facts.SegmentLow {
			lowValue++
		}
	}
	if lowValue > 0 {
		opps = append(opps, "Your low-value customers have potential - focused attention could move them up to medium or high value")
	}

	if len(opps) == 0 {
		return "Main opportunity I see is leveraging your strong margins to grow. You could invest in marketing, expand inventory, or even offer better payment terms to attract larger customers. Your fundamentals support growth."
	}

	second := ""
	if len(opps) > 1 {
		second = " " + opps[1] + "."
	}
	return fmt.Sprintf("%s.%s Your strong financial position gives you room to invest in growth.", opps[0], second)
}

func (r *Responder) specificCustomer(name string, mem *Memory) string {
	var customer *facts.Customer
	for i := range r.store.Customers {
		if r.store.Customers[i].Name == name {
			customer = &r.store.Customers[i]
			break
		}
	}
	if customer == nil {
		return "Hmm, I don't have specific info on that customer in my data. Want to know about your top performers or at-risk customers instead?"
	}

	mem.SetLastEntity(customer.Name)
	days := r.daysSinceOrder(customer.LastOrderDate)

	attention := "worth some attention"
	if customer.RiskLevel == facts.RiskLow {
		attention = "looking solid"
	}

	var trendClause string
	switch customer.GrowthTrend {
	case facts.TrendGrowing:
		trendClause = "They're growing, which is great."
	case facts.TrendAtRisk:
		trendClause = fmt.Sprintf("Haven't ordered in %d days though - might need a check-in.", days)
	default:
		trendClause = "Pretty stable customer."
	}

	return r.choose([]string{
		fmt.Sprintf("%s is a %s customer who's brought in %s with %s profit. They ordered %d days ago and trend is %s. Definitely worth keeping happy.",
			customer.Name, strings.ToLower(string(customer.Segment)), metrics.Thousands(customer.Revenue), metrics.Thousands(customer.Profit), days, customer.GrowthTrend),
		fmt.Sprintf("%s - %s revenue, %s profit, %s segment. Last order was %d days back. They're %s, so %s.",
			customer.Name, metrics.Thousands(customer.Revenue), metrics.Thousands(customer.Profit), strings.ToLower(string(customer.Segment)), days, customer.GrowthTrend, attention),
		fmt.Sprintf("Let me check... %s has generated %s for you with %d orders (%s avg). %s",
			customer.Name, metrics.Thousands(customer.Revenue), customer.Orders, metrics.Rupees(customer.AvgOrderValue), trendClause),
	})
}

func (r *Responder) followUp(input string, snap metrics.Snapshot, mem *Memory, turns int) string {
	lastTopic := mem.LastTopic()
	cs := r.store.Customers

	if strings.Contains(input, "more") || strings.Contains(input, "tell me") || strings.Contains(input, "what about") || strings.Contains(input, "also") {
		switch lastTopic {
		case "overview":
			return fmt.Sprintf("Digging a bit deeper into that overview: financial health is %s/100 and inventory health %s%%. The one dependency worth watching is your top 3 customers at %s%% of revenue.",
				metrics.Score(snap.FinancialHealth), metrics.Score(snap.InventoryHealth), metrics.Pct(snap.Top3Percentage))
		case "customers":
			if len(cs) >= 5 {
				reply := fmt.Sprintf("After the top 3, you've got %s at %s and %s at %s. Both are solid performers.",
					cs[3].Name, metrics.Thousands(cs[3].Revenue), cs[4].Name, metrics.Thousands(cs[4].Revenue))
				if cs[4].Revenue > 0 {
					if m := cs[4].Profit / cs[4].Revenue * 100; m >= 50 {
						reply += fmt.Sprintf(" %s has a really nice %s%% profit margin, actually.", cs[4].Name, metrics.Pct(m))
					}
				}
				return reply
			}
		case "inventory":
			if len(snap.WellStocked) >= 3 {
				w := snap.WellStocked
				return fmt.Sprintf("Your best-stocked items are %s at %d units, %s at %d, and %s at %d. You're in excellent shape on those - no worry about running out anytime soon.",
					w[0].Name, w[0].Stock, w[1].Name, w[1].Stock, w[2].Name, w[2].Stock)
			}
		case "expenses":
			return fmt.Sprintf("Your expense ratio of %s%% is actually really good - means you're keeping %s%% as gross margin. Fixed costs are %s monthly, so anything above that in revenue goes mostly to profit.",
				metrics.Pct(snap.ExpenseRatio), metrics.Pct(100-snap.ExpenseRatio), metrics.Thousands(snap.FixedCosts))
		case "finances":
			return fmt.Sprintf("Your financial health score is %s/100. Strong profit margin, controlled expenses, and decent cash generation. The main thing to watch is customer concentration at %s%% from top 3.",
				metrics.Score(snap.FinancialHealth), metrics.Pct(snap.Top3Percentage))
		}
	}

	if strings.Contains(input, "why") || strings.Contains(input, "how") {
		if lastTopic == "profit" {
			return fmt.Sprintf("Your high profit margin comes from two things: good pricing discipline and controlled expenses. You're spending only %s%% of revenue on operations, which is quite efficient for retail.",
				metrics.Pct(snap.ExpenseRatio))
		}
	}

	return r.contextualHelp(mem, turns)
}

// contextualHelp is the generic reply for unknown or unhandled turns. Once
// the conversation has some history it suggests up to two undiscussed topics;
// before that it uses a plain clarifying line.
func (r *Responder) contextualHelp(mem *Memory, turns int) string {
	var notDiscussed []string
	for _, topic := range canonicalTopics {
		if !mem.HasTopic(topic) {
			notDiscussed = append(notDiscussed, topic)
		}
	}

	if len(notDiscussed) > 0 && turns > 2 {
		suggestions := notDiscussed[:min(2, len(notDiscussed))]
		return fmt.Sprintf("I don't have that specific detail, but I can help with %s. Or ask me anything about your business - I'm pretty good at connecting the dots.",
			strings.Join(suggestions, " or "))
	}

	return r.choose([]string{
		"I'm not sure about that exact thing, but I can tell you about sales, customers, inventory, or expenses. What would be most helpful?",
		"Hmm, that's not in my data. Want to know about your margins, top customers, or inventory situation instead?",
		"Don't have that particular info, but feel free to ask about revenue, profit, customer trends, or stock levels. What's on your mind?",
	})
}

func (r *Responder) goodbyeMessage(snap metrics.Snapshot, mem *Memory) string {
	if snap.OutOfStockCount > 0 && !mem.HasTopic("inventory") {
		return fmt.Sprintf("Sounds good! Quick reminder - you've got %d items out of stock worth restocking. Call anytime you need numbers!", snap.OutOfStockCount)
	}

	return r.choose([]string{
		"Great! Feel free to call whenever you need an update. Have a great day!",
		"Sounds good! I'm here anytime you want to check on things. Take care!",
		"Perfect! Call me whenever you need the numbers. Have a good one!",
		"Anytime! Always happy to help you stay on top of things. Talk soon!",
	})
}

// daysSinceOrder is the absolute whole-day gap between a customer's last order
// and the dataset's LastUpdated date. The reference date is fixed with the
// dataset rather than wall-clock time - a known simplification, since the
// facts themselves are a static snapshot.
func (r *Responder) daysSinceOrder(lastOrder string) int {
	today, err := parseFactDate(r.store.Overview.LastUpdated)
	if err != nil {
		return 0
	}
	ordered, err := parseFactDate(lastOrder)
	if err != nil {
		return 0
	}
	diff := today.Sub(ordered).Hours() / 24
	return int(math.Ceil(math.Abs(diff)))
}

// parseFactDate accepts the dataset's ISO dates plus the abbreviated
// "Oct 6" style used on expense and bill rows, assuming the dataset's year.
func parseFactDate(s string) (time.Time, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "Sept", "Sep"))
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse("Jan 2 2006", s+" 2025")
}

func joinNames(cs []facts.Customer) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
