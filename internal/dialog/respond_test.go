package dialog

import (
	"strings"
	"testing"

	"github.com/SIDHANTH-S/Voigent/internal/facts"
	"github.com/SIDHANTH-S/Voigent/internal/metrics"
)

// firstPick always chooses the first phrasing so output is deterministic.
func firstPick(n int) int { return 0 }

func newTestResponder() (*Responder, metrics.Snapshot, *facts.Store) {
	store := facts.Default()
	return NewResponder(store, firstPick), metrics.Compute(store), store
}

func TestGreetingClearsTopics(t *testing.T) {
	r, snap, _ := newTestResponder()
	mem := NewMemory()
	mem.RecordTopic("revenue")

	out := r.Generate(Intent{Kind: Greeting}, snap, "hi", mem, 1)
	if out == "" {
		t.Fatal("empty greeting")
	}
	if len(mem.DiscussedTopics) != 0 {
		t.Errorf("greeting did not clear topics: %v", mem.DiscussedTopics)
	}
}

func TestOverviewCarriesHeadlineFigures(t *testing.T) {
	r, snap, _ := newTestResponder()
	out := r.Generate(Intent{Kind: Overview}, snap, "how's business", NewMemory(), 1)

	for _, want := range []string{"₹292k", "₹193k", "66.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("overview reply missing %q: %s", want, out)
		}
	}
}

func TestInventoryNamesOutOfStockItems(t *testing.T) {
	r, snap, _ := newTestResponder()
	out := r.Generate(Intent{Kind: Inventory}, snap, "what's out of stock", NewMemory(), 1)

	if !strings.Contains(out, "red rice flakes") || !strings.Contains(out, "urad dal flour") {
		t.Errorf("inventory reply missing out-of-stock names: %s", out)
	}
	if !strings.Contains(out, "₹1000") {
		t.Errorf("inventory reply missing weekly loss estimate: %s", out)
	}
}

func TestSpecificCustomerKnownAndUnknown(t *testing.T) {
	r, snap, _ := newTestResponder()
	mem := NewMemory()

	out := r.Generate(Intent{Kind: SpecificCustomer, Customer: "Porur Bulk Traders"}, snap, "tell me about porur", mem, 1)
	if !strings.Contains(out, "Porur Bulk Traders") {
		t.Errorf("reply does not name the customer: %s", out)
	}
	if mem.LastEntity != "Porur Bulk Traders" {
		t.Errorf("last entity = %q", mem.LastEntity)
	}

	out = r.Generate(Intent{Kind: SpecificCustomer, Customer: "Nobody Trading"}, snap, "tell me about nobody", mem, 1)
	if !strings.Contains(out, "don't have") {
		t.Errorf("unknown customer should get a no-data reply: %s", out)
	}
}

func TestFollowUpAfterOverviewReferencesOverview(t *testing.T) {
	r, snap, _ := newTestResponder()
	mem := NewMemory()
	mem.RecordTopic("overview")

	out := r.Generate(Intent{Kind: FollowUp}, snap, "tell me more", mem, 4)
	if !strings.Contains(out, "financial health") && !strings.Contains(out, "overview") {
		t.Errorf("follow-up after overview fell to generic reply: %s", out)
	}
}

func TestOverviewBelowBenchmarkStaysNeutral(t *testing.T) {
	// Margin 30% against a 45% benchmark.
	store := &facts.Store{
		Overview: facts.Overview{
			TotalRevenueRecent:  100000,
			TotalExpensesRecent: 70000,
			NetProfitRecent:     30000,
			Benchmarks:          facts.Benchmarks{AvgProfitMargin: 45},
		},
	}
	snap := metrics.Compute(store)

	for i := 0; i < 4; i++ {
		pick := i
		r := NewResponder(store, func(n int) int { return pick % n })
		out := r.Generate(Intent{Kind: Overview}, snap, "how's business", NewMemory(), 1)
		for _, praise := range []string{"beats", "better than industry", "above the typical", "excellent"} {
			if strings.Contains(out, praise) {
				t.Errorf("variant %d praises a below-benchmark margin: %s", pick, out)
			}
		}
	}
}

func TestCustomersFollowUpComputesFifthCustomerMargin(t *testing.T) {
	r, snap, store := newTestResponder()
	mem := NewMemory()
	mem.RecordTopic("customers")

	out := r.Generate(Intent{Kind: FollowUp}, snap, "tell me more", mem, 4)
	if !strings.Contains(out, store.Customers[4].Name) {
		t.Fatalf("follow-up skipped the fifth customer: %s", out)
	}
	if !strings.Contains(out, "100.0% profit margin") {
		t.Errorf("margin should come from the dataset: %s", out)
	}

	// A fifth customer on thin margins gets no margin praise.
	thin := &facts.Store{
		Overview: facts.Overview{Benchmarks: facts.Benchmarks{AvgProfitMargin: 45}},
		Customers: []facts.Customer{
			{Name: "Anna Stores", Revenue: 120000, Profit: 70000},
			{Name: "Guindy Traders", Revenue: 90000, Profit: 50000},
			{Name: "Chetpet Mart", Revenue: 60000, Profit: 30000},
			{Name: "Saidapet Foods", Revenue: 40000, Profit: 20000},
			{Name: "Egmore Retail", Revenue: 30000, Profit: 3000},
		},
	}
	rt := NewResponder(thin, firstPick)
	out = rt.Generate(Intent{Kind: FollowUp}, metrics.Compute(thin), "tell me more", mem, 4)
	if !strings.Contains(out, "Egmore Retail") {
		t.Fatalf("fifth customer missing from reply: %s", out)
	}
	if strings.Contains(out, "profit margin") {
		t.Errorf("thin fifth customer should not be praised: %s", out)
	}
}

func TestFollowUpDispatchesOnLastTopic(t *testing.T) {
	r, snap, _ := newTestResponder()

	mem := NewMemory()
	mem.RecordTopic("expenses")
	out := r.Generate(Intent{Kind: FollowUp}, snap, "tell me more", mem, 4)
	if !strings.Contains(out, "expense ratio") {
		t.Errorf("follow-up after expenses: %s", out)
	}

	mem2 := NewMemory()
	mem2.RecordTopic("profit")
	out = r.Generate(Intent{Kind: FollowUp}, snap, "why is that", mem2, 4)
	if !strings.Contains(out, "pricing") {
		t.Errorf("causal follow-up after profit: %s", out)
	}
}

func TestContextualHelpSuggestsUndiscussedTopics(t *testing.T) {
	r, snap, _ := newTestResponder()

	// Early in the conversation the generic clarifying lines are used.
	out := r.Generate(Intent{Kind: Unknown}, snap, "blah", NewMemory(), 1)
	if strings.Contains(out, "I don't have that specific detail") {
		t.Errorf("suggestions offered too early: %s", out)
	}

	// Later, suggestions come from the undiscussed canonical topics.
	mem := NewMemory()
	mem.RecordTopic("revenue")
	mem.RecordTopic("expenses")
	out = r.Generate(Intent{Kind: Unknown}, snap, "blah", mem, 5)
	if !strings.Contains(out, "customers or inventory") {
		t.Errorf("expected first two undiscussed topics, got: %s", out)
	}
}

func TestGoodbyeInventoryReminder(t *testing.T) {
	r, snap, _ := newTestResponder()

	// Out-of-stock items pending and inventory never discussed.
	out := r.Generate(Intent{Kind: Goodbye}, snap, "bye", NewMemory(), 5)
	if !strings.Contains(out, "out of stock") {
		t.Errorf("expected inventory reminder farewell: %s", out)
	}

	// Once inventory was discussed, a plain farewell.
	mem := NewMemory()
	mem.RecordTopic("inventory")
	out = r.Generate(Intent{Kind: Goodbye}, snap, "bye", mem, 5)
	if strings.Contains(out, "out of stock") {
		t.Errorf("reminder should not repeat after discussing inventory: %s", out)
	}
}

func TestFindingsFallbacksWhenNothingToReport(t *testing.T) {
	store := &facts.Store{
		Overview: facts.Overview{
			TotalRevenueRecent:  100000,
			TotalExpensesRecent: 60000,
			NetProfitRecent:     40000,
			Benchmarks:          facts.Benchmarks{AvgProfitMargin: 45},
		},
	}
	r := NewResponder(store, firstPick)
	snap := metrics.Compute(store)

	out := r.Generate(Intent{Kind: Problems}, snap, "any problems", NewMemory(), 1)
	if !strings.Contains(out, "pretty clean") {
		t.Errorf("problems fallback: %s", out)
	}

	out = r.Generate(Intent{Kind: Risk}, snap, "any risks", NewMemory(), 1)
	if !strings.Contains(out, "risk profile") {
		t.Errorf("risk fallback: %s", out)
	}
}

func TestDaysSinceOrderUsesDatasetDate(t *testing.T) {
	r, _, store := newTestResponder()

	// Dataset snapshot date minus the anchor customer's last order.
	got := r.daysSinceOrder(store.Customers[0].LastOrderDate)
	if got <= 0 || got > 60 {
		t.Errorf("days since order = %d, want a small positive count", got)
	}
}
