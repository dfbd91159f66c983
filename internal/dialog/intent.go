package dialog

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/SIDHANTH-S/Voigent/internal/facts"
)

// Kind enumerates the closed intent taxonomy.
type Kind int

const (
	Unknown Kind = iota
	Greeting
	Goodbye
	Overview
	Financial
	Inventory
	Customers
	SpecificCustomer
	Expense
	Revenue
	Profit
	Problems
	GoodNews
	Risk
	Opportunity
	FollowUp
	Complex
)

var kindNames = map[Kind]string{
	Unknown:          "unknown",
	Greeting:         "greeting",
	Goodbye:          "goodbye",
	Overview:         "overview",
	Financial:        "financial",
	Inventory:        "inventory",
	Customers:        "customers",
	SpecificCustomer: "specific-customer",
	Expense:          "expenses",
	Revenue:          "revenue",
	Profit:           "profit",
	Problems:         "problems",
	GoodNews:         "positives",
	Risk:             "risks",
	Opportunity:      "opportunities",
	FollowUp:         "follow-up",
	Complex:          "complex",
}

func (k Kind) String() string { return kindNames[k] }

// Intent is the classified purpose of one utterance. Customer is set only for
// SpecificCustomer.
type Intent struct {
	Kind     Kind
	Customer string
}

// Complex questions are routed to the generative bridge, so they outrank every
// local category.
var complexPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)compare|comparison|difference|versus|vs|better|worse`),
	regexp.MustCompile(`(?i)why|how come|what.*reason|explain.*why`),
	regexp.MustCompile(`(?i)should i|would you|do you think|recommend|suggest|advice|what would you`),
	regexp.MustCompile(`(?i)improve|optimize|strategy|plan|grow|increase`),
	regexp.MustCompile(`(?i)what if|scenario|predict|forecast|trend|future`),
	regexp.MustCompile(`(?i)help me understand|tell me about.*and|relationship between`),
	regexp.MustCompile(`(?i)analyze|analysis|insight|pattern`),
}

var (
	greetingPattern = regexp.MustCompile(`(?i)^(hi|hello|hey|good morning|good afternoon|good evening|sup|yo)($|\s|[!,.?])`)
	goodbyePattern  = regexp.MustCompile(`(?i)^(bye|goodbye|thanks|thank you|that('s| is) (all|it|enough)|nothing else|that.*all|i.*good|see.*later|talk.*later|gotta.*go)($|\s|[!,.?])`)

	continuationPattern = regexp.MustCompile(`(?i)more|else|also|what about|tell.*more|continue|and\s|additionally|plus`)
	causalPattern       = regexp.MustCompile(`(?i)why|how come|what.*mean`)
)

// topicRules is the priority-ordered topic cascade. First match wins; the
// ordering is the documented disambiguation policy for overlapping keyword
// sets (e.g. "profit" matches both Financial and Profit, and Financial is
// tested first).
var topicRules = []struct {
	kind    Kind
	pattern *regexp.Regexp
}{
	{Overview, regexp.MustCompile(`(?i)how('s| is|s) (business|things|everything|doing|going)|overall|status|summary|update|big picture|state of|health of.*business`)},
	{Financial, regexp.MustCompile(`(?i)financial|margin|profit.*margin|how.*profitable|fiscal|economic|monetary`)},
	{Inventory, regexp.MustCompile(`(?i)stock|inventory|low|out of|reorder|shortage|need.*stock|running.*(out|low)|what.*need.*order`)},
	{Customers, regexp.MustCompile(`(?i)(best|top|biggest|main|key|important|major) customer|who('s| is).*(best|top|main|buying)|customer.*(focus|priority|concentrate)`)},
	{Expense, regexp.MustCompile(`(?i)expense|spending|cost|paid|bills?|where.*money.*go|what.*spend|burn rate`)},
	{Revenue, regexp.MustCompile(`(?i)revenue|sales|income|earnings|total.*sales|how.*much.*(made|earn|bring|pull)|top.*line`)},
	{Profit, regexp.MustCompile(`(?i)\bprofit|margin|earnings|net.*income|how.*much.*(earn|make|profit|keep|net)|bottom.*line`)},
	{Problems, regexp.MustCompile(`(?i)problem|issue|worry|concern|wrong|trouble|risk|red flag|warning|bad.*news|what.*fix`)},
	{GoodNews, regexp.MustCompile(`(?i)good.*news|positive|win|success|doing.*well|what.*good|bright.*spot|working.*well|strong`)},
	{Risk, regexp.MustCompile(`(?i)risk|risky|danger|vulnerable|threat|worry.*about|concern.*about|what.*could.*wrong`)},
	{Opportunity, regexp.MustCompile(`(?i)opportunit|potential|grow|expand|improve|optimize|better|increase|boost|enhance`)},
}

// Classifier resolves an utterance to an Intent against a fixed customer list.
// It is pure: it reads conversation memory but never mutates it.
type Classifier struct {
	customers []string
}

func NewClassifier(store *facts.Store) *Classifier {
	names := make([]string, 0, len(store.Customers))
	for _, c := range store.Customers {
		names = append(names, c.Name)
	}
	return &Classifier{customers: names}
}

// Classify resolves the intent for one utterance. turns is the transcript
// length including the current user turn; the follow-up heuristic needs it.
// Priority, top to bottom: complex, greeting, topic cascade, named customer,
// follow-up, goodbye, unknown.
func (c *Classifier) Classify(utterance string, mem *Memory, turns int) Intent {
	input := strings.ToLower(strings.TrimSpace(utterance))
	if input == "" {
		return Intent{Kind: Unknown}
	}

	for _, p := range complexPatterns {
		if p.MatchString(input) {
			return Intent{Kind: Complex}
		}
	}

	if greetingPattern.MatchString(input) {
		return Intent{Kind: Greeting}
	}

	for _, rule := range topicRules {
		if rule.pattern.MatchString(input) {
			return Intent{Kind: rule.kind}
		}
	}

	if name := c.matchCustomer(input); name != "" {
		return Intent{Kind: SpecificCustomer, Customer: name}
	}

	if (continuationPattern.MatchString(input) && turns > 2) ||
		(causalPattern.MatchString(input) && len(mem.DiscussedTopics) > 0) {
		return Intent{Kind: FollowUp}
	}

	if goodbyePattern.MatchString(input) {
		return Intent{Kind: Goodbye}
	}

	return Intent{Kind: Unknown}
}

func (c *Classifier) matchCustomer(input string) string {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(input, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}
	for _, name := range c.customers {
		full := strings.ToLower(name)
		if strings.Contains(input, full) {
			return name
		}
		// Short leading tokens like "T" would match almost anything.
		first, _, _ := strings.Cut(full, " ")
		if len(first) >= 4 && words[first] {
			return name
		}
	}
	return ""
}

// topicFor maps intents to the coarse topic label tracked in memory. Intents
// with no trackable topic (greetings, follow-ups, specific lookups) return "".
func topicFor(k Kind) string {
	switch k {
	case Overview:
		return "overview"
	case Financial:
		return "finances"
	case Inventory:
		return "inventory"
	case Customers:
		return "customers"
	case Expense:
		return "expenses"
	case Revenue:
		return "revenue"
	case Profit:
		return "profit"
	case Problems:
		return "problems"
	case GoodNews:
		return "positives"
	case Risk:
		return "risks"
	case Opportunity:
		return "opportunities"
	default:
		return ""
	}
}
