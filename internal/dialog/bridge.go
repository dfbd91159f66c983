package dialog

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SIDHANTH-S/Voigent/internal/facts"
	"github.com/SIDHANTH-S/Voigent/internal/metrics"
)

// Completer answers one free-form business question. Implementations wrap a
// generative model runtime; tests substitute a canned function.
type Completer interface {
	Complete(ctx context.Context, sessionID, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, sessionID, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, sessionID, prompt string) (string, error) {
	return f(ctx, sessionID, prompt)
}

// Bridge routes complex questions to a generative completer, packaging just
// enough business context for a grounded answer. It never returns an error:
// when the completer is absent, fails, or times out, the bridge degrades to a
// locally generated reply so the conversation keeps moving.
type Bridge struct {
	completer Completer
	responder *Responder
	store     *facts.Store
	timeout   time.Duration
}

// NewBridge builds a bridge. completer may be nil, in which case every complex
// question takes the fallback path. timeout bounds one completion call;
// zero means 20 seconds.
func NewBridge(completer Completer, responder *Responder, store *facts.Store, timeout time.Duration) *Bridge {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Bridge{completer: completer, responder: responder, store: store, timeout: timeout}
}

// Answer resolves one complex question, consulting the generative backend
// first and the local responder on any failure.
func (b *Bridge) Answer(ctx context.Context, sessionID, question string, snap metrics.Snapshot, mem *Memory, turns int) string {
	if b.completer != nil {
		cctx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()

		reply, err := b.completer.Complete(cctx, sessionID, b.brief(question, snap, mem))
		if err == nil && strings.TrimSpace(reply) != "" {
			return strings.TrimSpace(reply)
		}
		if err != nil {
			log.Printf("[bridge] completion failed, answering locally: %v", err)
		}
	}
	return b.fallback(ctx, question, snap, mem, turns)
}

// brief packs the headline figures, the conversation's discussed topics, and
// the verbatim question into one prompt. The model sees numbers, not the raw
// dataset: the facts worth reasoning over fit in a few lines.
func (b *Bridge) brief(question string, snap metrics.Snapshot, mem *Memory) string {
	o := b.store.Overview

	var sb strings.Builder
	sb.WriteString("Current business figures:\n")
	fmt.Fprintf(&sb, "- Recent revenue %s, expenses %s, net profit %s (%s%% margin, industry avg %s%%)\n",
		metrics.Thousands(o.TotalRevenueRecent), metrics.Thousands(o.TotalExpensesRecent),
		metrics.Thousands(o.NetProfitRecent), metrics.Pct(snap.ProfitMargin), metrics.Pct(o.Benchmarks.AvgProfitMargin))
	fmt.Fprintf(&sb, "- %d active customers; top 3 hold %s%% of all-time revenue (%s concentration)\n",
		o.TotalActiveCustomers, metrics.Pct(snap.Top3Percentage), snap.Concentration)
	if len(b.store.Customers) >= 3 {
		cs := b.store.Customers
		fmt.Fprintf(&sb, "- Top customers: %s (%s), %s (%s), %s (%s)\n",
			cs[0].Name, metrics.Thousands(cs[0].Revenue),
			cs[1].Name, metrics.Thousands(cs[1].Revenue),
			cs[2].Name, metrics.Thousands(cs[2].Revenue))
	}
	fmt.Fprintf(&sb, "- %d items out of stock, estimated %s weekly revenue loss; %d customers at risk\n",
		snap.OutOfStockCount, metrics.Rupees(snap.EstimatedWeeklyLoss), len(snap.AtRisk))
	fmt.Fprintf(&sb, "- Financial health %s/100, inventory health %s%%\n",
		metrics.Score(snap.FinancialHealth), metrics.Score(snap.InventoryHealth))

	if len(mem.DiscussedTopics) > 0 {
		fmt.Fprintf(&sb, "\nAlready discussed this call: %s\n", strings.Join(mem.DiscussedTopics, ", "))
	}

	fmt.Fprintf(&sb, "\nThe owner asks: %q\n", question)
	sb.WriteString("Answer in two or three conversational sentences, grounded in the figures above. Do not invent numbers.")
	return sb.String()
}

// fallback sniffs the question for a topic the local responder can cover and
// answers from that path; otherwise it falls through to contextual help.
func (b *Bridge) fallback(_ context.Context, question string, snap metrics.Snapshot, mem *Memory, turns int) string {
	input := strings.ToLower(question)

	switch {
	case strings.Contains(input, "customer"):
		return b.responder.customers(input, snap)
	case strings.Contains(input, "stock") || strings.Contains(input, "inventory"):
		return b.responder.inventory(input, snap)
	case strings.Contains(input, "profit") || strings.Contains(input, "margin") || strings.Contains(input, "money"):
		return b.responder.profit(snap)
	}
	return b.responder.contextualHelp(mem, turns)
}
