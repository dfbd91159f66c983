package gateway

import (
	"context"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/SIDHANTH-S/Voigent/internal/bus"
	"github.com/SIDHANTH-S/Voigent/internal/config"
	"github.com/SIDHANTH-S/Voigent/internal/dialog"
)

func testGateway(t *testing.T, completer dialog.Completer) *Gateway {
	t.Helper()
	cfg := config.DefaultConfig()
	g, err := NewWithOptions(cfg, Options{
		CompleterFactory: func(cfg *config.Config) (dialog.Completer, error) {
			return completer, nil
		},
	})
	if err != nil {
		t.Fatalf("NewWithOptions: %v", err)
	}
	return g
}

func TestNewGateway(t *testing.T) {
	g := testGateway(t, nil)
	if g.Engine() == nil {
		t.Fatal("engine not built")
	}
	if g.store == nil {
		t.Fatal("fact store not built")
	}
	if len(g.channels.EnabledChannels()) != 0 {
		t.Errorf("no channels enabled by default, got %v", g.channels.EnabledChannels())
	}
}

func TestNewGateway_CompleterFactoryFailureDisablesBridge(t *testing.T) {
	cfg := config.DefaultConfig()
	g, err := NewWithOptions(cfg, Options{
		CompleterFactory: func(cfg *config.Config) (dialog.Completer, error) {
			return nil, os.ErrNotExist
		},
	})
	if err != nil {
		t.Fatalf("factory failure must not fail gateway creation: %v", err)
	}
	if g.completer != nil {
		t.Error("completer should stay nil when the factory fails")
	}
}

func TestHandleInbound_StartsSessionImplicitly(t *testing.T) {
	g := testGateway(t, nil)

	got := make(chan bus.OutboundMessage, 4)
	g.bus.SubscribeOutbound("testchan", func(msg bus.OutboundMessage) {
		got <- msg
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.bus.DispatchOutbound(ctx)

	g.handleInbound(ctx, bus.InboundMessage{
		Channel: "testchan",
		ChatID:  "42",
		Content: "how's business?",
	})

	var opening, answer bus.OutboundMessage
	select {
	case opening = <-got:
	case <-time.After(time.Second):
		t.Fatal("opening never arrived")
	}
	select {
	case answer = <-got:
	case <-time.After(time.Second):
		t.Fatal("answer never arrived")
	}

	if opening.Content == "" || opening.ChatID != "42" {
		t.Errorf("opening = %+v", opening)
	}
	if !strings.Contains(answer.Content, "₹") {
		t.Errorf("business overview should quote figures: %s", answer.Content)
	}
	if g.engine.ActiveSessions() != 1 {
		t.Errorf("active sessions = %d, want 1", g.engine.ActiveSessions())
	}
}

func TestHandleInbound_GoodbyeEndsSession(t *testing.T) {
	g := testGateway(t, nil)

	got := make(chan bus.OutboundMessage, 4)
	g.bus.SubscribeOutbound("testchan", func(msg bus.OutboundMessage) {
		got <- msg
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.bus.DispatchOutbound(ctx)

	g.handleInbound(ctx, bus.InboundMessage{Channel: "testchan", ChatID: "42", Content: "hello"})
	g.handleInbound(ctx, bus.InboundMessage{Channel: "testchan", ChatID: "42", Content: "thanks, that's all"})

	var ended bool
	deadline := time.After(time.Second)
	for !ended {
		select {
		case msg := <-got:
			if msg.SessionEnded {
				ended = true
			}
		case <-deadline:
			t.Fatal("goodbye reply never arrived")
		}
	}
	if g.engine.ActiveSessions() != 0 {
		t.Errorf("session should be gone, active = %d", g.engine.ActiveSessions())
	}
}

func TestSweepIdleSessions(t *testing.T) {
	g := testGateway(t, nil)

	if _, err := g.engine.StartSession("stale"); err != nil {
		t.Fatal(err)
	}
	// Fresh session is inside the idle window and survives the sweep.
	g.sweepIdleSessions()
	if g.engine.ActiveSessions() != 1 {
		t.Fatalf("fresh session swept, active = %d", g.engine.ActiveSessions())
	}

	g.cfg.Engine.IdleTimeoutMinutes = 0
	time.Sleep(10 * time.Millisecond)
	g.sweepIdleSessions()
	if g.engine.ActiveSessions() != 0 {
		t.Errorf("stale session survived, active = %d", g.engine.ActiveSessions())
	}
}

func TestRunStopsOnSignal(t *testing.T) {
	cfg := config.DefaultConfig()
	sigCh := make(chan os.Signal, 1)
	g, err := NewWithOptions(cfg, Options{
		CompleterFactory: func(cfg *config.Config) (dialog.Completer, error) {
			return nil, nil
		},
		SignalChan: sigCh,
	})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Run(context.Background())
	}()

	time.Sleep(50 * time.Millisecond)
	sigCh <- syscall.SIGTERM

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after signal")
	}
}
