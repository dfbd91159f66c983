// Package gateway assembles the assistant: fact store, dialogue engine,
// message bus, channels, and the periodic idle-session sweep.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/SIDHANTH-S/Voigent/internal/bus"
	"github.com/SIDHANTH-S/Voigent/internal/channel"
	"github.com/SIDHANTH-S/Voigent/internal/config"
	"github.com/SIDHANTH-S/Voigent/internal/dialog"
	"github.com/SIDHANTH-S/Voigent/internal/facts"
	"github.com/SIDHANTH-S/Voigent/internal/speech"
	"github.com/SIDHANTH-S/Voigent/internal/telephony"
)

// CompleterFactory builds the generative completer; swapped out in tests.
type CompleterFactory func(cfg *config.Config) (dialog.Completer, error)

// Options for creating a Gateway.
type Options struct {
	CompleterFactory CompleterFactory
	SignalChan       chan os.Signal // for testing signal handling
}

// DefaultCompleterFactory wires the agentsdk-backed completer.
func DefaultCompleterFactory(cfg *config.Config) (dialog.Completer, error) {
	return dialog.NewLLMCompleter(cfg)
}

type Gateway struct {
	cfg        *config.Config
	store      *facts.Store
	engine     *dialog.Engine
	bus        *bus.MessageBus
	channels   *channel.ChannelManager
	cron       *cron.Cron
	completer  dialog.Completer
	signalChan chan os.Signal
}

// New creates a Gateway with default options.
func New(cfg *config.Config) (*Gateway, error) {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions creates a Gateway with custom options for testing.
func NewWithOptions(cfg *config.Config, opts Options) (*Gateway, error) {
	g := &Gateway{cfg: cfg, signalChan: opts.SignalChan}

	// Fact store: SQLite-backed when a path is configured, otherwise the
	// built-in demo dataset.
	if dbPath := strings.TrimSpace(cfg.Facts.DBPath); dbPath != "" {
		store, err := facts.OpenSQLite(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open fact store: %w", err)
		}
		g.store = store
	} else {
		g.store = facts.Default()
	}

	// Generative bridge. A missing API key disables it; complex questions
	// then answer from local data.
	factory := opts.CompleterFactory
	if factory == nil {
		factory = DefaultCompleterFactory
	}
	completer, err := factory(cfg)
	if err != nil {
		log.Printf("[gateway] generative bridge disabled: %v", err)
	} else {
		g.completer = completer
	}

	g.engine = dialog.NewEngine(g.store, g.completer, nil,
		time.Duration(cfg.Engine.BridgeTimeoutSeconds)*time.Second)

	g.bus = bus.NewMessageBus(config.DefaultBufSize)

	voiceOpts := channel.VoiceOptions{
		Engine: g.engine,
		Store:  g.store,
		Target: cfg.Twilio.TargetPhoneNumber,
	}
	if cfg.Channels.Voice.Enabled {
		if caller, err := telephony.NewClient(cfg.Twilio); err != nil {
			log.Printf("[gateway] outbound calling disabled: %v", err)
		} else {
			voiceOpts.Caller = caller
		}
		if cfg.Speech.Provider == "elevenlabs" {
			if tts, err := speech.NewElevenLabs(cfg.Speech); err != nil {
				log.Printf("[gateway] tts disabled: %v", err)
			} else {
				voiceOpts.TTS = tts
			}
		}
	}

	channels, err := channel.NewChannelManager(cfg.Channels, cfg.Gateway, g.bus, voiceOpts)
	if err != nil {
		return nil, fmt.Errorf("init channels: %w", err)
	}
	g.channels = channels

	g.cron = cron.New()

	return g, nil
}

// Engine exposes the dialogue engine (for the REPL command and tests).
func (g *Gateway) Engine() *dialog.Engine {
	return g.engine
}

func (g *Gateway) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go g.bus.DispatchOutbound(ctx)

	if err := g.channels.StartAll(ctx); err != nil {
		return fmt.Errorf("start channels: %w", err)
	}
	log.Printf("[gateway] channels started: %v", g.channels.EnabledChannels())

	// Sessions abandoned mid-conversation (dropped calls, closed tabs)
	// get reaped on a schedule.
	if _, err := g.cron.AddFunc("@every 1m", g.sweepIdleSessions); err != nil {
		return fmt.Errorf("schedule idle sweep: %w", err)
	}
	g.cron.Start()

	go g.processLoop(ctx)

	log.Printf("[gateway] running on %s:%d", g.cfg.Gateway.Host, g.cfg.Gateway.Port)

	sigCh := g.signalChan
	if sigCh == nil {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	}
	<-sigCh

	log.Printf("[gateway] shutting down...")
	return g.Shutdown()
}

// processLoop drives the bus-based channels. The voice channel calls the
// engine synchronously from its webhooks and never appears here.
func (g *Gateway) processLoop(ctx context.Context) {
	for {
		select {
		case msg := <-g.bus.Inbound():
			g.handleInbound(ctx, msg)
		case <-ctx.Done():
			return
		}
	}
}

// handleInbound runs one turn. An unknown session id means a fresh
// conversation, so the opening goes out before the first answer.
func (g *Gateway) handleInbound(ctx context.Context, msg bus.InboundMessage) {
	sessionID := msg.SessionKey()
	log.Printf("[gateway] inbound from %s/%s: %s", msg.Channel, msg.SenderID, truncate(msg.Content, 80))

	reply, err := g.engine.HandleTurn(ctx, sessionID, msg.Content)
	if errors.Is(err, dialog.ErrSessionNotFound) {
		opening, startErr := g.engine.StartSession(sessionID)
		if startErr != nil {
			log.Printf("[gateway] start session %s: %v", sessionID, startErr)
			return
		}
		g.bus.PublishOutbound(bus.OutboundMessage{
			Channel: msg.Channel,
			ChatID:  msg.ChatID,
			Content: opening,
		})
		reply, err = g.engine.HandleTurn(ctx, sessionID, msg.Content)
	}
	if err != nil {
		log.Printf("[gateway] turn failed for %s: %v", sessionID, err)
		return
	}

	g.bus.PublishOutbound(bus.OutboundMessage{
		Channel:      msg.Channel,
		ChatID:       msg.ChatID,
		Content:      reply.Text,
		SessionEnded: reply.SessionEnded,
	})
	if reply.SessionEnded {
		g.engine.EndSession(sessionID)
	}
}

func (g *Gateway) sweepIdleSessions() {
	maxIdle := time.Duration(g.cfg.Engine.IdleTimeoutMinutes) * time.Minute
	for _, id := range g.engine.IdleSessions(maxIdle) {
		log.Printf("[gateway] closing idle session %s", id)
		g.engine.EndSession(id)
	}
}

func (g *Gateway) Shutdown() error {
	if g.cron != nil {
		g.cron.Stop()
	}
	if g.channels != nil {
		_ = g.channels.StopAll()
	}
	if closer, ok := g.completer.(interface{ Close() }); ok {
		closer.Close()
	}
	log.Printf("[gateway] shutdown complete")
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
