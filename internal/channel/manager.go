package channel

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/SIDHANTH-S/Voigent/internal/bus"
	"github.com/SIDHANTH-S/Voigent/internal/config"
)

// ChannelManager owns every enabled channel and fans bus replies back to the
// channel that produced the inbound message.
type ChannelManager struct {
	channels map[string]Channel
	bus      *bus.MessageBus
}

func NewChannelManager(cfg config.ChannelsConfig, gwCfg config.GatewayConfig, b *bus.MessageBus, voiceOpts VoiceOptions) (*ChannelManager, error) {
	m := &ChannelManager{
		channels: make(map[string]Channel),
		bus:      b,
	}

	if cfg.Voice.Enabled {
		ch, err := NewVoiceChannel(cfg.Voice, b, voiceOpts)
		if err != nil {
			return nil, fmt.Errorf("init voice channel: %w", err)
		}
		m.register(ch)
	}

	if cfg.Telegram.Enabled {
		ch, err := NewTelegramChannel(cfg.Telegram, b)
		if err != nil {
			return nil, fmt.Errorf("init telegram channel: %w", err)
		}
		m.register(ch)
	}

	if cfg.WebUI.Enabled {
		ch, err := NewWebUIChannel(cfg.WebUI, gwCfg, b)
		if err != nil {
			return nil, fmt.Errorf("init webui channel: %w", err)
		}
		m.register(ch)
	}

	return m, nil
}

func (m *ChannelManager) register(ch Channel) {
	m.channels[ch.Name()] = ch
	m.bus.SubscribeOutbound(ch.Name(), func(msg bus.OutboundMessage) {
		if err := ch.Send(msg); err != nil {
			log.Printf("[channel-mgr] send to %s failed: %v", ch.Name(), err)
		}
	})
}

func (m *ChannelManager) StartAll(ctx context.Context) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(m.channels))

	for name, ch := range m.channels {
		wg.Add(1)
		go func(name string, ch Channel) {
			defer wg.Done()
			log.Printf("[channel-mgr] starting %s", name)
			if err := ch.Start(ctx); err != nil {
				errCh <- fmt.Errorf("%s: %w", name, err)
			}
		}(name, ch)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		return err
	}
	return nil
}

func (m *ChannelManager) StopAll() error {
	for name, ch := range m.channels {
		log.Printf("[channel-mgr] stopping %s", name)
		if err := ch.Stop(); err != nil {
			log.Printf("[channel-mgr] error stopping %s: %v", name, err)
		}
	}
	return nil
}

func (m *ChannelManager) EnabledChannels() []string {
	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	return names
}
