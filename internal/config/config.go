package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultModel         = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens     = 1024
	DefaultTemperature   = 0.7
	DefaultHost          = "0.0.0.0"
	DefaultPort          = 3000
	DefaultBufSize       = 100
	DefaultBridgeTimeout = 20 // seconds
	DefaultIdleTimeout   = 10 // minutes
	DefaultVoiceID       = "21m00Tcm4TlvDq8ikWAM"
	DefaultTTSModel      = "eleven_turbo_v2_5"
)

type Config struct {
	Agent    AgentConfig    `json:"agent"`
	Provider ProviderConfig `json:"provider"`
	Engine   EngineConfig   `json:"engine"`
	Channels ChannelsConfig `json:"channels"`
	Twilio   TwilioConfig   `json:"twilio"`
	Speech   SpeechConfig   `json:"speech"`
	Facts    FactsConfig    `json:"facts"`
	Gateway  GatewayConfig  `json:"gateway"`
}

type AgentConfig struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
	Workspace   string  `json:"workspace,omitempty"`
}

type ProviderConfig struct {
	Type    string `json:"type,omitempty"` // "anthropic" (default) or "openai"
	APIKey  string `json:"apiKey"`
	BaseURL string `json:"baseUrl,omitempty"`
}

type EngineConfig struct {
	// BridgeTimeoutSeconds bounds one generative completion call.
	BridgeTimeoutSeconds int `json:"bridgeTimeoutSeconds"`
	// IdleTimeoutMinutes is how long a silent session survives before the
	// periodic sweep closes it.
	IdleTimeoutMinutes int `json:"idleTimeoutMinutes"`
}

type ChannelsConfig struct {
	Voice    VoiceConfig    `json:"voice"`
	Telegram TelegramConfig `json:"telegram"`
	WebUI    WebUIConfig    `json:"webui"`
}

// VoiceConfig drives the telephony webhook channel.
type VoiceConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host,omitempty"`
	Port    int    `json:"port,omitempty"`
	// BaseURL is the public URL Twilio reaches the webhooks on
	// (e.g. an ngrok tunnel). Required for outbound calls and audio playback.
	BaseURL string `json:"baseUrl,omitempty"`
}

type TelegramConfig struct {
	Enabled   bool     `json:"enabled"`
	Token     string   `json:"token"`
	AllowFrom []string `json:"allowFrom"`
}

type WebUIConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host,omitempty"`
	Port    int    `json:"port,omitempty"`
}

type TwilioConfig struct {
	AccountSID  string `json:"accountSid"`
	AuthToken   string `json:"authToken"`
	PhoneNumber string `json:"phoneNumber"`
	// TargetPhoneNumber is the default callee for outbound calls.
	TargetPhoneNumber string `json:"targetPhoneNumber,omitempty"`
}

type SpeechConfig struct {
	// Provider is "elevenlabs" or "" to fall back to carrier TTS.
	Provider string `json:"provider,omitempty"`
	APIKey   string `json:"apiKey,omitempty"`
	VoiceID  string `json:"voiceId,omitempty"`
	Model    string `json:"model,omitempty"`
}

type FactsConfig struct {
	// DBPath points at the SQLite fact store. Empty means the built-in
	// demo dataset without persistence.
	DBPath string `json:"dbPath,omitempty"`
}

type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Model:       DefaultModel,
			MaxTokens:   DefaultMaxTokens,
			Temperature: DefaultTemperature,
		},
		Provider: ProviderConfig{},
		Engine: EngineConfig{
			BridgeTimeoutSeconds: DefaultBridgeTimeout,
			IdleTimeoutMinutes:   DefaultIdleTimeout,
		},
		Channels: ChannelsConfig{
			Voice: VoiceConfig{Host: DefaultHost, Port: DefaultPort},
		},
		Speech: SpeechConfig{
			VoiceID: DefaultVoiceID,
			Model:   DefaultTTSModel,
		},
		Gateway: GatewayConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".voigent")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// LoadConfig layers, lowest priority first: defaults, the JSON config file,
// a .env file in the working directory, then process environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; real env vars win over it.
	_ = godotenv.Load()

	applyEnv(cfg)

	if cfg.Engine.BridgeTimeoutSeconds <= 0 {
		cfg.Engine.BridgeTimeoutSeconds = DefaultBridgeTimeout
	}
	if cfg.Engine.IdleTimeoutMinutes <= 0 {
		cfg.Engine.IdleTimeoutMinutes = DefaultIdleTimeout
	}
	if cfg.Speech.VoiceID == "" {
		cfg.Speech.VoiceID = DefaultVoiceID
	}
	if cfg.Speech.Model == "" {
		cfg.Speech.Model = DefaultTTSModel
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if key := os.Getenv("VOIGENT_API_KEY"); key != "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
		if cfg.Provider.Type == "" {
			cfg.Provider.Type = "openai"
		}
	}
	if url := os.Getenv("VOIGENT_BASE_URL"); url != "" {
		cfg.Provider.BaseURL = url
	}
	if url := os.Getenv("ANTHROPIC_BASE_URL"); url != "" && cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = url
	}
	if model := os.Getenv("VOIGENT_MODEL"); model != "" {
		cfg.Agent.Model = model
	}

	if sid := os.Getenv("TWILIO_ACCOUNT_SID"); sid != "" {
		cfg.Twilio.AccountSID = sid
	}
	if token := os.Getenv("TWILIO_AUTH_TOKEN"); token != "" {
		cfg.Twilio.AuthToken = token
	}
	if num := os.Getenv("TWILIO_PHONE_NUMBER"); num != "" {
		cfg.Twilio.PhoneNumber = num
	}
	if num := os.Getenv("TARGET_PHONE_NUMBER"); num != "" {
		cfg.Twilio.TargetPhoneNumber = num
	}

	if key := os.Getenv("ELEVENLABS_API_KEY"); key != "" {
		cfg.Speech.APIKey = key
		if cfg.Speech.Provider == "" {
			cfg.Speech.Provider = "elevenlabs"
		}
	}
	if voice := os.Getenv("ELEVENLABS_VOICE_ID"); voice != "" {
		cfg.Speech.VoiceID = voice
	}

	if token := os.Getenv("VOIGENT_TELEGRAM_TOKEN"); token != "" {
		cfg.Channels.Telegram.Token = token
	}

	if url := os.Getenv("BASE_URL"); url != "" {
		cfg.Channels.Voice.BaseURL = url
	}
	if port := os.Getenv("PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil {
			cfg.Channels.Voice.Port = parsed
		}
	}
	if dbPath := os.Getenv("VOIGENT_FACTS_DB"); dbPath != "" {
		cfg.Facts.DBPath = dbPath
	}
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
