package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/SIDHANTH-S/Voigent/internal/config"
	"github.com/SIDHANTH-S/Voigent/internal/dialog"
	"github.com/SIDHANTH-S/Voigent/internal/facts"
	"github.com/SIDHANTH-S/Voigent/internal/gateway"
	"github.com/SIDHANTH-S/Voigent/internal/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "voigent",
	Short: "voigent - voice business assistant",
}

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the full gateway (voice webhooks + chat channels)",
	RunE:  runGateway,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant in a terminal REPL",
	RunE:  runChat,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config",
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show voigent status",
	RunE:  runStatus,
}

var messageFlag string

func init() {
	chatCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Single utterance to send")
	rootCmd.AddCommand(gatewayCmd, chatCmd, onboardCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gw, err := gateway.New(cfg)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	return gw.Run(context.Background())
}

// ChatOptions carries injectable IO for testing the REPL.
type ChatOptions struct {
	Completer dialog.Completer
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return runChatWithOptions(cfg, ChatOptions{})
}

// runChatWithOptions drives one terminal conversation against the engine,
// with the same session semantics as a phone call.
func runChatWithOptions(cfg *config.Config, opts ChatOptions) error {
	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	completer := opts.Completer
	if completer == nil {
		if c, err := dialog.NewLLMCompleter(cfg); err != nil {
			fmt.Fprintf(stderr, "note: generative bridge disabled (%v)\n", err)
		} else {
			completer = c
			defer c.Close()
		}
	}

	var store *facts.Store
	if dbPath := strings.TrimSpace(cfg.Facts.DBPath); dbPath != "" {
		s, err := facts.OpenSQLite(dbPath)
		if err != nil {
			return fmt.Errorf("open fact store: %w", err)
		}
		store = s
	} else {
		store = facts.Default()
	}

	engine := dialog.NewEngine(store, completer, nil,
		time.Duration(cfg.Engine.BridgeTimeoutSeconds)*time.Second)

	sessionID := "cli-" + uuid.NewString()
	opening, err := engine.StartSession(sessionID)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer engine.EndSession(sessionID)

	ctx := context.Background()

	// Single utterance mode.
	if messageFlag != "" {
		reply, err := engine.HandleTurn(ctx, sessionID, messageFlag)
		if err != nil {
			return fmt.Errorf("handle turn: %w", err)
		}
		fmt.Fprintln(stdout, reply.Text)
		return nil
	}

	fmt.Fprintln(stdout, opening)
	fmt.Fprintln(stdout, "(type 'exit' to quit)")
	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		reply, err := engine.HandleTurn(ctx, sessionID, input)
		if errors.Is(err, dialog.ErrSessionNotFound) {
			break
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(stdout, reply.Text)
		if reply.SessionEnded {
			break
		}
	}
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgDir := config.ConfigDir()
	cfgPath := config.ConfigPath()

	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		data, _ := json.MarshalIndent(cfg, "", "  ")
		if err := os.WriteFile(cfgPath, data, 0644); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s or set env vars (ANTHROPIC_API_KEY, TWILIO_*, ELEVENLABS_API_KEY)\n", cfgPath)
	fmt.Println("  2. Run 'voigent chat' to talk to the assistant locally")
	fmt.Println("  3. Run 'voigent gateway' to serve the phone and chat channels")

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	fmt.Printf("Model: %s\n", cfg.Agent.Model)
	fmt.Printf("Provider: %s\n", providerDisplay(cfg.Provider.Type))
	fmt.Printf("API Key: %s\n", maskKey(cfg.Provider.APIKey))
	fmt.Printf("Voice: enabled=%v port=%d\n", cfg.Channels.Voice.Enabled, cfg.Channels.Voice.Port)
	fmt.Printf("Telegram: enabled=%v\n", cfg.Channels.Telegram.Enabled)
	fmt.Printf("WebUI: enabled=%v\n", cfg.Channels.WebUI.Enabled)
	fmt.Printf("Twilio: configured=%v\n", cfg.Twilio.AccountSID != "")
	fmt.Printf("TTS: provider=%s\n", speechDisplay(cfg.Speech.Provider))
	if cfg.Facts.DBPath != "" {
		fmt.Printf("Facts: %s\n", cfg.Facts.DBPath)
	} else {
		fmt.Println("Facts: built-in demo dataset")
	}

	snap := metrics.Compute(facts.Default())
	fmt.Printf("Demo dataset health: financial %s/100, inventory %s%%\n",
		metrics.Score(snap.FinancialHealth), metrics.Score(snap.InventoryHealth))

	return nil
}

func providerDisplay(t string) string {
	if t == "" {
		return "anthropic (default)"
	}
	return t
}

func speechDisplay(p string) string {
	if p == "" {
		return "carrier voice"
	}
	return p
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "not set"
	case len(key) > 8:
		return key[:4] + "..." + key[len(key)-4:]
	default:
		return "set"
	}
}
