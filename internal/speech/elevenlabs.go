// Package speech renders reply text to audio. The ElevenLabs client is the
// only backend; when it is not configured the voice channel falls back to the
// carrier's built-in voice.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SIDHANTH-S/Voigent/internal/config"
)

const defaultAPIBase = "https://api.elevenlabs.io"

// Synthesizer renders text to an audio clip. Implementations return the raw
// audio bytes and their content type.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, string, error)
}

// ElevenLabs is a text-to-speech client for the ElevenLabs API.
type ElevenLabs struct {
	apiKey     string
	voiceID    string
	model      string
	apiBase    string
	httpClient *http.Client
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func NewElevenLabs(cfg config.SpeechConfig) (*ElevenLabs, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("elevenlabs api key is required")
	}
	return &ElevenLabs{
		apiKey:     cfg.APIKey,
		voiceID:    cfg.VoiceID,
		model:      cfg.Model,
		apiBase:    defaultAPIBase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SetAPIBase overrides the API endpoint (for testing).
func (e *ElevenLabs) SetAPIBase(base string) {
	e.apiBase = strings.TrimRight(base, "/")
}

// Synthesize renders one reply to MP3 audio.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	payload, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: e.model,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal tts request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", e.apiBase, e.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("synthesize speech: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, "", fmt.Errorf("synthesize speech: status %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read tts audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("tts returned empty audio")
	}
	return audio, "audio/mpeg", nil
}
