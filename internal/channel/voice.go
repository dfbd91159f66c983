package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SIDHANTH-S/Voigent/internal/bus"
	"github.com/SIDHANTH-S/Voigent/internal/config"
	"github.com/SIDHANTH-S/Voigent/internal/dialog"
	"github.com/SIDHANTH-S/Voigent/internal/facts"
	"github.com/SIDHANTH-S/Voigent/internal/metrics"
	"github.com/SIDHANTH-S/Voigent/internal/speech"
	"github.com/SIDHANTH-S/Voigent/internal/telephony"
)

const voiceChannelName = "voice"

// TurnHandler is the slice of the dialogue engine the voice channel drives.
// The phone webhook must answer within the HTTP response, so this channel
// calls the engine synchronously instead of going through the bus.
type TurnHandler interface {
	StartSession(id string) (string, error)
	HandleTurn(ctx context.Context, id, utterance string) (dialog.Reply, error)
	EndSession(id string)
}

// Caller places outbound calls; implemented by telephony.Client.
type Caller interface {
	StartCall(ctx context.Context, to, webhookURL, statusCallbackURL string) (*telephony.Call, error)
}

// audioClip is one rendered TTS reply, served once to Twilio via /audio/.
type audioClip struct {
	data        []byte
	contentType string
	createdAt   time.Time
}

// VoiceChannel answers Twilio webhooks: each phone call is one dialogue
// session keyed by CallSid. Replies render through the TTS synthesizer when
// one is configured, with the carrier voice as fallback.
type VoiceChannel struct {
	BaseChannel
	engine  TurnHandler
	caller  Caller
	tts     speech.Synthesizer
	store   *facts.Store
	baseURL string
	target  string
	port    int
	server  *http.Server

	mu    sync.Mutex
	clips map[string]audioClip
}

// VoiceOptions bundles the collaborators the channel needs beyond its config.
type VoiceOptions struct {
	Engine TurnHandler
	Caller Caller
	TTS    speech.Synthesizer
	Store  *facts.Store
	Target string
}

func NewVoiceChannel(cfg config.VoiceConfig, b *bus.MessageBus, opts VoiceOptions) (*VoiceChannel, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("voice channel requires a turn handler")
	}
	port := cfg.Port
	if port == 0 {
		port = config.DefaultPort
	}
	return &VoiceChannel{
		BaseChannel: NewBaseChannel(voiceChannelName, b, nil),
		engine:      opts.Engine,
		caller:      opts.Caller,
		tts:         opts.TTS,
		store:       opts.Store,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		target:      opts.Target,
		port:        port,
		clips:       make(map[string]audioClip),
	}, nil
}

// Handler exposes the webhook mux (for testing).
func (v *VoiceChannel) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /voice", v.handleVoice)
	mux.HandleFunc("POST /voice/gather", v.handleGather)
	mux.HandleFunc("POST /voice/status", v.handleStatus)
	mux.HandleFunc("GET /make-call", v.handleMakeCall)
	mux.HandleFunc("POST /make-call", v.handleMakeCall)
	mux.HandleFunc("GET /health", v.handleHealth)
	mux.HandleFunc("GET /business-data", v.handleBusinessData)
	mux.HandleFunc("GET /audio/{id}", v.handleAudio)
	return mux
}

func (v *VoiceChannel) Start(ctx context.Context) error {
	v.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", v.port),
		Handler: v.Handler(),
	}

	go func() {
		log.Printf("[voice] webhooks listening on :%d", v.port)
		if err := v.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[voice] server error: %v", err)
		}
	}()

	go v.sweepClips(ctx)
	return nil
}

func (v *VoiceChannel) Stop() error {
	if v.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := v.server.Shutdown(ctx); err != nil {
			log.Printf("[voice] shutdown error: %v", err)
		}
	}
	log.Printf("[voice] stopped")
	return nil
}

// Send is unused: the webhook handlers reply inline. Satisfies Channel.
func (v *VoiceChannel) Send(msg bus.OutboundMessage) error {
	return fmt.Errorf("voice channel replies inline, not via bus")
}

// handleVoice answers the call: start a session keyed by CallSid and speak
// the opening inside a gather.
func (v *VoiceChannel) handleVoice(w http.ResponseWriter, r *http.Request) {
	callSID := r.FormValue("CallSid")
	if callSID == "" {
		http.Error(w, "missing CallSid", http.StatusBadRequest)
		return
	}

	opening, err := v.engine.StartSession(callSID)
	if err != nil {
		// Twilio retries webhooks; treat a duplicate start as a re-prompt.
		log.Printf("[voice] start session %s: %v", callSID, err)
		opening = "Sorry, say that again?"
	}
	log.Printf("[voice] call %s answered", callSID)

	v.writeSpokenGather(r.Context(), w, opening)
}

// handleGather receives one transcribed utterance and replies with the
// engine's answer, hanging up when the conversation is over.
func (v *VoiceChannel) handleGather(w http.ResponseWriter, r *http.Request) {
	callSID := r.FormValue("CallSid")
	utterance := strings.TrimSpace(r.FormValue("SpeechResult"))

	if utterance == "" {
		resp := telephony.NewVoiceResponse()
		resp.Gather("/voice/gather", func(g *telephony.GatherVerb) {
			g.Say("Sorry, I didn't catch that. Could you say it again?")
		})
		v.writeTwiML(w, resp)
		return
	}

	log.Printf("[voice] call %s heard: %q", callSID, utterance)
	reply, err := v.engine.HandleTurn(r.Context(), callSID, utterance)
	if err != nil {
		log.Printf("[voice] turn failed for %s: %v", callSID, err)
		resp := telephony.NewVoiceResponse()
		resp.Say("Sorry, something went wrong on my end. Please call back in a moment.").Hangup()
		v.writeTwiML(w, resp)
		return
	}

	if reply.SessionEnded {
		resp := telephony.NewVoiceResponse()
		v.speak(r.Context(),
			func(s string) { resp.Say(s) },
			func(u string) { resp.Play(u) },
			reply.Text)
		resp.Hangup()
		v.writeTwiML(w, resp)
		v.engine.EndSession(callSID)
		return
	}

	v.writeSpokenGather(r.Context(), w, reply.Text)
}

// handleStatus tracks carrier-side call lifecycle; a completed call tears
// down its session even when the caller never said goodbye.
func (v *VoiceChannel) handleStatus(w http.ResponseWriter, r *http.Request) {
	callSID := r.FormValue("CallSid")
	status := r.FormValue("CallStatus")
	log.Printf("[voice] call %s status: %s", callSID, status)

	switch status {
	case "completed", "busy", "failed", "no-answer", "canceled":
		v.engine.EndSession(callSID)
	}
	w.WriteHeader(http.StatusOK)
}

// handleMakeCall dials out to the configured target (or ?to=) and points the
// call back at these webhooks.
func (v *VoiceChannel) handleMakeCall(w http.ResponseWriter, r *http.Request) {
	if v.caller == nil {
		http.Error(w, `{"error":"outbound calling is not configured"}`, http.StatusServiceUnavailable)
		return
	}
	to := r.FormValue("to")
	if to == "" {
		to = v.target
	}
	if to == "" {
		http.Error(w, `{"error":"no target phone number"}`, http.StatusBadRequest)
		return
	}
	if v.baseURL == "" {
		http.Error(w, `{"error":"base url is not configured"}`, http.StatusServiceUnavailable)
		return
	}

	call, err := v.caller.StartCall(r.Context(), to, v.baseURL+"/voice", v.baseURL+"/voice/status")
	if err != nil {
		log.Printf("[voice] outbound call failed: %v", err)
		http.Error(w, `{"error":"call failed"}`, http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"sid":    call.SID,
		"status": call.Status,
		"to":     call.To,
	})
}

func (v *VoiceChannel) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleBusinessData dumps the fact store plus the derived snapshot, handy
// when checking what the assistant is working from.
func (v *VoiceChannel) handleBusinessData(w http.ResponseWriter, r *http.Request) {
	if v.store == nil {
		http.Error(w, `{"error":"no fact store"}`, http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"facts":   v.store,
		"metrics": metrics.Compute(v.store),
	})
}

// handleAudio serves one rendered TTS clip.
func (v *VoiceChannel) handleAudio(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	v.mu.Lock()
	clip, ok := v.clips[id]
	v.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", clip.contentType)
	w.Write(clip.data)
}

// writeSpokenGather speaks text and listens for the next utterance.
func (v *VoiceChannel) writeSpokenGather(ctx context.Context, w http.ResponseWriter, text string) {
	resp := telephony.NewVoiceResponse()
	resp.Gather("/voice/gather", func(g *telephony.GatherVerb) {
		v.speak(ctx, g.Say, g.Play, text)
	})
	// Caller stayed silent through the gather window.
	resp.Say("Are you still there? Call me back anytime. Bye!")
	resp.Hangup()
	v.writeTwiML(w, resp)
}

// speak renders text through TTS and emits a Play verb, or falls back to the
// carrier voice when synthesis is unavailable or fails.
func (v *VoiceChannel) speak(ctx context.Context, say func(string), play func(string), text string) {
	if v.tts == nil || v.baseURL == "" {
		say(text)
		return
	}

	audio, contentType, err := v.tts.Synthesize(ctx, text)
	if err != nil {
		log.Printf("[voice] tts failed, using carrier voice: %v", err)
		say(text)
		return
	}

	id := uuid.NewString()
	v.mu.Lock()
	v.clips[id] = audioClip{data: audio, contentType: contentType, createdAt: time.Now()}
	v.mu.Unlock()

	play(v.baseURL + "/audio/" + id)
}

// sweepClips drops TTS clips older than five minutes; Twilio fetches each
// clip within seconds of the webhook response.
func (v *VoiceChannel) sweepClips(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-5 * time.Minute)
			v.mu.Lock()
			for id, clip := range v.clips {
				if clip.createdAt.Before(cutoff) {
					delete(v.clips, id)
				}
			}
			v.mu.Unlock()
		}
	}
}

func (v *VoiceChannel) writeTwiML(w http.ResponseWriter, resp *telephony.VoiceResponse) {
	body, err := resp.Render()
	if err != nil {
		http.Error(w, "twiml render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprint(w, body)
}
