package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/SIDHANTH-S/Voigent/internal/bus"
	"github.com/SIDHANTH-S/Voigent/internal/config"
	"github.com/SIDHANTH-S/Voigent/internal/dialog"
	"github.com/SIDHANTH-S/Voigent/internal/facts"
	"github.com/SIDHANTH-S/Voigent/internal/telephony"
)

// stubEngine records calls and replays canned replies.
type stubEngine struct {
	started  []string
	ended    []string
	turns    []string
	startErr error
	reply    dialog.Reply
	turnErr  error
}

func (s *stubEngine) StartSession(id string) (string, error) {
	s.started = append(s.started, id)
	if s.startErr != nil {
		return "", s.startErr
	}
	return "Hi! Your business had a good month.", nil
}

func (s *stubEngine) HandleTurn(ctx context.Context, id, utterance string) (dialog.Reply, error) {
	s.turns = append(s.turns, utterance)
	if s.turnErr != nil {
		return dialog.Reply{}, s.turnErr
	}
	return s.reply, nil
}

func (s *stubEngine) EndSession(id string) {
	s.ended = append(s.ended, id)
}

type stubCaller struct {
	call    *telephony.Call
	err     error
	gotTo   string
	gotHook string
}

func (s *stubCaller) StartCall(ctx context.Context, to, webhookURL, statusCallbackURL string) (*telephony.Call, error) {
	s.gotTo = to
	s.gotHook = webhookURL
	if s.err != nil {
		return nil, s.err
	}
	return s.call, nil
}

type stubSynth struct {
	audio []byte
	err   error
}

func (s *stubSynth) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.audio, "audio/mpeg", nil
}

func newTestVoice(t *testing.T, opts VoiceOptions) (*VoiceChannel, *stubEngine) {
	t.Helper()
	engine := &stubEngine{}
	if opts.Engine == nil {
		opts.Engine = engine
	} else {
		engine, _ = opts.Engine.(*stubEngine)
	}
	b := bus.NewMessageBus(10)
	ch, err := NewVoiceChannel(config.VoiceConfig{BaseURL: "https://assistant.example.com"}, b, opts)
	if err != nil {
		t.Fatalf("NewVoiceChannel: %v", err)
	}
	return ch, engine
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewVoiceChannel_RequiresEngine(t *testing.T) {
	b := bus.NewMessageBus(10)
	if _, err := NewVoiceChannel(config.VoiceConfig{}, b, VoiceOptions{}); err == nil {
		t.Error("expected error without a turn handler")
	}
}

func TestVoiceWebhook_AnswersCall(t *testing.T) {
	ch, engine := newTestVoice(t, VoiceOptions{})
	h := ch.Handler()

	rec := postForm(t, h, "/voice", url.Values{"CallSid": {"CA100"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<Gather") {
		t.Errorf("opening should gather speech:\n%s", body)
	}
	if !strings.Contains(body, "good month") {
		t.Errorf("opening line missing:\n%s", body)
	}
	if len(engine.started) != 1 || engine.started[0] != "CA100" {
		t.Errorf("started = %v", engine.started)
	}
}

func TestVoiceWebhook_MissingCallSid(t *testing.T) {
	ch, _ := newTestVoice(t, VoiceOptions{})
	rec := postForm(t, ch.Handler(), "/voice", url.Values{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestVoiceWebhook_DuplicateStartReprompts(t *testing.T) {
	engine := &stubEngine{startErr: fmt.Errorf("session exists")}
	ch, _ := newTestVoice(t, VoiceOptions{Engine: engine})

	rec := postForm(t, ch.Handler(), "/voice", url.Values{"CallSid": {"CA100"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "say that again") {
		t.Errorf("duplicate start should re-prompt:\n%s", rec.Body.String())
	}
}

func TestVoiceGather_RepliesAndKeepsListening(t *testing.T) {
	engine := &stubEngine{reply: dialog.Reply{Text: "Revenue is up this month."}}
	ch, _ := newTestVoice(t, VoiceOptions{Engine: engine})

	rec := postForm(t, ch.Handler(), "/voice/gather", url.Values{
		"CallSid":      {"CA100"},
		"SpeechResult": {"how is revenue"},
	})
	body := rec.Body.String()
	if !strings.Contains(body, "Revenue is up this month.") {
		t.Errorf("reply missing:\n%s", body)
	}
	if !strings.Contains(body, "<Gather") {
		t.Errorf("mid-conversation reply must keep gathering:\n%s", body)
	}
	if len(engine.turns) != 1 || engine.turns[0] != "how is revenue" {
		t.Errorf("turns = %v", engine.turns)
	}
}

func TestVoiceGather_EmptySpeechReprompts(t *testing.T) {
	ch, engine := newTestVoice(t, VoiceOptions{})

	rec := postForm(t, ch.Handler(), "/voice/gather", url.Values{
		"CallSid":      {"CA100"},
		"SpeechResult": {"   "},
	})
	if !strings.Contains(rec.Body.String(), "didn't catch that") {
		t.Errorf("expected re-prompt:\n%s", rec.Body.String())
	}
	if len(engine.turns) != 0 {
		t.Error("empty speech should not reach the engine")
	}
}

func TestVoiceGather_GoodbyeHangsUp(t *testing.T) {
	engine := &stubEngine{reply: dialog.Reply{Text: "Bye! Take care.", SessionEnded: true}}
	ch, _ := newTestVoice(t, VoiceOptions{Engine: engine})

	rec := postForm(t, ch.Handler(), "/voice/gather", url.Values{
		"CallSid":      {"CA100"},
		"SpeechResult": {"bye"},
	})
	body := rec.Body.String()
	if !strings.Contains(body, "<Hangup") {
		t.Errorf("goodbye must hang up:\n%s", body)
	}
	if strings.Contains(body, "<Gather") {
		t.Errorf("goodbye must not keep gathering:\n%s", body)
	}
	if len(engine.ended) != 1 || engine.ended[0] != "CA100" {
		t.Errorf("ended = %v", engine.ended)
	}
}

func TestVoiceGather_EngineErrorApologizes(t *testing.T) {
	engine := &stubEngine{turnErr: fmt.Errorf("boom")}
	ch, _ := newTestVoice(t, VoiceOptions{Engine: engine})

	rec := postForm(t, ch.Handler(), "/voice/gather", url.Values{
		"CallSid":      {"CA100"},
		"SpeechResult": {"how is revenue"},
	})
	body := rec.Body.String()
	if !strings.Contains(body, "something went wrong") || !strings.Contains(body, "<Hangup") {
		t.Errorf("engine failure should apologize and hang up:\n%s", body)
	}
}

func TestVoiceStatus_CompletedEndsSession(t *testing.T) {
	ch, engine := newTestVoice(t, VoiceOptions{})

	postForm(t, ch.Handler(), "/voice/status", url.Values{
		"CallSid":    {"CA100"},
		"CallStatus": {"completed"},
	})
	if len(engine.ended) != 1 {
		t.Errorf("completed status should end the session, ended = %v", engine.ended)
	}

	postForm(t, ch.Handler(), "/voice/status", url.Values{
		"CallSid":    {"CA100"},
		"CallStatus": {"ringing"},
	})
	if len(engine.ended) != 1 {
		t.Error("ringing status must not end the session")
	}
}

func TestMakeCall(t *testing.T) {
	caller := &stubCaller{call: &telephony.Call{SID: "CA200", Status: "queued", To: "+911234567890"}}
	ch, _ := newTestVoice(t, VoiceOptions{Caller: caller, Target: "+911234567890"})

	req := httptest.NewRequest(http.MethodGet, "/make-call", nil)
	rec := httptest.NewRecorder()
	ch.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["sid"] != "CA200" {
		t.Errorf("sid = %q", got["sid"])
	}
	if caller.gotTo != "+911234567890" {
		t.Errorf("dialed %q", caller.gotTo)
	}
	if caller.gotHook != "https://assistant.example.com/voice" {
		t.Errorf("webhook = %q", caller.gotHook)
	}
}

func TestMakeCall_NotConfigured(t *testing.T) {
	ch, _ := newTestVoice(t, VoiceOptions{})

	req := httptest.NewRequest(http.MethodGet, "/make-call", nil)
	rec := httptest.NewRecorder()
	ch.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestMakeCall_NoTarget(t *testing.T) {
	ch, _ := newTestVoice(t, VoiceOptions{Caller: &stubCaller{}})

	req := httptest.NewRequest(http.MethodGet, "/make-call", nil)
	rec := httptest.NewRecorder()
	ch.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ch, _ := newTestVoice(t, VoiceOptions{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ch.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestBusinessDataEndpoint(t *testing.T) {
	ch, _ := newTestVoice(t, VoiceOptions{Store: facts.Default()})

	req := httptest.NewRequest(http.MethodGet, "/business-data", nil)
	rec := httptest.NewRecorder()
	ch.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if _, ok := payload["facts"]; !ok {
		t.Error("facts missing from payload")
	}
	if _, ok := payload["metrics"]; !ok {
		t.Error("metrics missing from payload")
	}
}

func TestTTSPathPlaysRenderedClip(t *testing.T) {
	engine := &stubEngine{reply: dialog.Reply{Text: "Revenue looks fine."}}
	ch, _ := newTestVoice(t, VoiceOptions{
		Engine: engine,
		TTS:    &stubSynth{audio: []byte("mp3-bytes")},
	})
	h := ch.Handler()

	rec := postForm(t, h, "/voice/gather", url.Values{
		"CallSid":      {"CA100"},
		"SpeechResult": {"how is revenue"},
	})
	body := rec.Body.String()
	if !strings.Contains(body, "<Play>https://assistant.example.com/audio/") {
		t.Fatalf("expected a Play verb pointing at the clip:\n%s", body)
	}

	start := strings.Index(body, "/audio/") + len("/audio/")
	end := strings.Index(body[start:], "<")
	clipPath := "/audio/" + body[start:start+end]

	req := httptest.NewRequest(http.MethodGet, clipPath, nil)
	clipRec := httptest.NewRecorder()
	h.ServeHTTP(clipRec, req)

	if clipRec.Code != http.StatusOK {
		t.Fatalf("clip fetch = %d", clipRec.Code)
	}
	audio, _ := io.ReadAll(clipRec.Body)
	if string(audio) != "mp3-bytes" {
		t.Errorf("clip body = %q", audio)
	}
	if ct := clipRec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("content type = %q", ct)
	}
}

func TestTTSFailureFallsBackToCarrierVoice(t *testing.T) {
	engine := &stubEngine{reply: dialog.Reply{Text: "Revenue looks fine."}}
	ch, _ := newTestVoice(t, VoiceOptions{
		Engine: engine,
		TTS:    &stubSynth{err: fmt.Errorf("quota exceeded")},
	})

	rec := postForm(t, ch.Handler(), "/voice/gather", url.Values{
		"CallSid":      {"CA100"},
		"SpeechResult": {"how is revenue"},
	})
	body := rec.Body.String()
	if !strings.Contains(body, "<Say") || !strings.Contains(body, "Revenue looks fine.") {
		t.Errorf("TTS failure should fall back to Say:\n%s", body)
	}
	if strings.Contains(body, "<Play>") {
		t.Errorf("no Play verb expected on TTS failure:\n%s", body)
	}
}

func TestUnknownAudioClip(t *testing.T) {
	ch, _ := newTestVoice(t, VoiceOptions{})

	req := httptest.NewRequest(http.MethodGet, "/audio/nope", nil)
	rec := httptest.NewRecorder()
	ch.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestVoiceSendIsInlineOnly(t *testing.T) {
	ch, _ := newTestVoice(t, VoiceOptions{})
	if err := ch.Send(bus.OutboundMessage{}); err == nil {
		t.Error("Send should report that voice replies inline")
	}
}
