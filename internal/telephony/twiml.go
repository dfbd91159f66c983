// Package telephony speaks Twilio's side of the voice channel: TwiML
// documents going back in webhook responses, and the REST API for placing
// outbound calls.
package telephony

import (
	"encoding/xml"
	"fmt"
)

// VoiceResponse is a TwiML <Response> document. Verbs are appended in order
// and serialized with the XML declaration Twilio expects.
type VoiceResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type sayVerb struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type playVerb struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type hangupVerb struct {
	XMLName xml.Name `xml:"Hangup"`
}

type redirectVerb struct {
	XMLName xml.Name `xml:"Redirect"`
	URL     string   `xml:",chardata"`
}

// GatherVerb collects speech from the caller and posts the transcription to
// Action. Nested verbs play while Twilio listens.
type GatherVerb struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
	Language      string   `xml:"language,attr,omitempty"`
	Verbs         []any
}

// NewVoiceResponse starts an empty TwiML document.
func NewVoiceResponse() *VoiceResponse {
	return &VoiceResponse{}
}

// Say adds a spoken line using Twilio's built-in voice.
func (r *VoiceResponse) Say(text string) *VoiceResponse {
	r.Verbs = append(r.Verbs, sayVerb{Voice: "Polly.Aditi", Text: text})
	return r
}

// Play adds an audio URL, typically a pre-rendered TTS clip.
func (r *VoiceResponse) Play(url string) *VoiceResponse {
	r.Verbs = append(r.Verbs, playVerb{URL: url})
	return r
}

// Gather adds a speech-input prompt. The inner function populates the verbs
// spoken while gathering.
func (r *VoiceResponse) Gather(action string, inner func(g *GatherVerb)) *VoiceResponse {
	g := &GatherVerb{
		Input:         "speech",
		Action:        action,
		Method:        "POST",
		SpeechTimeout: "auto",
		Language:      "en-IN",
	}
	if inner != nil {
		inner(g)
	}
	r.Verbs = append(r.Verbs, *g)
	return r
}

// Say adds a spoken line inside the gather.
func (g *GatherVerb) Say(text string) {
	g.Verbs = append(g.Verbs, sayVerb{Voice: "Polly.Aditi", Text: text})
}

// Play adds an audio URL inside the gather.
func (g *GatherVerb) Play(url string) {
	g.Verbs = append(g.Verbs, playVerb{URL: url})
}

// Redirect sends the call to another webhook.
func (r *VoiceResponse) Redirect(url string) *VoiceResponse {
	r.Verbs = append(r.Verbs, redirectVerb{URL: url})
	return r
}

// Hangup ends the call.
func (r *VoiceResponse) Hangup() *VoiceResponse {
	r.Verbs = append(r.Verbs, hangupVerb{})
	return r
}

// Render serializes the document with the XML declaration.
func (r *VoiceResponse) Render() (string, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal twiml: %w", err)
	}
	return xml.Header + string(body), nil
}
