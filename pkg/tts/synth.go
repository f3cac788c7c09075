package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/dlanger/typecast/pkg/errors"
)

// Synthesizer turns a text segment into encoded audio for a given voice.
type Synthesizer interface {
	Speak(ctx context.Context, text, voice string) ([]byte, error)
}

// OpenAISpeech synthesizes audio against an OpenAI-compatible speech
// endpoint.
type OpenAISpeech struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAISpeech creates a speech synthesizer. Empty baseURL targets the
// OpenAI API; empty model defaults to tts-1-hd.
func NewOpenAISpeech(baseURL, apiKey, model string) *OpenAISpeech {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if model == "" {
		model = "tts-1-hd"
	}
	return &OpenAISpeech{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 300 * time.Second},
	}
}

type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// Speak synthesizes one segment and returns the audio bytes.
func (s *OpenAISpeech) Speak(ctx context.Context, text, voice string) ([]byte, error) {
	body, err := json.Marshal(speechRequest{Model: s.model, Input: text, Voice: voice})
	if err != nil {
		return nil, errors.New(errors.CodeRender, "marshal speech request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, errors.New(errors.CodeRender, "build speech request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.New(errors.CodeRender, "speech api call failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.Newf(errors.CodeRateLimit, "speech api rate limited")
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.Newf(errors.CodeRender, "speech api returned status %d", resp.StatusCode).
			WithContext("body", string(raw))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(errors.CodeRender, "read speech audio", err)
	}
	return audio, nil
}

// MockSynthesizer records requests and returns canned audio.
type MockSynthesizer struct {
	Audio []byte
	Err   error

	// Requests records every (text, voice) pair received, in order.
	Requests []struct{ Text, Voice string }
}

func (m *MockSynthesizer) Speak(_ context.Context, text, voice string) ([]byte, error) {
	m.Requests = append(m.Requests, struct{ Text, Voice string }{text, voice})
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Audio != nil {
		return m.Audio, nil
	}
	return []byte("audio:" + voice), nil
}
