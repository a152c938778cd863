// Package tts synthesizes persona replies into WAV files with a VOICEVOX engine.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultVoicevoxURL = "http://localhost:50021"
	// DefaultSpeaker is 猫使ビィ (人見知り).
	DefaultSpeaker = 58

	maxErrorBody = 512
)

// VoicevoxClient calls the two-step audio_query / synthesis API.
type VoicevoxClient struct {
	baseURL string
	speaker int
	http    *http.Client
}

// NewVoicevoxClient returns a client for baseURL using speaker.
func NewVoicevoxClient(baseURL string, speaker int) *VoicevoxClient {
	if baseURL == "" {
		baseURL = DefaultVoicevoxURL
	}
	return &VoicevoxClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		speaker: speaker,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// AudioQuery returns the engine's synthesis parameters for text.
func (c *VoicevoxClient) AudioQuery(ctx context.Context, text string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("speaker", strconv.Itoa(c.speaker))

	body, err := c.post(ctx, "/audio_query", params, nil)
	if err != nil {
		return nil, fmt.Errorf("audio_query failed: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("audio_query returned invalid json")
	}
	return json.RawMessage(body), nil
}

// Synthesis renders query to WAV bytes.
func (c *VoicevoxClient) Synthesis(ctx context.Context, query json.RawMessage) ([]byte, error) {
	params := url.Values{}
	params.Set("speaker", strconv.Itoa(c.speaker))

	wav, err := c.post(ctx, "/synthesis", params, query)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}
	return wav, nil
}

// Speak runs AudioQuery then Synthesis.
func (c *VoicevoxClient) Speak(ctx context.Context, text string) ([]byte, error) {
	query, err := c.AudioQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	return c.Synthesis(ctx, query)
}

func (c *VoicevoxClient) post(ctx context.Context, path string, params url.Values, payload []byte) ([]byte, error) {
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
