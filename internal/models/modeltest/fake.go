// Package modeltest provides a scriptable model.LLM for tests.
package modeltest

import (
	"context"
	"iter"
	"strings"
	"sync"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// FakeLLM replies with Reply (or the result of Handler) and records every request.
type FakeLLM struct {
	Reply string
	Err   error
	// Handler, when set, takes precedence over Reply/Err.
	Handler func(req *model.LLMRequest) (string, error)

	mu       sync.Mutex
	requests []*model.LLMRequest
}

func (f *FakeLLM) Name() string { return "fake" }

func (f *FakeLLM) GenerateContent(_ context.Context, req *model.LLMRequest, _ bool) iter.Seq2[*model.LLMResponse, error] {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	return func(yield func(*model.LLMResponse, error) bool) {
		reply, err := f.Reply, f.Err
		if f.Handler != nil {
			reply, err = f.Handler(req)
		}
		if err != nil {
			yield(nil, err)
			return
		}
		yield(&model.LLMResponse{
			Content:      genai.NewContentFromText(reply, "model"),
			TurnComplete: true,
		}, nil)
	}
}

// Requests returns a copy of the recorded requests.
func (f *FakeLLM) Requests() []*model.LLMRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.LLMRequest(nil), f.requests...)
}

// Calls is the number of recorded requests.
func (f *FakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// LastPrompt joins the text of the last request's contents.
func (f *FakeLLM) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, c := range f.requests[len(f.requests)-1].Contents {
		if c == nil {
			continue
		}
		for _, p := range c.Parts {
			if p != nil {
				sb.WriteString(p.Text)
			}
		}
	}
	return sb.String()
}

var _ model.LLM = (*FakeLLM)(nil)
