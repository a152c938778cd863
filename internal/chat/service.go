package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/adk/model"

	"github.com/easeaico/tsukuyomi/internal/models"
	"github.com/easeaico/tsukuyomi/internal/prompt"
	"github.com/easeaico/tsukuyomi/internal/types"
)

// FailureReply is sent when the chat backend fails.
const FailureReply = "好像哪裡...出了一點問題～"

// ErrEmptyMessage is returned for blank user input.
var ErrEmptyMessage = errors.New("no message provided")

// Engine is the part of memory.Engine a chat turn needs.
type Engine interface {
	GetState(ctx context.Context, userID string) types.State
	ProcessTurn(ctx context.Context, userID, userMessage, botReply string) types.TurnResult
}

// Synthesizer turns a reply into a playable audio URL.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// Response is the body returned for a chat turn.
type Response struct {
	Reply    string  `json:"reply"`
	AudioURL *string `json:"audio_url"`
	types.TurnResult
}

// Service runs chat turns.
type Service struct {
	llm     model.LLM
	builder *prompt.Builder
	engine  Engine
	history *History
	speech  Synthesizer
}

// NewService wires a chat service. speech may be nil to disable audio.
func NewService(llm model.LLM, builder *prompt.Builder, engine Engine, history *History, speech Synthesizer) *Service {
	return &Service{
		llm:     llm,
		builder: builder,
		engine:  engine,
		history: history,
		speech:  speech,
	}
}

// Reply answers message for userID, updates memory and intimacy, and
// synthesizes speech when enabled. Only blank input is an error.
func (s *Service) Reply(ctx context.Context, userID, message string) (Response, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Response{}, ErrEmptyMessage
	}

	state := s.engine.GetState(ctx, userID)
	req, err := s.builder.Build(prompt.BuildContext{
		Intimacy:    state.Intimacy,
		Facts:       state.Facts,
		History:     s.history.Get(userID),
		UserMessage: message,
	})
	if err != nil {
		return Response{}, err
	}

	reply, err := models.GenerateText(ctx, s.llm, req)
	if err != nil {
		slog.Error("failed to generate reply", "user_id", userID, "error", err.Error())
		reply = FailureReply
	}

	s.history.Append(userID, types.ChatTurn{User: message, Bot: reply})
	result := s.engine.ProcessTurn(ctx, userID, message, reply)

	return Response{
		Reply:      reply,
		AudioURL:   s.synthesize(ctx, userID, reply),
		TurnResult: result,
	}, nil
}

func (s *Service) synthesize(ctx context.Context, userID, reply string) *string {
	if s.speech == nil {
		return nil
	}
	url, err := s.speech.Synthesize(ctx, reply)
	if err != nil {
		slog.Warn("tts failed", "user_id", userID, "error", err.Error())
		return nil
	}
	return &url
}

// ClearSession drops short-term history only.
func (s *Service) ClearSession(userID string) {
	s.history.Clear(userID)
}
