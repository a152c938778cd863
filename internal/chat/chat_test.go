package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/adk/model"

	"github.com/easeaico/tsukuyomi/internal/models/modeltest"
	"github.com/easeaico/tsukuyomi/internal/prompt"
	"github.com/easeaico/tsukuyomi/internal/types"
	"github.com/easeaico/tsukuyomi/internal/utils"
)

type fakeEngine struct {
	state types.State
	turns []types.ChatTurn
}

func (e *fakeEngine) GetState(ctx context.Context, userID string) types.State {
	return e.state
}

func (e *fakeEngine) ProcessTurn(ctx context.Context, userID, userMessage, botReply string) types.TurnResult {
	e.turns = append(e.turns, types.ChatTurn{User: userMessage, Bot: botReply})
	return types.TurnResult{Intimacy: 51, Level: "普通期", TotalChange: 2}
}

type fakeSynth struct {
	url  string
	err  error
	text string
}

func (s *fakeSynth) Synthesize(ctx context.Context, text string) (string, error) {
	s.text = text
	return s.url, s.err
}

func TestReplyRunsFullTurn(t *testing.T) {
	llm := &modeltest.FakeLLM{Reply: "主人好～[emotion:joy]"}
	engine := &fakeEngine{state: types.State{Intimacy: 50, Facts: []string{"他的名字是小明"}}}
	synth := &fakeSynth{url: "/static/audio/abc.wav"}
	svc := NewService(llm, prompt.NewBuilder("", 10), engine, NewHistory(10, 100, time.Hour), synth)

	resp, err := svc.Reply(context.Background(), "u1", "  你好  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Reply != "主人好～[emotion:joy]" {
		t.Fatalf("unexpected reply: %q", resp.Reply)
	}
	if resp.AudioURL == nil || *resp.AudioURL != "/static/audio/abc.wav" {
		t.Fatalf("unexpected audio url: %v", resp.AudioURL)
	}
	if resp.Intimacy != 51 || resp.TotalChange != 2 {
		t.Fatalf("unexpected turn result: %+v", resp.TurnResult)
	}
	if len(engine.turns) != 1 || engine.turns[0].User != "你好" {
		t.Fatalf("expected trimmed message to reach the engine, got %+v", engine.turns)
	}
	if synth.text != resp.Reply {
		t.Fatalf("expected synthesizer to get the reply, got %q", synth.text)
	}

	req := llm.Requests()[0]
	system := utils.ExtractContentText(req.Config.SystemInstruction)
	if !strings.Contains(system, "- 他的名字是小明") {
		t.Fatalf("expected facts in system prompt: %s", system)
	}
}

func TestReplyReplaysHistory(t *testing.T) {
	llm := &modeltest.FakeLLM{Reply: "嗯嗯"}
	svc := NewService(llm, prompt.NewBuilder("", 10), &fakeEngine{}, NewHistory(10, 100, time.Hour), nil)

	for _, msg := range []string{"第一句", "第二句"} {
		if _, err := svc.Reply(context.Background(), "u1", msg); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	last := llm.Requests()[1]
	if len(last.Contents) != 3 {
		t.Fatalf("expected one replayed turn plus the new message, got %d contents", len(last.Contents))
	}
	if got := utils.ExtractContentText(last.Contents[0]); got != "第一句" {
		t.Fatalf("unexpected replayed message: %q", got)
	}
}

func TestReplyBackendFailure(t *testing.T) {
	llm := &modeltest.FakeLLM{Err: errors.New("connection refused")}
	engine := &fakeEngine{}
	svc := NewService(llm, prompt.NewBuilder("", 10), engine, NewHistory(10, 100, time.Hour), nil)

	resp, err := svc.Reply(context.Background(), "u1", "謝謝你")
	if err != nil {
		t.Fatalf("expected soft failure, got %v", err)
	}
	if resp.Reply != FailureReply {
		t.Fatalf("expected failure reply, got %q", resp.Reply)
	}
	if resp.AudioURL != nil {
		t.Fatalf("expected no audio without a synthesizer")
	}
	if len(engine.turns) != 1 || engine.turns[0].Bot != FailureReply {
		t.Fatalf("expected the turn to still be processed, got %+v", engine.turns)
	}
}

func TestReplySynthesisFailure(t *testing.T) {
	svc := NewService(&modeltest.FakeLLM{Reply: "好喔"}, prompt.NewBuilder("", 10), &fakeEngine{}, NewHistory(10, 100, time.Hour), &fakeSynth{err: errors.New("engine offline")})

	resp, err := svc.Reply(context.Background(), "u1", "hi")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.AudioURL != nil {
		t.Fatalf("expected null audio url on tts failure")
	}
}

func TestReplyRejectsBlank(t *testing.T) {
	llm := &modeltest.FakeLLM{Reply: "x"}
	svc := NewService(llm, prompt.NewBuilder("", 10), &fakeEngine{}, NewHistory(10, 100, time.Hour), nil)
	if _, err := svc.Reply(context.Background(), "u1", " \n "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if llm.Calls() != 0 {
		t.Fatalf("expected no backend call")
	}
}

func TestClearSession(t *testing.T) {
	history := NewHistory(10, 100, time.Hour)
	svc := NewService(&modeltest.FakeLLM{Reply: "x"}, prompt.NewBuilder("", 10), &fakeEngine{}, history, nil)
	if _, err := svc.Reply(context.Background(), "u1", "hi"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	svc.ClearSession("u1")
	if len(history.Get("u1")) != 0 {
		t.Fatalf("expected history to be cleared")
	}
}

func TestHistoryKeepsNewest(t *testing.T) {
	h := NewHistory(2, 100, time.Hour)
	for _, m := range []string{"a", "b", "c"} {
		h.Append("s", types.ChatTurn{User: m, Bot: m})
	}
	got := h.Get("s")
	if len(got) != 2 || got[0].User != "b" || got[1].User != "c" {
		t.Fatalf("unexpected history: %+v", got)
	}

	got[0].User = "mutated"
	if h.Get("s")[0].User != "b" {
		t.Fatalf("expected Get to return a copy")
	}
}

func TestHistoryZeroLimit(t *testing.T) {
	h := NewHistory(0, 100, time.Hour)
	h.Append("s", types.ChatTurn{User: "a"})
	if h.Len() != 0 {
		t.Fatalf("expected nothing kept")
	}
}

func TestHistoryEvictsLeastRecentSession(t *testing.T) {
	h := NewHistory(5, 2, 0)
	h.Append("s1", types.ChatTurn{User: "a"})
	h.Append("s2", types.ChatTurn{User: "b"})
	h.Get("s1")
	h.Append("s3", types.ChatTurn{User: "c"})

	if h.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", h.Len())
	}
	if len(h.Get("s2")) != 0 {
		t.Fatalf("expected s2 to be evicted")
	}
	if len(h.Get("s1")) != 1 || len(h.Get("s3")) != 1 {
		t.Fatalf("expected s1 and s3 to survive")
	}
}

func TestHistoryExpiresIdleSessions(t *testing.T) {
	h := NewHistory(5, 0, 50*time.Millisecond)
	h.Append("s", types.ChatTurn{User: "a"})
	if len(h.Get("s")) != 1 {
		t.Fatalf("expected the turn before expiry")
	}

	time.Sleep(120 * time.Millisecond)
	if got := h.Get("s"); len(got) != 0 {
		t.Fatalf("expected expired session, got %+v", got)
	}
}

var _ model.LLM = (*modeltest.FakeLLM)(nil)
var _ Engine = (*fakeEngine)(nil)
var _ Synthesizer = (*fakeSynth)(nil)
