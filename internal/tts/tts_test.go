package tts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/easeaico/tsukuyomi/internal/metrics"
	"github.com/easeaico/tsukuyomi/internal/models/modeltest"
)

func newVoicevoxServer(t *testing.T, fail string) (*httptest.Server, *[]string) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.URL.Path+"?"+r.URL.RawQuery)
		mu.Unlock()

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path == fail {
			http.Error(w, "engine exploded", http.StatusInternalServerError)
			return
		}
		switch r.URL.Path {
		case "/audio_query":
			_ = json.NewEncoder(w).Encode(map[string]any{"text": r.URL.Query().Get("text"), "speedScale": 1.0})
		case "/synthesis":
			body, _ := io.ReadAll(r.Body)
			if r.Header.Get("Content-Type") != "application/json" || !json.Valid(body) {
				http.Error(w, "bad query", http.StatusUnprocessableEntity)
				return
			}
			_, _ = w.Write([]byte("RIFF....WAVE"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestVoicevoxSpeak(t *testing.T) {
	srv, calls := newVoicevoxServer(t, "")
	client := NewVoicevoxClient(srv.URL+"/", 58)

	wav, err := client.Speak(context.Background(), "こんにちは")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(wav) != "RIFF....WAVE" {
		t.Fatalf("unexpected wav: %q", wav)
	}
	if len(*calls) != 2 || !strings.HasPrefix((*calls)[0], "/audio_query?") || !strings.Contains((*calls)[0], "speaker=58") {
		t.Fatalf("unexpected calls: %v", *calls)
	}
	if (*calls)[1] != "/synthesis?speaker=58" {
		t.Fatalf("unexpected synthesis call: %s", (*calls)[1])
	}
}

func TestVoicevoxErrorsIncludeBody(t *testing.T) {
	for _, step := range []string{"/audio_query", "/synthesis"} {
		srv, _ := newVoicevoxServer(t, step)
		_, err := NewVoicevoxClient(srv.URL, 1).Speak(context.Background(), "hi")
		if err == nil || !strings.Contains(err.Error(), "engine exploded") {
			t.Fatalf("%s: expected error with body, got %v", step, err)
		}
	}
}

type fakeSpeaker struct {
	text string
	err  error
}

func (s *fakeSpeaker) Speak(ctx context.Context, text string) ([]byte, error) {
	s.text = text
	if s.err != nil {
		return nil, s.err
	}
	return []byte("wav"), nil
}

type fakeTranslator struct {
	out string
	err error
}

func (f *fakeTranslator) Translate(ctx context.Context, text string) (string, error) {
	return f.out, f.err
}

func TestSynthesizeWritesFile(t *testing.T) {
	dir := t.TempDir()
	speaker := &fakeSpeaker{}
	synth, err := NewSynthesizer(speaker, nil, Config{AudioDir: dir}, metrics.New())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	url, err := synth.Synthesize(context.Background(), "主人好～[emotion:joy]")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if speaker.text != "主人好～" {
		t.Fatalf("expected tags stripped, got %q", speaker.text)
	}
	if !strings.HasPrefix(url, "/static/audio/") || !strings.HasSuffix(url, ".wav") {
		t.Fatalf("unexpected url: %s", url)
	}
	name := strings.TrimPrefix(url, "/static/audio/")
	if len(name) != len("0123456789abcdef0123456789abcdef.wav") {
		t.Fatalf("expected uuid hex file name, got %s", name)
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil || string(data) != "wav" {
		t.Fatalf("expected audio file, got %q, %v", data, err)
	}
}

func TestSynthesizeSkipsEmptyText(t *testing.T) {
	speaker := &fakeSpeaker{}
	synth, err := NewSynthesizer(speaker, nil, Config{AudioDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := synth.Synthesize(context.Background(), " [emotion:shy] "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if speaker.text != "" {
		t.Fatalf("expected no synthesis call")
	}
}

func TestSynthesizeTranslation(t *testing.T) {
	speaker := &fakeSpeaker{}
	synth, err := NewSynthesizer(speaker, &fakeTranslator{out: "ご主人様～"}, Config{AudioDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := synth.Synthesize(context.Background(), "主人～"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if speaker.text != "ご主人様～" {
		t.Fatalf("expected translated text, got %q", speaker.text)
	}

	synth.translator = &fakeTranslator{err: errors.New("model offline")}
	if _, err := synth.Synthesize(context.Background(), "主人～"); err != nil {
		t.Fatalf("expected translation failure to be soft, got %v", err)
	}
	if speaker.text != "主人～" {
		t.Fatalf("expected untranslated text, got %q", speaker.text)
	}
}

func TestSynthesizeSpeakerFailure(t *testing.T) {
	synth, err := NewSynthesizer(&fakeSpeaker{err: errors.New("refused")}, nil, Config{AudioDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := synth.Synthesize(context.Background(), "hi"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTranslatorPrompt(t *testing.T) {
	llm := &modeltest.FakeLLM{Reply: "  ご主人様  \n"}
	out, err := NewTranslator(llm, "").Translate(context.Background(), "主人")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "ご主人様" {
		t.Fatalf("unexpected translation: %q", out)
	}
	prompt := llm.LastPrompt()
	if !strings.Contains(prompt, "保持角色語氣：可愛、撒嬌語氣") || !strings.Contains(prompt, "「主人」") {
		t.Fatalf("unexpected prompt: %s", prompt)
	}

	if out, err := NewTranslator(llm, "").Translate(context.Background(), "  "); err != nil || out != "" {
		t.Fatalf("expected blank passthrough, got %q, %v", out, err)
	}
	if llm.Calls() != 1 {
		t.Fatalf("expected no call for blank text")
	}
}

func TestCleanOldAudioKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		p := filepath.Join(dir, fmt.Sprintf("%d.wav", i))
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		ts := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(p, ts, ts); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	removed, err := CleanOldAudio(dir, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}

	entries, _ := os.ReadDir(dir)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if strings.Join(names, ",") != "3.wav,4.wav,notes.txt" {
		t.Fatalf("unexpected remaining files: %v", names)
	}
}

func TestCleanOldAudioMissingDir(t *testing.T) {
	removed, err := CleanOldAudio(filepath.Join(t.TempDir(), "missing"), 20)
	if err != nil || removed != 0 {
		t.Fatalf("expected no-op, got %d, %v", removed, err)
	}
}

func TestStartSweeper(t *testing.T) {
	s, err := StartSweeper("", func() {})
	if err != nil || s != nil {
		t.Fatalf("expected disabled sweeper, got %v, %v", s, err)
	}
	s.Stop()

	if _, err := StartSweeper("every tuesday", func() {}); err == nil {
		t.Fatalf("expected schedule error")
	}

	s, err = StartSweeper("*/5 * * * *", func() {})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	s.Stop()
}
