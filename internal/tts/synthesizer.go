package tts

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/easeaico/tsukuyomi/internal/emotion"
	"github.com/easeaico/tsukuyomi/internal/metrics"
)

// ErrEmptyText is returned when nothing is left to speak after removing tags.
var ErrEmptyText = errors.New("tts text is empty")

// Speaker renders text to WAV bytes.
type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// TextTranslator converts text before synthesis.
type TextTranslator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Config for a Synthesizer.
type Config struct {
	AudioDir string
	// URLPrefix is where AudioDir is served, e.g. /static/audio.
	URLPrefix string
	// Retain is how many WAV files survive each cleanup.
	Retain int
}

// Synthesizer writes persona replies as WAV files and returns their URLs.
type Synthesizer struct {
	speaker    Speaker
	translator TextTranslator
	cfg        Config
	metrics    *metrics.Recorder
}

// NewSynthesizer wires a synthesizer; translator may be nil.
func NewSynthesizer(speaker Speaker, translator TextTranslator, cfg Config, recorder *metrics.Recorder) (*Synthesizer, error) {
	if cfg.AudioDir == "" {
		cfg.AudioDir = "static/audio"
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = "/static/audio"
	}
	if cfg.Retain <= 0 {
		cfg.Retain = 20
	}
	if err := os.MkdirAll(cfg.AudioDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio dir: %w", err)
	}
	return &Synthesizer{
		speaker:    speaker,
		translator: translator,
		cfg:        cfg,
		metrics:    recorder,
	}, nil
}

// Synthesize strips emotion tags, optionally translates, renders speech and
// returns the file's URL. Old files are pruned in the background.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	clean := emotion.StripTags(text)
	if clean == "" {
		s.metrics.TTS(metrics.TTSSkipped)
		return "", ErrEmptyText
	}
	slog.Debug("tts text", "text", clean)

	if s.translator != nil {
		translated, err := s.translator.Translate(ctx, clean)
		switch {
		case err != nil:
			slog.Warn("translation failed, speaking untranslated text", "error", err.Error())
		case translated != "":
			slog.Debug("tts translated text", "text", translated)
			clean = translated
		}
	}

	wav, err := s.speaker.Speak(ctx, clean)
	if err != nil {
		s.metrics.TTS(metrics.TTSError)
		return "", err
	}

	id := uuid.New()
	name := hex.EncodeToString(id[:]) + ".wav"
	if err := os.WriteFile(filepath.Join(s.cfg.AudioDir, name), wav, 0o644); err != nil {
		s.metrics.TTS(metrics.TTSError)
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	s.metrics.TTS(metrics.TTSOK)

	go s.Cleanup()
	return path.Join(s.cfg.URLPrefix, name), nil
}

// Cleanup prunes the audio dir down to the retained count.
func (s *Synthesizer) Cleanup() {
	removed, err := CleanOldAudio(s.cfg.AudioDir, s.cfg.Retain)
	if err != nil {
		slog.Error("failed to clean audio cache", "error", err.Error())
		return
	}
	if removed > 0 {
		slog.Info("audio cache pruned", "removed", removed, "kept", s.cfg.Retain)
	}
}
