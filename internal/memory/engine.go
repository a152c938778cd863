package memory

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/easeaico/tsukuyomi/internal/emotion"
	"github.com/easeaico/tsukuyomi/internal/metrics"
	"github.com/easeaico/tsukuyomi/internal/types"
	"github.com/easeaico/tsukuyomi/internal/utils"
)

// minFactRunes is the shortest trimmed fact worth keeping.
const minFactRunes = 4

// Judge estimates the intimacy delta of a turn.
type Judge interface {
	Evaluate(ctx context.Context, userMessage, botReply string, current int) (int, error)
}

// Config holds the engine's tunables.
type Config struct {
	MaxFacts        int
	DefaultIntimacy int
	Bounds          emotion.Bounds
	Alpha           float64
}

// DefaultConfig matches the persona prompt's 0-100 scale.
func DefaultConfig() Config {
	return Config{
		MaxFacts:        20,
		DefaultIntimacy: 50,
		Bounds:          emotion.DefaultBounds,
		Alpha:           0.3,
	}
}

// Option customizes an Engine.
type Option func(*Engine)

// WithMetrics records turn and fallback counters on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

// WithFallbackExtractor replaces the pattern extractor used when the primary yields nothing.
func WithFallbackExtractor(x Extractor) Option {
	return func(e *Engine) { e.fallback = x }
}

// WithClock overrides the timestamp source for saved records.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine updates long-term facts and intimacy after every chat turn.
// None of its methods fail because of the backend or the store; failures
// are logged and the defaults are used instead.
type Engine struct {
	store     Store
	judge     Judge
	extractor Extractor
	fallback  Extractor
	cfg       Config
	locks     *lockTable
	metrics   *metrics.Recorder
	now       func() time.Time
}

// NewEngine wires an engine. judge and extractor may be nil, in which case
// only the keyword and pattern heuristics run.
func NewEngine(store Store, judge Judge, extractor Extractor, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		judge:     judge,
		extractor: extractor,
		fallback:  PatternExtractor{},
		cfg:       cfg,
		locks:     newLockTable(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessTurn extracts facts from userMessage and moves intimacy for the
// (userMessage, botReply) pair. The two updates run concurrently and each
// holds the user's lock only for its own load-modify-save.
func (e *Engine) ProcessTurn(ctx context.Context, userID, userMessage, botReply string) types.TurnResult {
	// the reply is already generated; a client disconnect must not drop the save
	ctx = context.WithoutCancel(ctx)
	var (
		g        errgroup.Group
		added    int
		intimacy int
		total    int
	)
	g.Go(func() error {
		added = e.UpdateFacts(ctx, userID, userMessage)
		return nil
	})
	g.Go(func() error {
		intimacy, total = e.UpdateIntimacy(ctx, userID, userMessage, botReply)
		return nil
	})
	_ = g.Wait()

	e.metrics.Turn(total)
	return types.TurnResult{
		Intimacy:    intimacy,
		Level:       emotion.LevelName(intimacy),
		TotalChange: total,
		FactsAdded:  added,
	}
}

// UpdateIntimacy returns the new intimacy and the clamped total change.
func (e *Engine) UpdateIntimacy(ctx context.Context, userID, userMessage, botReply string) (int, int) {
	// The judge sees a snapshot; the write below reloads under the lock.
	current, _ := e.load(ctx, userID)

	llmDelta := e.judgeDelta(ctx, userID, userMessage, botReply, current.Intimacy)
	emotionDelta := emotion.ReplyWeight(botReply)
	total := emotion.ClampChange(llmDelta + emotionDelta)

	slog.Debug("intimacy delta",
		"user_id", userID,
		"llm_delta", llmDelta,
		"emotion_delta", emotionDelta,
		"total", total,
	)
	return e.apply(ctx, userID, total), total
}

func (e *Engine) judgeDelta(ctx context.Context, userID, userMessage, botReply string, current int) int {
	if e.judge == nil {
		return emotion.KeywordDelta(userMessage)
	}

	delta, err := e.judge.Evaluate(ctx, userMessage, botReply, current)
	if err != nil {
		slog.Warn("intimacy judge failed, using keywords", "user_id", userID, "error", err.Error())
		e.metrics.Fallback(metrics.ReasonJudgeError)
		return emotion.KeywordDelta(userMessage)
	}
	if delta == 0 {
		// "no change" looks the same as "did not run"
		e.metrics.Fallback(metrics.ReasonJudgeZero)
		return emotion.KeywordDelta(userMessage)
	}
	return emotion.ClampChange(delta)
}

// Adjust applies one smoothing step with an arbitrary amount. Only the
// result is clamped to the configured bounds.
func (e *Engine) Adjust(ctx context.Context, userID string, amount int) int {
	return e.apply(context.WithoutCancel(ctx), userID, amount)
}

func (e *Engine) apply(ctx context.Context, userID string, amount int) int {
	unlock := e.locks.lock(userID)
	defer unlock()

	rec, ok := e.load(ctx, userID)
	old := rec.Intimacy
	rec.Intimacy = emotion.Smooth(old, amount, e.cfg.Alpha, e.cfg.Bounds)
	if !ok {
		// never overwrite a record we could not read
		return rec.Intimacy
	}

	rec.UpdatedAt = e.now()
	if err := e.store.Save(ctx, rec); err != nil {
		slog.Error("failed to save intimacy", "user_id", userID, "error", err.Error())
		return rec.Intimacy
	}
	slog.Info("intimacy adjusted", "user_id", userID, "from", old, "to", rec.Intimacy, "amount", amount)
	return rec.Intimacy
}

// UpdateFacts extracts facts from message and appends the new ones.
// It returns how many facts were added.
func (e *Engine) UpdateFacts(ctx context.Context, userID, message string) int {
	candidates := e.extract(ctx, userID, message)

	facts := make([]string, 0, len(candidates))
	for _, fact := range candidates {
		fact = strings.TrimSpace(fact)
		if utils.RuneLen(fact) >= minFactRunes {
			facts = append(facts, fact)
		}
	}
	if len(facts) == 0 {
		return 0
	}

	unlock := e.locks.lock(userID)
	defer unlock()

	rec, ok := e.load(ctx, userID)
	if !ok {
		return 0
	}

	added := 0
	for _, fact := range facts {
		if slices.Contains(rec.Facts, fact) {
			continue
		}
		rec.Facts = append(rec.Facts, fact)
		added++
		slog.Info("memory fact added", "user_id", userID, "fact", fact)
	}
	if added == 0 {
		return 0
	}
	rec.Facts = keepNewest(rec.Facts, e.cfg.MaxFacts)
	rec.UpdatedAt = e.now()

	if err := e.store.Save(ctx, rec); err != nil {
		slog.Error("failed to save facts", "user_id", userID, "error", err.Error())
		return 0
	}
	e.metrics.FactsAdded(added)
	return added
}

// extract runs the primary extractor and falls back to patterns when it
// fails or finds nothing.
func (e *Engine) extract(ctx context.Context, userID, message string) []string {
	if e.extractor != nil {
		facts, err := e.extractor.Extract(ctx, message)
		if err != nil {
			slog.Warn("fact extraction failed, using patterns", "user_id", userID, "error", err.Error())
		}
		if len(facts) > 0 {
			e.metrics.Extraction(metrics.StrategyModel)
			return facts
		}
	}
	if e.fallback == nil {
		return nil
	}

	facts, err := e.fallback.Extract(ctx, message)
	if err != nil {
		slog.Warn("fallback fact extraction failed", "user_id", userID, "error", err.Error())
		return nil
	}
	if len(facts) > 0 {
		e.metrics.Extraction(metrics.StrategyPattern)
	}
	return facts
}

// GetState returns the user's intimacy, its tier label and the stored facts.
func (e *Engine) GetState(ctx context.Context, userID string) types.State {
	rec, _ := e.load(ctx, userID)
	return types.State{
		Intimacy: rec.Intimacy,
		Level:    emotion.LevelName(rec.Intimacy),
		Facts:    rec.Facts,
	}
}

// Facts returns the stored facts, oldest first.
func (e *Engine) Facts(ctx context.Context, userID string) []string {
	rec, _ := e.load(ctx, userID)
	return rec.Facts
}

// Clear drops the user's persisted record.
func (e *Engine) Clear(ctx context.Context, userID string) error {
	unlock := e.locks.lock(userID)
	defer unlock()

	if err := e.store.Delete(ctx, userID); err != nil {
		slog.Error("failed to clear memory", "user_id", userID, "error", err.Error())
		return err
	}
	slog.Info("memory cleared", "user_id", userID)
	return nil
}

// load returns the stored record or the default one. ok is false when the
// store failed, so callers know not to write back.
func (e *Engine) load(ctx context.Context, userID string) (*types.UserRecord, bool) {
	rec, err := e.store.Load(ctx, userID)
	if err != nil {
		slog.Error("failed to load memory", "user_id", userID, "error", err.Error())
		return e.defaultRecord(userID), false
	}
	if rec == nil {
		return e.defaultRecord(userID), true
	}

	rec = rec.Clone()
	rec.UserID = userID
	if rec.Facts == nil {
		rec.Facts = []string{}
	}
	rec.Intimacy = e.cfg.Bounds.Clamp(rec.Intimacy)
	return rec, true
}

func (e *Engine) defaultRecord(userID string) *types.UserRecord {
	return &types.UserRecord{
		UserID:   userID,
		Facts:    []string{},
		Intimacy: e.cfg.Bounds.Clamp(e.cfg.DefaultIntimacy),
	}
}

// keepNewest drops the oldest facts beyond limit.
func keepNewest(facts []string, limit int) []string {
	if limit <= 0 || len(facts) <= limit {
		return facts
	}
	return append([]string(nil), facts[len(facts)-limit:]...)
}
