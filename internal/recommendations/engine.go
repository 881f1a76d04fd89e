// Package recommendations turns quiz submissions into ranked fragrance
// recommendations with experience-tuned explanations.
package recommendations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"scentmatch-backend/internal/experience"
	"scentmatch-backend/internal/explanations"
	"scentmatch-backend/internal/quiz"
	"scentmatch-backend/internal/shared/metrics"
	"scentmatch-backend/internal/shared/telemetry"
	"scentmatch-backend/internal/shared/util"
)

const (
	DefaultAlgorithmVersion = "unified-v1"
	DefaultLimit            = 3
	MaxLimit                = 10

	genericFailure    = "Something went wrong, please try again"
	incompleteFailure = "Please answer all required quiz questions"
)

// Explainer fills explanations for a batch, preserving order.
type Explainer interface {
	ExplainAll(ctx context.Context, metas []explanations.FragranceMeta, aud explanations.Audience) []explanations.Explanation
}

// ExperienceAnalyzer classifies the requester.
type ExperienceAnalyzer interface {
	Analyze(ctx context.Context, uc experience.UserContext) experience.Analysis
}

// SessionStore persists submissions so results can be fetched by token.
type SessionStore interface {
	Create(ctx context.Context, userID string, responses quiz.Responses, result any) (quiz.Session, error)
	Get(ctx context.Context, token, requesterID string) (quiz.Session, error)
}

type Engine struct {
	Database         *DatabaseStrategy
	AI               *AIStrategy
	Detector         ExperienceAnalyzer
	Explainer        Explainer
	Sessions         SessionStore
	Recorder         telemetry.Recorder
	AlgorithmVersion string
	DefaultStrategy  Strategy
	Now              func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Generate never returns an error and never panics outward: every failure is
// reported through Result.Success and the recorder.
func (e *Engine) Generate(ctx context.Context, req Request) (res Result) {
	start := e.now()
	rec := telemetry.OrNop(e.Recorder)
	version := e.AlgorithmVersion
	if version == "" {
		version = DefaultAlgorithmVersion
	}
	fallback := e.DefaultStrategy
	if fallback == "" {
		fallback = StrategyHybrid
	}

	strategy, parseErr := ParseStrategy(req.Strategy, fallback)
	label := string(strategy)
	if parseErr != nil {
		label = "invalid"
	}
	res = Result{
		Recommendations: []Item{},
		Metadata:        Metadata{StrategyUsed: label, AlgorithmVersion: version},
	}

	defer func() {
		if r := recover(); r != nil {
			rec.Event(ctx, "recommendations.panic", map[string]any{
				"strategy": label,
				"error":    fmt.Sprint(r),
			})
			res = failed(res.Metadata, genericFailure)
		}
		elapsed := e.now().Sub(start)
		res.ProcessingTimeMs = elapsed.Milliseconds()
		metrics.ObserveRecommendation(label, res.Success, elapsed)
		rec.Event(ctx, "recommendations.completed", map[string]any{
			"strategy":   label,
			"success":    res.Success,
			"count":      len(res.Recommendations),
			"elapsed_ms": res.ProcessingTimeMs,
		})
	}()

	if parseErr != nil {
		rec.Event(ctx, "recommendations.invalid_strategy", map[string]any{"strategy": req.Strategy})
		return failed(res.Metadata, genericFailure)
	}

	responses := e.responses(ctx, req)
	prefs := responses.Derive()
	if req.UserPreferences != nil {
		prefs = prefs.Merge(*req.UserPreferences)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	out, err := e.dispatch(ctx, strategy, responses, prefs, limit)
	if err != nil {
		msg := genericFailure
		if errors.Is(err, quiz.ErrIncompleteQuiz) {
			msg = incompleteFailure
		}
		return failed(res.Metadata, msg)
	}

	analysis := e.detect(ctx, req.UserID, prefs)
	res.Success = true
	res.Experience = &analysis
	res.PersonalityAnalysis = out.personality
	res.ConfidenceScore = out.confidence
	res.Recommendations = e.enhance(ctx, out.items, analysis, prefs, req.UserID)
	res.QuizSessionToken = e.saveSession(ctx, req.UserID, responses, res)
	return res
}

func failed(meta Metadata, message string) Result {
	return Result{
		Success:         false,
		Recommendations: []Item{},
		Metadata:        meta,
		Error:           message,
	}
}

// responses falls back to a saved session's answers when the request has none.
func (e *Engine) responses(ctx context.Context, req Request) quiz.Responses {
	if len(req.QuizResponses) > 0 || strings.TrimSpace(req.SessionToken) == "" || e.Sessions == nil {
		return req.QuizResponses
	}
	session, err := e.Sessions.Get(ctx, req.SessionToken, req.UserID)
	if err != nil {
		telemetry.OrNop(e.Recorder).Event(ctx, "recommendations.session_lookup_failed", map[string]any{
			"error": util.SanitizeError(err),
		})
		return nil
	}
	return session.Responses
}

func (e *Engine) dispatch(ctx context.Context, strategy Strategy, responses quiz.Responses, prefs quiz.Preferences, limit int) (outcome, error) {
	switch strategy {
	case StrategyDatabase:
		out, err := e.Database.Recommend(ctx, prefs, limit)
		if err != nil {
			e.strategyFailed(ctx, StrategyDatabase, err)
		}
		return out, err
	case StrategyAI:
		out, err := e.AI.Recommend(ctx, responses, prefs, limit)
		if err != nil {
			e.strategyFailed(ctx, StrategyAI, err)
		}
		return out, err
	case StrategyHybrid:
		return e.hybrid(ctx, responses, prefs, limit)
	default:
		return outcome{}, ErrInvalidStrategy
	}
}

// hybrid runs both strategies concurrently. Either half may fail alone.
func (e *Engine) hybrid(ctx context.Context, responses quiz.Responses, prefs quiz.Preferences, limit int) (outcome, error) {
	var (
		g            errgroup.Group
		dbOut, aiOut outcome
		dbErr, aiErr error
	)
	g.Go(func() error {
		defer recoverInto(&dbErr, StrategyDatabase)
		dbOut, dbErr = e.Database.Recommend(ctx, prefs, limit)
		return nil
	})
	g.Go(func() error {
		defer recoverInto(&aiErr, StrategyAI)
		aiOut, aiErr = e.AI.Recommend(ctx, responses, prefs, limit)
		return nil
	})
	_ = g.Wait()

	var db, ai *outcome
	if dbErr != nil {
		e.strategyFailed(ctx, StrategyDatabase, dbErr)
	} else {
		db = &dbOut
	}
	if aiErr != nil {
		e.strategyFailed(ctx, StrategyAI, aiErr)
	} else {
		ai = &aiOut
	}
	if db == nil && ai == nil {
		return outcome{}, errors.Join(dbErr, aiErr)
	}

	out := outcome{confidence: hybridConfidence(db, ai)}
	var dbItems, aiItems []Item
	if db != nil {
		dbItems = db.items
	}
	if ai != nil {
		aiItems = ai.items
		out.personality = ai.personality
	}
	out.items = merge(dbItems, aiItems, limit)
	return out, nil
}

// recoverInto turns a panic on a strategy goroutine into that strategy's error.
func recoverInto(err *error, strategy Strategy) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s strategy panic: %v", strategy, r)
	}
}

func (e *Engine) strategyFailed(ctx context.Context, strategy Strategy, err error) {
	metrics.StrategyFailures.WithLabelValues(string(strategy)).Inc()
	telemetry.OrNop(e.Recorder).Event(ctx, "recommendations.strategy_failed", map[string]any{
		"strategy": string(strategy),
		"error":    util.SanitizeError(err),
	})
}

func (e *Engine) detect(ctx context.Context, userID string, prefs quiz.Preferences) experience.Analysis {
	uc := experience.UserContext{UserID: userID, DeclaredLevel: prefs.Experience}
	if e.Detector == nil {
		var d *experience.Detector
		return d.Analyze(ctx, uc)
	}
	return e.Detector.Analyze(ctx, uc)
}

// enhance attaches explanations. Items keep their order; an item the explainer
// leaves empty gets the template text.
func (e *Engine) enhance(ctx context.Context, items []Item, analysis experience.Analysis, prefs quiz.Preferences, userID string) []Item {
	if len(items) == 0 {
		return []Item{}
	}
	explainer := e.Explainer
	if explainer == nil {
		explainer = explanations.NewChain(nil, e.Recorder, 0)
	}
	aud := explanations.Audience{
		UserID:      userID,
		Level:       analysis.Level,
		Style:       analysis.RecommendedExplanationStyle,
		Preferences: prefs,
	}
	metas := make([]explanations.FragranceMeta, len(items))
	for i, it := range items {
		metas[i] = it.meta()
	}
	explained := e.explainAll(ctx, explainer, metas, aud)

	out := make([]Item, len(items))
	for i, it := range items {
		var exp explanations.Explanation
		if i < len(explained) {
			exp = explained[i]
		}
		if strings.TrimSpace(exp.Text) == "" {
			exp, _ = explanations.TemplateGenerator{}.Generate(ctx, metas[i], aud)
		}
		adaptive := exp.Adaptive
		it.Explanation = exp.Text
		it.AdaptiveExplanation = &adaptive
		out[i] = it
	}
	return out
}

// explainAll returns nil when the explainer panics so every item falls back
// to the template.
func (e *Engine) explainAll(ctx context.Context, explainer Explainer, metas []explanations.FragranceMeta, aud explanations.Audience) (out []explanations.Explanation) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.OrNop(e.Recorder).Event(ctx, "recommendations.explainer_panic", map[string]any{
				"count": len(metas),
				"level": string(aud.Level),
				"error": fmt.Sprint(r),
			})
			out = nil
		}
	}()
	return explainer.ExplainAll(ctx, metas, aud)
}

func (e *Engine) saveSession(ctx context.Context, userID string, responses quiz.Responses, res Result) string {
	if e.Sessions == nil || len(responses) == 0 {
		return ""
	}
	session, err := e.Sessions.Create(ctx, userID, responses, res)
	if err != nil {
		telemetry.OrNop(e.Recorder).Event(ctx, "recommendations.session_save_failed", map[string]any{
			"error": util.SanitizeError(err),
		})
		return ""
	}
	return session.Token
}
