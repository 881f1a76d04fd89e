package explanations

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"scentmatch-backend/internal/experience"
	"scentmatch-backend/internal/llm"
	"scentmatch-backend/internal/shared/metrics"
	"scentmatch-backend/internal/shared/telemetry"
	"scentmatch-backend/internal/shared/util"
)

const (
	DefaultConcurrency  = 4
	DefaultStageTimeout = 20 * time.Second
)

// Stage is one named step of the fallback chain.
type Stage struct {
	Name      string
	Generator Generator
}

// Chain runs the level generator, then the simple prompt, then the template,
// returning the first output that satisfies the level's word policy.
type Chain struct {
	Beginner     Generator
	Adaptive     Generator
	Simple       Generator
	Template     TemplateGenerator
	Recorder     telemetry.Recorder
	Concurrency  int
	StageTimeout time.Duration
}

// NewChain wires every stage to the same client. A nil client leaves only the template.
func NewChain(client llm.Client, recorder telemetry.Recorder, concurrency int) *Chain {
	c := &Chain{
		Recorder:     telemetry.OrNop(recorder),
		Concurrency:  concurrency,
		StageTimeout: DefaultStageTimeout,
	}
	if client != nil {
		c.Beginner = NewBeginnerGenerator(client)
		c.Adaptive = NewAdaptiveGenerator(client)
		c.Simple = NewSimpleGenerator(client)
	}
	return c
}

func (c *Chain) stages(level experience.Level) []Stage {
	primary := Stage{Name: "adaptive", Generator: c.Adaptive}
	if level == experience.Beginner {
		primary = Stage{Name: "beginner", Generator: c.Beginner}
	}
	return []Stage{
		primary,
		{Name: "simple", Generator: c.Simple},
		{Name: "template", Generator: c.Template},
	}
}

// Explain always returns an explanation.
func (c *Chain) Explain(ctx context.Context, meta FragranceMeta, aud Audience) Explanation {
	if aud.Level == "" {
		aud.Level = experience.Beginner
	}
	rec := telemetry.OrNop(c.Recorder)
	start := time.Now()

	for i, st := range c.stages(aud.Level) {
		if st.Generator == nil {
			continue
		}
		exp, err := c.run(ctx, st, meta, aud)
		if err == nil && !conforms(exp.Adaptive.Summary, aud.Level) {
			err = fmt.Errorf("%w: %s output outside %s word policy", ErrValidationFailed, st.Name, aud.Level)
		}
		if err != nil {
			rec.Event(ctx, "explanations.stage_failed", map[string]any{
				"fragrance_id":   meta.ID,
				"fragrance_name": meta.Name,
				"stage":          st.Name,
				"level":          string(aud.Level),
				"elapsed_ms":     time.Since(start).Milliseconds(),
				"error":          util.SanitizeError(err),
			})
			continue
		}

		exp.Metadata.Stage = st.Name
		exp.Metadata.ElapsedMs = time.Since(start).Milliseconds()
		metrics.ExplanationStage.WithLabelValues(st.Name, string(aud.Level)).Inc()
		if i > 0 {
			rec.Event(ctx, "explanations.fallback", map[string]any{
				"fragrance_id": meta.ID,
				"stage":        st.Name,
				"level":        string(aud.Level),
				"elapsed_ms":   exp.Metadata.ElapsedMs,
			})
		}
		return exp
	}

	// Only reachable when the template itself was removed from the chain.
	exp := renderTemplate(meta, aud)
	exp.Metadata.ElapsedMs = time.Since(start).Milliseconds()
	metrics.ExplanationStage.WithLabelValues("template", string(aud.Level)).Inc()
	return exp
}

func (c *Chain) run(ctx context.Context, st Stage, meta FragranceMeta, aud Audience) (exp Explanation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s generator panic: %v", st.Name, r)
		}
	}()
	if c.StageTimeout > 0 && st.Name != "template" {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.StageTimeout)
		defer cancel()
	}
	return st.Generator.Generate(ctx, meta, aud)
}

// ExplainAll explains every item with bounded concurrency. The result has the
// same length and order as metas.
func (c *Chain) ExplainAll(ctx context.Context, metas []FragranceMeta, aud Audience) []Explanation {
	out := make([]Explanation, len(metas))
	limit := c.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i := range metas {
		g.Go(func() error {
			out[i] = c.Explain(ctx, metas[i], aud)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
