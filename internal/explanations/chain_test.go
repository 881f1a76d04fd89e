package explanations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scentmatch-backend/internal/experience"
	"scentmatch-backend/internal/llm"
	"scentmatch-backend/internal/quiz"
	"scentmatch-backend/internal/shared/telemetry"
)

func testMeta() FragranceMeta {
	return FragranceMeta{
		ID:              "chanel__bleu-de-chanel",
		Name:            "Bleu de Chanel",
		Brand:           "Chanel",
		ScentFamily:     "fresh",
		Accords:         []string{"citrus", "woody", "aromatic"},
		SampleAvailable: true,
		SamplePriceUSD:  15,
	}
}

func beginnerAudience() Audience {
	return Audience{
		Level:       experience.Beginner,
		Preferences: quiz.Preferences{ScentFamily: "fresh", Intensity: "light"},
	}
}

type panicGenerator struct{}

func (panicGenerator) Generate(context.Context, FragranceMeta, Audience) (Explanation, error) {
	panic("boom")
}

func TestChainBeginnerFirstAttempt(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, req llm.CompletionRequest) (string, error) {
		assert.Equal(t, "beginner_explanation", req.Purpose)
		return validBeginnerText, nil
	})
	rec := &telemetry.MemoryRecorder{}
	chain := NewChain(client, rec, 2)

	exp := chain.Explain(context.Background(), testMeta(), beginnerAudience())

	assert.Equal(t, "beginner", exp.Metadata.Stage)
	assert.Equal(t, 1, exp.Metadata.Attempts)
	assert.Equal(t, validBeginnerText, exp.Adaptive.Summary)
	require.NotNil(t, exp.Validation)
	assert.True(t, exp.Validation.Valid)
	require.NotEmpty(t, exp.Adaptive.EducationalTerms)
	assert.Equal(t, "fresh", exp.Adaptive.EducationalTerms[0].Term)
	assert.Contains(t, exp.Adaptive.ConfidenceBoost, "$15")
	assert.Empty(t, rec.Events())
}

func TestBeginnerRetriesWithFeedback(t *testing.T) {
	var prompts []string
	client := llm.ClientFunc(func(ctx context.Context, req llm.CompletionRequest) (string, error) {
		prompts = append(prompts, req.Prompt)
		if len(prompts) == 1 {
			return "Too short.", nil
		}
		return "🌿 " + validBeginnerText, nil
	})
	gen := NewBeginnerGenerator(client)

	exp, err := gen.Generate(context.Background(), testMeta(), beginnerAudience())
	require.NoError(t, err)
	assert.Equal(t, 2, exp.Metadata.Attempts)
	assert.Equal(t, validBeginnerText, exp.Text)
	require.Len(t, prompts, 2)
	assert.NotContains(t, prompts[0], "previous answer was rejected")
	assert.Contains(t, prompts[1], "previous answer was rejected")
	assert.Contains(t, prompts[1], "between 30 and 40")
}

func TestBeginnerExhaustsAttempts(t *testing.T) {
	var calls int32
	client := llm.ClientFunc(func(ctx context.Context, req llm.CompletionRequest) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "Nope.", nil
	})
	_, err := NewBeginnerGenerator(client).Generate(context.Background(), testMeta(), beginnerAudience())
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, int32(defaultBeginnerAttempts), atomic.LoadInt32(&calls))
}

func TestBeginnerStopsOnOpenCircuit(t *testing.T) {
	var calls int32
	client := llm.ClientFunc(func(ctx context.Context, req llm.CompletionRequest) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", llm.ErrCircuitOpen
	})
	_, err := NewBeginnerGenerator(client).Generate(context.Background(), testMeta(), beginnerAudience())
	require.ErrorIs(t, err, llm.ErrCircuitOpen)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestChainFallsBackToTemplateWhenLLMFails(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, req llm.CompletionRequest) (string, error) {
		return "", errors.New("openai http status 500: down")
	})
	rec := &telemetry.MemoryRecorder{}
	chain := NewChain(client, rec, 1)

	exp := chain.Explain(context.Background(), testMeta(), beginnerAudience())

	assert.Equal(t, "template", exp.Metadata.Stage)
	assert.LessOrEqual(t, CountWords(exp.Adaptive.Summary), 40)
	assert.Contains(t, strings.ToLower(exp.Adaptive.Summary), "sample")
	assert.Contains(t, exp.Adaptive.Summary, "Bleu de Chanel")
	failures := rec.Named("explanations.stage_failed")
	require.Len(t, failures, 2)
	for _, ev := range failures {
		assert.Equal(t, "Bleu de Chanel", ev.Fields["fragrance_name"])
		assert.Equal(t, "beginner", ev.Fields["level"])
		assert.Contains(t, ev.Fields, "elapsed_ms")
		assert.IsType(t, int64(0), ev.Fields["elapsed_ms"])
	}
	fallback := rec.Named("explanations.fallback")
	require.Len(t, fallback, 1)
	assert.Equal(t, "template", fallback[0].Fields["stage"])
}

func TestChainSimpleStageConformsBeginnerText(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, req llm.CompletionRequest) (string, error) {
		if req.Purpose == "simple_explanation" {
			return strings.Repeat("bright citrus opening with a woody base ", 10), nil
		}
		return "", errors.New("openai request timeout")
	})
	exp := NewChain(client, nil, 1).Explain(context.Background(), testMeta(), beginnerAudience())

	assert.Equal(t, "simple", exp.Metadata.Stage)
	assert.LessOrEqual(t, CountWords(exp.Text), 40)
	assert.True(t, strings.HasSuffix(exp.Text, "Try a sample for $15."))
}

func TestChainWithoutClientUsesTemplate(t *testing.T) {
	rec := &telemetry.MemoryRecorder{}
	exp := NewChain(nil, rec, 1).Explain(context.Background(), testMeta(), Audience{Level: experience.Advanced})

	assert.Equal(t, "template", exp.Metadata.Stage)
	assert.Empty(t, rec.Named("explanations.stage_failed"))
	assert.Empty(t, exp.Adaptive.EducationalTerms)
	assert.Empty(t, exp.Adaptive.ConfidenceBoost)
	assert.Contains(t, exp.Text, "citrus, woody, aromatic")
}

func TestChainRecoversGeneratorPanic(t *testing.T) {
	rec := &telemetry.MemoryRecorder{}
	chain := &Chain{Beginner: panicGenerator{}, Recorder: rec}

	exp := chain.Explain(context.Background(), testMeta(), beginnerAudience())

	assert.Equal(t, "template", exp.Metadata.Stage)
	failed := rec.Named("explanations.stage_failed")
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Fields["error"], "panic")
}

func TestAdaptiveAdvancedHasNoScaffolding(t *testing.T) {
	summary := strings.TrimSpace(strings.Repeat("structured aromatic fougere ", 16))
	client := llm.ClientFunc(func(ctx context.Context, req llm.CompletionRequest) (string, error) {
		assert.True(t, req.JSON)
		return fmt.Sprintf("```json\n{\"summary\": %q, \"expanded_content\": \"Long drydown.\"}\n```", summary), nil
	})
	exp := NewChain(client, nil, 1).Explain(context.Background(), testMeta(), Audience{Level: experience.Advanced})

	assert.Equal(t, "adaptive", exp.Metadata.Stage)
	assert.Equal(t, experience.Advanced, exp.Adaptive.UserExperienceLevel)
	assert.Equal(t, "Long drydown.", exp.Adaptive.ExpandedContent)
	assert.Empty(t, exp.Adaptive.EducationalTerms)
	assert.Empty(t, exp.Adaptive.ConfidenceBoost)
}

func TestAdaptiveTooLongFallsThrough(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 80))
	var adaptiveCalls int32
	client := llm.ClientFunc(func(ctx context.Context, req llm.CompletionRequest) (string, error) {
		if req.Purpose == "adaptive_explanation" {
			atomic.AddInt32(&adaptiveCalls, 1)
			return fmt.Sprintf(`{"summary": %q}`, long), nil
		}
		return long, nil
	})
	exp := NewChain(client, nil, 1).Explain(context.Background(), testMeta(), Audience{Level: experience.Intermediate})

	assert.Equal(t, int32(defaultAdaptiveAttempts), atomic.LoadInt32(&adaptiveCalls))
	assert.Equal(t, "simple", exp.Metadata.Stage)
	assert.LessOrEqual(t, CountWords(exp.Text), 60)
}

func TestExplainAllKeepsOrderAndBoundsConcurrency(t *testing.T) {
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	client := llm.ClientFunc(func(ctx context.Context, req llm.CompletionRequest) (string, error) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return validBeginnerText, nil
	})
	metas := make([]FragranceMeta, 9)
	for i := range metas {
		metas[i] = testMeta()
		metas[i].ID = fmt.Sprintf("brand__item-%d", i)
	}

	out := NewChain(client, nil, 3).ExplainAll(context.Background(), metas, beginnerAudience())

	require.Len(t, out, len(metas))
	for i := range out {
		assert.Equal(t, "beginner", out[i].Metadata.Stage, "item %d", i)
	}
	assert.LessOrEqual(t, maxSeen, 3)
}

func TestExplainAllCancelledContextStillExplains(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := llm.ClientFunc(func(ctx context.Context, req llm.CompletionRequest) (string, error) {
		return "", ctx.Err()
	})
	out := NewChain(client, nil, 2).ExplainAll(ctx, []FragranceMeta{testMeta(), testMeta()}, beginnerAudience())
	require.Len(t, out, 2)
	for _, exp := range out {
		assert.Equal(t, "template", exp.Metadata.Stage)
	}
}
