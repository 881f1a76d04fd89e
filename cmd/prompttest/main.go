package main

// Preview explanation output for one fragrance against the configured model:
//   go run ./cmd/prompttest -name Sauvage -brand Dior -family fresh -accords citrus,amber -level beginner

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"scentmatch-backend/internal/experience"
	"scentmatch-backend/internal/explanations"
	"scentmatch-backend/internal/llm"
	openai "scentmatch-backend/internal/llm/openai"
	"scentmatch-backend/internal/quiz"
	"scentmatch-backend/internal/shared/config"
	"scentmatch-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()

	name := flag.String("name", "", "Fragrance name")
	brand := flag.String("brand", "", "Brand")
	family := flag.String("family", "", "Scent family")
	accords := flag.String("accords", "", "Comma separated accords")
	price := flag.Int("price", 15, "Sample price in USD")
	level := flag.String("level", "beginner", "Audience level (beginner, intermediate, advanced)")
	stage := flag.String("stage", "chain", "Stage to run: chain, beginner, adaptive, simple, template")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	if strings.TrimSpace(*name) == "" {
		exitErr("name is required")
	}

	meta := explanations.FragranceMeta{
		ID:              "preview",
		Name:            *name,
		Brand:           *brand,
		ScentFamily:     *family,
		Accords:         splitList(*accords),
		SampleAvailable: true,
		SamplePriceUSD:  *price,
	}
	lvl := experience.ParseLevel(*level)
	aud := explanations.Audience{
		Level:       lvl,
		Style:       experience.StyleFor(lvl),
		Preferences: quiz.Preferences{ScentFamily: *family},
	}

	var client llm.Client
	if *stage != "template" {
		c, err := buildClient(*provider, *model, cfg.OpenAIAPIKey)
		if err != nil {
			exitErr(err.Error())
		}
		client = c
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var (
		exp explanations.Explanation
		err error
	)
	recorder := &telemetry.MemoryRecorder{}
	switch strings.TrimSpace(*stage) {
	case "chain":
		exp = explanations.NewChain(client, recorder, 1).Explain(ctx, meta, aud)
	case "beginner":
		exp, err = explanations.NewBeginnerGenerator(client).Generate(ctx, meta, aud)
	case "adaptive":
		exp, err = explanations.NewAdaptiveGenerator(client).Generate(ctx, meta, aud)
	case "simple":
		exp, err = explanations.NewSimpleGenerator(client).Generate(ctx, meta, aud)
	case "template":
		exp, err = explanations.TemplateGenerator{}.Generate(ctx, meta, aud)
	default:
		exitErr(fmt.Sprintf("unsupported stage: %s", *stage))
	}
	if err != nil {
		exitErr(fmt.Sprintf("%s stage: %v", *stage, err))
	}

	pretty, err := json.MarshalIndent(map[string]any{
		"explanation": exp,
		"words":       explanations.CountWords(exp.Text),
		"events":      recorder.Events(),
	}, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(append(pretty, '\n')); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func buildClient(provider, model, apiKey string) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "openai":
		return openai.NewClient(apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
