package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"scentmatch-backend/internal/catalog"
	"scentmatch-backend/internal/fragrances"
	"scentmatch-backend/internal/shared/config"
	"scentmatch-backend/internal/shared/storage/db"
	"scentmatch-backend/internal/shared/storage/object"
	"scentmatch-backend/internal/shared/telemetry"
)

var (
	importFile      string
	importLimit     int
	importBatchSize int
	importDryRun    bool
	importEncoding  string
	importReportOut string
	importRegion    string

	importBestsellers     []string
	importBestsellerBoost float64
	importClassics        []string
	importClassicBoost    float64
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Score, clean and upsert the top catalog rows",
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "fra_cleaned.csv", "export location: a local path or s3://bucket/key")
	importCmd.Flags().IntVar(&importLimit, "limit", catalog.DefaultLimit, "number of fragrances to keep")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", catalog.DefaultBatchSize, "rows per upsert batch")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "print the report without writing")
	importCmd.Flags().StringVar(&importEncoding, "encoding", string(catalog.Latin1), "input encoding (latin1 or utf8)")
	importCmd.Flags().StringVar(&importReportOut, "report-out", "", "optional location to archive the JSON report")
	importCmd.Flags().StringVar(&importRegion, "region", "", "AWS region for s3:// locations (defaults to the SDK chain)")
	importCmd.Flags().StringSliceVar(&importBestsellers, "bestsellers", nil, "perfume names to boost as current bestsellers")
	importCmd.Flags().Float64Var(&importBestsellerBoost, "bestseller-boost", 3.0, "score multiplier for --bestsellers")
	importCmd.Flags().StringSliceVar(&importClassics, "classics", nil, "perfume names to boost as classics")
	importCmd.Flags().Float64Var(&importClassicBoost, "classic-boost", 2.0, "score multiplier for --classics")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	cfg := config.Load()
	telemetry.Configure(os.Stderr, logLevel)

	enc := catalog.Encoding(strings.ToLower(strings.TrimSpace(importEncoding)))
	if enc != catalog.Latin1 && enc != catalog.UTF8 {
		return fmt.Errorf("unsupported encoding %q", importEncoding)
	}

	src, err := object.Open(ctx, importFile, importRegion)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer src.Close()

	var repo catalog.Upserter
	if importDryRun {
		repo = fragrances.NewMemoryRepo()
	} else {
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required unless --dry-run is set")
		}
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
		if err != nil {
			return fmt.Errorf("database connection: %w", err)
		}
		defer sqlDB.Close()
		repo = &fragrances.PGRepo{DB: sqlDB}
	}

	boosts := []catalog.Boost{
		{Names: importBestsellers, Multiplier: importBestsellerBoost},
		{Names: importClassics, Multiplier: importClassicBoost},
	}
	report, _, err := catalog.NewImporter(repo).Import(ctx, src, catalog.Options{
		Limit:     importLimit,
		BatchSize: importBatchSize,
		DryRun:    importDryRun,
		Encoding:  enc,
		Boosts:    boosts,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if importReportOut != "" {
		store, key, err := object.Resolve(ctx, importReportOut, importRegion)
		if err != nil {
			return fmt.Errorf("report location: %w", err)
		}
		if _, err := store.Put(ctx, key, "application/json", bytes.NewReader(out)); err != nil {
			return fmt.Errorf("archive report: %w", err)
		}
		telemetry.Info("catalog.report_archived", map[string]any{"location": importReportOut})
	}
	return nil
}
