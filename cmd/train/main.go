package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/dropsafe/dropsafe-api/internal/risk"
)

func main() {
	var (
		csvPath    = flag.String("csv", "", "cohort CSV to train on; omit to generate a synthetic cohort")
		count      = flag.Int("n", 200, "synthetic cohort size when no CSV is given")
		seed       = flag.Int64("seed", 42, "random seed for sampling and model fitting")
		policy     = flag.String("policy", "weighted", "proxy label policy: weighted or threshold")
		out        = flag.String("out", "data/model_artifact.json", "artifact output path")
		folds      = flag.Int("folds", 5, "cross-validation folds")
		noBoost    = flag.Bool("no-boost", false, "skip the gradient boosting candidate")
		noResample = flag.Bool("no-resample", false, "skip minority oversampling on the training split")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	records, err := loadRecords(*csvPath, *count, *seed, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load cohort")
	}

	cfg := risk.TrainerConfig{
		LabelPolicy:            risk.LabelPolicy(*policy),
		Seed:                   *seed,
		Folds:                  *folds,
		TestFraction:           0.2,
		EnableGradientBoosting: !*noBoost,
		EnableOversampling:     !*noResample,
	}

	trainer := risk.NewTrainer(cfg, logger)
	pipeline, err := trainer.Train(records)
	if err != nil {
		logger.Fatal().Err(err).Msg("training failed")
	}

	printPerformance(pipeline)

	if err := risk.SaveArtifact(*out, pipeline); err != nil {
		logger.Fatal().Err(err).Str("path", *out).Msg("failed to save artifact")
	}
	logger.Info().
		Str("algorithm", pipeline.Algorithm).
		Str("path", *out).
		Int("samples", len(records)).
		Msg("artifact saved")
}

func loadRecords(path string, count int, seed int64, logger zerolog.Logger) ([]risk.StudentRecord, error) {
	if path == "" {
		logger.Info().Int("count", count).Int64("seed", seed).Msg("generating synthetic cohort")
		return risk.GenerateSampleCohort(count, seed), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("csv %s contains no data rows", path)
	}

	records, report, err := risk.ParseTable(rows[0], rows[1:], risk.RejectRows)
	if err != nil {
		return nil, err
	}
	if len(report.Rejected) > 0 {
		logger.Warn().Int("rejected", len(report.Rejected)).Msg("some rows were rejected")
		for _, rejected := range report.Rejected {
			logger.Warn().Int("row", rejected.Row).Str("column", rejected.Column).Msg(rejected.Message)
		}
	}
	return records, nil
}

func printPerformance(pipeline *risk.Pipeline) {
	fmt.Printf("%-22s %10s %10s %10s %10s %6s\n", "algorithm", "cv_mean", "cv_std", "val_acc", "auc", "best")
	for _, p := range pipeline.Performance {
		best := ""
		if p.Best {
			best = "*"
		}
		fmt.Printf("%-22s %10.4f %10.4f %10.4f %10.4f %6s\n", p.Algorithm, p.CVMean, p.CVStd, p.ValAccuracy, p.AUCScore, best)
	}
}
