package risk

// The trainer learns against proxy labels manufactured by the rule engine:
// every score asserted below measures agreement with the hand-written rule,
// not real-world dropout prediction accuracy.

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func trainSampleCohort(t *testing.T, cfg TrainerConfig) (*Pipeline, []StudentRecord) {
	t.Helper()
	records := GenerateSampleCohort(120, 42)
	trainer := NewTrainer(cfg, zerolog.Nop())
	pipeline, err := trainer.Train(records)
	require.NoError(t, err)
	return pipeline, records
}

func TestTrainSelectsACandidate(t *testing.T) {
	cfg := DefaultTrainerConfig()
	pipeline, _ := trainSampleCohort(t, cfg)

	require.NotEmpty(t, pipeline.Algorithm)
	require.Equal(t, FeatureNames(), pipeline.FeatureNames)
	require.False(t, pipeline.TrainedAt.IsZero())
	require.NotEmpty(t, pipeline.Performance)

	bestCount := 0
	for _, perf := range pipeline.Performance {
		if perf.Best {
			bestCount++
			require.Equal(t, pipeline.Algorithm, perf.Algorithm)
		}
		require.GreaterOrEqual(t, perf.CVMean, 0.0)
		require.LessOrEqual(t, perf.CVMean, 1.0)
	}
	require.Equal(t, 1, bestCount)
}

func TestTrainWithoutGradientBoosting(t *testing.T) {
	cfg := DefaultTrainerConfig()
	cfg.EnableGradientBoosting = false
	pipeline, _ := trainSampleCohort(t, cfg)

	for _, perf := range pipeline.Performance {
		require.NotEqual(t, AlgorithmGradientBoosting, perf.Algorithm)
	}
}

func TestTrainWithoutOversampling(t *testing.T) {
	cfg := DefaultTrainerConfig()
	cfg.EnableOversampling = false
	pipeline, _ := trainSampleCohort(t, cfg)
	require.NotEmpty(t, pipeline.Performance)
}

func TestTrainThresholdPolicy(t *testing.T) {
	cfg := DefaultTrainerConfig()
	cfg.LabelPolicy = PolicyThreshold
	pipeline, _ := trainSampleCohort(t, cfg)
	require.Equal(t, PolicyThreshold, pipeline.LabelPolicy)
}

func TestTrainFailsOnSingleClass(t *testing.T) {
	// A cohort of identical perfect students yields one label class.
	records := make([]StudentRecord, 40)
	for i := range records {
		records[i] = StudentRecord{StudentID: "S", Attendance: 98, Marks: 95, FeesStatus: FeePaid}
	}
	trainer := NewTrainer(DefaultTrainerConfig(), zerolog.Nop())
	_, err := trainer.Train(records)

	var failure *TrainingFailure
	require.ErrorAs(t, err, &failure)
}

func TestTrainFailsOnTinyClass(t *testing.T) {
	records := GenerateSampleCohort(40, 42)
	// Force exactly two high-risk rows: fewer than the five folds.
	for i := range records {
		records[i].Attendance = 90
		records[i].Marks = 85
		records[i].FeesStatus = FeePaid
	}
	records[0] = StudentRecord{StudentID: "H1", Attendance: 30, Marks: 20, FeesStatus: FeeOverdue}
	records[1] = StudentRecord{StudentID: "H2", Attendance: 31, Marks: 21, FeesStatus: FeeOverdue}

	trainer := NewTrainer(DefaultTrainerConfig(), zerolog.Nop())
	_, err := trainer.Train(records)

	var failure *TrainingFailure
	require.ErrorAs(t, err, &failure)
}

func TestTrainedPipelineAgreesWithProxyLabels(t *testing.T) {
	cfg := DefaultTrainerConfig()
	pipeline, records := trainSampleCohort(t, cfg)

	labels, err := GenerateLabels(records, PolicyWeighted)
	require.NoError(t, err)

	predicted := pipeline.Predict(EngineerMatrix(records))
	hits := 0
	for i, label := range predicted {
		if label == labels[i] {
			hits++
		}
	}
	// The classifier approximates the rule engine on engineered features;
	// on its own training cohort agreement should be strong.
	require.Greater(t, float64(hits)/float64(len(records)), 0.8)
}

func TestPredictionStableAcrossCalls(t *testing.T) {
	pipeline, records := trainSampleCohort(t, DefaultTrainerConfig())
	X := EngineerMatrix(records)
	first := pipeline.Predict(X)
	second := pipeline.Predict(X)
	require.Equal(t, first, second)
}
