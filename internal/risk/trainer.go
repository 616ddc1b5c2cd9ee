package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/dropsafe/dropsafe-api/internal/ml"
)

// TrainerConfig tunes a training run. The capability flags mirror optional
// dependencies of the original system: turning one off removes candidates or
// rebalancing without failing the run.
type TrainerConfig struct {
	LabelPolicy            LabelPolicy
	Seed                   int64
	Folds                  int
	TestFraction           float64
	EnableGradientBoosting bool
	EnableOversampling     bool
}

// DefaultTrainerConfig mirrors the defaults of the original pipeline.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		LabelPolicy:            PolicyWeighted,
		Seed:                   42,
		Folds:                  5,
		TestFraction:           0.2,
		EnableGradientBoosting: true,
		EnableOversampling:     true,
	}
}

// Trainer fits candidate classifiers on engineered features against proxy
// labels, cross-validates, and selects the best by mean weighted F1.
type Trainer struct {
	cfg    TrainerConfig
	logger zerolog.Logger
}

// NewTrainer constructs a trainer.
func NewTrainer(cfg TrainerConfig, logger zerolog.Logger) *Trainer {
	if cfg.Folds < 2 {
		cfg.Folds = 5
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = 0.2
	}
	if cfg.LabelPolicy == "" {
		cfg.LabelPolicy = PolicyWeighted
	}
	return &Trainer{cfg: cfg, logger: logger.With().Str("component", "risk_trainer").Logger()}
}

type candidate struct {
	name  string
	build func() ml.Classifier
}

func (t *Trainer) candidates() []candidate {
	seed := t.cfg.Seed
	list := []candidate{
		{AlgorithmLogistic, func() ml.Classifier { return ml.NewLogisticRegression() }},
		{AlgorithmRandomForest, func() ml.Classifier {
			forest := ml.NewRandomForest()
			forest.Seed = seed
			return forest
		}},
	}
	if t.cfg.EnableGradientBoosting {
		list = append(list, candidate{AlgorithmGradientBoosting, func() ml.Classifier { return ml.NewGradientBoosting() }})
	}
	return list
}

// Train runs the full selection loop and returns a ready pipeline. The
// proxy labels mean the reported scores measure agreement with the rule
// engine only; they are not real-world accuracy.
func (t *Trainer) Train(records []StudentRecord) (*Pipeline, error) {
	labels, err := GenerateLabels(records, t.cfg.LabelPolicy)
	if err != nil {
		return nil, &TrainingFailure{Reason: "label generation", Err: err}
	}
	y := make([]int, len(labels))
	for i, label := range labels {
		y[i] = int(label)
	}

	if err := t.checkLabelDistribution(y); err != nil {
		return nil, err
	}

	X := EngineerMatrix(records)
	trainIdx, testIdx, err := ml.StratifiedSplit(y, t.cfg.TestFraction, t.cfg.Seed)
	if err != nil {
		return nil, &TrainingFailure{Reason: "train/test split", Err: err}
	}
	trainX, trainY := ml.Select(X, y, trainIdx)
	testX, testY := ml.Select(X, y, testIdx)

	t.logger.Info().
		Int("samples", len(records)).
		Int("features", len(featureNames)).
		Str("label_policy", string(t.cfg.LabelPolicy)).
		Ints("class_counts", ml.ClassCounts(y)).
		Msg("starting model training")

	var best *fittedCandidate
	performance := make([]AlgorithmPerformance, 0, 3)

	for _, cand := range t.candidates() {
		fitted, perf, err := t.trainCandidate(cand, trainX, trainY, testX, testY)
		if err != nil {
			t.logger.Warn().Err(err).Str("algorithm", cand.name).Msg("candidate failed, excluding from selection")
			continue
		}
		performance = append(performance, perf)
		t.logger.Info().
			Str("algorithm", cand.name).
			Float64("cv_mean", perf.CVMean).
			Float64("cv_std", perf.CVStd).
			Float64("val_accuracy", perf.ValAccuracy).
			Msg("candidate evaluated")
		// Strict greater-than keeps the first-seen candidate on ties.
		if best == nil || perf.CVMean > best.performance.CVMean {
			best = fitted
		}
	}

	if best == nil {
		t.logger.Warn().Msg("no candidates trained successfully, fitting plain logistic regression")
		fallback, err := t.fitFallback(X, y)
		if err != nil {
			return nil, err
		}
		best = fallback
		performance = append(performance, best.performance)
	}

	for i := range performance {
		performance[i].Best = performance[i].Algorithm == best.performance.Algorithm
	}

	pipeline := &Pipeline{
		Algorithm:    best.performance.Algorithm,
		LabelPolicy:  t.cfg.LabelPolicy,
		FeatureNames: FeatureNames(),
		TrainedAt:    time.Now().UTC(),
		Scaler:       best.scaler,
		Model:        best.model,
		Performance:  performance,
	}
	if provider, ok := best.model.(ml.ImportanceProvider); ok {
		pipeline.Importances = provider.FeatureImportances()
	}

	t.logger.Info().Str("algorithm", pipeline.Algorithm).Msg("model training completed")
	return pipeline, nil
}

func (t *Trainer) checkLabelDistribution(y []int) error {
	counts := ml.ClassCounts(y)
	present := 0
	for _, c := range counts {
		if c > 0 {
			present++
		}
	}
	if present < 2 {
		return &TrainingFailure{Reason: fmt.Sprintf("need at least 2 risk classes in labels, got %d", present)}
	}
	for label, c := range counts {
		if c > 0 && c < t.cfg.Folds {
			return &TrainingFailure{Reason: fmt.Sprintf("class %d has %d samples, fewer than %d folds", label, c, t.cfg.Folds)}
		}
	}
	return nil
}

type fittedCandidate struct {
	scaler      ml.Scaler
	model       ml.Classifier
	performance AlgorithmPerformance
}

func (t *Trainer) trainCandidate(cand candidate, trainX [][]float64, trainY []int, testX [][]float64, testY []int) (*fittedCandidate, AlgorithmPerformance, error) {
	fitX, fitY := trainX, trainY
	if t.cfg.EnableOversampling {
		// Rebalance the training split only; validation data stays as-is.
		fitX, fitY = ml.Oversample(trainX, trainY, t.cfg.Seed)
	}

	scaler := &ml.RobustScaler{}
	if err := scaler.Fit(fitX); err != nil {
		return nil, AlgorithmPerformance{}, err
	}
	model := cand.build()
	if err := model.Fit(scaler.Transform(fitX), fitY); err != nil {
		return nil, AlgorithmPerformance{}, err
	}

	// Selection criterion: k-fold CV weighted F1 on the original
	// (non-oversampled) training split, matching the held-out class balance.
	cvMean, cvStd, err := t.crossValidate(cand, trainX, trainY)
	if err != nil {
		return nil, AlgorithmPerformance{}, err
	}

	predicted := model.Predict(scaler.Transform(testX))
	perf := AlgorithmPerformance{
		Algorithm:   cand.name,
		CVMean:      cvMean,
		CVStd:       cvStd,
		ValAccuracy: ml.Accuracy(predicted, testY),
	}
	if estimator, ok := model.(ml.ProbabilityEstimator); ok {
		perf.AUCScore = ml.OvRWeightedAUC(estimator.PredictProba(scaler.Transform(testX)), testY)
	}

	return &fittedCandidate{scaler: scaler, model: model, performance: perf}, perf, nil
}

func (t *Trainer) crossValidate(cand candidate, X [][]float64, y []int) (mean, std float64, err error) {
	folds, err := ml.StratifiedKFold(y, t.cfg.Folds, t.cfg.Seed)
	if err != nil {
		return 0, 0, err
	}

	inFold := make([]bool, len(y))
	scores := make([]float64, 0, len(folds))
	for _, fold := range folds {
		for i := range inFold {
			inFold[i] = false
		}
		for _, idx := range fold {
			inFold[idx] = true
		}
		var trainIdx []int
		for i := range y {
			if !inFold[i] {
				trainIdx = append(trainIdx, i)
			}
		}

		foldTrainX, foldTrainY := ml.Select(X, y, trainIdx)
		foldValX, foldValY := ml.Select(X, y, fold)

		scaler := &ml.RobustScaler{}
		if err := scaler.Fit(foldTrainX); err != nil {
			return 0, 0, err
		}
		model := cand.build()
		if err := model.Fit(scaler.Transform(foldTrainX), foldTrainY); err != nil {
			return 0, 0, err
		}
		predicted := model.Predict(scaler.Transform(foldValX))
		scores = append(scores, ml.WeightedF1(predicted, foldValY))
	}

	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))
	for _, s := range scores {
		std += (s - mean) * (s - mean)
	}
	std = math.Sqrt(std / float64(len(scores)))
	return mean, std, nil
}

// fitFallback is the last resort: a plain logistic fit with a standard
// scaler over the full dataset. Failure here fails the training run.
func (t *Trainer) fitFallback(X [][]float64, y []int) (*fittedCandidate, error) {
	scaler := &ml.StandardScaler{}
	if err := scaler.Fit(X); err != nil {
		return nil, &TrainingFailure{Reason: "fallback scaler fit", Err: err}
	}
	model := ml.NewLogisticRegression()
	if err := model.Fit(scaler.Transform(X), y); err != nil {
		return nil, &TrainingFailure{Reason: "all candidate algorithms failed", Err: err}
	}
	predicted := model.Predict(scaler.Transform(X))
	return &fittedCandidate{
		scaler: scaler,
		model:  model,
		performance: AlgorithmPerformance{
			Algorithm:   AlgorithmLogisticFallback,
			ValAccuracy: ml.Accuracy(predicted, y),
		},
	}, nil
}
