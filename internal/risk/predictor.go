package risk

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Mode reports how predictions are currently produced.
type Mode string

const (
	// ModeML means a trained pipeline is loaded and serving labels.
	ModeML Mode = "ml"
	// ModeRule means the deterministic rule scorer is serving labels
	// (no artifact, or the artifact failed to load).
	ModeRule Mode = "rule"
)

// Prediction is the per-record scoring output. RiskScore is always the
// deterministic weighted v1 rule score so dashboards can sort and band
// records identically in both modes; the label and category come from the
// classifier when one is loaded. Probabilities is nil when unavailable.
type Prediction struct {
	StudentID     string    `json:"student_id"`
	Name          string    `json:"name"`
	RiskScore     float64   `json:"risk_score"`
	RiskLabel     RiskLabel `json:"risk_label"`
	RiskCategory  string    `json:"risk_category"`
	RiskEmoji     string    `json:"risk_emoji"`
	Probabilities []float64 `json:"probabilities,omitempty"`
	Mode          Mode      `json:"mode"`
}

// FourLevelPrediction is the finer-grained assessment combining the v2 rule
// scale with the classifier's binary high-risk verdict.
type FourLevelPrediction struct {
	StudentID string    `json:"student_id"`
	Name      string    `json:"name"`
	RuleScore float64   `json:"rule_score"`
	MLVerdict bool      `json:"ml_high_risk"`
	FinalRisk FourLevel `json:"final_risk"`
	Mode      Mode      `json:"mode"`
}

// FeatureImportance is one row of the ranked importance table.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Predictor scores student records with the loaded pipeline, deferring to
// the rule scorer whenever no usable artifact exists. The fallback is
// transparent: output shape is identical, probabilities simply absent.
type Predictor struct {
	mu       sync.RWMutex
	path     string
	pipeline *Pipeline
	logger   zerolog.Logger
}

// NewPredictor builds a predictor and attempts an initial artifact load.
// Load problems are logged, never fatal: scoring always works.
func NewPredictor(artifactPath string, logger zerolog.Logger) *Predictor {
	p := &Predictor{
		path:   artifactPath,
		logger: logger.With().Str("component", "risk_predictor").Logger(),
	}
	if err := p.Reload(); err != nil && !errors.Is(err, ErrNoArtifact) {
		p.logger.Warn().Err(err).Msg("model artifact unusable, serving rule-based predictions")
	}
	return p
}

// Reload re-reads the artifact from disk, replacing the owned pipeline
// wholesale. On failure the predictor drops to rule mode and the error is
// returned for the caller to surface.
func (p *Predictor) Reload() error {
	pipeline, err := LoadArtifact(p.path)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.pipeline = nil
		return err
	}
	if err := checkFeatureParity(pipeline.FeatureNames); err != nil {
		p.pipeline = nil
		return &ModelLoadError{Path: p.path, Reason: err.Error()}
	}
	p.pipeline = pipeline
	p.logger.Info().
		Str("algorithm", pipeline.Algorithm).
		Time("trained_at", pipeline.TrainedAt).
		Msg("model artifact loaded")
	return nil
}

// checkFeatureParity guards the single most likely silent-corruption failure
// mode: a pipeline trained against a different engineered-feature schema.
func checkFeatureParity(trained []string) error {
	current := FeatureNames()
	if len(trained) != len(current) {
		return fmt.Errorf("trained feature list has %d columns, engine produces %d", len(trained), len(current))
	}
	for i, name := range trained {
		if current[i] != name {
			return fmt.Errorf("feature order mismatch at column %d: trained %q, engine %q", i, name, current[i])
		}
	}
	return nil
}

// Mode reports whether predictions come from the trained pipeline or the
// rule fallback.
func (p *Predictor) Mode() Mode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.pipeline != nil {
		return ModeML
	}
	return ModeRule
}

// Pipeline returns the loaded pipeline, or nil in rule mode.
func (p *Predictor) Pipeline() *Pipeline {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pipeline
}

// Predict scores a batch. Same record, same output, across repeated calls.
func (p *Predictor) Predict(records []StudentRecord) []Prediction {
	p.mu.RLock()
	pipeline := p.pipeline
	p.mu.RUnlock()

	out := make([]Prediction, len(records))
	var labels []RiskLabel
	var probabilities [][]float64

	if pipeline != nil {
		X := EngineerMatrix(records)
		labels = pipeline.Predict(X)
		probabilities = pipeline.PredictProba(X)
	}

	for i, record := range records {
		normalized, known := record.Normalize()
		if !known {
			p.logger.Warn().
				Str("student_id", record.StudentID).
				Str("fees_status", string(record.FeesStatus)).
				Msg("unrecognized fee status, treating as pending")
		}

		prediction := Prediction{
			StudentID: normalized.StudentID,
			Name:      normalized.Name,
			RiskScore: WeightedScore(normalized),
			Mode:      ModeRule,
		}
		if pipeline != nil {
			prediction.Mode = ModeML
			prediction.RiskLabel = labels[i]
			if probabilities != nil {
				prediction.Probabilities = probabilities[i]
			}
		} else {
			prediction.RiskLabel = WeightedLabel(prediction.RiskScore)
		}
		prediction.RiskCategory, prediction.RiskEmoji = Category(prediction.RiskLabel)
		out[i] = prediction
	}
	return out
}

// PredictFourLevel scores a batch on the v2 four-level scheme. The model
// verdict is "classifier says high risk"; in rule mode the verdict comes
// from the weighted v1 thresholds so the scheme stays usable untrained.
func (p *Predictor) PredictFourLevel(records []StudentRecord) []FourLevelPrediction {
	predictions := p.Predict(records)
	out := make([]FourLevelPrediction, len(records))
	for i, record := range records {
		normalized, _ := record.Normalize()
		score := FourLevelScore(normalized)
		verdict := predictions[i].RiskLabel == LabelHigh
		out[i] = FourLevelPrediction{
			StudentID: normalized.StudentID,
			Name:      normalized.Name,
			RuleScore: score,
			MLVerdict: verdict,
			FinalRisk: CombineFourLevel(score, verdict),
			Mode:      predictions[i].Mode,
		}
	}
	return out
}

// FeatureImportanceTable returns the ranked importance table when the loaded
// model exposes one. The boolean is false in rule mode or when the model has
// no importance support; importances are never fabricated.
func (p *Predictor) FeatureImportanceTable() ([]FeatureImportance, bool) {
	p.mu.RLock()
	pipeline := p.pipeline
	p.mu.RUnlock()

	if pipeline == nil || len(pipeline.Importances) == 0 {
		return nil, false
	}
	table := make([]FeatureImportance, len(pipeline.Importances))
	for i, importance := range pipeline.Importances {
		table[i] = FeatureImportance{Feature: pipeline.FeatureNames[i], Importance: importance}
	}
	sort.SliceStable(table, func(a, b int) bool { return table[a].Importance > table[b].Importance })
	return table, true
}
