package risk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dropsafe/dropsafe-api/internal/ml"
)

// ArtifactSchemaVersion guards against silently loading artifacts written by
// an incompatible build.
const ArtifactSchemaVersion = 1

// Candidate algorithm identifiers persisted in the artifact.
const (
	AlgorithmLogistic         = "logistic"
	AlgorithmRandomForest     = "random_forest"
	AlgorithmGradientBoosting = "gradient_boosting"
	AlgorithmLogisticFallback = "logistic_fallback"
)

// AlgorithmPerformance is one row of the per-candidate performance table.
type AlgorithmPerformance struct {
	Algorithm   string  `json:"algorithm"`
	CVMean      float64 `json:"cv_mean"`
	CVStd       float64 `json:"cv_std"`
	ValAccuracy float64 `json:"val_accuracy"`
	AUCScore    float64 `json:"auc_score"`
	Best        bool    `json:"best"`
}

// Artifact is the on-disk form of a trained pipeline: everything needed to
// reproduce predictions, plus enough metadata to detect schema drift on load.
type Artifact struct {
	SchemaVersion int                    `json:"schema_version"`
	Algorithm     string                 `json:"algorithm"`
	LabelPolicy   LabelPolicy            `json:"label_policy"`
	FeatureNames  []string               `json:"feature_names"`
	TrainedAt     time.Time              `json:"trained_at"`
	Scaler        ml.ScalerState         `json:"scaler"`
	Model         json.RawMessage        `json:"model"`
	Performance   []AlgorithmPerformance `json:"performance"`
	Importances   []float64              `json:"importances,omitempty"`
}

// Pipeline is a loaded, ready-to-score artifact. Owned exclusively by the
// predictor after load; replaced wholesale on retraining.
type Pipeline struct {
	Algorithm    string
	LabelPolicy  LabelPolicy
	FeatureNames []string
	TrainedAt    time.Time
	Scaler       ml.Scaler
	Model        ml.Classifier
	Performance  []AlgorithmPerformance
	Importances  []float64
}

// Predict scales rows and returns ordinal labels.
func (p *Pipeline) Predict(X [][]float64) []RiskLabel {
	raw := p.Model.Predict(p.Scaler.Transform(X))
	labels := make([]RiskLabel, len(raw))
	for i, v := range raw {
		labels[i] = RiskLabel(v)
	}
	return labels
}

// PredictProba returns per-class probabilities, or nil when the underlying
// model has no probability support.
func (p *Pipeline) PredictProba(X [][]float64) [][]float64 {
	estimator, ok := p.Model.(ml.ProbabilityEstimator)
	if !ok {
		return nil
	}
	return estimator.PredictProba(p.Scaler.Transform(X))
}

// SaveArtifact serializes the pipeline and atomically replaces the file at
// path, so concurrent readers only ever observe a complete artifact.
func SaveArtifact(path string, pipeline *Pipeline) error {
	model, err := json.Marshal(pipeline.Model)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	artifact := Artifact{
		SchemaVersion: ArtifactSchemaVersion,
		Algorithm:     pipeline.Algorithm,
		LabelPolicy:   pipeline.LabelPolicy,
		FeatureNames:  pipeline.FeatureNames,
		TrainedAt:     pipeline.TrainedAt,
		Scaler:        ml.State(pipeline.Scaler),
		Model:         model,
		Performance:   pipeline.Performance,
		Importances:   pipeline.Importances,
	}

	payload, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}

// LoadArtifact deserializes and verifies a pipeline. A missing file returns
// ErrNoArtifact; corruption or schema drift returns a ModelLoadError so the
// caller can fall back without mispredicting silently.
func LoadArtifact(path string) (*Pipeline, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoArtifact
		}
		return nil, &ModelLoadError{Path: path, Reason: "unreadable", Err: err}
	}

	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, &ModelLoadError{Path: path, Reason: "corrupt artifact", Err: err}
	}
	if artifact.SchemaVersion != ArtifactSchemaVersion {
		return nil, &ModelLoadError{Path: path, Reason: fmt.Sprintf("schema version %d, want %d", artifact.SchemaVersion, ArtifactSchemaVersion)}
	}
	if len(artifact.FeatureNames) == 0 {
		return nil, &ModelLoadError{Path: path, Reason: "artifact missing feature names"}
	}

	scaler, err := ml.ScalerFromState(artifact.Scaler)
	if err != nil {
		return nil, &ModelLoadError{Path: path, Reason: "unknown scaler", Err: err}
	}
	if scaler.Width() != len(artifact.FeatureNames) {
		return nil, &ModelLoadError{
			Path:   path,
			Reason: fmt.Sprintf("feature list has %d columns but scaler expects %d", len(artifact.FeatureNames), scaler.Width()),
		}
	}

	model, err := decodeModel(artifact.Algorithm, artifact.Model)
	if err != nil {
		return nil, &ModelLoadError{Path: path, Reason: "undecodable model", Err: err}
	}

	return &Pipeline{
		Algorithm:    artifact.Algorithm,
		LabelPolicy:  artifact.LabelPolicy,
		FeatureNames: artifact.FeatureNames,
		TrainedAt:    artifact.TrainedAt,
		Scaler:       scaler,
		Model:        model,
		Performance:  artifact.Performance,
		Importances:  artifact.Importances,
	}, nil
}

func decodeModel(algorithm string, payload json.RawMessage) (ml.Classifier, error) {
	switch algorithm {
	case AlgorithmLogistic, AlgorithmLogisticFallback:
		var model ml.LogisticRegression
		if err := json.Unmarshal(payload, &model); err != nil {
			return nil, err
		}
		return &model, nil
	case AlgorithmRandomForest:
		var model ml.RandomForest
		if err := json.Unmarshal(payload, &model); err != nil {
			return nil, err
		}
		return &model, nil
	case AlgorithmGradientBoosting:
		var model ml.GradientBoosting
		if err := json.Unmarshal(payload, &model); err != nil {
			return nil, err
		}
		return &model, nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q", algorithm)
	}
}
