package dto

import "time"

// TrainRequest starts a training run over the stored cohort.
type TrainRequest struct {
	LabelPolicy string `json:"label_policy" validate:"omitempty,oneof=weighted threshold"`
}

// TrainResponse reports the outcome of a completed training run. The
// cross-validation scores measure agreement with the rule-generated proxy
// labels, not real-world predictive accuracy.
type TrainResponse struct {
	Algorithm   string                         `json:"algorithm"`
	LabelPolicy string                         `json:"label_policy"`
	TrainedAt   time.Time                      `json:"trained_at"`
	Samples     int                            `json:"samples"`
	Performance []AlgorithmPerformanceResponse `json:"performance"`
}

// AlgorithmPerformanceResponse is one row of the candidate comparison table.
type AlgorithmPerformanceResponse struct {
	Algorithm   string  `json:"algorithm"`
	CVMean      float64 `json:"cv_mean"`
	CVStd       float64 `json:"cv_std"`
	ValAccuracy float64 `json:"val_accuracy"`
	AUCScore    float64 `json:"auc_score"`
	Best        bool    `json:"best"`
}

// ModelStatusResponse describes the serving pipeline, if any.
type ModelStatusResponse struct {
	Mode        string                         `json:"mode"`
	Algorithm   string                         `json:"algorithm,omitempty"`
	LabelPolicy string                         `json:"label_policy,omitempty"`
	TrainedAt   *time.Time                     `json:"trained_at,omitempty"`
	Features    int                            `json:"features,omitempty"`
	Performance []AlgorithmPerformanceResponse `json:"performance,omitempty"`
}
