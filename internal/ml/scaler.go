package ml

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes feature columns using statistics captured during Fit.
type Scaler interface {
	Fit(X [][]float64) error
	Transform(X [][]float64) [][]float64
	// Width reports the number of feature columns the scaler was fitted on.
	Width() int
}

// ScalerState is the serializable form of a fitted scaler.
type ScalerState struct {
	Type   string    `json:"type"`
	Center []float64 `json:"center"`
	Scale  []float64 `json:"scale"`
}

// StandardScaler centers to the mean and scales to unit variance.
type StandardScaler struct {
	Center []float64 `json:"center"`
	Scale  []float64 `json:"scale"`
}

// Fit computes per-column mean and standard deviation.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return fmt.Errorf("standard scaler: empty matrix")
	}
	cols := len(X[0])
	s.Center = make([]float64, cols)
	s.Scale = make([]float64, cols)
	column := make([]float64, len(X))
	for j := 0; j < cols; j++ {
		for i := range X {
			column[i] = X[i][j]
		}
		mean, std := stat.MeanStdDev(column, nil)
		s.Center[j] = mean
		if std == 0 || len(X) < 2 {
			std = 1
		}
		s.Scale[j] = std
	}
	return nil
}

// Transform applies the fitted standardization column-wise.
func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	return applyScaling(X, s.Center, s.Scale)
}

// Width reports the fitted column count.
func (s *StandardScaler) Width() int { return len(s.Center) }

// RobustScaler centers to the median and scales by the interquartile range,
// making it less sensitive to outlying percentages than StandardScaler.
type RobustScaler struct {
	Center []float64 `json:"center"`
	Scale  []float64 `json:"scale"`
}

// Fit computes per-column median and IQR.
func (s *RobustScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return fmt.Errorf("robust scaler: empty matrix")
	}
	cols := len(X[0])
	s.Center = make([]float64, cols)
	s.Scale = make([]float64, cols)
	column := make([]float64, len(X))
	for j := 0; j < cols; j++ {
		for i := range X {
			column[i] = X[i][j]
		}
		sort.Float64s(column)
		median := stat.Quantile(0.5, stat.Empirical, column, nil)
		q1 := stat.Quantile(0.25, stat.Empirical, column, nil)
		q3 := stat.Quantile(0.75, stat.Empirical, column, nil)
		iqr := q3 - q1
		if iqr == 0 {
			iqr = 1
		}
		s.Center[j] = median
		s.Scale[j] = iqr
	}
	return nil
}

// Transform applies the fitted robust scaling column-wise.
func (s *RobustScaler) Transform(X [][]float64) [][]float64 {
	return applyScaling(X, s.Center, s.Scale)
}

// Width reports the fitted column count.
func (s *RobustScaler) Width() int { return len(s.Center) }

func applyScaling(X [][]float64, center, scale []float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - center[j]) / scale[j]
		}
		out[i] = scaled
	}
	return out
}

// State captures a fitted scaler for persistence.
func State(s Scaler) ScalerState {
	switch sc := s.(type) {
	case *StandardScaler:
		return ScalerState{Type: "standard", Center: sc.Center, Scale: sc.Scale}
	case *RobustScaler:
		return ScalerState{Type: "robust", Center: sc.Center, Scale: sc.Scale}
	default:
		return ScalerState{}
	}
}

// ScalerFromState restores a fitted scaler from its serialized form.
func ScalerFromState(state ScalerState) (Scaler, error) {
	switch state.Type {
	case "standard":
		return &StandardScaler{Center: state.Center, Scale: state.Scale}, nil
	case "robust":
		return &RobustScaler{Center: state.Center, Scale: state.Scale}, nil
	default:
		return nil, fmt.Errorf("unknown scaler type %q", state.Type)
	}
}
