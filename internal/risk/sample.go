package risk

import (
	"fmt"
	"math/rand"
)

// cohortPattern describes one synthetic student archetype.
type cohortPattern struct {
	name           string
	weight         float64
	attendanceMean float64
	attendanceStd  float64
	marksMean      float64
	marksStd       float64
	feePaidProb    float64
}

var cohortPatterns = []cohortPattern{
	{"excellent", 0.15, 95, 3, 85, 8, 0.95},
	{"good", 0.35, 85, 8, 75, 10, 0.90},
	{"average", 0.30, 75, 10, 65, 12, 0.80},
	{"struggling", 0.15, 65, 12, 50, 15, 0.70},
	{"at_risk", 0.05, 45, 15, 35, 12, 0.50},
}

var sampleNames = []string{
	"Alice Johnson", "Bob Smith", "Carol Davis", "David Wilson", "Emma Brown",
	"Frank Miller", "Grace Lee", "Henry Taylor", "Ivy Chen", "Jack Anderson",
	"Kate Williams", "Liam Jones", "Maya Patel", "Noah Garcia", "Olivia Martinez",
	"Paul Rodriguez", "Quinn Thompson", "Ruby Clark", "Sam Lewis", "Tina Walker",
	"Uma Singh", "Victor Hall", "Wendy Allen", "Xavier Young", "Yara King",
	"Zoe Wright", "Adam Scott", "Bella Green", "Chris Adams", "Diana Baker",
}

// GenerateSampleCohort produces a deterministic synthetic cohort with the
// archetype mix of the original sample data. The first five students are
// pinned edge cases so tests and demos always cover every risk band.
func GenerateSampleCohort(n int, seed int64) []StudentRecord {
	rng := rand.New(rand.NewSource(seed))
	records := make([]StudentRecord, 0, n)

	for i := 0; i < n; i++ {
		pattern := pickPattern(rng)

		attendance := clampRange(rng.NormFloat64()*pattern.attendanceStd+pattern.attendanceMean, 30, 100)

		marksBase := pattern.marksMean
		if attendance < 60 {
			marksBase *= 0.8
		} else if attendance > 90 {
			marksBase *= 1.1
		}
		marks := clampRange(rng.NormFloat64()*pattern.marksStd+marksBase, 20, 100)

		fees := FeePending
		if rng.Float64() < pattern.feePaidProb {
			fees = FeePaid
		}

		switch i {
		case 0: // perfect student
			attendance, marks, fees = 98, 95, FeePaid
		case 1: // high risk across the board
			attendance, marks, fees = 45, 30, FeePending
		case 2: // attendance problem only
			attendance, marks, fees = 65, 75, FeePaid
		case 3: // marks problem only
			attendance, marks, fees = 85, 45, FeePaid
		case 4: // good marks, poor attendance, fees behind
			attendance, marks, fees = 55, 80, FeeOverdue
		}

		name := fmt.Sprintf("Student %d", i+1)
		if i < len(sampleNames) {
			name = sampleNames[i]
		}

		records = append(records, StudentRecord{
			StudentID:  fmt.Sprintf("STU%03d", i+1),
			Name:       name,
			Attendance: roundTenth(attendance),
			Marks:      roundTenth(marks),
			FeesStatus: fees,
		})
	}
	return records
}

func pickPattern(rng *rand.Rand) cohortPattern {
	roll := rng.Float64()
	cumulative := 0.0
	for _, pattern := range cohortPatterns {
		cumulative += pattern.weight
		if roll <= cumulative {
			return pattern
		}
	}
	return cohortPatterns[2] // average
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
