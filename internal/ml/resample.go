package ml

import "math/rand"

// Oversample balances minority classes by synthesizing interpolated rows
// between random same-class pairs until every class matches the majority
// count. The input rows are never mutated; training splits only.
func Oversample(X [][]float64, y []int, seed int64) ([][]float64, []int) {
	groups := byClass(y)
	majority := 0
	for _, indices := range groups {
		if len(indices) > majority {
			majority = len(indices)
		}
	}

	outX := append([][]float64(nil), X...)
	outY := append([]int(nil), y...)
	rng := rand.New(rand.NewSource(seed))

	for _, label := range sortedClasses(groups) {
		indices := groups[label]
		if len(indices) < 2 {
			// Cannot interpolate a singleton class; duplicate instead.
			for len(indices) > 0 && len(groups[label]) < majority {
				outX = append(outX, append([]float64(nil), X[indices[0]]...))
				outY = append(outY, label)
				groups[label] = append(groups[label], indices[0])
			}
			continue
		}
		for count := len(indices); count < majority; count++ {
			a := X[indices[rng.Intn(len(indices))]]
			b := X[indices[rng.Intn(len(indices))]]
			t := rng.Float64()
			row := make([]float64, len(a))
			for col := range a {
				row[col] = a[col] + t*(b[col]-a[col])
			}
			outX = append(outX, row)
			outY = append(outY, label)
		}
	}
	return outX, outY
}
