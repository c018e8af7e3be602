package anomaly

import "math"

// standardScaler centers and scales features to zero mean and unit
// variance. Parameters are derived from the training set at fit time
// and frozen afterwards.
type standardScaler struct {
	means  []float64
	stddev []float64
}

// fitScaler computes per-column mean and standard deviation.
// rows must be rectangular and non-empty.
func fitScaler(rows [][]float64) *standardScaler {
	cols := len(rows[0])
	means := make([]float64, cols)
	stddev := make([]float64, cols)

	for _, row := range rows {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(len(rows))
	}

	for _, row := range rows {
		for j, v := range row {
			d := v - means[j]
			stddev[j] += d * d
		}
	}
	for j := range stddev {
		stddev[j] = math.Sqrt(stddev[j] / float64(len(rows)))
		if stddev[j] == 0 {
			// Constant column: leave centered values at zero rather
			// than dividing by zero.
			stddev[j] = 1
		}
	}

	return &standardScaler{means: means, stddev: stddev}
}

// transform scales a single row using the frozen parameters.
func (s *standardScaler) transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.means[j]) / s.stddev[j]
	}
	return out
}

// transformAll scales every row.
func (s *standardScaler) transformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.transform(row)
	}
	return out
}
