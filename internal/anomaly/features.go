package anomaly

import (
	"time"

	"github.com/ecosentry/ecosentry/internal/measurement"
)

// featurePollutants are the pollutant columns considered for feature
// extraction, in a stable order.
var featurePollutants = []measurement.Pollutant{
	measurement.PollutantPM25,
	measurement.PollutantPM10,
	measurement.PollutantNO2,
	measurement.PollutantSO2,
	measurement.PollutantO3,
}

// Sample is one multivariate observation for the detector: pollutant
// values plus an optional timestamp for cyclical temporal features.
type Sample struct {
	Values    map[measurement.Pollutant]float64
	Timestamp time.Time
}

// SampleFromBundle builds a Sample from a fused metrics bundle.
func SampleFromBundle(bundle *measurement.MetricsBundle) Sample {
	values := make(map[measurement.Pollutant]float64, len(bundle.Air))
	for pollutant, metric := range bundle.Air {
		values[pollutant] = metric.Value
	}
	return Sample{Values: values, Timestamp: bundle.ObservedAt}
}

// featureSchema records which columns the fitted model was trained on,
// so predict-time vectors line up with the frozen scaler parameters.
type featureSchema struct {
	pollutants []measurement.Pollutant
	temporal   bool
}

// schemaFor derives the feature schema from a training set: a pollutant
// column is used when every sample carries it, and temporal features
// are used when every sample is timestamped.
func schemaFor(samples []Sample) featureSchema {
	var schema featureSchema

	for _, p := range featurePollutants {
		inAll := true
		for _, s := range samples {
			if _, ok := s.Values[p]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			schema.pollutants = append(schema.pollutants, p)
		}
	}

	schema.temporal = true
	for _, s := range samples {
		if s.Timestamp.IsZero() {
			schema.temporal = false
			break
		}
	}

	return schema
}

// width is the number of features per vector.
func (f featureSchema) width() int {
	w := len(f.pollutants)
	if f.temporal {
		w += 2
	}
	return w
}

// vector extracts a feature vector for one sample. usable counts how
// many of the schema's columns the sample actually carried; pollutant
// columns missing from the sample contribute a raw zero concentration.
func (f featureSchema) vector(s Sample) (row []float64, usable int) {
	row = make([]float64, 0, f.width())

	for _, p := range f.pollutants {
		v, ok := s.Values[p]
		if ok {
			usable++
		}
		row = append(row, v)
	}

	if f.temporal {
		if !s.Timestamp.IsZero() {
			usable++
		}
		t := s.Timestamp.UTC()
		row = append(row,
			float64(t.Hour())/24.0,
			float64(t.Weekday())/7.0,
		)
	}

	return row, usable
}
