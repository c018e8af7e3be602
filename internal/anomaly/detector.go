// Package anomaly detects outliers in fused pollution metrics using an
// isolation forest over pollutant and cyclical temporal features.
package anomaly

import (
	"math"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
)

// MinTrainingSamples is the minimum history required before the
// detector will fit. Fewer samples leave it untrained; that is a
// guard, not an error.
const MinTrainingSamples = 10

// Reason explains a neutral prediction. Downstream consumers must
// inspect it to distinguish "not anomalous" from "could not classify".
type Reason string

const (
	// ReasonNone marks a genuine classification.
	ReasonNone Reason = ""

	// ReasonUntrained means the model has not been fitted with enough
	// historical data.
	ReasonUntrained Reason = "insufficient_history"

	// ReasonNoFeatures means the sample carried no usable features.
	ReasonNoFeatures Reason = "no_features"
)

// Result is the outcome of one prediction.
type Result struct {
	// AnomalyScore is the outlier score; lower means more anomalous.
	// Zero for neutral results.
	AnomalyScore float64

	IsAnomaly bool

	// Confidence is the absolute value of the anomaly score; zero for
	// neutral results.
	Confidence float64

	// Reason is ReasonNone for genuine classifications and set for
	// neutral fallbacks.
	Reason Reason

	// Threshold is the decision boundary applied, reported only on
	// genuine classifications.
	Threshold float64
}

// Config holds tuning parameters for the detector.
type Config struct {
	// Trees is the ensemble size. Default: 100.
	Trees int

	// SubsampleSize bounds the per-tree training subsample.
	// Default: 256.
	SubsampleSize int

	// ScoreThreshold is the decision boundary: scores below it are
	// classified anomalous. A documented default, not derived from
	// data. Default: -0.5.
	ScoreThreshold float64

	// Seed makes fits reproducible. Default: 42.
	Seed int64

	// Logger for fit/predict operations.
	Logger zerolog.Logger
}

// fittedModel is the immutable trained state: frozen scaler parameters,
// the forest, and the feature schema they were derived from.
type fittedModel struct {
	schema featureSchema
	scaler *standardScaler
	forest *isolationForest
}

// Detector is a two-state anomaly model: Untrained until a successful
// Fit, then Fitted until re-fit. Each Fit builds a new immutable model
// swapped in under the lock, so Predict never observes partial state.
type Detector struct {
	config Config
	logger zerolog.Logger

	mu    sync.RWMutex
	model *fittedModel // nil while untrained
}

// NewDetector creates an untrained detector.
func NewDetector(cfg Config) *Detector {
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.SubsampleSize <= 0 {
		cfg.SubsampleSize = 256
	}
	if cfg.ScoreThreshold == 0 {
		cfg.ScoreThreshold = -0.5
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	return &Detector{config: cfg, logger: cfg.Logger}
}

// Fitted reports whether the detector holds a trained model.
func (d *Detector) Fitted() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.model != nil
}

// Fit trains the detector on historical samples. With fewer than
// MinTrainingSamples the detector returns to the untrained state and
// ok is false. Fit must not run concurrently with itself.
func (d *Detector) Fit(samples []Sample) (ok bool) {
	if len(samples) < MinTrainingSamples {
		d.mu.Lock()
		d.model = nil
		d.mu.Unlock()

		d.logger.Debug().
			Int("samples", len(samples)).
			Int("required", MinTrainingSamples).
			Msg("insufficient history, detector left untrained")
		return false
	}

	schema := schemaFor(samples)
	if schema.width() == 0 {
		d.mu.Lock()
		d.model = nil
		d.mu.Unlock()

		d.logger.Warn().Msg("training samples carry no usable features, detector left untrained")
		return false
	}

	rows := make([][]float64, len(samples))
	for i, s := range samples {
		rows[i], _ = schema.vector(s)
	}

	scaler := fitScaler(rows)
	rng := rand.New(rand.NewSource(d.config.Seed))
	forest := fitForest(scaler.transformAll(rows), d.config.Trees, d.config.SubsampleSize, rng)

	d.mu.Lock()
	d.model = &fittedModel{schema: schema, scaler: scaler, forest: forest}
	d.mu.Unlock()

	d.logger.Info().
		Int("samples", len(samples)).
		Int("features", schema.width()).
		Int("trees", d.config.Trees).
		Msg("anomaly detector fitted")
	return true
}

// Predict scores a sample against the fitted model. It is a pure read:
// untrained detectors and featureless samples yield a neutral result
// with an explicit Reason instead of failing.
func (d *Detector) Predict(sample Sample) Result {
	d.mu.RLock()
	model := d.model
	d.mu.RUnlock()

	if model == nil {
		return Result{Reason: ReasonUntrained}
	}

	row, usable := model.schema.vector(sample)
	if usable == 0 {
		return Result{Reason: ReasonNoFeatures}
	}

	score := model.forest.score(model.scaler.transform(row))

	return Result{
		AnomalyScore: score,
		IsAnomaly:    score < d.config.ScoreThreshold,
		Confidence:   math.Abs(score),
		Reason:       ReasonNone,
		Threshold:    d.config.ScoreThreshold,
	}
}
