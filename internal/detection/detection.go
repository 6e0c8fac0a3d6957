// Package detection scores a candidate record against an input record with a
// strategy of features and decides whether the two describe the same work.
package detection

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/recordmatcher/internal/features"
	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
)

const (
	// DefaultThreshold is the probability at or above which a candidate is a match.
	DefaultThreshold = 0.9
	// DefaultMinProbabilityQuantifier is the score at least one feature must
	// reach before the summed probability is trusted.
	DefaultMinProbabilityQuantifier = 0.5
)

// ErrEmptyStrategy is returned when a detector is built without features.
var ErrEmptyStrategy = errors.New("strategy has no features")

// FeatureVector holds one extracted value per strategy feature, in strategy order.
type FeatureVector []features.Value

// FeatureScore is the contribution of one feature. Excluded features lacked
// data on either side and did not take part in the sum.
type FeatureScore struct {
	Name     string  `json:"name" yaml:"name"`
	Score    float64 `json:"score" yaml:"score"`
	Excluded bool    `json:"excluded,omitempty" yaml:"excluded,omitempty"`
}

// Result is the outcome of comparing two feature vectors.
type Result struct {
	Match       bool           `json:"match"`
	Probability float64        `json:"probability"`
	Scores      []FeatureScore `json:"scores,omitempty"`
}

// Detector is immutable once built and safe for concurrent use.
type Detector struct {
	strategy   []features.Feature
	threshold  float64
	quantifier float64
	logger     *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector) error

// WithThreshold sets the match threshold.
func WithThreshold(threshold float64) Option {
	return func(d *Detector) error {
		if threshold <= 0 || threshold > 1 {
			return fmt.Errorf("threshold must be in (0, 1], got %v", threshold)
		}
		d.threshold = threshold
		return nil
	}
}

// WithMinProbabilityQuantifier sets the per-feature significance floor.
func WithMinProbabilityQuantifier(q float64) Option {
	return func(d *Detector) error {
		d.quantifier = q
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// New builds a detector for the given strategy.
func New(strategy []features.Feature, opts ...Option) (*Detector, error) {
	if len(strategy) == 0 {
		return nil, ErrEmptyStrategy
	}
	d := &Detector{
		strategy:   strategy,
		threshold:  DefaultThreshold,
		quantifier: DefaultMinProbabilityQuantifier,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// NewFromNames resolves feature names through the feature registry.
func NewFromNames(names []string, opts ...Option) (*Detector, error) {
	strategy, err := features.NewStrategy(names)
	if err != nil {
		return nil, err
	}
	return New(strategy, opts...)
}

// Threshold returns the configured match threshold.
func (d *Detector) Threshold() float64 { return d.threshold }

// Names returns the strategy's feature names in order.
func (d *Detector) Names() []string {
	names := make([]string, len(d.strategy))
	for i, f := range d.strategy {
		names[i] = f.Name()
	}
	return names
}

// Extract runs every feature's extractor over the record.
func (d *Detector) Extract(rec *marc.Record, label string) FeatureVector {
	vector := make(FeatureVector, len(d.strategy))
	for i, f := range d.strategy {
		vector[i] = f.Extract(rec, label)
	}
	return vector
}

// Score sums the scores of every feature with data on both sides, capping
// the total at 1.0. A sum reached without any single feature scoring at
// least the quantifier is reported as probability 0.
func (d *Detector) Score(a, b FeatureVector) Result {
	res := Result{Scores: make([]FeatureScore, len(d.strategy))}
	sum := 0.0
	significant := false

	for i, f := range d.strategy {
		score := FeatureScore{Name: f.Name()}
		va, vb := valueAt(a, i), valueAt(b, i)
		if va == nil || vb == nil || va.Empty() || vb.Empty() {
			score.Excluded = true
			res.Scores[i] = score
			continue
		}
		score.Score = f.Compare(va, vb)
		sum += score.Score
		if score.Score >= d.quantifier {
			significant = true
		}
		res.Scores[i] = score
	}

	if !significant {
		d.logger.Debug("No feature reached the significance floor", "sum", sum, "quantifier", d.quantifier)
		return res
	}

	res.Probability = min(sum, 1.0)
	res.Match = res.Probability >= d.threshold
	return res
}

// Compare scores a candidate record against already extracted input features.
// A panic inside a feature is returned as an error so one bad candidate
// cannot take down the whole job.
func (d *Detector) Compare(input FeatureVector, candidate *marc.Record) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("feature comparison failed: %v", r)
		}
	}()
	return d.Score(input, d.Extract(candidate, "candidate")), nil
}

// Prepare extracts the input record's features once for a whole job.
func (d *Detector) Prepare(input *marc.Record) (FeatureVector, error) {
	var vector FeatureVector
	if err := safely(func() { vector = d.Extract(input, "input") }); err != nil {
		return nil, err
	}
	return vector, nil
}

// Detect extracts and scores both records.
func (d *Detector) Detect(input, candidate *marc.Record) (Result, error) {
	vector, err := d.Prepare(input)
	if err != nil {
		return Result{}, err
	}
	return d.Compare(vector, candidate)
}

func safely(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("feature extraction failed: %v", r)
		}
	}()
	fn()
	return nil
}

func valueAt(v FeatureVector, i int) features.Value {
	if i >= len(v) {
		return nil
	}
	return v[i]
}
