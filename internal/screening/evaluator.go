package screening

import (
	"fmt"
	"time"
)

// Scorer is the externally trained binary classifier.
type Scorer interface {
	Predict(features []float64) (int, error)
	PredictProba(features []float64) (float64, error)
}

// Evaluator turns completed answers into a Result.
type Evaluator struct {
	encoder  *Encoder
	scorer   Scorer
	guidance *GuidanceSelector
}

func NewEvaluator(encoder *Encoder, scorer Scorer, guidance *GuidanceSelector) *Evaluator {
	return &Evaluator{encoder: encoder, scorer: scorer, guidance: guidance}
}

// Evaluate encodes, scores, bands and picks guidance. It never caches.
func (e *Evaluator) Evaluate(d Demographics, r Responses, now time.Time) (*Result, error) {
	vector, err := e.encoder.Encode(d, r)
	if err != nil {
		return nil, err
	}
	features := vector.Slice()

	label, err := e.scorer.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if label != 0 && label != 1 {
		return nil, fmt.Errorf("predict: label %d is not binary", label)
	}
	proba, err := e.scorer.PredictProba(features)
	if err != nil {
		return nil, fmt.Errorf("predict proba: %w", err)
	}
	if proba < 0 || proba > 1 || proba != proba {
		return nil, fmt.Errorf("predict proba: %v outside [0,1]", proba)
	}

	probability := proba * 100
	positive := label == 1
	return &Result{
		Probability: probability,
		Label:       positive,
		LabelText:   LabelText(positive),
		Severity:    ClassifySeverity(probability),
		Guidance:    e.guidance.Select(positive),
		CompletedAt: now,
	}, nil
}
