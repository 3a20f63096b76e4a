package screening

import (
	"errors"
	"math/rand"
)

type stubScorer struct {
	label int
	proba float64
	err   error
	calls int
	last  []float64
}

func (s *stubScorer) Predict(features []float64) (int, error) {
	s.calls++
	s.last = features
	return s.label, s.err
}

func (s *stubScorer) PredictProba(features []float64) (float64, error) {
	return s.proba, s.err
}

var errScorer = errors.New("scorer exploded")

func samDemographics() Demographics {
	return Demographics{
		Name:          "Sam",
		Age:           25,
		Gender:        GenderMale,
		Ethnicity:     EthnicityAsian,
		Jaundice:      false,
		FamilyHistory: false,
		UsedAppBefore: false,
		Relation:      RelationSelf,
		Country:       CountryIndia,
		AgeCategory:   AgeAdult,
	}
}

func samResponses() Responses {
	answers := []int{1, 1, 1, 1, 0, 0, 0, 1, 0, 1}
	r := make(Responses, QuestionCount)
	for i, a := range answers {
		r[i+1] = a
	}
	return r
}

func newTestEvaluator(scorer Scorer) *Evaluator {
	tables, err := NewTableEncoding("v1", DefaultTables())
	if err != nil {
		panic(err)
	}
	return NewEvaluator(NewEncoder(tables), scorer, NewGuidanceSelector(rand.NewSource(1)))
}
