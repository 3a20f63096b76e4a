package screening

import (
	"strconv"
	"time"
)

// Session is one user's screening attempt. It is owned by a single
// interaction context and is not safe for concurrent mutation.
type Session struct {
	ID           string        `json:"id"`
	Step         Step          `json:"step"`
	Demographics *Demographics `json:"demographics,omitempty"`
	Responses    Responses     `json:"responses,omitempty"`
	Result       *Result       `json:"result,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Step:      StepIntake,
		CreatedAt: now,
	}
}

// RecordDemographics stores the intake answers, replacing earlier ones.
func (s *Session) RecordDemographics(d Demographics) error {
	if s.Step != StepIntake {
		return transitionError("record demographics", s.Step)
	}
	s.Demographics = &d
	return nil
}

// Proceed moves from Intake to Questionnaire. Age must lie in MinAge..MaxAge.
func (s *Session) Proceed() error {
	if s.Step != StepIntake {
		return transitionError("proceed", s.Step)
	}
	if s.Demographics == nil {
		return &IncompleteInputError{Fields: []string{"demographics"}}
	}
	if age := s.Demographics.Age; age < MinAge || age > MaxAge {
		return &IncompleteInputError{Fields: []string{FieldAge}}
	}
	s.Step = StepQuestionnaire
	return nil
}

// RecordResponses merges answers into the questionnaire. Values must be 0 or 1.
func (s *Session) RecordResponses(r Responses) error {
	if s.Step != StepQuestionnaire {
		return transitionError("record responses", s.Step)
	}
	for index, answer := range r {
		if index < 1 || index > QuestionCount {
			return &InvalidCategoryError{Field: "question", Value: QuestionKey(index)}
		}
		if answer != 0 && answer != 1 {
			return &InvalidCategoryError{Field: QuestionKey(index), Value: strconv.Itoa(answer)}
		}
	}
	if s.Responses == nil {
		s.Responses = make(Responses, QuestionCount)
	}
	for index, answer := range r {
		s.Responses[index] = answer
	}
	return nil
}

// Submit scores the session and enters the Result step. The session is left
// untouched on error.
func (s *Session) Submit(e *Evaluator, now time.Time) (*Result, error) {
	if s.Step != StepQuestionnaire {
		return nil, transitionError("submit", s.Step)
	}
	if s.Demographics == nil {
		return nil, &IncompleteInputError{Fields: []string{"demographics"}}
	}
	if missing := s.Responses.Missing(); len(missing) > 0 {
		return nil, &IncompleteInputError{Questions: missing}
	}
	result, err := e.Evaluate(*s.Demographics, s.Responses, now)
	if err != nil {
		return nil, err
	}
	s.Result = result
	s.Step = StepResult
	return result, nil
}

// Restart discards every answer and the result, and starts over under newID.
func (s *Session) Restart(newID string, now time.Time) {
	*s = *NewSession(newID, now)
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	out := *s
	if s.Demographics != nil {
		d := *s.Demographics
		out.Demographics = &d
	}
	out.Responses = s.Responses.Clone()
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	return &out
}
