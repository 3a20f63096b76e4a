package frontend

import (
	"strconv"
	"strings"

	"github.com/shravani77747/ASD-Screening/internal/questionnaire"
	"github.com/shravani77747/ASD-Screening/internal/report"
	"github.com/shravani77747/ASD-Screening/internal/screening"
)

// Page names
const (
	PageIntake        = "intake"
	PageQuestionnaire = "questionnaire"
	PageResult        = "result"
	PageError         = "error"
)

// PageData is what the layout sees. View is one of the *View types below.
type PageData struct {
	Title      string
	Disclaimer string
	Nonce      string
	View       any
}

type FieldView struct {
	questionnaire.Field
	Value string
}

type IntakeView struct {
	Fields        []FieldView
	Errors        []string
	NameMaxLength int
}

// NewIntakeView prefills the form from d, or from the catalog defaults when d is nil.
func NewIntakeView(c *questionnaire.Catalog, d *screening.Demographics, nameMaxLength int) IntakeView {
	values := map[string]string{}
	if d != nil {
		values = map[string]string{
			screening.FieldName:          d.Name,
			screening.FieldAge:           strconv.Itoa(d.Age),
			screening.FieldGender:        string(d.Gender),
			screening.FieldEthnicity:     string(d.Ethnicity),
			screening.FieldJaundice:      yesNo(d.Jaundice),
			screening.FieldFamilyHistory: yesNo(d.FamilyHistory),
			screening.FieldUsedAppBefore: yesNo(d.UsedAppBefore),
			screening.FieldRelation:      string(d.Relation),
			screening.FieldCountry:       string(d.Country),
			screening.FieldAgeCategory:   string(d.AgeCategory),
		}
	}

	fields := make([]FieldView, len(c.Fields))
	for i, f := range c.Fields {
		value, ok := values[f.Name]
		if !ok {
			value = f.Default
		}
		fields[i] = FieldView{Field: f, Value: value}
	}
	return IntakeView{Fields: fields, NameMaxLength: nameMaxLength}
}

// WithValues replaces the prefilled values with a rejected submission.
func (v IntakeView) WithValues(values map[string]string) IntakeView {
	fields := make([]FieldView, len(v.Fields))
	for i, f := range v.Fields {
		if value, ok := values[f.Name]; ok {
			f.Value = value
		}
		fields[i] = f
	}
	v.Fields = fields
	return v
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

type QuestionView struct {
	Key     string
	Name    string
	Text    string
	Answer  string
	Missing bool
}

type QuestionnaireView struct {
	Questions []QuestionView
	Missing   []string
}

// NewQuestionnaireView marks the given question indices as unanswered.
func NewQuestionnaireView(c *questionnaire.Catalog, r screening.Responses, missing []int) QuestionnaireView {
	isMissing := make(map[int]bool, len(missing))
	keys := make([]string, len(missing))
	for i, index := range missing {
		isMissing[index] = true
		keys[i] = screening.QuestionKey(index)
	}

	questions := make([]QuestionView, len(c.Questions))
	for i, q := range c.Questions {
		answer := ""
		if a, ok := r[q.Index]; ok {
			answer = strconv.Itoa(a)
		}
		questions[i] = QuestionView{
			Key:     q.Key,
			Name:    strings.ToLower(q.Key),
			Text:    q.Text,
			Answer:  answer,
			Missing: isMissing[q.Index],
		}
	}
	return QuestionnaireView{Questions: questions, Missing: keys}
}

type ResultView struct {
	Name          string
	Age           int
	Gender        string
	LabelText     string
	Probability   string
	Severity      string
	SeverityClass string
	Guidance      string
	Notice        string
}

func NewResultView(d screening.Demographics, r screening.Result) ResultView {
	return ResultView{
		Name:          d.Name,
		Age:           d.Age,
		Gender:        string(d.Gender),
		LabelText:     r.LabelText,
		Probability:   report.FormatProbability(r.Probability),
		Severity:      string(r.Severity),
		SeverityClass: severityClass(r.Severity),
		Guidance:      r.Guidance,
	}
}

func severityClass(s screening.Severity) string {
	switch s {
	case screening.SeverityHigh:
		return "high"
	case screening.SeverityModerate:
		return "moderate"
	default:
		return "low"
	}
}

type ErrorView struct {
	Heading string
	Message string
}
