package screening

import (
	"fmt"
	"time"
)

// Step is the active wizard stage of a Session.
type Step string

const (
	StepIntake        Step = "intake"
	StepQuestionnaire Step = "questionnaire"
	StepResult        Step = "result"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

type Ethnicity string

const (
	EthnicityAsian         Ethnicity = "Asian"
	EthnicityWhiteEuropean Ethnicity = "White-European"
	EthnicityLatino        Ethnicity = "Latino"
	EthnicityBlack         Ethnicity = "Black"
	EthnicityOthers        Ethnicity = "Others"
)

type Relation string

const (
	RelationSelf         Relation = "Self"
	RelationParent       Relation = "Parent"
	RelationRelative     Relation = "Relative"
	RelationProfessional Relation = "Health care professional"
	RelationOthers       Relation = "Others"
)

type Country string

const (
	CountryIndia  Country = "India"
	CountryUSA    Country = "USA"
	CountryUK     Country = "UK"
	CountryOthers Country = "Others"
)

// AgeCategory distinguishes adults (18 and more) from minors.
type AgeCategory string

const (
	AgeAdult AgeCategory = "18 and more"
	AgeMinor AgeCategory = "Less than 18"
)

// Field names used in errors and encoder lookups.
const (
	FieldName          = "name"
	FieldAge           = "age"
	FieldGender        = "gender"
	FieldEthnicity     = "ethnicity"
	FieldJaundice      = "jaundice"
	FieldFamilyHistory = "family_history"
	FieldUsedAppBefore = "used_app_before"
	FieldRelation      = "relation"
	FieldCountry       = "country"
	FieldAgeCategory   = "age_category"
)

// Declared domains, in table ordinal order.
var (
	Genders       = []Gender{GenderMale, GenderFemale}
	Ethnicities   = []Ethnicity{EthnicityAsian, EthnicityWhiteEuropean, EthnicityLatino, EthnicityBlack, EthnicityOthers}
	Relations     = []Relation{RelationSelf, RelationParent, RelationRelative, RelationProfessional, RelationOthers}
	Countries     = []Country{CountryIndia, CountryUSA, CountryUK, CountryOthers}
	AgeCategories = []AgeCategory{AgeAdult, AgeMinor}
)

const (
	MinAge = 1
	MaxAge = 100
)

// Demographics is the intake record collected on the first screen.
type Demographics struct {
	Name          string      `json:"name"`
	Age           int         `json:"age"`
	Gender        Gender      `json:"gender"`
	Ethnicity     Ethnicity   `json:"ethnicity"`
	Jaundice      bool        `json:"jaundice"`
	FamilyHistory bool        `json:"family_history"`
	UsedAppBefore bool        `json:"used_app_before"`
	Relation      Relation    `json:"relation"`
	Country       Country     `json:"country"`
	AgeCategory   AgeCategory `json:"age_category"`
}

// QuestionCount is the number of behavioral questions A1..A10.
const QuestionCount = 10

// Responses maps a question index (1..QuestionCount) to a binary answer.
type Responses map[int]int

// Missing returns the unanswered question indices in ascending order.
func (r Responses) Missing() []int {
	var missing []int
	for i := 1; i <= QuestionCount; i++ {
		if _, ok := r[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// Clone returns an independent copy.
func (r Responses) Clone() Responses {
	if r == nil {
		return nil
	}
	out := make(Responses, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// QuestionKey is the A-prefixed label of a question index, e.g. "A3".
func QuestionKey(index int) string {
	return fmt.Sprintf("A%d", index)
}

// Result is the outcome of one scoring pass.
type Result struct {
	Probability float64   `json:"probability"`
	Label       bool      `json:"label"`
	LabelText   string    `json:"label_text"`
	Severity    Severity  `json:"severity"`
	Guidance    string    `json:"guidance"`
	CompletedAt time.Time `json:"completed_at"`
}

const (
	PositiveLabelText = "Autistic traits may be present"
	NegativeLabelText = "Lower likelihood of autistic traits"
)

// LabelText returns the display text for a classifier label.
func LabelText(label bool) string {
	if label {
		return PositiveLabelText
	}
	return NegativeLabelText
}

func ParseGender(raw string) (Gender, error) {
	return parseEnum(FieldGender, raw, Genders)
}

func ParseEthnicity(raw string) (Ethnicity, error) {
	return parseEnum(FieldEthnicity, raw, Ethnicities)
}

func ParseRelation(raw string) (Relation, error) {
	return parseEnum(FieldRelation, raw, Relations)
}

func ParseCountry(raw string) (Country, error) {
	return parseEnum(FieldCountry, raw, Countries)
}

func ParseAgeCategory(raw string) (AgeCategory, error) {
	return parseEnum(FieldAgeCategory, raw, AgeCategories)
}

// ParseYesNo maps the "Yes"/"No" answers of the intake form to a bool.
func ParseYesNo(field, raw string) (bool, error) {
	switch raw {
	case "Yes":
		return true, nil
	case "No":
		return false, nil
	default:
		return false, &InvalidCategoryError{Field: field, Value: raw}
	}
}

func parseEnum[T ~string](field, raw string, domain []T) (T, error) {
	if inDomain(T(raw), domain) {
		return T(raw), nil
	}
	var zero T
	return zero, &InvalidCategoryError{Field: field, Value: raw}
}

func inDomain[T ~string](v T, domain []T) bool {
	for _, d := range domain {
		if d == v {
			return true
		}
	}
	return false
}

// DomainStrings returns the string values of a categorical field's domain.
func DomainStrings(field string) []string {
	switch field {
	case FieldGender:
		return toStrings(Genders)
	case FieldEthnicity:
		return toStrings(Ethnicities)
	case FieldRelation:
		return toStrings(Relations)
	case FieldCountry:
		return toStrings(Countries)
	case FieldAgeCategory:
		return toStrings(AgeCategories)
	case FieldJaundice, FieldFamilyHistory, FieldUsedAppBefore:
		return []string{"Yes", "No"}
	}
	return nil
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
