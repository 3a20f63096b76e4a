package screening

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// FeatureCount is the length of the classifier input.
const FeatureCount = 19

// LayoutVersion identifies the feature order below. Bump it on any change.
const LayoutVersion = "asd-19/v1"

// FeatureNames is the column layout the classifier was trained on.
var FeatureNames = [FeatureCount]string{
	"A1_Score", "A2_Score", "A3_Score", "A4_Score", "A5_Score",
	"A6_Score", "A7_Score", "A8_Score", "A9_Score", "A10_Score",
	"gender",
	"ethnicity",
	"jaundice",
	"austim",
	"used_app_before",
	"age",
	"age_desc",
	"relation",
	"contry_of_res",
}

// FeatureVector is the fixed-order numeric input of the classifier.
type FeatureVector [FeatureCount]float64

// Slice returns the vector as a new slice.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}

// SurrogateFields are the categorical fields encoded through a CategoryEncoding.
var SurrogateFields = []string{FieldEthnicity, FieldRelation, FieldCountry}

// SurrogateColumns maps each surrogate field to its training column. Model
// artifacts key their category tables by column.
var SurrogateColumns = map[string]string{
	FieldEthnicity: FeatureNames[11],
	FieldRelation:  FeatureNames[17],
	FieldCountry:   FeatureNames[18],
}

// CategoryEncoding maps a categorical value to its numeric surrogate.
type CategoryEncoding interface {
	Code(field, value string) (int, error)
	Name() string
}

// TableEncoding looks surrogates up in explicit per-field tables.
type TableEncoding struct {
	version string
	tables  map[string]map[string]int
}

// DefaultTables returns the v1 tables: each value's ordinal in its declared domain.
func DefaultTables() map[string]map[string]int {
	tables := make(map[string]map[string]int, len(SurrogateFields))
	for _, field := range SurrogateFields {
		values := DomainStrings(field)
		t := make(map[string]int, len(values))
		for i, v := range values {
			t[v] = i
		}
		tables[field] = t
	}
	return tables
}

// NewTableEncoding validates that every surrogate field's domain is covered.
func NewTableEncoding(version string, tables map[string]map[string]int) (*TableEncoding, error) {
	copied := make(map[string]map[string]int, len(SurrogateFields))
	for _, field := range SurrogateFields {
		t, ok := tables[field]
		if !ok {
			return nil, fmt.Errorf("category table for %s is missing", field)
		}
		ct := make(map[string]int, len(t))
		for _, v := range DomainStrings(field) {
			code, ok := t[v]
			if !ok {
				return nil, fmt.Errorf("category table incomplete: %w", &InvalidCategoryError{Field: field, Value: v})
			}
			ct[v] = code
		}
		copied[field] = ct
	}
	return &TableEncoding{version: version, tables: copied}, nil
}

func (t *TableEncoding) Code(field, value string) (int, error) {
	table, ok := t.tables[field]
	if !ok {
		return 0, &InvalidCategoryError{Field: field, Value: value}
	}
	code, ok := table[value]
	if !ok {
		return 0, &InvalidCategoryError{Field: field, Value: value}
	}
	return code, nil
}

func (t *TableEncoding) Name() string {
	return "table/" + t.version
}

// HashEncoding reproduces the legacy hash-mod-100 surrogate with a stable hash.
type HashEncoding struct{}

// StableHash is the process-independent hash behind HashEncoding.
func StableHash(s string) uint64 {
	return xxhash.Sum64String(s)
}

func (HashEncoding) Code(field, value string) (int, error) {
	if !inDomain(value, DomainStrings(field)) {
		return 0, &InvalidCategoryError{Field: field, Value: value}
	}
	return int(StableHash(value) % 100), nil
}

func (HashEncoding) Name() string {
	return "hash/xxhash64-mod100"
}

// Encoder builds feature vectors from collected answers.
type Encoder struct {
	categories CategoryEncoding
}

func NewEncoder(categories CategoryEncoding) *Encoder {
	return &Encoder{categories: categories}
}

// Categories returns the surrogate scheme in use.
func (e *Encoder) Categories() CategoryEncoding {
	return e.categories
}

// Encode is pure: equal inputs always produce equal vectors.
func (e *Encoder) Encode(d Demographics, r Responses) (FeatureVector, error) {
	var v FeatureVector

	if missing := r.Missing(); len(missing) > 0 {
		return v, &IncompleteInputError{Questions: missing}
	}
	keys := make([]int, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		if k < 1 || k > QuestionCount {
			return v, &InvalidCategoryError{Field: "question", Value: fmt.Sprint(k)}
		}
		answer := r[k]
		if answer != 0 && answer != 1 {
			return v, &InvalidCategoryError{Field: QuestionKey(k), Value: fmt.Sprint(answer)}
		}
		v[k-1] = float64(answer)
	}

	if !inDomain(d.Gender, Genders) {
		return v, &InvalidCategoryError{Field: FieldGender, Value: string(d.Gender)}
	}
	if !inDomain(d.AgeCategory, AgeCategories) {
		return v, &InvalidCategoryError{Field: FieldAgeCategory, Value: string(d.AgeCategory)}
	}

	ethnicity, err := e.categories.Code(FieldEthnicity, string(d.Ethnicity))
	if err != nil {
		return v, err
	}
	relation, err := e.categories.Code(FieldRelation, string(d.Relation))
	if err != nil {
		return v, err
	}
	country, err := e.categories.Code(FieldCountry, string(d.Country))
	if err != nil {
		return v, err
	}

	v[10] = boolFeature(d.Gender == GenderMale)
	v[11] = float64(ethnicity)
	v[12] = boolFeature(d.Jaundice)
	v[13] = boolFeature(d.FamilyHistory)
	v[14] = boolFeature(d.UsedAppBefore)
	v[15] = float64(d.Age)
	v[16] = boolFeature(d.AgeCategory == AgeAdult)
	v[17] = float64(relation)
	v[18] = float64(country)

	return v, nil
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// NewCategoryEncoding selects the surrogate scheme declared by a model
// artifact. An empty table set means the built-in v1 tables.
func NewCategoryEncoding(scheme, version string, tables map[string]map[string]int) (CategoryEncoding, error) {
	switch scheme {
	case "", "table":
		if len(tables) == 0 {
			return NewTableEncoding("v1", DefaultTables())
		}
		if version == "" {
			version = "custom"
		}
		byField, err := fieldTables(tables)
		if err != nil {
			return nil, err
		}
		return NewTableEncoding(version, byField)
	case "hash":
		return HashEncoding{}, nil
	default:
		return nil, fmt.Errorf("unknown category encoding %q", scheme)
	}
}

// fieldTables rekeys artifact tables from training columns to field names.
func fieldTables(columns map[string]map[string]int) (map[string]map[string]int, error) {
	out := make(map[string]map[string]int, len(SurrogateFields))
	for _, field := range SurrogateFields {
		column := SurrogateColumns[field]
		t, ok := columns[column]
		if !ok {
			return nil, fmt.Errorf("category table for column %s is missing", column)
		}
		out[field] = t
	}
	return out, nil
}

// ColumnTables rekeys field tables by training column, the layout model
// artifacts use.
func ColumnTables(fields map[string]map[string]int) map[string]map[string]int {
	out := make(map[string]map[string]int, len(fields))
	for field, t := range fields {
		if column, ok := SurrogateColumns[field]; ok {
			out[column] = t
		}
	}
	return out
}
