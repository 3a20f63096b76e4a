package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_EncodeFixedOrder(t *testing.T) {
	tables, err := NewTableEncoding("v1", DefaultTables())
	require.NoError(t, err)
	encoder := NewEncoder(tables)

	v, err := encoder.Encode(samDemographics(), samResponses())
	require.NoError(t, err)

	expected := FeatureVector{
		1, 1, 1, 1, 0, 0, 0, 1, 0, 1, // A1..A10
		1,  // gender: Male
		0,  // ethnicity: Asian
		0,  // jaundice
		0,  // family history
		0,  // used app before
		25, // age
		1,  // 18 and more
		0,  // relation: Self
		0,  // country: India
	}
	assert.Equal(t, expected, v)
	assert.Len(t, v.Slice(), FeatureCount)
}

func TestEncoder_BinaryAndSurrogateFields(t *testing.T) {
	tables, err := NewTableEncoding("v1", DefaultTables())
	require.NoError(t, err)
	encoder := NewEncoder(tables)

	d := Demographics{
		Name:          "Alex",
		Age:           7,
		Gender:        GenderFemale,
		Ethnicity:     EthnicityBlack,
		Jaundice:      true,
		FamilyHistory: true,
		UsedAppBefore: true,
		Relation:      RelationProfessional,
		Country:       CountryUK,
		AgeCategory:   AgeMinor,
	}
	v, err := encoder.Encode(d, samResponses())
	require.NoError(t, err)

	assert.Equal(t, 0.0, v[10], "female encodes as 0")
	assert.Equal(t, 3.0, v[11], "Black is the fourth ethnicity")
	assert.Equal(t, 1.0, v[12])
	assert.Equal(t, 1.0, v[13])
	assert.Equal(t, 1.0, v[14])
	assert.Equal(t, 7.0, v[15])
	assert.Equal(t, 0.0, v[16], "minor encodes as 0")
	assert.Equal(t, 3.0, v[17])
	assert.Equal(t, 2.0, v[18])
}

func TestEncoder_IsPure(t *testing.T) {
	for _, categories := range []CategoryEncoding{HashEncoding{}, mustTables(t)} {
		encoder := NewEncoder(categories)
		first, err := encoder.Encode(samDemographics(), samResponses())
		require.NoError(t, err)
		for i := 0; i < 50; i++ {
			again, err := encoder.Encode(samDemographics(), samResponses())
			require.NoError(t, err)
			assert.Equal(t, first, again, categories.Name())
		}
	}
}

func TestEncoder_IncompleteResponses(t *testing.T) {
	encoder := NewEncoder(mustTables(t))

	r := samResponses()
	delete(r, 3)
	delete(r, 10)

	_, err := encoder.Encode(samDemographics(), r)
	require.Error(t, err)

	var incomplete *IncompleteInputError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []int{3, 10}, incomplete.Questions)
	assert.Contains(t, err.Error(), "A3, A10")
}

func TestEncoder_InvalidCategory(t *testing.T) {
	encoder := NewEncoder(mustTables(t))

	tests := []struct {
		name   string
		mutate func(d *Demographics, r Responses)
		field  string
	}{
		{
			name:   "unknown gender",
			mutate: func(d *Demographics, r Responses) { d.Gender = "Other" },
			field:  FieldGender,
		},
		{
			name:   "unknown ethnicity",
			mutate: func(d *Demographics, r Responses) { d.Ethnicity = "Martian" },
			field:  FieldEthnicity,
		},
		{
			name:   "unknown relation",
			mutate: func(d *Demographics, r Responses) { d.Relation = "Teacher" },
			field:  FieldRelation,
		},
		{
			name:   "unknown country",
			mutate: func(d *Demographics, r Responses) { d.Country = "France" },
			field:  FieldCountry,
		},
		{
			name:   "unknown age category",
			mutate: func(d *Demographics, r Responses) { d.AgeCategory = "Senior" },
			field:  FieldAgeCategory,
		},
		{
			name:   "non binary answer",
			mutate: func(d *Demographics, r Responses) { r[4] = 2 },
			field:  "A4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := samDemographics()
			r := samResponses()
			tt.mutate(&d, r)

			_, err := encoder.Encode(d, r)
			var invalid *InvalidCategoryError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestHashEncoding_Stable(t *testing.T) {
	enc := HashEncoding{}
	for _, field := range SurrogateFields {
		for _, value := range DomainStrings(field) {
			code, err := enc.Code(field, value)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, code, 0)
			assert.Less(t, code, 100)
			assert.Equal(t, int(StableHash(value)%100), code)
		}
	}

	_, err := enc.Code(FieldCountry, "Atlantis")
	var invalid *InvalidCategoryError
	assert.ErrorAs(t, err, &invalid)
}

func TestNewTableEncoding_RequiresFullCoverage(t *testing.T) {
	tables := DefaultTables()
	delete(tables[FieldCountry], "UK")

	_, err := NewTableEncoding("v1", tables)
	require.Error(t, err)
	var invalid *InvalidCategoryError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, FieldCountry, invalid.Field)
	assert.Equal(t, "UK", invalid.Value)

	delete(tables, FieldRelation)
	_, err = NewTableEncoding("v1", tables)
	assert.Error(t, err)
}

func TestTableEncoding_CustomCodes(t *testing.T) {
	tables := DefaultTables()
	tables[FieldEthnicity]["Asian"] = 42

	enc, err := NewTableEncoding("v2", tables)
	require.NoError(t, err)
	assert.Equal(t, "table/v2", enc.Name())

	code, err := enc.Code(FieldEthnicity, "Asian")
	require.NoError(t, err)
	assert.Equal(t, 42, code)

	// later mutation of the source map must not leak in
	tables[FieldEthnicity]["Asian"] = 7
	code, _ = enc.Code(FieldEthnicity, "Asian")
	assert.Equal(t, 42, code)
}

func mustTables(t *testing.T) *TableEncoding {
	t.Helper()
	enc, err := NewTableEncoding("v1", DefaultTables())
	require.NoError(t, err)
	return enc
}

func TestNewCategoryEncoding(t *testing.T) {
	tests := []struct {
		name     string
		scheme   string
		version  string
		tables   map[string]map[string]int
		wantName string
		wantErr  bool
	}{
		{name: "default tables", scheme: "", wantName: "table/v1"},
		{name: "explicit table", scheme: "table", version: "v3", tables: ColumnTables(DefaultTables()), wantName: "table/v3"},
		{name: "unversioned table", scheme: "table", tables: ColumnTables(DefaultTables()), wantName: "table/custom"},
		{name: "tables keyed by field name", scheme: "table", version: "v1", tables: DefaultTables(), wantErr: true},
		{name: "legacy hash", scheme: "hash", wantName: "hash/xxhash64-mod100"},
		{name: "unknown scheme", scheme: "md5", wantErr: true},
		{name: "partial table", scheme: "table", tables: map[string]map[string]int{"contry_of_res": {"India": 1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewCategoryEncoding(tt.scheme, tt.version, tt.tables)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, enc.Name())
		})
	}
}

func TestNewCategoryEncoding_ColumnKeyedTables(t *testing.T) {
	tables := map[string]map[string]int{
		"ethnicity":     {"Asian": 10, "White-European": 11, "Latino": 12, "Black": 13, "Others": 14},
		"relation":      {"Self": 20, "Parent": 21, "Relative": 22, "Health care professional": 23, "Others": 24},
		"contry_of_res": {"India": 30, "USA": 31, "UK": 32, "Others": 33},
	}

	enc, err := NewCategoryEncoding("table", "v2", tables)
	require.NoError(t, err)

	code, err := enc.Code(FieldCountry, string(CountryUSA))
	require.NoError(t, err)
	assert.Equal(t, 31, code)

	code, err = enc.Code(FieldRelation, string(RelationParent))
	require.NoError(t, err)
	assert.Equal(t, 21, code)

	v, err := NewEncoder(enc).Encode(samDemographics(), samResponses())
	require.NoError(t, err)
	assert.Equal(t, 10.0, v[11])
	assert.Equal(t, 20.0, v[17])
	assert.Equal(t, 30.0, v[18])
}

func TestSurrogateColumns_MatchLayout(t *testing.T) {
	assert.Equal(t, "ethnicity", SurrogateColumns[FieldEthnicity])
	assert.Equal(t, "relation", SurrogateColumns[FieldRelation])
	assert.Equal(t, "contry_of_res", SurrogateColumns[FieldCountry])
}
