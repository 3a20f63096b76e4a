package model

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shravani77747/ASD-Screening/internal/screening"
)

var layout = screening.FeatureNames[:]

// samVector is the encoded vector for answers 1,1,1,1,0,0,0,1,0,1 with table codes.
func samVector() []float64 {
	return []float64{1, 1, 1, 1, 0, 0, 0, 1, 0, 1, 1, 0, 0, 0, 0, 25, 1, 0, 0}
}

func TestLoad_Forest(t *testing.T) {
	m, err := Load("testdata/forest.json", layout)
	require.NoError(t, err)

	assert.Equal(t, KindRandomForest, m.Kind())
	assert.Equal(t, "asd-screening-forest", m.Name())
	assert.Equal(t, "2024.1", m.Version())

	p, err := m.PredictProba(samVector())
	require.NoError(t, err)
	assert.InDelta(t, 0.62/3, p, 1e-9)

	label, err := m.Predict(samVector())
	require.NoError(t, err)
	assert.Equal(t, 0, label)

	scheme, version, tables := m.CategoryEncoding()
	assert.Equal(t, "table", scheme)
	assert.Equal(t, "v1", version)
	enc, err := screening.NewCategoryEncoding(scheme, version, tables)
	require.NoError(t, err)
	assert.Equal(t, "table/v1", enc.Name())

	code, err := enc.Code(screening.FieldCountry, string(screening.CountryUK))
	require.NoError(t, err)
	assert.Equal(t, 2, code)
}

func TestLoad_ShippedArtifact(t *testing.T) {
	m, err := Load("../../models/asd_forest.json", layout)
	require.NoError(t, err)

	scheme, version, tables := m.CategoryEncoding()
	_, err = screening.NewCategoryEncoding(scheme, version, tables)
	assert.NoError(t, err)
}

func TestForest_HighRiskPath(t *testing.T) {
	m, err := Load("testdata/forest.json", layout)
	require.NoError(t, err)

	x := samVector()
	x[3], x[4], x[5], x[8], x[9], x[13] = 1, 1, 1, 1, 1, 1

	p, err := m.PredictProba(x)
	require.NoError(t, err)
	assert.InDelta(t, (0.90+0.85+0.95)/3, p, 1e-9)

	label, err := m.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, 1, label)
}

func TestLoad_Logistic(t *testing.T) {
	m, err := Load("testdata/logistic.json", layout)
	require.NoError(t, err)

	p, err := m.PredictProba(samVector())
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-1)), p, 1e-9)

	label, err := m.Predict(samVector())
	require.NoError(t, err)
	assert.Equal(t, 1, label)

	scheme, _, _ := m.CategoryEncoding()
	assert.Equal(t, "hash", scheme)
}

func TestPredict_WrongLength(t *testing.T) {
	m, err := Load("testdata/forest.json", layout)
	require.NoError(t, err)

	_, err = m.PredictProba([]float64{1, 0})
	assert.Error(t, err)
	_, err = m.Predict(nil)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"), layout)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoad_Invalid(t *testing.T) {
	base, err := os.ReadFile("testdata/forest.json")
	require.NoError(t, err)
	forest := string(base)

	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed json", content: "{"},
		{name: "unknown field", content: strings.Replace(forest, `"kind"`, `"flavour": 1, "kind"`, 1)},
		{name: "layout mismatch", content: strings.Replace(forest, `"relation", "contry_of_res"`, `"relation", "country"`, 1)},
		{name: "short layout", content: strings.Replace(forest, `, "contry_of_res"
  ]`, `
  ]`, 1)},
		{name: "unknown kind", content: strings.Replace(forest, `"random_forest"`, `"svm"`, 1)},
		{name: "threshold out of range", content: strings.Replace(forest, `"threshold": 0.5,
  "category`, `"threshold": 1.5,
  "category`, 1)},
		{name: "leaf value out of range", content: strings.Replace(forest, `"value": 0.95`, `"value": 1.95`, 1)},
		{name: "backward child", content: strings.Replace(forest, `"left": 5, "right": 6}`, `"left": 0, "right": 6}`, 1)},
		{name: "child out of bounds", content: strings.Replace(forest, `"left": 3, "right": 4}`, `"left": 3, "right": 40}`, 1)},
		{name: "unknown feature", content: strings.Replace(forest, `{"feature": 13,`, `{"feature": 42,`, 1)},
		{name: "no trees", content: `{"kind": "random_forest", "feature_names": ` + layoutJSON() + `, "trees": []}`},
		{name: "short coefficients", content: `{"kind": "logistic", "feature_names": ` + layoutJSON() + `, "coefficients": [1, 2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotEqual(t, forest, tt.content, "fixture edit did not apply")

			path := filepath.Join(t.TempDir(), "model.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := Load(path, layout)
			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, path, loadErr.Path)
		})
	}
}

func layoutJSON() string {
	quoted := make([]string, len(layout))
	for i, name := range layout {
		quoted[i] = `"` + name + `"`
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func TestModel_ConcurrentUse(t *testing.T) {
	m, err := Load("testdata/forest.json", layout)
	require.NoError(t, err)

	done := make(chan float64, 8)
	for i := 0; i < 8; i++ {
		go func() {
			p, _ := m.PredictProba(samVector())
			done <- p
		}()
	}
	for i := 0; i < 8; i++ {
		assert.InDelta(t, 0.62/3, <-done, 1e-9)
	}
}
