// Package questionnaire holds the labels and option lists shown on the
// intake and questionnaire screens.
package questionnaire

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shravani77747/ASD-Screening/internal/screening"
)

const embeddedFile = "questionnaire.yaml"

//go:embed questionnaire.yaml
var catalogFS embed.FS

// Field kinds rendered by the intake form.
const (
	KindText   = "text"
	KindNumber = "number"
	KindSelect = "select"
)

type Field struct {
	Name    string   `yaml:"name"`
	Label   string   `yaml:"label"`
	Kind    string   `yaml:"kind"`
	Default string   `yaml:"default"`
	Options []string `yaml:"options"`
	Min     int      `yaml:"min"`
	Max     int      `yaml:"max"`
}

type Question struct {
	Index int    `yaml:"index"`
	Key   string `yaml:"-"`
	Text  string `yaml:"text"`
}

// Catalog is read-only after Load.
type Catalog struct {
	Title      string     `yaml:"title"`
	Disclaimer string     `yaml:"disclaimer"`
	Fields     []Field    `yaml:"fields"`
	Questions  []Question `yaml:"questions"`
}

// Load reads the catalog from path, or the embedded copy when path is empty.
func Load(path string) (*Catalog, error) {
	data, err := read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questionnaire: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse questionnaire: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid questionnaire: %w", err)
	}
	return &c, nil
}

// Default returns the embedded catalog. It panics if the embedded file is invalid.
func Default() *Catalog {
	c, err := Load("")
	if err != nil {
		panic(err)
	}
	return c
}

func read(path string) ([]byte, error) {
	if path = strings.TrimSpace(path); path != "" {
		return os.ReadFile(path)
	}
	return catalogFS.ReadFile(embeddedFile)
}

var intakeFields = []string{
	screening.FieldName,
	screening.FieldAge,
	screening.FieldGender,
	screening.FieldEthnicity,
	screening.FieldJaundice,
	screening.FieldFamilyHistory,
	screening.FieldUsedAppBefore,
	screening.FieldRelation,
	screening.FieldCountry,
	screening.FieldAgeCategory,
}

func (c *Catalog) validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("missing title")
	}
	if strings.TrimSpace(c.Disclaimer) == "" {
		return errors.New("missing disclaimer")
	}

	seen := make(map[string]bool, len(c.Fields))
	for i := range c.Fields {
		f := &c.Fields[i]
		if !slices.Contains(intakeFields, f.Name) {
			return fmt.Errorf("unknown field %q", f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if f.Label == "" {
			f.Label = f.Name
		}
		if err := f.normalize(); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	for _, name := range intakeFields {
		if !seen[name] {
			return fmt.Errorf("missing field %q", name)
		}
	}

	if len(c.Questions) != screening.QuestionCount {
		return fmt.Errorf("got %d questions, want %d", len(c.Questions), screening.QuestionCount)
	}
	for i := range c.Questions {
		q := &c.Questions[i]
		if q.Index != i+1 {
			return fmt.Errorf("question %d has index %d", i+1, q.Index)
		}
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d has no text", q.Index)
		}
		q.Key = screening.QuestionKey(q.Index)
	}
	return nil
}

// normalize checks the field against the screening domains and fills bounds.
func (f *Field) normalize() error {
	switch f.Name {
	case screening.FieldName:
		if f.Kind != KindText {
			return fmt.Errorf("kind %q, want %q", f.Kind, KindText)
		}
	case screening.FieldAge:
		if f.Kind != KindNumber {
			return fmt.Errorf("kind %q, want %q", f.Kind, KindNumber)
		}
		if f.Min == 0 {
			f.Min = screening.MinAge
		}
		if f.Max == 0 {
			f.Max = screening.MaxAge
		}
		if f.Min < screening.MinAge || f.Max > screening.MaxAge || f.Min > f.Max {
			return fmt.Errorf("bounds %d..%d outside %d..%d", f.Min, f.Max, screening.MinAge, screening.MaxAge)
		}
		if f.Default != "" {
			age, err := strconv.Atoi(f.Default)
			if err != nil || age < f.Min || age > f.Max {
				return fmt.Errorf("default %q outside %d..%d", f.Default, f.Min, f.Max)
			}
		}
	default:
		if f.Kind != KindSelect {
			return fmt.Errorf("kind %q, want %q", f.Kind, KindSelect)
		}
		domain := screening.DomainStrings(f.Name)
		if len(f.Options) == 0 {
			f.Options = domain
		}
		if len(f.Options) != len(domain) {
			return fmt.Errorf("got %d options, want %d", len(f.Options), len(domain))
		}
		for j, o := range f.Options {
			if !slices.Contains(domain, o) {
				return fmt.Errorf("option %q outside domain", o)
			}
			if slices.Contains(f.Options[:j], o) {
				return fmt.Errorf("duplicate option %q", o)
			}
		}
		if f.Default != "" && !slices.Contains(f.Options, f.Default) {
			return fmt.Errorf("default %q is not an option", f.Default)
		}
	}
	return nil
}

// Field returns the intake field with the given name.
func (c *Catalog) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// QuestionText returns the wording of question index (1-based).
func (c *Catalog) QuestionText(index int) string {
	if index < 1 || index > len(c.Questions) {
		return ""
	}
	return c.Questions[index-1].Text
}
