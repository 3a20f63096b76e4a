package web

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/shravani77747/ASD-Screening/internal/questionnaire"
	"github.com/shravani77747/ASD-Screening/internal/report"
	"github.com/shravani77747/ASD-Screening/internal/screening"
	"github.com/shravani77747/ASD-Screening/internal/security"
)

var errNameNotPrintable = errors.New("contains characters the report cannot print, please use Latin, Greek or Cyrillic letters")

type intakeForm struct {
	Name          string `form:"name"`
	Age           int    `form:"age" binding:"required,min=1,max=100"`
	Gender        string `form:"gender" binding:"required"`
	Ethnicity     string `form:"ethnicity" binding:"required"`
	Jaundice      string `form:"jaundice" binding:"required"`
	FamilyHistory string `form:"family_history" binding:"required"`
	UsedAppBefore string `form:"used_app_before" binding:"required"`
	Relation      string `form:"relation" binding:"required"`
	Country       string `form:"country" binding:"required"`
	AgeCategory   string `form:"age_category" binding:"required"`
}

// formFields maps intakeForm struct fields to their form names
var formFields = map[string]string{
	"Name":          screening.FieldName,
	"Age":           screening.FieldAge,
	"Gender":        screening.FieldGender,
	"Ethnicity":     screening.FieldEthnicity,
	"Jaundice":      screening.FieldJaundice,
	"FamilyHistory": screening.FieldFamilyHistory,
	"UsedAppBefore": screening.FieldUsedAppBefore,
	"Relation":      screening.FieldRelation,
	"Country":       screening.FieldCountry,
	"AgeCategory":   screening.FieldAgeCategory,
}

// submittedValues echoes the raw form back into a rejected intake page
func submittedValues(c *gin.Context) map[string]string {
	values := make(map[string]string, len(formFields))
	for _, name := range formFields {
		if v, ok := c.GetPostForm(name); ok {
			values[name] = v
		}
	}
	return values
}

// bindingMessages turns a bind failure into messages for the intake page
func bindingMessages(err error, catalog *questionnaire.Catalog) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// strconv failures for a non-numeric age land here
		return []string{fmt.Sprintf("%s must be a whole number between %d and %d", fieldLabel(catalog, screening.FieldAge), screening.MinAge, screening.MaxAge)}
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		label := fieldLabel(catalog, formFields[fe.StructField()])
		switch fe.Tag() {
		case "required":
			messages = append(messages, label+" is required")
		case "min", "max":
			messages = append(messages, fmt.Sprintf("%s must be between %d and %d", label, screening.MinAge, screening.MaxAge))
		default:
			messages = append(messages, label+" is invalid")
		}
	}
	return messages
}

func fieldLabel(catalog *questionnaire.Catalog, name string) string {
	if f, ok := catalog.Field(name); ok {
		return f.Label
	}
	return name
}

// demographics parses the bound form against the screening domains
func (f intakeForm) demographics(sm *security.SecurityMiddleware, catalog *questionnaire.Catalog) (screening.Demographics, []string) {
	var messages []string
	fail := func(field string, err error) {
		messages = append(messages, fmt.Sprintf("%s: %v", fieldLabel(catalog, field), err))
	}

	d := screening.Demographics{Age: f.Age}

	d.Name = sm.SanitizeInput(f.Name)
	if err := sm.ValidateName(f.Name); err != nil {
		fail(screening.FieldName, err)
	} else if !report.Printable(d.Name) {
		fail(screening.FieldName, errNameNotPrintable)
	}

	var err error
	if d.Gender, err = screening.ParseGender(f.Gender); err != nil {
		fail(screening.FieldGender, err)
	}
	if d.Ethnicity, err = screening.ParseEthnicity(f.Ethnicity); err != nil {
		fail(screening.FieldEthnicity, err)
	}
	if d.Jaundice, err = screening.ParseYesNo(screening.FieldJaundice, f.Jaundice); err != nil {
		fail(screening.FieldJaundice, err)
	}
	if d.FamilyHistory, err = screening.ParseYesNo(screening.FieldFamilyHistory, f.FamilyHistory); err != nil {
		fail(screening.FieldFamilyHistory, err)
	}
	if d.UsedAppBefore, err = screening.ParseYesNo(screening.FieldUsedAppBefore, f.UsedAppBefore); err != nil {
		fail(screening.FieldUsedAppBefore, err)
	}
	if d.Relation, err = screening.ParseRelation(f.Relation); err != nil {
		fail(screening.FieldRelation, err)
	}
	if d.Country, err = screening.ParseCountry(f.Country); err != nil {
		fail(screening.FieldCountry, err)
	}
	if d.AgeCategory, err = screening.ParseAgeCategory(f.AgeCategory); err != nil {
		fail(screening.FieldAgeCategory, err)
	}

	return d, messages
}

// questionnaireForm leaves unanswered questions nil
type questionnaireForm struct {
	A1  *int `form:"a1" binding:"omitempty,oneof=0 1"`
	A2  *int `form:"a2" binding:"omitempty,oneof=0 1"`
	A3  *int `form:"a3" binding:"omitempty,oneof=0 1"`
	A4  *int `form:"a4" binding:"omitempty,oneof=0 1"`
	A5  *int `form:"a5" binding:"omitempty,oneof=0 1"`
	A6  *int `form:"a6" binding:"omitempty,oneof=0 1"`
	A7  *int `form:"a7" binding:"omitempty,oneof=0 1"`
	A8  *int `form:"a8" binding:"omitempty,oneof=0 1"`
	A9  *int `form:"a9" binding:"omitempty,oneof=0 1"`
	A10 *int `form:"a10" binding:"omitempty,oneof=0 1"`
}

func (f questionnaireForm) responses() screening.Responses {
	answers := [screening.QuestionCount]*int{f.A1, f.A2, f.A3, f.A4, f.A5, f.A6, f.A7, f.A8, f.A9, f.A10}
	r := make(screening.Responses, screening.QuestionCount)
	for i, a := range answers {
		if a != nil {
			r[i+1] = *a
		}
	}
	return r
}
