package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lighthouse-crew/profilesync/internal/server/models"
)

func boolPtr(b bool) *bool           { return &b }
func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func completePersonal() models.PersonalSection {
	return models.PersonalSection{
		FirstName:   "Maya",
		LastName:    "Santos",
		DateOfBirth: timePtr(time.Date(1994, 5, 12, 0, 0, 0, 0, time.UTC)),
		Nationality: "Portuguese",
		Phone:       "+351 912 000 000",
		Email:       "maya@example.com",
	}
}

func TestValidate_Personal(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*models.PersonalSection)
		wantValid bool
		wantField string
	}{
		{name: "complete", mutate: func(*models.PersonalSection) {}, wantValid: true},
		{name: "missing first name", mutate: func(s *models.PersonalSection) { s.FirstName = "" }, wantField: "first_name"},
		{name: "whitespace last name", mutate: func(s *models.PersonalSection) { s.LastName = "   " }, wantField: "last_name"},
		{name: "missing birth date", mutate: func(s *models.PersonalSection) { s.DateOfBirth = nil }, wantField: "date_of_birth"},
		{name: "missing nationality", mutate: func(s *models.PersonalSection) { s.Nationality = "" }, wantField: "nationality"},
		{name: "missing phone", mutate: func(s *models.PersonalSection) { s.Phone = "" }, wantField: "phone"},
		{name: "missing email", mutate: func(s *models.PersonalSection) { s.Email = "" }, wantField: "email"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := completePersonal()
			tc.mutate(&p)
			res := Validate(models.SectionPersonal, models.Snapshot{Personal: p})
			assert.Equal(t, tc.wantValid, res.Valid)
			if !tc.wantValid {
				assert.Contains(t, res.Errors, tc.wantField)
			}
		})
	}
}

func TestValidate_Professional_OtherCategoryNeedsDescription(t *testing.T) {
	snap := models.Snapshot{Professional: models.ProfessionalSection{
		Category:        models.CategoryOther,
		PrimaryPosition: "Estate Manager",
	}}

	res := Validate(models.SectionProfessional, snap)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "category_other")

	snap.Professional.CategoryOther = "private aviation crew"
	res = Validate(models.SectionProfessional, snap)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidate_Professional_RequiredFields(t *testing.T) {
	res := Validate(models.SectionProfessional, models.Snapshot{})
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "category")
	assert.Contains(t, res.Errors, "primary_position")
}

func TestValidate_Certifications_HouseholdNeedsOnlyTravelVisaAnswer(t *testing.T) {
	snap := models.Snapshot{
		Professional: models.ProfessionalSection{Category: models.CategoryHousehold},
	}

	res := Validate(models.SectionCertifications, snap)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "b1b2_visa")
	assert.Len(t, res.Errors, 1, "household must not be asked the yacht questions")

	snap.Certification.B1B2Visa = boolPtr(false) // an explicit no counts as answered
	res = Validate(models.SectionCertifications, snap)
	assert.True(t, res.Valid)
}

func TestValidate_Certifications_YachtNeedsAllFourAnswers(t *testing.T) {
	for _, cat := range []models.Category{models.CategoryYacht, models.CategoryDual} {
		snap := models.Snapshot{
			Professional: models.ProfessionalSection{Category: cat},
			Certification: models.CertificationSection{
				STCW:     boolPtr(true),
				ENG1:     boolPtr(false),
				B1B2Visa: boolPtr(true),
				// schengen unanswered
			},
		}

		res := Validate(models.SectionCertifications, snap)
		assert.False(t, res.Valid, "category %s", cat)
		assert.Contains(t, res.Errors, "schengen_visa")

		snap.Certification.SchengenVisa = boolPtr(false)
		res = Validate(models.SectionCertifications, snap)
		assert.True(t, res.Valid, "category %s", cat)
	}
}

func TestValidate_Circumstances_TwoOfThree(t *testing.T) {
	tests := []struct {
		name      string
		section   models.CircumstanceSection
		wantValid bool
	}{
		{name: "none answered", section: models.CircumstanceSection{}, wantValid: false},
		{name: "one answered", section: models.CircumstanceSection{Smoker: boolPtr(false)}, wantValid: false},
		{
			name:      "two answered",
			section:   models.CircumstanceSection{Smoker: boolPtr(false), MaritalStatus: strPtr("single")},
			wantValid: true,
		},
		{
			name: "all answered",
			section: models.CircumstanceSection{
				Smoker:         boolPtr(true),
				VisibleTattoos: boolPtr(false),
				MaritalStatus:  strPtr("married"),
			},
			wantValid: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Validate(models.SectionCircumstances, models.Snapshot{Circumstance: tc.section})
			assert.Equal(t, tc.wantValid, res.Valid)
		})
	}
}

func TestValidate_UnknownStep(t *testing.T) {
	res := Validate(models.Section("billing"), models.Snapshot{})
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "step")
}
