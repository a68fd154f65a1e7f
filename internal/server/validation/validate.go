// Package validation contains the pure per-step validators that gate forward
// navigation in the wizard. Validators never touch storage; they are also run
// reactively to clear stale field errors once the user corrects a value.
package validation

import (
	"strings"

	"github.com/lighthouse-crew/profilesync/internal/server/models"
)

// Result is a pass/fail verdict plus field-level messages keyed by the JSON
// field name the wizard submitted.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Validate runs the validator for one step against the full snapshot.
// Unknown steps fail with a single "step" error rather than panicking.
func Validate(step models.Section, s models.Snapshot) Result {
	switch step {
	case models.SectionPersonal:
		return validatePersonal(s.Personal)
	case models.SectionProfessional:
		return validateProfessional(s.Professional)
	case models.SectionCertifications:
		return validateCertifications(s.Professional.Category, s.Certification)
	case models.SectionCircumstances:
		return validateCircumstances(s.Circumstance)
	}
	return Result{Valid: false, Errors: map[string]string{"step": "unknown step"}}
}

func result(errs map[string]string) Result {
	if len(errs) == 0 {
		return Result{Valid: true}
	}
	return Result{Valid: false, Errors: errs}
}

func validatePersonal(s models.PersonalSection) Result {
	errs := map[string]string{}
	requireText(errs, "first_name", s.FirstName)
	requireText(errs, "last_name", s.LastName)
	if s.DateOfBirth == nil {
		errs["date_of_birth"] = "required"
	}
	requireText(errs, "nationality", s.Nationality)
	requireText(errs, "phone", s.Phone)
	requireText(errs, "email", s.Email)
	return result(errs)
}

func validateProfessional(s models.ProfessionalSection) Result {
	errs := map[string]string{}
	if s.Category == "" {
		errs["category"] = "required"
	}
	requireText(errs, "primary_position", s.PrimaryPosition)
	if s.Category == models.CategoryOther && strings.TrimSpace(s.CategoryOther) == "" {
		errs["category_other"] = "required when category is other"
	}
	return result(errs)
}

func validateCertifications(category models.Category, s models.CertificationSection) Result {
	errs := map[string]string{}

	if category == models.CategoryHousehold {
		// household-only profiles answer the travel-visa question and nothing else
		if s.B1B2Visa == nil {
			errs["b1b2_visa"] = "answer required"
		}
		return result(errs)
	}

	// yacht/dual need all four answered explicitly; an unanswered question is
	// not the same as "no"
	if s.STCW == nil {
		errs["stcw"] = "answer required"
	}
	if s.ENG1 == nil {
		errs["eng1"] = "answer required"
	}
	if s.B1B2Visa == nil {
		errs["b1b2_visa"] = "answer required"
	}
	if s.SchengenVisa == nil {
		errs["schengen_visa"] = "answer required"
	}
	return result(errs)
}

// validateCircumstances accepts the step once the candidate answered at least
// two of the three questions. None of them is individually mandatory.
func validateCircumstances(s models.CircumstanceSection) Result {
	answered := 0
	if s.Smoker != nil {
		answered++
	}
	if s.VisibleTattoos != nil {
		answered++
	}
	if s.MaritalStatus != nil {
		answered++
	}
	if answered >= 2 {
		return Result{Valid: true}
	}
	return Result{
		Valid:  false,
		Errors: map[string]string{"circumstances": "answer at least two of the three questions"},
	}
}

func requireText(errs map[string]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = "required"
	}
}
