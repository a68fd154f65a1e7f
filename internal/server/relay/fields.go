package relay

import "github.com/lighthouse-crew/profilesync/internal/server/models"

// FieldsFor maps one section of a snapshot onto the partial-field document
// the CRM accepts. Only the fields that were part of the just-confirmed save
// are included — never a full-profile re-read, which could race a concurrent
// partial update.
func FieldsFor(section models.Section, snap models.Snapshot) map[string]any {
	switch section {
	case models.SectionPersonal:
		p := snap.Personal
		return map[string]any{
			"first_name":    p.FirstName,
			"last_name":     p.LastName,
			"date_of_birth": p.DateOfBirth,
			"nationality":   p.Nationality,
			"phone":         p.Phone,
			"email":         p.Email,
			"current_city":  p.City,
			"country":       p.Country,
		}
	case models.SectionProfessional:
		p := snap.Professional
		return map[string]any{
			"candidate_category": string(p.Category),
			"category_other":     p.CategoryOther,
			"current_job_title":  p.PrimaryPosition,
			"secondary_job":      p.SecondaryPosition,
			"licenses":           p.Licenses,
			"note":               p.Notes,
		}
	case models.SectionCertifications:
		c := snap.Certification
		fields := map[string]any{
			"stcw":            c.STCW,
			"stcw_expiry":     c.STCWExpiry,
			"eng1":            c.ENG1,
			"eng1_expiry":     c.ENG1Expiry,
			"b1b2_visa":       c.B1B2Visa,
			"b1b2_expiry":     c.B1B2Expiry,
			"schengen_visa":   c.SchengenVisa,
			"schengen_expiry": c.SchengenExpiry,
		}
		if len(c.Checklist) > 0 {
			fields["certifications"] = c.Checklist
		}
		return fields
	case models.SectionCircumstances:
		c := snap.Circumstance
		return map[string]any{
			"smoker":          c.Smoker,
			"visible_tattoos": c.VisibleTattoos,
			"marital_status":  c.MaritalStatus,
		}
	}
	return nil
}
