package models

import "reflect"

// Section identifies one editable step of the wizard.
type Section string

const (
	SectionPersonal       Section = "personal"
	SectionProfessional   Section = "professional"
	SectionCertifications Section = "certifications"
	SectionCircumstances  Section = "circumstances"
)

// Sections lists every editable section in wizard order.
func Sections() []Section {
	return []Section{SectionPersonal, SectionProfessional, SectionCertifications, SectionCircumstances}
}

// Snapshot is the ephemeral serialization of every tracked field across all
// sections. It exists only for change detection and is never persisted as a
// record of its own.
type Snapshot struct {
	Personal      PersonalSection      `json:"personal"`
	Professional  ProfessionalSection  `json:"professional"`
	Certification CertificationSection `json:"certifications"`
	Circumstance  CircumstanceSection  `json:"circumstances"`
}

// SnapshotOf builds the baseline snapshot from a freshly loaded profile.
func SnapshotOf(p *Profile) Snapshot {
	return Snapshot{
		Personal:      p.Personal,
		Professional:  p.Professional,
		Certification: p.Certification,
		Circumstance:  p.Circumstance,
	}
}

// Equal reports deep equality of two snapshots.
func (s Snapshot) Equal(other Snapshot) bool {
	return reflect.DeepEqual(s, other)
}

// SectionEqual reports deep equality of one section across two snapshots.
func (s Snapshot) SectionEqual(other Snapshot, sec Section) bool {
	return reflect.DeepEqual(s.section(sec), other.section(sec))
}

// CopySection copies one section's fields from another snapshot into s.
// The coordinator uses it to advance the last-flushed snapshot per section.
func (s *Snapshot) CopySection(from Snapshot, sec Section) {
	switch sec {
	case SectionPersonal:
		s.Personal = from.Personal
	case SectionProfessional:
		s.Professional = from.Professional
	case SectionCertifications:
		s.Certification = from.Certification
	case SectionCircumstances:
		s.Circumstance = from.Circumstance
	}
}

func (s Snapshot) section(sec Section) any {
	switch sec {
	case SectionPersonal:
		return s.Personal
	case SectionProfessional:
		return s.Professional
	case SectionCertifications:
		return s.Certification
	case SectionCircumstances:
		return s.Circumstance
	}
	return nil
}
