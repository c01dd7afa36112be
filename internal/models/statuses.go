package models

type UserRole string
type JobStatus string
type FacilityType string
type ShiftType string
type DocumentKey string
type DocumentStatus string
type VerificationMethod string

const (
	UserRolePharmacist UserRole = "pharmacist"
	UserRolePharmacy   UserRole = "pharmacy"

	JobStatusActive    JobStatus = "active"
	JobStatusConfirmed JobStatus = "confirmed"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
	JobStatusPending   JobStatus = "pending"
	JobStatusClosed    JobStatus = "closed"

	FacilityTypeRetail   FacilityType = "Retail"
	FacilityTypeHospital FacilityType = "Hospital"
	FacilityTypeClinic   FacilityType = "Clinic"

	ShiftTypeMorning   ShiftType = "Morning"
	ShiftTypeAfternoon ShiftType = "Afternoon"
	ShiftTypeEvening   ShiftType = "Evening"
	ShiftTypeNight     ShiftType = "Night"

	DocumentKeyPSZ          DocumentKey = "psz"
	DocumentKeyHPA          DocumentKey = "hpa"
	DocumentKeyCV           DocumentKey = "cv"
	DocumentKeyPharmacyHPA  DocumentKey = "pharmacyHpa"
	DocumentKeyPharmacyMCAZ DocumentKey = "pharmacyMcaz"

	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"

	VerificationMethodEmail VerificationMethod = "email"
	VerificationMethodPhone VerificationMethod = "phone"
)

// IsValid проверяет, что роль входит в закрытый список
func (r UserRole) IsValid() bool {
	return r == UserRolePharmacist || r == UserRolePharmacy
}

func (f FacilityType) IsValid() bool {
	switch f {
	case FacilityTypeRetail, FacilityTypeHospital, FacilityTypeClinic:
		return true
	}
	return false
}

func (s ShiftType) IsValid() bool {
	switch s {
	case ShiftTypeMorning, ShiftTypeAfternoon, ShiftTypeEvening, ShiftTypeNight:
		return true
	}
	return false
}

func (k DocumentKey) IsValid() bool {
	switch k {
	case DocumentKeyPSZ, DocumentKeyHPA, DocumentKeyCV, DocumentKeyPharmacyHPA, DocumentKeyPharmacyMCAZ:
		return true
	}
	return false
}

func (m VerificationMethod) IsValid() bool {
	return m == VerificationMethodEmail || m == VerificationMethodPhone
}

// IsTerminal - из терминального статуса переходов нет
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusCancelled, JobStatusClosed:
		return true
	}
	return false
}

// CanTransitionTo описывает машину статусов смены.
// Движение только вперёд: active -> confirmed -> completed.
// Отмена - боковой переход из любого нетерминального статуса.
// pending и пустой статус ведут себя как active.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == JobStatusCancelled {
		return true
	}

	switch s {
	case JobStatusActive, JobStatusPending, "":
		return next == JobStatusConfirmed || next == JobStatusClosed
	case JobStatusConfirmed:
		return next == JobStatusCompleted
	default:
		return false
	}
}
