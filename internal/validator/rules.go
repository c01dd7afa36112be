package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"pharmaconnect_core/internal/models"
)

// registerCustomRules регистрирует кастомные правила на основе models/statuses.go
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Ошибка времени запуска, дальше работать нельзя
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-facility-type", validateFacilityType)
	mustRegister("is-shift-type", validateShiftType)
	mustRegister("is-document-key", validateDocumentKey)
	mustRegister("is-verification-method", validateVerificationMethod)
}

// --- Функции валидации ---
// Пустые значения пропускаем, для этого есть 'required'.

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.UserRole(value).IsValid()
}

func validateFacilityType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.FacilityType(value).IsValid()
}

func validateShiftType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.ShiftType(value).IsValid()
}

func validateDocumentKey(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.DocumentKey(value).IsValid()
}

func validateVerificationMethod(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.VerificationMethod(value).IsValid()
}
