package helpers

import "pharmaconnect_core/internal/models"

// Демо-учётные записи
const (
	DemoPassword        = "Demo123!"
	DemoPharmacistEmail = "demo.pharmacist@example.com"
	DemoPharmacyEmail   = "demo.pharmacy@example.com"
)

// SeedPharmacy - аптека с подтверждёнными контактами
func (f *FakeAPI) SeedPharmacy() string {
	return f.AddUser(UserSeed{
		Email:           DemoPharmacyEmail,
		Password:        DemoPassword,
		Role:            models.UserRolePharmacy,
		PharmacyName:    "Avenues Pharmacy",
		Phone:           "+263771000001",
		Address:         "12 Baines Ave, Harare",
		ContactVerified: true,
	})
}

// SeedPharmacist - фармацевт с подтверждёнными контактами
func (f *FakeAPI) SeedPharmacist(licenseVerified bool) string {
	return f.AddUser(UserSeed{
		Email:           DemoPharmacistEmail,
		Password:        DemoPassword,
		Role:            models.UserRolePharmacist,
		FirstName:       "Tendai",
		LastName:        "Moyo",
		Phone:           "+263771000002",
		LicenseVerified: licenseVerified,
		ContactVerified: true,
	})
}

// SampleJob - активная дневная смена в Хараре
func SampleJob() models.Job {
	return models.Job{
		Location:     "12 Baines Ave, Harare",
		Rate:         "$25/hr",
		Role:         "Locum Pharmacist",
		Date:         "2026-11-02",
		Time:         "08:00 - 16:00",
		FacilityType: models.FacilityTypeRetail,
		ShiftType:    models.ShiftTypeMorning,
		Description:  "Weekend cover for dispensary",
	}
}
