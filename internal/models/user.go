package models

// Profile - профиль, который отдаёт GET /users/profile.
// Поля аптеки и фармацевта лежат в одной структуре, заполнена только часть.
type Profile struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`

	// Фармацевт
	FirstName                 string  `json:"firstName,omitempty"`
	LastName                  string  `json:"lastName,omitempty"`
	IsPremium                 bool    `json:"isPremium,omitempty"`
	LicenseVerificationStatus string  `json:"licenseVerificationStatus,omitempty"`
	ShiftsCompleted           int     `json:"shiftsCompleted,omitempty"`
	Rating                    float64 `json:"rating,omitempty"`

	// Аптека
	PharmacyName string `json:"pharmacyName,omitempty"`
	Address      string `json:"address,omitempty"`
}

// DisplayName возвращает имя для шапки приложения в зависимости от роли
func (p Profile) DisplayName(role UserRole) string {
	if role == UserRolePharmacy {
		return p.PharmacyName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// IsLicenseVerified - лицензия подтверждена модерацией
func (p Profile) IsLicenseVerified() bool {
	return p.LicenseVerificationStatus == "verified"
}

// DashboardStats - статистика для домашнего экрана аптеки
type DashboardStats struct {
	ActiveJobs        int     `json:"activeJobs"`
	TotalApplications int     `json:"totalApplications"`
	CompletedJobs     int     `json:"completedJobs"`
	AverageRating     float64 `json:"averageRating"`
}
