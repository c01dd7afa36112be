package dto

// UpdateProfileRequest - nil поля не меняются
type UpdateProfileRequest struct {
	FirstName    *string `json:"firstName,omitempty"`
	LastName     *string `json:"lastName,omitempty"`
	PharmacyName *string `json:"pharmacyName,omitempty"`
	Phone        *string `json:"phone,omitempty"`
}

type UpdateContactRequest struct {
	Phone string `json:"phone,omitempty" validate:"required_without=Email"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type UpdateAddressRequest struct {
	Address string `json:"address" validate:"required,min=5,max=300"`
}
