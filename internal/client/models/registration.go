package models

import "strings"

// RegistrationDateLayout is the layout of Registration.Date.
const RegistrationDateLayout = "2006-01-02 15:04"

type RegistrationStatus string

const (
	StatusPending   RegistrationStatus = "pending"
	StatusContacted RegistrationStatus = "contacted"
)

// Registration is a prospective student's sign-up request.
type Registration struct {
	ID       string             `json:"id"`
	Date     string             `json:"date"`
	FullName string             `json:"fullName"`
	Email    string             `json:"email"`
	Phone    string             `json:"phone"`
	Level    string             `json:"level"`
	Status   RegistrationStatus `json:"status"`
}

// NewRegistration is the form submitted by a student or typed by the admin.
type NewRegistration struct {
	FullName string `json:"fullName" validate:"notblank,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone"`
	Level    string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
}

// SamePhone compares two phone numbers after trimming surrounding spaces.
func SamePhone(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// PhoneDigits strips everything but digits, the form messaging links expect.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
