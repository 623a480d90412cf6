package domain

import "slices"

// Role represents a caller's role in the system.
type Role string

const (
	// RoleAdmin grants platform-wide moderation access.
	RoleAdmin Role = "admin"
	// RoleShelter is held by accounts that manage a shelter.
	RoleShelter Role = "shelter"
	// RoleUser is held by prospective adopters.
	RoleUser Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return slices.Contains([]Role{RoleAdmin, RoleShelter, RoleUser}, r)
}

// User is a platform account.
type User struct {
	Base
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Location       string `json:"location,omitempty"`
	Role           Role   `json:"role"`
	ShelterID      string `json:"shelterId,omitempty"`
	ProfilePhotoID string `json:"profilePhotoId,omitempty"`
	IsVerified     bool   `json:"isVerified"`
}
