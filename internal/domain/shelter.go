package domain

// VerificationStatus records whether staff have verified a shelter.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Shelter is an organization that lists animals. UserID is the account that
// manages it.
type Shelter struct {
	Base
	ShelterName        string             `json:"shelterName"`
	Description        string             `json:"description,omitempty"`
	Website            string             `json:"website,omitempty"`
	Location           string             `json:"location,omitempty"`
	UserID             string             `json:"userId,omitempty"`
	VerificationStatus VerificationStatus `json:"verificationStatus,omitempty"`
}
