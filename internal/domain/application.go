package domain

// ApplicationStatus is the review state of an adoption application.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// AdoptionApplication is a user's request to adopt an animal from a shelter.
type AdoptionApplication struct {
	Base
	UserID             string            `json:"userId"`
	AnimalID           string            `json:"animalId"`
	ShelterID          string            `json:"shelterId"`
	Status             ApplicationStatus `json:"status"`
	ApplicationDetails string            `json:"applicationDetails,omitempty"`
	AttachedFileIDs    []string          `json:"attachedFileIds,omitempty"`
	RejectReason       string            `json:"rejectReason,omitempty"`
}
