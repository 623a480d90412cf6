package domain

// AnimalStatus tracks where an animal is in the adoption process.
type AnimalStatus string

const (
	AnimalStatusAvailable AnimalStatus = "available"
	AnimalStatusPending   AnimalStatus = "pending"
	AnimalStatusAdopted   AnimalStatus = "adopted"
	AnimalStatusFostered  AnimalStatus = "fostered"
)

// Gender of an animal.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Animal is a pet listed for adoption by a shelter.
type Animal struct {
	Base
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Gender       Gender       `json:"gender,omitempty"`
	Age          float64      `json:"age"`    // years
	Weight       float64      `json:"weight"` // kilograms
	HealthStatus string       `json:"healthStatus,omitempty"`
	Status       AnimalStatus `json:"status"`
	ShelterID    string       `json:"shelterId,omitempty"`
	BreedID      string       `json:"breedId,omitempty"`
	AnimalTypeID string       `json:"animalTypeId,omitempty"`
	PhotoIDs     []string     `json:"photoIds,omitempty"`
}
