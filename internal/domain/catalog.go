package domain

// AnimalType is a species-level category such as dog or cat.
type AnimalType struct {
	Base
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Breed belongs to exactly one AnimalType.
type Breed struct {
	Base
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	AnimalTypeID string `json:"animalTypeId,omitempty"`
}
