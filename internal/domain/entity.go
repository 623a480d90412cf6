// Package domain defines the PawHaven entity model: animals, shelters, the
// people who adopt them, and the messages and documents that pass between them.
package domain

import "time"

// EntityType names a persisted entity kind. It keys the schema registry,
// authorization policy tables, and the authorization fragment cache.
type EntityType string

const (
	TypeAnimal              EntityType = "animal"
	TypeShelter             EntityType = "shelter"
	TypeUser                EntityType = "user"
	TypeBreed               EntityType = "breed"
	TypeAnimalType          EntityType = "animalType"
	TypeFile                EntityType = "file"
	TypeNotification        EntityType = "notification"
	TypeAdoptionApplication EntityType = "adoptionApplication"
	TypeConversation        EntityType = "conversation"
	TypeMessage             EntityType = "message"
	TypeReport              EntityType = "report"
)

// EntityTypes lists every entity type in a stable order.
func EntityTypes() []EntityType {
	return []EntityType{
		TypeAnimal, TypeShelter, TypeUser, TypeBreed, TypeAnimalType, TypeFile,
		TypeNotification, TypeAdoptionApplication, TypeConversation, TypeMessage, TypeReport,
	}
}

// Collection returns the store collection holding entities of this type.
func (t EntityType) Collection() string {
	switch t {
	case TypeAnimalType:
		return "animal_types"
	case TypeAdoptionApplication:
		return "adoption_applications"
	default:
		return string(t) + "s"
	}
}

// IDPrefix returns the prefix used for generated identifiers.
func (t EntityType) IDPrefix() string {
	switch t {
	case TypeAnimal:
		return "ani"
	case TypeShelter:
		return "shl"
	case TypeUser:
		return "usr"
	case TypeBreed:
		return "brd"
	case TypeAnimalType:
		return "typ"
	case TypeFile:
		return "fil"
	case TypeNotification:
		return "ntf"
	case TypeAdoptionApplication:
		return "app"
	case TypeConversation:
		return "cnv"
	case TypeMessage:
		return "msg"
	case TypeReport:
		return "rpt"
	default:
		return "ent"
	}
}

// Base carries the identity and timestamps shared by all entities.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// EntityID returns the entity's identifier.
func (b *Base) EntityID() string {
	return b.ID
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (b *Base) InitTimestamps() {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
}

// Identifiable is implemented by pointers to every entity type.
type Identifiable interface {
	EntityID() string
}
