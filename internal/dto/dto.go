// Package dto provides the response graph returned by entity queries.
//
// Every field is optional: a field the caller did not request, or may not
// see, is left nil and omitted from JSON entirely rather than sent as null.
// Lists use omitzero so a requested but empty list still appears as [].
// Relation fields nest the related entity's DTO.
package dto

import (
	"time"

	"github.com/pawhaven/pawhaven-server/internal/domain"
)

// Animal is the client-facing representation of an animal.
type Animal struct {
	ID           *string              `json:"id,omitempty"`
	Name         *string              `json:"name,omitempty"`
	Description  *string              `json:"description,omitempty"`
	Gender       *domain.Gender       `json:"gender,omitempty"`
	Age          *float64             `json:"age,omitempty"`
	Weight       *float64             `json:"weight,omitempty"`
	HealthStatus *string              `json:"healthStatus,omitempty"`
	Status       *domain.AnimalStatus `json:"status,omitempty"`
	ShelterID    *string              `json:"shelterId,omitempty"`
	BreedID      *string              `json:"breedId,omitempty"`
	AnimalTypeID *string              `json:"animalTypeId,omitempty"`
	PhotoIDs     []string             `json:"photoIds,omitzero"`
	CreatedAt    *time.Time           `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time           `json:"updatedAt,omitempty"`

	Shelter    *Shelter    `json:"shelter,omitempty"`
	Breed      *Breed      `json:"breed,omitempty"`
	AnimalType *AnimalType `json:"animalType,omitempty"`
	Photos     []*File     `json:"photos,omitzero"`
}

// Shelter is the client-facing representation of a shelter.
type Shelter struct {
	ID                 *string                    `json:"id,omitempty"`
	ShelterName        *string                    `json:"shelterName,omitempty"`
	Description        *string                    `json:"description,omitempty"`
	Website            *string                    `json:"website,omitempty"`
	Location           *string                    `json:"location,omitempty"`
	UserID             *string                    `json:"userId,omitempty"`
	VerificationStatus *domain.VerificationStatus `json:"verificationStatus,omitempty"`
	CreatedAt          *time.Time                 `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time                 `json:"updatedAt,omitempty"`

	User    *User     `json:"user,omitempty"`
	Animals []*Animal `json:"animals,omitzero"`
}

// User is the client-facing representation of an account.
type User struct {
	ID             *string      `json:"id,omitempty"`
	Name           *string      `json:"name,omitempty"`
	Email          *string      `json:"email,omitempty"`
	Phone          *string      `json:"phone,omitempty"`
	Location       *string      `json:"location,omitempty"`
	Role           *domain.Role `json:"role,omitempty"`
	ShelterID      *string      `json:"shelterId,omitempty"`
	ProfilePhotoID *string      `json:"profilePhotoId,omitempty"`
	IsVerified     *bool        `json:"isVerified,omitempty"`
	CreatedAt      *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time   `json:"updatedAt,omitempty"`

	Shelter      *Shelter `json:"shelter,omitempty"`
	ProfilePhoto *File    `json:"profilePhoto,omitempty"`
}

// Breed is the client-facing representation of a breed.
type Breed struct {
	ID           *string    `json:"id,omitempty"`
	Name         *string    `json:"name,omitempty"`
	Description  *string    `json:"description,omitempty"`
	AnimalTypeID *string    `json:"animalTypeId,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`

	AnimalType *AnimalType `json:"animalType,omitempty"`
}

// AnimalType is the client-facing representation of an animal type.
type AnimalType struct {
	ID          *string    `json:"id,omitempty"`
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// File is the client-facing representation of uploaded media.
type File struct {
	ID        *string          `json:"id,omitempty"`
	Filename  *string          `json:"filename,omitempty"`
	FileType  *domain.FileType `json:"fileType,omitempty"`
	MimeType  *string          `json:"mimeType,omitempty"`
	Size      *int64           `json:"size,omitempty"`
	SourceURL *string          `json:"sourceUrl,omitempty"`
	OwnerID   *string          `json:"ownerId,omitempty"`
	CreatedAt *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt *time.Time       `json:"updatedAt,omitempty"`

	Owner *User `json:"owner,omitempty"`
}

// Notification is the client-facing representation of a notification.
type Notification struct {
	ID        *string                  `json:"id,omitempty"`
	UserID    *string                  `json:"userId,omitempty"`
	Type      *domain.NotificationType `json:"type,omitempty"`
	Title     *string                  `json:"title,omitempty"`
	Content   *string                  `json:"content,omitempty"`
	IsRead    *bool                    `json:"isRead,omitempty"`
	CreatedAt *time.Time               `json:"createdAt,omitempty"`
	UpdatedAt *time.Time               `json:"updatedAt,omitempty"`

	User *User `json:"user,omitempty"`
}

// AdoptionApplication is the client-facing representation of an application.
type AdoptionApplication struct {
	ID                 *string                   `json:"id,omitempty"`
	UserID             *string                   `json:"userId,omitempty"`
	AnimalID           *string                   `json:"animalId,omitempty"`
	ShelterID          *string                   `json:"shelterId,omitempty"`
	Status             *domain.ApplicationStatus `json:"status,omitempty"`
	ApplicationDetails *string                   `json:"applicationDetails,omitempty"`
	AttachedFileIDs    []string                  `json:"attachedFileIds,omitzero"`
	RejectReason       *string                   `json:"rejectReason,omitempty"`
	CreatedAt          *time.Time                `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time                `json:"updatedAt,omitempty"`

	User          *User    `json:"user,omitempty"`
	Animal        *Animal  `json:"animal,omitempty"`
	Shelter       *Shelter `json:"shelter,omitempty"`
	AttachedFiles []*File  `json:"attachedFiles,omitzero"`
}

// Conversation is the client-facing representation of a conversation.
type Conversation struct {
	ID            *string    `json:"id,omitempty"`
	UserIDs       []string   `json:"userIds,omitzero"`
	LastMessageID *string    `json:"lastMessageId,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`

	Users       []*User  `json:"users,omitzero"`
	LastMessage *Message `json:"lastMessage,omitempty"`
}

// Message is the client-facing representation of a message.
type Message struct {
	ID             *string    `json:"id,omitempty"`
	ConversationID *string    `json:"conversationId,omitempty"`
	SenderID       *string    `json:"senderId,omitempty"`
	RecipientID    *string    `json:"recipientId,omitempty"`
	Content        *string    `json:"content,omitempty"`
	IsRead         *bool      `json:"isRead,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`

	Conversation *Conversation `json:"conversation,omitempty"`
	Sender       *User         `json:"sender,omitempty"`
	Recipient    *User         `json:"recipient,omitempty"`
}

// Report is the client-facing representation of a moderation report.
type Report struct {
	ID         *string              `json:"id,omitempty"`
	ReporterID *string              `json:"reporterId,omitempty"`
	ReportedID *string              `json:"reportedId,omitempty"`
	Type       *domain.ReportType   `json:"type,omitempty"`
	Reason     *string              `json:"reason,omitempty"`
	Status     *domain.ReportStatus `json:"status,omitempty"`
	CreatedAt  *time.Time           `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time           `json:"updatedAt,omitempty"`

	Reporter *User `json:"reporter,omitempty"`
	Reported *User `json:"reported,omitempty"`
}
