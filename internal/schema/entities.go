package schema

import "github.com/pawhaven/pawhaven-server/internal/domain"

// Default returns the registry for the PawHaven entity model. Native field
// names are the JSON names of the domain structs.
func Default() *Registry {
	r, err := NewRegistry(
		&Entity{
			Type: domain.TypeAnimal,
			Native: []string{
				"id", "name", "description", "gender", "age", "weight", "healthStatus", "status",
				"shelterId", "breedId", "animalTypeId", "photoIds", "createdAt", "updatedAt",
			},
			Relations: relations(
				Relation{Name: "shelter", Target: domain.TypeShelter, ForeignKey: "shelterId"},
				Relation{Name: "breed", Target: domain.TypeBreed, ForeignKey: "breedId"},
				Relation{Name: "animalType", Target: domain.TypeAnimalType, ForeignKey: "animalTypeId"},
				Relation{Name: "photos", Target: domain.TypeFile, ForeignKey: "photoIds", Many: true},
			),
			Defaults: []string{"id", "name", "gender", "age", "status", "shelterId"},
			Text:     []string{"name", "description", "healthStatus"},
		},
		&Entity{
			Type: domain.TypeShelter,
			Native: []string{
				"id", "shelterName", "description", "website", "location", "userId",
				"verificationStatus", "createdAt", "updatedAt",
			},
			Relations: relations(
				Relation{Name: "user", Target: domain.TypeUser, ForeignKey: "userId"},
				Relation{Name: "animals", Target: domain.TypeAnimal, ForeignKey: "shelterId", Many: true, Reverse: true},
			),
			Defaults: []string{"id", "shelterName", "location", "verificationStatus"},
			Text:     []string{"shelterName", "description", "location"},
		},
		&Entity{
			Type: domain.TypeUser,
			Native: []string{
				"id", "name", "email", "phone", "location", "role", "shelterId", "profilePhotoId",
				"isVerified", "createdAt", "updatedAt",
			},
			Relations: relations(
				Relation{Name: "shelter", Target: domain.TypeShelter, ForeignKey: "shelterId"},
				Relation{Name: "profilePhoto", Target: domain.TypeFile, ForeignKey: "profilePhotoId"},
			),
			Defaults: []string{"id", "name", "role"},
			Text:     []string{"name", "email", "location"},
		},
		&Entity{
			Type:     domain.TypeBreed,
			Native:   []string{"id", "name", "description", "animalTypeId", "createdAt", "updatedAt"},
			Relations: relations(
				Relation{Name: "animalType", Target: domain.TypeAnimalType, ForeignKey: "animalTypeId"},
			),
			Defaults: []string{"id", "name"},
			Text:     []string{"name", "description"},
		},
		&Entity{
			Type:      domain.TypeAnimalType,
			Native:    []string{"id", "name", "description", "createdAt", "updatedAt"},
			Relations: relations(),
			Defaults:  []string{"id", "name"},
			Text:      []string{"name", "description"},
		},
		&Entity{
			Type:   domain.TypeFile,
			Native: []string{"id", "filename", "fileType", "mimeType", "size", "sourceUrl", "ownerId", "createdAt", "updatedAt"},
			Relations: relations(
				Relation{Name: "owner", Target: domain.TypeUser, ForeignKey: "ownerId"},
			),
			Defaults: []string{"id", "fileType", "sourceUrl"},
			Text:     []string{"filename"},
		},
		&Entity{
			Type:   domain.TypeNotification,
			Native: []string{"id", "userId", "type", "title", "content", "isRead", "createdAt", "updatedAt"},
			Relations: relations(
				Relation{Name: "user", Target: domain.TypeUser, ForeignKey: "userId"},
			),
			Defaults: []string{"id", "type", "title", "isRead", "createdAt"},
			Text:     []string{"title", "content"},
		},
		&Entity{
			Type: domain.TypeAdoptionApplication,
			Native: []string{
				"id", "userId", "animalId", "shelterId", "status", "applicationDetails",
				"attachedFileIds", "rejectReason", "createdAt", "updatedAt",
			},
			Relations: relations(
				Relation{Name: "user", Target: domain.TypeUser, ForeignKey: "userId"},
				Relation{Name: "animal", Target: domain.TypeAnimal, ForeignKey: "animalId"},
				Relation{Name: "shelter", Target: domain.TypeShelter, ForeignKey: "shelterId"},
				Relation{Name: "attachedFiles", Target: domain.TypeFile, ForeignKey: "attachedFileIds", Many: true},
			),
			Defaults: []string{"id", "status", "animalId", "createdAt"},
			Text:     []string{"applicationDetails"},
		},
		&Entity{
			Type:   domain.TypeConversation,
			Native: []string{"id", "userIds", "lastMessageId", "createdAt", "updatedAt"},
			Relations: relations(
				Relation{Name: "users", Target: domain.TypeUser, ForeignKey: "userIds", Many: true},
				Relation{Name: "lastMessage", Target: domain.TypeMessage, ForeignKey: "lastMessageId"},
			),
			Defaults: []string{"id", "userIds", "updatedAt"},
		},
		&Entity{
			Type:   domain.TypeMessage,
			Native: []string{"id", "conversationId", "senderId", "recipientId", "content", "isRead", "createdAt", "updatedAt"},
			Relations: relations(
				Relation{Name: "conversation", Target: domain.TypeConversation, ForeignKey: "conversationId"},
				Relation{Name: "sender", Target: domain.TypeUser, ForeignKey: "senderId"},
				Relation{Name: "recipient", Target: domain.TypeUser, ForeignKey: "recipientId"},
			),
			Defaults: []string{"id", "senderId", "recipientId", "content", "createdAt"},
			Text:     []string{"content"},
		},
		&Entity{
			Type:   domain.TypeReport,
			Native: []string{"id", "reporterId", "reportedId", "type", "reason", "status", "createdAt", "updatedAt"},
			Relations: relations(
				Relation{Name: "reporter", Target: domain.TypeUser, ForeignKey: "reporterId"},
				Relation{Name: "reported", Target: domain.TypeUser, ForeignKey: "reportedId"},
			),
			Defaults: []string{"id", "type", "status", "createdAt"},
			Text:     []string{"reason"},
		},
	)
	if err != nil {
		panic(err)
	}
	return r
}

func relations(rels ...Relation) map[string]Relation {
	m := make(map[string]Relation, len(rels))
	for _, r := range rels {
		m[r.Name] = r
	}
	return m
}
