package censor

import (
	"github.com/pawhaven/pawhaven-server/internal/authz"
	"github.com/pawhaven/pawhaven-server/internal/domain"
)

var all = []string{"*"}

// DefaultPolicies returns the PawHaven field tiers.
func DefaultPolicies() map[domain.EntityType]FieldPolicy {
	return map[domain.EntityType]FieldPolicy{
		domain.TypeAnimal:     {Public: all},
		domain.TypeShelter:    {Public: all},
		domain.TypeBreed:      {Public: all},
		domain.TypeAnimalType: {Public: all},
		domain.TypeUser: {
			Public: []string{
				"id", "name", "role", "shelterId", "shelter", "profilePhotoId", "profilePhoto",
				"isVerified", "createdAt",
			},
			Permitted: map[authz.Permission][]string{
				authz.PermUsersViewContacts: {"email", "phone"},
				authz.PermUsersViewAll:      all,
			},
			Owned: all,
		},
		domain.TypeFile: {
			Permitted: map[authz.Permission][]string{
				authz.PermFilesView:    {"id", "filename", "fileType", "mimeType", "sourceUrl", "createdAt"},
				authz.PermFilesViewAll: all,
			},
			Owned: all,
		},
		domain.TypeNotification: {
			Permitted: map[authz.Permission][]string{authz.PermNotificationsViewAll: all},
			Owned:     all,
		},
		domain.TypeAdoptionApplication: {
			Permitted:  map[authz.Permission][]string{authz.PermApplicationsViewAll: all},
			Affiliated: all,
			Owned:      all,
		},
		domain.TypeConversation: {
			Permitted:  map[authz.Permission][]string{authz.PermConversationsViewAll: all},
			Affiliated: all,
		},
		domain.TypeMessage: {
			Permitted:  map[authz.Permission][]string{authz.PermMessagesViewAll: all},
			Affiliated: all,
		},
		domain.TypeReport: {
			Permitted: map[authz.Permission][]string{authz.PermReportsViewAll: all},
			Affiliated: []string{
				"id", "reportedId", "reported", "type", "reason", "status", "createdAt", "updatedAt",
			},
			Owned: all,
		},
	}
}
