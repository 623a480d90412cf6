package query

import (
	"time"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/pawhaven/pawhaven-server/internal/store"
)

// Every criteria field is optional. Empty sets and nil bounds add nothing.

type AnimalCriteria struct {
	MinAge        *float64              `json:"minAge,omitempty" validate:"omitempty,gte=0"`
	MaxAge        *float64              `json:"maxAge,omitempty" validate:"omitempty,gte=0"`
	MinWeight     *float64              `json:"minWeight,omitempty" validate:"omitempty,gte=0"`
	MaxWeight     *float64              `json:"maxWeight,omitempty" validate:"omitempty,gte=0"`
	Statuses      []domain.AnimalStatus `json:"statuses,omitempty" validate:"omitempty,dive,oneof=available pending adopted fostered"`
	Genders       []domain.Gender       `json:"genders,omitempty" validate:"omitempty,dive,oneof=male female unknown"`
	ShelterIDs    []string              `json:"shelterIds,omitempty"`
	BreedIDs      []string              `json:"breedIds,omitempty"`
	AnimalTypeIDs []string              `json:"animalTypeIds,omitempty"`
}

func (c AnimalCriteria) Filters() []store.Filter {
	var fs filters
	fs.between("age", c.MinAge, c.MaxAge)
	fs.between("weight", c.MinWeight, c.MaxWeight)
	in(&fs, "status", c.Statuses)
	in(&fs, "gender", c.Genders)
	in(&fs, "shelterId", c.ShelterIDs)
	in(&fs, "breedId", c.BreedIDs)
	in(&fs, "animalTypeId", c.AnimalTypeIDs)
	return fs
}

type ShelterCriteria struct {
	VerificationStatuses []domain.VerificationStatus `json:"verificationStatuses,omitempty" validate:"omitempty,dive,oneof=pending verified rejected"`
	UserIDs              []string                    `json:"userIds,omitempty"`
}

func (c ShelterCriteria) Filters() []store.Filter {
	var fs filters
	in(&fs, "verificationStatus", c.VerificationStatuses)
	in(&fs, "userId", c.UserIDs)
	return fs
}

type UserCriteria struct {
	Roles      []domain.Role `json:"roles,omitempty" validate:"omitempty,dive,oneof=admin shelter user"`
	ShelterIDs []string      `json:"shelterIds,omitempty"`
	Verified   *bool         `json:"verified,omitempty"`
}

func (c UserCriteria) Filters() []store.Filter {
	var fs filters
	in(&fs, "role", c.Roles)
	in(&fs, "shelterId", c.ShelterIDs)
	fs.is("isVerified", c.Verified)
	return fs
}

type BreedCriteria struct {
	AnimalTypeIDs []string `json:"animalTypeIds,omitempty"`
}

func (c BreedCriteria) Filters() []store.Filter {
	var fs filters
	in(&fs, "animalTypeId", c.AnimalTypeIDs)
	return fs
}

// AnimalTypeCriteria has no filters; animal types are looked up by id or text.
type AnimalTypeCriteria struct{}

func (AnimalTypeCriteria) Filters() []store.Filter { return nil }

type FileCriteria struct {
	OwnerIDs  []string          `json:"ownerIds,omitempty"`
	FileTypes []domain.FileType `json:"fileTypes,omitempty" validate:"omitempty,dive,oneof=image document other"`
}

func (c FileCriteria) Filters() []store.Filter {
	var fs filters
	in(&fs, "ownerId", c.OwnerIDs)
	in(&fs, "fileType", c.FileTypes)
	return fs
}

type NotificationCriteria struct {
	UserIDs []string                  `json:"userIds,omitempty"`
	Types   []domain.NotificationType `json:"types,omitempty" validate:"omitempty,dive,oneof=application message report system"`
	IsRead  *bool                     `json:"isRead,omitempty"`
}

func (c NotificationCriteria) Filters() []store.Filter {
	var fs filters
	in(&fs, "userId", c.UserIDs)
	in(&fs, "type", c.Types)
	fs.is("isRead", c.IsRead)
	return fs
}

type ApplicationCriteria struct {
	UserIDs       []string                   `json:"userIds,omitempty"`
	AnimalIDs     []string                   `json:"animalIds,omitempty"`
	ShelterIDs    []string                   `json:"shelterIds,omitempty"`
	Statuses      []domain.ApplicationStatus `json:"statuses,omitempty" validate:"omitempty,dive,oneof=pending approved rejected withdrawn"`
	CreatedAfter  *time.Time                 `json:"createdAfter,omitempty"`
	CreatedBefore *time.Time                 `json:"createdBefore,omitempty"`
}

func (c ApplicationCriteria) Filters() []store.Filter {
	var fs filters
	in(&fs, "userId", c.UserIDs)
	in(&fs, "animalId", c.AnimalIDs)
	in(&fs, "shelterId", c.ShelterIDs)
	in(&fs, "status", c.Statuses)
	fs.between("createdAt", c.CreatedAfter, c.CreatedBefore)
	return fs
}

type ConversationCriteria struct {
	UserIDs []string `json:"userIds,omitempty"`
}

func (c ConversationCriteria) Filters() []store.Filter {
	var fs filters
	in(&fs, "userIds", c.UserIDs)
	return fs
}

type MessageCriteria struct {
	ConversationIDs []string   `json:"conversationIds,omitempty"`
	SenderIDs       []string   `json:"senderIds,omitempty"`
	RecipientIDs    []string   `json:"recipientIds,omitempty"`
	IsRead          *bool      `json:"isRead,omitempty"`
	CreatedAfter    *time.Time `json:"createdAfter,omitempty"`
	CreatedBefore   *time.Time `json:"createdBefore,omitempty"`
}

func (c MessageCriteria) Filters() []store.Filter {
	var fs filters
	in(&fs, "conversationId", c.ConversationIDs)
	in(&fs, "senderId", c.SenderIDs)
	in(&fs, "recipientId", c.RecipientIDs)
	fs.is("isRead", c.IsRead)
	fs.between("createdAt", c.CreatedAfter, c.CreatedBefore)
	return fs
}

type ReportCriteria struct {
	ReporterIDs []string              `json:"reporterIds,omitempty"`
	ReportedIDs []string              `json:"reportedIds,omitempty"`
	Types       []domain.ReportType   `json:"types,omitempty" validate:"omitempty,dive,oneof=spam abuse fraud inappropriate"`
	Statuses    []domain.ReportStatus `json:"statuses,omitempty" validate:"omitempty,dive,oneof=open reviewing resolved dismissed"`
}

func (c ReportCriteria) Filters() []store.Filter {
	var fs filters
	in(&fs, "reporterId", c.ReporterIDs)
	in(&fs, "reportedId", c.ReportedIDs)
	in(&fs, "type", c.Types)
	in(&fs, "status", c.Statuses)
	return fs
}

type filters []store.Filter

func in[V ~string](fs *filters, field string, values []V) {
	if len(values) > 0 {
		*fs = append(*fs, store.In(field, values...))
	}
}

func (fs *filters) is(field string, v *bool) {
	if v != nil {
		*fs = append(*fs, store.Eq(field, *v))
	}
}

func (fs *filters) between(field string, lo, hi any) {
	if isNil(lo) && isNil(hi) {
		return
	}
	*fs = append(*fs, store.Range(field, lo, hi))
}

func isNil(v any) bool {
	switch p := v.(type) {
	case nil:
		return true
	case *float64:
		return p == nil
	case *time.Time:
		return p == nil
	}
	return false
}
