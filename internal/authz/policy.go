package authz

import "github.com/pawhaven/pawhaven-server/internal/domain"

// Permission names a blanket capability granted to roles.
type Permission string

const (
	PermUsersViewContacts    Permission = "users.view.contacts"
	PermUsersViewAll         Permission = "users.view.all"
	PermFilesView            Permission = "files.view"
	PermFilesViewAll         Permission = "files.view.all"
	PermNotificationsViewAll Permission = "notifications.view.all"
	PermApplicationsViewAll  Permission = "applications.view.all"
	PermConversationsViewAll Permission = "conversations.view.all"
	PermMessagesViewAll      Permission = "messages.view.all"
	PermReportsViewAll       Permission = "reports.view.all"
	PermSheltersViewAll      Permission = "shelters.view.all"
)

// Claim selects which principal attribute an affiliation compares against.
type Claim uint8

const (
	ClaimUserID Claim = iota
	ClaimShelterID
)

func (c Claim) value(p Principal) string {
	if c == ClaimShelterID {
		return p.ShelterID
	}
	return p.UserID
}

// Affiliation ties a caller to a resource when any of Fields equals (or,
// for lists, contains) the caller's claim. Roles, when set, restricts the
// rule to callers holding one of them.
type Affiliation struct {
	Fields []string
	Claim  Claim
	Roles  []domain.Role
}

// Policy is the static authorization table. It is built once at startup and
// only read afterwards.
type Policy struct {
	Grants       map[Permission][]domain.Role
	Owners       map[domain.EntityType][]string
	Affiliations map[domain.EntityType][]Affiliation
}

// DefaultPolicy returns the PawHaven authorization table.
func DefaultPolicy() Policy {
	admin := []domain.Role{domain.RoleAdmin}
	return Policy{
		Grants: map[Permission][]domain.Role{
			PermUsersViewContacts:    {domain.RoleAdmin, domain.RoleShelter},
			PermUsersViewAll:         admin,
			PermFilesView:            {domain.RoleAdmin, domain.RoleShelter, domain.RoleUser},
			PermFilesViewAll:         admin,
			PermNotificationsViewAll: admin,
			PermApplicationsViewAll:  admin,
			PermConversationsViewAll: admin,
			PermMessagesViewAll:      admin,
			PermReportsViewAll:       admin,
			PermSheltersViewAll:      admin,
		},
		Owners: map[domain.EntityType][]string{
			domain.TypeUser:                {"id"},
			domain.TypeShelter:             {"userId"},
			domain.TypeFile:                {"ownerId"},
			domain.TypeNotification:        {"userId"},
			domain.TypeAdoptionApplication: {"userId"},
			domain.TypeReport:              {"reporterId"},
		},
		Affiliations: map[domain.EntityType][]Affiliation{
			domain.TypeMessage:      {{Fields: []string{"senderId", "recipientId"}}},
			domain.TypeConversation: {{Fields: []string{"userIds"}}},
			domain.TypeReport:       {{Fields: []string{"reporterId", "reportedId"}}},
			domain.TypeAdoptionApplication: {{
				Fields: []string{"shelterId"},
				Claim:  ClaimShelterID,
				Roles:  []domain.Role{domain.RoleShelter},
			}},
		},
	}
}
