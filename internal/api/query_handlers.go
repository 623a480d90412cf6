package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pawhaven/pawhaven-server/internal/authz"
	"github.com/pawhaven/pawhaven-server/internal/query"
)

// LookupBody is the request body of every query endpoint. Criteria holds
// the entity-specific filters.
type LookupBody[C query.Criteria] struct {
	IDs            []string `json:"ids,omitempty" doc:"Return only these entities; unknown ids yield 404 when none match"`
	Query          string   `json:"query,omitempty" doc:"Free-text search"`
	Fields         []string `json:"fields,omitempty" doc:"Dot paths to return, e.g. name or shelter.user.name; * selects every native field"`
	Offset         int      `json:"offset,omitempty" doc:"Results to skip"`
	PageSize       int      `json:"pageSize,omitempty" doc:"Results per page; capped by the server"`
	SortBy         []string `json:"sortBy,omitempty" doc:"Native fields to sort by"`
	SortDescending bool     `json:"sortDescending,omitempty" doc:"Sort in descending order"`
	Criteria       *C       `json:"criteria,omitempty" doc:"Entity-specific filters"`
}

// QueryInput is the huma input of a query endpoint.
type QueryInput[C query.Criteria] struct {
	Body LookupBody[C]
}

// QueryResponse carries the matching entities, each holding only the
// fields the caller asked for and may see.
type QueryResponse[D any] struct {
	Items []*D `json:"items" doc:"Matching entities"`
}

// QueryOutput is the huma output of a query endpoint.
type QueryOutput[D any] struct {
	Body QueryResponse[D]
}

func (s *Server) registerQueryRoutes() {
	q := s.services.Query
	registerQuery[query.AnimalCriteria](s, "animals", "Animals", q.Animals)
	registerQuery[query.ShelterCriteria](s, "shelters", "Shelters", q.Shelters)
	registerQuery[query.UserCriteria](s, "users", "Users", q.Users)
	registerQuery[query.BreedCriteria](s, "breeds", "Breeds", q.Breeds)
	registerQuery[query.AnimalTypeCriteria](s, "animal-types", "AnimalTypes", q.AnimalTypes)
	registerQuery[query.FileCriteria](s, "files", "Files", q.Files)
	registerQuery[query.NotificationCriteria](s, "notifications", "Notifications", q.Notifications)
	registerQuery[query.ApplicationCriteria](s, "adoption-applications", "AdoptionApplications", q.AdoptionApplications)
	registerQuery[query.ConversationCriteria](s, "conversations", "Conversations", q.Conversations)
	registerQuery[query.MessageCriteria](s, "messages", "Messages", q.Messages)
	registerQuery[query.ReportCriteria](s, "reports", "Reports", q.Reports)
}

func registerQuery[C query.Criteria, D any](s *Server, path, name string, run func(context.Context, authz.Principal, query.Lookup) ([]*D, error)) {
	huma.Register(s.api, huma.Operation{
		OperationID: "query" + name,
		Method:      http.MethodPost,
		Path:        "/api/v1/" + path + "/query",
		Summary:     "Query " + path,
		Description: "Returns the requested fields of matching " + path + ". Fields the caller may not see are omitted.",
		Tags:        []string{name},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, in *QueryInput[C]) (*QueryOutput[D], error) {
		items, err := run(ctx, principalFromContext(ctx), in.Body.lookup())
		if err != nil {
			return nil, toAPIError(err)
		}
		return &QueryOutput[D]{Body: QueryResponse[D]{Items: items}}, nil
	})
}

func (b *LookupBody[C]) lookup() query.Lookup {
	l := query.Lookup{
		IDs:            b.IDs,
		Query:          b.Query,
		Fields:         b.Fields,
		Offset:         b.Offset,
		PageSize:       b.PageSize,
		SortBy:         b.SortBy,
		SortDescending: b.SortDescending,
	}
	if b.Criteria != nil {
		l.Criteria = *b.Criteria
	}
	return l
}
