package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	domainerrors "github.com/pawhaven/pawhaven-server/internal/errors"
	"github.com/pawhaven/pawhaven-server/internal/query"
	"github.com/pawhaven/pawhaven-server/internal/validation"
)

func TestValidator_AcceptsLookup(t *testing.T) {
	v := validation.New()

	err := v.Validate(query.Lookup{
		IDs:      []string{"ani-1"},
		Fields:   []string{"name", "shelter.shelterName"},
		PageSize: 10,
		Criteria: query.AnimalCriteria{Statuses: []domain.AnimalStatus{domain.AnimalStatusAvailable}},
	})
	assert.NoError(t, err)
}

func TestValidator_Details(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		lookup    query.Lookup
		wantField string
		wantMsg   string
	}{
		{
			name:      "negative offset",
			lookup:    query.Lookup{Offset: -5},
			wantField: "offset",
			wantMsg:   "must be greater than or equal to 0",
		},
		{
			name:      "empty field path",
			lookup:    query.Lookup{Fields: []string{"name", ""}},
			wantField: "fields[1]",
			wantMsg:   "is required",
		},
		{
			name:      "unknown status inside criteria",
			lookup:    query.Lookup{Criteria: query.AnimalCriteria{Statuses: []domain.AnimalStatus{"sold"}}},
			wantField: "Criteria.statuses[0]",
			wantMsg:   "must be one of: available pending adopted fostered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.lookup)
			require.Error(t, err)

			var de *domainerrors.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, http.StatusBadRequest, de.HTTPStatus())

			details, ok := de.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField], "details: %v", details)
		})
	}
}
