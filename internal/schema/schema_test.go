package schema

import (
	"testing"

	"github.com/pawhaven/pawhaven-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_CoversEveryEntityType(t *testing.T) {
	r := Default()
	for _, et := range domain.EntityTypes() {
		e, err := r.Entity(et)
		require.NoError(t, err, et)
		assert.True(t, e.HasNative("id"), et)
	}
}

func TestNewRegistry_RejectsDanglingRelation(t *testing.T) {
	_, err := NewRegistry(&Entity{
		Type:      domain.TypeAnimal,
		Native:    []string{"id", "shelterId"},
		Relations: relations(Relation{Name: "shelter", Target: domain.TypeShelter, ForeignKey: "shelterId"}),
	})
	assert.Error(t, err)
}

func TestNewRegistry_RejectsUnknownForeignKey(t *testing.T) {
	_, err := NewRegistry(
		&Entity{
			Type:      domain.TypeAnimal,
			Native:    []string{"id"},
			Relations: relations(Relation{Name: "shelter", Target: domain.TypeShelter, ForeignKey: "shelterId"}),
		},
		&Entity{Type: domain.TypeShelter, Native: []string{"id"}},
	)
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	r := Default()

	tests := []struct {
		name        string
		entity      domain.EntityType
		fields      []string
		wantNative  []string
		wantForeign map[string][]string
	}{
		{
			name:        "native only",
			entity:      domain.TypeAnimal,
			fields:      []string{"name", "age"},
			wantNative:  []string{"name", "age"},
			wantForeign: map[string][]string{},
		},
		{
			name:       "nested relation paths",
			entity:     domain.TypeAnimal,
			fields:     []string{"id", "shelter.shelterName", "shelter.user.name", "breed.name"},
			wantNative: []string{"id"},
			wantForeign: map[string][]string{
				"shelter": {"shelterName", "user.name"},
				"breed":   {"name"},
			},
		},
		{
			name:        "bare relation requests target defaults",
			entity:      domain.TypeMessage,
			fields:      []string{"sender"},
			wantForeign: map[string][]string{"sender": {"id", "name", "role"}},
		},
		{
			name:        "unknown segments ignored",
			entity:      domain.TypeUser,
			fields:      []string{"name", "favouriteColour", "shelter", "nope.id", "shelter.nope"},
			wantNative:  []string{"name"},
			wantForeign: map[string][]string{"shelter": {"id", "shelterName", "location", "verificationStatus", "nope"}},
		},
		{
			name:        "wildcard expands native fields only",
			entity:      domain.TypeBreed,
			fields:      []string{"*"},
			wantNative:  []string{"id", "name", "description", "animalTypeId", "createdAt", "updatedAt"},
			wantForeign: map[string][]string{},
		},
		{
			name:        "relation wildcard is passed down",
			entity:      domain.TypeBreed,
			fields:      []string{"animalType.*"},
			wantForeign: map[string][]string{"animalType": {"*"}},
		},
		{
			name:        "duplicates collapse",
			entity:      domain.TypeReport,
			fields:      []string{"id", "id", "reporter.name", "reporter.name"},
			wantNative:  []string{"id"},
			wantForeign: map[string][]string{"reporter": {"name"}},
		},
		{
			name:        "dotted native path is not a relation",
			entity:      domain.TypeAnimal,
			fields:      []string{"name.first"},
			wantForeign: map[string][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Split(tt.entity, tt.fields)
			assert.Equal(t, tt.wantNative, got.Native)
			assert.Equal(t, tt.wantForeign, got.Foreign)
		})
	}
}

func TestSplit_Deterministic(t *testing.T) {
	r := Default()
	fields := []string{"content", "sender.name", "recipient.email", "conversation", "*"}

	first := r.Split(domain.TypeMessage, fields)
	for range 20 {
		assert.Equal(t, first, r.Split(domain.TypeMessage, fields))
	}
}

func TestNormalize(t *testing.T) {
	r := Default()

	assert.Equal(t,
		[]string{"name", "shelter.shelterName", "id", "description", "gender", "age", "weight", "healthStatus",
			"status", "shelterId", "breedId", "animalTypeId", "photoIds", "createdAt", "updatedAt"},
		r.Normalize(domain.TypeAnimal, []string{"name", "shelter.shelterName", "bogus", "*", "name"}),
	)

	assert.Equal(t, []string{"id", "fileType", "sourceUrl"}, r.Normalize(domain.TypeFile, nil))
	assert.Empty(t, r.Normalize(domain.TypeFile, []string{"nothing.here"}))
	assert.Empty(t, r.Normalize(domain.TypeAnimal, []string{"name.first", "age.years"}))
	assert.Equal(t, []string{"shelter.shelterName"}, r.Normalize(domain.TypeAnimal, []string{"name.first", "shelter.shelterName"}))
}

func TestProjection_IncludesForeignKeys(t *testing.T) {
	r := Default()

	split := r.Split(domain.TypeAnimal, []string{"name", "shelter.shelterName", "photos.sourceUrl"})
	assert.Equal(t, []string{"id", "name", "photoIds", "shelterId"}, r.Projection(domain.TypeAnimal, split))

	reverse := r.Split(domain.TypeShelter, []string{"animals.name"})
	assert.Equal(t, []string{"id"}, r.Projection(domain.TypeShelter, reverse))
}
