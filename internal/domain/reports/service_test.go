package reports

import (
	"context"
	"testing"

	"pet-adoption/internal/adapters/capabilities/roles"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	applied  []pets.Pet
	months   []MonthCount
	shelters []ShelterStat
}

func (f fakeStore) PetsWithApplications(context.Context) ([]pets.Pet, error) { return f.applied, nil }
func (f fakeStore) AdoptionsByMonth(context.Context) ([]MonthCount, error)   { return f.months, nil }
func (f fakeStore) ShelterStats(context.Context) ([]ShelterStat, error)      { return f.shelters, nil }

type fakeSearch struct {
	got pets.ListFilter
}

func (f *fakeSearch) Search(_ context.Context, lf pets.ListFilter) ([]pets.Listing, int, error) {
	f.got = lf
	return []pets.Listing{{Pet: pets.Pet{ID: "p1"}}}, 1, nil
}

var (
	adopter = auth.Claims{UserID: "u1", Role: auth.RoleAdopter}
	shelter = auth.Claims{UserID: "s1", Role: auth.RoleShelter}
	admin   = auth.Claims{UserID: "root", Role: auth.RoleAdmin}
)

func TestService_Access(t *testing.T) {
	svc := NewService(fakeStore{}, &fakeSearch{}, roles.NewAuthorizer(false))
	ctx := context.Background()

	_, err := svc.ByCategory(ctx, auth.Claims{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.ByCategory(ctx, adopter)
	assert.ErrorIs(t, err, ErrNotShelter)
	_, err = svc.Timeline(ctx, adopter, 6)
	assert.ErrorIs(t, err, ErrNotShelter)

	_, err = svc.ByCategory(ctx, shelter)
	assert.NoError(t, err)

	_, err = svc.Shelters(ctx, shelter)
	assert.ErrorIs(t, err, ErrNotAdmin)
	_, err = svc.Shelters(ctx, admin)
	assert.NoError(t, err)
}

func TestService_CategoryScenario(t *testing.T) {
	// 3 perros y 1 gato con solicitudes; los perros sin solicitudes no llegan del store
	applied := []pets.Pet{
		{ID: "d1", Category: pets.CategoryDog, Age: "12 months"},
		{ID: "d2", Category: pets.CategoryDog, Age: "2 years"},
		{ID: "d3", Category: pets.CategoryDog, Age: "3 years"},
		{ID: "c1", Category: pets.CategoryCat, Age: "4 years"},
	}
	svc := NewService(fakeStore{applied: applied}, &fakeSearch{}, roles.NewAuthorizer(false))

	got, err := svc.ByCategory(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, pets.CategoryDog, got[0].Category)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, 2.0, *got[0].AverageAge)
	assert.Equal(t, pets.CategoryCat, got[1].Category)
	assert.Equal(t, 1, got[1].Count)
}

func TestService_SheltersSorted(t *testing.T) {
	store := fakeStore{shelters: []ShelterStat{{Name: "Small", TotalPets: 1}, {Name: "Big", TotalPets: 9}}}
	svc := NewService(store, &fakeSearch{}, roles.NewAuthorizer(false))

	got, err := svc.Shelters(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, "Big", got[0].Name)
}

func TestService_SearchIsPublic(t *testing.T) {
	search := &fakeSearch{}
	svc := NewService(fakeStore{}, search, roles.NewAuthorizer(false))

	items, total, err := svc.SearchPets(context.Background(), pets.ListFilter{Search: "lab"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, items, 1)
	assert.Equal(t, "lab", search.got.Search)
}
