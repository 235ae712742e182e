package main

import (
	"context"
	"testing"

	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestParseFixtures_Embedded(t *testing.T) {
	fx, err := parseFixtures(defaultFixtures)
	require.NoError(t, err)

	require.Len(t, fx.Users, 3)
	assert.Equal(t, auth.RoleShelter, fx.Users[1].Role)
	require.Len(t, fx.Pets, 3)
	assert.Equal(t, pets.SizeLarge, fx.Pets[0].Size)
	require.Len(t, fx.Applications, 1)
	assert.Equal(t, "Max", fx.Applications[0].Pet)
}

func TestImportFixtures_IntoMemory(t *testing.T) {
	ctx := context.Background()
	st := router.MemoryStores()
	fx, err := parseFixtures(defaultFixtures)
	require.NoError(t, err)

	sum, err := importFixtures(ctx, st, fx, bcrypt.MinCost, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 3, Pets: 3, Applications: 1}, sum)

	john, err := st.Users.GetByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", john.PasswordHash)

	mine, err := st.Adoptions.ListByApplicant(ctx, john.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, adoptions.StatusPending, mine[0].Status)

	max, err := st.Pets.GetByID(ctx, mine[0].PetID)
	require.NoError(t, err)
	assert.Equal(t, "Max", max.Name)
	assert.Equal(t, pets.StatusPending, max.AdoptionStatus)

	// re-importar vacía primero: no hay email duplicado
	_, err = importFixtures(ctx, st, fx, bcrypt.MinCost, logger.Nop())
	require.NoError(t, err)
}

func TestImportFixtures_UnknownPet(t *testing.T) {
	fx, err := parseFixtures([]byte(`
users:
  - {name: S, email: s@x.com, password: secret1, role: shelter}
applications:
  - {applicant: s@x.com, pet: Ghost}
`))
	require.NoError(t, err)

	_, err = importFixtures(context.Background(), router.MemoryStores(), fx, bcrypt.MinCost, logger.Nop())
	assert.ErrorContains(t, err, `unknown pet "Ghost"`)
}
