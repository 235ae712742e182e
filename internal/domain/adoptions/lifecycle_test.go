package adoptions

import (
	"testing"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/platform/apperr"
	"pet-adoption/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apps(statuses ...Status) []Application {
	out := make([]Application, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, Application{Status: s})
	}
	return out
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name string
		in   []Application
		want pets.AdoptionStatus
	}{
		{"sin solicitudes", nil, pets.StatusAvailable},
		{"solo rechazadas", apps(StatusRejected, StatusRejected), pets.StatusAvailable},
		{"una pendiente", apps(StatusRejected, StatusPending), pets.StatusPending},
		{"aprobada gana", apps(StatusPending, StatusApproved), pets.StatusAdopted},
		{"completada", apps(StatusRejected, StatusCompleted), pets.StatusAdopted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(tc.in))
		})
	}
}

func TestNextPetStatus_AdoptedIsTerminal(t *testing.T) {
	next, err := NextPetStatus(pets.StatusPending, apps(StatusApproved))
	require.NoError(t, err)
	assert.Equal(t, pets.StatusAdopted, next)

	_, err = NextPetStatus(pets.StatusAdopted, apps(StatusRejected))
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestCanSubmit(t *testing.T) {
	open := pets.Pet{ID: "p1", AdoptionStatus: pets.StatusAvailable}

	assert.NoError(t, CanSubmit(open, nil, "u1"))
	assert.NoError(t, CanSubmit(open, []Application{{ApplicantID: "u1", Status: StatusRejected}}, "u1"))
	assert.NoError(t, CanSubmit(open, []Application{{ApplicantID: "u2", Status: StatusRejected}}, "u1"))

	err := CanSubmit(open, []Application{{ApplicantID: "u1", Status: StatusPending}}, "u1")
	assert.ErrorIs(t, err, ErrDuplicate)

	for _, st := range []pets.AdoptionStatus{pets.StatusPending, pets.StatusAdopted} {
		closed := pets.Pet{ID: "p1", AdoptionStatus: st}
		assert.ErrorIs(t, CanSubmit(closed, nil, "u1"), ErrPetNotOpen, st)
		assert.ErrorIs(t, CanSubmit(closed, []Application{{ApplicantID: "u1", Status: StatusPending}}, "u1"), ErrPetNotOpen, st)
	}
}

func TestCanReview_Order(t *testing.T) {
	shelter := auth.Claims{UserID: "s1", Role: auth.RoleShelter}
	other := auth.Claims{UserID: "s2", Role: auth.RoleShelter}
	admin := auth.Claims{UserID: "root", Role: auth.RoleAdmin}

	pending := Application{ShelterID: "s1", Status: StatusPending}
	reviewed := Application{ShelterID: "s1", Status: StatusRejected}

	assert.NoError(t, CanReview(pending, shelter, StatusApproved))
	assert.NoError(t, CanReview(pending, admin, StatusRejected))

	// ajeno antes que estado
	assert.ErrorIs(t, CanReview(reviewed, other, StatusApproved), ErrNotReviewer)
	// estado antes que payload
	assert.ErrorIs(t, CanReview(reviewed, shelter, "Bogus"), ErrNotPending)
	assert.ErrorIs(t, CanReview(pending, shelter, StatusCompleted), ErrBadReviewStatus)
	assert.ErrorIs(t, CanReview(pending, shelter, StatusPending), ErrBadReviewStatus)
}

func TestCanComplete(t *testing.T) {
	shelter := auth.Claims{UserID: "s1", Role: auth.RoleShelter}

	assert.NoError(t, CanComplete(Application{ShelterID: "s1", Status: StatusApproved}, shelter))
	assert.ErrorIs(t, CanComplete(Application{ShelterID: "s1", Status: StatusPending}, shelter), ErrNotApproved)
	assert.ErrorIs(t, CanComplete(Application{ShelterID: "s9", Status: StatusApproved}, shelter), ErrNotReviewer)
}

func TestCanAttachStory(t *testing.T) {
	adopter := auth.Claims{UserID: "u1", Role: auth.RoleAdopter}
	admin := auth.Claims{UserID: "root", Role: auth.RoleAdmin}

	done := Application{ApplicantID: "u1", Status: StatusCompleted}
	assert.NoError(t, CanAttachStory(done, adopter))
	assert.ErrorIs(t, CanAttachStory(done, admin), ErrNotApplicant)
	assert.ErrorIs(t, CanAttachStory(Application{ApplicantID: "u1", Status: StatusApproved}, adopter), ErrNotCompleted)
}

func TestCanView(t *testing.T) {
	a := Application{ApplicantID: "u1", ShelterID: "s1"}

	assert.NoError(t, CanView(a, auth.Claims{UserID: "u1"}))
	assert.NoError(t, CanView(a, auth.Claims{UserID: "s1", Role: auth.RoleShelter}))
	assert.NoError(t, CanView(a, auth.Claims{UserID: "x", Role: auth.RoleAdmin}))
	assert.ErrorIs(t, CanView(a, auth.Claims{UserID: "u2"}), ErrNotViewer)
	assert.ErrorIs(t, CanView(a, auth.Claims{}), ErrNotViewer)
}

func TestParseSort(t *testing.T) {
	f, asc, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortCreatedAt, f)
	assert.False(t, asc)

	f, asc, err = ParseSort("status")
	require.NoError(t, err)
	assert.Equal(t, SortStatus, f)
	assert.True(t, asc)

	f, asc, err = ParseSort("-updatedAt")
	require.NoError(t, err)
	assert.Equal(t, SortUpdatedAt, f)
	assert.False(t, asc)

	_, _, err = ParseSort("name")
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, Status(""), st)

	st, err = ParseStatus("Completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, st)

	_, err = ParseStatus("pending")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
