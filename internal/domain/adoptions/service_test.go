package adoptions_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pet-adoption/internal/adapters/capabilities/roles"
	"pet-adoption/internal/adapters/storage/memory"
	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/platform/apperr"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	shelter  = auth.Claims{UserID: "shelter-1", Role: auth.RoleShelter}
	other    = auth.Claims{UserID: "shelter-2", Role: auth.RoleShelter}
	admin    = auth.Claims{UserID: "root", Role: auth.RoleAdmin}
	adopterA = auth.Claims{UserID: "adopter-a", Role: auth.RoleAdopter}
	adopterB = auth.Claims{UserID: "adopter-b", Role: auth.RoleAdopter}
)

type recorder struct {
	got []string
}

func (r *recorder) ApplicationTransition(from, to string) {
	r.got = append(r.got, from+"->"+to)
}

type fixture struct {
	svc   *adoptions.Service
	pets  *memory.PetRepo
	store *memory.AdoptionStore
	rec   *recorder
	now   func() time.Time
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db := memory.NewDB()
	petRepo := memory.NewPetRepo(db)
	store := memory.NewAdoptionStore(db)
	rec := &recorder{}

	svc := adoptions.NewService(store, petRepo, roles.NewAuthorizer(false), logger.Nop()).
		WithObserver(rec)

	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	svc.SetNow(now)

	return fixture{svc: svc, pets: petRepo, store: store, rec: rec, now: now}
}

// seedPending carga una solicitud Pending directo en el store (Submit solo
// acepta mascotas Available) y deja la mascota en Pending si moveToPending.
func (f fixture) seedPending(t *testing.T, caller auth.Claims, petID string, moveToPending bool) adoptions.Application {
	t.Helper()
	at := f.now()
	a := adoptions.Application{
		ID:          fmt.Sprintf("seed-%s-%s", caller.UserID, petID),
		PetID:       petID,
		ApplicantID: caller.UserID,
		ShelterID:   shelter.UserID,
		Status:      adoptions.StatusPending,
		Details: adoptions.Details{
			ResidenceType:     adoptions.ResidenceApartment,
			ReasonForAdopting: "seeded",
		},
		CreatedAt: at,
		UpdatedAt: at,
	}
	err := f.store.Atomically(context.Background(), petID, func(ctx context.Context, tx adoptions.Tx) error {
		if err := tx.Create(ctx, a); err != nil {
			return err
		}
		if !moveToPending {
			return nil
		}
		return tx.SetPetStatus(ctx, petID, pets.StatusPending, at)
	})
	require.NoError(t, err)
	return a
}

func (f fixture) addPet(t *testing.T, id string, status pets.AdoptionStatus) {
	t.Helper()
	require.NoError(t, f.pets.Create(context.Background(), pets.Pet{
		ID:             id,
		Name:           "Max",
		Breed:          "Labrador",
		Age:            "3 years",
		Gender:         pets.GenderMale,
		Category:       pets.CategoryDog,
		AdoptionStatus: status,
		ShelterID:      shelter.UserID,
	}))
}

func (f fixture) petStatus(t *testing.T, id string) pets.AdoptionStatus {
	t.Helper()
	p, err := f.pets.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.AdoptionStatus
}

func submitInput(petID string) adoptions.SubmitInput {
	yes, no := true, false
	return adoptions.SubmitInput{
		PetID: petID,
		Details: adoptions.DetailsInput{
			ResidenceType:     adoptions.ResidenceHouse,
			HasChildren:       &no,
			HasOtherPets:      &yes,
			ReasonForAdopting: "Looking for a companion",
		},
	}
}

func (f fixture) submit(t *testing.T, caller auth.Claims, petID string) adoptions.Application {
	t.Helper()
	a, err := f.svc.Submit(context.Background(), caller, submitInput(petID))
	require.NoError(t, err)
	return a
}

func TestSubmit_MovesPetToPending(t *testing.T) {
	f := newFixture(t)
	f.addPet(t, "pet-1", pets.StatusAvailable)

	a := f.submit(t, adopterA, "pet-1")

	assert.Equal(t, adoptions.StatusPending, a.Status)
	assert.Equal(t, shelter.UserID, a.ShelterID)
	assert.Equal(t, pets.StatusPending, f.petStatus(t, "pet-1"))
	assert.Equal(t, []string{"->Pending"}, f.rec.got)
}

func TestSubmit_Errors(t *testing.T) {
	f := newFixture(t)
	f.addPet(t, "pet-1", pets.StatusAvailable)
	f.addPet(t, "gone", pets.StatusAdopted)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, auth.Claims{}, submitInput("pet-1"))
	assert.ErrorIs(t, err, adoptions.ErrUnauthorized)

	_, err = f.svc.Submit(ctx, adopterA, submitInput("missing"))
	assert.ErrorIs(t, err, adoptions.ErrPetNotFound)

	_, err = f.svc.Submit(ctx, adopterA, submitInput("gone"))
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	// Pending ya no acepta solicitudes, de nadie
	f.submit(t, adopterA, "pet-1")
	_, err = f.svc.Submit(ctx, adopterA, submitInput("pet-1"))
	assert.ErrorIs(t, err, adoptions.ErrPetNotOpen)
	_, err = f.svc.Submit(ctx, adopterB, submitInput("pet-1"))
	assert.ErrorIs(t, err, adoptions.ErrPetNotOpen)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	assert.Equal(t, pets.StatusPending, f.petStatus(t, "pet-1"))
}

func TestSubmit_DuplicatePendingIsConflict(t *testing.T) {
	f := newFixture(t)
	f.addPet(t, "pet-2", pets.StatusAvailable)
	f.seedPending(t, adopterA, "pet-2", false)

	_, err := f.svc.Submit(context.Background(), adopterA, submitInput("pet-2"))
	assert.ErrorIs(t, err, adoptions.ErrDuplicate)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	f.submit(t, adopterB, "pet-2")
}

func TestSubmit_ValidatesDetails(t *testing.T) {
	f := newFixture(t)
	f.addPet(t, "pet-1", pets.StatusAvailable)

	_, err := f.svc.Submit(context.Background(), adopterA, adoptions.SubmitInput{
		PetID:   "pet-1",
		Details: adoptions.DetailsInput{ResidenceType: "Castle"},
	})
	require.Error(t, err)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.ElementsMatch(t, []string{
		"applicationDetails.residenceType must be one of [House Apartment Condo Other]",
		"applicationDetails.hasChildren is required",
		"applicationDetails.hasOtherPets is required",
		"applicationDetails.reasonForAdopting is required",
	}, e.Fields)

	// nada se aplicó
	assert.Equal(t, pets.StatusAvailable, f.petStatus(t, "pet-1"))
}

func TestReview_ApproveRejectsOthers(t *testing.T) {
	f := newFixture(t)
	f.addPet(t, "pet-1", pets.StatusAvailable)
	ctx := context.Background()

	a := f.submit(t, adopterA, "pet-1")
	b := f.seedPending(t, adopterB, "pet-1", true)

	approved, err := f.svc.Review(ctx, shelter, a.ID, adoptions.ReviewInput{Status: adoptions.StatusApproved, ReviewNotes: "great fit"})
	require.NoError(t, err)
	assert.Equal(t, adoptions.StatusApproved, approved.Status)
	require.NotNil(t, approved.AdoptionDate)
	assert.Equal(t, shelter.UserID, approved.Review.ReviewedBy)

	assert.Equal(t, pets.StatusAdopted, f.petStatus(t, "pet-1"))

	gotB, err := f.svc.Get(ctx, adopterB, b.ID)
	require.NoError(t, err)
	assert.Equal(t, adoptions.StatusRejected, gotB.Status)
	assert.Equal(t, adoptions.AutoRejectNote, gotB.Review.ReviewNotes)
	assert.Equal(t, "another application approved", gotB.Review.ReviewNotes)
	require.NotNil(t, gotB.Pet)
	assert.Equal(t, "Max", gotB.Pet.Name)

	assert.Contains(t, f.rec.got, "Pending->Approved")
	assert.Contains(t, f.rec.got, "Pending->Rejected")

	// una vez decidida no se revisa de nuevo
	_, err = f.svc.Review(ctx, shelter, a.ID, adoptions.ReviewInput{Status: adoptions.StatusRejected})
	assert.ErrorIs(t, err, adoptions.ErrNotPending)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	// mascota adoptada: no acepta más solicitudes
	_, err = f.svc.Submit(ctx, adopterB, submitInput("pet-1"))
	assert.ErrorIs(t, err, adoptions.ErrPetNotOpen)
}

func TestReview_RejectRecomputesPet(t *testing.T) {
	f := newFixture(t)
	f.addPet(t, "pet-1", pets.StatusAvailable)
	ctx := context.Background()

	a := f.submit(t, adopterA, "pet-1")
	b := f.seedPending(t, adopterB, "pet-1", true)

	_, err := f.svc.Review(ctx, shelter, a.ID, adoptions.ReviewInput{Status: adoptions.StatusRejected})
	require.NoError(t, err)
	assert.Equal(t, pets.StatusPending, f.petStatus(t, "pet-1"))

	_, err = f.svc.Review(ctx, shelter, b.ID, adoptions.ReviewInput{Status: adoptions.StatusRejected})
	require.NoError(t, err)
	assert.Equal(t, pets.StatusAvailable, f.petStatus(t, "pet-1"))

	// rechazado puede volver a aplicar
	f.submit(t, adopterA, "pet-1")
	assert.Equal(t, pets.StatusPending, f.petStatus(t, "pet-1"))
}

func TestReview_Guards(t *testing.T) {
	f := newFixture(t)
	f.addPet(t, "pet-1", pets.StatusAvailable)
	ctx := context.Background()
	a := f.submit(t, adopterA, "pet-1")

	_, err := f.svc.Review(ctx, shelter, "missing", adoptions.ReviewInput{Status: adoptions.StatusApproved})
	assert.ErrorIs(t, err, adoptions.ErrNotFound)

	_, err = f.svc.Review(ctx, adopterB, a.ID, adoptions.ReviewInput{Status: adoptions.StatusApproved})
	assert.ErrorIs(t, err, adoptions.ErrNotReviewer)

	_, err = f.svc.Review(ctx, other, a.ID, adoptions.ReviewInput{Status: adoptions.StatusApproved})
	assert.ErrorIs(t, err, adoptions.ErrNotReviewer)

	_, err = f.svc.Review(ctx, shelter, a.ID, adoptions.ReviewInput{Status: adoptions.StatusCompleted})
	assert.ErrorIs(t, err, adoptions.ErrBadReviewStatus)
	assert.Equal(t, pets.StatusPending, f.petStatus(t, "pet-1"))

	// admin puede revisar solicitudes de cualquier refugio
	_, err = f.svc.Review(ctx, admin, a.ID, adoptions.ReviewInput{Status: adoptions.StatusRejected})
	assert.NoError(t, err)
}

func TestSuccessStories(t *testing.T) {
	f := newFixture(t)
	f.addPet(t, "pet-1", pets.StatusAvailable)
	f.addPet(t, "pet-2", pets.StatusAvailable)
	ctx := context.Background()

	a := f.submit(t, adopterA, "pet-1")
	story := adoptions.StoryInput{Title: "Home at last", Description: "Max loves the park", IsPublished: true}

	// Pending: todavía no
	_, err := f.svc.AttachStory(ctx, adopterA, a.ID, story)
	assert.ErrorIs(t, err, adoptions.ErrNotCompleted)

	_, err = f.svc.Review(ctx, shelter, a.ID, adoptions.ReviewInput{Status: adoptions.StatusApproved})
	require.NoError(t, err)

	// Approved tampoco
	_, err = f.svc.AttachStory(ctx, adopterA, a.ID, story)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	_, err = f.svc.Complete(ctx, adopterA, a.ID)
	assert.ErrorIs(t, err, adoptions.ErrNotReviewer)

	done, err := f.svc.Complete(ctx, shelter, a.ID)
	require.NoError(t, err)
	assert.Equal(t, adoptions.StatusCompleted, done.Status)
	assert.Equal(t, pets.StatusAdopted, f.petStatus(t, "pet-1"))

	_, err = f.svc.Complete(ctx, shelter, a.ID)
	assert.ErrorIs(t, err, adoptions.ErrNotApproved)

	// solo el adoptante
	_, err = f.svc.AttachStory(ctx, adopterB, a.ID, story)
	assert.ErrorIs(t, err, adoptions.ErrNotApplicant)
	_, err = f.svc.AttachStory(ctx, shelter, a.ID, story)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	list, total, err := f.svc.ListSuccessStories(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	// sin publicar: no aparece
	draft := story
	draft.IsPublished = false
	_, err = f.svc.AttachStory(ctx, adopterA, a.ID, draft)
	require.NoError(t, err)
	_, total, err = f.svc.ListSuccessStories(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	withStory, err := f.svc.AttachStory(ctx, adopterA, a.ID, story)
	require.NoError(t, err)
	require.NotNil(t, withStory.SuccessStory)

	list, total, err = f.svc.ListSuccessStories(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, "Home at last", list[0].SuccessStory.Title)
}

func TestListShelter_ScopedToCaller(t *testing.T) {
	f := newFixture(t)
	f.addPet(t, "pet-1", pets.StatusAvailable)
	require.NoError(t, f.pets.Create(context.Background(), pets.Pet{ID: "pet-9", ShelterID: other.UserID, AdoptionStatus: pets.StatusAvailable}))
	ctx := context.Background()

	a := f.submit(t, adopterA, "pet-1")
	f.seedPending(t, adopterB, "pet-1", true)
	f.submit(t, adopterA, "pet-9")

	mine, total, err := f.svc.ListShelter(ctx, shelter, adoptions.ListFilter{ShelterID: other.UserID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, mine, 2)

	all, total, err := f.svc.ListShelter(ctx, admin, adoptions.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	page, total, err := f.svc.ListShelter(ctx, shelter, adoptions.ListFilter{SortBy: adoptions.SortCreatedAt, Asc: true, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, a.ID, page[0].ID)

	_, _, err = f.svc.ListShelter(ctx, adopterA, adoptions.ListFilter{})
	assert.ErrorIs(t, err, adoptions.ErrNotShelter)

	mineA, err := f.svc.ListMine(ctx, adopterA)
	require.NoError(t, err)
	require.Len(t, mineA, 2)
	assert.Equal(t, "pet-9", mineA[0].PetID)
}

func TestGet_Visibility(t *testing.T) {
	f := newFixture(t)
	f.addPet(t, "pet-1", pets.StatusAvailable)
	ctx := context.Background()
	a := f.submit(t, adopterA, "pet-1")

	_, err := f.svc.Get(ctx, adopterA, a.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, shelter, a.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, adopterB, a.ID)
	assert.ErrorIs(t, err, adoptions.ErrNotViewer)
	_, err = f.svc.Get(ctx, other, a.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
