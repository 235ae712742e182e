package adoptions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/paging"
	"pet-adoption/internal/platform/validation"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/ports/capabilities"

	"github.com/google/uuid"
)

type Service struct {
	store    Store
	pets     PetLookup
	authz    capabilities.Authorizer
	log      logger.Logger
	observer Observer
	now      func() time.Time
}

func NewService(store Store, petLookup PetLookup, authz capabilities.Authorizer, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store: store,
		pets:  petLookup,
		authz: authz,
		log:   log,
		now:   time.Now,
	}
}

// WithObserver engancha métricas de transiciones.
func (s *Service) WithObserver(o Observer) *Service {
	s.observer = o
	return s
}

// DetailsInput usa punteros en los booleanos para distinguir "false" de "no enviado".
type DetailsInput struct {
	ResidenceType     ResidenceType `json:"residenceType" validate:"required,oneof=House Apartment Condo Other"`
	HasChildren       *bool         `json:"hasChildren" validate:"required"`
	HasOtherPets      *bool         `json:"hasOtherPets" validate:"required"`
	OtherPetDetails   string        `json:"otherPetDetails"`
	WorkSchedule      string        `json:"workSchedule"`
	ReasonForAdopting string        `json:"reasonForAdopting" validate:"required"`
	AdditionalInfo    string        `json:"additionalInfo"`
}

type SubmitInput struct {
	PetID   string       `json:"pet" validate:"required"`
	Details DetailsInput `json:"applicationDetails"`
}

// Submit crea una solicitud Pending y deja la mascota en Pending, todo en una
// sola unidad atómica sobre la mascota.
func (s *Service) Submit(ctx context.Context, caller auth.Claims, in SubmitInput) (Application, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return Application{}, ErrUnauthorized
	}
	in.PetID = strings.TrimSpace(in.PetID)
	in.Details.ReasonForAdopting = strings.TrimSpace(in.Details.ReasonForAdopting)
	if err := validation.Struct("invalid application", in); err != nil {
		return Application{}, err
	}

	var created Application
	err := s.store.Atomically(ctx, in.PetID, func(ctx context.Context, tx Tx) error {
		pet, err := tx.GetPet(ctx, in.PetID)
		if err != nil {
			if errors.Is(err, pets.ErrNotFound) {
				return ErrPetNotFound
			}
			return err
		}
		apps, err := tx.ListByPet(ctx, pet.ID)
		if err != nil {
			return err
		}
		if err := CanSubmit(pet, apps, caller.UserID); err != nil {
			return err
		}

		now := s.now()
		created = Application{
			ID:          uuid.NewString(),
			PetID:       pet.ID,
			ApplicantID: caller.UserID,
			ShelterID:   pet.ShelterID,
			Status:      StatusPending,
			Details: Details{
				ResidenceType:     in.Details.ResidenceType,
				HasChildren:       *in.Details.HasChildren,
				HasOtherPets:      *in.Details.HasOtherPets,
				OtherPetDetails:   strings.TrimSpace(in.Details.OtherPetDetails),
				WorkSchedule:      strings.TrimSpace(in.Details.WorkSchedule),
				ReasonForAdopting: in.Details.ReasonForAdopting,
				AdditionalInfo:    strings.TrimSpace(in.Details.AdditionalInfo),
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(ctx, created); err != nil {
			return err
		}
		return s.syncPet(ctx, tx, pet, append(apps, created), now)
	})
	if err != nil {
		return Application{}, err
	}

	s.transition(created, "", StatusPending)
	return created, nil
}

type ReviewInput struct {
	Status      Status `json:"status"`
	ReviewNotes string `json:"reviewNotes"`
}

// Review aprueba o rechaza una solicitud Pending.
// Aprobar deja la mascota Adopted y rechaza en bloque las demás Pending.
// Rechazar recalcula la mascota (Available si no queda ninguna Pending).
func (s *Service) Review(ctx context.Context, caller auth.Claims, id string, in ReviewInput) (Application, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return Application{}, ErrUnauthorized
	}
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if !s.authz.Authorize(caller, auth.RoleShelter) {
		return Application{}, ErrNotReviewer
	}

	var (
		updated  Application
		rejected int
	)
	err = s.store.Atomically(ctx, current.PetID, func(ctx context.Context, tx Tx) error {
		app, err := findIn(ctx, tx, current.PetID, id)
		if err != nil {
			return err
		}
		if err := CanReview(app, caller, in.Status); err != nil {
			return err
		}

		now := s.now()
		app.Status = in.Status
		app.Review = Review{ReviewedBy: caller.UserID, ReviewDate: &now, ReviewNotes: strings.TrimSpace(in.ReviewNotes)}
		app.UpdatedAt = now
		if in.Status == StatusApproved {
			app.AdoptionDate = &now
		}
		if err := tx.Update(ctx, app); err != nil {
			return err
		}

		if in.Status == StatusApproved {
			auto := Review{ReviewedBy: caller.UserID, ReviewDate: &now, ReviewNotes: AutoRejectNote}
			if rejected, err = tx.RejectOtherPending(ctx, app.PetID, app.ID, auto, now); err != nil {
				return err
			}
		}

		updated = app
		return s.resync(ctx, tx, app.PetID, now)
	})
	if err != nil {
		return Application{}, err
	}

	s.transition(updated, StatusPending, updated.Status)
	for i := 0; i < rejected; i++ {
		s.transition(Application{PetID: updated.PetID}, StatusPending, StatusRejected)
	}
	if rejected > 0 {
		s.log.Info("pending applications auto-rejected", map[string]any{
			"pet_id":         updated.PetID,
			"approved_id":    updated.ID,
			"rejected_count": rejected,
		})
	}
	return updated, nil
}

// Complete marca la entrega: Approved -> Completed. La mascota sigue Adopted.
func (s *Service) Complete(ctx context.Context, caller auth.Claims, id string) (Application, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return Application{}, ErrUnauthorized
	}
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if !s.authz.Authorize(caller, auth.RoleShelter) {
		return Application{}, ErrNotReviewer
	}

	var updated Application
	err = s.store.Atomically(ctx, current.PetID, func(ctx context.Context, tx Tx) error {
		app, err := findIn(ctx, tx, current.PetID, id)
		if err != nil {
			return err
		}
		if err := CanComplete(app, caller); err != nil {
			return err
		}

		now := s.now()
		app.Status = StatusCompleted
		app.UpdatedAt = now
		if err := tx.Update(ctx, app); err != nil {
			return err
		}
		updated = app
		return s.resync(ctx, tx, app.PetID, now)
	})
	if err != nil {
		return Application{}, err
	}

	s.transition(updated, StatusApproved, StatusCompleted)
	return updated, nil
}

type StoryInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required"`
	Images      []string `json:"images"`
	IsPublished bool     `json:"isPublished"`
}

// AttachStory agrega (o reemplaza) la historia de éxito; solo el adoptante y
// solo con la adopción Completed.
func (s *Service) AttachStory(ctx context.Context, caller auth.Claims, id string, in StoryInput) (Application, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return Application{}, ErrUnauthorized
	}
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if err := CanAttachStory(current, caller); err != nil {
		return Application{}, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct("invalid success story", in); err != nil {
		return Application{}, err
	}

	var updated Application
	err = s.store.Atomically(ctx, current.PetID, func(ctx context.Context, tx Tx) error {
		app, err := findIn(ctx, tx, current.PetID, id)
		if err != nil {
			return err
		}
		if err := CanAttachStory(app, caller); err != nil {
			return err
		}

		images := make([]string, 0, len(in.Images))
		for _, img := range in.Images {
			if img = strings.TrimSpace(img); img != "" {
				images = append(images, img)
			}
		}

		app.SuccessStory = &SuccessStory{
			Title:       in.Title,
			Description: in.Description,
			Images:      images,
			IsPublished: in.IsPublished,
		}
		app.UpdatedAt = s.now()
		if err := tx.Update(ctx, app); err != nil {
			return err
		}
		updated = app
		return s.resync(ctx, tx, app.PetID, app.UpdatedAt)
	})
	if err != nil {
		return Application{}, err
	}
	return updated, nil
}

// Get: adoptante, refugio dueño o admin.
func (s *Service) Get(ctx context.Context, caller auth.Claims, id string) (View, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return View{}, ErrUnauthorized
	}
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := CanView(a, caller); err != nil {
		return View{}, err
	}
	views, err := s.views(ctx, []Application{a})
	if err != nil {
		return View{}, err
	}
	return views[0], nil
}

// ListShelter: el refugio ve las suyas; admin ve todas o filtra por f.ShelterID.
func (s *Service) ListShelter(ctx context.Context, caller auth.Claims, f ListFilter) ([]View, int, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return nil, 0, ErrUnauthorized
	}
	if !s.authz.Authorize(caller, auth.RoleShelter) {
		return nil, 0, ErrNotShelter
	}
	if !caller.IsAdmin() {
		f.ShelterID = caller.UserID
	}
	f.Page, f.Limit = paging.Normalize(f.Page, f.Limit, paging.DefaultApplicationsLimit)
	if f.SortBy == "" {
		f.SortBy = SortCreatedAt
	}

	items, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	views, err := s.views(ctx, items)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ListMine devuelve las solicitudes del caller, más nuevas primero.
func (s *Service) ListMine(ctx context.Context, caller auth.Claims) ([]View, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return nil, ErrUnauthorized
	}
	items, err := s.store.ListByApplicant(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list own applications: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return s.views(ctx, items)
}

// ListSuccessStories es público; nunca incluye historias sin publicar.
func (s *Service) ListSuccessStories(ctx context.Context, page, limit int) ([]View, int, error) {
	page, limit = paging.Normalize(page, limit, paging.DefaultApplicationsLimit)
	items, total, err := s.store.ListPublishedStories(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list success stories: %w", err)
	}
	views, err := s.views(ctx, items)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// resync relee las solicitudes de la mascota y ajusta su estado.
// Una mascota borrada (solo posible sin Pending) no tiene nada que ajustar.
func (s *Service) resync(ctx context.Context, tx Tx, petID string, at time.Time) error {
	pet, err := tx.GetPet(ctx, petID)
	if err != nil {
		if errors.Is(err, pets.ErrNotFound) {
			return nil
		}
		return err
	}
	apps, err := tx.ListByPet(ctx, petID)
	if err != nil {
		return err
	}
	return s.syncPet(ctx, tx, pet, apps, at)
}

func (s *Service) syncPet(ctx context.Context, tx Tx, pet pets.Pet, apps []Application, at time.Time) error {
	next, err := NextPetStatus(pet.AdoptionStatus, apps)
	if err != nil {
		s.log.Error("pet status derivation", map[string]any{"pet_id": pet.ID, "err": err})
		return err
	}
	if next == pet.AdoptionStatus {
		return nil
	}
	return tx.SetPetStatus(ctx, pet.ID, next, at)
}

func (s *Service) transition(a Application, from, to Status) {
	if s.observer != nil {
		s.observer.ApplicationTransition(string(from), string(to))
	}
	if a.ID == "" {
		return
	}
	s.log.Info("application transition", map[string]any{
		"application_id": a.ID,
		"pet_id":         a.PetID,
		"from":           string(from),
		"to":             string(to),
	})
}

// views embebe el resumen de cada mascota (una consulta por mascota distinta).
func (s *Service) views(ctx context.Context, apps []Application) ([]View, error) {
	out := make([]View, 0, len(apps))
	cache := map[string]*PetSummary{}

	for _, a := range apps {
		sum, seen := cache[a.PetID]
		if !seen && s.pets != nil {
			p, err := s.pets.GetByID(ctx, a.PetID)
			switch {
			case err == nil:
				sum = &PetSummary{ID: p.ID, Name: p.Name, Breed: p.Breed, Age: p.Age, Gender: p.Gender, Image: p.Image}
			case errors.Is(err, pets.ErrNotFound):
				sum = nil
			default:
				return nil, fmt.Errorf("resolve pet %s: %w", a.PetID, err)
			}
			cache[a.PetID] = sum
		}
		out = append(out, View{Application: a, Pet: sum})
	}
	return out, nil
}

// findIn relee la solicitud dentro de la unidad atómica.
func findIn(ctx context.Context, tx Tx, petID, id string) (Application, error) {
	apps, err := tx.ListByPet(ctx, petID)
	if err != nil {
		return Application{}, err
	}
	for _, a := range apps {
		if a.ID == id {
			return a, nil
		}
	}
	return Application{}, ErrNotFound
}
