package adoptions

import (
	"fmt"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/platform/apperr"
	"pet-adoption/internal/ports/auth"
)

// Nota que se deja en las solicitudes rechazadas en bloque al aprobar otra.
const AutoRejectNote = "another application approved"

var (
	ErrNotFound        = apperr.NotFound("Application not found")
	ErrPetNotFound     = apperr.NotFound("Pet not found")
	ErrUnauthorized    = apperr.Unauthorized("Not authorized")
	ErrNotShelter      = apperr.Forbidden("Not authorized to access these applications")
	ErrNotReviewer     = apperr.Forbidden("Not authorized to update this application")
	ErrNotViewer       = apperr.Forbidden("Not authorized to view this application")
	ErrNotApplicant    = apperr.Forbidden("Only the adopter can add a success story")
	ErrPetNotOpen      = apperr.InvalidState("This pet is not available for adoption")
	ErrDuplicate       = apperr.Conflict("You already have a pending application for this pet")
	ErrNotPending      = apperr.InvalidState("Application has already been reviewed")
	ErrNotApproved     = apperr.InvalidState("Only approved applications can be completed")
	ErrNotCompleted    = apperr.InvalidState("Success story can only be added for completed adoptions")
	ErrBadReviewStatus = apperr.Validation("invalid status", "status must be one of [Approved Rejected]")
	ErrInvalidSort     = apperr.Validation("invalid sort", "sort must be one of [createdAt -createdAt updatedAt -updatedAt status -status]")
)

// DeriveStatus calcula el estado de la mascota a partir de sus solicitudes:
// Adopted si alguna está Approved/Completed, Pending si queda alguna Pending,
// Available en otro caso.
func DeriveStatus(apps []Application) pets.AdoptionStatus {
	pending := false
	for _, a := range apps {
		switch a.Status {
		case StatusApproved, StatusCompleted:
			return pets.StatusAdopted
		case StatusPending:
			pending = true
		}
	}
	if pending {
		return pets.StatusPending
	}
	return pets.StatusAvailable
}

// NextPetStatus aplica DeriveStatus respetando que Adopted es terminal.
// Salir de Adopted es un bug del ciclo de vida, no un error del caller.
func NextPetStatus(current pets.AdoptionStatus, apps []Application) (pets.AdoptionStatus, error) {
	next := DeriveStatus(apps)
	if current == pets.StatusAdopted && next != pets.StatusAdopted {
		return current, apperr.Internal(fmt.Sprintf("adopted pet cannot move to %s", next))
	}
	return next, nil
}

// CanSubmit: solo se aplica a mascotas Available, y el adoptante no puede
// tener otra Pending para la misma mascota.
func CanSubmit(pet pets.Pet, existing []Application, applicantID string) error {
	if pet.AdoptionStatus != pets.StatusAvailable {
		return ErrPetNotOpen
	}
	for _, a := range existing {
		if a.ApplicantID == applicantID && a.Status == StatusPending {
			return ErrDuplicate
		}
	}
	return nil
}

func isShelterOf(a Application, caller auth.Claims) bool {
	return caller.UserID != "" && (a.ShelterID == caller.UserID || caller.IsAdmin())
}

func CanReview(a Application, reviewer auth.Claims, newStatus Status) error {
	if !isShelterOf(a, reviewer) {
		return ErrNotReviewer
	}
	if a.Status != StatusPending {
		return ErrNotPending
	}
	if newStatus != StatusApproved && newStatus != StatusRejected {
		return ErrBadReviewStatus
	}
	return nil
}

func CanComplete(a Application, caller auth.Claims) error {
	if !isShelterOf(a, caller) {
		return ErrNotReviewer
	}
	if a.Status != StatusApproved {
		return ErrNotApproved
	}
	return nil
}

func CanAttachStory(a Application, caller auth.Claims) error {
	if caller.UserID == "" || a.ApplicantID != caller.UserID {
		return ErrNotApplicant
	}
	if a.Status != StatusCompleted {
		return ErrNotCompleted
	}
	return nil
}

func CanView(a Application, caller auth.Claims) error {
	if caller.UserID != "" && a.ApplicantID == caller.UserID {
		return nil
	}
	if isShelterOf(a, caller) {
		return nil
	}
	return ErrNotViewer
}

// ParseSort acepta "campo" o "-campo" (desc). Vacío = -createdAt.
func ParseSort(s string) (SortField, bool, error) {
	if s == "" {
		return SortCreatedAt, false, nil
	}
	asc := true
	if s[0] == '-' {
		asc = false
		s = s[1:]
	}
	switch f := SortField(s); f {
	case SortCreatedAt, SortUpdatedAt, SortStatus:
		return f, asc, nil
	default:
		return "", false, ErrInvalidSort
	}
}

// ParseStatus valida un filtro de estado; vacío = sin filtro.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case "", StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return st, nil
	default:
		return "", apperr.Validation("invalid status", "status must be one of [Pending Approved Rejected Completed]")
	}
}
