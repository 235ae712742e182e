package pets

import (
	"encoding/json"
	"net/http"
	"time"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/paging"
	"pet-adoption/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", listPetsHandler(svc, log))
		pr.Post("/", createPetHandler(svc, log))

		pr.Get("/{petID}", getPetHandler(svc, log))
		pr.Put("/{petID}", updatePetHandler(svc, log))
		pr.Delete("/{petID}", deletePetHandler(svc, log))
	})
}

// ShelterResponse es el refugio embebido en mascotas y solicitudes.
type ShelterResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// PetResponse representa una mascota devuelta por la API.
type PetResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Breed          string           `json:"breed"`
	Age            string           `json:"age"`
	Gender         Gender           `json:"gender"`
	Category       Category         `json:"category"`
	Size           Size             `json:"size,omitempty"`
	Description    string           `json:"description"`
	Image          string           `json:"image"`
	AdoptionStatus AdoptionStatus   `json:"adoptionStatus"`
	ShelterID      string           `json:"shelterId"`
	Shelter        *ShelterResponse `json:"shelter,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// updatePetRequest: punteros, nil = no tocar. adoptionStatus y shelter se ignoran.
type updatePetRequest struct {
	Name        *string   `json:"name"`
	Breed       *string   `json:"breed"`
	Age         *string   `json:"age"`
	Gender      *Gender   `json:"gender"`
	Category    *Category `json:"category"`
	Size        *Size     `json:"size"`
	Description *string   `json:"description"`
	Image       *string   `json:"image"`
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Listado público, más nuevas primero. Embebe nombre y contacto del refugio.
// @Tags pets
// @Produce json
// @Param category query string false "dog | cat | other"
// @Param status query string false "Available | Pending | Adopted"
// @Param gender query string false "Male | Female"
// @Param size query string false "Small | Medium | Large | Extra Large"
// @Param search query string false "Texto libre sobre name/breed/description/category"
// @Param page query int false "Página (default 1)"
// @Param limit query int false "Tamaño de página (default 12, máx 100)"
// @Success 200 {object} respond.Envelope{data=[]PetResponse}
// @Router /pets [get]
func listPetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := FilterFromQuery(r)
		f.Page, f.Limit = paging.FromQuery(r, paging.DefaultPetsLimit)

		items, total, err := svc.List(r.Context(), f)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		respond.Paged(w, ToListingResponses(items), respond.Page{Page: f.Page, Limit: f.Limit, Total: total})
	}
}

// getPetHandler godoc
// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} respond.Envelope{data=PetResponse}
// @Failure 404 {object} respond.Envelope "Pet not found"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := svc.Get(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, ToListingResponse(l))
	}
}

// createPetHandler godoc
// @Summary Publicar mascota
// @Description Solo refugios o admin. El refugio es el usuario autenticado; el estado arranca en Available. Autenticación: `X-Debug-User-ID` + `X-Debug-User-Role` (dev) o `Authorization: Bearer <token>`.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body CreateInput true "Datos de la mascota"
// @Success 201 {object} respond.Envelope{data=PetResponse}
// @Failure 400 {object} respond.Envelope "lista de errores de validación"
// @Failure 401 {object} respond.Envelope
// @Failure 403 {object} respond.Envelope
// @Router /pets [post]
func createPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var in CreateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.Create(r.Context(), claims, in)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusCreated, ToPetResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description Refugio dueño o admin. adoptionStatus no se puede cambiar por esta vía.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a cambiar"
// @Success 200 {object} respond.Envelope{data=PetResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 403 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Router /pets/{petID} [put]
func updatePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req updatePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.Update(r.Context(), claims, chi.URLParam(r, "petID"), UpdateInput(req))
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, ToPetResponse(p))
	}
}

// deletePetHandler godoc
// @Summary Eliminar mascota
// @Description Refugio dueño o admin. No se puede eliminar mientras tenga solicitudes pendientes.
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} respond.Envelope
// @Failure 400 {object} respond.Envelope "Pet has pending applications"
// @Failure 403 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		if err := svc.Delete(r.Context(), claims, chi.URLParam(r, "petID")); err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, struct{}{})
	}
}

// FilterFromQuery lee los filtros comunes (sin paginación ni orden).
func FilterFromQuery(r *http.Request) ListFilter {
	q := r.URL.Query()
	return ListFilter{
		Search:   q.Get("search"),
		Category: Category(q.Get("category")),
		Gender:   Gender(q.Get("gender")),
		Size:     Size(q.Get("size")),
		Status:   AdoptionStatus(q.Get("status")),
	}
}

func ToPetResponse(p Pet) PetResponse {
	return PetResponse{
		ID:             p.ID,
		Name:           p.Name,
		Breed:          p.Breed,
		Age:            p.Age,
		Gender:         p.Gender,
		Category:       p.Category,
		Size:           p.Size,
		Description:    p.Description,
		Image:          p.Image,
		AdoptionStatus: p.AdoptionStatus,
		ShelterID:      p.ShelterID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func ToListingResponse(l Listing) PetResponse {
	out := ToPetResponse(l.Pet)
	out.Shelter = ToShelterResponse(l.Shelter)
	return out
}

func ToListingResponses(items []Listing) []PetResponse {
	out := make([]PetResponse, 0, len(items))
	for _, l := range items {
		out = append(out, ToListingResponse(l))
	}
	return out
}

func ToShelterResponse(s *Shelter) *ShelterResponse {
	if s == nil {
		return nil
	}
	return &ShelterResponse{ID: s.ID, Name: s.Name, Email: s.Email, Contact: s.Contact}
}
