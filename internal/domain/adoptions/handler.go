package adoptions

import (
	"encoding/json"
	"net/http"
	"time"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/paging"
	"pet-adoption/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/adoptions", func(ar chi.Router) {
		ar.Post("/", submitHandler(svc, log))

		// rutas fijas antes de /{id}
		ar.Get("/shelter", listShelterHandler(svc, log))
		ar.Get("/user", listMineHandler(svc, log))
		ar.Get("/success-stories", listStoriesHandler(svc, log))

		ar.Get("/{id}", getHandler(svc, log))
		ar.Put("/{id}", reviewHandler(svc, log))
		ar.Put("/{id}/complete", completeHandler(svc, log))
		ar.Put("/{id}/success-story", storyHandler(svc, log))
	})
}

type detailsResponse struct {
	ResidenceType     ResidenceType `json:"residenceType"`
	HasChildren       bool          `json:"hasChildren"`
	HasOtherPets      bool          `json:"hasOtherPets"`
	OtherPetDetails   string        `json:"otherPetDetails,omitempty"`
	WorkSchedule      string        `json:"workSchedule,omitempty"`
	ReasonForAdopting string        `json:"reasonForAdopting"`
	AdditionalInfo    string        `json:"additionalInfo,omitempty"`
}

type storyResponse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	IsPublished bool     `json:"isPublished"`
}

type petSummaryResponse struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Breed  string      `json:"breed"`
	Age    string      `json:"age"`
	Gender pets.Gender `json:"gender"`
	Image  string      `json:"image"`
}

// ApplicationResponse es una solicitud tal como la devuelve la API.
type ApplicationResponse struct {
	ID           string              `json:"id"`
	PetID        string              `json:"petId"`
	Pet          *petSummaryResponse `json:"pet,omitempty"`
	ApplicantID  string              `json:"applicantId"`
	ShelterID    string              `json:"shelterId"`
	Status       Status              `json:"status"`
	Details      detailsResponse     `json:"applicationDetails"`
	ReviewedBy   string              `json:"reviewedBy,omitempty"`
	ReviewDate   *time.Time          `json:"reviewDate,omitempty"`
	ReviewNotes  string              `json:"reviewNotes,omitempty"`
	AdoptionDate *time.Time          `json:"adoptionDate,omitempty"`
	SuccessStory *storyResponse      `json:"successStory,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// submitHandler godoc
// @Summary Enviar solicitud de adopción
// @Description La mascota pasa a Pending. Un adoptante no puede tener dos solicitudes Pending para la misma mascota.
// @Tags adoptions
// @Accept json
// @Produce json
// @Param payload body SubmitInput true "Mascota y cuestionario"
// @Success 201 {object} respond.Envelope{data=ApplicationResponse}
// @Failure 400 {object} respond.Envelope "validación o mascota ya adoptada"
// @Failure 401 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope "Pet not found"
// @Failure 409 {object} respond.Envelope "solicitud duplicada"
// @Router /adoptions [post]
func submitHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var in SubmitInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		a, err := svc.Submit(r.Context(), claims, in)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusCreated, ToResponse(View{Application: a}))
	}
}

// listShelterHandler godoc
// @Summary Solicitudes del refugio
// @Description Refugio: solo las propias. Admin: todas, o las de ?shelter=.
// @Tags adoptions
// @Produce json
// @Param status query string false "Pending | Approved | Rejected | Completed"
// @Param sort query string false "createdAt | updatedAt | status, prefijo - para desc (default -createdAt)"
// @Param shelter query string false "ID de refugio (solo admin)"
// @Param page query int false "Página (default 1)"
// @Param limit query int false "Tamaño de página (default 10, máx 100)"
// @Success 200 {object} respond.Envelope{data=[]ApplicationResponse}
// @Failure 403 {object} respond.Envelope
// @Router /adoptions/shelter [get]
func listShelterHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		q := r.URL.Query()

		status, err := ParseStatus(q.Get("status"))
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		sortBy, asc, err := ParseSort(q.Get("sort"))
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		f := ListFilter{ShelterID: q.Get("shelter"), Status: status, SortBy: sortBy, Asc: asc}
		f.Page, f.Limit = paging.FromQuery(r, paging.DefaultApplicationsLimit)

		items, total, err := svc.ListShelter(r.Context(), claims, f)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.Paged(w, ToResponses(items), respond.Page{Page: f.Page, Limit: f.Limit, Total: total})
	}
}

// listMineHandler godoc
// @Summary Mis solicitudes
// @Tags adoptions
// @Produce json
// @Success 200 {object} respond.Envelope{data=[]ApplicationResponse}
// @Failure 401 {object} respond.Envelope
// @Router /adoptions/user [get]
func listMineHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.ListMine(r.Context(), claims)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.List(w, ToResponses(items))
	}
}

// listStoriesHandler godoc
// @Summary Historias de éxito publicadas
// @Description Público. Adopciones completadas con historia publicada, más recientes primero.
// @Tags adoptions
// @Produce json
// @Param page query int false "Página (default 1)"
// @Param limit query int false "Tamaño de página (default 10, máx 100)"
// @Success 200 {object} respond.Envelope{data=[]ApplicationResponse}
// @Router /adoptions/success-stories [get]
func listStoriesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit := paging.FromQuery(r, paging.DefaultApplicationsLimit)

		items, total, err := svc.ListSuccessStories(r.Context(), page, limit)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.Paged(w, ToResponses(items), respond.Page{Page: page, Limit: limit, Total: total})
	}
}

// getHandler godoc
// @Summary Obtener solicitud
// @Description Visible para el adoptante, el refugio dueño o un admin.
// @Tags adoptions
// @Produce json
// @Param id path string true "ID de la solicitud"
// @Success 200 {object} respond.Envelope{data=ApplicationResponse}
// @Failure 403 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope "Application not found"
// @Router /adoptions/{id} [get]
func getHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		v, err := svc.Get(r.Context(), claims, chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, ToResponse(v))
	}
}

// reviewHandler godoc
// @Summary Revisar solicitud
// @Description Aprobar o rechazar una solicitud Pending. Aprobar adopta la mascota y rechaza las demás Pending.
// @Tags adoptions
// @Accept json
// @Produce json
// @Param id path string true "ID de la solicitud"
// @Param payload body ReviewInput true "Approved | Rejected y notas"
// @Success 200 {object} respond.Envelope{data=ApplicationResponse}
// @Failure 400 {object} respond.Envelope "ya revisada o estado inválido"
// @Failure 403 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Router /adoptions/{id} [put]
func reviewHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var in ReviewInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		a, err := svc.Review(r.Context(), claims, chi.URLParam(r, "id"), in)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, ToResponse(View{Application: a}))
	}
}

// completeHandler godoc
// @Summary Completar adopción
// @Description Approved -> Completed. Habilita la historia de éxito.
// @Tags adoptions
// @Produce json
// @Param id path string true "ID de la solicitud"
// @Success 200 {object} respond.Envelope{data=ApplicationResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 403 {object} respond.Envelope
// @Router /adoptions/{id}/complete [put]
func completeHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		a, err := svc.Complete(r.Context(), claims, chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, ToResponse(View{Application: a}))
	}
}

// storyHandler godoc
// @Summary Agregar historia de éxito
// @Description Solo el adoptante, solo sobre adopciones completadas.
// @Tags adoptions
// @Accept json
// @Produce json
// @Param id path string true "ID de la solicitud"
// @Param payload body StoryInput true "Historia"
// @Success 200 {object} respond.Envelope{data=ApplicationResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 403 {object} respond.Envelope
// @Router /adoptions/{id}/success-story [put]
func storyHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var in StoryInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		a, err := svc.AttachStory(r.Context(), claims, chi.URLParam(r, "id"), in)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, ToResponse(View{Application: a}))
	}
}

func ToResponse(v View) ApplicationResponse {
	a := v.Application
	out := ApplicationResponse{
		ID:          a.ID,
		PetID:       a.PetID,
		ApplicantID: a.ApplicantID,
		ShelterID:   a.ShelterID,
		Status:      a.Status,
		Details: detailsResponse{
			ResidenceType:     a.Details.ResidenceType,
			HasChildren:       a.Details.HasChildren,
			HasOtherPets:      a.Details.HasOtherPets,
			OtherPetDetails:   a.Details.OtherPetDetails,
			WorkSchedule:      a.Details.WorkSchedule,
			ReasonForAdopting: a.Details.ReasonForAdopting,
			AdditionalInfo:    a.Details.AdditionalInfo,
		},
		ReviewedBy:   a.Review.ReviewedBy,
		ReviewDate:   a.Review.ReviewDate,
		ReviewNotes:  a.Review.ReviewNotes,
		AdoptionDate: a.AdoptionDate,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if v.Pet != nil {
		out.Pet = &petSummaryResponse{
			ID:     v.Pet.ID,
			Name:   v.Pet.Name,
			Breed:  v.Pet.Breed,
			Age:    v.Pet.Age,
			Gender: v.Pet.Gender,
			Image:  v.Pet.Image,
		}
	}
	if s := a.SuccessStory; s != nil {
		images := s.Images
		if images == nil {
			images = []string{}
		}
		out.SuccessStory = &storyResponse{Title: s.Title, Description: s.Description, Images: images, IsPublished: s.IsPublished}
	}
	return out
}

func ToResponses(items []View) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(items))
	for _, v := range items {
		out = append(out, ToResponse(v))
	}
	return out
}
