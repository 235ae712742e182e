package reports

import (
	"net/http"
	"strconv"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/paging"
	"pet-adoption/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/analytics", func(ar chi.Router) {
		ar.Get("/adoptions/category", categoryHandler(svc, log))
		ar.Get("/adoptions/timeline", timelineHandler(svc, log))
		ar.Get("/shelters", sheltersHandler(svc, log))
		ar.Get("/pets/search", searchHandler(svc, log))
	})
}

type petSampleResponse struct {
	Name   string              `json:"name"`
	Breed  string              `json:"breed"`
	Status pets.AdoptionStatus `json:"adoptionStatus"`
}

type categoryResponse struct {
	Category   pets.Category       `json:"category"`
	Count      int                 `json:"count"`
	AverageAge *float64            `json:"averageAge"`
	Pets       []petSampleResponse `json:"pets"`
}

type timelineResponse struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Count     int    `json:"count"`
	MonthName string `json:"monthName"`
	DateLabel string `json:"dateLabel"`
}

type shelterResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Contact       string `json:"contact,omitempty"`
	Address       string `json:"address,omitempty"`
	TotalPets     int    `json:"totalPets"`
	AvailablePets int    `json:"availablePets"`
	PendingPets   int    `json:"pendingPets"`
	AdoptedPets   int    `json:"adoptedPets"`
}

// categoryHandler godoc
// @Summary Adopciones por categoría
// @Description Mascotas con al menos una solicitud, agrupadas por categoría con edad promedio y hasta 5 de muestra.
// @Tags analytics
// @Produce json
// @Success 200 {object} respond.Envelope{data=[]categoryResponse}
// @Failure 401 {object} respond.Envelope
// @Failure 403 {object} respond.Envelope
// @Router /analytics/adoptions/category [get]
func categoryHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.ByCategory(r.Context(), claims)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		out := make([]categoryResponse, 0, len(items))
		for _, st := range items {
			samples := make([]petSampleResponse, 0, len(st.Pets))
			for _, p := range st.Pets {
				samples = append(samples, petSampleResponse{Name: p.Name, Breed: p.Breed, Status: p.Status})
			}
			out = append(out, categoryResponse{Category: st.Category, Count: st.Count, AverageAge: st.AverageAge, Pets: samples})
		}
		respond.List(w, out)
	}
}

// timelineHandler godoc
// @Summary Adopciones por mes
// @Tags analytics
// @Produce json
// @Param months query int false "Meses con datos a devolver (default 6, máx 60)"
// @Success 200 {object} respond.Envelope{data=[]timelineResponse}
// @Failure 403 {object} respond.Envelope
// @Router /analytics/adoptions/timeline [get]
func timelineHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		months, _ := strconv.Atoi(r.URL.Query().Get("months"))
		items, err := svc.Timeline(r.Context(), claims, months)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		out := make([]timelineResponse, 0, len(items))
		for _, p := range items {
			out = append(out, timelineResponse(p))
		}
		respond.List(w, out)
	}
}

// sheltersHandler godoc
// @Summary Estadísticas por refugio
// @Description Solo admin. Ordenado por total de mascotas desc.
// @Tags analytics
// @Produce json
// @Success 200 {object} respond.Envelope{data=[]shelterResponse}
// @Failure 403 {object} respond.Envelope
// @Router /analytics/shelters [get]
func sheltersHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.Shelters(r.Context(), claims)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		out := make([]shelterResponse, 0, len(items))
		for _, st := range items {
			out = append(out, shelterResponse(st))
		}
		respond.List(w, out)
	}
}

// searchHandler godoc
// @Summary Búsqueda de mascotas
// @Tags analytics
// @Produce json
// @Param search query string false "Texto libre"
// @Param category query string false "dog | cat | other"
// @Param status query string false "Available | Pending | Adopted"
// @Param gender query string false "Male | Female"
// @Param size query string false "Small | Medium | Large | Extra Large"
// @Param sortBy query string false "createdAt | name | breed | age | category | adoptionStatus"
// @Param sortOrder query string false "asc | desc (default desc)"
// @Param page query int false "Página (default 1)"
// @Param limit query int false "Tamaño de página (default 20, máx 100)"
// @Success 200 {object} respond.Envelope{data=[]pets.PetResponse}
// @Failure 400 {object} respond.Envelope
// @Router /analytics/pets/search [get]
func searchHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := pets.FilterFromQuery(r)

		if s := q.Get("sortBy"); s != "" {
			by, ok := pets.ParseSortField(s)
			if !ok {
				respond.Error(w, r, log, pets.ErrInvalidSortBy)
				return
			}
			f.SortBy = by
		}
		asc, err := pets.ParseSortOrder(q.Get("sortOrder"))
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		f.Asc = asc
		f.Page, f.Limit = paging.FromQuery(r, paging.DefaultSearchLimit)

		items, total, err := svc.SearchPets(r.Context(), f)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.Paged(w, pets.ToListingResponses(items), respond.Page{Page: f.Page, Limit: f.Limit, Total: total})
	}
}
