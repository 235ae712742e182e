package respond

import (
	"encoding/json"
	"net/http"

	"pet-adoption/internal/platform/apperr"
	"pet-adoption/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Envelope es la forma estable de todas las respuestas JSON de la API.
// Error es string, o []string cuando se trata de errores de validación.
type Envelope struct {
	Success      bool `json:"success"`
	Data         any  `json:"data,omitempty"`
	Error        any  `json:"error,omitempty"`
	Count        *int `json:"count,omitempty"`
	TotalPages   *int `json:"totalPages,omitempty"`
	CurrentPage  *int `json:"currentPage,omitempty"`
	TotalResults *int `json:"totalResults,omitempty"`
}

// Page describe la paginación de un listado.
type Page struct {
	Page  int
	Limit int
	Total int
}

func (p Page) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

// List responde un listado sin paginación (solo count).
func List[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	JSON(w, http.StatusOK, Envelope{Success: true, Data: items, Count: &n})
}

// Paged responde un listado paginado.
func Paged[T any](w http.ResponseWriter, items []T, p Page) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	pages := p.TotalPages()
	current := p.Page
	total := p.Total
	JSON(w, http.StatusOK, Envelope{
		Success:      true,
		Data:         items,
		Count:        &n,
		TotalPages:   &pages,
		CurrentPage:  &current,
		TotalResults: &total,
	})
}

// Fail responde un error con mensaje explícito (sin pasar por apperr).
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Success: false, Error: msg})
}

// Error traduce err a status + envelope. Los errores no tipados se loguean y
// salen como "Server Error" para no filtrar detalles internos.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		if log != nil {
			log.Error("request failed", map[string]any{
				"request_id": chimw.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"err":        err,
			})
		}
		Fail(w, http.StatusInternalServerError, "Server Error")
		return
	}

	status := apperr.HTTPStatus(e.Kind)
	if e.Kind == apperr.KindValidation && len(e.Fields) > 0 {
		JSON(w, status, Envelope{Success: false, Error: e.Fields})
		return
	}
	Fail(w, status, e.Msg)
}
