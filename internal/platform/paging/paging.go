package paging

import (
	"net/http"
	"strconv"
	"strings"
)

const MaxLimit = 100

// Defaults por tipo de listado.
const (
	DefaultSearchLimit       = 20
	DefaultApplicationsLimit = 10
	DefaultPetsLimit         = 12
)

// Normalize lleva page/limit a enteros positivos (limit <= MaxLimit).
// Valores <= 0 caen al default.
func Normalize(page, limit, defLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// FromQuery lee ?page=&limit= y los normaliza. Basura no numérica = default.
func FromQuery(r *http.Request, defLimit int) (int, int) {
	q := r.URL.Query()
	return Normalize(atoi(q.Get("page")), atoi(q.Get("limit")), defLimit)
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
