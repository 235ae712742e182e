package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pet-adoption/internal/adapters/auth/jwt"
	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      any             `json:"error"`
	Count      int             `json:"count"`
	TotalPages int             `json:"totalPages"`
}

type caller struct {
	id    string
	role  string
	token string
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := router.MemoryStores()
	return newServerWith(t, &st)
}

func newServerWith(t *testing.T, st *router.Stores) *httptest.Server {
	t.Helper()
	tokens, err := jwt.NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	ts := httptest.NewServer(router.NewRouter(router.Options{
		Verifier:     tokens,
		Tokens:       tokens,
		DebugHeaders: true,
		Stores:       st,
		BcryptCost:   bcrypt.MinCost,
	}))
	t.Cleanup(ts.Close)
	return ts
}

// seedPending mete una segunda solicitud Pending sin pasar por la API, que
// solo acepta solicitudes sobre mascotas Available.
func seedPending(t *testing.T, st *router.Stores, id, applicantID, shelterID, petID string) {
	t.Helper()
	now := time.Now().UTC()
	err := st.Adoptions.Atomically(context.Background(), petID, func(ctx context.Context, tx adoptions.Tx) error {
		return tx.Create(ctx, adoptions.Application{
			ID:          id,
			PetID:       petID,
			ApplicantID: applicantID,
			ShelterID:   shelterID,
			Status:      adoptions.StatusPending,
			Details: adoptions.Details{
				ResidenceType:     adoptions.ResidenceHouse,
				ReasonForAdopting: "company",
			},
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	require.NoError(t, err)
}

func doReq(t *testing.T, baseURL, method, path string, c caller, body any) (int, envelope) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else if c.id != "" {
		req.Header.Set("X-Debug-User-ID", c.id)
		req.Header.Set("X-Debug-User-Role", c.role)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 && strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), "body=%s", raw)
	}
	return res.StatusCode, env
}

func dataField(t *testing.T, env envelope, key string) any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &m))
	return m[key]
}

func createPet(t *testing.T, url string, shelter caller, name, category string) string {
	t.Helper()
	st, env := doReq(t, url, "POST", "/api/pets", shelter, map[string]any{
		"name":        name,
		"breed":       "Mixed",
		"age":         "2 years",
		"gender":      "Male",
		"category":    category,
		"description": "friendly",
		"image":       "https://img.example/" + name + ".jpg",
	})
	require.Equal(t, http.StatusCreated, st, "create pet: %v", env.Error)
	return dataField(t, env, "id").(string)
}

func submit(t *testing.T, url string, adopter caller, petID string) string {
	t.Helper()
	st, env := doReq(t, url, "POST", "/api/adoptions", adopter, map[string]any{
		"pet": petID,
		"applicationDetails": map[string]any{
			"residenceType":     "House",
			"hasChildren":       false,
			"hasOtherPets":      true,
			"reasonForAdopting": "company",
		},
	})
	require.Equal(t, http.StatusCreated, st, "submit: %v", env.Error)
	return dataField(t, env, "id").(string)
}

func petStatus(t *testing.T, url, petID string) string {
	t.Helper()
	st, env := doReq(t, url, "GET", "/api/pets/"+petID, caller{}, nil)
	require.Equal(t, http.StatusOK, st)
	return dataField(t, env, "adoptionStatus").(string)
}

func TestHTTP_EndToEnd_AdoptionLifecycle(t *testing.T) {
	stores := router.MemoryStores()
	ts := newServerWith(t, &stores)

	shelter := caller{id: "shelter-1", role: "shelter"}
	alice := caller{id: "adopter-a", role: "adopter"}
	bob := caller{id: "adopter-b", role: "adopter"}

	petID := createPet(t, ts.URL, shelter, "Max", "dog")
	assert.Equal(t, "Available", petStatus(t, ts.URL, petID))

	appA := submit(t, ts.URL, alice, petID)
	assert.Equal(t, "Pending", petStatus(t, ts.URL, petID))

	// mascota Pending: nadie más puede aplicar, ni el mismo adoptante
	for _, c := range []caller{alice, bob} {
		st, env := doReq(t, ts.URL, "POST", "/api/adoptions", c, map[string]any{
			"pet": petID,
			"applicationDetails": map[string]any{
				"residenceType": "House", "hasChildren": false, "hasOtherPets": false, "reasonForAdopting": "x",
			},
		})
		assert.Equal(t, http.StatusBadRequest, st, c.id)
		assert.False(t, env.Success)
	}

	appB := "app-bob"
	seedPending(t, &stores, appB, bob.id, shelter.id, petID)

	// el adoptante no ve el listado del refugio
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/adoptions/shelter", alice, nil)
		assert.Equal(t, http.StatusForbidden, st)
	}
	{
		st, env := doReq(t, ts.URL, "GET", "/api/adoptions/shelter?status=Pending", shelter, nil)
		require.Equal(t, http.StatusOK, st)
		assert.Equal(t, 2, env.Count)
	}

	// aprobar A rechaza B en la misma operación
	{
		st, env := doReq(t, ts.URL, "PUT", "/api/adoptions/"+appA, shelter, map[string]any{"status": "Approved"})
		require.Equal(t, http.StatusOK, st, "approve: %v", env.Error)
		assert.Equal(t, "Approved", dataField(t, env, "status"))
	}
	assert.Equal(t, "Adopted", petStatus(t, ts.URL, petID))
	{
		st, env := doReq(t, ts.URL, "GET", "/api/adoptions/"+appB, bob, nil)
		require.Equal(t, http.StatusOK, st)
		assert.Equal(t, "Rejected", dataField(t, env, "status"))
		assert.Equal(t, "another application approved", dataField(t, env, "reviewNotes"))
	}
	{
		st, _ := doReq(t, ts.URL, "PUT", "/api/adoptions/"+appB, shelter, map[string]any{"status": "Approved"})
		assert.Equal(t, http.StatusBadRequest, st)
	}

	// historia de éxito: solo tras Complete y solo el adoptante
	story := map[string]any{"title": "Max en casa", "description": "feliz", "isPublished": true}
	{
		st, _ := doReq(t, ts.URL, "PUT", "/api/adoptions/"+appA+"/success-story", alice, story)
		assert.Equal(t, http.StatusBadRequest, st)
	}
	{
		st, env := doReq(t, ts.URL, "PUT", "/api/adoptions/"+appA+"/complete", shelter, nil)
		require.Equal(t, http.StatusOK, st, "complete: %v", env.Error)
		assert.Equal(t, "Completed", dataField(t, env, "status"))
	}
	{
		st, _ := doReq(t, ts.URL, "PUT", "/api/adoptions/"+appA+"/success-story", bob, story)
		assert.Equal(t, http.StatusForbidden, st)
	}
	{
		st, env := doReq(t, ts.URL, "PUT", "/api/adoptions/"+appA+"/success-story", alice, story)
		require.Equal(t, http.StatusOK, st, "story: %v", env.Error)
	}
	{
		st, env := doReq(t, ts.URL, "GET", "/api/adoptions/success-stories", caller{}, nil)
		require.Equal(t, http.StatusOK, st)
		assert.Equal(t, 1, env.Count)
	}

	// reportes
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/analytics/adoptions/category", alice, nil)
		assert.Equal(t, http.StatusForbidden, st)
	}
	{
		st, env := doReq(t, ts.URL, "GET", "/api/analytics/adoptions/category", shelter, nil)
		require.Equal(t, http.StatusOK, st)
		var groups []map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &groups))
		require.Len(t, groups, 1)
		assert.Equal(t, "dog", groups[0]["category"])
		assert.EqualValues(t, 1, groups[0]["count"])
	}
	{
		// la única adopción ya está Completed y sigue contando
		st, env := doReq(t, ts.URL, "GET", "/api/analytics/adoptions/timeline?months=3", shelter, nil)
		require.Equal(t, http.StatusOK, st)
		var points []map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &points))
		require.Len(t, points, 1)
		assert.EqualValues(t, 1, points[0]["count"])
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/analytics/pets/search?sortBy=weight", caller{}, nil)
		assert.Equal(t, http.StatusBadRequest, st)
	}
}

func TestHTTP_RegisterLoginAndFavorites(t *testing.T) {
	ts := newServer(t)

	st, env := doReq(t, ts.URL, "POST", "/api/users/register", caller{}, map[string]any{
		"name":     "John",
		"email":    "John@Example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, st, "register: %v", env.Error)

	st, env = doReq(t, ts.URL, "POST", "/api/users/login", caller{}, map[string]any{
		"email":    "john@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, st, "login: %v", env.Error)
	john := caller{token: dataField(t, env, "token").(string)}

	st, env = doReq(t, ts.URL, "GET", "/api/users/me", john, nil)
	require.Equal(t, http.StatusOK, st)
	assert.Equal(t, "adopter", dataField(t, env, "role"))

	{
		st, _ := doReq(t, ts.URL, "POST", "/api/users/login", caller{}, map[string]any{
			"email": "john@example.com", "password": "wrong-pass",
		})
		assert.Equal(t, http.StatusUnauthorized, st)
	}

	petID := createPet(t, ts.URL, caller{id: "shelter-1", role: "shelter"}, "Luna", "cat")
	st, _ = doReq(t, ts.URL, "PUT", "/api/users/favorites/"+petID, john, nil)
	require.Equal(t, http.StatusOK, st)

	st, env = doReq(t, ts.URL, "GET", "/api/users/favorites", john, nil)
	require.Equal(t, http.StatusOK, st)
	var favs []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &favs))
	require.Len(t, favs, 1)
	assert.Equal(t, "Luna", favs[0]["name"])

	{
		st, _ := doReq(t, ts.URL, "GET", "/api/users/me", caller{}, nil)
		assert.Equal(t, http.StatusUnauthorized, st)
	}
}

func TestHTTP_OpsEndpoints(t *testing.T) {
	ts := newServer(t)

	st, env := doReq(t, ts.URL, "GET", "/api/health", caller{}, nil)
	require.Equal(t, http.StatusOK, st)
	assert.Equal(t, "memory", dataField(t, env, "backend"))

	submitPet := createPet(t, ts.URL, caller{id: "s1", role: "shelter"}, "Rocky", "dog")
	submit(t, ts.URL, caller{id: "a1", role: "adopter"}, submitPet)

	res, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `pet_adoption_adoptions_transitions_total{from="none",to="Pending"} 1`)
	assert.Contains(t, string(body), "pet_adoption_http_requests_total")
}
