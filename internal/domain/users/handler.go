package users

import (
	"encoding/json"
	"net/http"
	"time"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/respond"
	"pet-adoption/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/users", func(ur chi.Router) {
		ur.Post("/register", registerHandler(svc, log))
		ur.Post("/login", loginHandler(svc, log))

		ur.Get("/me", meHandler(svc, log))
		ur.Put("/profile", updateProfileHandler(svc, log))
		ur.Put("/updatepassword", updatePasswordHandler(svc, log))

		ur.Get("/favorites", listFavoritesHandler(svc, log))
		ur.Put("/favorites/{petID}", addFavoriteHandler(svc, log))
		ur.Delete("/favorites/{petID}", removeFavoriteHandler(svc, log))
	})
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	Contact   string    `json:"contact,omitempty"`
	Address   string    `json:"address,omitempty"`
	Favorites []string  `json:"favorites"`
	CreatedAt time.Time `json:"createdAt"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerHandler godoc
// @Summary Registrar usuario
// @Description Crea una cuenta adopter o shelter y devuelve un token.
// @Tags users
// @Accept json
// @Produce json
// @Param payload body RegisterInput true "Datos de registro"
// @Success 201 {object} respond.Envelope{data=sessionResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 409 {object} respond.Envelope "Email already registered"
// @Router /users/register [post]
func registerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in RegisterInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		sess, err := svc.Register(r.Context(), in)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusCreated, toSessionResponse(sess))
	}
}

// loginHandler godoc
// @Summary Login
// @Tags users
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} respond.Envelope{data=sessionResponse}
// @Failure 401 {object} respond.Envelope "Invalid credentials"
// @Router /users/login [post]
func loginHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		sess, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, toSessionResponse(sess))
	}
}

// meHandler godoc
// @Summary Usuario actual
// @Tags users
// @Produce json
// @Success 200 {object} respond.Envelope{data=userResponse}
// @Failure 401 {object} respond.Envelope
// @Router /users/me [get]
func meHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		u, err := svc.Me(r.Context(), claims)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, toUserResponse(u))
	}
}

// updateProfileHandler godoc
// @Summary Actualizar perfil
// @Tags users
// @Accept json
// @Produce json
// @Param payload body ProfileInput true "Campos a cambiar"
// @Success 200 {object} respond.Envelope{data=userResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 409 {object} respond.Envelope
// @Router /users/profile [put]
func updateProfileHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var in ProfileInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := svc.UpdateProfile(r.Context(), claims, in)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, toUserResponse(u))
	}
}

// updatePasswordHandler godoc
// @Summary Cambiar contraseña
// @Tags users
// @Accept json
// @Produce json
// @Param payload body PasswordInput true "Contraseña actual y nueva"
// @Success 200 {object} respond.Envelope{data=sessionResponse}
// @Failure 401 {object} respond.Envelope
// @Router /users/updatepassword [put]
func updatePasswordHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var in PasswordInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		sess, err := svc.UpdatePassword(r.Context(), claims, in)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, toSessionResponse(sess))
	}
}

// listFavoritesHandler godoc
// @Summary Mascotas favoritas
// @Tags users
// @Produce json
// @Success 200 {object} respond.Envelope{data=[]pets.PetResponse}
// @Router /users/favorites [get]
func listFavoritesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.Favorites(r.Context(), claims)
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}

		out := make([]pets.PetResponse, 0, len(items))
		for _, p := range items {
			out = append(out, pets.ToPetResponse(p))
		}
		respond.List(w, out)
	}
}

// addFavoriteHandler godoc
// @Summary Agregar favorito
// @Tags users
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} respond.Envelope{data=[]string}
// @Failure 404 {object} respond.Envelope "Pet not found"
// @Router /users/favorites/{petID} [put]
func addFavoriteHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		ids, err := svc.AddFavorite(r.Context(), claims, chi.URLParam(r, "petID"))
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, ids)
	}
}

// removeFavoriteHandler godoc
// @Summary Quitar favorito
// @Tags users
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} respond.Envelope{data=[]string}
// @Router /users/favorites/{petID} [delete]
func removeFavoriteHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		ids, err := svc.RemoveFavorite(r.Context(), claims, chi.URLParam(r, "petID"))
		if err != nil {
			respond.Error(w, r, log, err)
			return
		}
		respond.OK(w, http.StatusOK, ids)
	}
}

func toUserResponse(u User) userResponse {
	fav := u.Favorites
	if fav == nil {
		fav = []string{}
	}
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Contact:   u.Contact,
		Address:   u.Address,
		Favorites: fav,
		CreatedAt: u.CreatedAt,
	}
}

func toSessionResponse(s Session) sessionResponse {
	return sessionResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, User: toUserResponse(s.User)}
}
