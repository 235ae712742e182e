package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/platform/apperr"
	"pet-adoption/internal/platform/validation"
	"pet-adoption/internal/ports/auth"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = apperr.NotFound("User not found")
	ErrEmailTaken         = apperr.Conflict("Email already registered")
	ErrInvalidCredentials = apperr.Unauthorized("Invalid credentials")
	ErrUnauthorized       = apperr.Unauthorized("Not authorized")
	ErrWrongPassword      = apperr.Unauthorized("Current password is incorrect")
)

type Service struct {
	repo   Repository
	pets   PetLookup
	tokens auth.TokenIssuer
	now    func() time.Time

	bcryptCost int
}

func NewService(repo Repository, pets PetLookup, tokens auth.TokenIssuer) *Service {
	return &Service{
		repo:       repo,
		pets:       pets,
		tokens:     tokens,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithBcryptCost baja el costo en tests y en el seeder.
func (s *Service) WithBcryptCost(cost int) *Service {
	s.bcryptCost = cost
	return s
}

type RegisterInput struct {
	Name     string    `json:"name" validate:"required,max=100"`
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required,min=6"`
	Role     auth.Role `json:"role" validate:"omitempty,oneof=adopter shelter"`
	Contact  string    `json:"contact"`
	Address  string    `json:"address"`
}

// Register crea la cuenta y devuelve una sesión. El rol admin no se puede
// auto-asignar; solo lo crea el seeder vía CreateUser.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct("invalid user", in); err != nil {
		return Session{}, err
	}
	if in.Role == "" {
		in.Role = auth.RoleAdopter
	}

	u, err := s.CreateUser(ctx, in)
	if err != nil {
		return Session{}, err
	}
	return s.session(ctx, u)
}

// CreateUser persiste sin validar rol (lo usa el seeder para admins).
func (s *Service) CreateUser(ctx context.Context, in RegisterInput) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: string(hash),
		Role:         in.Role,
		Contact:      strings.TrimSpace(in.Contact),
		Address:      strings.TrimSpace(in.Address),
		Favorites:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, apperr.Validation("invalid credentials", "email and password are required")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("login: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(ctx, u)
}

func (s *Service) Me(ctx context.Context, caller auth.Claims) (User, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return User{}, ErrUnauthorized
	}
	return s.repo.GetByID(ctx, caller.UserID)
}

type ProfileInput struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Contact *string `json:"contact"`
	Address *string `json:"address"`
}

func (s *Service) UpdateProfile(ctx context.Context, caller auth.Claims, in ProfileInput) (User, error) {
	u, err := s.Me(ctx, caller)
	if err != nil {
		return User{}, err
	}

	if in.Email != nil {
		e := normalizeEmail(*in.Email)
		in.Email = &e
	}
	if err := validation.Struct("invalid profile", in); err != nil {
		return User{}, err
	}

	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil && *in.Email != u.Email {
		if other, err := s.repo.GetByEmail(ctx, *in.Email); err == nil && other.ID != u.ID {
			return User{}, ErrEmailTaken
		}
		u.Email = *in.Email
	}
	if in.Contact != nil {
		u.Contact = strings.TrimSpace(*in.Contact)
	}
	if in.Address != nil {
		u.Address = strings.TrimSpace(*in.Address)
	}
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

type PasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// UpdatePassword exige la contraseña actual y devuelve una sesión nueva.
func (s *Service) UpdatePassword(ctx context.Context, caller auth.Claims, in PasswordInput) (Session, error) {
	u, err := s.Me(ctx, caller)
	if err != nil {
		return Session{}, err
	}
	if err := validation.Struct("invalid password", in); err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.CurrentPassword)) != nil {
		return Session{}, ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.bcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return Session{}, fmt.Errorf("update password: %w", err)
	}
	return s.session(ctx, u)
}

// Favorites devuelve las mascotas favoritas que todavía existen.
func (s *Service) Favorites(ctx context.Context, caller auth.Claims) ([]pets.Pet, error) {
	u, err := s.Me(ctx, caller)
	if err != nil {
		return nil, err
	}

	out := make([]pets.Pet, 0, len(u.Favorites))
	for _, id := range u.Favorites {
		p, err := s.pets.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pets.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("favorites: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) AddFavorite(ctx context.Context, caller auth.Claims, petID string) ([]string, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return nil, ErrUnauthorized
	}
	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		return nil, err
	}
	if err := s.repo.AddFavorite(ctx, caller.UserID, petID); err != nil {
		return nil, fmt.Errorf("add favorite: %w", err)
	}
	return s.favoriteIDs(ctx, caller)
}

func (s *Service) RemoveFavorite(ctx context.Context, caller auth.Claims, petID string) ([]string, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return nil, ErrUnauthorized
	}
	if err := s.repo.RemoveFavorite(ctx, caller.UserID, petID); err != nil {
		return nil, fmt.Errorf("remove favorite: %w", err)
	}
	return s.favoriteIDs(ctx, caller)
}

func (s *Service) favoriteIDs(ctx context.Context, caller auth.Claims) ([]string, error) {
	u, err := s.Me(ctx, caller)
	if err != nil {
		return nil, err
	}
	if u.Favorites == nil {
		return []string{}, nil
	}
	return u.Favorites, nil
}

func (s *Service) session(ctx context.Context, u User) (Session, error) {
	token, exp, err := s.tokens.Issue(ctx, u.Claims())
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{User: u, Token: token, ExpiresAt: exp}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
