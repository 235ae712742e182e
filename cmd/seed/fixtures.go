package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"pet-adoption/internal/adapters/capabilities/roles"
	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/router"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultFixtures []byte

type fixtures struct {
	Users []struct {
		Name     string    `yaml:"name"`
		Email    string    `yaml:"email"`
		Password string    `yaml:"password"`
		Role     auth.Role `yaml:"role"`
		Contact  string    `yaml:"contact"`
		Address  string    `yaml:"address"`
	} `yaml:"users"`

	Pets []pets.CreateInput `yaml:"pets"`

	Applications []struct {
		Applicant string `yaml:"applicant"`
		Pet       string `yaml:"pet"`
		Details   struct {
			ResidenceType     adoptions.ResidenceType `yaml:"residenceType"`
			HasChildren       bool                    `yaml:"hasChildren"`
			HasOtherPets      bool                    `yaml:"hasOtherPets"`
			ReasonForAdopting string                  `yaml:"reasonForAdopting"`
		} `yaml:"details"`
	} `yaml:"applications"`
}

func parseFixtures(raw []byte) (fixtures, error) {
	var fx fixtures
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	return fx, nil
}

// Summary cuenta lo que importó el seeder.
type Summary struct {
	Users        int
	Pets         int
	Applications int
}

// importFixtures vacía el store y carga los fixtures pasando por los services,
// así las contraseñas quedan hasheadas y la mascota de la solicitud en Pending.
func importFixtures(ctx context.Context, st router.Stores, fx fixtures, bcryptCost int, log logger.Logger) (Summary, error) {
	if err := st.Reset(ctx); err != nil {
		return Summary{}, fmt.Errorf("reset: %w", err)
	}
	log.Info("data cleared", map[string]any{"backend": st.Backend})

	authz := roles.NewAuthorizer(false)
	usersSvc := users.NewService(st.Users, st.Pets, nil)
	if bcryptCost > 0 {
		usersSvc = usersSvc.WithBcryptCost(bcryptCost)
	}
	petsSvc := pets.NewService(st.Pets, st.Users, authz)
	adoptionsSvc := adoptions.NewService(st.Adoptions, st.Pets, authz, log)

	var sum Summary
	byEmail := map[string]users.User{}
	var shelter *users.User
	for _, in := range fx.Users {
		u, err := usersSvc.CreateUser(ctx, users.RegisterInput{
			Name:     in.Name,
			Email:    in.Email,
			Password: in.Password,
			Role:     in.Role,
			Contact:  in.Contact,
			Address:  in.Address,
		})
		if err != nil {
			return sum, fmt.Errorf("user %s: %w", in.Email, err)
		}
		byEmail[u.Email] = u
		if shelter == nil && u.Role == auth.RoleShelter {
			shelter = &u
		}
		sum.Users++
	}
	log.Info("users imported", map[string]any{"count": sum.Users})

	if len(fx.Pets) > 0 && shelter == nil {
		return sum, errors.New("fixtures have pets but no shelter user")
	}
	byName := map[string]pets.Pet{}
	for _, in := range fx.Pets {
		p, err := petsSvc.Create(ctx, shelter.Claims(), in)
		if err != nil {
			return sum, fmt.Errorf("pet %s: %w", in.Name, err)
		}
		byName[p.Name] = p
		sum.Pets++
	}
	log.Info("pets imported", map[string]any{"count": sum.Pets})

	for _, in := range fx.Applications {
		u, ok := byEmail[in.Applicant]
		if !ok {
			return sum, fmt.Errorf("application: unknown applicant %q", in.Applicant)
		}
		p, ok := byName[in.Pet]
		if !ok {
			return sum, fmt.Errorf("application: unknown pet %q", in.Pet)
		}
		hasChildren, hasOtherPets := in.Details.HasChildren, in.Details.HasOtherPets
		_, err := adoptionsSvc.Submit(ctx, u.Claims(), adoptions.SubmitInput{
			PetID: p.ID,
			Details: adoptions.DetailsInput{
				ResidenceType:     in.Details.ResidenceType,
				HasChildren:       &hasChildren,
				HasOtherPets:      &hasOtherPets,
				ReasonForAdopting: in.Details.ReasonForAdopting,
			},
		})
		if err != nil {
			return sum, fmt.Errorf("application %s/%s: %w", in.Applicant, in.Pet, err)
		}
		sum.Applications++
	}
	log.Info("applications imported", map[string]any{"count": sum.Applications})

	return sum, nil
}
