package memory

import (
	"context"
	"sync"

	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/users"
)

// DB es el store en memoria compartido por todos los repos del backend.
// Un único mutex: las unidades atómicas de adopciones lo toman completo.
type DB struct {
	mu    sync.RWMutex
	pets  map[string]pets.Pet
	users map[string]users.User
	apps  map[string]adoptions.Application
}

func NewDB() *DB {
	db := &DB{}
	db.reset()
	return db
}

// Reset borra todo (seed destroy, tests).
func (db *DB) Reset(_ context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.reset()
	return nil
}

func (db *DB) reset() {
	db.pets = make(map[string]pets.Pet)
	db.users = make(map[string]users.User)
	db.apps = make(map[string]adoptions.Application)
}
