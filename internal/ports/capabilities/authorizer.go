package capabilities

import "pet-adoption/internal/ports/auth"

// Authorizer decide si caller puede ejecutar una operación restringida a roles.
// Con roles vacío basta con estar autenticado.
type Authorizer interface {
	Authorize(caller auth.Claims, roles ...auth.Role) bool
}
