package models

import (
	"net/mail"
	"strings"
	"time"

	"kitchen-flow/internal/restaurant"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Rol is the role a staff member logs in with.
type Rol string

const (
	RolAdmin    Rol = "admin"
	RolMesero   Rol = "mesero"
	RolCocinero Rol = "cocinero"
	RolCajero   Rol = "cajero"
)

// Usuario is a row of usuarios. The password hash is never serialised.
type Usuario struct {
	ID        int       `json:"id"`
	Nombre    string    `json:"nombre"`
	Email     string    `json:"email"`
	Rol       Rol       `json:"rol"`
	Activo    bool      `json:"activo"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateUsuarioRequest struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Rol      Rol    `json:"rol"`
}

// Validate checks the request and fills in the default role.
func (req *CreateUsuarioRequest) Validate() error {
	req.Nombre = strings.TrimSpace(req.Nombre)
	req.Email = strings.TrimSpace(req.Email)

	if req.Nombre == "" {
		return restaurant.ValidationError{Field: "nombre", Message: "nombre is required"}
	}
	if len(req.Nombre) > 100 {
		return restaurant.ValidationError{Field: "nombre", Message: "nombre must not exceed 100 characters"}
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return restaurant.ValidationError{Field: "email", Message: "email is not a valid address"}
	}
	if len(req.Password) < 6 {
		return restaurant.ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	if len(req.Password) > MaxPasswordBytes {
		return restaurant.ValidationError{Field: "password", Message: "password must not exceed 72 bytes"}
	}

	switch req.Rol {
	case "":
		req.Rol = RolMesero
	case RolAdmin, RolMesero, RolCocinero, RolCajero:
	default:
		return restaurant.ValidationError{Field: "rol", Message: "rol must be one of: admin, mesero, cocinero, cajero"}
	}
	return nil
}
