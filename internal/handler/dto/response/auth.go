package response

import (
	"github.com/google/uuid"
)

type LoginResponse struct {
	UserID      uuid.UUID `json:"userId"`
	Role        string    `json:"role"`
	AccessToken string    `json:"accessToken"`
}

type RegisterResponse struct {
	UserID uuid.UUID `json:"userId"`
}

type MeResponse struct {
	UserID   uuid.UUID `json:"userId"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	IsActive bool      `json:"isActive"`
}
