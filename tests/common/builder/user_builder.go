//go:build unit || e2e

package builder

import (
	domuser "aguamarket/internal/domain/user"
	reqdto "aguamarket/internal/handler/dto/request"
	"aguamarket/internal/usecase/queries"
	"aguamarket/internal/usecase/shared"

	"github.com/google/uuid"
)

type UserBuilder struct {
	ID           uuid.UUID
	Email        string
	Password     string
	PasswordHash string
	Role         domuser.Role
	IsActive     bool
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		ID:       uuid.New(),
		Email:    "consumer@example.com",
		Password: "password123",
		// bcrypt of "password123", cost 10
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		Role:         domuser.RoleConsumer,
		IsActive:     true,
	}
}

func (b *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(b)
	return b
}

// Build methods

func (b *UserBuilder) BuildDomain() (*domuser.User, error) {
	return domuser.NewUser(b.Email, b.PasswordHash, b.Role)
}

func (b *UserBuilder) BuildRegisterDTO() reqdto.RegisterRequest {
	return reqdto.RegisterRequest{
		Email:    b.Email,
		Password: b.Password,
		Role:     b.Role.String(),
	}
}

func (b *UserBuilder) BuildLoginDTO() reqdto.LoginRequest {
	return reqdto.LoginRequest{
		Email:    b.Email,
		Password: b.Password,
	}
}

func (b *UserBuilder) BuildAuthorizedView() *queries.AuthorizedUserView {
	return &queries.AuthorizedUserView{
		ID:       b.ID,
		Email:    b.Email,
		Role:     b.Role.String(),
		IsActive: b.IsActive,
	}
}

func (b *UserBuilder) BuildSnapshot() *shared.UserSnapshot {
	return &shared.UserSnapshot{
		ID:           b.ID,
		Email:        b.Email,
		PasswordHash: b.PasswordHash,
		Role:         b.Role,
		IsActive:     b.IsActive,
	}
}

// Fluent builder methods

func (b *UserBuilder) WithID(id uuid.UUID) *UserBuilder {
	b.ID = id
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.Email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.Password = password
	return b
}

func (b *UserBuilder) WithRole(role domuser.Role) *UserBuilder {
	b.Role = role
	return b
}

func (b *UserBuilder) AsProvider() *UserBuilder {
	b.Email = "provider@example.com"
	b.Role = domuser.RoleProvider
	return b
}

func (b *UserBuilder) AsAdmin() *UserBuilder {
	b.Email = "admin@example.com"
	b.Role = domuser.RoleAdmin
	return b
}

func (b *UserBuilder) AsInactive() *UserBuilder {
	b.IsActive = false
	return b
}
