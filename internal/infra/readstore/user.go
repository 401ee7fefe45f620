package readstore

import (
	"context"

	"aguamarket/internal/infra"
	"aguamarket/internal/infra/db"
	"aguamarket/internal/usecase/queries"

	"github.com/google/uuid"
)

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(db db.DBTX) *UserReadStore {
	return &UserReadStore{db: db}
}

func (s *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	var v queries.AuthorizedUserView
	err := s.db.QueryRow(ctx,
		"SELECT id, email, role, is_active FROM users WHERE id = $1", id,
	).Scan(&v.ID, &v.Email, &v.Role, &v.IsActive)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find user", err)
	}
	return &v, nil
}

// FindByEmail also returns the password hash for credential checks; the
// hash never leaves the command layer.
func (s *UserReadStore) FindByEmail(ctx context.Context, email string) (*queries.AuthorizedUserView, string, error) {
	var v queries.AuthorizedUserView
	var hash string
	err := s.db.QueryRow(ctx,
		"SELECT id, email, role, is_active, password_hash FROM users WHERE email = $1", email,
	).Scan(&v.ID, &v.Email, &v.Role, &v.IsActive, &hash)
	if err != nil {
		return nil, "", infra.WrapRepoErr("failed to find user by email", err)
	}
	return &v, hash, nil
}
