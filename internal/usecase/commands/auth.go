package commands

import (
	"context"

	"aguamarket/internal/domain/user"
	reqdto "aguamarket/internal/handler/dto/request"
	"aguamarket/internal/infra"
	"aguamarket/internal/pkg/errs"
	"aguamarket/internal/pkg/jwt"
	"aguamarket/internal/pkg/password"
	"aguamarket/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound         = errs.New("user not found")
	ErrInvalidCredentials   = errs.New("invalid credentials")
	ErrUserInactive         = errs.New("user inactive")
	ErrDuplicateEmail       = errs.New("email already registered")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
)

type LoginResult struct {
	UserID      uuid.UUID
	Role        user.Role
	AccessToken string
}

type RegisterResult struct {
	UserID uuid.UUID
}

type AuthCommands interface {
	Login(ctx context.Context, req reqdto.LoginRequest) (*LoginResult, error)
	Register(ctx context.Context, req reqdto.RegisterRequest) (*RegisterResult, error)
}

type authCommandsImpl struct {
	uow        shared.UnitOfWork
	jwtService *jwt.Service
}

func NewAuthCommands(uow shared.UnitOfWork, jwtService *jwt.Service) AuthCommands {
	return &authCommandsImpl{
		uow:        uow,
		jwtService: jwtService,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, req reqdto.LoginRequest) (*LoginResult, error) {
	snap, err := a.uow.CommandReads().UserByEmail(ctx, req.Email)
	if err != nil {
		// Same error as a password mismatch to prevent user enumeration
		return nil, ErrInvalidCredentials
	}
	if !snap.IsActive {
		return nil, ErrUserInactive
	}

	if err := password.ComparePassword(snap.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := a.jwtService.GenerateToken(snap.ID, snap.Role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	return &LoginResult{
		UserID:      snap.ID,
		Role:        snap.Role,
		AccessToken: token,
	}, nil
}

func (a *authCommandsImpl) Register(ctx context.Context, req reqdto.RegisterRequest) (*RegisterResult, error) {
	hash, err := password.HashPassword(req.Password)
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	userEntity, err := user.NewUser(req.Email, hash, user.Role(req.Role))
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	var userID uuid.UUID
	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		userID, err = tx.Users().Create(ctx, tx.DB(), userEntity)
		if err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrDuplicateEmail
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RegisterResult{UserID: userID}, nil
}
