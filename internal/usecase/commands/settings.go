package commands

import (
	"context"

	reqdto "aguamarket/internal/handler/dto/request"
	"aguamarket/internal/pkg/clock"
	"aguamarket/internal/pkg/errs"
	"aguamarket/internal/usecase/queries"
	"aguamarket/internal/usecase/shared"
)

var ErrInvalidSettings = errs.New("invalid platform settings")

type SettingsCommands interface {
	Update(ctx context.Context, req reqdto.UpdateSettingsRequest) (*queries.SettingsView, error)
}

type settingsCommandsImpl struct {
	uow             shared.UnitOfWork
	settingsQueries queries.SettingsQueries
	clock           clock.Clock
}

func NewSettingsCommands(
	uow shared.UnitOfWork,
	settingsQueries queries.SettingsQueries,
	clock clock.Clock,
) SettingsCommands {
	return &settingsCommandsImpl{
		uow:             uow,
		settingsQueries: settingsQueries,
		clock:           clock,
	}
}

func (s *settingsCommandsImpl) Update(ctx context.Context, req reqdto.UpdateSettingsRequest) (*queries.SettingsView, error) {
	patch, err := req.ToPatch()
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidSettings)
	}

	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Settings().Update(ctx, tx.DB(), patch, s.clock.Now()); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view, err := s.settingsQueries.Get(ctx)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return view, nil
}
