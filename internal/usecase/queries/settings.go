package queries

import "context"

type SettingsQueries interface {
	Get(ctx context.Context) (*SettingsView, error)
}

type SettingsReadStore interface {
	Get(ctx context.Context) (*SettingsView, error)
}

type settingsQueriesImpl struct {
	repo SettingsReadStore
}

func NewSettingsQueries(repo SettingsReadStore) SettingsQueries {
	return &settingsQueriesImpl{repo: repo}
}

func (q *settingsQueriesImpl) Get(ctx context.Context) (*SettingsView, error) {
	return q.repo.Get(ctx)
}
