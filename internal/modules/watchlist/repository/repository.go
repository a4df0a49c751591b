package repository

import "github.com/reshetovitsme/relaywatch/internal/modules/watchlist/domain"

// Repository persists the whole watch list store at once
type Repository interface {
	Load() (domain.Store, error)
	Save(store domain.Store) error
}
