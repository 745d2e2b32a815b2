// package models defines the data model for flow: playlist items, requests, tokens and the records
// kept in the local cache.
package models

import (
	"time"
)

// Model is implemented by every record the repositories persist ([Session], [PersistedPlaylist]).
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error // checked before every insert or update
}

// Repository is the CRUD contract shared by the SQLite repositories.
//
// List criteria are optional equality filters. Each implementation documents the keys it reads.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}

var (
	_ Model = (*Session)(nil)
	_ Model = (*PersistedPlaylist)(nil)
)
