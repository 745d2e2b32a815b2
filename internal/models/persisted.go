package models

import (
	"fmt"
	"time"
)

// PersistedPlaylist is the cached header of a fetched playlist.
//
// At most one live row exists per (kind, argument); its items are stored separately and replaced wholesale.
type PersistedPlaylist struct {
	id        string
	sequence  int
	kind      RequestKind
	argument  string
	name      string
	itemCount int
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedPlaylist creates a header for the given request.
func NewPersistedPlaylist(req Request, name string, itemCount int) *PersistedPlaylist {
	now := time.Now()
	return &PersistedPlaylist{
		kind:      req.Kind,
		argument:  req.Argument(),
		name:      name,
		itemCount: itemCount,
		createdAt: now,
		updatedAt: now,
	}
}

// RestorePersistedPlaylist rebuilds a header read from storage.
func RestorePersistedPlaylist(
	id string, sequence int, kind RequestKind, argument, name string, itemCount int,
	createdAt, updatedAt time.Time, deletedAt *time.Time,
) *PersistedPlaylist {
	return &PersistedPlaylist{
		id: id, sequence: sequence, kind: kind, argument: argument, name: name, itemCount: itemCount,
		createdAt: createdAt, updatedAt: updatedAt, deletedAt: deletedAt,
	}
}

func (p *PersistedPlaylist) ID() string { return p.id }
func (p *PersistedPlaylist) SetID(id string) { p.id = id }
func (p *PersistedPlaylist) Sequence() int { return p.sequence }
func (p *PersistedPlaylist) SetSequence(n int) { p.sequence = n }
func (p *PersistedPlaylist) Kind() RequestKind { return p.kind }
func (p *PersistedPlaylist) Argument() string { return p.argument }
func (p *PersistedPlaylist) Name() string { return p.name }
func (p *PersistedPlaylist) ItemCount() int { return p.itemCount }
func (p *PersistedPlaylist) SetItemCount(n int) { p.itemCount = n }
func (p *PersistedPlaylist) CreatedAt() time.Time { return p.createdAt }
func (p *PersistedPlaylist) UpdatedAt() time.Time { return p.updatedAt }
func (p *PersistedPlaylist) SetUpdatedAt(t time.Time) { p.updatedAt = t }
func (p *PersistedPlaylist) DeletedAt() *time.Time { return p.deletedAt }
func (p *PersistedPlaylist) IsDeleted() bool { return p.deletedAt != nil }

// Request returns the request this playlist was fetched with.
func (p *PersistedPlaylist) Request() Request {
	return RequestFor(p.kind, p.argument)
}

// Validate checks the kind is known and the header has a name.
func (p *PersistedPlaylist) Validate() error {
	if _, err := ParseRequestKind(string(p.kind)); err != nil {
		return err
	}
	if p.name == "" {
		return fmt.Errorf("name is required")
	}
	if p.itemCount < 0 {
		return fmt.Errorf("item count must not be negative")
	}
	return nil
}
