package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the internal identity and audit timestamps of a stored row.
// Internal IDs never leave this service; upstream IDs live beside them.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity assigns a fresh internal ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// Touch stamps UpdatedAt after a field actually changed
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}
