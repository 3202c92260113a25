package shared

import "github.com/google/uuid"

// BaseAggregateRoot is a versioned entity that buffers the events raised while it
// is mutated. Services save the root first and publish the buffer afterwards.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// IncrementVersion marks a state change that repositories persist with the row
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns the buffered events in the order they were raised
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// MerchantAggregateRoot is a root owned by one merchant. Every query on it is
// filtered by MerchantID.
type MerchantAggregateRoot struct {
	BaseAggregateRoot
	MerchantID uuid.UUID
}

func NewMerchantAggregateRoot(merchantID uuid.UUID) MerchantAggregateRoot {
	return MerchantAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), MerchantID: merchantID}
}
