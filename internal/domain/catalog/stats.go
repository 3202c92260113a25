package catalog

// EntityType names a reconciled entity kind in stats, logs and metrics
type EntityType string

const (
	EntityLocation     EntityType = "location"
	EntityCategory     EntityType = "category"
	EntityItem         EntityType = "item"
	EntityModifierList EntityType = "modifier_list"
	EntityModifier     EntityType = "modifier"
	EntityVariation    EntityType = "variation"
	EntityLink         EntityType = "item_modifier_list_link"
	EntityImage        EntityType = "image"
)

// Outcome is what a single reconcile call did to the store
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeCreated
	OutcomeUpdated
)

// String returns the metric label of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// EntityStats counts reconcile outcomes for one entity type
type EntityStats struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// SyncStats counts reconcile outcomes per entity type for one sync pass
type SyncStats map[EntityType]EntityStats

// Record adds one outcome
func (s SyncStats) Record(t EntityType, o Outcome) {
	st := s[t]
	switch o {
	case OutcomeCreated:
		st.Created++
	case OutcomeUpdated:
		st.Updated++
	default:
		st.Unchanged++
	}
	s[t] = st
}

// Writes returns how many rows were created or updated
func (s SyncStats) Writes() int {
	total := 0
	for _, st := range s {
		total += st.Created + st.Updated
	}
	return total
}
