package catalog

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPresence_VisibleAt(t *testing.T) {
	loc := uuid.New()
	other := uuid.New()

	// Exhaustive over (in present, in absent, all locations)
	for _, inPresent := range []bool{false, true} {
		for _, inAbsent := range []bool{false, true} {
			for _, all := range []bool{false, true} {
				name := fmt.Sprintf("present=%v absent=%v all=%v", inPresent, inAbsent, all)
				t.Run(name, func(t *testing.T) {
					present := []uuid.UUID{other}
					absent := []uuid.UUID{other}
					if inPresent {
						present = append(present, loc)
					}
					if inAbsent {
						absent = append(absent, loc)
					}
					p := NewPresence(all, present, absent)

					expected := inPresent || (all && !inAbsent)
					assert.Equal(t, expected, p.VisibleAt(loc))
				})
			}
		}
	}

	t.Run("explicit presence wins over explicit absence", func(t *testing.T) {
		p := NewPresence(false, []uuid.UUID{loc}, []uuid.UUID{loc})
		assert.True(t, p.VisibleAt(loc))
	})

	t.Run("present everywhere", func(t *testing.T) {
		assert.True(t, PresentEverywhere().VisibleAt(loc))
	})

	t.Run("zero value is visible nowhere", func(t *testing.T) {
		assert.False(t, Presence{}.VisibleAt(loc))
	})
}

func TestPresence_Equals(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	p1 := NewPresence(true, []uuid.UUID{a, b, a}, nil)
	p2 := NewPresence(true, []uuid.UUID{b, a}, []uuid.UUID{})

	assert.True(t, p1.Equals(p2))
	assert.False(t, p1.Equals(NewPresence(false, []uuid.UUID{a, b}, nil)))
}

func TestFilterVisible(t *testing.T) {
	loc := uuid.New()
	items := []*Item{
		{Name: "everywhere", Presence: PresentEverywhere()},
		{Name: "excluded", Presence: NewPresence(true, nil, []uuid.UUID{loc})},
		{Name: "only here", Presence: NewPresence(false, []uuid.UUID{loc}, nil)},
		{Name: "nowhere", Presence: NewPresence(false, nil, nil)},
	}

	visible := FilterVisible(items, func(i *Item) Presence { return i.Presence }, loc)

	names := make([]string, len(visible))
	for i, item := range visible {
		names[i] = item.Name
	}
	assert.Equal(t, []string{"everywhere", "only here"}, names)
}
