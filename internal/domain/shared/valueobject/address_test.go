package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAddress(t *testing.T) {
	addr := NewAddress(" 1455 Market St ", "", "San Francisco", "CA", "94103", "us")

	assert.Equal(t, "1455 Market St", addr.Line1)
	assert.Equal(t, "US", addr.Country)
	assert.False(t, addr.IsEmpty())
	assert.Equal(t, "1455 Market St, San Francisco, CA, 94103, US", addr.String())
}

func TestAddress_Equals(t *testing.T) {
	a := NewAddress("1 Main", "", "Austin", "TX", "73301", "US")
	b := NewAddress("1 Main", "", "Austin", "TX", "73301", "US")
	c := NewAddress("2 Main", "", "Austin", "TX", "73301", "US")

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.True(t, Address{}.IsEmpty())
}
