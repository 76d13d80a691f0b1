package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	a := New(BusTrip)
	b := New(BusTrip)
	assert.NotEqual(t, a, b)
	assert.True(t, HasPrefix(a, BusTrip))
	assert.False(t, HasPrefix(a, TicketBusTrip))
	assert.Len(t, a, len("BT-")+32)
}
