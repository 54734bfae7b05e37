package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Params
		want Params
	}{
		{"zero limit uses default", Params{}, Params{Limit: DefaultLimit}},
		{"negative limit raised to min", Params{Limit: -5}, Params{Limit: MinLimit}},
		{"large limit capped", Params{Limit: 500, Offset: 3}, Params{Limit: MaxLimit, Offset: 3}},
		{"negative offset reset", Params{Limit: 10, Offset: -1}, Params{Limit: 10}},
		{"in range untouched", Params{Limit: 50, Offset: 40}, Params{Limit: 50, Offset: 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Clamp())
		})
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		params    Params
		wantStart int
		wantEnd   int
	}{
		{"first page", 45, Params{Limit: 20, Offset: 0}, 0, 20},
		{"middle page", 45, Params{Limit: 20, Offset: 20}, 20, 40},
		{"last partial page", 45, Params{Limit: 20, Offset: 40}, 40, 45},
		{"offset past end", 45, Params{Limit: 20, Offset: 60}, 45, 45},
		{"empty collection", 0, Params{Limit: 20, Offset: 0}, 0, 0},
		{"max offset", 45, Params{Limit: 20, Offset: math.MaxInt}, 45, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(tt.total, tt.params)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestHasNextHasPrev(t *testing.T) {
	assert.True(t, HasNext(45, Params{Limit: 20, Offset: 0}))
	assert.True(t, HasNext(45, Params{Limit: 20, Offset: 20}))
	assert.False(t, HasNext(45, Params{Limit: 20, Offset: 40}))
	assert.False(t, HasNext(40, Params{Limit: 20, Offset: 20}))
	assert.False(t, HasNext(2, Params{Limit: 20, Offset: math.MaxInt}))
	assert.False(t, HasNext(math.MaxInt, Params{Limit: MaxLimit, Offset: math.MaxInt - 1}))

	assert.False(t, HasPrev(Params{Limit: 20, Offset: 0}))
	assert.True(t, HasPrev(Params{Limit: 20, Offset: 1}))
}
