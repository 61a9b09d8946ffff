package engine

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestLoadSet(t *testing.T) {
	s := NewLoadSet()
	assert.True(t, s.Loaded())
	assert.False(t, s.Failed())
	assert.Equal(t, 100.0, s.PercentLoaded())

	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("a"))
	s.Add("b")
	s.Add("c")
	s.Add("d")
	assert.False(t, s.Loaded())
	assert.Equal(t, 0.0, s.PercentLoaded())

	s.Done("a", nil)
	s.Done("b", errors.New("404"))
	assert.Equal(t, 50.0, s.PercentLoaded())
	assert.True(t, s.Failed())
	assert.EqualError(t, s.Err("b"), "404")

	st, found := s.State("b")
	assert.True(t, found)
	assert.Equal(t, LoadFailed, st)

	s.Reset("b")
	assert.False(t, s.Failed())
	st, _ = s.State("b")
	assert.Equal(t, LoadPending, st)

	s.Remove("b")
	s.Remove("c")
	s.Remove("d")
	assert.True(t, s.Loaded())
	assert.Equal(t, 1, s.Len())

	_, found = s.State("b")
	assert.False(t, found)
}

func TestLoadStateString(t *testing.T) {
	tests := []struct {
		s    LoadState
		want string
	}{
		{LoadPending, "pending"},
		{LoadReady, "ready"},
		{LoadFailed, "failed"},
		{LoadState(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("LoadState(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
