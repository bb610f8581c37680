package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	prev := ""
	for i := 0; i < 100; i++ {
		id := New(at)
		assert.Len(t, id, 26)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestTimeRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 6, 7, 8, 9, 123_000_000, time.UTC)
	got, err := Time(New(at))
	require.NoError(t, err)
	assert.True(t, got.Equal(at), "got %v", got)

	_, err = Time("not-a-ulid")
	assert.Error(t, err)
}
