package contract

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCredentials(t *testing.T) {
	t.Run("primary variable", func(t *testing.T) {
		t.Setenv("G_TOKEN", " ghp_primary ")
		t.Setenv("PULSE_TOKEN", "ghp_secondary")
		c, err := LoadCredentials()
		require.NoError(t, err)
		assert.Equal(t, "ghp_primary", c.Token)
	})

	t.Run("fallback variable", func(t *testing.T) {
		t.Setenv("G_TOKEN", "")
		t.Setenv("PULSE_TOKEN", "ghp_secondary")
		c, err := LoadCredentials()
		require.NoError(t, err)
		assert.Equal(t, "ghp_secondary", c.Token)
	})

	t.Run("missing", func(t *testing.T) {
		t.Setenv("G_TOKEN", "")
		t.Setenv("PULSE_TOKEN", "")
		_, err := LoadCredentials()
		assert.True(t, errors.Is(err, ErrMissingCredential))
	})
}

func TestClocks(t *testing.T) {
	at := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.FixedZone("X", 3600))
	assert.Equal(t, time.UTC, FixedClock{T: at}.Now().Location())
	assert.True(t, FixedClock{T: at}.Now().Equal(at))
	assert.Equal(t, time.UTC, SystemClock{}.Now().Location())
}
