package slot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablebook/config"
	"tablebook/internal/domains/slot"
)

func newConfig(open, closing string, minutes int) *config.Config {
	cfg := &config.Config{}
	cfg.App.Reservation.OpenTime = open
	cfg.App.Reservation.CloseTime = closing
	cfg.App.Reservation.SlotMinutes = minutes

	return cfg
}

func TestNewCatalog(t *testing.T) {
	t.Run("hourly slots over the full day window", func(t *testing.T) {
		catalog, err := slot.NewCatalog(newConfig("11:00", "21:00", 60))

		require.NoError(t, err)
		assert.Equal(t, 11, catalog.Len())

		labels := catalog.Labels()
		assert.Equal(t, "11:00", labels[0])
		assert.Equal(t, "21:00", labels[len(labels)-1])
	})

	t.Run("half hour slots", func(t *testing.T) {
		catalog, err := slot.NewCatalog(newConfig("18:00", "20:00", 30))

		require.NoError(t, err)
		assert.Equal(t, []string{"18:00", "18:30", "19:00", "19:30", "20:00"}, catalog.Labels())
	})

	t.Run("close before open", func(t *testing.T) {
		_, err := slot.NewCatalog(newConfig("21:00", "11:00", 60))

		assert.ErrorIs(t, err, slot.ErrInvalidWindow)
	})

	t.Run("zero slot minutes", func(t *testing.T) {
		_, err := slot.NewCatalog(newConfig("11:00", "21:00", 0))

		assert.ErrorIs(t, err, slot.ErrInvalidMinutes)
	})

	t.Run("malformed open time", func(t *testing.T) {
		_, err := slot.NewCatalog(newConfig("11am", "21:00", 60))

		assert.Error(t, err)
	})
}

func TestCatalog_Contains(t *testing.T) {
	catalog, err := slot.NewCatalog(newConfig("11:00", "21:00", 60))
	require.NoError(t, err)

	assert.True(t, catalog.Contains("11:00"))
	assert.True(t, catalog.Contains("19:00"))
	assert.False(t, catalog.Contains("19:30"))
	assert.False(t, catalog.Contains("22:00"))
	assert.False(t, catalog.Contains(""))
}

func TestCatalog_LabelsIsACopy(t *testing.T) {
	catalog, err := slot.NewCatalog(newConfig("18:00", "20:00", 60))
	require.NoError(t, err)

	labels := catalog.Labels()
	labels[0] = "tampered"

	assert.Equal(t, "18:00", catalog.Labels()[0])
}
