package slot

import (
	"errors"
	"fmt"
	"slices"
	"tablebook/config"
	"tablebook/shared/constant"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyCatalog   = errors.New("slot catalog is empty, check reservation open/close configuration")
	ErrInvalidWindow  = errors.New("reservation close time must be after open time")
	ErrInvalidMinutes = errors.New("slot interval must be a positive number of minutes")
)

// Catalog is the fixed, ordered set of bookable time slots for a service day.
// It is derived from configuration once at startup and never changes for the
// life of the process.
type Catalog struct {
	labels []string
}

// NewCatalog builds the slot catalog from the configured opening window.
// A window that produces no slots is a configuration error; the service
// refuses to start rather than run with an empty catalog.
func NewCatalog(cfg *config.Config) (*Catalog, error) {
	res := cfg.App.Reservation

	if res.SlotMinutes <= 0 {
		return nil, ErrInvalidMinutes
	}

	open, err := time.Parse(constant.SlotLabelFormat, res.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation open time %q: %w", res.OpenTime, err)
	}

	closing, err := time.Parse(constant.SlotLabelFormat, res.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation close time %q: %w", res.CloseTime, err)
	}

	if !closing.After(open) {
		return nil, ErrInvalidWindow
	}

	labels := []string{}
	step := time.Duration(res.SlotMinutes) * time.Minute

	for t := open; !t.After(closing); t = t.Add(step) {
		labels = append(labels, t.Format(constant.SlotLabelFormat))
	}

	if len(labels) == 0 {
		return nil, ErrEmptyCatalog
	}

	log.Info().
		Str("open", res.OpenTime).
		Str("close", res.CloseTime).
		Int("slotMinutes", res.SlotMinutes).
		Int("slots", len(labels)).
		Msg("Slot catalog initialized")

	return &Catalog{labels: labels}, nil
}

// Labels returns the ordered slot labels. The returned slice is a copy;
// callers cannot mutate the catalog.
func (c *Catalog) Labels() []string {
	return slices.Clone(c.labels)
}

// Contains reports whether the given label is a bookable slot.
func (c *Catalog) Contains(label string) bool {
	return slices.Contains(c.labels, label)
}

// Len returns the number of slots in a service day.
func (c *Catalog) Len() int {
	return len(c.labels)
}
