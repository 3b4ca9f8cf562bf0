package di

import (
	"tablebook/config"
	"tablebook/internal/domains/slot"

	"github.com/rs/zerolog/log"
)

func provideSlotCatalog(cfg *config.Config) *slot.Catalog {
	catalog, err := slot.NewCatalog(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build time slot catalog")
	}

	return catalog
}
