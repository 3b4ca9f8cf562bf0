package service

import (
	"context"
	"fmt"
	"strconv"
	"tablebook/config"
	"tablebook/infras/otel"
	"tablebook/internal/domains/availability/model/dto"
	"tablebook/internal/domains/slot"
	"tablebook/shared"
	"tablebook/shared/cache"
	"tablebook/shared/constant"
	"tablebook/shared/failure"
	"tablebook/shared/timezone"

	resRepo "tablebook/internal/domains/reservation/repository"
	tableModel "tablebook/internal/domains/table/model"
	tableRepo "tablebook/internal/domains/table/repository"

	"github.com/rs/zerolog/log"
)

type Availability interface {
	Compute(ctx context.Context, date string, guestCount int) (dto.AvailabilityResponse, error)
}

type serviceImpl struct {
	tableRepo       tableRepo.Table
	reservationRepo resRepo.Reservation
	catalog         *slot.Catalog
	cfg             *config.Config
	cache           cache.RedisCache
	otel            otel.Otel
}

func New(
	tableRepo tableRepo.Table,
	reservationRepo resRepo.Reservation,
	catalog *slot.Catalog,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Availability {
	return &serviceImpl{
		tableRepo:       tableRepo,
		reservationRepo: reservationRepo,
		catalog:         catalog,
		cfg:             cfg,
		cache:           cache,
		otel:            otel,
	}
}

// Compute builds the day view for a date and party size: every slot in the
// catalog, each with the active tables that fit the party and are not held by
// a pending or confirmed reservation. The view is cached per date and party
// size and invalidated on every booking mutation.
func (s *serviceImpl) Compute(ctx context.Context, date string, guestCount int) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Compute")
	defer scope.End()
	defer scope.TraceIfError(err)

	if guestCount < 1 {
		return res, failure.BadRequestFromString("guest count must be at least 1") // nolint:wrapcheck
	}

	day, err := timezone.Parse(constant.CalendarDayFormat, date)
	if err != nil {
		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date)) // nolint:wrapcheck
	}

	today, _ := timezone.Parse(constant.CalendarDayFormat, timezone.Format(timezone.Now(), constant.CalendarDayFormat))
	if day.Before(today) {
		return res, failure.BadRequestFromString("date must not be in the past") // nolint:wrapcheck
	}

	cacheKey := shared.BuildCacheKey(constant.CacheKeyAvailability, date, strconv.Itoa(guestCount))

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for availability")

		return res, nil
	}

	tables, err := s.tableRepo.ListActive(ctx, guestCount)
	if err != nil {
		log.Error().Err(err).Msg("failed to list tables for availability")

		return res, fmt.Errorf("failed to list tables for availability: %w", err)
	}

	reservations, err := s.reservationRepo.ListHoldingSlots(ctx, date)
	if err != nil {
		log.Error().Err(err).Msg("failed to list reservations for availability")

		return res, fmt.Errorf("failed to list reservations for availability: %w", err)
	}

	held := make(map[string]map[string]bool, s.catalog.Len())
	for _, reservation := range reservations {
		if held[reservation.TimeSlot] == nil {
			held[reservation.TimeSlot] = make(map[string]bool)
		}

		held[reservation.TimeSlot][reservation.TableID] = true
	}

	res.Date = date
	res.GuestCount = guestCount
	res.Slots = make([]dto.SlotAvailability, 0, s.catalog.Len())

	for _, label := range s.catalog.Labels() {
		slotView := dto.SlotAvailability{
			TimeSlot: label,
			Tables:   openTables(tables, held[label]),
		}

		slotView.Available = len(slotView.Tables) > 0
		if slotView.Available {
			res.HasAvailability = true
		}

		res.Slots = append(res.Slots, slotView)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save availability to cache")
		}
	}()

	return res, nil
}

func openTables(tables []tableModel.Table, heldTables map[string]bool) []dto.AvailableTable {
	open := make([]dto.AvailableTable, 0, len(tables))

	for _, table := range tables {
		if heldTables[table.ID] {
			continue
		}

		var available dto.AvailableTable

		available.FromModel(table)
		open = append(open, available)
	}

	return open
}
