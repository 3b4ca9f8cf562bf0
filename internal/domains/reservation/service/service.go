package service

import (
	"context"
	"fmt"
	"tablebook/config"
	"tablebook/infras/otel"
	notifModel "tablebook/internal/domains/notification/model"
	notifService "tablebook/internal/domains/notification/service"
	"tablebook/internal/domains/reservation/model"
	"tablebook/internal/domains/reservation/model/dto"
	"tablebook/internal/domains/reservation/repository"
	"tablebook/internal/domains/slot"
	"tablebook/shared"
	"tablebook/shared/cache"
	"tablebook/shared/constant"
	gDto "tablebook/shared/dto"
	"tablebook/shared/failure"
	"tablebook/shared/timezone"

	tableModel "tablebook/internal/domains/table/model"
	tableRepo "tablebook/internal/domains/table/repository"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetReservation    = "reservation:get"
	cacheGetAllReservation = "reservation:gets"
	cacheCountReservation  = "reservation:count"
)

type Reservation interface {
	Create(ctx context.Context, req dto.CreateReservationRequest) (dto.ReservationResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetReservationsResponse, error)
	Count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.ReservationResponse, error)
	GetPending(ctx context.Context, params gDto.QueryParams) (dto.GetReservationsResponse, error)
	UpdateStatus(ctx context.Context, id, status string) (dto.ReservationResponse, error)
	MarkPaid(ctx context.Context, id string) (dto.ReservationResponse, error)
}

type serviceImpl struct {
	repo       repository.Reservation
	tableRepo  tableRepo.Table
	catalog    *slot.Catalog
	dispatcher notifService.Dispatcher
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
}

func New(
	repo repository.Reservation,
	tableRepo tableRepo.Table,
	catalog *slot.Catalog,
	dispatcher notifService.Dispatcher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Reservation {
	return &serviceImpl{
		repo:       repo,
		tableRepo:  tableRepo,
		catalog:    catalog,
		dispatcher: dispatcher,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
	}
}

// Create books a table slot. Checks run from cheapest to most contended:
// request shape, table existence and capacity, then slot conflict. The
// conflict check here is advisory; the database unique index is what actually
// prevents two concurrent requests from both booking the slot.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !s.catalog.Contains(req.TimeSlot) {
		return res, failure.BadRequestFromString(fmt.Sprintf("unknown time slot %q", req.TimeSlot)) // nolint:wrapcheck
	}

	table, err := s.tableRepo.Get(ctx, shared.FilterByID(req.TableID, tableModel.FieldID, tableModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get table for reservation")

		return res, fmt.Errorf("failed to get table for reservation: %w", err)
	}

	if table.ID == constant.Empty {
		return res, failure.NotFound("table not found") // nolint:wrapcheck
	}

	if !table.Active {
		return res, failure.UnprocessableEntity("table is not accepting reservations") // nolint:wrapcheck
	}

	if req.GuestCount > table.Capacity {
		return res, failure.UnprocessableEntity(
			fmt.Sprintf("party of %d exceeds table capacity of %d", req.GuestCount, table.Capacity),
		) // nolint:wrapcheck
	}

	taken, err := s.repo.Exist(ctx, filterBySlot(req.TableID, req.ReservationDate, req.TimeSlot))
	if err != nil {
		log.Error().Err(err).Msg("failed to check slot availability")

		return res, fmt.Errorf("failed to check slot availability: %w", err)
	}

	if taken {
		return res, failure.Conflict("table is already reserved for this date and time slot") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	amount := int64(s.cfg.App.Reservation.BaseFeeCents) * int64(req.GuestCount)
	reservation := req.ToModel(user, amount)

	if err = s.repo.Insert(ctx, reservation); err != nil {
		log.Error().Err(err).Msg("failed to create reservation")

		return res, err
	}

	s.dispatcher.Dispatch(ctx, notifModel.EventReservationCreated, reservation)
	s.invalidate(ctx, reservation.ID)

	res.FromModel(reservation)
	res.TableNumber = table.Number

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllReservation, params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservations")

		return res, nil
	}

	total, err := s.Count(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservations to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountReservation, params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservation count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservation count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetReservation, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservation")

		return res, nil
	}

	reservation, err := s.getByID(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(reservation)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservation to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetPending(ctx context.Context, params gDto.QueryParams) (dto.GetReservationsResponse, error) {
	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldStatus,
				Value:    model.StatusPending,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	return s.GetAll(ctx, params, filter)
}

// UpdateStatus moves a reservation through its lifecycle. Illegal transitions
// are rejected without touching storage. The write itself is guarded by the
// status the transition was validated against, so a concurrent transition on
// the same reservation matches zero rows and surfaces as a conflict instead
// of overwriting it.
func (s *serviceImpl) UpdateStatus(ctx context.Context, id, status string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !model.IsValidStatus(status) {
		return res, failure.BadRequestFromString(fmt.Sprintf("unknown reservation status %q", status)) // nolint:wrapcheck
	}

	reservation, err := s.getByID(ctx, id)
	if err != nil {
		return res, err
	}

	if !model.CanTransition(reservation.Status, status) {
		return res, failure.UnprocessableEntity(
			fmt.Sprintf("reservation cannot move from %s to %s", reservation.Status, status),
		) // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	updatedFields := map[string]any{
		model.FieldStatus:        status,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}

	affected, err := s.repo.Update(ctx, updatedFields, filterByIDAndStatus(id, reservation.Status))
	if err != nil {
		log.Error().Err(err).Msg("failed to update reservation status")

		return res, fmt.Errorf("failed to update reservation status: %w", err)
	}

	if affected == 0 {
		return res, failure.Conflict(
			fmt.Sprintf("reservation is no longer %s, refresh and retry", reservation.Status),
		) // nolint:wrapcheck
	}

	reservation.Status = status

	if event, ok := statusEvents[status]; ok {
		s.dispatcher.Dispatch(ctx, event, reservation)
	}

	s.invalidate(ctx, id)

	res.FromModel(reservation)

	return res, nil
}

// MarkPaid records a completed payment. Paying again is a no-op, cancelled
// reservations cannot be paid, and a pending reservation is auto confirmed
// when the policy is enabled. The write is guarded by the status and payment
// status observed above; a reservation that moved underneath the webhook
// matches zero rows and comes back as a conflict.
func (s *serviceImpl) MarkPaid(ctx context.Context, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkPaid")
	defer scope.End()
	defer scope.TraceIfError(err)

	reservation, err := s.getByID(ctx, id)
	if err != nil {
		return res, err
	}

	if reservation.PaymentStatus == model.PaymentStatusPaid {
		log.Info().Str("reservationID", id).Msg("reservation already paid, ignoring duplicate payment")

		res.FromModel(reservation)

		return res, nil
	}

	if reservation.Status == model.StatusCancelled {
		return res, failure.UnprocessableEntity("cancelled reservation cannot be paid") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	updatedFields := map[string]any{
		model.FieldPaymentStatus: model.PaymentStatusPaid,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}

	autoConfirm := s.cfg.App.Reservation.AutoConfirmOnPayment && reservation.Status == model.StatusPending
	if autoConfirm {
		updatedFields[model.FieldStatus] = model.StatusConfirmed
	}

	filter := filterByIDAndStatus(id, reservation.Status)
	filter.Filters = append(filter.Filters, gDto.Filter{
		Field:    model.FieldPaymentStatus,
		Value:    reservation.PaymentStatus,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	})

	affected, err := s.repo.Update(ctx, updatedFields, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to mark reservation as paid")

		return res, fmt.Errorf("failed to mark reservation as paid: %w", err)
	}

	if affected == 0 {
		return res, failure.Conflict("reservation changed while processing payment, refresh and retry") // nolint:wrapcheck
	}

	reservation.PaymentStatus = model.PaymentStatusPaid
	if autoConfirm {
		reservation.Status = model.StatusConfirmed
	}

	s.dispatcher.Dispatch(ctx, notifModel.EventReservationPaid, reservation)

	if autoConfirm {
		s.dispatcher.Dispatch(ctx, notifModel.EventReservationConfirmed, reservation)
	}

	s.invalidate(ctx, id)

	res.FromModel(reservation)

	return res, nil
}

func (s *serviceImpl) getByID(ctx context.Context, id string) (model.Reservation, error) {
	reservation, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return reservation, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return reservation, failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	return reservation, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetReservation, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete reservation from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllReservation)
		shared.InvalidateCaches(c, s.cache, cacheCountReservation)
		shared.InvalidateCaches(c, s.cache, constant.CacheKeyAvailability)
	}()
}

var statusEvents = map[string]string{
	model.StatusConfirmed: notifModel.EventReservationConfirmed,
	model.StatusCancelled: notifModel.EventReservationCancelled,
	model.StatusCompleted: notifModel.EventReservationCompleted,
}

// filterByIDAndStatus pins a status write to the status the caller observed,
// turning the check-then-mutate into a compare-and-swap on the row.
func filterByIDAndStatus(id, status string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldID,
				Value:    id,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Value:    status,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}
}

func filterBySlot(tableID, date, timeSlot string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldTableID,
				Value:    tableID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldReservationDate,
				Value:    date,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldTimeSlot,
				Value:    timeSlot,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Value:    model.ActiveStatuses,
				Operator: gDto.FilterOperatorIn,
				Table:    model.TableName,
			},
		},
	}
}
