package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tablebook/config"
	otelMocks "tablebook/infras/otel/mocks"
	notifMocks "tablebook/internal/domains/notification/mocks"
	notifModel "tablebook/internal/domains/notification/model"
	resMocks "tablebook/internal/domains/reservation/mocks"
	"tablebook/internal/domains/reservation/model"
	"tablebook/internal/domains/reservation/model/dto"
	"tablebook/internal/domains/reservation/service"
	"tablebook/internal/domains/slot"
	cacheMocks "tablebook/shared/cache/mocks"
	"tablebook/shared/constant"
	gDto "tablebook/shared/dto"
	"tablebook/shared/failure"

	tableMocks "tablebook/internal/domains/table/mocks"
	tableModel "tablebook/internal/domains/table/model"
)

type fixture struct {
	repo       *resMocks.MockReservation
	tableRepo  *tableMocks.MockTable
	dispatcher *notifMocks.MockDispatcher
	cache      *cacheMocks.MockRedisCache
	cfg        *config.Config
	svc        service.Reservation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.App.Reservation.OpenTime = "11:00"
	cfg.App.Reservation.CloseTime = "21:00"
	cfg.App.Reservation.SlotMinutes = 60
	cfg.App.Reservation.AutoConfirmOnPayment = true
	cfg.App.Reservation.BaseFeeCents = 1000

	catalog, err := slot.NewCatalog(cfg)
	require.NoError(t, err)

	f := &fixture{
		repo:       resMocks.NewMockReservation(ctrl),
		tableRepo:  tableMocks.NewMockTable(ctrl),
		dispatcher: notifMocks.NewMockDispatcher(ctrl),
		cache:      cacheMocks.NewMockRedisCache(ctrl),
		cfg:        cfg,
	}

	// Cache writes and invalidations run on background goroutines, so they
	// may or may not land before the test finishes.
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.tableRepo, catalog, f.dispatcher, cfg, f.cache, otelMocks.NewOtel())

	return f
}

func gDtoParams() gDto.QueryParams {
	return gDto.QueryParams{Page: 1, Limit: 10, SortDir: gDto.SortDirAsc}
}

func testContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user")
}

func validCreateRequest() dto.CreateReservationRequest {
	return dto.CreateReservationRequest{
		CustomerName:    "Dina Rahma",
		CustomerPhone:   "+62811111111",
		CustomerEmail:   "dina@example.com",
		TableID:         "6d1c9f6a-9f5e-4a1e-8f99-6a3f1a2b3c4d",
		ReservationDate: "2030-06-15",
		TimeSlot:        "19:00",
		GuestCount:      4,
	}
}

func activeTable() tableModel.Table {
	return tableModel.Table{
		ID:       "6d1c9f6a-9f5e-4a1e-8f99-6a3f1a2b3c4d",
		Number:   7,
		Capacity: 6,
		Active:   true,
	}
}

func TestReservationService_Create(t *testing.T) {
	t.Run("successful booking", func(t *testing.T) {
		f := newFixture(t)
		req := validCreateRequest()

		f.tableRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeTable(), nil)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
		f.dispatcher.EXPECT().Dispatch(gomock.Any(), notifModel.EventReservationCreated, gomock.Any())

		res, err := f.svc.Create(testContext(), req)

		require.NoError(t, err)
		assert.NotEmpty(t, res.ID)
		assert.Equal(t, model.StatusPending, res.Status)
		assert.Equal(t, model.PaymentStatusUnpaid, res.PaymentStatus)
		assert.Equal(t, int64(4000), res.AmountCents)
		assert.Equal(t, 7, res.TableNumber)
	})

	t.Run("unknown time slot", func(t *testing.T) {
		f := newFixture(t)
		req := validCreateRequest()
		req.TimeSlot = "03:30"

		_, err := f.svc.Create(testContext(), req)

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("table not found", func(t *testing.T) {
		f := newFixture(t)

		f.tableRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tableModel.Table{}, nil)

		_, err := f.svc.Create(testContext(), validCreateRequest())

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("inactive table", func(t *testing.T) {
		f := newFixture(t)
		table := activeTable()
		table.Active = false

		f.tableRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(table, nil)

		_, err := f.svc.Create(testContext(), validCreateRequest())

		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	})

	t.Run("party exceeds capacity", func(t *testing.T) {
		f := newFixture(t)
		req := validCreateRequest()
		req.GuestCount = 10

		f.tableRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeTable(), nil)

		_, err := f.svc.Create(testContext(), req)

		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	})

	t.Run("slot already taken", func(t *testing.T) {
		f := newFixture(t)

		f.tableRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeTable(), nil)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := f.svc.Create(testContext(), validCreateRequest())

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("concurrent booking loses at insert", func(t *testing.T) {
		f := newFixture(t)

		f.tableRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeTable(), nil)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(failure.Conflict("table is already reserved for this date and time slot"))

		_, err := f.svc.Create(testContext(), validCreateRequest())

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("storage outage surfaces as transient", func(t *testing.T) {
		f := newFixture(t)

		f.tableRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeTable(), nil)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(failure.Transient("failed to store reservation: connection refused"))

		_, err := f.svc.Create(testContext(), validCreateRequest())

		require.Error(t, err)
		assert.True(t, failure.IsTransient(err))
	})
}

func TestReservationService_UpdateStatus(t *testing.T) {
	reservation := model.Reservation{
		ID:     "res-1",
		Status: model.StatusPending,
	}

	t.Run("pending to confirmed", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).AnyTimes()
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(reservation, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.dispatcher.EXPECT().Dispatch(gomock.Any(), notifModel.EventReservationConfirmed, gomock.Any())

		res, err := f.svc.UpdateStatus(testContext(), "res-1", model.StatusConfirmed)

		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, res.Status)
	})

	t.Run("confirmed to completed", func(t *testing.T) {
		f := newFixture(t)
		confirmed := reservation
		confirmed.Status = model.StatusConfirmed

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.dispatcher.EXPECT().Dispatch(gomock.Any(), notifModel.EventReservationCompleted, gomock.Any())

		res, err := f.svc.UpdateStatus(testContext(), "res-1", model.StatusCompleted)

		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, res.Status)
	})

	t.Run("concurrent transition loses the write", func(t *testing.T) {
		f := newFixture(t)

		// Both a cancel and a confirm read the reservation while it is still
		// pending. The first write lands; the second must match zero rows
		// because the guarded UPDATE pins the status it validated against.
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(reservation, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ map[string]any, filter gDto.FilterGroup) (int64, error) {
				guarded := false
				for _, raw := range filter.Filters {
					if flt, ok := raw.(gDto.Filter); ok && flt.Field == model.FieldStatus {
						guarded = assert.Equal(t, model.StatusPending, flt.Value)
					}
				}
				assert.True(t, guarded, "update must be guarded by the observed status")

				return 0, nil
			})

		_, err := f.svc.UpdateStatus(testContext(), "res-1", model.StatusConfirmed)

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("illegal transition", func(t *testing.T) {
		f := newFixture(t)
		cancelled := reservation
		cancelled.Status = model.StatusCancelled

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(cancelled, nil)

		_, err := f.svc.UpdateStatus(testContext(), "res-1", model.StatusConfirmed)

		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.UpdateStatus(testContext(), "res-1", "waitlisted")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("reservation not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{}, nil)

		_, err := f.svc.UpdateStatus(testContext(), "missing", model.StatusCancelled)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestReservationService_MarkPaid(t *testing.T) {
	pending := model.Reservation{
		ID:            "res-1",
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentStatusUnpaid,
		AmountCents:   4000,
	}

	t.Run("pending reservation auto confirms", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pending, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
				assert.Equal(t, model.PaymentStatusPaid, fields[model.FieldPaymentStatus])
				assert.Equal(t, model.StatusConfirmed, fields[model.FieldStatus])

				return 1, nil
			})
		f.dispatcher.EXPECT().Dispatch(gomock.Any(), notifModel.EventReservationPaid, gomock.Any())
		f.dispatcher.EXPECT().Dispatch(gomock.Any(), notifModel.EventReservationConfirmed, gomock.Any())

		res, err := f.svc.MarkPaid(testContext(), "res-1")

		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPaid, res.PaymentStatus)
		assert.Equal(t, model.StatusConfirmed, res.Status)
	})

	t.Run("auto confirm disabled keeps reservation pending", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.App.Reservation.AutoConfirmOnPayment = false

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pending, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
				assert.NotContains(t, fields, model.FieldStatus)

				return 1, nil
			})
		f.dispatcher.EXPECT().Dispatch(gomock.Any(), notifModel.EventReservationPaid, gomock.Any())

		res, err := f.svc.MarkPaid(testContext(), "res-1")

		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPaid, res.PaymentStatus)
		assert.Equal(t, model.StatusPending, res.Status)
	})

	t.Run("duplicate payment is a no-op", func(t *testing.T) {
		f := newFixture(t)
		paid := pending
		paid.PaymentStatus = model.PaymentStatusPaid
		paid.Status = model.StatusConfirmed

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(paid, nil)

		res, err := f.svc.MarkPaid(testContext(), "res-1")

		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPaid, res.PaymentStatus)
		assert.Equal(t, model.StatusConfirmed, res.Status)
	})

	t.Run("cancelled reservation cannot be paid", func(t *testing.T) {
		f := newFixture(t)
		cancelled := pending
		cancelled.Status = model.StatusCancelled

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(cancelled, nil)

		_, err := f.svc.MarkPaid(testContext(), "res-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
	})

	t.Run("reservation changed while payment in flight", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pending, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

		_, err := f.svc.MarkPaid(testContext(), "res-1")

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestReservationService_Get(t *testing.T) {
	t.Run("cache miss loads from repository", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Reservation{ID: "res-1", Status: model.StatusPending}, nil)

		res, err := f.svc.Get(testContext(), "res-1")

		require.NoError(t, err)
		assert.Equal(t, "res-1", res.ID)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{}, nil)

		_, err := f.svc.Get(testContext(), "missing")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestReservationService_GetPending(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	f.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Reservation{{ID: "res-1", Status: model.StatusPending}}, nil)

	res, err := f.svc.GetPending(testContext(), gDtoParams())

	require.NoError(t, err)
	require.Len(t, res.Reservations, 1)
	assert.Equal(t, model.StatusPending, res.Reservations[0].Status)
	assert.Equal(t, 1, res.TotalData)
}
