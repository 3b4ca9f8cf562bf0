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
	resMocks "tablebook/internal/domains/reservation/mocks"
	resModel "tablebook/internal/domains/reservation/model"
	tableMocks "tablebook/internal/domains/table/mocks"
	"tablebook/internal/domains/table/model"
	"tablebook/internal/domains/table/model/dto"
	"tablebook/internal/domains/table/service"
	cacheMocks "tablebook/shared/cache/mocks"
	"tablebook/shared/constant"
	gDto "tablebook/shared/dto"
	"tablebook/shared/failure"
)

type fixture struct {
	repo    *tableMocks.MockTable
	resRepo *resMocks.MockReservation
	cache   *cacheMocks.MockRedisCache
	svc     service.Table
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	f := &fixture{
		repo:    tableMocks.NewMockTable(ctrl),
		resRepo: resMocks.NewMockReservation(ctrl),
		cache:   cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.resRepo, cfg, f.cache, otelMocks.NewOtel())

	return f
}

func testContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "test-admin")
}

func TestTableService_Create(t *testing.T) {
	req := dto.CreateTableRequest{Number: 7, Capacity: 4, Location: "terrace"}

	t.Run("successful creation", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.Create(testContext(), req)

		require.NoError(t, err)
		assert.NotEmpty(t, res.ID)
		assert.Equal(t, 7, res.Number)
		assert.True(t, res.Active)
	})

	t.Run("duplicate table number", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := f.svc.Create(testContext(), req)

		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("repository error", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))

		_, err := f.svc.Create(testContext(), req)

		assert.Error(t, err)
	})
}

func TestTableService_Get(t *testing.T) {
	t.Run("cache miss loads from repository", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Table{ID: "t1", Number: 3, Capacity: 2, Active: true}, nil)
		f.resRepo.EXPECT().ListHoldingSlots(gomock.Any(), gomock.Any()).Return(nil, nil)

		res, err := f.svc.Get(testContext(), "t1")

		require.NoError(t, err)
		assert.Equal(t, 3, res.Number)
		assert.Equal(t, model.DisplayStatusAvailable, res.Status)
	})

	t.Run("table holding a reservation today shows as reserved", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(model.Table{ID: "t1", Number: 3, Capacity: 2, Active: true}, nil)
		f.resRepo.EXPECT().
			ListHoldingSlots(gomock.Any(), gomock.Any()).
			Return([]resModel.Reservation{{ID: "res-1", TableID: "t1", Status: resModel.StatusPending}}, nil)

		res, err := f.svc.Get(testContext(), "t1")

		require.NoError(t, err)
		assert.Equal(t, model.DisplayStatusReserved, res.Status)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Table{}, nil)

		_, err := f.svc.Get(testContext(), "missing")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestTableService_GetAll(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
	f.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Table{
			{ID: "t1", Number: 1, Capacity: 2, Active: true},
			{ID: "t2", Number: 2, Capacity: 4, Active: true},
		}, nil)
	f.resRepo.EXPECT().
		ListHoldingSlots(gomock.Any(), gomock.Any()).
		Return([]resModel.Reservation{{ID: "res-1", TableID: "t2", Status: resModel.StatusConfirmed}}, nil)

	res, err := f.svc.GetAll(testContext(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

	require.NoError(t, err)
	require.Len(t, res.Tables, 2)
	assert.Equal(t, model.DisplayStatusAvailable, res.Tables[0].Status)
	assert.Equal(t, model.DisplayStatusReserved, res.Tables[1].Status)
}

func TestTableService_Update(t *testing.T) {
	active := true
	req := dto.UpdateTableRequest{Location: "window", Active: &active}

	t.Run("successful update", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)

		assert.NoError(t, f.svc.Update(testContext(), req, "t1"))
	})

	t.Run("table removed between check and write", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

		err := f.svc.Update(testContext(), req, "t1")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("empty request", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Update(testContext(), dto.UpdateTableRequest{}, "t1")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("table not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		err := f.svc.Update(testContext(), req, "missing")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestTableService_Delete(t *testing.T) {
	t.Run("unreferenced table is deleted", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.resRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		assert.NoError(t, f.svc.Delete(testContext(), "t1"))
	})

	t.Run("referenced table is deactivated instead", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.resRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ any) (int64, error) {
				assert.Equal(t, false, fields[model.FieldActive])

				return 1, nil
			})

		assert.NoError(t, f.svc.Delete(testContext(), "t1"))
	})

	t.Run("table not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		err := f.svc.Delete(testContext(), "missing")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}
