package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"tablebook/infras/otel"
	"tablebook/infras/postgres"
	"tablebook/internal/domains/reservation/model"
	"tablebook/shared/constant"
	"tablebook/shared/dto"
	"tablebook/shared/failure"
	gRepo "tablebook/shared/repository"

	"github.com/lib/pq"
)

type Reservation interface {
	Insert(ctx context.Context, reservation model.Reservation) error
	Exist(ctx context.Context, filter dto.FilterGroup) (bool, error)
	Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (model.Reservation, error)
	GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]model.Reservation, error)
	Count(ctx context.Context, filter dto.FilterGroup) (int, error)
	Update(ctx context.Context, mod map[string]any, filter dto.FilterGroup) (int64, error)
	ListHoldingSlots(ctx context.Context, date string) ([]model.Reservation, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Reservation]
}

func New(db *postgres.Connection, otel otel.Otel) Reservation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

// Insert persists a reservation. The reservations table carries a partial
// unique index over (table_id, reservation_date, time_slot) scoped to slot
// holding statuses, so a concurrent double booking surfaces here as a unique
// violation regardless of what the service observed beforehand.
func (repo *repositoryImpl) Insert(ctx context.Context, reservation model.Reservation) error {
	err := repo.Repository.Insert(ctx, reservation)
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case constant.PqErrorCodeUniqueViolation:
			return failure.Conflict("table is already reserved for this date and time slot") // nolint:wrapcheck
		case constant.PqErrorCodeFkViolation:
			return failure.UnprocessableEntity("reservation references an unknown table") // nolint:wrapcheck
		}
	}

	return failure.Transient(fmt.Sprintf("failed to store reservation: %v", err)) // nolint:wrapcheck
}

// ListHoldingSlots returns every reservation on the given date that still
// holds its table slot.
func (repo *repositoryImpl) ListHoldingSlots(ctx context.Context, date string) ([]model.Reservation, error) {
	filter := dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    model.FieldReservationDate,
				Value:    date,
				Operator: dto.FilterOperatorEq,
				Table:    model.TableName,
			},
			dto.Filter{
				Field:    model.FieldStatus,
				Value:    model.ActiveStatuses,
				Operator: dto.FilterOperatorIn,
				Table:    model.TableName,
			},
		},
		Operator: dto.FilterGroupOperatorAnd,
	}

	params := dto.QueryParams{
		SortBy:  model.FieldTimeSlot,
		SortDir: dto.SortDirAsc,
	}

	return repo.Repository.GetAll(ctx, params, filter) //nolint:wrapcheck
}
