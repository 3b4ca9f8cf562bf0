package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"tablebook/config"
	"tablebook/infras/kafka"
	notifModel "tablebook/internal/domains/notification/model"
	resModel "tablebook/internal/domains/reservation/model"
	"tablebook/shared/timezone"

	"github.com/rs/zerolog/log"
)

// Dispatcher publishes reservation lifecycle events. Dispatch is best effort:
// a publish failure is logged and never fails the operation that produced the
// event.
type Dispatcher interface {
	Dispatch(ctx context.Context, eventType string, reservation resModel.Reservation)
}

type dispatcherImpl struct {
	client kafka.Client
	cfg    *config.Config
}

func New(client kafka.Client, cfg *config.Config) Dispatcher {
	return &dispatcherImpl{
		client: client,
		cfg:    cfg,
	}
}

func (d *dispatcherImpl) Dispatch(ctx context.Context, eventType string, reservation resModel.Reservation) {
	event := notifModel.Event{
		Type:            eventType,
		ReservationID:   reservation.ID,
		CustomerName:    reservation.CustomerName,
		CustomerPhone:   reservation.CustomerPhone,
		CustomerEmail:   reservation.CustomerEmail,
		TableID:         reservation.TableID,
		ReservationDate: reservation.ReservationDate,
		TimeSlot:        reservation.TimeSlot,
		GuestCount:      reservation.GuestCount,
		Status:          reservation.Status,
		OccurredAt:      timezone.Now(),
	}

	go func() {
		c := context.WithoutCancel(ctx)

		message := kafka.Message{
			Key:   reservation.ID,
			Value: event,
		}

		if err := d.client.SendMessages(c, d.cfg.Kafka.Topics.ReservationEvents, message); err != nil {
			log.Error().
				Err(err).
				Str("eventType", eventType).
				Str("reservationID", reservation.ID).
				Msg("failed to publish reservation event")
		}
	}()
}
