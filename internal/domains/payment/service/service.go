package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"tablebook/config"
	"tablebook/infras/otel"
	"tablebook/internal/domains/payment/model/dto"
	"tablebook/shared/constant"
	"tablebook/shared/failure"

	resDto "tablebook/internal/domains/reservation/model/dto"
	resService "tablebook/internal/domains/reservation/service"

	"github.com/rs/zerolog/log"
)

type Payment interface {
	VerifySignature(body []byte, signature string) error
	HandleWebhook(ctx context.Context, req dto.WebhookRequest) (resDto.ReservationResponse, error)
	GetStatus(ctx context.Context, reservationID string) (dto.PaymentStatusResponse, error)
}

type serviceImpl struct {
	reservations resService.Reservation
	cfg          *config.Config
	otel         otel.Otel
}

func New(reservations resService.Reservation, cfg *config.Config, otel otel.Otel) Payment {
	return &serviceImpl{
		reservations: reservations,
		cfg:          cfg,
		otel:         otel,
	}
}

// VerifySignature checks the provider signature over the raw webhook body,
// hex encoded HMAC-SHA256 keyed with the shared webhook secret.
func (s *serviceImpl) VerifySignature(body []byte, signature string) error {
	if s.cfg.Payment.WebhookSecret == constant.Empty {
		log.Warn().Msg("payment webhook secret is not configured, skipping signature verification")

		return nil
	}

	if signature == constant.Empty {
		return failure.Unauthorized("missing webhook signature") // nolint:wrapcheck
	}

	mac := hmac.New(sha256.New, []byte(s.cfg.Payment.WebhookSecret))
	mac.Write(body)

	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return failure.Unauthorized("invalid webhook signature") // nolint:wrapcheck
	}

	return nil
}

// HandleWebhook applies a payment provider event to the reservation it
// references. Failed payments are acknowledged without changing state so the
// provider stops retrying.
func (s *serviceImpl) HandleWebhook(ctx context.Context, req dto.WebhookRequest) (res resDto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".HandleWebhook")
	defer scope.End()
	defer scope.TraceIfError(err)

	switch req.Event {
	case dto.WebhookEventCompleted:
		res, err = s.reservations.MarkPaid(ctx, req.ReservationID)
		if err != nil {
			log.Error().Err(err).Str("reservationID", req.ReservationID).Msg("failed to apply payment webhook")

			return res, fmt.Errorf("failed to apply payment webhook: %w", err)
		}

		return res, nil
	case dto.WebhookEventFailed:
		log.Info().
			Str("reservationID", req.ReservationID).
			Str("reference", req.Reference).
			Msg("payment failed, reservation left unpaid")

		return s.reservations.Get(ctx, req.ReservationID)
	default:
		return res, failure.BadRequestFromString(fmt.Sprintf("unknown webhook event %q", req.Event)) // nolint:wrapcheck
	}
}

func (s *serviceImpl) GetStatus(ctx context.Context, reservationID string) (res dto.PaymentStatusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	reservation, err := s.reservations.Get(ctx, reservationID)
	if err != nil {
		return res, err
	}

	res.FromReservation(reservation)

	return res, nil
}
