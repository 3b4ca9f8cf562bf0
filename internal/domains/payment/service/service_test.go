package service_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablebook/config"
	otelMocks "tablebook/infras/otel/mocks"
	"tablebook/internal/domains/payment/model/dto"
	"tablebook/internal/domains/payment/service"
	resModel "tablebook/internal/domains/reservation/model"
	resDto "tablebook/internal/domains/reservation/model/dto"
	resService "tablebook/internal/domains/reservation/service"
	"tablebook/shared/failure"
)

// stubReservations overrides only the reservation service methods the payment
// service touches.
type stubReservations struct {
	resService.Reservation

	markPaid func(ctx context.Context, id string) (resDto.ReservationResponse, error)
	get      func(ctx context.Context, id string) (resDto.ReservationResponse, error)
}

func (s *stubReservations) MarkPaid(ctx context.Context, id string) (resDto.ReservationResponse, error) {
	return s.markPaid(ctx, id)
}

func (s *stubReservations) Get(ctx context.Context, id string) (resDto.ReservationResponse, error) {
	return s.get(ctx, id)
}

func newService(secret string, reservations *stubReservations) service.Payment {
	cfg := &config.Config{}
	cfg.Payment.WebhookSecret = secret

	return service.New(reservations, cfg, otelMocks.NewOtel())
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaymentService_VerifySignature(t *testing.T) {
	body := []byte(`{"event":"payment.completed"}`)

	t.Run("valid signature", func(t *testing.T) {
		svc := newService("topsecret", nil)

		assert.NoError(t, svc.VerifySignature(body, sign("topsecret", body)))
	})

	t.Run("wrong signature", func(t *testing.T) {
		svc := newService("topsecret", nil)

		err := svc.VerifySignature(body, sign("othersecret", body))

		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})

	t.Run("missing signature", func(t *testing.T) {
		svc := newService("topsecret", nil)

		err := svc.VerifySignature(body, "")

		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})

	t.Run("no secret configured skips verification", func(t *testing.T) {
		svc := newService("", nil)

		assert.NoError(t, svc.VerifySignature(body, ""))
	})
}

func TestPaymentService_HandleWebhook(t *testing.T) {
	t.Run("completed payment marks the reservation paid", func(t *testing.T) {
		var paidID string

		reservations := &stubReservations{
			markPaid: func(_ context.Context, id string) (resDto.ReservationResponse, error) {
				paidID = id

				return resDto.ReservationResponse{
					ID:            id,
					Status:        resModel.StatusConfirmed,
					PaymentStatus: resModel.PaymentStatusPaid,
				}, nil
			},
		}

		svc := newService("topsecret", reservations)

		res, err := svc.HandleWebhook(context.Background(), dto.WebhookRequest{
			Event:         dto.WebhookEventCompleted,
			ReservationID: "res-1",
		})

		require.NoError(t, err)
		assert.Equal(t, "res-1", paidID)
		assert.Equal(t, resModel.PaymentStatusPaid, res.PaymentStatus)
	})

	t.Run("failed payment leaves the reservation untouched", func(t *testing.T) {
		reservations := &stubReservations{
			get: func(_ context.Context, id string) (resDto.ReservationResponse, error) {
				return resDto.ReservationResponse{
					ID:            id,
					Status:        resModel.StatusPending,
					PaymentStatus: resModel.PaymentStatusUnpaid,
				}, nil
			},
		}

		svc := newService("topsecret", reservations)

		res, err := svc.HandleWebhook(context.Background(), dto.WebhookRequest{
			Event:         dto.WebhookEventFailed,
			ReservationID: "res-1",
		})

		require.NoError(t, err)
		assert.Equal(t, resModel.PaymentStatusUnpaid, res.PaymentStatus)
	})

	t.Run("unknown reservation propagates not found", func(t *testing.T) {
		reservations := &stubReservations{
			markPaid: func(_ context.Context, _ string) (resDto.ReservationResponse, error) {
				return resDto.ReservationResponse{}, failure.NotFound("reservation not found")
			},
		}

		svc := newService("topsecret", reservations)

		_, err := svc.HandleWebhook(context.Background(), dto.WebhookRequest{
			Event:         dto.WebhookEventCompleted,
			ReservationID: "missing",
		})

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestPaymentService_GetStatus(t *testing.T) {
	reservations := &stubReservations{
		get: func(_ context.Context, id string) (resDto.ReservationResponse, error) {
			return resDto.ReservationResponse{
				ID:            id,
				Status:        resModel.StatusConfirmed,
				PaymentStatus: resModel.PaymentStatusPaid,
				AmountCents:   4000,
			}, nil
		},
	}

	svc := newService("topsecret", reservations)

	res, err := svc.GetStatus(context.Background(), "res-1")

	require.NoError(t, err)
	assert.Equal(t, "res-1", res.ReservationID)
	assert.Equal(t, resModel.StatusConfirmed, res.Status)
	assert.Equal(t, resModel.PaymentStatusPaid, res.PaymentStatus)
	assert.Equal(t, int64(4000), res.AmountCents)
}
