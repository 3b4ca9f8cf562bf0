package payment

import (
	"bytes"
	"io"
	"net/http"
	"tablebook/infras/otel"
	"tablebook/internal/domains/payment/model/dto"
	"tablebook/internal/domains/payment/service"
	"tablebook/shared/constant"
	"tablebook/shared/failure"
	"tablebook/shared/validator"
	"tablebook/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Payment
	otel    otel.Otel
}

func New(service service.Payment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/payments", func(routerGroup chi.Router) {
		routerGroup.Post("/webhook", handler.Webhook)
		routerGroup.Get("/status/{id}", handler.GetPaymentStatus)
	})
}

// Webhook ingests payment provider callbacks.
// @Summary Payment provider webhook
// @Description Apply a payment event to the reservation it references. The request body must be signed with the shared webhook secret.
// @Tags Payment
// @Accept json
// @Produce json
// @Param X-Webhook-Signature header string true "Hex encoded HMAC-SHA256 of the request body"
// @Param request body dto.WebhookRequest true "Webhook payload"
// @Success 200 {object} response.Data[dto.PaymentStatusResponse] "Reservation after the event"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/payments/webhook [post]
func (handler *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Webhook")
	defer scope.End()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to read webhook body")

		response.WithError(w, failure.BadRequestFromString("unreadable request body"))

		return
	}

	signature := r.Header.Get(constant.RequestHeaderWebhookSignature)
	if err := handler.service.VerifySignature(body, signature); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("webhook signature verification failed")

		response.WithError(w, err)

		return
	}

	req := dto.WebhookRequest{}
	if err := validator.Validate(bytes.NewReader(body), &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate webhook payload")

		response.WithError(w, err)

		return
	}

	reservation, err := handler.service.HandleWebhook(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to handle payment webhook")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Payment webhook processed for reservation " + req.ReservationID)

	response.WithJSON(w, http.StatusOK, reservation)
}

// GetPaymentStatus retrieves the payment state of a reservation.
// @Summary Get payment status
// @Description Retrieve the payment status and amount for a reservation.
// @Tags Payment
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Data[dto.PaymentStatusResponse] "Payment status"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/payments/status/{id} [get]
func (handler *Handler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPaymentStatus")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	status, err := handler.service.GetStatus(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get payment status")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Payment status retrieved successfully")

	response.WithJSON(w, http.StatusOK, status)
}
