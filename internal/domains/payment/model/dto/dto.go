package dto

import (
	resDto "tablebook/internal/domains/reservation/model/dto"
)

// Webhook event types accepted from the payment provider.
const (
	WebhookEventCompleted = "payment.completed"
	WebhookEventFailed    = "payment.failed"
)

type WebhookRequest struct {
	Event         string `json:"event"          validate:"required,oneof=payment.completed payment.failed"`
	ReservationID string `json:"reservation_id" validate:"required,uuid"`
	Reference     string `json:"reference"      validate:"omitempty,max=100"`
}

type PaymentStatusResponse struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	AmountCents   int64  `json:"amount_cents"`
}

func (r *PaymentStatusResponse) FromReservation(reservation resDto.ReservationResponse) {
	r.ReservationID = reservation.ID
	r.Status = reservation.Status
	r.PaymentStatus = reservation.PaymentStatus
	r.AmountCents = reservation.AmountCents
}
