package model

import (
	"time"
)

// Event types published on the reservation events topic.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationCompleted = "reservation.completed"
	EventReservationPaid      = "reservation.paid"
)

// Event is the payload sent to downstream notification consumers (SMS, email,
// ops dashboards). The reservation snapshot is embedded so consumers do not
// need to call back.
type Event struct {
	Type            string    `json:"type"`
	ReservationID   string    `json:"reservation_id"`
	CustomerName    string    `json:"customer_name"`
	CustomerPhone   string    `json:"customer_phone"`
	CustomerEmail   string    `json:"customer_email,omitempty"`
	TableID         string    `json:"table_id"`
	ReservationDate string    `json:"reservation_date"`
	TimeSlot        string    `json:"time_slot"`
	GuestCount      int       `json:"guest_count"`
	Status          string    `json:"status"`
	OccurredAt      time.Time `json:"occurred_at"`
}
