package model

import (
	gModel "tablebook/shared/model"
)

const (
	EntityName = "reservation"
	TableName  = "reservations"

	FieldID              = "id"
	FieldCustomerName    = "customer_name"
	FieldCustomerPhone   = "customer_phone"
	FieldCustomerEmail   = "customer_email"
	FieldTableID         = "table_id"
	FieldReservationDate = "reservation_date"
	FieldTimeSlot        = "time_slot"
	FieldGuestCount      = "guest_count"
	FieldStatus          = "status"
	FieldPaymentStatus   = "payment_status"
	FieldAmountCents     = "amount_cents"
	FieldNotes           = "notes"
)

// Reservation statuses. Cancelled and completed are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// ActiveStatuses are the statuses that hold a table slot. Reservations in any
// other status do not block availability.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCancelled: {},
	StatusCompleted: {},
}

// IsValidStatus reports whether the status is one of the known reservation
// statuses.
func IsValidStatus(status string) bool {
	_, ok := transitions[status]

	return ok
}

// CanTransition reports whether a reservation may move from one status to
// another. Self transitions are rejected along with everything else not in
// the transition table.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// IsTerminalStatus reports whether no further transition is allowed out of
// the status.
func IsTerminalStatus(status string) bool {
	return len(transitions[status]) == 0 && IsValidStatus(status)
}

type Reservation struct {
	ID              string `db:"id"`
	CustomerName    string `db:"customer_name"`
	CustomerPhone   string `db:"customer_phone"`
	CustomerEmail   string `db:"customer_email"`
	TableID         string `db:"table_id"`
	ReservationDate string `db:"reservation_date"`
	TimeSlot        string `db:"time_slot"`
	GuestCount      int    `db:"guest_count"`
	Status          string `db:"status"`
	PaymentStatus   string `db:"payment_status"`
	AmountCents     int64  `db:"amount_cents"`
	Notes           string `db:"notes"`
	gModel.Metadata
}

// HoldsSlot reports whether the reservation currently blocks its table slot.
func (r *Reservation) HoldsSlot() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}
