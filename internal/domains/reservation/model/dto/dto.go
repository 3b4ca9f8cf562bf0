package dto

import (
	"tablebook/internal/domains/reservation/model"
	"tablebook/shared"
	gDto "tablebook/shared/dto"
	gModel "tablebook/shared/model"
	"tablebook/shared/timezone"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	CustomerName    string `json:"customer_name"    validate:"required,max=100"`
	CustomerPhone   string `json:"customer_phone"   validate:"required,max=20"`
	CustomerEmail   string `json:"customer_email"   validate:"omitempty,email"`
	TableID         string `json:"table_id"         validate:"required,uuid"`
	ReservationDate string `json:"reservation_date" validate:"required,calendarday=future"`
	TimeSlot        string `json:"time_slot"        validate:"required"`
	GuestCount      int    `json:"guest_count"      validate:"required,gte=1"`
	Notes           string `json:"notes"            validate:"omitempty,max=500"`
}

func (c *CreateReservationRequest) ToModel(user string, amountCents int64) model.Reservation {
	return model.Reservation{
		ID:              uuid.NewString(),
		CustomerName:    c.CustomerName,
		CustomerPhone:   c.CustomerPhone,
		CustomerEmail:   c.CustomerEmail,
		TableID:         c.TableID,
		ReservationDate: c.ReservationDate,
		TimeSlot:        c.TimeSlot,
		GuestCount:      c.GuestCount,
		Status:          model.StatusPending,
		PaymentStatus:   model.PaymentStatusUnpaid,
		AmountCents:     amountCents,
		Notes:           c.Notes,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled completed"`
}

type ReservationResponse struct {
	ID              string `json:"id"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerEmail   string `json:"customer_email,omitempty"`
	TableID         string `json:"table_id"`
	TableNumber     int    `json:"table_number,omitempty"`
	ReservationDate string `json:"reservation_date"`
	TimeSlot        string `json:"time_slot"`
	GuestCount      int    `json:"guest_count"`
	Status          string `json:"status"`
	PaymentStatus   string `json:"payment_status"`
	AmountCents     int64  `json:"amount_cents"`
	Notes           string `json:"notes,omitempty"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(model model.Reservation) {
	r.ID = model.ID
	r.CustomerName = model.CustomerName
	r.CustomerPhone = model.CustomerPhone
	r.CustomerEmail = model.CustomerEmail
	r.TableID = model.TableID
	r.ReservationDate = model.ReservationDate
	r.TimeSlot = model.TimeSlot
	r.GuestCount = model.GuestCount
	r.Status = model.Status
	r.PaymentStatus = model.PaymentStatus
	r.AmountCents = model.AmountCents
	r.Notes = model.Notes
	r.Metadata.FromModel(model.Metadata)
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod)
	}
}
