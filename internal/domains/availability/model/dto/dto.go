package dto

import (
	tableModel "tablebook/internal/domains/table/model"
)

type AvailableTable struct {
	ID       string `json:"id"`
	Number   int    `json:"table_number"`
	Capacity int    `json:"capacity"`
	Location string `json:"location,omitempty"`
}

func (t *AvailableTable) FromModel(model tableModel.Table) {
	t.ID = model.ID
	t.Number = model.Number
	t.Capacity = model.Capacity
	t.Location = model.Location
}

type SlotAvailability struct {
	TimeSlot  string           `json:"time_slot"`
	Available bool             `json:"available"`
	Tables    []AvailableTable `json:"tables"`
}

type AvailabilityResponse struct {
	Date            string             `json:"date"`
	GuestCount      int                `json:"guest_count"`
	HasAvailability bool               `json:"has_availability"`
	Slots           []SlotAvailability `json:"slots"`
}
