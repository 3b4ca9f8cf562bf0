package model

import "tablebook/shared/model"

const (
	TableName  = "dining_tables"
	EntityName = "table"

	FieldID       = "id"
	FieldNumber   = "table_number"
	FieldCapacity = "capacity"
	FieldLocation = "location"
	FieldActive   = "active"
)

// Table display statuses are derived from today's reservations, never stored.
const (
	DisplayStatusAvailable = "available"
	DisplayStatusReserved  = "reserved"
)

type Table struct {
	ID       string `db:"id"`
	Number   int    `db:"table_number"`
	Capacity int    `db:"capacity"`
	Location string `db:"location"`
	Active   bool   `db:"active"`
	model.Metadata
}
