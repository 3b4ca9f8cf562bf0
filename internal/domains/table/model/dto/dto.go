package dto

import (
	"tablebook/internal/domains/table/model"
	"tablebook/shared"
	gDto "tablebook/shared/dto"
	gModel "tablebook/shared/model"
	"tablebook/shared/timezone"

	"github.com/google/uuid"
)

type CreateTableRequest struct {
	Number   int    `json:"table_number" validate:"required,gte=1"`
	Capacity int    `json:"capacity"     validate:"required,gte=1"`
	Location string `json:"location"     validate:"omitempty,max=100"`
}

func (c *CreateTableRequest) ToModel(user string) model.Table {
	return model.Table{
		ID:       uuid.NewString(),
		Number:   c.Number,
		Capacity: c.Capacity,
		Location: c.Location,
		Active:   true,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateTableRequest struct {
	Location string `db:"location" json:"location" validate:"omitempty,max=100"`
	Active   *bool  `db:"active"   json:"active"   validate:"omitempty"`
}

type TableResponse struct {
	ID       string `json:"id"`
	Number   int    `json:"table_number"`
	Capacity int    `json:"capacity"`
	Location string `json:"location,omitempty"`
	Active   bool   `json:"active"`
	Status   string `json:"status,omitempty"`
	gDto.Metadata
}

func (r *TableResponse) FromModel(model model.Table) {
	r.ID = model.ID
	r.Number = model.Number
	r.Capacity = model.Capacity
	r.Location = model.Location
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

type GetTablesResponse struct {
	Tables    []TableResponse `json:"tables"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetTablesResponse) FromModels(models []model.Table, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Tables = make([]TableResponse, len(models))
	for i, mod := range models {
		r.Tables[i].FromModel(mod)
	}
}
