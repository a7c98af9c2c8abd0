package fields

import "github.com/rizkyyjun/sportmate/internal/models"

// ListFieldsRequest carries the optional filters for listing fields.
type ListFieldsRequest struct {
	Sport    string
	Location string
	Page     int
	Limit    int
}

// ListFieldsResponse is a paginated page of fields.
type ListFieldsResponse struct {
	Data     []models.Field `json:"data"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	LastPage int            `json:"last_page"`
}

// FieldWithAvailability is a field plus its computed 30-day slot calendar.
type FieldWithAvailability struct {
	models.Field
	Availability []models.DayAvailability `json:"availability"`
}
