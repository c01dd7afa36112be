package dto

import (
	"net/url"
	"strconv"
	"strings"

	"pharmaconnect_core/internal/models"
)

// SearchJobsParams - фильтры GET /jobs/search, пустые поля не передаются
type SearchJobsParams struct {
	Location      string
	MinRate       *float64
	FacilityTypes []models.FacilityType
	ShiftTypes    []models.ShiftType
	DateFrom      string
	DateTo        string
	Page          int
	Limit         int
}

// Query собирает параметры запроса, списки передаются через запятую
func (p SearchJobsParams) Query() url.Values {
	q := url.Values{}
	if p.Location != "" {
		q.Set("location", p.Location)
	}
	if p.MinRate != nil {
		q.Set("minRate", strconv.FormatFloat(*p.MinRate, 'f', -1, 64))
	}
	if len(p.FacilityTypes) > 0 {
		parts := make([]string, len(p.FacilityTypes))
		for i, f := range p.FacilityTypes {
			parts[i] = string(f)
		}
		q.Set("facilityTypes", strings.Join(parts, ","))
	}
	if len(p.ShiftTypes) > 0 {
		parts := make([]string, len(p.ShiftTypes))
		for i, s := range p.ShiftTypes {
			parts[i] = string(s)
		}
		q.Set("shiftTypes", strings.Join(parts, ","))
	}
	if p.DateFrom != "" {
		q.Set("dateFrom", p.DateFrom)
	}
	if p.DateTo != "" {
		q.Set("dateTo", p.DateTo)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

type SearchJobsResponse struct {
	Jobs    []models.Job `json:"jobs"`
	Page    int          `json:"page"`
	Limit   int          `json:"limit"`
	HasMore bool         `json:"hasMore"`
}

// CreateJobRequest - публикация смены аптекой
type CreateJobRequest struct {
	Role            string              `json:"role" validate:"required"`
	Date            string              `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string              `json:"time" validate:"required"`
	Rate            string              `json:"rate" validate:"required"`
	FacilityType    models.FacilityType `json:"facilityType" validate:"required,is-facility-type"`
	ShiftType       models.ShiftType    `json:"shiftType" validate:"required,is-shift-type"`
	Description     string              `json:"description" validate:"max=2000"`
	LocationAddress string              `json:"location_address" validate:"required"`
	LocationCity    string              `json:"location_city" validate:"required"`
}

// UpdateJobRequest - частичное обновление, nil = не менять
type UpdateJobRequest struct {
	Rate        *string           `json:"rate,omitempty"`
	Time        *string           `json:"time,omitempty"`
	Description *string           `json:"description,omitempty"`
	Status      *models.JobStatus `json:"status,omitempty"`
}

type ApplyRequest struct {
	CoverLetter  string   `json:"coverLetter,omitempty" validate:"max=2000"`
	ExpectedRate *float64 `json:"expectedRate,omitempty" validate:"omitempty,gt=0"`
}

type ApplicantActionRequest struct {
	ApplicantID string `json:"applicantId" validate:"required"`
}

type RatingRequest struct {
	Rating   int     `json:"rating" validate:"gte=1,lte=5"`
	Feedback *string `json:"feedback,omitempty" validate:"omitempty,max=1000"`
}
