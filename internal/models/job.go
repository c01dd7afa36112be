package models

import (
	"encoding/json"
	"strings"
)

// Job - смена, опубликованная аптекой
type Job struct {
	ID           string       `json:"id"`
	Pharmacy     string       `json:"pharmacy"`
	Location     string       `json:"location"`
	Rate         string       `json:"rate"`
	Role         string       `json:"role"`
	Date         string       `json:"date"` // YYYY-MM-DD
	Time         string       `json:"time"`
	FacilityType FacilityType `json:"facilityType"`
	ShiftType    ShiftType    `json:"shiftType"`
	Description  string       `json:"description"`
	Status       JobStatus    `json:"status,omitempty"`

	Applicants         []Applicant `json:"applicants,omitempty"`
	SavedApplicants    []Applicant `json:"savedApplicants,omitempty"`
	ConfirmedApplicant *Applicant  `json:"confirmedApplicant,omitempty"`

	PharmacistRating   *int    `json:"pharmacistRating,omitempty"`
	PharmacistFeedback *string `json:"pharmacistFeedback,omitempty"`
	PharmacyRating     *int    `json:"pharmacyRating,omitempty"`
	PharmacyFeedback   *string `json:"pharmacyFeedback,omitempty"`
	Rating             *int    `json:"rating,omitempty"` // legacy

	// Флаги от /jobs/search для текущего фармацевта
	HasApplied bool `json:"hasApplied,omitempty"`
	IsSaved    bool `json:"isSaved,omitempty"`
}

// Applicant - снимок профиля фармацевта на момент отклика
type Applicant struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Rating          float64           `json:"rating"`
	IsPremium       bool              `json:"isPremium"`
	ShiftsCompleted int               `json:"shiftsCompleted"`
	Documents       UploadedDocuments `json:"documents,omitempty"`
}

// UnmarshalJSON принимает статус в любом регистре ("Confirmed", "confirmed")
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = JobStatus(strings.ToLower(raw))
	return nil
}

// NeedsPharmacyReview - завершённая смена, которую фармацевт ещё не оценил
func (j Job) NeedsPharmacyReview() bool {
	return j.Status == JobStatusCompleted && j.PharmacyRating == nil
}

func FindJob(jobs []Job, jobID string) (Job, bool) {
	for _, j := range jobs {
		if j.ID == jobID {
			return j, true
		}
	}
	return Job{}, false
}

// mapJob возвращает новый срез, где fn применён только к смене jobID.
// Исходный срез не меняется.
func mapJob(jobs []Job, jobID string, fn func(Job) Job) []Job {
	if jobs == nil {
		return nil
	}
	out := make([]Job, len(jobs))
	for i, j := range jobs {
		if j.ID == jobID {
			out[i] = fn(j)
			continue
		}
		out[i] = j
	}
	return out
}

func WithJobStatus(jobs []Job, jobID string, status JobStatus) []Job {
	return mapJob(jobs, jobID, func(j Job) Job {
		j.Status = status
		return j
	})
}

// WithConfirmedApplicant переводит смену в confirmed и закрепляет исполнителя
func WithConfirmedApplicant(jobs []Job, jobID string, applicant Applicant) []Job {
	return mapJob(jobs, jobID, func(j Job) Job {
		a := applicant
		j.Status = JobStatusConfirmed
		j.ConfirmedApplicant = &a
		return j
	})
}

// WithoutApplicant удаляет кандидата из applicants (decline).
// Если кандидата уже нет, смена остаётся как была.
func WithoutApplicant(jobs []Job, jobID, applicantID string) []Job {
	return mapJob(jobs, jobID, func(j Job) Job {
		j.Applicants = removeApplicant(j.Applicants, applicantID)
		return j
	})
}

// WithSavedApplicant переносит кандидата из applicants в savedApplicants.
// Множества взаимоисключающие, повторное сохранение дубликатов не создаёт.
func WithSavedApplicant(jobs []Job, jobID string, applicant Applicant) []Job {
	return mapJob(jobs, jobID, func(j Job) Job {
		if !containsApplicant(j.SavedApplicants, applicant.ID) {
			saved := make([]Applicant, 0, len(j.SavedApplicants)+1)
			saved = append(saved, j.SavedApplicants...)
			j.SavedApplicants = append(saved, applicant)
		}
		j.Applicants = removeApplicant(j.Applicants, applicant.ID)
		return j
	})
}

func WithPharmacistRating(jobs []Job, jobID string, rating int, feedback *string) []Job {
	return mapJob(jobs, jobID, func(j Job) Job {
		r := rating
		j.PharmacistRating = &r
		j.PharmacistFeedback = feedback
		return j
	})
}

func WithPharmacyRating(jobs []Job, jobID string, rating int, feedback *string) []Job {
	return mapJob(jobs, jobID, func(j Job) Job {
		r := rating
		j.PharmacyRating = &r
		j.PharmacyFeedback = feedback
		return j
	})
}

// AverageRating - средняя оценка фармацевта по завершённым сменам, 0 если оценок нет
func AverageRating(jobs []Job) float64 {
	var sum, count int
	for _, j := range jobs {
		if j.Status != JobStatusCompleted || j.PharmacistRating == nil {
			continue
		}
		sum += *j.PharmacistRating
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

func removeApplicant(list []Applicant, applicantID string) []Applicant {
	out := make([]Applicant, 0, len(list))
	for _, a := range list {
		if a.ID != applicantID {
			out = append(out, a)
		}
	}
	return out
}

func containsApplicant(list []Applicant, applicantID string) bool {
	for _, a := range list {
		if a.ID == applicantID {
			return true
		}
	}
	return false
}
