package state

import (
	"encoding/json"
	"sort"

	"pharmaconnect_core/internal/models"
)

// State - единый источник правды для UI.
// Срезы и карты внутри State не изменяются на месте: любое изменение
// создаёт новое значение.
type State struct {
	IsAuthenticated bool `json:"isAuthenticated"`
	IsLoading       bool `json:"isLoading"`
	IsInitializing  bool `json:"isInitializing"`

	// Сессия
	UserID          string          `json:"userId"`
	UserRole        models.UserRole `json:"userRole,omitempty"`
	UserName        string          `json:"userName"`
	UserEmail       string          `json:"userEmail"`
	UserPhone       string          `json:"userPhone"`
	IsPremium       bool            `json:"isPremium"`
	PharmacyAddress string          `json:"pharmacyAddress"`

	// Верификация
	IsLicenseVerified bool                     `json:"isLicenseVerified"`
	IsContactVerified bool                     `json:"isContactVerified"`
	UploadedDocuments models.UploadedDocuments `json:"uploadedDocuments"`

	// Смены
	MyJobs         []models.Job           `json:"myJobs"`
	AllJobs        []models.Job           `json:"allJobs"`
	AppliedJobIDs  JobIDSet               `json:"appliedJobIds"`
	SavedJobIDs    JobIDSet               `json:"savedJobIds"`
	Conversations  []models.Conversation  `json:"conversations"`
	JobToReviewID  *string                `json:"jobToReviewId"`
	DashboardStats *models.DashboardStats `json:"dashboardStats,omitempty"`

	Error     *string `json:"error"`
	IsOffline bool    `json:"isOffline"`
}

// Initial - состояние при старте процесса: не авторизован, идёт инициализация
func Initial() State {
	return State{
		IsLoading:         true,
		IsInitializing:    true,
		UploadedDocuments: models.UploadedDocuments{},
		MyJobs:            []models.Job{},
		AllJobs:           []models.Job{},
		Conversations:     []models.Conversation{},
	}
}

// FindJob ищет смену сначала в MyJobs, затем в AllJobs
func (s State) FindJob(jobID string) (models.Job, bool) {
	if job, ok := models.FindJob(s.MyJobs, jobID); ok {
		return job, true
	}
	return models.FindJob(s.AllJobs, jobID)
}

// ============================================
// JobIDSet
// ============================================

// JobIDSet - неизменяемое множество ID смен, нулевое значение - пустое множество
type JobIDSet struct {
	ids map[string]struct{}
}

func NewJobIDSet(ids ...string) JobIDSet {
	set := JobIDSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	return set
}

func (s JobIDSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s JobIDSet) Len() int {
	return len(s.ids)
}

// With возвращает новое множество с id
func (s JobIDSet) With(id string) JobIDSet {
	if s.Has(id) {
		return s
	}
	out := make(map[string]struct{}, len(s.ids)+1)
	for k := range s.ids {
		out[k] = struct{}{}
	}
	out[id] = struct{}{}
	return JobIDSet{ids: out}
}

// Without возвращает новое множество без id
func (s JobIDSet) Without(id string) JobIDSet {
	if !s.Has(id) {
		return s
	}
	out := make(map[string]struct{}, len(s.ids))
	for k := range s.ids {
		if k != id {
			out[k] = struct{}{}
		}
	}
	return JobIDSet{ids: out}
}

func (s JobIDSet) Sorted() []string {
	out := make([]string, 0, len(s.ids))
	for k := range s.ids {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s JobIDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *JobIDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewJobIDSet(ids...)
	return nil
}
