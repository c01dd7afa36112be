package services

import (
	"context"
	"net/url"

	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/services/dto"
)

type JobService interface {
	SearchJobs(ctx context.Context, params dto.SearchJobsParams) (*dto.SearchJobsResponse, error)
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	GetMyJobs(ctx context.Context) ([]models.Job, error)
	GetPharmacyJobs(ctx context.Context) ([]models.Job, error)
	CreateJob(ctx context.Context, req dto.CreateJobRequest) (*models.Job, error)
	UpdateJob(ctx context.Context, jobID string, req dto.UpdateJobRequest) (*models.Job, error)

	// Отклик фармацевта
	ApplyToJob(ctx context.Context, jobID string, req dto.ApplyRequest) error
	SaveJob(ctx context.Context, jobID string) error
	UnsaveJob(ctx context.Context, jobID string) error

	// Работа аптеки с кандидатами
	GetApplicants(ctx context.Context, jobID string) ([]models.Applicant, error)
	ConfirmApplicant(ctx context.Context, jobID, applicantID string) error
	DeclineApplicant(ctx context.Context, jobID, applicantID string) error
	SaveApplicant(ctx context.Context, jobID, applicantID string) error

	CompleteJob(ctx context.Context, jobID string) error
	RatePharmacist(ctx context.Context, jobID string, req dto.RatingRequest) error
	RatePharmacy(ctx context.Context, jobID string, req dto.RatingRequest) error
}

type jobService struct {
	api API
}

func NewJobService(api API) JobService {
	return &jobService{api: api}
}

func jobPath(jobID, action string) string {
	p := "/jobs/" + url.PathEscape(jobID)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (s *jobService) SearchJobs(ctx context.Context, params dto.SearchJobsParams) (*dto.SearchJobsResponse, error) {
	var resp dto.SearchJobsResponse
	if err := s.api.Get(ctx, "/jobs/search", params.Query(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *jobService) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	if err := s.api.Get(ctx, jobPath(jobID, ""), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *jobService) GetMyJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := s.api.Get(ctx, "/jobs/my", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *jobService) GetPharmacyJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := s.api.Get(ctx, "/jobs/posted", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *jobService) CreateJob(ctx context.Context, req dto.CreateJobRequest) (*models.Job, error) {
	var job models.Job
	if err := s.api.Post(ctx, "/jobs", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *jobService) UpdateJob(ctx context.Context, jobID string, req dto.UpdateJobRequest) (*models.Job, error) {
	var job models.Job
	if err := s.api.Put(ctx, jobPath(jobID, ""), req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *jobService) ApplyToJob(ctx context.Context, jobID string, req dto.ApplyRequest) error {
	return s.api.Post(ctx, jobPath(jobID, "apply"), req, nil)
}

func (s *jobService) SaveJob(ctx context.Context, jobID string) error {
	return s.api.Post(ctx, jobPath(jobID, "save"), nil, nil)
}

func (s *jobService) UnsaveJob(ctx context.Context, jobID string) error {
	return s.api.Delete(ctx, jobPath(jobID, "save"), nil)
}

func (s *jobService) GetApplicants(ctx context.Context, jobID string) ([]models.Applicant, error) {
	var applicants []models.Applicant
	if err := s.api.Get(ctx, jobPath(jobID, "applicants"), nil, &applicants); err != nil {
		return nil, err
	}
	return applicants, nil
}

func (s *jobService) ConfirmApplicant(ctx context.Context, jobID, applicantID string) error {
	return s.api.Post(ctx, jobPath(jobID, "confirm"), dto.ApplicantActionRequest{ApplicantID: applicantID}, nil)
}

func (s *jobService) DeclineApplicant(ctx context.Context, jobID, applicantID string) error {
	return s.api.Post(ctx, jobPath(jobID, "decline"), dto.ApplicantActionRequest{ApplicantID: applicantID}, nil)
}

func (s *jobService) SaveApplicant(ctx context.Context, jobID, applicantID string) error {
	return s.api.Post(ctx, jobPath(jobID, "save-applicant"), dto.ApplicantActionRequest{ApplicantID: applicantID}, nil)
}

func (s *jobService) CompleteJob(ctx context.Context, jobID string) error {
	return s.api.Post(ctx, jobPath(jobID, "complete"), nil, nil)
}

func (s *jobService) RatePharmacist(ctx context.Context, jobID string, req dto.RatingRequest) error {
	return s.api.Post(ctx, jobPath(jobID, "rate-pharmacist"), req, nil)
}

func (s *jobService) RatePharmacy(ctx context.Context, jobID string, req dto.RatingRequest) error {
	return s.api.Post(ctx, jobPath(jobID, "rate-pharmacy"), req, nil)
}
