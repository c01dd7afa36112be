package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"pharmaconnect_core/internal/appErrors"
	"pharmaconnect_core/internal/logger"
	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/services/dto"
	"pharmaconnect_core/internal/state"
)

const defaultJobCity = "Harare"

// requireRole - локальная проверка роли до сетевого вызова
func requireRole(s state.State, role models.UserRole) error {
	if s.UserRole == "" {
		return appErrors.ErrNoRole
	}
	if s.UserRole != role {
		if role == models.UserRolePharmacy {
			return appErrors.ErrPharmacyOnly
		}
		return appErrors.ErrPharmacistOnly
	}
	return nil
}

// ============================================
// Фармацевт
// ============================================

// ApplyToJob откликается на смену. Без подтверждённой лицензии
// запрос не отправляется. 400 от сервера означает повторный отклик.
func (o *Orchestrator) ApplyToJob(ctx context.Context, jobID string) {
	ctx = logger.WithWorkflow(ctx, "apply_to_job")
	s := o.store.Snapshot()

	if err := requireRole(s, models.UserRolePharmacist); err != nil {
		o.handleError(ctx, err, "")
		o.finish(ctx, "apply_to_job", err)
		return
	}
	if !s.IsLicenseVerified {
		o.handleError(ctx, appErrors.ErrLicenseNotVerified, "")
		o.finish(ctx, "apply_to_job", appErrors.ErrLicenseNotVerified)
		return
	}

	err := o.services.JobService.ApplyToJob(ctx, jobID, dto.ApplyRequest{})
	if err != nil {
		if appErrors.Classify(err) == appErrors.KindHTTP && appErrors.StatusOf(err) == http.StatusBadRequest {
			o.info("Already Applied", "You have already applied to this job.")
		} else {
			o.handleError(ctx, err, "Failed to submit application. Please try again.")
		}
		o.finish(ctx, "apply_to_job", err)
		return
	}

	o.store.Update(func(s state.State) state.Action {
		return state.UpdateJobInteractions{
			AppliedJobIDs: state.Ptr(s.AppliedJobIDs.With(jobID)),
			SavedJobIDs:   state.Ptr(s.SavedJobIDs.Without(jobID)),
		}
	})
	o.success("Success", "Application submitted successfully!")
	o.finish(ctx, "apply_to_job", nil)
}

// SaveJob добавляет смену в сохранённые. Смена с откликом не сохраняется,
// чтобы она не оказалась в обоих множествах.
func (o *Orchestrator) SaveJob(ctx context.Context, jobID string) {
	ctx = logger.WithWorkflow(ctx, "save_job")
	if o.store.Snapshot().AppliedJobIDs.Has(jobID) {
		o.info("Already Applied", "You have already applied to this job.")
		o.finish(ctx, "save_job", nil)
		return
	}

	err := o.services.JobService.SaveJob(ctx, jobID)
	if err != nil {
		o.handleError(ctx, err, "Failed to save job")
		o.finish(ctx, "save_job", err)
		return
	}

	o.store.Update(func(s state.State) state.Action {
		if s.AppliedJobIDs.Has(jobID) {
			return nil
		}
		return state.UpdateJobInteractions{SavedJobIDs: state.Ptr(s.SavedJobIDs.With(jobID))}
	})
	o.finish(ctx, "save_job", nil)
}

func (o *Orchestrator) UnsaveJob(ctx context.Context, jobID string) {
	ctx = logger.WithWorkflow(ctx, "unsave_job")

	err := o.services.JobService.UnsaveJob(ctx, jobID)
	if err != nil {
		o.handleError(ctx, err, "Failed to unsave job")
		o.finish(ctx, "unsave_job", err)
		return
	}

	o.store.Update(func(s state.State) state.Action {
		return state.UpdateJobInteractions{SavedJobIDs: state.Ptr(s.SavedJobIDs.Without(jobID))}
	})
	o.finish(ctx, "unsave_job", nil)
}

// RatePharmacy - оценка аптеки фармацевтом после завершения смены
func (o *Orchestrator) RatePharmacy(ctx context.Context, jobID string, rating int, feedback *string) {
	ctx = logger.WithWorkflow(ctx, "rate_pharmacy")
	req := dto.RatingRequest{Rating: rating, Feedback: feedback}

	err := requireRole(o.store.Snapshot(), models.UserRolePharmacist)
	if err == nil {
		err = o.validate(req)
	}
	if err == nil {
		err = o.services.JobService.RatePharmacy(ctx, jobID, req)
	}
	if err != nil {
		o.handleError(ctx, err, "Failed to submit rating")
		o.finish(ctx, "rate_pharmacy", err)
		return
	}

	o.store.Update(func(s state.State) state.Action {
		return state.UpdateJobs{
			MyJobs: state.Ptr(models.WithPharmacyRating(s.MyJobs, jobID, rating, feedback)),
		}
	})
	o.store.Update(func(s state.State) state.Action {
		if s.JobToReviewID == nil || *s.JobToReviewID != jobID {
			return nil
		}
		return state.SetUserData{ClearJobToReview: true}
	})
	o.success("Success", "Thank you for your feedback!")
	o.finish(ctx, "rate_pharmacy", nil)
}

// ============================================
// Аптека
// ============================================

// PostJob публикует смену. Адрес по умолчанию берётся из профиля аптеки,
// город - вторая часть адреса через запятую.
func (o *Orchestrator) PostJob(ctx context.Context, req dto.CreateJobRequest) {
	ctx = logger.WithWorkflow(ctx, "post_job")
	s := o.store.Snapshot()

	if err := requireRole(s, models.UserRolePharmacy); err != nil {
		o.handleError(ctx, err, "")
		o.finish(ctx, "post_job", err)
		return
	}

	if req.LocationAddress == "" {
		req.LocationAddress = s.PharmacyAddress
	}
	if req.LocationCity == "" {
		req.LocationCity = cityFromAddress(req.LocationAddress)
	}
	if err := o.validate(req); err != nil {
		o.handleError(ctx, err, "")
		o.finish(ctx, "post_job", err)
		return
	}

	defer o.beginLoading()()

	if _, err := o.services.JobService.CreateJob(ctx, req); err != nil {
		o.handleError(ctx, err, "Failed to post job. Please try again.")
		o.finish(ctx, "post_job", err)
		return
	}

	if err := o.loadPharmacyData(ctx); err != nil {
		o.handleError(ctx, err, "Failed to load pharmacy data")
	}
	o.success("Success", "Job posted successfully!")
	o.finish(ctx, "post_job", nil)
}

func cityFromAddress(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) > 1 {
		if city := strings.TrimSpace(parts[1]); city != "" {
			return city
		}
	}
	return defaultJobCity
}

// ConfirmApplicant закрепляет кандидата за сменой и создаёт ровно одну
// переписку с ID смены
func (o *Orchestrator) ConfirmApplicant(ctx context.Context, jobID string, applicant models.Applicant) {
	ctx = logger.WithWorkflow(ctx, "confirm_applicant")
	s := o.store.Snapshot()

	err := requireRole(s, models.UserRolePharmacy)
	if err == nil {
		job, ok := models.FindJob(s.AllJobs, jobID)
		switch {
		case !ok:
			err = appErrors.ErrJobNotFound
		case !job.Status.CanTransitionTo(models.JobStatusConfirmed):
			err = appErrors.ErrInvalidStatusTransition
		}
	}
	if err == nil {
		err = o.services.JobService.ConfirmApplicant(ctx, jobID, applicant.ID)
	}
	if err != nil {
		o.handleError(ctx, err, "Failed to confirm applicant")
		o.finish(ctx, "confirm_applicant", err)
		return
	}

	o.store.Update(func(s state.State) state.Action {
		return state.UpdateJobs{AllJobs: state.Ptr(models.WithConfirmedApplicant(s.AllJobs, jobID, applicant))}
	})
	o.store.Update(func(s state.State) state.Action {
		if models.HasConversation(s.Conversations, jobID) {
			return nil
		}
		job, _ := models.FindJob(s.AllJobs, jobID)
		conversations := make([]models.Conversation, 0, len(s.Conversations)+1)
		conversations = append(conversations, s.Conversations...)
		conversations = append(conversations, models.NewConversationForJob(job, s.UserName, applicant))
		return state.SetConversations{Conversations: conversations}
	})
	o.success("Success", fmt.Sprintf("%s has been confirmed for this job.", applicant.Name))
	o.finish(ctx, "confirm_applicant", nil)
}

// DeclineApplicant убирает кандидата из applicants. Повторный вызов,
// когда кандидата уже нет, ничего не делает и запрос не отправляет.
func (o *Orchestrator) DeclineApplicant(ctx context.Context, jobID, applicantID string) {
	ctx = logger.WithWorkflow(ctx, "decline_applicant")
	s := o.store.Snapshot()

	err := requireRole(s, models.UserRolePharmacy)
	if err == nil {
		if job, ok := models.FindJob(s.AllJobs, jobID); ok && !hasApplicant(job.Applicants, applicantID) {
			logger.CtxDebug(ctx, "Applicant already declined", "job_id", jobID, "applicant_id", applicantID)
			o.finish(ctx, "decline_applicant", nil)
			return
		}
		err = o.services.JobService.DeclineApplicant(ctx, jobID, applicantID)
	}
	if err != nil {
		o.handleError(ctx, err, "Failed to decline applicant")
		o.finish(ctx, "decline_applicant", err)
		return
	}

	o.store.Update(func(s state.State) state.Action {
		return state.UpdateJobs{AllJobs: state.Ptr(models.WithoutApplicant(s.AllJobs, jobID, applicantID))}
	})
	o.success("Success", "Applicant declined")
	o.finish(ctx, "decline_applicant", nil)
}

// SaveApplicantForLater переносит кандидата в savedApplicants
func (o *Orchestrator) SaveApplicantForLater(ctx context.Context, jobID string, applicant models.Applicant) {
	ctx = logger.WithWorkflow(ctx, "save_applicant")

	err := requireRole(o.store.Snapshot(), models.UserRolePharmacy)
	if err == nil {
		err = o.services.JobService.SaveApplicant(ctx, jobID, applicant.ID)
	}
	if err != nil {
		o.handleError(ctx, err, "Failed to save applicant")
		o.finish(ctx, "save_applicant", err)
		return
	}

	o.store.Update(func(s state.State) state.Action {
		return state.UpdateJobs{AllJobs: state.Ptr(models.WithSavedApplicant(s.AllJobs, jobID, applicant))}
	})
	o.success("Success", "Applicant saved for later")
	o.finish(ctx, "save_applicant", nil)
}

// RatePharmacist - оценка фармацевта аптекой
func (o *Orchestrator) RatePharmacist(ctx context.Context, jobID string, rating int, feedback *string) {
	ctx = logger.WithWorkflow(ctx, "rate_pharmacist")
	req := dto.RatingRequest{Rating: rating, Feedback: feedback}

	err := requireRole(o.store.Snapshot(), models.UserRolePharmacy)
	if err == nil {
		err = o.validate(req)
	}
	if err == nil {
		err = o.services.JobService.RatePharmacist(ctx, jobID, req)
	}
	if err != nil {
		o.handleError(ctx, err, "Failed to submit rating")
		o.finish(ctx, "rate_pharmacist", err)
		return
	}

	o.store.Update(func(s state.State) state.Action {
		return state.UpdateJobs{
			AllJobs: state.Ptr(models.WithPharmacistRating(s.AllJobs, jobID, rating, feedback)),
		}
	})
	o.success("Success", "Thank you for your feedback!")
	o.finish(ctx, "rate_pharmacist", nil)
}

// ============================================
// Общие
// ============================================

// MarkJobCompleted завершает смену после ответа сервера.
// Фармацевту после этого предлагается оценить аптеку.
func (o *Orchestrator) MarkJobCompleted(ctx context.Context, jobID string) {
	ctx = logger.WithWorkflow(ctx, "complete_job")
	s := o.store.Snapshot()

	var err error
	job, ok := s.FindJob(jobID)
	switch {
	case !ok:
		err = appErrors.ErrJobNotFound
	case !job.Status.CanTransitionTo(models.JobStatusCompleted):
		err = appErrors.ErrInvalidStatusTransition
	default:
		err = o.services.JobService.CompleteJob(ctx, jobID)
	}
	if err != nil {
		o.handleError(ctx, err, "Failed to complete job")
		o.finish(ctx, "complete_job", err)
		return
	}

	o.store.Update(func(s state.State) state.Action {
		return state.UpdateJobs{
			MyJobs:  state.Ptr(nonNilJobs(models.WithJobStatus(s.MyJobs, jobID, models.JobStatusCompleted))),
			AllJobs: state.Ptr(nonNilJobs(models.WithJobStatus(s.AllJobs, jobID, models.JobStatusCompleted))),
		}
	})
	if s.UserRole == models.UserRolePharmacist {
		o.store.Dispatch(state.SetUserData{JobToReviewID: state.Ptr(jobID)})
	}
	o.finish(ctx, "complete_job", nil)
}

func hasApplicant(list []models.Applicant, applicantID string) bool {
	for _, a := range list {
		if a.ID == applicantID {
			return true
		}
	}
	return false
}
