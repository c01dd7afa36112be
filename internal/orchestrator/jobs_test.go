package orchestrator

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/services/dto"
	"pharmaconnect_core/internal/state"
	"pharmaconnect_core/test/helpers"
)

const applyRoute = "/jobs/:id/apply"

func TestApplyToJob_LicenseNotVerified(t *testing.T) {
	// 1. Подготовка
	h := newHarness(t)
	pharmacyID := h.api.SeedPharmacy()
	h.api.SeedPharmacist(false)
	jobID := h.api.AddJob(pharmacyID, helpers.SampleJob())
	h.login(t, helpers.DemoPharmacistEmail)

	// 2. Действие
	h.orch.ApplyToJob(context.Background(), jobID)

	// 3. Проверка: запрос не отправлен, множества не изменились
	assert.Equal(t, 0, h.api.Hits(http.MethodPost, applyRoute))
	s := h.store.Snapshot()
	assert.Equal(t, 0, s.AppliedJobIDs.Len())
	assert.Nil(t, s.Error)

	notice, ok := h.notices.Last()
	require.True(t, ok)
	assert.Equal(t, NoticeWarning, notice.Level)
	assert.Equal(t, "Cannot Apply", notice.Title)
	assert.Equal(t, "Your license must be verified to apply for jobs.", notice.Message)
}

func TestApplyToJob_RemovesFromSaved(t *testing.T) {
	h := newHarness(t)
	pharmacyID := h.api.SeedPharmacy()
	pharmacistID := h.api.SeedPharmacist(true)
	jobID := h.api.AddJob(pharmacyID, helpers.SampleJob())
	h.login(t, helpers.DemoPharmacistEmail)

	h.orch.SaveJob(context.Background(), jobID)
	require.True(t, h.store.Snapshot().SavedJobIDs.Has(jobID))

	h.orch.ApplyToJob(context.Background(), jobID)

	s := h.store.Snapshot()
	assert.True(t, s.AppliedJobIDs.Has(jobID))
	assert.False(t, s.SavedJobIDs.Has(jobID))
	assert.True(t, h.api.HasApplied(jobID, pharmacistID))

	notice, _ := h.notices.Last()
	assert.Equal(t, "Application submitted successfully!", notice.Message)
}

func TestApplyToJob_AlreadyApplied(t *testing.T) {
	// 1. Подготовка: сервер уже знает об отклике, клиент - нет
	h := newHarness(t)
	pharmacyID := h.api.SeedPharmacy()
	pharmacistID := h.api.SeedPharmacist(true)
	jobID := h.api.AddJob(pharmacyID, helpers.SampleJob())
	h.login(t, helpers.DemoPharmacistEmail)
	h.api.AddApplication(jobID, pharmacistID)

	// 2. Действие
	h.orch.ApplyToJob(context.Background(), jobID)

	// 3. Проверка
	s := h.store.Snapshot()
	assert.Nil(t, s.Error)
	assert.False(t, s.AppliedJobIDs.Has(jobID))

	notice, ok := h.notices.Last()
	require.True(t, ok)
	assert.Equal(t, "Already Applied", notice.Title)
	assert.Equal(t, "You have already applied to this job.", notice.Message)
}

func TestJobSets_MutualExclusion(t *testing.T) {
	h := newHarness(t)
	pharmacyID := h.api.SeedPharmacy()
	h.api.SeedPharmacist(true)
	jobA := h.api.AddJob(pharmacyID, helpers.SampleJob())
	jobB := h.api.AddJob(pharmacyID, helpers.SampleJob())
	h.login(t, helpers.DemoPharmacistEmail)
	ctx := context.Background()

	h.orch.SaveJob(ctx, jobA)
	h.orch.ApplyToJob(ctx, jobA)
	h.orch.SaveJob(ctx, jobA)
	h.orch.SaveJob(ctx, jobB)
	h.orch.UnsaveJob(ctx, jobB)
	h.orch.SaveJob(ctx, jobB)

	s := h.store.Snapshot()
	for _, id := range []string{jobA, jobB} {
		assert.False(t, s.AppliedJobIDs.Has(id) && s.SavedJobIDs.Has(id), "смена %s в обоих множествах", id)
	}
	assert.True(t, s.AppliedJobIDs.Has(jobA))
	assert.True(t, s.SavedJobIDs.Has(jobB))
	assert.Equal(t, 3, h.api.Hits(http.MethodPost, "/jobs/:id/save"))
}

func TestSaveJob_TimeoutIsNotOffline(t *testing.T) {
	// 1. Подготовка: сервер отвечает дольше таймаута клиента
	h := newHarnessWith(t, harnessConfig{clientTimeout: 200 * time.Millisecond})
	pharmacyID := h.api.SeedPharmacy()
	h.api.SeedPharmacist(true)
	jobID := h.api.AddJob(pharmacyID, helpers.SampleJob())
	h.login(t, helpers.DemoPharmacistEmail)
	h.api.SetFault(http.MethodPost, "/jobs/:id/save", helpers.Fault{Delay: 2 * time.Second})

	// 2. Действие
	h.orch.SaveJob(context.Background(), jobID)

	// 3. Проверка
	s := h.store.Snapshot()
	assert.False(t, s.IsOffline)
	assert.False(t, s.IsLoading)
	require.NotNil(t, s.Error)
	assert.Equal(t, "Failed to save job", *s.Error)
	assert.False(t, s.SavedJobIDs.Has(jobID))
	assert.Equal(t, 1, h.api.Hits(http.MethodPost, "/jobs/:id/save"))
}

func TestSaveJob_OfflineAndRetry(t *testing.T) {
	h := newHarness(t)
	pharmacyID := h.api.SeedPharmacy()
	h.api.SeedPharmacist(true)
	jobID := h.api.AddJob(pharmacyID, helpers.SampleJob())
	h.login(t, helpers.DemoPharmacistEmail)
	h.api.SetFault(http.MethodPost, "/jobs/:id/save", helpers.Fault{Drop: true})

	h.orch.SaveJob(context.Background(), jobID)

	s := h.store.Snapshot()
	assert.True(t, s.IsOffline)
	require.NotNil(t, s.Error)
	assert.Equal(t, "You appear to be offline. Please check your connection.", *s.Error)

	h.api.ClearFaults()
	h.orch.RetryConnection(context.Background())

	s = h.store.Snapshot()
	assert.False(t, s.IsOffline)
	assert.Nil(t, s.Error)
	assert.True(t, s.IsAuthenticated)
}

func TestExpiredToken_RefreshAndRetry(t *testing.T) {
	// 1. Подготовка
	h := newHarness(t)
	pharmacyID := h.api.SeedPharmacy()
	h.api.SeedPharmacist(true)
	jobID := h.api.AddJob(pharmacyID, helpers.SampleJob())
	h.login(t, helpers.DemoPharmacistEmail)
	oldAccess, _ := h.tokens.GetAccessToken(context.Background())
	h.api.ExpireAccessTokens()

	// 2. Действие
	h.orch.SaveJob(context.Background(), jobID)

	// 3. Проверка: один refresh, одна повторная попытка
	s := h.store.Snapshot()
	assert.True(t, s.SavedJobIDs.Has(jobID))
	assert.Nil(t, s.Error)
	assert.Equal(t, 1, h.api.Hits(http.MethodPost, "/auth/refresh"))
	assert.Equal(t, 2, h.api.Hits(http.MethodPost, "/jobs/:id/save"))

	newAccess, _ := h.tokens.GetAccessToken(context.Background())
	assert.NotEqual(t, oldAccess, newAccess)
}

func TestExpiredToken_RefreshFailsForcesLogout(t *testing.T) {
	// 1. Подготовка
	h := newHarness(t)
	pharmacyID := h.api.SeedPharmacy()
	h.api.SeedPharmacist(true)
	jobID := h.api.AddJob(pharmacyID, helpers.SampleJob())
	h.login(t, helpers.DemoPharmacistEmail)
	h.api.ExpireAccessTokens()
	h.api.FailRefresh(true)

	// 2. Действие
	h.orch.SaveJob(context.Background(), jobID)

	// 3. Проверка
	s := h.store.Snapshot()
	assert.False(t, s.IsAuthenticated)
	assert.Empty(t, s.UserID)
	assert.False(t, s.IsLoading)
	require.NotNil(t, s.Error)
	assert.Equal(t, msgSessionExpired, *s.Error)

	access, _ := h.tokens.GetAccessToken(context.Background())
	refresh, _ := h.tokens.GetRefreshToken(context.Background())
	assert.Empty(t, access)
	assert.Empty(t, refresh)
	assert.Equal(t, 1, h.api.Hits(http.MethodPost, "/jobs/:id/save"))
}

func TestError_AutoClearedAfterDelay(t *testing.T) {
	h := newHarness(t, WithErrorClearDelay(50*time.Millisecond))
	pharmacyID := h.api.SeedPharmacy()
	h.api.SeedPharmacist(true)
	jobID := h.api.AddJob(pharmacyID, helpers.SampleJob())
	h.login(t, helpers.DemoPharmacistEmail)
	h.api.SetFault(http.MethodPost, "/jobs/:id/save", helpers.Fault{Status: http.StatusInternalServerError})

	h.orch.SaveJob(context.Background(), jobID)
	require.NotNil(t, h.store.Snapshot().Error)

	assert.Eventually(t, func() bool {
		return h.store.Snapshot().Error == nil
	}, time.Second, 10*time.Millisecond)
}

func TestError_NewerErrorNotClearedByOldTimer(t *testing.T) {
	h := newHarness(t, WithErrorClearDelay(80*time.Millisecond))

	h.orch.setError("first")
	time.Sleep(50 * time.Millisecond)
	h.orch.setError("second")
	time.Sleep(50 * time.Millisecond)

	// таймер первой ошибки уже сработал бы, вторая остаётся
	s := h.store.Snapshot()
	require.NotNil(t, s.Error)
	assert.Equal(t, "second", *s.Error)
}

func TestMarkJobCompletedAndRatePharmacy(t *testing.T) {
	// 1. Подготовка: подтверждённая смена фармацевта
	h := newHarness(t)
	pharmacyID := h.api.SeedPharmacy()
	pharmacistID := h.api.SeedPharmacist(true)
	job := helpers.SampleJob()
	job.Status = models.JobStatusConfirmed
	job.ConfirmedApplicant = &models.Applicant{ID: pharmacistID, Name: "Tendai Moyo"}
	jobID := h.api.AddJob(pharmacyID, job)
	s := h.login(t, helpers.DemoPharmacistEmail)
	require.Nil(t, s.JobToReviewID)
	ctx := context.Background()

	// 2. Действие
	h.orch.MarkJobCompleted(ctx, jobID)

	// 3. Проверка
	s = h.store.Snapshot()
	completed, ok := models.FindJob(s.MyJobs, jobID)
	require.True(t, ok)
	assert.Equal(t, models.JobStatusCompleted, completed.Status)
	require.NotNil(t, s.JobToReviewID)
	assert.Equal(t, jobID, *s.JobToReviewID)

	feedback := "Friendly team"
	h.orch.RatePharmacy(ctx, jobID, 5, &feedback)

	s = h.store.Snapshot()
	assert.Nil(t, s.JobToReviewID)
	rated, _ := models.FindJob(s.MyJobs, jobID)
	require.NotNil(t, rated.PharmacyRating)
	assert.Equal(t, 5, *rated.PharmacyRating)
	assert.Equal(t, "Friendly team", *rated.PharmacyFeedback)

	serverJob, _ := h.api.Job(jobID)
	require.NotNil(t, serverJob.PharmacyRating)
}

func TestMarkJobCompleted_InvalidTransition(t *testing.T) {
	h := newHarness(t)
	pharmacyID := h.api.SeedPharmacy()
	h.api.SeedPharmacist(true)
	jobID := h.api.AddJob(pharmacyID, helpers.SampleJob())
	h.login(t, helpers.DemoPharmacistEmail)

	// active -> completed запрещён
	h.orch.MarkJobCompleted(context.Background(), jobID)

	assert.Equal(t, 0, h.api.Hits(http.MethodPost, "/jobs/:id/complete"))
	notice, _ := h.notices.Last()
	assert.Equal(t, "Job status cannot change this way", notice.Message)
}

func TestRatePharmacy_InvalidRatingNoNetwork(t *testing.T) {
	h := newHarness(t)
	h.api.SeedPharmacist(true)
	h.login(t, helpers.DemoPharmacistEmail)

	h.orch.RatePharmacy(context.Background(), "job-1", 6, nil)

	assert.Equal(t, 0, h.api.Hits(http.MethodPost, "/jobs/:id/rate-pharmacy"))
	assert.Nil(t, h.store.Snapshot().Error)
}

// ============================================
// Аптека
// ============================================

func pharmacyWithApplicant(t *testing.T) (*harness, string, models.Applicant) {
	t.Helper()
	h := newHarness(t)
	pharmacyID := h.api.SeedPharmacy()
	pharmacistID := h.api.SeedPharmacist(true)
	jobID := h.api.AddJob(pharmacyID, helpers.SampleJob())
	h.api.AddApplication(jobID, pharmacistID)

	s := h.login(t, helpers.DemoPharmacyEmail)
	job, ok := models.FindJob(s.AllJobs, jobID)
	require.True(t, ok)
	require.Len(t, job.Applicants, 1)
	return h, jobID, job.Applicants[0]
}

func TestConfirmApplicant_CreatesOneConversation(t *testing.T) {
	// 1. Подготовка
	h, jobID, applicant := pharmacyWithApplicant(t)
	ctx := context.Background()

	// 2. Действие
	h.orch.ConfirmApplicant(ctx, jobID, applicant)
	h.orch.ConfirmApplicant(ctx, jobID, applicant)

	// 3. Проверка
	s := h.store.Snapshot()
	job, _ := models.FindJob(s.AllJobs, jobID)
	assert.Equal(t, models.JobStatusConfirmed, job.Status)
	require.NotNil(t, job.ConfirmedApplicant)
	assert.Equal(t, applicant.ID, job.ConfirmedApplicant.ID)

	require.Len(t, s.Conversations, 1)
	assert.Equal(t, jobID, s.Conversations[0].ID)
	assert.Equal(t, "Avenues Pharmacy", s.Conversations[0].PharmacyName)
	assert.Equal(t, "Tendai Moyo", s.Conversations[0].PharmacistName)
	assert.Equal(t, 1, h.api.Hits(http.MethodPost, "/jobs/:id/confirm"))
}

func TestConfirmApplicant_JobWithoutStatus(t *testing.T) {
	// 1. Подготовка: статус смены не пришёл с сервера
	h, jobID, applicant := pharmacyWithApplicant(t)
	h.store.Update(func(s state.State) state.Action {
		jobs := make([]models.Job, len(s.AllJobs))
		copy(jobs, s.AllJobs)
		for i := range jobs {
			if jobs[i].ID == jobID {
				jobs[i].Status = ""
			}
		}
		return state.UpdateJobs{AllJobs: &jobs}
	})

	// 2. Действие
	h.orch.ConfirmApplicant(context.Background(), jobID, applicant)

	// 3. Проверка
	s := h.store.Snapshot()
	assert.Nil(t, s.Error)
	job, _ := models.FindJob(s.AllJobs, jobID)
	assert.Equal(t, models.JobStatusConfirmed, job.Status)
	require.Len(t, s.Conversations, 1)
	assert.Equal(t, 1, h.api.Hits(http.MethodPost, "/jobs/:id/confirm"))
}

func TestDeclineApplicant_Idempotent(t *testing.T) {
	h, jobID, applicant := pharmacyWithApplicant(t)
	ctx := context.Background()

	h.orch.DeclineApplicant(ctx, jobID, applicant.ID)
	h.orch.DeclineApplicant(ctx, jobID, applicant.ID)

	s := h.store.Snapshot()
	job, _ := models.FindJob(s.AllJobs, jobID)
	assert.Empty(t, job.Applicants)
	assert.Nil(t, s.Error)
	assert.Equal(t, 1, h.api.Hits(http.MethodPost, "/jobs/:id/decline"))
}

func TestSaveApplicantForLater(t *testing.T) {
	h, jobID, applicant := pharmacyWithApplicant(t)

	h.orch.SaveApplicantForLater(context.Background(), jobID, applicant)

	job, _ := models.FindJob(h.store.Snapshot().AllJobs, jobID)
	assert.Empty(t, job.Applicants)
	require.Len(t, job.SavedApplicants, 1)
	assert.Equal(t, applicant.ID, job.SavedApplicants[0].ID)
}

func TestRatePharmacist(t *testing.T) {
	h, jobID, applicant := pharmacyWithApplicant(t)
	ctx := context.Background()
	h.orch.ConfirmApplicant(ctx, jobID, applicant)

	h.orch.RatePharmacist(ctx, jobID, 4, nil)

	job, _ := models.FindJob(h.store.Snapshot().AllJobs, jobID)
	require.NotNil(t, job.PharmacistRating)
	assert.Equal(t, 4, *job.PharmacistRating)
	notice, _ := h.notices.Last()
	assert.Equal(t, "Thank you for your feedback!", notice.Message)
}

func TestPostJob(t *testing.T) {
	// 1. Подготовка
	h := newHarness(t)
	h.api.SeedPharmacy()
	h.login(t, helpers.DemoPharmacyEmail)

	// 2. Действие: адрес и город берутся из профиля
	h.orch.PostJob(context.Background(), dto.CreateJobRequest{
		Role:         "Locum Pharmacist",
		Date:         "2026-11-05",
		Time:         "09:00 - 17:00",
		Rate:         "$30/hr",
		FacilityType: models.FacilityTypeHospital,
		ShiftType:    models.ShiftTypeAfternoon,
	})

	// 3. Проверка
	s := h.store.Snapshot()
	require.Len(t, s.AllJobs, 1)
	assert.Equal(t, "12 Baines Ave, Harare", s.AllJobs[0].Location)
	assert.Equal(t, models.JobStatusActive, s.AllJobs[0].Status)
	assert.False(t, s.IsLoading)
	notice, _ := h.notices.Last()
	assert.Equal(t, "Job posted successfully!", notice.Message)
}

func TestPostJob_PharmacistNotAllowed(t *testing.T) {
	h := newHarness(t)
	h.api.SeedPharmacist(true)
	h.login(t, helpers.DemoPharmacistEmail)

	h.orch.PostJob(context.Background(), dto.CreateJobRequest{Role: "x"})

	assert.Equal(t, 0, h.api.Hits(http.MethodPost, "/jobs"))
	notice, _ := h.notices.Last()
	assert.Equal(t, "Only pharmacies can perform this action.", notice.Message)
}

func TestCityFromAddress(t *testing.T) {
	assert.Equal(t, "Bulawayo", cityFromAddress("5 Fife St, Bulawayo"))
	assert.Equal(t, defaultJobCity, cityFromAddress("5 Fife St"))
	assert.Equal(t, defaultJobCity, cityFromAddress("5 Fife St, "))
}

func TestLoadingFlag_NestedWorkflows(t *testing.T) {
	h := newHarness(t)
	h.store.Dispatch(state.SetLoading{Loading: false})

	outer := h.orch.beginLoading()
	inner := h.orch.beginLoading()
	assert.True(t, h.store.Snapshot().IsLoading)

	inner()
	assert.True(t, h.store.Snapshot().IsLoading)
	inner()
	outer()
	assert.False(t, h.store.Snapshot().IsLoading)
}

func TestLoadingFlag_ReleasedOnPanic(t *testing.T) {
	h := newHarness(t)

	assert.Panics(t, func() {
		defer h.orch.beginLoading()()
		panic("boom")
	})
	assert.False(t, h.store.Snapshot().IsLoading)
}
