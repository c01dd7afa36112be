package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleJobs() []Job {
	return []Job{
		{
			ID:     "job1",
			Role:   "Locum Pharmacist",
			Status: JobStatusActive,
			Applicants: []Applicant{
				{ID: "a1", Name: "Tendai Moyo"},
				{ID: "a2", Name: "Rudo Chikwanha"},
			},
		},
		{ID: "job2", Status: JobStatusActive},
	}
}

func TestJobStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobStatusActive, JobStatusConfirmed, true},
		{JobStatusPending, JobStatusConfirmed, true},
		{JobStatusConfirmed, JobStatusCompleted, true},
		{JobStatusActive, JobStatusCompleted, false},
		{JobStatusCompleted, JobStatusActive, false},
		{JobStatusConfirmed, JobStatusActive, false},
		{JobStatusConfirmed, JobStatusCancelled, true},
		{JobStatusCancelled, JobStatusCancelled, false},
		{JobStatusClosed, JobStatusConfirmed, false},
		// сервер может не прислать статус
		{"", JobStatusConfirmed, true},
		{"", JobStatusCancelled, true},
		{"", JobStatusCompleted, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestWithConfirmedApplicant_DoesNotMutateInput(t *testing.T) {
	// 1. Подготовка
	jobs := sampleJobs()
	applicant := jobs[0].Applicants[0]

	// 2. Действие
	updated := WithConfirmedApplicant(jobs, "job1", applicant)

	// 3. Проверка
	assert.Equal(t, JobStatusConfirmed, updated[0].Status)
	require.NotNil(t, updated[0].ConfirmedApplicant)
	assert.Equal(t, "a1", updated[0].ConfirmedApplicant.ID)
	assert.Equal(t, JobStatusActive, jobs[0].Status)
	assert.Nil(t, jobs[0].ConfirmedApplicant)
	assert.Equal(t, jobs[1], updated[1])
}

func TestWithoutApplicant_Idempotent(t *testing.T) {
	jobs := sampleJobs()

	once := WithoutApplicant(jobs, "job1", "a1")
	twice := WithoutApplicant(once, "job1", "a1")

	assert.Len(t, once[0].Applicants, 1)
	assert.Equal(t, once, twice)
	assert.Len(t, jobs[0].Applicants, 2)
}

func TestWithSavedApplicant_MovesBetweenLists(t *testing.T) {
	jobs := sampleJobs()
	applicant := jobs[0].Applicants[1]

	updated := WithSavedApplicant(jobs, "job1", applicant)
	updated = WithSavedApplicant(updated, "job1", applicant)

	assert.Len(t, updated[0].Applicants, 1)
	assert.Equal(t, "a1", updated[0].Applicants[0].ID)
	require.Len(t, updated[0].SavedApplicants, 1)
	assert.Equal(t, "a2", updated[0].SavedApplicants[0].ID)
	assert.Empty(t, jobs[0].SavedApplicants)
}

func TestWithRatings(t *testing.T) {
	feedback := "Great shift"
	jobs := WithPharmacistRating(sampleJobs(), "job1", 5, &feedback)
	jobs = WithPharmacyRating(jobs, "job2", 4, nil)

	require.NotNil(t, jobs[0].PharmacistRating)
	assert.Equal(t, 5, *jobs[0].PharmacistRating)
	assert.Equal(t, "Great shift", *jobs[0].PharmacistFeedback)
	require.NotNil(t, jobs[1].PharmacyRating)
	assert.Equal(t, 4, *jobs[1].PharmacyRating)
	assert.Nil(t, jobs[1].PharmacyFeedback)
}

func TestAverageRating(t *testing.T) {
	five, three := 5, 3
	jobs := []Job{
		{ID: "1", Status: JobStatusCompleted, PharmacistRating: &five},
		{ID: "2", Status: JobStatusCompleted, PharmacistRating: &three},
		{ID: "3", Status: JobStatusConfirmed, PharmacistRating: &three},
		{ID: "4", Status: JobStatusCompleted},
	}

	assert.InDelta(t, 4.0, AverageRating(jobs), 0.0001)
	assert.Zero(t, AverageRating(nil))
}

func TestJobStatus_UnmarshalAnyCase(t *testing.T) {
	var job Job
	err := json.Unmarshal([]byte(`{"id":"j","status":"Confirmed"}`), &job)

	require.NoError(t, err)
	assert.Equal(t, JobStatusConfirmed, job.Status)
}

func TestNeedsPharmacyReview(t *testing.T) {
	four := 4
	assert.True(t, Job{Status: JobStatusCompleted}.NeedsPharmacyReview())
	assert.False(t, Job{Status: JobStatusCompleted, PharmacyRating: &four}.NeedsPharmacyReview())
	assert.False(t, Job{Status: JobStatusConfirmed}.NeedsPharmacyReview())
}
