package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaconnect_core/internal/appErrors"
	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/repositories"
	"pharmaconnect_core/internal/services/dto"
	"pharmaconnect_core/internal/storage"
)

type recordedCall struct {
	Method   string
	Endpoint string
	Query    url.Values
	Body     interface{}
	Fields   map[string]string
}

// recordingAPI запоминает вызовы и отвечает заранее заданным JSON
type recordingAPI struct {
	calls     []recordedCall
	responses map[string]string
	err       error
}

func (r *recordingAPI) respond(key string, out interface{}) error {
	if r.err != nil {
		return r.err
	}
	if raw, ok := r.responses[key]; ok && out != nil {
		return json.Unmarshal([]byte(raw), out)
	}
	return nil
}

func (r *recordingAPI) Get(_ context.Context, endpoint string, query url.Values, out interface{}) error {
	r.calls = append(r.calls, recordedCall{Method: "GET", Endpoint: endpoint, Query: query})
	return r.respond("GET "+endpoint, out)
}

func (r *recordingAPI) Post(_ context.Context, endpoint string, body, out interface{}) error {
	r.calls = append(r.calls, recordedCall{Method: "POST", Endpoint: endpoint, Body: body})
	return r.respond("POST "+endpoint, out)
}

func (r *recordingAPI) Put(_ context.Context, endpoint string, body, out interface{}) error {
	r.calls = append(r.calls, recordedCall{Method: "PUT", Endpoint: endpoint, Body: body})
	return r.respond("PUT "+endpoint, out)
}

func (r *recordingAPI) Delete(_ context.Context, endpoint string, out interface{}) error {
	r.calls = append(r.calls, recordedCall{Method: "DELETE", Endpoint: endpoint})
	return r.respond("DELETE "+endpoint, out)
}

func (r *recordingAPI) Upload(_ context.Context, endpoint string, fields map[string]string, _, _ string, _ []byte, out interface{}) error {
	r.calls = append(r.calls, recordedCall{Method: "UPLOAD", Endpoint: endpoint, Fields: fields})
	return r.respond("UPLOAD "+endpoint, out)
}

func newTokens(t *testing.T) repositories.TokenRepository {
	t.Helper()
	store, err := storage.NewMemoryStorage()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return repositories.NewTokenRepository(store)
}

func TestAuthService_LoginStoresSession(t *testing.T) {
	// 1. Подготовка
	ctx := context.Background()
	api := &recordingAPI{responses: map[string]string{
		"POST /auth/login": `{"accessToken":"a1","refreshToken":"r1","user":{"id":"u1","email":"rx@pc.zw","role":"pharmacist","isEmailVerified":true,"isPhoneVerified":false}}`,
	}}
	tokens := newTokens(t)
	svc := NewAuthService(api, tokens)

	// 2. Действие
	resp, err := svc.Login(ctx, dto.LoginRequest{Email: "rx@pc.zw", Password: "secret1"})

	// 3. Проверка
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.User.ID)
	access, _ := tokens.GetAccessToken(ctx)
	refresh, _ := tokens.GetRefreshToken(ctx)
	assert.Equal(t, "a1", access)
	assert.Equal(t, "r1", refresh)

	cached, err := svc.GetCurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, models.UserRolePharmacist, cached.Role)
}

func TestAuthService_LoginFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	api := &recordingAPI{err: appErrors.HTTPError(401, map[string]interface{}{"error": "Invalid credentials"})}
	tokens := newTokens(t)

	_, err := NewAuthService(api, tokens).Login(ctx, dto.LoginRequest{Email: "x@y.z", Password: "nope"})

	assert.True(t, appErrors.IsUnauthorized(err))
	user, _ := tokens.GetCachedUser(ctx)
	assert.Nil(t, user)
}

func TestAuthService_LogoutClearsEvenIfRemoteFails(t *testing.T) {
	ctx := context.Background()
	tokens := newTokens(t)
	require.NoError(t, tokens.SetTokens(ctx, "a", "r"))
	require.NoError(t, tokens.SetCachedUser(ctx, dto.AuthUser{ID: "u1"}))
	api := &recordingAPI{err: appErrors.NetworkError(errors.New("offline"))}
	svc := NewAuthService(api, tokens)

	err := svc.Logout(ctx)

	assert.Error(t, err)
	user, _ := tokens.GetCachedUser(ctx)
	assert.Nil(t, user)
	access, _ := tokens.GetAccessToken(ctx)
	assert.Empty(t, access)

	// Повторный выход без токенов не ходит в сеть
	api.calls = nil
	assert.NoError(t, svc.Logout(ctx))
	assert.Empty(t, api.calls)
}

func TestJobService_Endpoints(t *testing.T) {
	ctx := context.Background()
	api := &recordingAPI{}
	svc := NewJobService(api)
	feedback := "Punctual"

	require.NoError(t, svc.ApplyToJob(ctx, "j1", dto.ApplyRequest{}))
	require.NoError(t, svc.SaveJob(ctx, "j1"))
	require.NoError(t, svc.UnsaveJob(ctx, "j1"))
	require.NoError(t, svc.ConfirmApplicant(ctx, "j1", "a1"))
	require.NoError(t, svc.DeclineApplicant(ctx, "j1", "a2"))
	require.NoError(t, svc.SaveApplicant(ctx, "j1", "a3"))
	require.NoError(t, svc.CompleteJob(ctx, "j1"))
	require.NoError(t, svc.RatePharmacist(ctx, "j1", dto.RatingRequest{Rating: 5, Feedback: &feedback}))
	require.NoError(t, svc.RatePharmacy(ctx, "j1", dto.RatingRequest{Rating: 4}))

	want := []string{
		"POST /jobs/j1/apply",
		"POST /jobs/j1/save",
		"DELETE /jobs/j1/save",
		"POST /jobs/j1/confirm",
		"POST /jobs/j1/decline",
		"POST /jobs/j1/save-applicant",
		"POST /jobs/j1/complete",
		"POST /jobs/j1/rate-pharmacist",
		"POST /jobs/j1/rate-pharmacy",
	}
	got := make([]string, len(api.calls))
	for i, c := range api.calls {
		got[i] = c.Method + " " + c.Endpoint
	}
	assert.Equal(t, want, got)
	assert.Equal(t, dto.ApplicantActionRequest{ApplicantID: "a1"}, api.calls[3].Body)
}

func TestJobService_SearchJobs(t *testing.T) {
	api := &recordingAPI{responses: map[string]string{
		"GET /jobs/search": `{"jobs":[{"id":"j1","status":"active","hasApplied":true}],"page":1,"limit":20,"hasMore":false}`,
	}}

	resp, err := NewJobService(api).SearchJobs(context.Background(), dto.SearchJobsParams{Page: 1, Limit: 20})

	require.NoError(t, err)
	require.Len(t, resp.Jobs, 1)
	assert.True(t, resp.Jobs[0].HasApplied)
	assert.Equal(t, "20", api.calls[0].Query.Get("limit"))
}

func TestServices_PropagateErrorsUnchanged(t *testing.T) {
	original := appErrors.HTTPError(500, map[string]interface{}{"error": "db down"})
	api := &recordingAPI{err: original}
	c := NewServiceContainer(api, newTokens(t))
	ctx := context.Background()

	_, err1 := c.JobService.GetMyJobs(ctx)
	_, err2 := c.MessageService.GetConversations(ctx)
	_, err3 := c.UserService.GetDashboardStats(ctx)
	_, err4 := c.DocumentService.GetDocuments(ctx)

	for _, err := range []error{err1, err2, err3, err4} {
		assert.Same(t, original, err)
	}
}

func TestDocumentAndMessageServices(t *testing.T) {
	ctx := context.Background()
	api := &recordingAPI{responses: map[string]string{
		"POST /messages/conversations/j1/messages": `{"id":"m1","text":"Hello","sender":"pharmacy","timestamp":"2026-10-15T08:00:00Z"}`,
		"UPLOAD /documents/upload":                 `{"uri":"https://files/cv.pdf","name":"cv.pdf"}`,
	}}
	c := NewServiceContainer(api, newTokens(t))

	msg, err := c.MessageService.SendMessage(ctx, "j1", "Hello")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, dto.SendMessageRequest{Content: "Hello"}, api.calls[0].Body)

	file, err := c.DocumentService.UploadDocument(ctx, dto.UploadDocumentRequest{DocumentType: models.DocumentKeyCV, FileName: "cv.pdf", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", file.Name)
	assert.Equal(t, "cv", api.calls[1].Fields["documentType"])

	require.NoError(t, c.DocumentService.DeleteDocument(ctx, "d1"))
	require.NoError(t, c.MessageService.MarkAsRead(ctx, "j1"))
	require.NoError(t, c.UserService.UpdateAddress(ctx, "12 Samora Machel Ave"))
	assert.Equal(t, "DELETE /documents/d1", api.calls[2].Method+" "+api.calls[2].Endpoint)
	assert.Equal(t, "/messages/conversations/j1/read", api.calls[3].Endpoint)
	assert.Equal(t, dto.UpdateAddressRequest{Address: "12 Samora Machel Ave"}, api.calls[4].Body)
}

func TestJobService_ReadAndUpdateEndpoints(t *testing.T) {
	// 1. Подготовка
	ctx := context.Background()
	api := &recordingAPI{responses: map[string]string{
		"GET /jobs/j1":            `{"id":"j1","status":"active","rate":"$25/hr"}`,
		"PUT /jobs/j1":            `{"id":"j1","status":"active","rate":"$30/hr"}`,
		"GET /jobs/j1/applicants": `[{"id":"a1","name":"Tendai Moyo","rating":4.8},{"id":"a2","name":"Rudo Chikwanha"}]`,
	}}
	svc := NewJobService(api)
	rate := "$30/hr"

	// 2. Действие
	job, err := svc.GetJob(ctx, "j1")
	require.NoError(t, err)
	updated, err := svc.UpdateJob(ctx, "j1", dto.UpdateJobRequest{Rate: &rate})
	require.NoError(t, err)
	applicants, err := svc.GetApplicants(ctx, "j1")
	require.NoError(t, err)

	// 3. Проверка
	assert.Equal(t, "j1", job.ID)
	assert.Equal(t, models.JobStatusActive, job.Status)
	assert.Equal(t, "$30/hr", updated.Rate)
	require.Len(t, applicants, 2)
	assert.Equal(t, "Tendai Moyo", applicants[0].Name)
	assert.InDelta(t, 4.8, applicants[0].Rating, 0.001)

	require.Len(t, api.calls, 3)
	assert.Equal(t, "GET /jobs/j1", api.calls[0].Method+" "+api.calls[0].Endpoint)
	assert.Equal(t, "PUT /jobs/j1", api.calls[1].Method+" "+api.calls[1].Endpoint)
	assert.Equal(t, dto.UpdateJobRequest{Rate: &rate}, api.calls[1].Body)
	assert.Equal(t, "GET /jobs/j1/applicants", api.calls[2].Method+" "+api.calls[2].Endpoint)
}

func TestUserAndMessageServices_ProfileAndHistory(t *testing.T) {
	ctx := context.Background()
	api := &recordingAPI{responses: map[string]string{
		"PUT /users/profile":                      `{"id":"u1","phone":"+263771234567","firstName":"Tendai","lastName":"Moyo"}`,
		"GET /messages/conversations/j1/messages": `[{"id":"m1","text":"Hello","sender":"pharmacy","timestamp":"2026-10-15T08:00:00Z"},{"id":"m2","text":"Hi","sender":"pharmacist","timestamp":"2026-10-15T08:01:00Z"}]`,
	}}
	c := NewServiceContainer(api, newTokens(t))
	first := "Tendai"

	profile, err := c.UserService.UpdateProfile(ctx, dto.UpdateProfileRequest{FirstName: &first})
	require.NoError(t, err)
	messages, err := c.MessageService.GetMessages(ctx, "j1")
	require.NoError(t, err)

	assert.Equal(t, "Tendai", profile.FirstName)
	assert.Equal(t, "+263771234567", profile.Phone)
	assert.Equal(t, "PUT /users/profile", api.calls[0].Method+" "+api.calls[0].Endpoint)
	assert.Equal(t, dto.UpdateProfileRequest{FirstName: &first}, api.calls[0].Body)

	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "Hi", messages[1].Text)
	assert.Equal(t, "GET /messages/conversations/j1/messages", api.calls[1].Method+" "+api.calls[1].Endpoint)
}

func TestServices_ReadEndpointsPropagateErrors(t *testing.T) {
	original := appErrors.HTTPError(404, map[string]interface{}{"error": "not found"})
	c := NewServiceContainer(&recordingAPI{err: original}, newTokens(t))
	ctx := context.Background()

	job, err1 := c.JobService.GetJob(ctx, "missing")
	updated, err2 := c.JobService.UpdateJob(ctx, "missing", dto.UpdateJobRequest{})
	applicants, err3 := c.JobService.GetApplicants(ctx, "missing")
	profile, err4 := c.UserService.UpdateProfile(ctx, dto.UpdateProfileRequest{})
	messages, err5 := c.MessageService.GetMessages(ctx, "missing")

	for _, err := range []error{err1, err2, err3, err4, err5} {
		assert.Same(t, original, err)
	}
	assert.Nil(t, job)
	assert.Nil(t, updated)
	assert.Nil(t, applicants)
	assert.Nil(t, profile)
	assert.Nil(t, messages)
}
