package helpers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pharmaconnect_core/internal/auth"
	"pharmaconnect_core/internal/middleware"
	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/services/dto"
)

// ValidOTP - единственный код, который принимает фейковый сервер
const ValidOTP = "123456"

// Fault - подмена ответа маршрута для тестов
type Fault struct {
	Status int
	Body   gin.H
	Delay  time.Duration
	// Drop рвёт соединение без ответа (эмуляция офлайна)
	Drop bool
	// Times - сколько запросов затронуть, 0 - все
	Times int
}

type fakeUser struct {
	ID            string
	Email         string
	PasswordHash  string
	Role          models.UserRole
	Profile       models.Profile
	EmailVerified bool
	PhoneVerified bool
}

// UserSeed - пользователь для заполнения фейкового сервера
type UserSeed struct {
	Email           string
	Password        string
	Role            models.UserRole
	FirstName       string
	LastName        string
	PharmacyName    string
	Phone           string
	Address         string
	LicenseVerified bool
	ContactVerified bool
}

// FakeAPI - REST API PharmaConnect в памяти на gin для тестов клиента
type FakeAPI struct {
	Server *httptest.Server
	tokens *auth.TokenManager

	// AutoApproveDocuments - загруженные документы сразу approved
	AutoApproveDocuments bool

	mu            sync.Mutex
	users         map[string]*fakeUser // по ID
	refreshTokens map[string]string    // refresh -> userID
	issued        []string
	revoked       map[string]bool
	refreshFails  bool

	jobs         map[string]*models.Job
	jobOrder     []string
	jobOwner     map[string]string
	applications map[string]map[string]bool // jobID -> userID
	savedJobs    map[string]map[string]bool
	documents    map[string][]dto.DocumentRecord
	convs        map[string]*models.Conversation
	convOrder    []string

	faults map[string]*Fault
	hits   map[string]int
}

// NewFakeAPI запускает сервер и закрывает его по окончании теста
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeAPI{
		tokens:               auth.NewTokenManager("fake-api-secret", time.Hour),
		AutoApproveDocuments: true,
		users:                make(map[string]*fakeUser),
		refreshTokens:        make(map[string]string),
		revoked:              make(map[string]bool),
		jobs:                 make(map[string]*models.Job),
		jobOwner:             make(map[string]string),
		applications:         make(map[string]map[string]bool),
		savedJobs:            make(map[string]map[string]bool),
		documents:            make(map[string][]dto.DocumentRecord),
		convs:                make(map[string]*models.Conversation),
		faults:               make(map[string]*Fault),
		hits:                 make(map[string]int),
	}
	f.Server = httptest.NewServer(f.router())
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// ============================================
// Управление из тестов
// ============================================

func routeKey(method, route string) string {
	return method + " " + route
}

// SetFault подменяет ответ маршрута, route в формате gin: "/jobs/:id/apply"
func (f *FakeAPI) SetFault(method, route string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fc := fault
	f.faults[routeKey(method, route)] = &fc
}

func (f *FakeAPI) ClearFaults() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = make(map[string]*Fault)
}

// Hits - сколько запросов дошло до маршрута
func (f *FakeAPI) Hits(method, route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[routeKey(method, route)]
}

// ExpireAccessTokens делает все выданные access-токены недействительными
func (f *FakeAPI) ExpireAccessTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, token := range f.issued {
		f.revoked[token] = true
	}
}

// FailRefresh - /auth/refresh отвечает 401
func (f *FakeAPI) FailRefresh(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshFails = fail
}

func (f *FakeAPI) AddUser(seed UserSeed) string {
	hash, err := auth.HashPassword(seed.Password)
	if err != nil {
		panic(err)
	}
	user := &fakeUser{
		ID:            uuid.NewString(),
		Email:         seed.Email,
		PasswordHash:  hash,
		Role:          seed.Role,
		EmailVerified: seed.ContactVerified,
		PhoneVerified: seed.ContactVerified,
	}
	user.Profile = models.Profile{
		ID:           user.ID,
		Phone:        seed.Phone,
		FirstName:    seed.FirstName,
		LastName:     seed.LastName,
		PharmacyName: seed.PharmacyName,
		Address:      seed.Address,
	}
	if seed.Role == models.UserRolePharmacist {
		user.Profile.LicenseVerificationStatus = "pending"
		if seed.LicenseVerified {
			user.Profile.LicenseVerificationStatus = "verified"
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return user.ID
}

// AddJob публикует смену от имени аптеки, возвращает ID
func (f *FakeAPI) AddJob(pharmacyID string, job models.Job) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addJobLocked(pharmacyID, job)
}

func (f *FakeAPI) addJobLocked(pharmacyID string, job models.Job) string {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.JobStatusActive
	}
	if owner, ok := f.users[pharmacyID]; ok && job.Pharmacy == "" {
		job.Pharmacy = owner.Profile.PharmacyName
	}
	j := job
	f.jobs[j.ID] = &j
	f.jobOrder = append(f.jobOrder, j.ID)
	f.jobOwner[j.ID] = pharmacyID
	return j.ID
}

// AddApplication - фармацевт уже откликнулся на смену
func (f *FakeAPI) AddApplication(jobID, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyLocked(jobID, f.users[userID])
}

// AddDocument - документ пользователя с заданным статусом
func (f *FakeAPI) AddDocument(userID string, key models.DocumentKey, status models.DocumentStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putDocumentLocked(userID, key, string(key)+".pdf", status)
}

// Job - копия смены для проверок
func (f *FakeAPI) Job(jobID string) (models.Job, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[jobID]
	if !ok {
		return models.Job{}, false
	}
	return *j, true
}

func (f *FakeAPI) HasApplied(jobID, userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applications[jobID][userID]
}

// ============================================
// Роутер
// ============================================

func (f *FakeAPI) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestIDMiddleware(), middleware.LoggingMiddleware(), f.countHits(), f.injectFaults())

	r.POST("/auth/login", f.login)
	r.POST("/auth/signup", f.signup)
	r.POST("/auth/refresh", f.refresh)
	r.POST("/auth/logout", f.logout)

	api := r.Group("/", f.rejectRevoked(), middleware.AuthMiddleware(f.tokens))
	{
		api.POST("/auth/verify-otp", f.verifyOTP)
		api.POST("/auth/resend-otp", f.resendOTP)

		api.GET("/users/profile", f.getProfile)
		api.PUT("/users/profile", f.updateProfile)
		api.PUT("/users/contact", f.updateContact)
		api.PUT("/users/address", f.updateAddress)
		api.GET("/users/stats", middleware.RequirePermission("dashboard:read"), f.getStats)

		api.GET("/jobs/search", middleware.RequirePermission("jobs:search"), f.searchJobs)
		api.GET("/jobs/my", f.myJobs)
		api.GET("/jobs/posted", middleware.RequirePermission("jobs:post"), f.postedJobs)
		api.POST("/jobs", middleware.RequirePermission("jobs:post"), f.createJob)
		api.GET("/jobs/:id", f.getJob)
		api.PUT("/jobs/:id", middleware.RequirePermission("jobs:post"), f.updateJob)
		api.POST("/jobs/:id/apply", middleware.RequirePermission("jobs:apply"), f.applyToJob)
		api.POST("/jobs/:id/save", middleware.RequirePermission("jobs:save"), f.saveJob)
		api.DELETE("/jobs/:id/save", middleware.RequirePermission("jobs:save"), f.unsaveJob)
		api.GET("/jobs/:id/applicants", middleware.RequirePermission("applicants:manage"), f.getApplicants)
		api.POST("/jobs/:id/confirm", middleware.RequirePermission("applicants:manage"), f.confirmApplicant)
		api.POST("/jobs/:id/decline", middleware.RequirePermission("applicants:manage"), f.declineApplicant)
		api.POST("/jobs/:id/save-applicant", middleware.RequirePermission("applicants:manage"), f.saveApplicant)
		api.POST("/jobs/:id/complete", middleware.RequirePermission("jobs:complete"), f.completeJob)
		api.POST("/jobs/:id/rate-pharmacist", middleware.RequirePermission("rate:pharmacist"), f.ratePharmacist)
		api.POST("/jobs/:id/rate-pharmacy", middleware.RequirePermission("rate:pharmacy"), f.ratePharmacy)

		api.GET("/documents", f.getDocuments)
		api.POST("/documents/upload", middleware.RequirePermission("documents:write"), f.uploadDocument)
		api.DELETE("/documents/:id", middleware.RequirePermission("documents:write"), f.deleteDocument)

		api.GET("/messages/conversations", f.getConversations)
		api.GET("/messages/conversations/:id/messages", f.getMessages)
		api.POST("/messages/conversations/:id/messages", middleware.RequirePermission("messages:write"), f.sendMessage)
		api.POST("/messages/conversations/:id/read", f.markRead)
	}
	return r
}

func (f *FakeAPI) countHits() gin.HandlerFunc {
	return func(c *gin.Context) {
		f.mu.Lock()
		f.hits[routeKey(c.Request.Method, c.FullPath())]++
		f.mu.Unlock()
		c.Next()
	}
}

func (f *FakeAPI) injectFaults() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := routeKey(c.Request.Method, c.FullPath())

		f.mu.Lock()
		fault, ok := f.faults[key]
		var current Fault
		if ok {
			current = *fault
			if fault.Times > 0 {
				fault.Times--
				if fault.Times == 0 {
					delete(f.faults, key)
				}
			}
		}
		f.mu.Unlock()

		if !ok {
			c.Next()
			return
		}

		if current.Delay > 0 {
			select {
			case <-time.After(current.Delay):
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
		if current.Drop {
			if conn, _, err := c.Writer.Hijack(); err == nil {
				_ = conn.Close()
			}
			c.Abort()
			return
		}
		if current.Status != 0 {
			body := current.Body
			if body == nil {
				body = gin.H{"error": http.StatusText(current.Status)}
			}
			c.AbortWithStatusJSON(current.Status, body)
			return
		}
		c.Next()
	}
}

func (f *FakeAPI) rejectRevoked() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := ""
		if len(header) > len("Bearer ") {
			token = header[len("Bearer "):]
		}
		f.mu.Lock()
		revoked := f.revoked[token]
		f.mu.Unlock()
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			return
		}
		c.Next()
	}
}

func (f *FakeAPI) issueAccessLocked(user *fakeUser) (string, error) {
	token, err := f.tokens.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return "", err
	}
	f.issued = append(f.issued, token)
	return token, nil
}

func (f *FakeAPI) currentUserLocked(c *gin.Context) *fakeUser {
	return f.users[middleware.GetUserID(c)]
}
