package helpers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pharmaconnect_core/internal/auth"
	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/services/dto"
)

func (u *fakeUser) authUser() dto.AuthUser {
	profile := u.Profile
	return dto.AuthUser{
		ID:              u.ID,
		Email:           u.Email,
		Role:            u.Role,
		IsEmailVerified: u.EmailVerified,
		IsPhoneVerified: u.PhoneVerified,
		Profile:         &profile,
	}
}

func (u *fakeUser) applicant() models.Applicant {
	return models.Applicant{
		ID:              u.ID,
		Name:            u.Profile.DisplayName(u.Role),
		Rating:          u.Profile.Rating,
		IsPremium:       u.Profile.IsPremium,
		ShiftsCompleted: u.Profile.ShiftsCompleted,
	}
}

// ============================================
// Auth
// ============================================

func (f *FakeAPI) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if !strings.EqualFold(user.Email, req.Email) || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
			continue
		}
		access, err := f.issueAccessLocked(user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		refresh := uuid.NewString()
		f.refreshTokens[refresh] = user.ID
		c.JSON(http.StatusOK, dto.LoginResponse{AccessToken: access, RefreshToken: refresh, User: user.authUser()})
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
}

func (f *FakeAPI) signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := auth.ValidateRole(string(req.Role)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f.mu.Lock()
	for _, user := range f.users {
		if strings.EqualFold(user.Email, req.Email) {
			f.mu.Unlock()
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
	}
	f.mu.Unlock()

	id := f.AddUser(UserSeed{
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PharmacyName: req.PharmacyName,
		Phone:        req.Phone,
	})
	c.JSON(http.StatusCreated, dto.SignupResponse{Message: "Account created. Please verify your contact details.", UserID: id})
}

func (f *FakeAPI) refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	userID, ok := f.refreshTokens[req.RefreshToken]
	if f.refreshFails || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	access, err := f.issueAccessLocked(f.users[userID])
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.RefreshTokenResponse{AccessToken: access})
}

func (f *FakeAPI) logout(c *gin.Context) {
	var req dto.RefreshTokenRequest
	_ = c.ShouldBindJSON(&req)

	f.mu.Lock()
	delete(f.refreshTokens, req.RefreshToken)
	f.mu.Unlock()
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

func (f *FakeAPI) verifyOTP(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code != ValidOTP {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification code"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	user := f.currentUserLocked(c)
	if req.Method == models.VerificationMethodPhone {
		user.PhoneVerified = true
	} else {
		user.EmailVerified = true
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Verified"})
}

func (f *FakeAPI) resendOTP(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Code sent"})
}

// ============================================
// Users
// ============================================

func (f *FakeAPI) getProfile(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.JSON(http.StatusOK, f.currentUserLocked(c).Profile)
}

func (f *FakeAPI) updateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	user := f.currentUserLocked(c)
	if req.FirstName != nil {
		user.Profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.Profile.LastName = *req.LastName
	}
	if req.PharmacyName != nil {
		user.Profile.PharmacyName = *req.PharmacyName
	}
	if req.Phone != nil {
		user.Profile.Phone = *req.Phone
	}
	c.JSON(http.StatusOK, user.Profile)
}

func (f *FakeAPI) updateContact(c *gin.Context) {
	var req dto.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	user := f.currentUserLocked(c)
	if req.Phone != "" {
		user.Profile.Phone = req.Phone
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Contact updated"})
}

func (f *FakeAPI) updateAddress(c *gin.Context) {
	var req dto.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address is required"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentUserLocked(c).Profile.Address = req.Address
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Address updated"})
}

func (f *FakeAPI) getStats(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	userID := f.currentUserLocked(c).ID
	var stats models.DashboardStats
	var posted []models.Job
	for _, id := range f.jobOrder {
		if f.jobOwner[id] != userID {
			continue
		}
		job := f.jobs[id]
		posted = append(posted, *job)
		stats.TotalApplications += len(job.Applicants)
		switch job.Status {
		case models.JobStatusActive, models.JobStatusPending:
			stats.ActiveJobs++
		case models.JobStatusCompleted:
			stats.CompletedJobs++
		}
	}
	stats.AverageRating = models.AverageRating(posted)
	c.JSON(http.StatusOK, stats)
}

// ============================================
// Jobs
// ============================================

func (f *FakeAPI) searchJobs(c *gin.Context) {
	location := strings.ToLower(c.Query("location"))

	f.mu.Lock()
	defer f.mu.Unlock()

	userID := f.currentUserLocked(c).ID
	jobs := make([]models.Job, 0)
	for _, id := range f.jobOrder {
		job := *f.jobs[id]
		if job.Status != models.JobStatusActive {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(job.Location), location) {
			continue
		}
		job.HasApplied = f.applications[id][userID]
		job.IsSaved = f.savedJobs[id][userID]
		job.Applicants = nil
		job.SavedApplicants = nil
		jobs = append(jobs, job)
	}
	c.JSON(http.StatusOK, dto.SearchJobsResponse{Jobs: jobs, Page: 1, Limit: len(jobs)})
}

func (f *FakeAPI) myJobs(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	userID := f.currentUserLocked(c).ID
	jobs := make([]models.Job, 0)
	for _, id := range f.jobOrder {
		job := f.jobs[id]
		if job.ConfirmedApplicant != nil && job.ConfirmedApplicant.ID == userID {
			jobs = append(jobs, *job)
		}
	}
	c.JSON(http.StatusOK, jobs)
}

func (f *FakeAPI) postedJobs(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	userID := f.currentUserLocked(c).ID
	jobs := make([]models.Job, 0)
	for _, id := range f.jobOrder {
		if f.jobOwner[id] == userID {
			jobs = append(jobs, *f.jobs[id])
		}
	}
	c.JSON(http.StatusOK, jobs)
}

func (f *FakeAPI) createJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.addJobLocked(f.currentUserLocked(c).ID, models.Job{
		Location:     req.LocationAddress,
		Rate:         req.Rate,
		Role:         req.Role,
		Date:         req.Date,
		Time:         req.Time,
		FacilityType: req.FacilityType,
		ShiftType:    req.ShiftType,
		Description:  req.Description,
	})
	c.JSON(http.StatusCreated, f.jobs[id])
}

// jobLocked ищет смену, при ошибке сам отвечает 404
func (f *FakeAPI) jobLocked(c *gin.Context) (*models.Job, bool) {
	job, ok := f.jobs[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
	}
	return job, ok
}

// ownedJobLocked - смена, опубликованная текущей аптекой
func (f *FakeAPI) ownedJobLocked(c *gin.Context) (*models.Job, bool) {
	job, ok := f.jobLocked(c)
	if !ok {
		return nil, false
	}
	if f.jobOwner[job.ID] != f.currentUserLocked(c).ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your job"})
		return nil, false
	}
	return job, true
}

func (f *FakeAPI) getJob(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := f.jobLocked(c); ok {
		c.JSON(http.StatusOK, job)
	}
}

func (f *FakeAPI) updateJob(c *gin.Context) {
	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.ownedJobLocked(c)
	if !ok {
		return
	}
	if req.Rate != nil {
		job.Rate = *req.Rate
	}
	if req.Time != nil {
		job.Time = *req.Time
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Status != nil {
		if !job.Status.CanTransitionTo(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status transition"})
			return
		}
		job.Status = *req.Status
	}
	c.JSON(http.StatusOK, job)
}

func (f *FakeAPI) applyLocked(jobID string, user *fakeUser) bool {
	job, ok := f.jobs[jobID]
	if !ok || user == nil || f.applications[jobID][user.ID] {
		return false
	}
	if f.applications[jobID] == nil {
		f.applications[jobID] = make(map[string]bool)
	}
	f.applications[jobID][user.ID] = true
	delete(f.savedJobs[jobID], user.ID)

	applicant := user.applicant()
	applicant.Documents = approvedDocumentsLocked(f.documents[user.ID])
	job.Applicants = append(job.Applicants, applicant)
	return true
}

func (f *FakeAPI) applyToJob(c *gin.Context) {
	var req dto.ApplyRequest
	_ = c.ShouldBindJSON(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobLocked(c)
	if !ok {
		return
	}
	if !f.applyLocked(job.ID, f.currentUserLocked(c)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You have already applied to this job"})
		return
	}
	c.JSON(http.StatusCreated, dto.MessageResponse{Message: "Application submitted"})
}

func (f *FakeAPI) saveJob(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobLocked(c)
	if !ok {
		return
	}
	if f.savedJobs[job.ID] == nil {
		f.savedJobs[job.ID] = make(map[string]bool)
	}
	f.savedJobs[job.ID][f.currentUserLocked(c).ID] = true
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Job saved"})
}

func (f *FakeAPI) unsaveJob(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobLocked(c)
	if !ok {
		return
	}
	delete(f.savedJobs[job.ID], f.currentUserLocked(c).ID)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Job removed from saved"})
}

func (f *FakeAPI) getApplicants(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.ownedJobLocked(c)
	if !ok {
		return
	}
	applicants := make([]models.Applicant, 0, len(job.Applicants))
	applicants = append(applicants, job.Applicants...)
	c.JSON(http.StatusOK, applicants)
}

func bindApplicant(c *gin.Context) (string, bool) {
	var req dto.ApplicantActionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ApplicantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "applicantId is required"})
		return "", false
	}
	return req.ApplicantID, true
}

func (f *FakeAPI) confirmApplicant(c *gin.Context) {
	applicantID, ok := bindApplicant(c)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.ownedJobLocked(c)
	if !ok {
		return
	}
	applicant, found := findApplicant(job.Applicants, applicantID)
	if !found {
		applicant, found = findApplicant(job.SavedApplicants, applicantID)
	}
	if !found || !job.Status.CanTransitionTo(models.JobStatusConfirmed) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Applicant cannot be confirmed"})
		return
	}

	*job = models.WithConfirmedApplicant([]models.Job{*job}, job.ID, applicant)[0]
	if _, exists := f.convs[job.ID]; !exists {
		conv := models.NewConversationForJob(*job, f.currentUserLocked(c).Profile.PharmacyName, applicant)
		f.convs[job.ID] = &conv
		f.convOrder = append(f.convOrder, job.ID)
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Applicant confirmed"})
}

func (f *FakeAPI) declineApplicant(c *gin.Context) {
	applicantID, ok := bindApplicant(c)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.ownedJobLocked(c)
	if !ok {
		return
	}
	*job = models.WithoutApplicant([]models.Job{*job}, job.ID, applicantID)[0]
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Applicant declined"})
}

func (f *FakeAPI) saveApplicant(c *gin.Context) {
	applicantID, ok := bindApplicant(c)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.ownedJobLocked(c)
	if !ok {
		return
	}
	applicant, found := findApplicant(job.Applicants, applicantID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Applicant not found"})
		return
	}
	*job = models.WithSavedApplicant([]models.Job{*job}, job.ID, applicant)[0]
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Applicant saved"})
}

func (f *FakeAPI) completeJob(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobLocked(c)
	if !ok {
		return
	}
	if !job.Status.CanTransitionTo(models.JobStatusCompleted) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job cannot be completed"})
		return
	}
	job.Status = models.JobStatusCompleted
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Job completed"})
}

func (f *FakeAPI) rate(c *gin.Context, apply func(jobs []models.Job, jobID string, rating int, feedback *string) []models.Job) {
	var req dto.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobLocked(c)
	if !ok {
		return
	}
	*job = apply([]models.Job{*job}, job.ID, req.Rating, req.Feedback)[0]
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Thank you for your feedback"})
}

func (f *FakeAPI) ratePharmacist(c *gin.Context) {
	f.rate(c, models.WithPharmacistRating)
}

func (f *FakeAPI) ratePharmacy(c *gin.Context) {
	f.rate(c, models.WithPharmacyRating)
}

func findApplicant(list []models.Applicant, id string) (models.Applicant, bool) {
	for _, a := range list {
		if a.ID == id {
			return a, true
		}
	}
	return models.Applicant{}, false
}

// ============================================
// Documents
// ============================================

func (f *FakeAPI) putDocumentLocked(userID string, key models.DocumentKey, fileName string, status models.DocumentStatus) dto.DocumentRecord {
	record := dto.DocumentRecord{
		ID:           uuid.NewString(),
		DocumentType: key,
		FileName:     fileName,
		Status:       status,
	}
	record.FileURL = "https://files.pharmaconnect.test/" + record.ID + "/" + fileName

	docs := make([]dto.DocumentRecord, 0, len(f.documents[userID])+1)
	for _, d := range f.documents[userID] {
		if d.DocumentType != key {
			docs = append(docs, d)
		}
	}
	f.documents[userID] = append(docs, record)
	return record
}

func approvedDocumentsLocked(records []dto.DocumentRecord) models.UploadedDocuments {
	docs := dto.ApprovedDocuments(records)
	if len(docs) == 0 {
		return nil
	}
	return docs
}

func (f *FakeAPI) getDocuments(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := make([]dto.DocumentRecord, 0)
	docs = append(docs, f.documents[f.currentUserLocked(c).ID]...)
	c.JSON(http.StatusOK, docs)
}

func (f *FakeAPI) uploadDocument(c *gin.Context) {
	key := models.DocumentKey(c.PostForm("documentType"))
	if !key.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown document type"})
		return
	}
	header, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()
	if _, err := io.Copy(io.Discard, file); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	status := models.DocumentStatusPending
	if f.AutoApproveDocuments {
		status = models.DocumentStatusApproved
	}
	record := f.putDocumentLocked(f.currentUserLocked(c).ID, key, header.Filename, status)
	c.JSON(http.StatusCreated, models.UploadedFile{URI: record.FileURL, Name: record.FileName})
}

func (f *FakeAPI) deleteDocument(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	userID := f.currentUserLocked(c).ID
	docs := make([]dto.DocumentRecord, 0, len(f.documents[userID]))
	for _, d := range f.documents[userID] {
		if d.ID != c.Param("id") {
			docs = append(docs, d)
		}
	}
	f.documents[userID] = docs
	c.Status(http.StatusNoContent)
}

// ============================================
// Messages
// ============================================

// conversationLocked - переписка, в которой участвует пользователь
func (f *FakeAPI) conversationLocked(c *gin.Context) (*models.Conversation, bool) {
	conv, ok := f.convs[c.Param("id")]
	if ok {
		job := f.jobs[conv.ID]
		userID := f.currentUserLocked(c).ID
		member := job != nil && (f.jobOwner[job.ID] == userID ||
			(job.ConfirmedApplicant != nil && job.ConfirmedApplicant.ID == userID))
		if member {
			return conv, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
	return nil, false
}

func (f *FakeAPI) getConversations(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	userID := f.currentUserLocked(c).ID
	out := make([]models.Conversation, 0)
	for _, id := range f.convOrder {
		job := f.jobs[id]
		if job == nil {
			continue
		}
		if f.jobOwner[id] == userID || (job.ConfirmedApplicant != nil && job.ConfirmedApplicant.ID == userID) {
			conv := *f.convs[id]
			conv.Messages = append([]models.Message{}, conv.Messages...)
			out = append(out, conv)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (f *FakeAPI) getMessages(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if conv, ok := f.conversationLocked(c); ok {
		c.JSON(http.StatusOK, append([]models.Message{}, conv.Messages...))
	}
}

func (f *FakeAPI) sendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversationLocked(c)
	if !ok {
		return
	}
	msg := models.Message{
		ID:        uuid.NewString(),
		Text:      req.Content,
		Sender:    f.currentUserLocked(c).Role,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	conv.Messages = append(conv.Messages, msg)
	c.JSON(http.StatusCreated, msg)
}

func (f *FakeAPI) markRead(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.conversationLocked(c); ok {
		c.JSON(http.StatusOK, dto.MessageResponse{Message: "Marked as read"})
	}
}
