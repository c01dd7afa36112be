package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"pharmaconnect_core/internal/appErrors"
	"pharmaconnect_core/internal/logger"
	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/services/dto"
	"pharmaconnect_core/internal/state"
)

const pharmacistJobsPageSize = 20

// Initialize восстанавливает сессию из кэша при старте процесса.
// isInitializing и isLoading сбрасываются при любом исходе.
func (o *Orchestrator) Initialize(ctx context.Context) {
	ctx = logger.WithWorkflow(ctx, "initialize")
	defer func() {
		o.store.Dispatch(state.SetInitializing{Initializing: false})
		o.store.Dispatch(state.SetLoading{Loading: false})
	}()
	o.store.Dispatch(state.SetInitializing{Initializing: true})

	user, err := o.services.AuthService.GetCurrentUser(ctx)
	if err != nil {
		o.handleError(ctx, err, "Failed to initialize app")
		o.finish(ctx, "initialize", err)
		return
	}
	if user == nil {
		o.finish(ctx, "initialize", nil)
		return
	}

	err = o.SetupSession(ctx, *user)
	o.finish(ctx, "initialize", err)
}

// SetupSession загружает всё для пользователя и только в конце
// выставляет isAuthenticated. Любая ошибка - принудительный выход.
func (o *Orchestrator) SetupSession(ctx context.Context, user dto.AuthUser) error {
	ctx = logger.WithUserID(ctx, user.ID)
	defer o.beginLoading()()

	err := o.setupSession(ctx, user)
	if err != nil {
		if !appErrors.IsUnauthorized(err) {
			o.forceLogout(ctx)
		}
		o.handleError(ctx, err, "Failed to load user data")
	}
	o.finish(ctx, "setup_session", err)
	return err
}

func (o *Orchestrator) setupSession(ctx context.Context, user dto.AuthUser) error {
	o.store.Dispatch(state.SetUserData{
		UserID:            state.Ptr(user.ID),
		UserRole:          state.Ptr(user.Role),
		UserEmail:         state.Ptr(user.Email),
		IsContactVerified: state.Ptr(user.IsContactVerified()),
	})

	profile, err := o.services.UserService.GetProfile(ctx)
	if err != nil {
		return err
	}

	switch user.Role {
	case models.UserRolePharmacist:
		o.store.Dispatch(state.SetUserData{
			UserName:          state.Ptr(profile.DisplayName(user.Role)),
			UserPhone:         state.Ptr(profile.Phone),
			IsPremium:         state.Ptr(profile.IsPremium),
			IsLicenseVerified: state.Ptr(profile.IsLicenseVerified()),
		})
		err = o.loadPharmacistData(ctx)
	case models.UserRolePharmacy:
		o.store.Dispatch(state.SetUserData{
			UserName:        state.Ptr(profile.DisplayName(user.Role)),
			UserPhone:       state.Ptr(profile.Phone),
			PharmacyAddress: state.Ptr(profile.Address),
		})
		err = o.loadPharmacyData(ctx)
	default:
		err = appErrors.ErrNoRole
	}
	if err != nil {
		return err
	}

	if err := o.loadDocuments(ctx); err != nil {
		return err
	}

	o.store.Dispatch(state.SetAuthenticated{Authenticated: true})
	return nil
}

// loadPharmacistData: поиск смен, свои смены, множества откликов
// и сохранённых по флагам сервера, смена для отзыва
func (o *Orchestrator) loadPharmacistData(ctx context.Context) error {
	found, err := o.services.JobService.SearchJobs(ctx, dto.SearchJobsParams{Page: 1, Limit: pharmacistJobsPageSize})
	if err != nil {
		return err
	}
	myJobs, err := o.services.JobService.GetMyJobs(ctx)
	if err != nil {
		return err
	}

	allJobs := nonNilJobs(found.Jobs)
	myJobs = nonNilJobs(myJobs)

	var applied, saved []string
	for _, job := range allJobs {
		if job.HasApplied {
			applied = append(applied, job.ID)
		} else if job.IsSaved {
			saved = append(saved, job.ID)
		}
	}

	toReview := state.SetUserData{ClearJobToReview: true}
	for _, job := range myJobs {
		if job.NeedsPharmacyReview() {
			toReview.JobToReviewID = state.Ptr(job.ID)
			break
		}
	}

	o.store.Dispatch(state.UpdateJobs{AllJobs: &allJobs, MyJobs: &myJobs})
	o.store.Dispatch(state.UpdateJobInteractions{
		AppliedJobIDs: state.Ptr(state.NewJobIDSet(applied...)),
		SavedJobIDs:   state.Ptr(state.NewJobIDSet(saved...)),
	})
	o.store.Dispatch(toReview)

	return o.loadConversations(ctx)
}

// loadPharmacyData: опубликованные смены, переписки, статистика.
// Статистика загружается без ошибок для пользователя.
func (o *Orchestrator) loadPharmacyData(ctx context.Context) error {
	posted, err := o.services.JobService.GetPharmacyJobs(ctx)
	if err != nil {
		return err
	}
	posted = nonNilJobs(posted)
	o.store.Dispatch(state.UpdateJobs{AllJobs: &posted})

	if err := o.loadConversations(ctx); err != nil {
		return err
	}

	o.refreshDashboardStats(ctx)
	return nil
}

func (o *Orchestrator) refreshDashboardStats(ctx context.Context) {
	stats, err := o.services.UserService.GetDashboardStats(ctx)
	if err != nil {
		o.background(ctx, "dashboard_stats", err)
		return
	}
	o.store.Dispatch(state.SetUserData{DashboardStats: stats})
}

func (o *Orchestrator) loadConversations(ctx context.Context) error {
	conversations, err := o.services.MessageService.GetConversations(ctx)
	if err != nil {
		return err
	}
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	o.store.Dispatch(state.SetConversations{Conversations: conversations})
	return nil
}

// loadDocuments - полная замена: в UploadedDocuments только одобренные
func (o *Orchestrator) loadDocuments(ctx context.Context) error {
	records, err := o.services.DocumentService.GetDocuments(ctx)
	if err != nil {
		return err
	}
	docs := dto.ApprovedDocuments(records)
	o.store.Dispatch(state.SetUserData{UploadedDocuments: &docs})
	return nil
}

// LoadDocuments перечитывает документы пользователя
func (o *Orchestrator) LoadDocuments(ctx context.Context) {
	err := o.loadDocuments(ctx)
	o.handleError(ctx, err, "Failed to load documents")
	o.finish(ctx, "load_documents", err)
}

// Login входит и поднимает сессию. Ошибка возвращается вызывающему,
// чтобы форма входа осталась открытой.
func (o *Orchestrator) Login(ctx context.Context, email, password string) error {
	ctx = logger.WithWorkflow(ctx, "login")
	o.ClearError()

	req := dto.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := o.validate(req); err != nil {
		o.handleError(ctx, err, "")
		o.finish(ctx, "login", err)
		return err
	}

	defer o.beginLoading()()

	resp, err := o.services.AuthService.Login(ctx, req)
	if err != nil {
		o.handleCredentialsError(ctx, err, "Login failed. Please check your credentials.")
		o.finish(ctx, "login", err)
		return err
	}

	// ошибки SetupSession уже показаны пользователю
	err = o.SetupSession(ctx, resp.User)
	o.finish(ctx, "login", err)
	return err
}

// Signup регистрирует пользователя и сохраняет данные для онбординга.
// Имя фармацевта делится на имя и фамилию по первому пробелу.
func (o *Orchestrator) Signup(ctx context.Context, role models.UserRole, name, email, password string) error {
	ctx = logger.WithWorkflow(ctx, "signup")
	o.ClearError()

	name = strings.TrimSpace(name)
	req := dto.SignupRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
		Role:     role,
	}
	if role == models.UserRolePharmacist {
		first, last, _ := strings.Cut(name, " ")
		req.FirstName = first
		req.LastName = strings.TrimSpace(last)
	} else {
		req.PharmacyName = name
	}

	if err := o.validate(req); err != nil {
		o.handleError(ctx, err, "")
		o.finish(ctx, "signup", err)
		return err
	}

	defer o.beginLoading()()

	resp, err := o.services.AuthService.Signup(ctx, req)
	if err != nil {
		o.handleCredentialsError(ctx, err, "Signup failed. Please try again.")
		o.finish(ctx, "signup", err)
		return err
	}

	o.store.Dispatch(state.SetUserData{
		UserID:    state.Ptr(resp.UserID),
		UserRole:  state.Ptr(role),
		UserName:  state.Ptr(name),
		UserEmail: state.Ptr(req.Email),
	})
	o.finish(ctx, "signup", nil)
	return nil
}

// Logout для пользователя безусловен: локальное состояние сбрасывается
// даже если сервер или хранилище вернули ошибку.
func (o *Orchestrator) Logout(ctx context.Context) {
	ctx = logger.WithWorkflow(ctx, "logout")
	o.forceLogout(ctx)
	o.finish(ctx, "logout", nil)
}

func (o *Orchestrator) forceLogout(ctx context.Context) {
	if err := o.services.AuthService.Logout(ctx); err != nil {
		logger.CtxWarn(ctx, "Logout cleanup failed", "error", err.Error())
	}
	o.errorGen.Add(1)
	o.store.Dispatch(state.ResetState{})
}

// RefreshUserData - фоновое обновление данных роли, ошибки только в лог
func (o *Orchestrator) RefreshUserData(ctx context.Context) {
	s := o.store.Snapshot()
	if !s.IsAuthenticated {
		return
	}
	ctx = logger.WithUserID(ctx, s.UserID)

	var err error
	switch s.UserRole {
	case models.UserRolePharmacist:
		err = o.loadPharmacistData(ctx)
	case models.UserRolePharmacy:
		err = o.loadPharmacyData(ctx)
	default:
		err = fmt.Errorf("refresh user data: unknown role %q", s.UserRole)
	}
	o.background(ctx, "refresh_user_data", err)
}

// OnAppForeground вызывается при возврате приложения на передний план
func (o *Orchestrator) OnAppForeground(ctx context.Context) {
	if !o.store.Snapshot().IsAuthenticated {
		return
	}
	o.RefreshUserData(ctx)
	if !o.store.Snapshot().IsAuthenticated {
		return
	}
	o.background(ctx, "documents", o.loadDocuments(ctx))
}

// RetryConnection - кнопка "Retry" на экране ошибки офлайна
func (o *Orchestrator) RetryConnection(ctx context.Context) {
	o.ClearError()
	o.store.Dispatch(state.SetOffline{Offline: false})
	o.RefreshUserData(ctx)
}

func nonNilJobs(jobs []models.Job) []models.Job {
	if jobs == nil {
		return []models.Job{}
	}
	return jobs
}
