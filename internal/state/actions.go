package state

import "pharmaconnect_core/internal/models"

// Action - закрытый набор действий редьюсера
type Action interface {
	isAction()
}

type SetLoading struct{ Loading bool }

type SetInitializing struct{ Initializing bool }

type SetAuthenticated struct{ Authenticated bool }

// SetUserData - частичное обновление: nil поле не трогается
type SetUserData struct {
	UserID          *string
	UserRole        *models.UserRole
	UserName        *string
	UserEmail       *string
	UserPhone       *string
	IsPremium       *bool
	PharmacyAddress *string

	IsLicenseVerified *bool
	IsContactVerified *bool
	UploadedDocuments *models.UploadedDocuments

	JobToReviewID    *string
	ClearJobToReview bool
	DashboardStats   *models.DashboardStats
}

// SetError: nil Message очищает ошибку. Всегда сбрасывает IsLoading.
type SetError struct{ Message *string }

type SetOffline struct{ Offline bool }

// UpdateJobs: nil поле не трогается
type UpdateJobs struct {
	MyJobs  *[]models.Job
	AllJobs *[]models.Job
}

// UpdateJobInteractions: nil поле не трогается
type UpdateJobInteractions struct {
	AppliedJobIDs *JobIDSet
	SavedJobIDs   *JobIDSet
}

type SetConversations struct{ Conversations []models.Conversation }

// ResetState - после выхода: начальное состояние без загрузки и инициализации
type ResetState struct{}

func (SetLoading) isAction()            {}
func (SetInitializing) isAction()       {}
func (SetAuthenticated) isAction()      {}
func (SetUserData) isAction()           {}
func (SetError) isAction()              {}
func (SetOffline) isAction()            {}
func (UpdateJobs) isAction()            {}
func (UpdateJobInteractions) isAction() {}
func (SetConversations) isAction()      {}
func (ResetState) isAction()            {}

// Ptr - адрес значения, для заполнения частичных действий
func Ptr[T any](v T) *T {
	return &v
}
