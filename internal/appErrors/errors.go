package appErrors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// ErrorCode - тип для кодов ошибок
type ErrorCode string

// Kind - закрытый набор видов ошибок клиента
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindTimeout
	KindHTTP
	KindStorage
	KindPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return "http"
	case KindStorage:
		return "storage"
	case KindPrecondition:
		return "precondition"
	default:
		return "unknown"
	}
}

// StatusUnknown - статус для ошибок, пришедших не из транспорта
const StatusUnknown = -1

// AppError - основная структура ошибки приложения
type AppError struct {
	Kind    Kind        `json:"-"`
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Body    interface{} `json:"-"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is сравнивает локальные ошибки по коду, чтобы errors.Is работал
// и для копий с деталями
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == KindPrecondition && t.Kind == KindPrecondition && e.Code == t.Code
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Is - обертка над стандартной функцией errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As - обертка над стандартной функцией errors.As
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// ============================================
// Конструкторы по видам
// ============================================

// NetworkError - ответ не получен
func NetworkError(err error) *AppError {
	return &AppError{
		Kind:    KindNetwork,
		Code:    CodeNetworkError,
		Message: "Network error",
		Status:  0,
		Err:     err,
	}
}

// TimeoutError - превышен таймаут запроса, статус эквивалентен 408
func TimeoutError(err error) *AppError {
	return &AppError{
		Kind:    KindTimeout,
		Code:    CodeTimeout,
		Message: "Request timeout",
		Status:  http.StatusRequestTimeout,
		Err:     err,
	}
}

// HTTPError - ответ сервера с кодом вне 2xx.
// body - разобранный JSON (map) или сырой текст.
func HTTPError(status int, body interface{}) *AppError {
	code := CodeHTTPError
	if status == http.StatusUnauthorized {
		code = CodeUnauthorized
	}
	return &AppError{
		Kind:    KindHTTP,
		Code:    code,
		Message: MessageFromBody(body),
		Status:  status,
		Body:    body,
	}
}

func StorageError(op string, err error) *AppError {
	return &AppError{
		Kind:    KindStorage,
		Code:    CodeStorageError,
		Message: fmt.Sprintf("storage %s failed", op),
		Status:  StatusUnknown,
		Err:     err,
	}
}

func PreconditionError(code ErrorCode, message string) *AppError {
	return &AppError{
		Kind:    KindPrecondition,
		Code:    code,
		Message: message,
		Status:  StatusUnknown,
	}
}

// MessageFromBody достаёт текст ошибки из тела ответа: error, затем message
func MessageFromBody(body interface{}) string {
	if m, ok := body.(map[string]interface{}); ok {
		if s, ok := m["error"].(string); ok && s != "" {
			return s
		}
		if s, ok := m["message"].(string); ok && s != "" {
			return s
		}
	}
	return "Request failed"
}

// Предопределенные ошибки
var (
	ErrLicenseNotVerified      = PreconditionError(CodeLicenseNotVerified, "Your license must be verified to apply for jobs.")
	ErrPharmacistOnly          = PreconditionError(CodePharmacistOnly, "Only pharmacists can perform this action.")
	ErrPharmacyOnly            = PreconditionError(CodePharmacyOnly, "Only pharmacies can perform this action.")
	ErrNoRole                  = PreconditionError(CodeNoRole, "Please select a role first.")
	ErrConversationNotFound    = PreconditionError(CodeConversationNotFound, "Conversation not found")
	ErrJobNotFound             = PreconditionError(CodeJobNotFound, "Job not found")
	ErrInvalidStatusTransition = PreconditionError(CodeInvalidStatusTransition, "Job status cannot change this way")
	ErrNotAuthenticated        = PreconditionError(CodeNotAuthenticated, "Please log in first.")

	ErrValidationFailed = PreconditionError(CodeValidationFailed, "Validation failed")
)

// ValidationError - ошибка проверки введённых данных, до сети не доходит
func ValidationError(details interface{}) *AppError {
	return ErrValidationFailed.WithDetails(details)
}

// ============================================
// Классификация
// ============================================

// Classify возвращает вид ошибки. Чужие ошибки считаются сетевыми
// только если это net.Error/url.Error.
func Classify(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		return KindNetwork
	}
	return KindHTTP
}

// StatusOf - HTTP-эквивалент статуса: 0 для сети, 408 для таймаута,
// StatusUnknown для всего, что не пришло из транспорта
func StatusOf(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Status
	}
	switch Classify(err) {
	case KindNetwork:
		return 0
	case KindTimeout:
		return http.StatusRequestTimeout
	default:
		return StatusUnknown
	}
}

func IsUnauthorized(err error) bool {
	return Classify(err) == KindHTTP && StatusOf(err) == http.StatusUnauthorized
}

// IsOffline - ответа нет: сетевая ошибка или HTTP-статус 0
func IsOffline(err error) bool {
	switch Classify(err) {
	case KindNetwork:
		return true
	case KindHTTP:
		return StatusOf(err) == 0
	default:
		return false
	}
}

func IsTimeout(err error) bool {
	return Classify(err) == KindTimeout
}

func IsPrecondition(err error) bool {
	return Classify(err) == KindPrecondition
}

// MessageOf - текст для пользователя
func MessageOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
