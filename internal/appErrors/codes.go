package appErrors

// Коды ошибок сгруппированные по видам
const (
	// Транспорт
	CodeNetworkError ErrorCode = "NETWORK_ERROR"
	CodeTimeout      ErrorCode = "TIMEOUT"
	CodeHTTPError    ErrorCode = "HTTP_ERROR"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeUnknown      ErrorCode = "UNKNOWN_ERROR"

	// Локальное хранилище
	CodeStorageError ErrorCode = "STORAGE_ERROR"

	// Локальные проверки до запроса
	CodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	CodeLicenseNotVerified      ErrorCode = "LICENSE_NOT_VERIFIED"
	CodePharmacistOnly          ErrorCode = "PHARMACIST_ONLY"
	CodePharmacyOnly            ErrorCode = "PHARMACY_ONLY"
	CodeNoRole                  ErrorCode = "NO_ROLE"
	CodeConversationNotFound    ErrorCode = "CONVERSATION_NOT_FOUND"
	CodeJobNotFound             ErrorCode = "JOB_NOT_FOUND"
	CodeInvalidStatusTransition ErrorCode = "INVALID_STATUS_TRANSITION"
	CodeNotAuthenticated        ErrorCode = "NOT_AUTHENTICATED"
)
