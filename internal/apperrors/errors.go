package apperrors

// =============================================================================
// Error Codes
// =============================================================================

type ErrorCode string

const (
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidationError    ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrorCodeConflict           ErrorCode = "CONFLICT"
	ErrorCodeDeviceNotFound     ErrorCode = "DEVICE_NOT_FOUND"
	ErrorCodeGroupNotFound      ErrorCode = "GROUP_NOT_FOUND"
	ErrorCodePresetNotFound     ErrorCode = "PRESET_NOT_FOUND"
	ErrorCodeInvalidRole        ErrorCode = "INVALID_ROLE"
	ErrorCodeDeviceBusy         ErrorCode = "DEVICE_BUSY"
	ErrorCodeDecodeFailure      ErrorCode = "DECODE_FAILURE"
	ErrorCodeUpstreamFailure    ErrorCode = "UPSTREAM_FAILURE"
	ErrorCodePersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"
	ErrorCodeProviderAPIError   ErrorCode = "PROVIDER_API_ERROR"
)

// ErrorBody is the serialized error payload.
type ErrorBody struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// AppError is the base error type for HTTP responses.
type AppError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Details    map[string]any
}

func (err *AppError) Error() string {
	return err.Message
}

func (err *AppError) ErrorBody() ErrorBody {
	body := ErrorBody{
		Code:    err.Code,
		Message: err.Message,
	}
	if err.Details != nil {
		body.Details = err.Details
	}
	return body
}

func NewAppError(code ErrorCode, message string, statusCode int, details map[string]any) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

func NewValidationError(message string, details map[string]any) *AppError {
	return NewAppError(ErrorCodeValidationError, message, 400, details)
}

func NewNotFoundError(message string, details map[string]any) *AppError {
	return NewAppError(ErrorCodeNotFound, message, 404, details)
}

func NewNotFoundResource(resource, id string) *AppError {
	message := resource + " not found"
	details := map[string]any{
		"resource": resource,
	}
	if id != "" {
		message = resource + " not found: " + id
		details["id"] = id
	}
	return NewAppError(ErrorCodeNotFound, message, 404, details)
}

func NewConflictError(message string, details map[string]any) *AppError {
	return NewAppError(ErrorCodeConflict, message, 409, details)
}

// NewDeviceBusyError reports a device that already belongs to a stereo group.
func NewDeviceBusyError(deviceID string) *AppError {
	return NewAppError(ErrorCodeDeviceBusy, "Device already belongs to a group: "+deviceID, 409, map[string]any{
		"device_id": deviceID,
	})
}

// NewInvalidRoleError reports a master device outside the group's left/right pair.
func NewInvalidRoleError(deviceID string) *AppError {
	return NewAppError(ErrorCodeInvalidRole, "Master device must be the left or right member: "+deviceID, 400, map[string]any{
		"device_id": deviceID,
	})
}

// NewDecodeFailureError reports an account document that could not be parsed.
func NewDecodeFailureError(message string) *AppError {
	return NewAppError(ErrorCodeDecodeFailure, message, 502, nil)
}

// NewUpstreamFailureError reports a failed fetch from the legacy account system.
func NewUpstreamFailureError(message string) *AppError {
	return NewAppError(ErrorCodeUpstreamFailure, message, 502, nil)
}

func NewInternalError(message string) *AppError {
	return NewAppError(ErrorCodeInternalError, message, 500, nil)
}

// EnsureAppError converts an arbitrary error into an AppError.
func EnsureAppError(err error) *AppError {
	if err == nil {
		return NewInternalError("Unknown error")
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewInternalError("Internal server error")
}
