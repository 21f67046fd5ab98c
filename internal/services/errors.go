// Package services provides the business logic layer between handlers and
// the broker, store, and cache. Services encapsulate message normalization,
// command dispatch, and query consolidation.
package services

// Service error codes surfaced through the API error envelope
const (
	CodeInvalidAction     = "INVALID_ACTION"
	CodeInvalidQuery      = "INVALID_QUERY"
	CodeBrokerUnavailable = "BROKER_UNAVAILABLE"
	CodeStoreFailed       = "STORE_FAILED"
	CodeDeviceNotFound    = "DEVICE_NOT_FOUND"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

func storeFailed(err error) *ServiceError {
	return NewServiceErrorWithDetails(CodeStoreFailed, "storage operation failed",
		map[string]interface{}{"cause": err.Error()})
}
