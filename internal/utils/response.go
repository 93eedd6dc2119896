package utils

// Machine-readable error codes returned to clients and hardware gateways.
// These are part of the device firmware contract, do not rename.
const (
	CodeGateNotFound        = "GATE_NOT_FOUND"
	CodeGateUnavailable     = "GATE_UNAVAILABLE"
	CodeRFIDNotFound        = "RFID_NOT_FOUND"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeDuplicateReference  = "DUPLICATE_REFERENCE"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// Response is the standardized envelope for every JSON endpoint.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	ErrorCode string      `json:"error_code,omitempty"`
	Data      interface{} `json:"data"` // Ensure data is always present, even if nil (will be null in JSON)
}

// NewSuccessResponse creates a new success Response instance.
func NewSuccessResponse(message string, data interface{}) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse creates a new error Response instance without a stable
// error code. Data is explicitly set to nil.
func NewErrorResponse(message string) Response {
	return Response{
		Success: false,
		Message: message,
		Data:    nil,
	}
}

// NewCodedErrorResponse creates an error Response carrying a stable
// machine-readable error code.
func NewCodedErrorResponse(code, message string) Response {
	return Response{
		Success:   false,
		Message:   message,
		ErrorCode: code,
		Data:      nil,
	}
}
