// Package tools implements the memoria tool calls: argument decoding,
// the uniform Response envelope and the error-code taxonomy.
package tools

// ErrorCode tags a failed Response.
type ErrorCode string

const (
	ErrNotInitialized   ErrorCode = "NOT_INITIALIZED"
	ErrConfigError      ErrorCode = "CONFIG_ERROR"
	ErrSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"
	ErrMissingSessionID ErrorCode = "MISSING_SESSION_ID"
	ErrLicenseRequired  ErrorCode = "LICENSE_REQUIRED"
	ErrNotImplemented   ErrorCode = "NOT_IMPLEMENTED"
	ErrUnknownTool      ErrorCode = "UNKNOWN_TOOL"
	ErrInternal         ErrorCode = "INTERNAL_ERROR"
)

// Response is the result envelope of every tool call.
type Response struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
	Error   ErrorCode `json:"error,omitempty"`
}

func ok(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

func fail(code ErrorCode, message string) Response {
	return Response{Success: false, Message: message, Error: code}
}

// Internal wraps an unexpected error at the adapter boundary.
func Internal(err error) Response {
	return fail(ErrInternal, "Error: "+err.Error())
}

const notInitializedMessage = "Memoria not initialized. Run `memoria init` first."

// licenseMessage is the remediation text for gated features.
func licenseMessage(feature string) string {
	return feature + ` is a paid feature ($2/month).

To enable:
1. Get a license key at https://memoria.dev/pricing
2. Run: memoria activate <your-license-key>

This supports continued development of memoria.`
}
