package oauth2

import "fmt"

// Error codes returned in the "error" member of OAuth 2.0 error
// responses, as registered in RFC 6749 section 5.2 and RFC 6750.
const (
	ErrAccessDenied            = "access_denied"
	ErrInvalidRequest          = "invalid_request"
	ErrInvalidClient           = "invalid_client"
	ErrInvalidGrant            = "invalid_grant"
	ErrInvalidScope            = "invalid_scope"
	ErrInvalidToken            = "invalid_token"
	ErrServerError             = "server_error"
	ErrTemporarilyUnavailable  = "temporarily_unavailable"
	ErrUnauthorizedClient      = "unauthorized_client"
	ErrUnsupportedGrantType    = "unsupported_grant_type"
	ErrUnsupportedResponseType = "unsupported_response_type"
	ErrUnsupportedTokenType    = "unsupported_token_type"
)

// Error is a protocol-level OAuth 2.0 error. Errors of this type are
// rendered to clients as the standard {"error", "error_description"}
// JSON body; any other error is reported as an opaque server_error.
type Error struct {
	Code        string
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// ErrorResponse is the JSON body of a protocol error.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Response converts the error into its wire representation.
func (e *Error) Response() ErrorResponse {
	return ErrorResponse{Error: e.Code, ErrorDescription: e.Description}
}

func AccessDenied(description string) *Error {
	return &Error{Code: ErrAccessDenied, Description: description}
}

func InvalidRequest(description string) *Error {
	return &Error{Code: ErrInvalidRequest, Description: description}
}

func InvalidClient(description string) *Error {
	return &Error{Code: ErrInvalidClient, Description: description}
}

func InvalidGrant(description string) *Error {
	return &Error{Code: ErrInvalidGrant, Description: description}
}

func InvalidScope(description string) *Error {
	return &Error{Code: ErrInvalidScope, Description: description}
}

func InvalidToken(description string) *Error {
	return &Error{Code: ErrInvalidToken, Description: description}
}

func ServerError(description string) *Error {
	return &Error{Code: ErrServerError, Description: description}
}

func TemporarilyUnavailable(description string) *Error {
	return &Error{Code: ErrTemporarilyUnavailable, Description: description}
}

func UnauthorizedClient(description string) *Error {
	return &Error{Code: ErrUnauthorizedClient, Description: description}
}

func UnsupportedGrantType(description string) *Error {
	return &Error{Code: ErrUnsupportedGrantType, Description: description}
}

func UnsupportedResponseType(description string) *Error {
	return &Error{Code: ErrUnsupportedResponseType, Description: description}
}

func UnsupportedTokenType(description string) *Error {
	return &Error{Code: ErrUnsupportedTokenType, Description: description}
}
