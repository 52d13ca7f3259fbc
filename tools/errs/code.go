package errs

import "net/http"

// Error codes grouped by concern. Guard failures of the relationship state
// machine and the realtime layer all map onto these.
const (
	CodeServer       = 500
	CodeInvalidParam = 1001
	CodeInvalidActor = 1002
	CodeConflict     = 1003
	CodeNotFound     = 1004
	CodeForbidden    = 1005
	CodeInvalidState = 1006
	CodeTransport    = 1007
	CodeTokenInvalid = 1101
)

var (
	ErrServer       = NewCodeError(CodeServer, "server error")
	ErrInvalidParam = NewCodeError(CodeInvalidParam, "invalid parameter")
	ErrInvalidActor = NewCodeError(CodeInvalidActor, "caller is not the required participant")
	ErrConflict     = NewCodeError(CodeConflict, "record already exists")
	ErrNotFound     = NewCodeError(CodeNotFound, "record not found")
	ErrForbidden    = NewCodeError(CodeForbidden, "operation not permitted")
	ErrInvalidState = NewCodeError(CodeInvalidState, "invalid state for this transition")
	ErrTransport    = NewCodeError(CodeTransport, "connection write failed")
	ErrTokenInvalid = NewCodeError(CodeTokenInvalid, "token invalid or expired")
)

// HTTPStatus maps an error code to the status the REST edge answers with.
func HTTPStatus(err error) int {
	ce := Code(err)
	if ce == nil {
		return http.StatusInternalServerError
	}
	switch ce.Code {
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeTokenInvalid:
		return http.StatusUnauthorized
	case CodeInvalidActor, CodeForbidden, CodeConflict, CodeInvalidState:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
