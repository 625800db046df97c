package lakesdk

import (
	"errors"
	"fmt"

	"github.com/imroc/req/v3"
)

var (
	ErrInvalidEndpoint = errors.New("invalid endpoint url")
	ErrInvalidRequest  = errors.New("invalid request")
)

// Error codes returned in the `error` field of API error bodies.
const (
	CodeInvalidRequest   = "E_INVALID_REQUEST"
	CodeInvalidToken     = "E_INVALID_TOKEN"
	CodeBadCredentials   = "E_BAD_CREDENTIALS"
	CodeAccessDenied     = "E_ACCESS_DENIED"
	CodeAccountNotFound  = "E_ACCOUNT_NOT_FOUND"
	CodePathNotFound     = "E_PATH_NOT_FOUND"
	CodeNotADirectory    = "E_NOT_A_DIRECTORY"
	CodeAclUpdateFailed  = "E_ACL_UPDATE_FAILED"
	CodeRateLimited      = "E_RATE_LIMITED"
	CodeInternalError    = "E_INTERNAL_ERROR"
	CodeUnknownError     = "E_UNKNOWN"
	CodeUnexpectedError  = "E_UNEXPECTED"
	CodeTransportFailure = "E_TRANSPORT"
)

// APIError is the normalized error for every failed API call.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is an APIError carrying the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// handleAPIError folds transport errors and non-2xx responses into a
// single *APIError. Returns nil when the call succeeded.
func handleAPIError(res *req.Response, err error, op string) error {
	if err != nil {
		return &APIError{
			Code:    CodeTransportFailure,
			Message: fmt.Sprintf("%s: %s", op, err),
		}
	}

	if res.IsErrorState() {
		apiErr := &APIError{}
		if jsonErr := res.UnmarshalJson(apiErr); jsonErr != nil || apiErr.Code == "" {
			apiErr.Code = CodeUnknownError
			apiErr.Message = fmt.Sprintf("%s: %s", op, res.String())
		}
		apiErr.StatusCode = res.GetStatusCode()
		return apiErr
	}

	if !res.IsSuccessState() {
		return &APIError{
			StatusCode: res.GetStatusCode(),
			Code:       CodeUnexpectedError,
			Message:    fmt.Sprintf("%s: unexpected response %q", op, res.GetStatus()),
		}
	}

	return nil
}
