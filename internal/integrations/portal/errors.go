package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	CodeQuotePriceChanged = "QUOTE_PRICE_CHANGED"
	CodeUnauthorized      = "UNAUTHORIZED"

	genericErrorMessage = "Something went wrong. Please try again."
	networkErrorMessage = "Network error. Please check your connection and try again."
)

// APIError is the normalized failure of any portal call. Status 0 means the request never
// got a response.
type APIError struct {
	Status  int
	Code    string
	Message string
	Data    json.RawMessage
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("portal: status %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("portal: status %d: %s", e.Status, e.Message)
}

// Retryable reports transport failures and server-side faults.
func (e *APIError) Retryable() bool {
	return e.Status == 0 || e.Status >= 500
}

// DecodeData unmarshals the error payload carried by a domain-specific error.
func (e *APIError) DecodeData(v any) error {
	if len(e.Data) == 0 {
		return errors.New("portal: error carries no data")
	}
	return json.Unmarshal(e.Data, v)
}

func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IsCode(err error, code string) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Code == code
}

// ErrorMessage returns a user-displayable message for any error returned by this package.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	apiErr, ok := AsAPIError(err)
	if !ok {
		return genericErrorMessage
	}
	if apiErr.Status == 0 {
		return networkErrorMessage
	}
	if apiErr.Message == "" {
		return genericErrorMessage
	}
	return apiErr.Message
}

type errorBody struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message json.RawMessage `json:"message"`
	Detail  json.RawMessage `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

type detailHolder struct {
	Code   string `json:"code"`
	Detail struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"detail"`
}

// extractMessage walks the places the backend has been seen to put a human readable
// message, most specific first.
func extractMessage(b errorBody) string {
	var d detailHolder
	if len(b.Data) > 0 && json.Unmarshal(b.Data, &d) == nil && d.Detail.Message != "" {
		return d.Detail.Message
	}
	var m detailHolder
	if len(b.Message) > 0 && json.Unmarshal(b.Message, &m) == nil && m.Detail.Message != "" {
		return m.Detail.Message
	}
	if s, ok := rawString(b.Message); ok && s != "" {
		return s
	}
	if s, ok := rawString(b.Detail); ok && s != "" {
		return s
	}
	return genericErrorMessage
}

func extractCode(b errorBody) string {
	if b.Code != "" {
		return b.Code
	}
	var d detailHolder
	if len(b.Data) > 0 && json.Unmarshal(b.Data, &d) == nil {
		if d.Code != "" {
			return d.Code
		}
		if d.Detail.Code != "" {
			return d.Detail.Code
		}
	}
	return ""
}

func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}
