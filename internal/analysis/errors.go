package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperifyio/biaslens/internal/report"
)

var (
	// ErrNotConfigured is returned by Analyze when no API key is set.
	ErrNotConfigured = errors.New("analysis service API key is not configured")
	// ErrTransport wraps failures where no HTTP response was received.
	ErrTransport = errors.New("analysis service unreachable")

	// Sentinels matched by *ServiceError through errors.Is.
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrRateLimited    = errors.New("rate limited")
	ErrServiceFault   = errors.New("service fault")
	ErrUnknownService = errors.New("unexpected service response")
)

// Kind classifies a non-2xx reply from the analysis service.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindForbidden
	KindRateLimited
	KindServiceFault
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate_limited"
	case KindServiceFault:
		return "service_fault"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindRateLimited:
		return ErrRateLimited
	case KindServiceFault:
		return ErrServiceFault
	default:
		return ErrUnknownService
	}
}

// ServiceError is a classified HTTP failure from the analysis service.
type ServiceError struct {
	Kind   Kind
	Status int
	Body   string
	// CORS is set for 401 replies that blame cross-origin configuration
	// rather than the credential.
	CORS bool
}

// classify maps an HTTP status and body to a ServiceError.
func classify(status int, body string) *ServiceError {
	e := &ServiceError{Status: status, Body: body}
	switch status {
	case 401:
		e.Kind = KindUnauthorized
		e.CORS = strings.Contains(body, "CORS")
	case 403:
		e.Kind = KindForbidden
	case 429:
		e.Kind = KindRateLimited
	case 500:
		e.Kind = KindServiceFault
	default:
		e.Kind = KindUnknown
	}
	return e
}

func (e *ServiceError) Error() string {
	switch e.Kind {
	case KindUnauthorized:
		if e.CORS {
			return "unauthorized: browser access not properly configured, check API headers"
		}
		return "unauthorized: invalid API key, check your API key in settings"
	case KindForbidden:
		return "forbidden: access denied, check API permissions"
	case KindRateLimited:
		return "rate limited: too many requests, try again later"
	case KindServiceFault:
		return "service fault: analysis service error, try again later"
	default:
		return fmt.Sprintf("unexpected service response: %d - %s", e.Status, e.Body)
	}
}

// Is lets callers match with errors.Is(err, ErrRateLimited) and friends.
func (e *ServiceError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns a short machine-readable label for err, suitable for API
// replies and metric labels.
func KindOf(err error) string {
	var se *ServiceError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se):
		return se.Kind.String()
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, report.ErrMalformedResponse):
		return "malformed_response"
	default:
		return "error"
	}
}
