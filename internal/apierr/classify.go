package apierr

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
)

// Google reports per-user quota exhaustion with these reasons, sometimes under 403.
var rateLimitReasons = []string{
	"rateLimitExceeded",
	"userRateLimitExceeded",
	"RATE_LIMIT_EXCEEDED",
	"quotaExceeded",
}

// FromResponse classifies a non-2xx response. It returns nil for 2xx statuses.
func FromResponse(op string, status int, header http.Header, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	e := &Error{Op: op, StatusCode: status, Kind: kindForStatus(status)}

	res := &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
	var gerr *googleapi.Error
	if errors.As(googleapi.CheckResponse(res), &gerr) {
		e.Message = gerr.Message
		if len(gerr.Errors) > 0 {
			e.Reason = gerr.Errors[0].Reason
			if e.Message == "" {
				e.Message = gerr.Errors[0].Message
			}
		}
		if e.Message == "" {
			e.Message = strings.TrimSpace(gerr.Body)
		}
	}

	if status == http.StatusForbidden && isRateLimitBody(e.Reason, body) {
		e.Kind = KindRateLimitExceeded
	}
	if e.Kind == KindRateLimitExceeded || status == http.StatusServiceUnavailable {
		e.RetryAfter = parseRetryAfter(header.Get("Retry-After"), time.Now())
	}
	return e
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest:
		return KindInvalidRequest
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusForbidden:
		return KindPermission
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimitExceeded
	case status == http.StatusRequestTimeout:
		return KindNetwork
	case status >= 500:
		return KindTransientServer
	default:
		return KindInvalidRequest
	}
}

func isRateLimitBody(reason string, body []byte) bool {
	for _, r := range rateLimitReasons {
		if reason == r || bytes.Contains(body, []byte(r)) {
			return true
		}
	}
	return false
}

// parseRetryAfter accepts both delta-seconds and HTTP-date forms.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// Network wraps a transport failure. Context errors keep their own kinds.
func Network(op string, err error) error {
	if errors.Is(err, ErrCancelled) || errors.Is(err, ErrDeadlineExceeded) {
		return err
	}
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}
