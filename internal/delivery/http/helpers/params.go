package helpers

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cityevents/internal/domain"
)

// Pagination query parameter defaults.
const (
	DefaultFrom = 0
	DefaultSize = 10
	MaxSize     = 1000
)

// ParsePage reads from and size from the request query string, clamps them to
// valid ranges, and returns domain.Page. Invalid or missing values fall back
// to defaults.
func ParsePage(r *http.Request) domain.Page {
	from := DefaultFrom
	if s := r.URL.Query().Get("from"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			from = v
		}
	}
	size := DefaultSize
	if s := r.URL.Query().Get("size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			size = v
			if size > MaxSize {
				size = MaxSize
			}
		}
	}
	return domain.Page{From: from, Size: size}
}

// PathID parses the named path value as an int64 id.
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrValidation, name)
	}
	return id, nil
}

// QueryDateTime parses an optional datetime query parameter in the API wire format.
// Absent parameters return nil.
func QueryDateTime(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateTimeLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must match %s", domain.ErrValidation, name, DateTimeLayout)
	}
	return &t, nil
}

// QueryInt64List parses a repeated or comma-separated int64 query parameter.
func QueryInt64List(r *http.Request, name string) ([]int64, error) {
	var out []int64
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be a list of numbers", domain.ErrValidation, name)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// QueryBool parses an optional boolean query parameter. Absent parameters return nil.
func QueryBool(r *http.Request, name string) (*bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a boolean", domain.ErrValidation, name)
	}
	return &v, nil
}

// ClientIP returns the caller's address: the first X-Forwarded-For entry when
// present, otherwise the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
