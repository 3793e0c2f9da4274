package pagination

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the fallback page size when the client omits limit.
	DefaultLimit = 20
	// MaxLimit caps the supported page size to prevent unbounded queries.
	MaxLimit = 100
)

// Params bundles the limit/offset window extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// Options control how Parse behaves for a given handler layer.
type Options struct {
	DefaultLimit int
	MaxLimit     int
}

var (
	// ErrInvalidLimit is returned when the limit parameter cannot be parsed.
	ErrInvalidLimit = errors.New("pagination: invalid limit")
	// ErrInvalidOffset is returned when the offset parameter cannot be parsed.
	ErrInvalidOffset = errors.New("pagination: invalid offset")
)

// FromRequest parses the supported query parameters from the supplied request.
func FromRequest(r *http.Request, opts Options) (Params, error) {
	if r == nil {
		return Params{}, errors.New("pagination: nil request")
	}
	return Parse(r.URL.Query(), opts)
}

// Parse consumes the provided query values and returns the normalised window.
func Parse(values url.Values, opts Options) (Params, error) {
	if values == nil {
		values = url.Values{}
	}

	maxLimit := opts.MaxLimit
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	defaultLimit := opts.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}

	params := Params{Limit: defaultLimit}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, fmt.Errorf("%w: must be an integer", ErrInvalidLimit)
		}
		if limit <= 0 {
			return Params{}, fmt.Errorf("%w: must be greater than zero", ErrInvalidLimit)
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		params.Limit = limit
	}

	if raw := strings.TrimSpace(values.Get("offset")); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, fmt.Errorf("%w: must be an integer", ErrInvalidOffset)
		}
		if offset < 0 {
			return Params{}, fmt.Errorf("%w: must not be negative", ErrInvalidOffset)
		}
		params.Offset = offset
	}

	return params, nil
}

// Normalize clamps the params to the supported bounds, applying the default
// limit for zero values.
func (p Params) Normalize() Params {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Window applies the params to a slice length and returns the [start, end)
// bounds, clamped to the available items.
func (p Params) Window(total int) (int, int) {
	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.Limit
	if p.Limit <= 0 || end > total {
		end = total
	}
	return start, end
}
