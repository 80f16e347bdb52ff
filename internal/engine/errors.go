package engine

import "errors"

// ErrUnavailable covers transport failures and non-2xx statuses from the
// engine. Callers match it with errors.Is to map failures to 502.
var ErrUnavailable = errors.New("search engine unavailable")
