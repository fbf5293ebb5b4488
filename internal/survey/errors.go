// Package survey loads and cleans salary survey exports.
package survey

import "errors"

// ErrDataUnavailable reports a missing or unreadable survey source.
var ErrDataUnavailable = errors.New("survey data unavailable")
