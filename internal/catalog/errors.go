// SPDX-License-Identifier: MIT

package catalog

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the API boundary.
	ErrUnavailable = errors.New("catalog: host unreachable or transport failure")
	ErrUpstream    = errors.New("catalog: upstream returned an error status")
	ErrBadResponse = errors.New("catalog: invalid response format or malformed data")
	ErrTimeout     = errors.New("catalog: request timed out")
)

// UpstreamError wraps the sentinel errors with request context.
type UpstreamError struct {
	Sentinel  error
	Operation string
	Status    int
	Err       error // nested lower-level error (e.g. net.Error)
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("catalog: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Sentinel
}
