package dispatcher

import (
	"context"
	"errors"

	"github.com/frontendintel/fie-mcp-server/internal/browser"
)

// FromDomainError maps a domain sentinel error to its spec.md §7 Failure
// kind. A *Failure passes through unchanged; anything else wrapped as
// Internal. Tool Execute methods call this exactly once, at the boundary,
// so browser.ErrResourceExhausted and friends get one chance to be mapped
// to their proper Kind upstream of the MCP response.
func FromDomainError(err error) *Failure {
	if err == nil {
		return nil
	}
	if f, ok := err.(*Failure); ok {
		return f
	}
	switch {
	case errors.Is(err, browser.ErrResourceExhausted):
		return NewFailure(ResourceExhausted, err.Error(), "too many concurrent sessions; wait for one to finish or raise browser.max_concurrent_sessions")
	case errors.Is(err, browser.ErrSessionTerminated):
		return NewFailure(SessionTerminated, err.Error(), "the page or browser crashed mid-call; retry the tool")
	case errors.Is(err, browser.ErrNotConnected):
		return NewFailure(Internal, err.Error(), "browser is not connected; enable browser.auto_start or provide a debugger_url")
	case errors.Is(err, context.DeadlineExceeded):
		return NewFailure(Timeout, err.Error(), "increase the tool's timeout or narrow its scope")
	default:
		return NewFailure(Internal, err.Error(), "")
	}
}


