package service

import "errors"

var (
	// ErrSessionFailed wraps the error of a session check that prevented a search
	ErrSessionFailed = errors.New("session check failed")
	// ErrSearchFailed wraps the error of a failed search
	ErrSearchFailed = errors.New("search failed")
	// ErrNotTracking is returned when stopping work on an issue that is not being tracked
	ErrNotTracking = errors.New("no work is being tracked for the issue")
)
