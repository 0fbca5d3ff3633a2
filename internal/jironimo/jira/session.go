package jira

import (
	"context"
	"sync"

	gojira "github.com/andygrunwald/go-jira"
	"golang.org/x/sync/singleflight"
)

// SessionCache holds the authenticated identity once a session check has
// succeeded. It is only cleared by Reset.
type SessionCache struct {
	mu      sync.RWMutex
	session *gojira.Session
	group   singleflight.Group
}

// NewSessionCache creates an empty cache
func NewSessionCache() *SessionCache {
	return &SessionCache{}
}

// Get returns the cached session, or runs check to obtain one. Concurrent
// callers share a single in-flight check; failures are not cached. The check
// is detached from the cancellation of the caller that started it, so a caller
// giving up does not fail the others waiting on the same check.
func (c *SessionCache) Get(ctx context.Context, check func(context.Context) (*gojira.Session, error)) (*gojira.Session, error) {
	if session := c.cached(); session != nil {
		return session, nil
	}

	flight := c.group.DoChan("session", func() (any, error) {
		if session := c.cached(); session != nil {
			return session, nil
		}
		session, err := check(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrNoSession
		}
		c.mu.Lock()
		c.session = session
		c.mu.Unlock()
		return session, nil
	})

	select {
	case <-ctx.Done():
		return nil, ClassifyTransport(ctx.Err())
	case result := <-flight:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*gojira.Session), nil
	}
}

// Me returns the cached session or ErrNoSession when no check succeeded yet
func (c *SessionCache) Me() (*gojira.Session, error) {
	if session := c.cached(); session != nil {
		return session, nil
	}
	return nil, ErrNoSession
}

// Reset drops the cached session
func (c *SessionCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
}

func (c *SessionCache) cached() *gojira.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}
