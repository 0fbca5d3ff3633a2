package jira

import (
	"sync"
)

// RequestFailed is published for every failed request, in addition to the
// error returned to the caller
type RequestFailed struct {
	StatusText string
	Messages   []string
}

// FailureListener receives failure notifications
type FailureListener func(RequestFailed)

// Notifier fans request failures out to its subscribers
type Notifier struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]FailureListener
}

// NewNotifier creates a notifier with no subscribers
func NewNotifier() *Notifier {
	return &Notifier{listeners: map[int]FailureListener{}}
}

// Subscribe registers a listener and returns a function removing it
func (n *Notifier) Subscribe(listener FailureListener) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.listeners[id] = listener

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

// Publish delivers the event to all current subscribers
func (n *Notifier) Publish(event RequestFailed) {
	n.mu.RLock()
	listeners := make([]FailureListener, 0, len(n.listeners))
	for _, l := range n.listeners {
		listeners = append(listeners, l)
	}
	n.mu.RUnlock()

	for _, l := range listeners {
		l(event)
	}
}
