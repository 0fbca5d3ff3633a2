package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/petr-muller/jironimo/internal/jironimo/jira"
	"github.com/petr-muller/jironimo/internal/jironimo/workspace"
)

type snapshotMsg workspace.Snapshot

type failureMsg jira.RequestFailed

// Events carries board updates and request failures into the UI
type Events struct {
	messages chan tea.Msg
	done     chan struct{}
}

// NewEvents creates an event queue for the UI
func NewEvents() *Events {
	return &Events{
		messages: make(chan tea.Msg, 16),
		done:     make(chan struct{}),
	}
}

// Snapshot queues a board update; usable as a workspace update handler
func (e *Events) Snapshot(snapshot workspace.Snapshot) {
	e.send(snapshotMsg(snapshot))
}

// Failure queues a request failure; usable as a jira failure listener
func (e *Events) Failure(event jira.RequestFailed) {
	e.send(failureMsg(event))
}

// Close releases senders blocked on a UI that is no longer reading
func (e *Events) Close() {
	close(e.done)
}

func (e *Events) send(msg tea.Msg) {
	select {
	case e.messages <- msg:
	case <-e.done:
	}
}

func (e *Events) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-e.messages:
			return msg
		case <-e.done:
			return nil
		}
	}
}
