package storage

import (
	"regexp"
	"strings"
)

var watchEligible = regexp.MustCompile(`\bupdated(date)?\b`)

// DefaultWorkspaces returns the list used before the user configured any
func DefaultWorkspaces() *Workspaces {
	return &Workspaces{
		Entries: []Workspace{
			{
				Title:     "My open issues",
				Query:     "assignee = currentUser() AND resolution = Unresolved ORDER BY updatedDate DESC",
				Icon:      DefaultIcon,
				IsDefault: true,
			},
		},
	}
}

// Active returns the index of the workspace to show: the last used one when
// it is valid, otherwise the default one, otherwise the first one
func (w *Workspaces) Active() int {
	if w.Last != nil && *w.Last >= 0 && *w.Last < len(w.Entries) {
		return *w.Last
	}
	for i, entry := range w.Entries {
		if entry.IsDefault {
			return i
		}
	}
	return 0
}

// SwitchTo marks index as the last used workspace and returns it; an index
// out of range selects the first workspace
func (w *Workspaces) SwitchTo(index int) int {
	if index < 0 || index >= len(w.Entries) {
		index = 0
	}
	w.Last = &index
	return index
}

// Add appends a workspace
func (w *Workspaces) Add(workspace Workspace) error {
	if len(w.Entries) >= MaxWorkspaces {
		return ErrTooManyWorkspaces
	}
	if workspace.Icon == "" {
		workspace.Icon = DefaultIcon
	}
	workspace.IsDefault = false
	w.Entries = append(w.Entries, workspace)
	return nil
}

// Remove deletes the workspace at index. Removing the default workspace
// makes the first remaining one the default.
func (w *Workspaces) Remove(index int) error {
	if index < 0 || index >= len(w.Entries) {
		return ErrNoSuchWorkspace
	}
	if len(w.Entries) < 2 {
		return ErrLastWorkspace
	}

	removed := w.Entries[index]
	w.Entries = append(w.Entries[:index:index], w.Entries[index+1:]...)

	if removed.IsDefault {
		_ = w.SetDefault(0)
	}

	if w.Last != nil {
		switch {
		case *w.Last == index:
			w.Last = nil
		case *w.Last > index:
			last := *w.Last - 1
			w.Last = &last
		}
	}
	return nil
}

// SetDefault makes the workspace at index the only default one
func (w *Workspaces) SetDefault(index int) error {
	if index < 0 || index >= len(w.Entries) {
		return ErrNoSuchWorkspace
	}
	for i := range w.Entries {
		w.Entries[i].IsDefault = i == index
	}
	return nil
}

// Queries returns the JQL of every workspace
func (w *Workspaces) Queries() []string {
	queries := make([]string, 0, len(w.Entries))
	for _, entry := range w.Entries {
		queries = append(queries, entry.Query)
	}
	return queries
}

// WatchEligible reports whether a query orders or filters by update time,
// which makes it meaningful to poll
func WatchEligible(query string) bool {
	return watchEligible.MatchString(strings.ToLower(query))
}
