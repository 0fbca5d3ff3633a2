package compare

import (
	"github.com/petr-muller/jironimo/internal/jironimo/service"
)

// Change is a single field that differs between two versions of an issue
type Change struct {
	Field    string
	OldValue string
	NewValue string
}

// Result describes how a page of issues differs from the previous page
type Result struct {
	New     []service.Record
	Removed []service.Record
	Changed map[string][]Change
}

// Pages compares the current page of issues with the previous one. New issues
// keep the order of the current page, removed issues the order of the previous one.
func Pages(current, previous []service.Record) Result {
	previousByKey := make(map[string]service.Record, len(previous))
	for _, record := range previous {
		previousByKey[record.Key] = record
	}
	currentKeys := make(map[string]struct{}, len(current))

	result := Result{Changed: map[string][]Change{}}
	for _, record := range current {
		currentKeys[record.Key] = struct{}{}
		old, ok := previousByKey[record.Key]
		if !ok {
			result.New = append(result.New, record)
			continue
		}
		if changes := Records(record, old); len(changes) > 0 {
			result.Changed[record.Key] = changes
		}
	}

	for _, record := range previous {
		if _, ok := currentKeys[record.Key]; !ok {
			result.Removed = append(result.Removed, record)
		}
	}

	return result
}

// Records lists the displayed fields that differ between two versions of an issue
func Records(current, previous service.Record) []Change {
	fields := []struct {
		name     string
		old, new string
	}{
		{name: "summary", old: previous.Summary(), new: current.Summary()},
		{name: "status", old: previous.StatusName(), new: current.StatusName()},
		{name: "assignee", old: previous.AssigneeName(), new: current.AssigneeName()},
		{name: "priority", old: previous.PriorityName(), new: current.PriorityName()},
		{name: "type", old: previous.TypeName(), new: current.TypeName()},
		{name: "estimate", old: previous.TimeEstimateHuman, new: current.TimeEstimateHuman},
	}

	var changes []Change
	for _, field := range fields {
		if field.old != field.new {
			changes = append(changes, Change{Field: field.name, OldValue: field.old, NewValue: field.new})
		}
	}
	return changes
}

// HasChanges returns true if there are any changes in the result
func (r Result) HasChanges() bool {
	return len(r.New) > 0 || len(r.Removed) > 0 || len(r.Changed) > 0
}

// IsNew reports whether the issue appeared on the current page
func (r Result) IsNew(key string) bool {
	for _, record := range r.New {
		if record.Key == key {
			return true
		}
	}
	return false
}

// IsChanged reports whether the issue changed since the previous page
func (r Result) IsChanged(key string) bool {
	_, ok := r.Changed[key]
	return ok
}
