package compare

import (
	"testing"

	gojira "github.com/andygrunwald/go-jira"
	"github.com/stretchr/testify/assert"

	"github.com/petr-muller/jironimo/internal/jironimo/service"
)

func record(key, summary, status string) service.Record {
	return service.Record{Issue: gojira.Issue{
		Key: key,
		Fields: &gojira.IssueFields{
			Summary: summary,
			Status:  &gojira.Status{Name: status},
		},
	}}
}

func TestPages(t *testing.T) {
	previous := []service.Record{
		record("ABC-1", "First", "Open"),
		record("ABC-2", "Second", "Open"),
		record("ABC-3", "Third", "Open"),
	}
	current := []service.Record{
		record("ABC-4", "Fourth", "Open"),
		record("ABC-1", "First", "Open"),
		record("ABC-2", "Second, renamed", "Closed"),
	}

	result := Pages(current, previous)

	assert.True(t, result.HasChanges())
	assert.Len(t, result.New, 1)
	assert.Equal(t, "ABC-4", result.New[0].Key)
	assert.Len(t, result.Removed, 1)
	assert.Equal(t, "ABC-3", result.Removed[0].Key)
	assert.Equal(t, map[string][]Change{
		"ABC-2": {
			{Field: "summary", OldValue: "Second", NewValue: "Second, renamed"},
			{Field: "status", OldValue: "Open", NewValue: "Closed"},
		},
	}, result.Changed)

	assert.True(t, result.IsNew("ABC-4"))
	assert.False(t, result.IsNew("ABC-1"))
	assert.True(t, result.IsChanged("ABC-2"))
	assert.False(t, result.IsChanged("ABC-1"))
}

func TestPagesUnchanged(t *testing.T) {
	page := []service.Record{record("ABC-1", "First", "Open")}
	result := Pages(page, page)
	assert.False(t, result.HasChanges())
}

func TestPagesFirstFetch(t *testing.T) {
	result := Pages([]service.Record{record("ABC-1", "First", "Open")}, nil)
	assert.Len(t, result.New, 1)
	assert.Empty(t, result.Removed)
}

func TestRecordsMissingFields(t *testing.T) {
	changes := Records(record("ABC-1", "First", "Open"), service.Record{Issue: gojira.Issue{Key: "ABC-1"}})
	assert.Equal(t, []Change{
		{Field: "summary", OldValue: "", NewValue: "First"},
		{Field: "status", OldValue: "", NewValue: "Open"},
	}, changes)
}
