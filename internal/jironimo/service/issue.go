package service

import (
	"strings"
	"time"

	gojira "github.com/andygrunwald/go-jira"
	"github.com/dustin/go-humanize"
)

const closedStatus = "Closed"

// Classifier assigns display classes to issues
type Classifier interface {
	ColorFor(priorityID string) string
	SizeFor(issueType string) string
}

// Record is an issue as returned by the server plus the fields derived for display
type Record struct {
	gojira.Issue

	IsClosed   bool
	ColorClass string
	SizeClass  string
	// TimeEstimateHuman is empty when the issue has no time estimate
	TimeEstimateHuman string
}

// Decorate derives the display fields of an issue
func Decorate(issue gojira.Issue, classes Classifier) Record {
	record := Record{Issue: issue}

	var priorityID, issueType string
	if fields := issue.Fields; fields != nil {
		if fields.Status != nil {
			record.IsClosed = fields.Status.Name == closedStatus
		}
		if fields.Priority != nil {
			priorityID = fields.Priority.ID
		}
		issueType = fields.Type.Name
		if fields.TimeEstimate > 0 {
			record.TimeEstimateHuman = HumanizeDuration(time.Duration(fields.TimeEstimate) * time.Second)
		}
	}

	record.ColorClass = classes.ColorFor(priorityID)
	record.SizeClass = classes.SizeFor(issueType)

	return record
}

// HumanizeDuration renders a duration the way people say it, e.g. "3 hours"
func HumanizeDuration(d time.Duration) string {
	var epoch time.Time
	return strings.TrimSpace(humanize.RelTime(epoch, epoch.Add(d), "", ""))
}

// Summary returns the issue summary, or an empty string
func (r Record) Summary() string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields.Summary
}

// StatusName returns the issue status, or an empty string
func (r Record) StatusName() string {
	if r.Fields == nil || r.Fields.Status == nil {
		return ""
	}
	return r.Fields.Status.Name
}

// AssigneeName returns the display name of the assignee, or an empty string
func (r Record) AssigneeName() string {
	if r.Fields == nil || r.Fields.Assignee == nil {
		return ""
	}
	if r.Fields.Assignee.DisplayName != "" {
		return r.Fields.Assignee.DisplayName
	}
	return r.Fields.Assignee.Name
}

// IsAssigned reports whether the issue has an assignee
func (r Record) IsAssigned() bool {
	return r.Fields != nil && r.Fields.Assignee != nil
}

// TypeName returns the issue type, or an empty string
func (r Record) TypeName() string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields.Type.Name
}

// PriorityName returns the issue priority, or an empty string
func (r Record) PriorityName() string {
	if r.Fields == nil || r.Fields.Priority == nil {
		return ""
	}
	return r.Fields.Priority.Name
}
