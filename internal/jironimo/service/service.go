package service

import (
	"context"
	"fmt"
	"time"

	gojira "github.com/andygrunwald/go-jira"
	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/utils/clock"

	"github.com/petr-muller/jironimo/internal/jironimo/jira"
	"github.com/petr-muller/jironimo/internal/jironimo/storage"
)

// API is the part of the JIRA client the service uses
type API interface {
	CheckSession(ctx context.Context) (*gojira.Session, error)
	Search(ctx context.Context, jql string, startAt, maxResults int) (*jira.SearchResult, error)
	FavouriteFilters(ctx context.Context) ([]gojira.Filter, error)
	SetAssignee(ctx context.Context, issueID string, payload jira.Payload) error
	AddWorklog(ctx context.Context, issueID string, payload jira.Payload) (*gojira.WorklogRecord, error)
	Transition(ctx context.Context, issueID string, payload jira.Payload) error
	Transitions(ctx context.Context, issueID string) ([]gojira.Transition, error)
}

// Page is one page of decorated search results
type Page struct {
	StartAt    int
	MaxResults int
	Total      int
	Issues     []Record
}

// Service orchestrates the jironimo functionality on top of the JIRA API
type Service struct {
	api     API
	classes Classifier
	tracker *Tracker
	logger  *logrus.Entry
}

// NewService creates a new service instance
func NewService(api API, classes Classifier, clk clock.PassiveClock) *Service {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Service{
		api:     api,
		classes: classes,
		tracker: NewTracker(clk),
		logger:  logrus.WithField("component", "service"),
	}
}

// Tracker returns the work tracker of the service
func (s *Service) Tracker() *Tracker {
	return s.tracker
}

// RunSearch checks the session and then runs the search. The search is not
// attempted when the session check fails.
func (s *Service) RunSearch(ctx context.Context, query string, offset, limit int) (*Page, error) {
	if _, err := s.me(ctx); err != nil {
		return nil, err
	}

	result, err := s.api.Search(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}

	page := &Page{
		StartAt:    result.StartAt,
		MaxResults: result.MaxResults,
		Total:      result.Total,
		Issues:     make([]Record, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		page.Issues = append(page.Issues, Decorate(issue, s.classes))
	}
	s.logger.WithFields(logrus.Fields{"startAt": page.StartAt, "total": page.Total, "issues": len(page.Issues)}).Debug("Search finished")
	return page, nil
}

// ImportFavourites adds a workspace for every favourite filter whose query is
// not yet present in the workspaces. It returns the added workspaces.
func (s *Service) ImportFavourites(ctx context.Context, workspaces *storage.Workspaces) ([]storage.Workspace, error) {
	filters, err := s.api.FavouriteFilters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch favourite filters: %w", err)
	}

	favourites := sets.New[string]()
	for _, filter := range filters {
		favourites.Insert(filter.Jql)
	}
	missing := favourites.Difference(sets.New(workspaces.Queries()...))

	var added []storage.Workspace
	for _, filter := range filters {
		if !missing.Has(filter.Jql) {
			continue
		}
		missing.Delete(filter.Jql)
		workspace := storage.Workspace{Title: filter.Name, Query: filter.Jql, Icon: storage.ImportedIcon}
		workspaces.Entries = append(workspaces.Entries, workspace)
		added = append(added, workspace)
	}
	return added, nil
}

// AssignTo assigns an issue. An empty login assigns the issue to the session user.
func (s *Service) AssignTo(ctx context.Context, key, login string) error {
	if login == "" {
		session, err := s.me(ctx)
		if err != nil {
			return err
		}
		login = session.Name
	}
	if err := s.api.SetAssignee(ctx, key, jira.AssigneePayload(login)); err != nil {
		return fmt.Errorf("failed to assign %s to %s: %w", key, login, err)
	}
	return nil
}

// StartWork starts tracking work on an issue, assigning it to the session user
// first when it has no assignee
func (s *Service) StartWork(ctx context.Context, record Record) error {
	if !record.IsAssigned() {
		if err := s.AssignTo(ctx, record.Key, ""); err != nil {
			return err
		}
	}
	s.tracker.Start(record.Key)
	s.logger.WithField("issue", record.Key).Info("Started work")
	return nil
}

// StopWork stops tracking work on an issue and logs the elapsed time to it.
// The issue stays tracked when the worklog cannot be added.
func (s *Service) StopWork(ctx context.Context, key, comment string) (*gojira.WorklogRecord, error) {
	start, ok := s.tracker.take(key)
	if !ok {
		return nil, ErrNotTracking
	}

	worklog, err := s.LogWork(ctx, key, s.tracker.clock.Since(start), comment)
	if err != nil {
		s.tracker.resume(key, start)
		return nil, err
	}
	return worklog, nil
}

// LogWork adds a worklog of the given duration to an issue
func (s *Service) LogWork(ctx context.Context, key string, spent time.Duration, comment string) (*gojira.WorklogRecord, error) {
	seconds := WorklogSeconds(spent)
	worklog, err := s.api.AddWorklog(ctx, key, jira.WorklogPayload(seconds, comment))
	if err != nil {
		return nil, fmt.Errorf("failed to log work on %s: %w", key, err)
	}
	s.logger.WithFields(logrus.Fields{"issue": key, "seconds": seconds}).Info("Logged work")
	return worklog, nil
}

// Transitions lists the transitions available for an issue
func (s *Service) Transitions(ctx context.Context, key string) ([]gojira.Transition, error) {
	transitions, err := s.api.Transitions(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions of %s: %w", key, err)
	}
	return transitions, nil
}

// Transition moves an issue through the given transition
func (s *Service) Transition(ctx context.Context, key, transitionID string) error {
	if err := s.api.Transition(ctx, key, jira.TransitionPayload(transitionID)); err != nil {
		return fmt.Errorf("failed to transition %s: %w", key, err)
	}
	return nil
}

func (s *Service) me(ctx context.Context) (*gojira.Session, error) {
	session, err := s.api.CheckSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionFailed, err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionFailed, jira.ErrNoSession)
	}
	return session, nil
}
