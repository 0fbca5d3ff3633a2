package service

import (
	"context"
	"errors"
	"testing"
	"time"

	gojira "github.com/andygrunwald/go-jira"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/petr-muller/jironimo/internal/jironimo/jira"
	"github.com/petr-muller/jironimo/internal/jironimo/storage"
	"github.com/petr-muller/jironimo/internal/mappings"
)

type call struct {
	op      string
	issue   string
	payload jira.Payload
}

type fakeAPI struct {
	calls []call

	session    *gojira.Session
	sessionErr error
	result     *jira.SearchResult
	searchErr  error
	filters    []gojira.Filter
	mutateErr  error
}

func (f *fakeAPI) CheckSession(_ context.Context) (*gojira.Session, error) {
	f.calls = append(f.calls, call{op: "session"})
	return f.session, f.sessionErr
}

func (f *fakeAPI) Search(_ context.Context, jql string, _, _ int) (*jira.SearchResult, error) {
	f.calls = append(f.calls, call{op: "search", issue: jql})
	return f.result, f.searchErr
}

func (f *fakeAPI) FavouriteFilters(_ context.Context) ([]gojira.Filter, error) {
	f.calls = append(f.calls, call{op: "favourites"})
	return f.filters, nil
}

func (f *fakeAPI) SetAssignee(_ context.Context, issueID string, payload jira.Payload) error {
	f.calls = append(f.calls, call{op: "assignee", issue: issueID, payload: payload})
	return f.mutateErr
}

func (f *fakeAPI) AddWorklog(_ context.Context, issueID string, payload jira.Payload) (*gojira.WorklogRecord, error) {
	f.calls = append(f.calls, call{op: "worklog", issue: issueID, payload: payload})
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	return &gojira.WorklogRecord{ID: "1"}, nil
}

func (f *fakeAPI) Transition(_ context.Context, issueID string, payload jira.Payload) error {
	f.calls = append(f.calls, call{op: "transition", issue: issueID, payload: payload})
	return f.mutateErr
}

func (f *fakeAPI) Transitions(_ context.Context, issueID string) ([]gojira.Transition, error) {
	f.calls = append(f.calls, call{op: "transitions", issue: issueID})
	return []gojira.Transition{{ID: "31", Name: "Done"}}, f.mutateErr
}

func (f *fakeAPI) ops() []string {
	var ops []string
	for _, c := range f.calls {
		ops = append(ops, c.op)
	}
	return ops
}

func issue(key, priority, issueType, status string, estimate int) gojira.Issue {
	return gojira.Issue{
		Key: key,
		Fields: &gojira.IssueFields{
			Summary:      key + " summary",
			Priority:     &gojira.Priority{ID: priority},
			Type:         gojira.IssueType{Name: issueType},
			Status:       &gojira.Status{Name: status},
			TimeEstimate: estimate,
		},
	}
}

func newTestService(api API) (*Service, *testingclock.FakeClock) {
	clk := testingclock.NewFakeClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	return NewService(api, mappings.DefaultMappings(), clk), clk
}

func TestRunSearch(t *testing.T) {
	api := &fakeAPI{
		session: &gojira.Session{Name: "jdoe"},
		result: &jira.SearchResult{
			StartAt:    16,
			MaxResults: 16,
			Total:      40,
			Issues: []gojira.Issue{
				issue("ABC-2", "1", "Bug", "Closed", 0),
				issue("ABC-1", "4", "Epic", "Open", 3*3600),
			},
		},
	}
	svc, _ := newTestService(api)

	page, err := svc.RunSearch(context.Background(), "project = ABC", 16, 16)
	require.NoError(t, err)

	assert.Equal(t, []string{"session", "search"}, api.ops())
	assert.Equal(t, 16, page.StartAt)
	assert.Equal(t, 40, page.Total)
	require.Len(t, page.Issues, 2)

	closed := page.Issues[0]
	assert.Equal(t, "ABC-2", closed.Key)
	assert.True(t, closed.IsClosed)
	assert.Equal(t, "red", closed.ColorClass)
	assert.Equal(t, "small", closed.SizeClass)
	assert.Empty(t, closed.TimeEstimateHuman)

	open := page.Issues[1]
	assert.Equal(t, "ABC-1", open.Key)
	assert.False(t, open.IsClosed)
	assert.Equal(t, "green", open.ColorClass)
	assert.Equal(t, "large", open.SizeClass)
	assert.Equal(t, "3 hours", open.TimeEstimateHuman)
}

func TestRunSearchSessionFailure(t *testing.T) {
	apiErr := &jira.Error{Kind: jira.KindAuth, StatusCode: 401}
	api := &fakeAPI{sessionErr: apiErr}
	svc, _ := newTestService(api)

	page, err := svc.RunSearch(context.Background(), "project = ABC", 0, 16)
	assert.Nil(t, page)
	assert.ErrorIs(t, err, ErrSessionFailed)
	var jiraErr *jira.Error
	require.ErrorAs(t, err, &jiraErr)
	assert.Equal(t, jira.KindAuth, jiraErr.Kind)
	assert.Equal(t, []string{"session"}, api.ops())
}

func TestRunSearchNoSession(t *testing.T) {
	api := &fakeAPI{}
	svc, _ := newTestService(api)

	_, err := svc.RunSearch(context.Background(), "project = ABC", 0, 16)
	assert.ErrorIs(t, err, ErrSessionFailed)
	assert.ErrorIs(t, err, jira.ErrNoSession)
}

func TestRunSearchFailure(t *testing.T) {
	api := &fakeAPI{session: &gojira.Session{Name: "jdoe"}, searchErr: errors.New("boom")}
	svc, _ := newTestService(api)

	_, err := svc.RunSearch(context.Background(), "project = ABC", 0, 16)
	assert.ErrorIs(t, err, ErrSearchFailed)
	assert.NotErrorIs(t, err, ErrSessionFailed)
}

func TestDecorateTolerateMissingFields(t *testing.T) {
	record := Decorate(gojira.Issue{Key: "ABC-1"}, mappings.DefaultMappings())
	assert.False(t, record.IsClosed)
	assert.Equal(t, "blue", record.ColorClass)
	assert.Equal(t, "small", record.SizeClass)
	assert.Empty(t, record.Summary())
	assert.Empty(t, record.StatusName())
	assert.Empty(t, record.AssigneeName())
	assert.False(t, record.IsAssigned())
}

func TestHumanizeDuration(t *testing.T) {
	testCases := []struct {
		duration time.Duration
		expected string
	}{
		{duration: 30 * time.Minute, expected: "30 minutes"},
		{duration: time.Hour, expected: "1 hour"},
		{duration: 8 * time.Hour, expected: "8 hours"},
		{duration: 3 * 24 * time.Hour, expected: "3 days"},
	}
	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, HumanizeDuration(tc.duration))
		})
	}
}

func TestImportFavourites(t *testing.T) {
	api := &fakeAPI{filters: []gojira.Filter{
		{Name: "Existing", Jql: "assignee = currentUser()"},
		{Name: "Team", Jql: "project = ABC"},
		{Name: "Team again", Jql: "project = ABC"},
		{Name: "Bugs", Jql: "type = Bug"},
	}}
	svc, _ := newTestService(api)
	workspaces := &storage.Workspaces{Entries: []storage.Workspace{
		{Title: "Mine", Query: "assignee = currentUser()", Icon: "bug", IsDefault: true},
	}}

	added, err := svc.ImportFavourites(context.Background(), workspaces)
	require.NoError(t, err)

	expected := []storage.Workspace{
		{Title: "Team", Query: "project = ABC", Icon: storage.ImportedIcon},
		{Title: "Bugs", Query: "type = Bug", Icon: storage.ImportedIcon},
	}
	assert.Equal(t, expected, added)
	assert.Len(t, workspaces.Entries, 3)
	assert.Equal(t, expected, workspaces.Entries[1:])

	added, err = svc.ImportFavourites(context.Background(), workspaces)
	require.NoError(t, err)
	assert.Empty(t, added)
}

func TestStartWorkAssignsUnassigned(t *testing.T) {
	api := &fakeAPI{session: &gojira.Session{Name: "jdoe"}}
	svc, _ := newTestService(api)

	record := Decorate(issue("ABC-1", "3", "Task", "Open", 0), mappings.DefaultMappings())
	require.NoError(t, svc.StartWork(context.Background(), record))

	require.Equal(t, []string{"session", "assignee"}, api.ops())
	assert.Equal(t, "ABC-1", api.calls[1].issue)
	assert.Equal(t, jira.AssigneePayload("jdoe"), api.calls[1].payload)
	assert.Equal(t, []string{"ABC-1"}, svc.Tracker().Tracking())
}

func TestStartWorkKeepsAssignee(t *testing.T) {
	api := &fakeAPI{session: &gojira.Session{Name: "jdoe"}}
	svc, _ := newTestService(api)

	raw := issue("ABC-1", "3", "Task", "Open", 0)
	raw.Fields.Assignee = &gojira.User{Name: "other"}
	require.NoError(t, svc.StartWork(context.Background(), Decorate(raw, mappings.DefaultMappings())))

	assert.Empty(t, api.calls)
	assert.Equal(t, []string{"ABC-1"}, svc.Tracker().Tracking())
}

func TestStartWorkAssignFailure(t *testing.T) {
	api := &fakeAPI{session: &gojira.Session{Name: "jdoe"}, mutateErr: errors.New("forbidden")}
	svc, _ := newTestService(api)

	err := svc.StartWork(context.Background(), Decorate(issue("ABC-1", "3", "Task", "Open", 0), mappings.DefaultMappings()))
	assert.Error(t, err)
	assert.Empty(t, svc.Tracker().Tracking())
}

func TestStopWork(t *testing.T) {
	api := &fakeAPI{session: &gojira.Session{Name: "jdoe"}}
	svc, clk := newTestService(api)

	svc.Tracker().Start("ABC-1")
	clk.Step(2*time.Minute + 5*time.Second)

	worklog, err := svc.StopWork(context.Background(), "ABC-1", "hacking")
	require.NoError(t, err)
	assert.Equal(t, "1", worklog.ID)
	require.Equal(t, []string{"worklog"}, api.ops())
	assert.Equal(t, jira.WorklogPayload(180, "hacking"), api.calls[0].payload)
	assert.Empty(t, svc.Tracker().Tracking())

	_, err = svc.StopWork(context.Background(), "ABC-1", "")
	assert.ErrorIs(t, err, ErrNotTracking)
}

func TestStopWorkFailureKeepsTracking(t *testing.T) {
	api := &fakeAPI{mutateErr: errors.New("boom")}
	svc, clk := newTestService(api)

	svc.Tracker().Start("ABC-1")
	clk.Step(10 * time.Minute)

	_, err := svc.StopWork(context.Background(), "ABC-1", "")
	require.Error(t, err)

	elapsed, ok := svc.Tracker().Elapsed("ABC-1")
	assert.True(t, ok)
	assert.Equal(t, 10*time.Minute, elapsed)
}

func TestWorklogSeconds(t *testing.T) {
	testCases := []struct {
		name     string
		elapsed  time.Duration
		expected int
	}{
		{name: "nothing", elapsed: 0, expected: 60},
		{name: "seconds", elapsed: 12 * time.Second, expected: 60},
		{name: "exact minute", elapsed: time.Minute, expected: 60},
		{name: "just over a minute", elapsed: time.Minute + time.Second, expected: 120},
		{name: "exact hour", elapsed: time.Hour, expected: 3600},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, WorklogSeconds(tc.elapsed))
		})
	}
}

func TestTrackerStartKeepsOriginalStart(t *testing.T) {
	clk := testingclock.NewFakeClock(time.Now())
	tracker := NewTracker(clk)

	tracker.Start("ABC-1")
	clk.Step(time.Minute)
	tracker.Start("ABC-1")
	clk.Step(time.Minute)

	elapsed, err := tracker.Stop("ABC-1")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, elapsed)

	_, ok := tracker.Elapsed("ABC-1")
	assert.False(t, ok)
}

func TestAssignToAndTransition(t *testing.T) {
	api := &fakeAPI{session: &gojira.Session{Name: "jdoe"}}
	svc, _ := newTestService(api)
	ctx := context.Background()

	require.NoError(t, svc.AssignTo(ctx, "ABC-1", "alice"))
	require.NoError(t, svc.Transition(ctx, "ABC-1", "31"))
	transitions, err := svc.Transitions(ctx, "ABC-1")
	require.NoError(t, err)
	assert.Equal(t, "Done", transitions[0].Name)

	assert.Equal(t, []string{"assignee", "transition", "transitions"}, api.ops())
	assert.Equal(t, jira.AssigneePayload("alice"), api.calls[0].payload)
	assert.Equal(t, jira.TransitionPayload("31"), api.calls[1].payload)
}
