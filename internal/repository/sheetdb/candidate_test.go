package sheetdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirebot-backend/internal/domain"
	"hirebot-backend/internal/repository"
)

func candidateHeader() []string {
	return []string{
		"Actor ID", "Name", "Phone", "Age", "City", "Language",
		"Status", "Position", "Course Date", "Pre Course Reminder",
		"Course Day Reminder", "Notes",
	}
}

func newCandidateFixture() (*fakeGateway, repository.CandidateRepository) {
	gw := newFakeGateway()
	gw.grids["Candidates"] = [][]string{candidateHeader()}
	return gw, NewCandidateRepository(gw, "Candidates")
}

func TestAppendAndListAll(t *testing.T) {
	_, repo := newCandidateFixture()
	ctx := context.Background()

	c := &domain.Candidate{
		ActorID:    42,
		Name:       "Nino",
		Language:   "en",
		Status:     domain.StatusWaiting,
		Position:   "waiter",
		CourseDate: domain.CourseDateTBA,
	}
	require.NoError(t, repo.Append(ctx, c))
	assert.Equal(t, 2, c.Row, "first data row sits below the header")

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(42), all[0].ActorID)
	assert.Equal(t, domain.StatusWaiting, all[0].Status)
	assert.Equal(t, domain.CourseDateTBA, all[0].CourseDate)
}

func TestListAllToleratesShuffledColumns(t *testing.T) {
	gw := newFakeGateway()
	// Columns renamed and reordered by a sheet editor; matching goes by
	// normalized header name, not position.
	gw.grids["Candidates"] = [][]string{
		{"name", "STATUS", "actor_id", "phone", "age", "city", "language",
			"position", "course_date", "pre_course_reminder", "course_day_reminder", "notes"},
		{"Nino", "WAITING", "42", "555", "24", "Tbilisi", "en",
			"waiter", "2024-01-18", "", "", ""},
	}
	repo := NewCandidateRepository(gw, "Candidates")

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(42), all[0].ActorID)
	assert.Equal(t, "Nino", all[0].Name)
	assert.Equal(t, "2024-01-18", all[0].CourseDate)
}

func TestListAllSkipsBlankRows(t *testing.T) {
	gw, repo := newCandidateFixture()
	gw.grids["Candidates"] = append(gw.grids["Candidates"],
		[]string{"42", "Nino", "", "", "", "en", "WAITING", "waiter", "TBA", "", "", ""},
		[]string{"", "", "", "", "", "", "", "", "", "", "", ""},
		[]string{"43", "Giorgi", "", "", "", "en", "WAITING", "kitchen", "TBA", "", "", ""},
	)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 2, all[0].Row)
	assert.Equal(t, 4, all[1].Row, "row numbers track sheet positions, not slice indexes")
}

func TestFindByActorIDPrefersLatestRow(t *testing.T) {
	gw, repo := newCandidateFixture()
	gw.grids["Candidates"] = append(gw.grids["Candidates"],
		[]string{"42", "Nino", "", "", "", "en", "STOP", "waiter", "TBA", "", "", ""},
		[]string{"42", "Nino", "", "", "", "en", "WAITING", "kitchen", "TBA", "", "", ""},
	)

	c, err := repo.FindByActorID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Row)
	assert.Equal(t, domain.StatusWaiting, c.Status)
}

func TestFindByActorIDNotFound(t *testing.T) {
	_, repo := newCandidateFixture()

	_, err := repo.FindByActorID(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestApplyDecision(t *testing.T) {
	gw, repo := newCandidateFixture()
	gw.grids["Candidates"] = append(gw.grids["Candidates"],
		[]string{"42", "Nino", "", "", "", "en", "WAITING", "waiter", "TBA", "2024-01-10", "2024-01-11", ""},
	)
	ctx := context.Background()

	require.NoError(t, repo.ApplyDecision(ctx, 2, domain.StatusWaiting, "bartender", "2024-01-18"))

	c, err := repo.FindByActorID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "bartender", c.Position)
	assert.Equal(t, "2024-01-18", c.CourseDate)
	assert.Empty(t, c.PreCourseMarker, "a fresh decision re-arms the reminders")
	assert.Empty(t, c.CourseDayMarker)
}

func TestApplyDecisionKeepsPositionWhenEmpty(t *testing.T) {
	gw, repo := newCandidateFixture()
	gw.grids["Candidates"] = append(gw.grids["Candidates"],
		[]string{"42", "Nino", "", "", "", "en", "RESCHEDULE", "waiter", "RESCHEDULE", "", "", ""},
	)
	ctx := context.Background()

	require.NoError(t, repo.ApplyDecision(ctx, 2, domain.StatusWaiting, "", "2024-02-01"))

	c, err := repo.FindByActorID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "waiter", c.Position)
	assert.Equal(t, domain.StatusWaiting, c.Status)
}

func TestSetReminderMarker(t *testing.T) {
	gw, repo := newCandidateFixture()
	gw.grids["Candidates"] = append(gw.grids["Candidates"],
		[]string{"42", "Nino", "", "", "", "en", "WAITING", "waiter", "2024-01-18", "", "", ""},
	)
	ctx := context.Background()

	require.NoError(t, repo.SetReminderMarker(ctx, 2, domain.ReminderPreCourse, "2024-01-17"))
	require.NoError(t, repo.SetReminderMarker(ctx, 2, domain.ReminderCourseDay, "2024-01-18"))

	c, err := repo.FindByActorID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-17", c.PreCourseMarker)
	assert.Equal(t, "2024-01-18", c.CourseDayMarker)
}

func TestAppendNoteConcatenates(t *testing.T) {
	gw, repo := newCandidateFixture()
	gw.grids["Candidates"] = append(gw.grids["Candidates"],
		[]string{"42", "Nino", "", "", "", "en", "WAITING", "waiter", "TBA", "", "", ""},
	)
	ctx := context.Background()

	require.NoError(t, repo.AppendNote(ctx, 2, "first note"))
	require.NoError(t, repo.AppendNote(ctx, 2, "second note"))

	c, err := repo.FindByActorID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "first note; second note", c.Notes)
}

func TestMissingColumnSurfaces(t *testing.T) {
	gw := newFakeGateway()
	gw.grids["Candidates"] = [][]string{{"Actor ID", "Name"}} // most columns absent
	repo := NewCandidateRepository(gw, "Candidates")

	_, err := repo.ListAll(context.Background())
	assert.Error(t, err)
}
