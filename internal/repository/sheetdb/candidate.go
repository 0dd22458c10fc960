package sheetdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"hirebot-backend/internal/domain"
	"hirebot-backend/internal/repository"
	"hirebot-backend/internal/sheets"
)

// Candidate sheet column names. Matching is normalization-insensitive, so
// the live sheet may spell them with any casing or underscores.
const (
	colActorID         = "Actor ID"
	colName            = "Name"
	colPhone           = "Phone"
	colAge             = "Age"
	colCity            = "City"
	colLanguage        = "Language"
	colStatus          = "Status"
	colPosition        = "Position"
	colCourseDate      = "Course Date"
	colPreCourseMarker = "Pre Course Reminder"
	colCourseDayMarker = "Course Day Reminder"
	colNotes           = "Notes"
)

var candidateColumns = []string{
	colActorID, colName, colPhone, colAge, colCity, colLanguage,
	colStatus, colPosition, colCourseDate, colPreCourseMarker,
	colCourseDayMarker, colNotes,
}

type candidateRepository struct {
	gw    sheets.Gateway
	sheet string
}

func NewCandidateRepository(gw sheets.Gateway, sheet string) repository.CandidateRepository {
	return &candidateRepository{gw: gw, sheet: sheet}
}

// columnMap resolves every candidate column to its index once per operation.
func (r *candidateRepository) columnMap(ctx context.Context) (map[string]int, int, error) {
	cols := make(map[string]int, len(candidateColumns))
	last := 0
	for _, name := range candidateColumns {
		idx, err := r.gw.ColumnIndex(ctx, r.sheet, name)
		if err != nil {
			return nil, 0, err
		}
		cols[name] = idx
		if idx > last {
			last = idx
		}
	}
	return cols, last, nil
}

func (r *candidateRepository) Append(ctx context.Context, c *domain.Candidate) error {
	cols, last, err := r.columnMap(ctx)
	if err != nil {
		return err
	}

	row := make([]string, last+1)
	row[cols[colActorID]] = strconv.FormatInt(c.ActorID, 10)
	row[cols[colName]] = c.Name
	row[cols[colPhone]] = c.Phone
	row[cols[colAge]] = c.Age
	row[cols[colCity]] = c.City
	row[cols[colLanguage]] = c.Language
	row[cols[colStatus]] = string(c.Status)
	row[cols[colPosition]] = c.Position
	row[cols[colCourseDate]] = c.CourseDate
	row[cols[colPreCourseMarker]] = c.PreCourseMarker
	row[cols[colCourseDayMarker]] = c.CourseDayMarker
	row[cols[colNotes]] = c.Notes

	if err := r.gw.AppendRow(ctx, r.sheet+"!A1", row); err != nil {
		return err
	}

	// Resolve the row number the append landed on. Eventual reads of our own
	// writes are acceptable here; the row count is only used for later cell
	// addressing.
	all, err := r.ListAll(ctx)
	if err != nil {
		return err
	}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].ActorID == c.ActorID {
			c.Row = all[i].Row
			break
		}
	}
	return nil
}

func (r *candidateRepository) ListAll(ctx context.Context) ([]domain.Candidate, error) {
	cols, last, err := r.columnMap(ctx)
	if err != nil {
		return nil, err
	}

	rng := fmt.Sprintf("%s!A2:%s", r.sheet, sheets.ColumnLetter(last))
	rows, err := r.gw.Rows(ctx, rng)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Candidate, 0, len(rows))
	for i, row := range rows {
		c := parseCandidate(row, cols)
		c.Row = i + 2 // data starts below the header row
		if c.ActorID == 0 && c.Name == "" {
			continue // blank filler row
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *candidateRepository) FindByActorID(ctx context.Context, actorID int64) (*domain.Candidate, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	// most-recent row wins when duplicates exist
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].ActorID == actorID {
			c := all[i]
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *candidateRepository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Candidate, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Candidate, 0)
	for _, c := range all {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *candidateRepository) ApplyDecision(ctx context.Context, row int, status domain.Status, position, courseDate string) error {
	cols, _, err := r.columnMap(ctx)
	if err != nil {
		return err
	}

	// Status is written first: it is the conservative field should a later
	// cell write fail mid-update.
	if err := r.gw.UpdateCell(ctx, sheets.CellRange(r.sheet, cols[colStatus], row), string(status)); err != nil {
		return err
	}
	if err := r.gw.UpdateCell(ctx, sheets.CellRange(r.sheet, cols[colCourseDate], row), courseDate); err != nil {
		return err
	}
	if position != "" {
		if err := r.gw.UpdateCell(ctx, sheets.CellRange(r.sheet, cols[colPosition], row), position); err != nil {
			return err
		}
	}
	// A fresh decision re-arms both reminders.
	if err := r.gw.UpdateCell(ctx, sheets.CellRange(r.sheet, cols[colPreCourseMarker], row), ""); err != nil {
		return err
	}
	return r.gw.UpdateCell(ctx, sheets.CellRange(r.sheet, cols[colCourseDayMarker], row), "")
}

func (r *candidateRepository) UpdateStatus(ctx context.Context, row int, status domain.Status) error {
	cols, _, err := r.columnMap(ctx)
	if err != nil {
		return err
	}
	return r.gw.UpdateCell(ctx, sheets.CellRange(r.sheet, cols[colStatus], row), string(status))
}

func (r *candidateRepository) SetReminderMarker(ctx context.Context, row int, kind domain.ReminderKind, date string) error {
	cols, _, err := r.columnMap(ctx)
	if err != nil {
		return err
	}
	col := cols[colPreCourseMarker]
	if kind == domain.ReminderCourseDay {
		col = cols[colCourseDayMarker]
	}
	return r.gw.UpdateCell(ctx, sheets.CellRange(r.sheet, col, row), date)
}

func (r *candidateRepository) AppendNote(ctx context.Context, row int, note string) error {
	cols, _, err := r.columnMap(ctx)
	if err != nil {
		return err
	}
	rng := sheets.CellRange(r.sheet, cols[colNotes], row)
	existing, err := r.gw.Rows(ctx, rng)
	if err != nil {
		return err
	}
	value := note
	if len(existing) > 0 && len(existing[0]) > 0 && existing[0][0] != "" {
		value = existing[0][0] + "; " + note
	}
	return r.gw.UpdateCell(ctx, rng, value)
}

func parseCandidate(row []string, cols map[string]int) domain.Candidate {
	cell := func(name string) string {
		idx := cols[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	actorID, _ := strconv.ParseInt(cell(colActorID), 10, 64)
	return domain.Candidate{
		ActorID:         actorID,
		Name:            cell(colName),
		Phone:           cell(colPhone),
		Age:             cell(colAge),
		City:            cell(colCity),
		Language:        cell(colLanguage),
		Status:          domain.Status(cell(colStatus)),
		Position:        cell(colPosition),
		CourseDate:      cell(colCourseDate),
		PreCourseMarker: cell(colPreCourseMarker),
		CourseDayMarker: cell(colCourseDayMarker),
		Notes:           cell(colNotes),
	}
}
