package sheetdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hirebot-backend/internal/repository"
	"hirebot-backend/internal/sheets"
)

// colWorker is the first column of the attendance sheet; the remaining
// header cells are day columns named by ISO date.
const colWorker = "Worker"

type attendanceRepository struct {
	gw    sheets.Gateway
	sheet string
}

func NewAttendanceRepository(gw sheets.Gateway, sheet string) repository.AttendanceRepository {
	return &attendanceRepository{gw: gw, sheet: sheet}
}

func (r *attendanceRepository) dayColumn(ctx context.Context, day string) (int, error) {
	idx, err := r.gw.ColumnIndex(ctx, r.sheet, day)
	if err != nil {
		if errors.Is(err, sheets.ErrColumnNotFound) {
			return 0, fmt.Errorf("day %s: %w", day, repository.ErrNoPeriodColumn)
		}
		return 0, err
	}
	return idx, nil
}

// workerRow returns the 1-based row of the worker, or 0 when absent.
func (r *attendanceRepository) workerRow(ctx context.Context, worker string) (int, error) {
	nameCol, err := r.gw.ColumnIndex(ctx, r.sheet, colWorker)
	if err != nil {
		return 0, err
	}
	letter := sheets.ColumnLetter(nameCol)
	rows, err := r.gw.Rows(ctx, fmt.Sprintf("%s!%s2:%s", r.sheet, letter, letter))
	if err != nil {
		return 0, err
	}
	want := strings.TrimSpace(strings.ToLower(worker))
	for i, row := range rows {
		if len(row) > 0 && strings.TrimSpace(strings.ToLower(row[0])) == want {
			return i + 2, nil
		}
	}
	return 0, nil
}

func (r *attendanceRepository) DayCell(ctx context.Context, worker, day string) (string, error) {
	col, err := r.dayColumn(ctx, day)
	if err != nil {
		return "", err
	}
	row, err := r.workerRow(ctx, worker)
	if err != nil {
		return "", err
	}
	if row == 0 {
		return "", nil
	}
	cells, err := r.gw.Rows(ctx, sheets.CellRange(r.sheet, col, row))
	if err != nil {
		return "", err
	}
	if len(cells) == 0 || len(cells[0]) == 0 {
		return "", nil
	}
	return cells[0][0], nil
}

func (r *attendanceRepository) SetDayCell(ctx context.Context, worker, day, value string) error {
	col, err := r.dayColumn(ctx, day)
	if err != nil {
		return err
	}
	row, err := r.workerRow(ctx, worker)
	if err != nil {
		return err
	}
	if row == 0 {
		nameCol, err := r.gw.ColumnIndex(ctx, r.sheet, colWorker)
		if err != nil {
			return err
		}
		newRow := make([]string, nameCol+1)
		newRow[nameCol] = worker
		if err := r.gw.AppendRow(ctx, r.sheet+"!A1", newRow); err != nil {
			return err
		}
		row, err = r.workerRow(ctx, worker)
		if err != nil {
			return err
		}
		if row == 0 {
			return fmt.Errorf("failed to insert attendance row for %s", worker)
		}
	}
	return r.gw.UpdateCell(ctx, sheets.CellRange(r.sheet, col, row), value)
}
