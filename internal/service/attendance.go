package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hirebot-backend/internal/logger"
	"hirebot-backend/internal/repository"
	"hirebot-backend/internal/utils"
)

const timeLayout = "15:04"

type attendanceService struct {
	repo      repository.AttendanceRepository
	reference utils.Point
	radius    float64
	now       func() time.Time
}

// NewAttendanceService builds the geofenced attendance recorder.
func NewAttendanceService(repo repository.AttendanceRepository, reference utils.Point, radiusMeters float64) AttendanceService {
	return &attendanceService{
		repo:      repo,
		reference: reference,
		radius:    radiusMeters,
		now:       time.Now,
	}
}

// ValidateAndRecord checks the reported position against the geofence and,
// when in range, writes the current time into the worker's per-day cell. A
// check-out on a cell that already holds a check-in appends, producing an
// "in - out" pair in one cell. Out-of-range reports write nothing.
func (s *attendanceService) ValidateAndRecord(ctx context.Context, worker string, lat, lng float64, action AttendanceAction) (*AttendanceResult, error) {
	distance := utils.DistanceMeters(s.reference, utils.Point{Latitude: lat, Longitude: lng})
	if distance > s.radius {
		logger.Info("Attendance report out of range", "worker", worker, "distance_m", distance, "radius_m", s.radius)
		return &AttendanceResult{InRange: false, DistanceMeters: distance}, nil
	}

	now := s.now()
	day := now.Format(utils.DateLayout)
	current, err := s.repo.DayCell(ctx, worker, day)
	if err != nil {
		return nil, fmt.Errorf("failed to read attendance cell: %w", err)
	}

	value, changed := nextCellValue(current, action, now.Format(timeLayout))
	if changed {
		if err := s.repo.SetDayCell(ctx, worker, day, value); err != nil {
			return nil, fmt.Errorf("failed to write attendance cell: %w", err)
		}
		logger.Info("Attendance recorded", "worker", worker, "day", day, "value", value, "action", string(action))
	}
	return &AttendanceResult{InRange: true, DistanceMeters: distance, CellValue: value, Updated: changed}, nil
}

// nextCellValue computes the new cell content for an attendance action.
// changed=false means the cell already reflects the action and no write is
// needed.
func nextCellValue(current string, action AttendanceAction, timestamp string) (value string, changed bool) {
	hasPair := strings.Contains(current, " - ")
	switch action {
	case ActionCheckOut:
		if current == "" {
			return timestamp, true
		}
		if hasPair {
			return current, false // already checked out
		}
		return current + " - " + timestamp, true
	default: // check-in
		if current != "" {
			return current, false // already checked in
		}
		return timestamp, true
	}
}
