package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     Status
		event    string
		expected Status
	}{
		{"Confirm", StatusWaiting, EventConfirm, StatusWorking},
		{"Reject while waiting", StatusWaiting, EventReject, StatusStop},
		{"Reject while rescheduling", StatusReschedule, EventReject, StatusStop},
		{"Decline", StatusWaiting, EventDecline, StatusStop},
		{"Reschedule", StatusWaiting, EventReschedule, StatusReschedule},
		{"Redate", StatusReschedule, EventRedate, StatusWaiting},
		{"Accept alternate", StatusStop, EventOfferAccept, StatusAltAccepted},
		{"Decline alternate", StatusStop, EventOfferDecline, StatusAltDeclined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyTransition(tt.from, tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestApplyTransitionIllegal(t *testing.T) {
	tests := []struct {
		name  string
		from  Status
		event string
	}{
		{"Confirm from stop", StatusStop, EventConfirm},
		{"Confirm from working", StatusWorking, EventConfirm},
		{"Reschedule from working", StatusWorking, EventReschedule},
		{"Redate from waiting", StatusWaiting, EventRedate},
		{"Alternate offer while waiting", StatusWaiting, EventOfferAccept},
		{"Unknown event", StatusWaiting, "promote"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyTransition(tt.from, tt.event)
			assert.Error(t, err)
			assert.Equal(t, tt.from, got, "status is unchanged on an illegal event")
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusWaiting, EventConfirm))
	assert.True(t, CanTransition(StatusWaiting, EventReschedule))
	assert.False(t, CanTransition(StatusWorking, EventConfirm))
	assert.False(t, CanTransition(StatusStop, EventReschedule))
}

func TestHasConcreteCourseDate(t *testing.T) {
	assert.True(t, (&Candidate{CourseDate: "2024-03-01"}).HasConcreteCourseDate())
	assert.False(t, (&Candidate{CourseDate: ""}).HasConcreteCourseDate())
	assert.False(t, (&Candidate{CourseDate: CourseDateTBA}).HasConcreteCourseDate())
	assert.False(t, (&Candidate{CourseDate: CourseDateReschedule}).HasConcreteCourseDate())
}
