package domain

// Status is the lifecycle stage of a candidate record.
type Status string

const (
	StatusWaiting     Status = "WAITING"
	StatusWorking     Status = "WORKING"
	StatusStop        Status = "STOP"
	StatusReschedule  Status = "RESCHEDULE"
	StatusAltAccepted Status = "ALT_ACCEPTED"
	StatusAltDeclined Status = "ALT_DECLINED"
)

// Course date sentinels. A record carrying one of these has no concrete
// course date and is skipped by the reminder sweeps.
const (
	CourseDateTBA        = "TBA"
	CourseDateReschedule = "RESCHEDULE"
)

// ReminderKind identifies one of the two reminder markers on a record.
type ReminderKind string

const (
	ReminderPreCourse ReminderKind = "pre-course"
	ReminderCourseDay ReminderKind = "course-day"
)

// Candidate is one logical candidate row in the record store. Row is the
// 1-based sheet row the record was read from (0 = not yet persisted).
type Candidate struct {
	Row             int
	ActorID         int64
	Name            string
	Phone           string
	Age             string
	City            string
	Language        string
	Status          Status
	Position        string
	CourseDate      string // ISO date, or a sentinel
	PreCourseMarker string // date the pre-course reminder was dispatched, empty = not yet
	CourseDayMarker string // date the day-of prompt was dispatched, empty = not yet
	Notes           string
}

// HasConcreteCourseDate reports whether CourseDate is a real date rather than
// empty or a sentinel.
func (c *Candidate) HasConcreteCourseDate() bool {
	return c.CourseDate != "" && c.CourseDate != CourseDateTBA && c.CourseDate != CourseDateReschedule
}
