package model

import "strings"

// AttendanceStatus is the closed set of per-day marks.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

var attendanceStatuses = map[AttendanceStatus]bool{
	AttendancePresent: true,
	AttendanceAbsent:  true,
	AttendanceLate:    true,
	AttendanceExcused: true,
}

// ParseAttendanceStatus normalizes and validates an attendance status string.
func ParseAttendanceStatus(raw string) (AttendanceStatus, bool) {
	status := AttendanceStatus(strings.TrimSpace(strings.ToLower(raw)))
	return status, attendanceStatuses[status]
}

func (s AttendanceStatus) String() string { return string(s) }
