package model

import "time"

type User struct {
	ID           string
	Email        string
	Username     *string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
	ProfilePic   *string
	Role         Role
	IsActive     bool
	IsStaff      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Student struct {
	ID                    string
	UserID                string
	RollNo                *string
	Gender                *string
	DOB                   *time.Time
	Address               *string
	AdmissionDate         *time.Time
	GuardianContact       *string
	IsScholarship         bool
	ScholarshipPercentage *float64
	BusRouteID            *string
}

type Enrollment struct {
	ID        string
	StudentID string
	GradeID   string
	SectionID string
	BatchID   string
}

type Parent struct {
	ID           string
	UserID       string
	Relationship *string
}

type ParentStudentLink struct {
	ParentID         string
	StudentID        string
	IsPrimaryContact bool
}

type Staff struct {
	ID            string
	UserID        string
	StaffCode     *string
	Address       *string
	Gender        *string
	DOB           *time.Time
	Qualification *string
	StaffType     Role
}

type Attendance struct {
	ID        string
	StudentID string
	Date      time.Time
	Status    AttendanceStatus
	MarkedBy  *string
	Note      *string
	CreatedAt time.Time
}

type FeeHead struct {
	ID          string
	Name        string
	Description *string
	CreatedAt   time.Time
}

type StudentFee struct {
	ID          string
	StudentID   string
	FeeHeadID   string
	FeeHeadName string
	Amount      float64
	DueDate     *time.Time
	IsPaid      bool
	CreatedAt   time.Time
}

type Payment struct {
	ID             string
	StudentFeeID   *string
	StudentID      string
	Amount         float64
	Method         string
	TransactionRef *string
	FeeHeadName    *string
	PaidOn         time.Time
}

type Notification struct {
	ID           string
	Title        string
	Message      string
	TargetUserID *string
	TargetRole   *Role
	IsRead       bool
	CreatedAt    time.Time
}

type DeviceToken struct {
	ID       string
	UserID   string
	Token    string
	Platform *string
	LastSeen time.Time
}

type AuditEntry struct {
	ID          string
	ActorUserID *string
	Action      string
	TargetTable *string
	TargetID    *string
	IPAddress   *string
	Metadata    []byte
	CreatedAt   time.Time
}
