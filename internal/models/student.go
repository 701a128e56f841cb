package models

import "time"

// StudentStatus mirrors the outcome of the student's most recent course engagement.
type StudentStatus string

// Possible student statuses.
const (
	StudentStatusPending   StudentStatus = "pending"
	StudentStatusApproved  StudentStatus = "approved"
	StudentStatusRejected  StudentStatus = "rejected"
	StudentStatusCompleted StudentStatus = "completed"
)

// Student represents a learner registered through the portal.
//
// Status, Course, NCLevel, Adviser and the training window are a projection of the
// authoritative application and enrollment rows. They are rewritten inside the same
// transaction as every lifecycle transition and must not be used to drive decisions
// other than the legacy active-approval check.
type Student struct {
	ID            int64         `db:"id" json:"id"`
	ULI           string        `db:"uli" json:"uli"`
	FirstName     string        `db:"first_name" json:"first_name"`
	MiddleName    *string       `db:"middle_name" json:"middle_name,omitempty"`
	LastName      string        `db:"last_name" json:"last_name"`
	Email         string        `db:"email" json:"email"`
	ContactNumber string        `db:"contact_number" json:"contact_number"`
	BirthDate     *time.Time    `db:"birth_date" json:"birth_date,omitempty"`
	Address       string        `db:"address" json:"address"`
	Status        StudentStatus `db:"status" json:"status"`
	Course        *string       `db:"course" json:"course,omitempty"`
	NCLevel       *string       `db:"nc_level" json:"nc_level,omitempty"`
	Adviser       *string       `db:"adviser" json:"adviser,omitempty"`
	TrainingStart *time.Time    `db:"training_start" json:"training_start,omitempty"`
	TrainingEnd   *time.Time    `db:"training_end" json:"training_end,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
	DeletedAt     *time.Time    `db:"deleted_at" json:"-"`
}

// FullName joins the name parts for display and documents.
func (s Student) FullName() string {
	name := s.FirstName
	if s.MiddleName != nil && *s.MiddleName != "" {
		name += " " + *s.MiddleName
	}
	return name + " " + s.LastName
}

// StudentProjection carries the legacy denormalised fields written alongside a transition.
type StudentProjection struct {
	Status        StudentStatus
	Course        *string
	NCLevel       *string
	Adviser       *string
	TrainingStart *time.Time
	TrainingEnd   *time.Time
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Status    StudentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Window returns the effective page and page size. A missing size defaults
// to 20 and anything above 100 is capped at 100.
func (f StudentFilter) Window() (page, size int) {
	page = f.Page
	if page < 1 {
		page = 1
	}
	size = f.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
