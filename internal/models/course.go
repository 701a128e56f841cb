package models

// Course is a training programme students can apply to.
type Course struct {
	ID       int64  `db:"id" json:"id"`
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	NCLevels string `db:"nc_levels" json:"nc_levels"`
	Active   bool   `db:"active" json:"active"`
}

// Adviser supervises an enrollment's training.
type Adviser struct {
	ID       int64  `db:"id" json:"id"`
	FullName string `db:"full_name" json:"full_name"`
	Active   bool   `db:"active" json:"active"`
}
