package dto

// ActivityQuery filters the admin activity feed.
type ActivityQuery struct {
	EventType   string `form:"event_type"`
	SubjectType string `form:"subject_type"`
	SubjectID   int64  `form:"subject_id"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

// StudentQuery filters the admin student directory.
type StudentQuery struct {
	Search string `form:"search"`
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Sort   string `form:"sort"`
	Order  string `form:"order"`
}
