package dto

// ── Dashboard ──

// StatsRequest GET /dashboard/stats
type StatsRequest struct {
	Period string `form:"period" binding:"omitempty,max=50"`
}

// StatusBreakdown counts and percentages for a set of reports. Pending
// includes overdue; Overdue is the past-due subset of Pending.
type StatusBreakdown struct {
	Total             int64 `json:"total"`
	Submitted         int64 `json:"submitted"`
	Late              int64 `json:"late"`
	Pending           int64 `json:"pending"`
	Overdue           int64 `json:"overdue"`
	SubmittedPercent  int   `json:"submitted_percent"`
	LatePercent       int   `json:"late_percent"`
	PendingPercent    int   `json:"pending_percent"`
	OverduePercent    int   `json:"overdue_percent"`
	CompletionPercent int   `json:"completion_percent"` // submitted + late
}

// PeriodStats breakdown for one period label.
type PeriodStats struct {
	Period string `json:"period"`
	StatusBreakdown
}

// StatsResponse dashboard payload.
type StatsResponse struct {
	Overall  StatusBreakdown `json:"overall"`
	Selected *PeriodStats    `json:"selected,omitempty"` // set when a period filter was given
	Periods  []PeriodStats   `json:"periods"`
}
