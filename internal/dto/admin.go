package dto

// ResetStreaksRequest is the optional body of POST /admin/reset-streaks.
// By default only stale streaks are reset.
type ResetStreaksRequest struct {
	All bool `json:"all"`
}

// ResetStreaksResponse reports how many users were affected
type ResetStreaksResponse struct {
	Reset int64 `json:"reset"`
}

// StatsResponse is the public platform summary
type StatsResponse struct {
	Users          int64 `json:"users"`
	Projects       int64 `json:"projects"`
	Tasks          int64 `json:"tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
	TotalPoints    int64 `json:"total_points"`
}
