package dto

// LeaderboardEntryDTO is one ranked row of a leaderboard
type LeaderboardEntryDTO struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	TierName    string `json:"tier_name,omitempty"`
	Score       int64  `json:"score"`
}

// LeaderboardResponse is a page of a leaderboard
type LeaderboardResponse struct {
	Entries []LeaderboardEntryDTO `json:"entries"`
	Page    int                   `json:"page"`
	Limit   int                   `json:"limit"`
	Total   int64                 `json:"total"`
}
