package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/dto"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/services"
	"github.com/yukikurage/taskquest-api/internal/utils"
	"github.com/yukikurage/taskquest-api/internal/validation"
)

// LeaderboardHandler serves the ranked leaderboards.
type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// Global ranks every user by lifetime points.
func (h *LeaderboardHandler) Global(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	page, err := h.leaderboardService.GetGlobalLeaderboard(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, toLeaderboardResponse(page))
}

// Project ranks a project's members by points earned in it.
func (h *LeaderboardHandler) Project(c *gin.Context) {
	uri := validation.URIFrom[dto.ProjectURI](c)
	params := utils.GetPaginationParams(c)

	page, err := h.leaderboardService.GetProjectLeaderboard(c.Request.Context(), uri.ProjectID, params.Page, params.Limit)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, toLeaderboardResponse(page))
}

// Weekly ranks every user by points earned this week.
func (h *LeaderboardHandler) Weekly(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	page, err := h.leaderboardService.GetWeeklyLeaderboard(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, toLeaderboardResponse(page))
}

func toLeaderboardResponse(page *services.LeaderboardPage) dto.LeaderboardResponse {
	entries := make([]dto.LeaderboardEntryDTO, len(page.Entries))
	for i, entry := range page.Entries {
		entries[i] = dto.LeaderboardEntryDTO{
			Rank:        entry.Rank,
			UserID:      entry.UserID,
			DisplayName: entry.DisplayName,
			AvatarURL:   entry.AvatarURL,
			TierName:    entry.TierName,
			Score:       entry.Score,
		}
	}

	return dto.LeaderboardResponse{
		Entries: entries,
		Page:    page.Page,
		Limit:   page.Limit,
		Total:   page.Total,
	}
}
