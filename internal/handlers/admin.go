package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskquest-api/internal/dto"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
	"github.com/yukikurage/taskquest-api/internal/services"
)

// AdminHandler serves platform statistics and maintenance actions.
type AdminHandler struct {
	statsService  *services.StatsService
	streakService *services.StreakService
}

func NewAdminHandler(statsService *services.StatsService, streakService *services.StreakService) *AdminHandler {
	return &AdminHandler{
		statsService:  statsService,
		streakService: streakService,
	}
}

// Stats returns public platform counters.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.statsService.Summary(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		Users:          stats.Users,
		Projects:       stats.Projects,
		Tasks:          stats.Tasks,
		CompletedTasks: stats.CompletedTasks,
		TotalPoints:    stats.TotalPoints,
	})
}

// ResetStreaks zeroes stale streaks, or all streaks with {"all": true}.
func (h *AdminHandler) ResetStreaks(c *gin.Context) {
	var req dto.ResetStreaksRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var (
		reset int64
		err   error
	)
	if req.All {
		reset, err = h.streakService.ResetAll(c.Request.Context())
	} else {
		reset, err = h.streakService.ResetStale(c.Request.Context())
	}
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ResetStreaksResponse{Reset: reset})
}
