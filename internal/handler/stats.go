package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heretounderstand/ndole/internal/middleware"
	"github.com/heretounderstand/ndole/internal/model"
	"github.com/heretounderstand/ndole/internal/service"
)

type StatsHandler struct {
	stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Get returns the daily snapshots, cumulative totals, and level progression.
func (h *StatsHandler) Get(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	history, err := h.stats.History(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	totals := model.SumStats(history)

	c.JSON(http.StatusOK, gin.H{
		"daily":         history,
		"totals":        totals,
		"level":         model.CalculateLevel(totals.XPGained),
		"next_level_xp": model.NextLevelXP(totals.XPGained),
	})
}

type applyStatsRequest struct {
	Delta   model.StatsDelta `json:"delta"`
	IsLogin bool             `json:"is_login"`
}

// Apply submits an activity delta, e.g. the login bonus
// {"delta":{"xp_gained":10},"is_login":true}.
func (h *StatsHandler) Apply(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req applyStatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.stats.Apply(c.Request.Context(), userID, req.Delta, req.IsLogin)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Badges evaluates the whole catalog against the user's cumulative totals.
func (h *StatsHandler) Badges(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	totals, err := h.stats.Totals(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	report := service.BadgeReport(totals)
	earned := 0
	for _, b := range report {
		if b.Earned {
			earned++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"badges": report,
		"earned": earned,
		"total":  len(report),
	})
}

// Challenges returns today's assignment with completion flags.
func (h *StatsHandler) Challenges(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	assignment, err := h.stats.Challenges(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}
