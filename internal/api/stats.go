package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ericogr/monster-arena/internal/constants"
	"github.com/gin-gonic/gin"
)

// ListLeaderboard returns the top participants by wins, 10 by default.
func (h *BattleHandler) ListLeaderboard(c *gin.Context) {
	limit := 10
	if s := c.Query(constants.QueryLimit); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	top, err := h.stats.GetTopParticipants(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLeaderboard})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(top)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLeaderboard})
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetParticipantStats returns the totals of one participant. Unknown ids
// get zero totals.
func (h *BattleHandler) GetParticipantStats(c *gin.Context) {
	pid := strings.TrimSpace(c.Param(constants.ParamParticipantID))
	if pid == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrParticipantRequired})
		return
	}
	st, err := h.stats.GetStats(pid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchStats})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(st)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchStats})
		return
	}
	c.JSON(http.StatusOK, out)
}
