package api

import (
	"github.com/ericogr/monster-arena/internal/constants"
	"github.com/gin-gonic/gin"
)

// NewRouter wires every route onto a gin engine.
func NewRouter(h *BattleHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteVersion, Version)
		apiRoutes.POST(constants.RouteBattles, h.CreateBattle)
		apiRoutes.GET(constants.RouteBattleByID, h.GetBattle)
		apiRoutes.GET(constants.RouteBattleSocket, h.JoinBattle)
		apiRoutes.GET(constants.RouteLeaderboard, h.ListLeaderboard)
		apiRoutes.GET(constants.RouteStats, h.GetParticipantStats)
	}
	return router
}
