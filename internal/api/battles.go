package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ericogr/monster-arena/internal/constants"
	"github.com/ericogr/monster-arena/internal/logging"
	"github.com/ericogr/monster-arena/internal/service"
	"github.com/ericogr/monster-arena/internal/transport"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// participants connect from game clients on other origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

// CreateBattle registers a battle and returns its initial summary.
func (h *BattleHandler) CreateBattle(c *gin.Context) {
	var req service.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest, constants.JSONKeyDetails: err.Error()})
		return
	}
	sum, err := h.battles.CreateBattle(req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest, constants.JSONKeyDetails: err.Error()})
			return
		}
		logging.Error("failed to create battle", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCreateBattle})
		return
	}
	c.JSON(http.StatusCreated, sum)
}

// GetBattle returns the inspectable state of a battle.
func (h *BattleHandler) GetBattle(c *gin.Context) {
	id := strings.TrimSpace(c.Param(constants.ParamBattleID))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleID})
		return
	}
	sum, err := h.battles.Summary(id)
	if err != nil {
		if errors.Is(err, service.ErrBattleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
			return
		}
		logging.Error("failed to fetch battle", err, logging.Fields{constants.LogFieldBattleID: id})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchBattle})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// JoinBattle upgrades to a websocket and seats the participant named by
// the query string. Errors found after the upgrade close the socket with
// a policy-violation frame carrying the message.
func (h *BattleHandler) JoinBattle(c *gin.Context) {
	id := strings.TrimSpace(c.Param(constants.ParamBattleID))
	pid := strings.TrimSpace(c.Query(constants.QueryParticipant))
	if pid == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrParticipantRequired})
		return
	}
	sum, err := h.battles.Summary(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
		return
	}
	if sum.Ended {
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrBattleAlreadyFinished})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn(constants.ErrFailedUpgradeSocket, logging.Fields{constants.LogFieldBattleID: id, constants.LogFieldReason: err.Error()})
		return
	}
	conn := transport.NewConn(ws, id, pid)
	if err := h.battles.Attach(id, pid, conn); err != nil {
		conn.Reject(joinError(err))
		return
	}
}

func joinError(err error) string {
	switch {
	case errors.Is(err, service.ErrParticipantNotInBattle):
		return constants.ErrParticipantNotInGame
	case errors.Is(err, service.ErrParticipantConnected):
		return constants.ErrParticipantConnected
	case errors.Is(err, service.ErrBattleFinished):
		return constants.ErrBattleAlreadyFinished
	case errors.Is(err, service.ErrBattleNotFound):
		return constants.ErrBattleNotFound
	}
	return err.Error()
}
