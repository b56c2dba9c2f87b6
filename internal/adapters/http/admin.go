package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/huddleapp/huddle/internal/app/orch"
	"github.com/huddleapp/huddle/internal/domain"
)

// AdminController is the request/response surface beside the
// subscription transport: room bookkeeping without a live socket.
type AdminController struct {
	Orch *orch.Orchestrator
}

func NewAdminController(o *orch.Orchestrator) *AdminController {
	return &AdminController{Orch: o}
}

type userRequest struct {
	DisplayName string `json:"displayName"`
}

func handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *AdminController) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, a.Orch.RoomsList())
}

func (a *AdminController) CreateRoom(c *gin.Context) {
	id := a.Orch.CreateRoom()
	c.JSON(http.StatusCreated, gin.H{"roomId": id})
}

func (a *AdminController) AddUser(c *gin.Context) {
	roomID := c.Param("roomId")
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DisplayName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingField.Error()})
		return
	}
	if _, err := a.Orch.AddUser(roomID, req.DisplayName); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Str("room", roomID).Msg("add user")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user added"})
}

func (a *AdminController) RemoveUser(c *gin.Context) {
	roomID := c.Param("roomId")
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DisplayName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingField.Error()})
		return
	}
	if err := a.Orch.RemoveUser(roomID, req.DisplayName); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user removed"})
}
