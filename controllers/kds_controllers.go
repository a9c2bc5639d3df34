package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/7FIl/freepass-2026/kds"
	"github.com/7FIl/freepass-2026/services"
	"github.com/7FIl/freepass-2026/utils"
)

type KDSController struct {
	Hub      *kds.Hub
	Canteens *services.CanteenService
	upgrader websocket.Upgrader
}

// NewKDSController accepts handshakes from the listed origins, or from any
// origin when the list is empty or contains "*".
func NewKDSController(hub *kds.Hub, canteens *services.CanteenService, origins []string) *KDSController {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &KDSController{
		Hub:      hub,
		Canteens: canteens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 || allowed["*"] {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// KDSHandler -> endpoint WebSocket for the kitchen display of one canteen
func (kc *KDSController) KDSHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	canteenID, ok := pathID(c, "canteenId", "canteenId")
	if !ok {
		return
	}

	canteen, err := kc.Canteens.GetCanteen(c.Request.Context(), canteenID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if !services.CanManageCanteen(actor, canteen) {
		utils.RespondAppError(c, utils.NewForbiddenError("You can only watch orders of your own canteen"))
		return
	}

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	kc.Hub.Register(ws, canteenID)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	kc.Hub.Unregister(ws)
}
