package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7FIl/freepass-2026/services"
	"github.com/7FIl/freepass-2026/utils"
)

type CanteenController struct {
	Canteens *services.CanteenService
}

func NewCanteenController(canteens *services.CanteenService) *CanteenController {
	return &CanteenController{Canteens: canteens}
}

func (cc *CanteenController) CreateCanteen(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req services.CanteenInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	canteen, err := cc.Canteens.CreateCanteen(c.Request.Context(), actor, req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Canteen created successfully", canteen)
}

func (cc *CanteenController) GetCanteens(c *gin.Context) {
	canteens, err := cc.Canteens.ListCanteens(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Canteens retrieved successfully", canteens)
}

func (cc *CanteenController) GetCanteenByID(c *gin.Context) {
	id, ok := pathID(c, "canteenId", "canteenId")
	if !ok {
		return
	}
	canteen, err := cc.Canteens.GetCanteen(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Canteen retrieved successfully", canteen)
}

func (cc *CanteenController) UpdateCanteen(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "canteenId", "canteenId")
	if !ok {
		return
	}
	var req services.UpdateCanteenInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	canteen, err := cc.Canteens.UpdateCanteen(c.Request.Context(), actor, id, req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Canteen updated successfully", canteen)
}

func (cc *CanteenController) ToggleCanteenStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "canteenId", "canteenId")
	if !ok {
		return
	}

	canteen, err := cc.Canteens.ToggleStatus(c.Request.Context(), actor, id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	msg := "Canteen is now closed"
	if canteen.IsOpen {
		msg = "Canteen is now open"
	}
	utils.RespondJSON(c, http.StatusOK, msg, canteen)
}
