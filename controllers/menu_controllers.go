package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7FIl/freepass-2026/services"
	"github.com/7FIl/freepass-2026/utils"
)

type MenuController struct {
	Canteens *services.CanteenService
}

func NewMenuController(canteens *services.CanteenService) *MenuController {
	return &MenuController{Canteens: canteens}
}

func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	canteenID, ok := pathID(c, "canteenId", "canteenId")
	if !ok {
		return
	}
	var req services.MenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	item, err := mc.Canteens.CreateMenuItem(c.Request.Context(), actor, canteenID, req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu item created successfully", item)
}

func (mc *MenuController) GetMenuItems(c *gin.Context) {
	canteenID, ok := pathID(c, "canteenId", "canteenId")
	if !ok {
		return
	}
	items, err := mc.Canteens.ListMenuItems(c.Request.Context(), canteenID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu items retrieved successfully", items)
}

func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	canteenID, ok := pathID(c, "canteenId", "canteenId")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "menuItemId", "menuItemId")
	if !ok {
		return
	}
	var req services.UpdateMenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	item, err := mc.Canteens.UpdateMenuItem(c.Request.Context(), actor, canteenID, itemID, req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated successfully", item)
}

func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	canteenID, ok := pathID(c, "canteenId", "canteenId")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "menuItemId", "menuItemId")
	if !ok {
		return
	}

	if err := mc.Canteens.DeleteMenuItem(c.Request.Context(), actor, canteenID, itemID); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted successfully", nil)
}
