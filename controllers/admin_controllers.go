package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/7FIl/freepass-2026/services"
	"github.com/7FIl/freepass-2026/utils"
)

type AdminController struct {
	Admin *services.AdminService
}

func NewAdminController(admin *services.AdminService) *AdminController {
	return &AdminController{Admin: admin}
}

// GetDashboardStats returns the admin dashboard counters
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Admin.Stats(c.Request.Context(), time.Now())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

func (ac *AdminController) CreateUser(c *gin.Context) {
	var req services.AdminCreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	user, err := ac.Admin.CreateUser(c.Request.Context(), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User created successfully", user)
}

func (ac *AdminController) GetUsers(c *gin.Context) {
	users, page, err := ac.Admin.ListUsers(c.Request.Context(), services.UserFilter{
		Role:  c.Query("role"),
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondPage(c, "Users retrieved successfully", users, page)
}

func (ac *AdminController) GetUserByID(c *gin.Context) {
	userID, ok := pathID(c, "userId", "userId")
	if !ok {
		return
	}

	user, err := ac.Admin.GetUser(c.Request.Context(), userID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User retrieved successfully", user)
}

func (ac *AdminController) UpdateUser(c *gin.Context) {
	userID, ok := pathID(c, "userId", "userId")
	if !ok {
		return
	}
	var req services.AdminUpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	user, err := ac.Admin.UpdateUser(c.Request.Context(), userID, req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User updated successfully", user)
}

func (ac *AdminController) DeleteUser(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId", "userId")
	if !ok {
		return
	}

	if err := ac.Admin.DeleteUser(c.Request.Context(), actor, userID); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User deleted successfully", nil)
}

func (ac *AdminController) GetCanteenOwners(c *gin.Context) {
	owners, err := ac.Admin.ListCanteenOwners(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Canteen owners retrieved successfully", owners)
}
