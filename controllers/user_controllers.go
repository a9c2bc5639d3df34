package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7FIl/freepass-2026/middlewares"
	"github.com/7FIl/freepass-2026/services"
	"github.com/7FIl/freepass-2026/utils"
)

type UserController struct {
	Auth *services.AuthService
}

func NewUserController(auth *services.AuthService) *UserController {
	return &UserController{Auth: auth}
}

func (uc *UserController) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	result, err := uc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User registered successfully", result)
}

func (uc *UserController) Login(c *gin.Context) {
	var req services.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	result, err := uc.Auth.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Login successful", result)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	user, err := uc.Auth.Profile(c.Request.Context(), actor.ID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile retrieved successfully", user)
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req services.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	user, err := uc.Auth.UpdateProfile(c.Request.Context(), actor.ID, req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile updated successfully", user)
}

func (uc *UserController) ChangePassword(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req services.ChangePasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	if err := uc.Auth.ChangePassword(c.Request.Context(), actor.ID, req); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Password changed successfully", nil)
}

func (uc *UserController) Logout(c *gin.Context) {
	claims, ok := middlewares.CurrentClaims(c)
	if !ok {
		utils.RespondAppError(c, utils.NewUnauthorizedError("Authentication required"))
		return
	}
	if err := uc.Auth.Logout(c.Request.Context(), claims); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Logged out successfully", nil)
}
