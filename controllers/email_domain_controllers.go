package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7FIl/freepass-2026/services"
	"github.com/7FIl/freepass-2026/utils"
)

type EmailDomainController struct {
	Domains *services.EmailDomainService
}

func NewEmailDomainController(domains *services.EmailDomainService) *EmailDomainController {
	return &EmailDomainController{Domains: domains}
}

func (ec *EmailDomainController) GetDomains(c *gin.Context) {
	domains, err := ec.Domains.List(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Allowed email domains retrieved successfully", domains)
}

func (ec *EmailDomainController) AddDomain(c *gin.Context) {
	var req services.DomainInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	domain, err := ec.Domains.Add(c.Request.Context(), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Email domain added successfully", domain)
}

func (ec *EmailDomainController) RemoveDomain(c *gin.Context) {
	domainID, ok := pathID(c, "domainId", "domainId")
	if !ok {
		return
	}

	if err := ec.Domains.Remove(c.Request.Context(), domainID); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Email domain removed successfully", nil)
}
