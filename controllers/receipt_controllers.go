package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7FIl/freepass-2026/services"
	"github.com/7FIl/freepass-2026/utils"
)

type ReceiptController struct {
	Orders *services.OrderService
}

func NewReceiptController(orders *services.OrderService) *ReceiptController {
	return &ReceiptController{Orders: orders}
}

// GetReceipt -> PDF receipt of a paid order
func (rc *ReceiptController) GetReceipt(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id", "orderId")
	if !ok {
		return
	}

	pdf, err := rc.Orders.Receipt(c.Request.Context(), actor, orderID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="receipt-`+orderID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GetPickupQR -> PNG QR code shown at the counter
func (rc *ReceiptController) GetPickupQR(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id", "orderId")
	if !ok {
		return
	}

	png, err := rc.Orders.PickupQRCode(c.Request.Context(), actor, orderID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
