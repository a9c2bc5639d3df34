package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/services"
	"github.com/7FIl/freepass-2026/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreateOrder -> POST /orders/:id where id is the canteen
func (oc *OrderController) CreateOrder(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	canteenID, ok := pathID(c, "id", "canteenId")
	if !ok {
		return
	}
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	order, err := oc.Orders.CreateOrder(c.Request.Context(), actor, canteenID, req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created successfully", order)
}

func (oc *OrderController) GetUserOrders(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	filter := services.OrderFilter{
		Page:          queryInt(c, "page"),
		Limit:         queryInt(c, "limit"),
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
	}

	orders, page, err := oc.Orders.ListUserOrders(c.Request.Context(), actor, filter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondPage(c, "Orders retrieved successfully", orders, page)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id", "orderId")
	if !ok {
		return
	}

	order, err := oc.Orders.GetOrder(c.Request.Context(), actor, orderID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order retrieved successfully", order)
}

func (oc *OrderController) GetCanteenOrders(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	canteenID, ok := pathID(c, "canteenId", "canteenId")
	if !ok {
		return
	}

	orders, err := oc.Orders.ListCanteenOrders(c.Request.Context(), actor, canteenID, services.OrderFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Canteen orders retrieved successfully", orders)
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id", "orderId")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,oneof=WAITING COOKING READY COMPLETED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	order, err := oc.Orders.UpdateOrderStatus(c.Request.Context(), actor, orderID, models.OrderStatus(req.Status))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated successfully", order)
}

func (oc *OrderController) MakePayment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id", "orderId")
	if !ok {
		return
	}
	var req struct {
		Amount *decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	if !req.Amount.IsPositive() {
		utils.RespondAppError(c, utils.NewValidationError("Validation error",
			utils.FieldError{Field: "amount", Message: "amount must be greater than 0"}))
		return
	}

	payment, order, err := oc.Orders.MakePayment(c.Request.Context(), actor, orderID, *req.Amount)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment processed successfully", gin.H{
		"payment": payment,
		"order":   order,
	})
}

func (oc *OrderController) CreateReview(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id", "orderId")
	if !ok {
		return
	}
	var req services.ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	review, err := oc.Orders.CreateReview(c.Request.Context(), actor, orderID, req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Review created successfully", review)
}

func (oc *OrderController) DeleteReview(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "reviewId", "reviewId")
	if !ok {
		return
	}

	if err := oc.Orders.DeleteReview(c.Request.Context(), actor, reviewID); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Review deleted successfully", nil)
}

func (oc *OrderController) GetCanteenReviews(c *gin.Context) {
	canteenID, ok := pathID(c, "canteenId", "canteenId")
	if !ok {
		return
	}

	reviews, err := oc.Orders.ListCanteenReviews(c.Request.Context(), canteenID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reviews retrieved successfully", reviews)
}
