package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"

	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/utils"
)

const pickupQRSize = 256

// Receipt renders a PDF receipt for a paid order. Visible to the customer
// and to the canteen's managers.
func (s *OrderService) Receipt(ctx context.Context, actor Actor, orderID string) ([]byte, error) {
	order, err := s.GetOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsPaid() {
		return nil, utils.NewBusinessError("Receipt is only available for paid orders")
	}
	return renderReceipt(order)
}

func renderReceipt(order *models.Order) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("Receipt "+order.ID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	canteenName := "Canteen"
	if order.Canteen != nil {
		canteenName = order.Canteen.Name
	}
	pdf.CellFormat(0, 10, canteenName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, "Order "+order.ID, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, order.CreatedAt.Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(15, 7, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(0, 7, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range order.Items {
		pdf.CellFormat(60, 6, item.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(15, 6, fmt.Sprintf("%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(0, 6, utils.FormatRupiah(item.Subtotal), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(75, 8, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, utils.FormatRupiah(order.TotalPrice), "T", 1, "R", false, 0, "")

	if order.Payment != nil && order.Payment.PaidAt != nil {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 6, "Paid "+order.Payment.PaidAt.Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// PickupQRCode returns a PNG the customer shows at the counter. Only paid
// orders get one.
func (s *OrderService) PickupQRCode(ctx context.Context, actor Actor, orderID string) ([]byte, error) {
	order, err := s.GetOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if !IsOrderOwner(actor, order) {
		return nil, utils.NewForbiddenError("Unauthorized: Only the customer can get the pickup code")
	}
	if !order.IsPaid() {
		return nil, utils.NewBusinessError("Pickup code is only available for paid orders")
	}

	png, err := qrcode.Encode(PickupToken(order), qrcode.Medium, pickupQRSize)
	if err != nil {
		return nil, fmt.Errorf("encode pickup code: %w", err)
	}
	return png, nil
}

// PickupToken is the text encoded in the pickup QR code.
func PickupToken(order *models.Order) string {
	return "canteen:" + order.CanteenID + ":order:" + order.ID
}
