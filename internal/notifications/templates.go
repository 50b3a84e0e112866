package notifications

import (
	"fmt"
	"html"
	"strings"

	"github.com/swiftcartlabs/swiftcart-backend/pkg/db/models"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/enums"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/money"
)

func buildStatusUpdateBody(user *models.User, order *models.Order, oldStatus enums.OrderStatus) string {
	extra := ""
	if order.Status == enums.OrderStatusShipped && order.ShippingInfo.TrackingNumber != "" {
		extra = fmt.Sprintf(
			`<p>Tracking number: <strong>%s</strong>`,
			html.EscapeString(order.ShippingInfo.TrackingNumber))
		if order.ShippingInfo.TrackingURL != "" {
			extra += fmt.Sprintf(` — <a href="%s">track your shipment</a>`,
				html.EscapeString(order.ShippingInfo.TrackingURL))
		}
		extra += "</p>"
	}
	return wrap(fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Your order <strong>#%d</strong> moved from <strong>%s</strong> to <strong>%s</strong>.</p>
%s
<p>Order total: <strong>%s</strong></p>`,
		html.EscapeString(user.Name), order.OrderNumber, oldStatus, order.Status, extra,
		money.FormatRupees(order.TotalPaise)))
}

func buildCancellationBody(user *models.User, order *models.Order) string {
	reason := ""
	if order.Cancellation.Reason != "" {
		reason = fmt.Sprintf("<p>Reason: %s</p>", html.EscapeString(order.Cancellation.Reason))
	}
	refundNote := ""
	if order.Cancellation.RefundStatus == enums.CancellationRefundStatusPending {
		refundNote = "<p>Your payment will be refunded shortly.</p>"
	}
	return wrap(fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Your order <strong>#%d</strong> has been cancelled.</p>
%s%s`,
		html.EscapeString(user.Name), order.OrderNumber, reason, refundNote))
}

func buildPaymentConfirmedBody(user *models.User, order *models.Order) string {
	return wrap(fmt.Sprintf(
		`<p>Hi %s,</p>
<p>We received your payment of <strong>%s</strong> for order <strong>#%d</strong>.</p>
<p>We'll let you know as soon as it ships.</p>`,
		html.EscapeString(user.Name), money.FormatRupees(order.TotalPaise), order.OrderNumber))
}

// buildPaymentVerifiedBody includes the itemized order table, since manual
// verification is the customer's receipt.
func buildPaymentVerifiedBody(user *models.User, order *models.Order) string {
	return wrap(fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Your UPI payment for order <strong>#%d</strong> has been verified.</p>
%s
<p style="text-align: right;">Shipping: <strong>%s</strong><br>Total paid: <strong>%s</strong></p>`,
		html.EscapeString(user.Name), order.OrderNumber, itemsTable(order.Items),
		money.FormatRupees(order.ShippingPaise), money.FormatRupees(order.TotalPaise)))
}

func buildPaymentRejectedBody(user *models.User, order *models.Order, reason string) string {
	detail := ""
	if reason != "" {
		detail = fmt.Sprintf("<p>Reason: %s</p>", html.EscapeString(reason))
	}
	return wrap(fmt.Sprintf(
		`<p>Hi %s,</p>
<p>We could not verify the UPI payment you submitted for order <strong>#%d</strong>.</p>
%s
<p>Please submit the correct transaction reference or contact support.</p>`,
		html.EscapeString(user.Name), order.OrderNumber, detail))
}

func buildRefundBody(user *models.User, order *models.Order) string {
	return wrap(fmt.Sprintf(
		`<p>Hi %s,</p>
<p>A refund of <strong>%s</strong> for order <strong>#%d</strong> has been processed.</p>
<p>Depending on your bank it may take a few business days to appear.</p>`,
		html.EscapeString(user.Name), money.FormatRupees(order.RefundInfo.AmountPaise), order.OrderNumber))
}

func itemsTable(items []models.OrderItem) string {
	var rows strings.Builder
	for _, item := range items {
		rows.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 8px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 8px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			html.EscapeString(item.Name), item.Qty,
			money.FormatRupees(item.UnitPricePaise), money.FormatRupees(item.TotalPaise)))
	}
	return fmt.Sprintf(
		`<table style="width: 100%%; border-collapse: collapse; margin: 16px 0;">
	<thead>
		<tr style="background: #f8f9fa;">
			<th style="padding: 8px; text-align: left;">Item</th>
			<th style="padding: 8px; text-align: center;">Qty</th>
			<th style="padding: 8px; text-align: right;">Price</th>
			<th style="padding: 8px; text-align: right;">Subtotal</th>
		</tr>
	</thead>
	<tbody>%s</tbody>
</table>`, rows.String())
}

func wrap(content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
%s
<hr style="border: none; border-top: 1px solid #eee; margin: 24px 0;">
<p style="font-size: 12px; color: #999;">This is an automated message from SwiftCart. Replies to this address are not monitored.</p>
</body>
</html>`, content)
}
