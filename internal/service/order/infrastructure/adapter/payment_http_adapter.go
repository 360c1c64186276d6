// internal/service/order/infrastructure/adapter/payment_http_adapter.go
package adapter

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"bazaar/internal/pkg/httpclient"
)

// PaymentHTTPAdapter 实现了 port.PaymentGateway，走支付服务的 HTTP 接口。
type PaymentHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewPaymentHTTPAdapter(client *httpclient.Client, baseURL string) *PaymentHTTPAdapter {
	return &PaymentHTTPAdapter{client: client, baseURL: baseURL}
}

type confirmPaymentRequest struct {
	OrderID  string  `json:"orderId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Method   string  `json:"method"`
}

type confirmPaymentResponse struct {
	Status string `json:"status"` // PAID / PENDING / FAILED
}

// ConfirmPayment 向支付服务确认订单支付结果。非 PAID 一律视为未确认。
func (a *PaymentHTTPAdapter) ConfirmPayment(ctx context.Context, orderID string, amount float64, currency string, method string) error {
	var resp confirmPaymentResponse
	err := a.client.PostJSON(ctx, fmt.Sprintf("%s/api/v1/payments/confirm", a.baseURL), &confirmPaymentRequest{
		OrderID:  orderID,
		Amount:   amount,
		Currency: currency,
		Method:   method,
	}, &resp)
	if err != nil {
		return errors.Wrap(err, "payment service call failed")
	}
	if resp.Status != "PAID" {
		return errors.Errorf("payment for order %s is %s", orderID, resp.Status)
	}
	return nil
}
