// internal/service/order/infrastructure/adapter/delivery_http_adapter.go
package adapter

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"bazaar/internal/pkg/httpclient"
	"bazaar/internal/service/order/domain/port"
)

// DeliveryHTTPAdapter 实现了 port.DeliveryRequester，
// 调用物流服务创建配送单。
type DeliveryHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewDeliveryHTTPAdapter(client *httpclient.Client, baseURL string) *DeliveryHTTPAdapter {
	return &DeliveryHTTPAdapter{client: client, baseURL: baseURL}
}

type createDeliveryResponse struct {
	DeliveryID string `json:"deliveryId"`
}

func (a *DeliveryHTTPAdapter) RequestDelivery(ctx context.Context, req *port.DeliveryRequest) (string, error) {
	var resp createDeliveryResponse
	err := a.client.PostJSON(ctx, fmt.Sprintf("%s/api/v1/deliveries", a.baseURL), req, &resp)
	if err != nil {
		return "", errors.Wrap(err, "logistics service call failed")
	}
	return resp.DeliveryID, nil
}
