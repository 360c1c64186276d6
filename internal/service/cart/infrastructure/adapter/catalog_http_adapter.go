// internal/service/cart/infrastructure/adapter/catalog_http_adapter.go
package adapter

import (
	"context"
	"fmt"
	"net/url"

	"bazaar/internal/pkg/httpclient"
	"bazaar/internal/service/cart/domain/port"
)

// CatalogHTTPAdapter 实现了 port.ProductCatalog 接口，
// 通过 HTTP 调用外部的商品目录服务。
type CatalogHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

// NewCatalogHTTPAdapter 创建一个新的目录服务适配器。
func NewCatalogHTTPAdapter(client *httpclient.Client, baseURL string) *CatalogHTTPAdapter {
	return &CatalogHTTPAdapter{client: client, baseURL: baseURL}
}

type productResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	SellerID string  `json:"sellerId"`
}

func (a *CatalogHTTPAdapter) GetProduct(ctx context.Context, productID string) (*port.ProductInfo, error) {
	var resp productResponse
	endpoint := fmt.Sprintf("%s/api/v1/products/%s", a.baseURL, url.PathEscape(productID))
	if err := a.client.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &port.ProductInfo{
		ProductID: resp.ID,
		Name:      resp.Name,
		UnitPrice: resp.Price,
		Currency:  resp.Currency,
		SellerID:  resp.SellerID,
	}, nil
}
