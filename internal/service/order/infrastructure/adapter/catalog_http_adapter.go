// internal/service/order/infrastructure/adapter/catalog_http_adapter.go
package adapter

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"bazaar/internal/pkg/httpclient"
	"bazaar/internal/service/order/domain/port"
)

// CatalogHTTPAdapter 实现了 port.ProductCatalog，调用目录服务获取商品信息。
type CatalogHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewCatalogHTTPAdapter(client *httpclient.Client, baseURL string) *CatalogHTTPAdapter {
	return &CatalogHTTPAdapter{client: client, baseURL: baseURL}
}

func (a *CatalogHTTPAdapter) GetProduct(ctx context.Context, productID string) (*port.ProductInfo, error) {
	var product port.ProductInfo
	url := fmt.Sprintf("%s/api/v1/products/%s", a.baseURL, productID)
	if err := a.client.GetJSON(ctx, url, nil, &product); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch product %s", productID)
	}
	return &product, nil
}
