// Package handler exposes the domain services over HTTP. Handlers only
// parse DTOs, resolve the caller's identity and map domain results and
// errors to responses; all business rules live in the domain packages.
package handler

import (
	"context"
	"net/http"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/item"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/paging"
)

// ItemService is the item management surface the handlers depend on.
type ItemService interface {
	SaveItem(ctx context.Context, actor string, form item.Form, images []item.ImageUpload) (int64, error)
	UpdateItem(ctx context.Context, actor string, id int64, form item.Form, images []item.ImageUpdate) (int64, error)
	ItemDetail(ctx context.Context, id int64) (*item.Detail, error)
}

// CatalogService is the listing query surface the handlers depend on.
type CatalogService interface {
	AdminItemPage(ctx context.Context, f catalog.Filter, req paging.Request) (paging.Page[item.Item], error)
	DisplayItemPage(ctx context.Context, f catalog.Filter, req paging.Request) (paging.Page[catalog.DisplayItem], error)
}

// CartService is the cart surface the handlers depend on.
type CartService interface {
	AddToCart(ctx context.Context, email string, itemID, quantity int64) (int64, error)
}

// OrderService is the ordering surface the handlers depend on.
type OrderService interface {
	PlaceOrder(ctx context.Context, email string, itemID, quantity int64) (int64, error)
	CancelOrder(ctx context.Context, orderID int64, email string) error
	OrderHistory(ctx context.Context, email string, req paging.Request) (paging.Page[order.History], error)
}

// Handler wires the HTTP routes to the domain services.
type Handler struct {
	items   ItemService
	catalog CatalogService
	carts   CartService
	orders  OrderService
}

// NewHandler constructs a Handler with the required services.
func NewHandler(items ItemService, catalogSvc CatalogService, carts CartService, orders OrderService) *Handler {
	return &Handler{
		items:   items,
		catalog: catalogSvc,
		carts:   carts,
		orders:  orders,
	}
}

// Register mounts all API routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/items", h.listDisplayItems)
	mux.HandleFunc("GET /api/items/{id}", h.itemDetail)
	mux.HandleFunc("GET /api/admin/items", h.listAdminItems)
	mux.HandleFunc("POST /api/admin/items", h.createItem)
	mux.HandleFunc("PUT /api/admin/items/{id}", h.updateItem)
	mux.HandleFunc("POST /api/cart/items", h.addToCart)
	mux.HandleFunc("POST /api/orders", h.placeOrder)
	mux.HandleFunc("POST /api/orders/{id}/cancel", h.cancelOrder)
	mux.HandleFunc("GET /api/orders", h.orderHistory)
}

// identityHeader carries the authenticated member identity, set by the
// fronting auth layer. This service trusts it and never authenticates.
const identityHeader = "X-Member-Email"

// identity resolves the caller's identity, writing a 401 response when the
// header is missing.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := r.Header.Get(identityHeader)
	if email == "" {
		writeErrorCode(w, http.StatusUnauthorized, "missing identity")
		return "", false
	}
	return email, true
}
