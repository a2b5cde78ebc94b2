package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/item"
	"github.com/xenking/storefront/internal/domain/member"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/paging"
)

// writeJSON encodes a response body with jx and writes it with the given
// status code.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeID responds with the id of a created or affected resource.
func writeID(w http.ResponseWriter, status int, id int64) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Int64(id) })
		})
	})
}

// writeErrorCode writes a plain error body with the given status.
func writeErrorCode(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}

// writeError maps a domain error to an HTTP response. Unknown errors are
// logged and reported as 500 without leaking details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		stockErr    *item.InsufficientStockError
		canceledErr *order.AlreadyCanceledError
		authErr     *order.NotAuthorizedError
		filterErr   *catalog.InvalidFilterError
	)

	switch {
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("code", func(e *jx.Encoder) { e.Int(http.StatusConflict) })
				e.Field("message", func(e *jx.Encoder) { e.Str(stockErr.Error()) })
				e.Field("currentStock", func(e *jx.Encoder) { e.Int64(stockErr.Stock) })
			})
		})
	case errors.As(err, &canceledErr):
		writeErrorCode(w, http.StatusConflict, canceledErr.Error())
	case errors.As(err, &authErr):
		writeErrorCode(w, http.StatusForbidden, authErr.Error())
	case errors.As(err, &filterErr):
		writeErrorCode(w, http.StatusBadRequest, filterErr.Error())
	case errors.Is(err, item.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, member.ErrNotFound),
		errors.Is(err, cart.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, err.Error())
	case errors.Is(err, item.ErrEmptyName),
		errors.Is(err, item.ErrNameTooLong),
		errors.Is(err, item.ErrNegativePrice),
		errors.Is(err, item.ErrNegativeStock),
		errors.Is(err, item.ErrInvalidStatus),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, order.ErrEmptyLines),
		errors.Is(err, paging.ErrNegativePage),
		errors.Is(err, paging.ErrInvalidSize):
		writeErrorCode(w, http.StatusBadRequest, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeErrorCode(w, http.StatusInternalServerError, "internal error")
	}
}

func encodeItem(e *jx.Encoder, it item.Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(it.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Int64(it.Price) })
		e.Field("stock", func(e *jx.Encoder) { e.Int64(it.Stock) })
		e.Field("detail", func(e *jx.Encoder) { e.Str(it.Detail) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(it.Status)) })
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(it.Audit.CreatedAt.Format(time.RFC3339)) })
		e.Field("createdBy", func(e *jx.Encoder) { e.Str(it.Audit.CreatedBy) })
	})
}

func encodeDisplayItem(e *jx.Encoder, d catalog.DisplayItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(d.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(d.Name) })
		e.Field("detail", func(e *jx.Encoder) { e.Str(d.Detail) })
		e.Field("price", func(e *jx.Encoder) { e.Int64(d.Price) })
		e.Field("imageUrl", func(e *jx.Encoder) { e.Str(d.ImageURL) })
	})
}

func encodeImage(e *jx.Encoder, img item.Image) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(img.ID) })
		e.Field("imageUrl", func(e *jx.Encoder) { e.Str(img.URL) })
		e.Field("originalName", func(e *jx.Encoder) { e.Str(img.OriginalName) })
		e.Field("representative", func(e *jx.Encoder) { e.Bool(img.Representative) })
	})
}

func encodeHistory(e *jx.Encoder, h order.History) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("orderId", func(e *jx.Encoder) { e.Int64(h.OrderID) })
		e.Field("orderDate", func(e *jx.Encoder) { e.Str(h.OrderDate.Format(time.RFC3339)) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(h.Status)) })
		e.Field("totalPrice", func(e *jx.Encoder) { e.Int64(h.TotalPrice()) })
		e.Field("lines", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range h.Lines {
					e.Obj(func(e *jx.Encoder) {
						e.Field("itemName", func(e *jx.Encoder) { e.Str(l.ItemName) })
						e.Field("imageUrl", func(e *jx.Encoder) { e.Str(l.ImageURL) })
						e.Field("price", func(e *jx.Encoder) { e.Int64(l.Price) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int64(l.Quantity) })
					})
				}
			})
		})
	})
}

// encodePage wraps page content and pagination metadata.
func encodePage[T any](e *jx.Encoder, p paging.Page[T], encodeOne func(*jx.Encoder, T)) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("content", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, v := range p.Content {
					encodeOne(e, v)
				}
			})
		})
		e.Field("page", func(e *jx.Encoder) { e.Int(p.Page) })
		e.Field("size", func(e *jx.Encoder) { e.Int(p.Size) })
		e.Field("total", func(e *jx.Encoder) { e.Int64(p.Total) })
	})
}

// pageRequest parses page/size query parameters, with defaults.
func pageRequest(r *http.Request) (paging.Request, error) {
	page, size := 0, 20
	var err error

	if v := r.URL.Query().Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil {
			return paging.Request{}, paging.ErrNegativePage
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil {
			return paging.Request{}, paging.ErrInvalidSize
		}
	}
	return paging.NewRequest(page, size)
}

// searchFilter parses the catalog filter query parameters. Validation of
// the codes happens in the domain.
func searchFilter(r *http.Request) catalog.Filter {
	q := r.URL.Query()
	return catalog.Filter{
		DateRange: catalog.DateRange(q.Get("dateRange")),
		Status:    item.SellStatus(q.Get("status")),
		SearchBy:  catalog.SearchField(q.Get("searchBy")),
		Query:     q.Get("q"),
	}
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
