package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"
)

type placeOrderRequest struct {
	ItemID   int64 `json:"itemId"`
	Quantity int64 `json:"quantity"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	email, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == 0 {
		writeErrorCode(w, http.StatusBadRequest, "itemId is required")
		return
	}
	if req.Quantity < 1 {
		writeErrorCode(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	id, err := h.orders.PlaceOrder(r.Context(), email, req.ItemID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeID(w, http.StatusCreated, id)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	email, ok := h.identity(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := h.orders.CancelOrder(r.Context(), id, email); err != nil {
		writeError(w, r, err)
		return
	}
	writeID(w, http.StatusOK, id)
}

func (h *Handler) orderHistory(w http.ResponseWriter, r *http.Request) {
	email, ok := h.identity(w, r)
	if !ok {
		return
	}
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.orders.OrderHistory(r.Context(), email, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodePage(e, page, encodeHistory)
	})
}
