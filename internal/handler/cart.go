package handler

import (
	"encoding/json"
	"net/http"
)

type cartLineRequest struct {
	ItemID   int64 `json:"itemId"`
	Quantity int64 `json:"quantity"`
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	email, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req cartLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == 0 {
		writeErrorCode(w, http.StatusBadRequest, "itemId is required")
		return
	}

	id, err := h.carts.AddToCart(r.Context(), email, req.ItemID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeID(w, http.StatusCreated, id)
}
