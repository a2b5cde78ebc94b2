package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/item"
)

type itemForm struct {
	Name   string `json:"name"`
	Price  int64  `json:"price"`
	Stock  int64  `json:"stock"`
	Detail string `json:"detail"`
	Status string `json:"status"`

	Images []struct {
		ID           int64  `json:"id,omitempty"`
		ImageURL     string `json:"imageUrl"`
		OriginalName string `json:"originalName"`
	} `json:"images"`
}

func (f itemForm) domainForm() item.Form {
	return item.Form{
		Name:   f.Name,
		Price:  f.Price,
		Stock:  f.Stock,
		Detail: f.Detail,
		Status: item.SellStatus(f.Status),
	}
}

func (h *Handler) listDisplayItems(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.catalog.DisplayItemPage(r.Context(), searchFilter(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodePage(e, page, encodeDisplayItem)
	})
}

func (h *Handler) listAdminItems(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.identity(w, r); !ok {
		return
	}
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.catalog.AdminItemPage(r.Context(), searchFilter(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodePage(e, page, encodeItem)
	})
}

func (h *Handler) itemDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid item id")
		return
	}

	detail, err := h.items.ItemDetail(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("item", func(e *jx.Encoder) { encodeItem(e, detail.Item) })
			e.Field("images", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, img := range detail.Images {
						encodeImage(e, img)
					}
				})
			})
		})
	})
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.identity(w, r)
	if !ok {
		return
	}

	var form itemForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid request body")
		return
	}

	uploads := make([]item.ImageUpload, len(form.Images))
	for i, img := range form.Images {
		uploads[i] = item.ImageUpload{URL: img.ImageURL, OriginalName: img.OriginalName}
	}

	id, err := h.items.SaveItem(r.Context(), actor, form.domainForm(), uploads)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeID(w, http.StatusCreated, id)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.identity(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var form itemForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updates := make([]item.ImageUpdate, 0, len(form.Images))
	for _, img := range form.Images {
		if img.ID == 0 {
			writeErrorCode(w, http.StatusBadRequest, "image id required on update")
			return
		}
		updates = append(updates, item.ImageUpdate{
			ID:           img.ID,
			URL:          img.ImageURL,
			OriginalName: img.OriginalName,
		})
	}

	if _, err := h.items.UpdateItem(r.Context(), actor, id, form.domainForm(), updates); err != nil {
		writeError(w, r, err)
		return
	}
	writeID(w, http.StatusOK, id)
}
