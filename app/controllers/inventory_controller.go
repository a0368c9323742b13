package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"medstock/app/models"
	"medstock/app/services"
)

type InventoryController struct {
	Inventory *services.InventoryService
}

func NewInventoryController(inv *services.InventoryService) *InventoryController {
	return &InventoryController{Inventory: inv}
}

func (c *InventoryController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	items, total, err := c.Inventory.List(q.Get("category"), q.Get("search"), page, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
	})
}

func (c *InventoryController) Create(w http.ResponseWriter, r *http.Request) {
	var item models.InventoryItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(item.SKU) == "" || strings.TrimSpace(item.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "sku and name are required")
		return
	}
	item.ID = 0
	if err := c.Inventory.Upsert(&item); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (c *InventoryController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/api/inventory/")
	if !ok {
		return
	}
	var item models.InventoryItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item.ID = id
	if err := c.Inventory.Upsert(&item); err != nil {
		if errors.Is(err, services.ErrDuplicateSKU) {
			writeJSONError(w, http.StatusConflict, "sku belongs to another item")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (c *InventoryController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/api/inventory/")
	if !ok {
		return
	}
	found, err := c.Inventory.Delete(id)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !found {
		writeJSONError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func pathID(w http.ResponseWriter, r *http.Request, prefix string) (uint, bool) {
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}
