package controllers

import (
	"net/http"
	"strings"

	"medstock/app/services"
)

type HelpController struct {
	Help *services.HelpService
}

func NewHelpController(help *services.HelpService) *HelpController {
	return &HelpController{Help: help}
}

func (c *HelpController) List(w http.ResponseWriter, r *http.Request) {
	articles, err := c.Help.List(r.URL.Query().Get("category"))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

func (c *HelpController) Get(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimPrefix(r.URL.Path, "/api/help/")
	if slug == "" {
		writeJSONError(w, http.StatusBadRequest, "missing slug")
		return
	}
	article, err := c.Help.Get(slug)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if article == nil {
		writeJSONError(w, http.StatusNotFound, "article not found")
		return
	}
	writeJSON(w, http.StatusOK, article)
}
