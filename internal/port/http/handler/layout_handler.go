package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/service"
)

type LayoutHandler struct {
	layouts service.LayoutService
	log     logger.Logger
}

func NewLayoutHandler(layouts service.LayoutService, log logger.Logger) *LayoutHandler {
	return &LayoutHandler{layouts: layouts, log: log}
}

type layoutRequest struct {
	Type       string             `json:"type"`
	Banner     *bannerRequest     `json:"banner"`
	FAQ        []entity.FAQItem   `json:"faq"`
	Categories []entity.TitleItem `json:"categories"`
}

type bannerRequest struct {
	Title    string `json:"title"`
	SubTitle string `json:"subTitle"`
}

func (h *LayoutHandler) parseLayoutInput(r *http.Request) (service.LayoutInput, error) {
	var req layoutRequest
	var input service.LayoutInput

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return input, service.ErrValidation
		}
		if payload := r.FormValue("layout"); payload != "" {
			if err := json.Unmarshal([]byte(payload), &req); err != nil {
				return input, service.ErrValidation
			}
		}

		up, err := formFile(r, "image")
		if err != nil {
			return input, service.ErrValidation
		}
		if up != nil {
			if req.Banner == nil {
				req.Banner = &bannerRequest{}
			}
			input.Banner = &service.BannerInput{
				Title:    req.Banner.Title,
				SubTitle: req.Banner.SubTitle,
				Image:    &service.ThumbnailUpload{FileName: up.FileName, ContentType: up.ContentType, Data: up.Data},
			}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return input, service.ErrValidation
	}

	input.Type = req.Type
	input.FAQ = req.FAQ
	input.Categories = req.Categories
	if input.Banner == nil && req.Banner != nil {
		input.Banner = &service.BannerInput{Title: req.Banner.Title, SubTitle: req.Banner.SubTitle}
	}
	return input, nil
}

func (h *LayoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := h.parseLayoutInput(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	layout, err := h.layouts.Create(r.Context(), input)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, layout)
}

func (h *LayoutHandler) Edit(w http.ResponseWriter, r *http.Request) {
	input, err := h.parseLayoutInput(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	layout, err := h.layouts.Edit(r.Context(), input)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func (h *LayoutHandler) GetByType(w http.ResponseWriter, r *http.Request) {
	layout, err := h.layouts.GetByType(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}
