package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/port/http/middleware"
	"github.com/MaheshMoholkar/ignite-lms/internal/service"
)

type CourseHandler struct {
	courses service.CourseService
	log     logger.Logger
}

func NewCourseHandler(courses service.CourseService, log logger.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, log: log}
}

type courseRequest struct {
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Price          float64             `json:"price"`
	EstimatedPrice float64             `json:"estimatedPrice"`
	Tags           []string            `json:"tags"`
	Level          string              `json:"level"`
	DemoURL        string              `json:"demoUrl"`
	Benefits       []entity.TitleItem  `json:"benefits"`
	Prerequisites  []entity.TitleItem  `json:"prerequisites"`
	CourseData     []entity.CourseData `json:"courseData"`
}

func (h *CourseHandler) parseCourseInput(r *http.Request) (service.CourseInput, error) {
	var req courseRequest
	var input service.CourseInput

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return input, service.ErrValidation
		}
		if payload := r.FormValue("course"); payload != "" {
			if err := json.Unmarshal([]byte(payload), &req); err != nil {
				return input, service.ErrValidation
			}
		}
		up, err := formFile(r, "thumbnail")
		if err != nil {
			return input, service.ErrValidation
		}
		if up != nil {
			input.Thumbnail = &service.ThumbnailUpload{FileName: up.FileName, ContentType: up.ContentType, Data: up.Data}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return input, service.ErrValidation
	}

	input.Name = req.Name
	input.Description = req.Description
	input.Price = req.Price
	input.EstimatedPrice = req.EstimatedPrice
	input.Tags = req.Tags
	input.Level = req.Level
	input.DemoURL = req.DemoURL
	input.Benefits = req.Benefits
	input.Prerequisites = req.Prerequisites
	input.CourseData = req.CourseData
	return input, nil
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := h.parseCourseInput(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	course, err := h.courses.Create(r.Context(), input)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	input, err := h.parseCourseInput(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	course, err := h.courses.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.courses.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "course deleted"})
}

func (h *CourseHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	course, err := h.courses.GetPublic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListPublic(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListAll(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	content, err := h.courses.GetContent(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

type addReviewRequest struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

func (h *CourseHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	var req addReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, service.ErrValidation)
		return
	}

	course, err := h.courses.AddReview(r.Context(), user, chi.URLParam(r, "id"), req.Rating, req.Comment)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

type addQuestionRequest struct {
	SectionIndex int    `json:"sectionIndex"`
	Question     string `json:"question"`
}

func (h *CourseHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	var req addQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, service.ErrValidation)
		return
	}

	course, err := h.courses.AddQuestion(r.Context(), user, chi.URLParam(r, "id"), req.SectionIndex, req.Question)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

type addAnswerRequest struct {
	SectionIndex int    `json:"sectionIndex"`
	QuestionID   string `json:"questionId"`
	Answer       string `json:"answer"`
}

func (h *CourseHandler) AddAnswer(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	var req addAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, service.ErrValidation)
		return
	}

	course, err := h.courses.AddAnswer(r.Context(), user, chi.URLParam(r, "id"), req.SectionIndex, req.QuestionID, req.Answer)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}
