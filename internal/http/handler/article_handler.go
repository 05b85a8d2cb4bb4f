package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/service"
)

type ArticleHandler struct {
	articleService *service.ArticleService
	logger         *zap.Logger
}

func NewArticleHandler(articleService *service.ArticleService, logger *zap.Logger) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		logger:         logger,
	}
}

// ListPublished godoc
// @Summary List published articles
// @Description Public list of published articles in display order
// @Tags Articles
// @Produce json
// @Success 200 {array} domain.Article
// @Router /articles [get]
func (h *ArticleHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articleService.List(r.Context(), true)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list articles")
		return
	}

	respondJSON(w, http.StatusOK, articles)
}

// List godoc
// @Summary List all articles
// @Description Admin list including unpublished articles, in display order
// @Tags Articles
// @Produce json
// @Success 200 {array} domain.Article
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/articles [get]
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articleService.List(r.Context(), false)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list articles")
		return
	}

	respondJSON(w, http.StatusOK, articles)
}

// Create godoc
// @Summary Create an article
// @Description Create an article. New articles are appended to the end of the display order.
// @Tags Articles
// @Accept json
// @Produce json
// @Param request body domain.CreateArticleRequest true "Article data"
// @Success 201 {object} domain.Article
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/articles [post]
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	article, err := h.articleService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create article")
		return
	}

	respondJSON(w, http.StatusCreated, article)
}

// GetByID godoc
// @Summary Get an article
// @Tags Articles
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} domain.Article
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/articles/{id} [get]
func (h *ArticleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid article ID")
		return
	}

	article, err := h.articleService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get article")
		return
	}

	respondJSON(w, http.StatusOK, article)
}

// Update godoc
// @Summary Update an article
// @Tags Articles
// @Accept json
// @Produce json
// @Param id path int true "Article ID"
// @Param request body domain.UpdateArticleRequest true "Fields to update"
// @Success 200 {object} domain.Article
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/articles/{id} [put]
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid article ID")
		return
	}

	var req domain.UpdateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	article, err := h.articleService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update article")
		return
	}

	respondJSON(w, http.StatusOK, article)
}

// Delete godoc
// @Summary Delete an article
// @Tags Articles
// @Param id path int true "Article ID"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/articles/{id} [delete]
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid article ID")
		return
	}

	if err := h.articleService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete article")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Move godoc
// @Summary Move an article in the display order
// @Description Swap the article with its neighbor above or below. Moving past either end is rejected.
// @Tags Articles
// @Accept json
// @Produce json
// @Param id path int true "Article ID"
// @Param request body domain.MoveArticleRequest true "Move direction"
// @Success 200 {object} domain.Article
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Already at the boundary"
// @Security BearerAuth
// @Router /admin/articles/{id}/move [post]
func (h *ArticleHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid article ID")
		return
	}

	var req domain.MoveArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	article, err := h.articleService.Move(r.Context(), id, req.Direction)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to move article")
		return
	}

	respondJSON(w, http.StatusOK, article)
}
