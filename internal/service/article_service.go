package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/repository"
)

// ArticleService manages curated content entries and their manual ordering.
// New articles append at the end; Move swaps an article with its neighbor
// one step at a time, so the ordering stays dense with no gaps.
type ArticleService struct {
	articleRepo *repository.ArticleRepository
	logger      *zap.Logger
}

// NewArticleService creates a new ArticleService
func NewArticleService(articleRepo *repository.ArticleRepository, logger *zap.Logger) *ArticleService {
	return &ArticleService{articleRepo: articleRepo, logger: logger}
}

// Create appends an article at the end of the display order
func (s *ArticleService) Create(ctx context.Context, req *domain.CreateArticleRequest) (*domain.Article, error) {
	max, err := s.articleRepo.MaxSortOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get max sort order: %w", err)
	}

	article := &domain.Article{
		Title:       req.Title,
		Category:    req.Category,
		Content:     req.Content,
		IsPublished: req.IsPublished,
		SortOrder:   max + 1,
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	s.logger.Info("article created",
		zap.Int("article_id", article.ID),
		zap.Int("sort_order", article.SortOrder))
	return article, nil
}

func (s *ArticleService) GetByID(ctx context.Context, id int) (*domain.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

// List returns articles in display order
func (s *ArticleService) List(ctx context.Context, publishedOnly bool) ([]domain.Article, error) {
	return s.articleRepo.List(ctx, publishedOnly)
}

func (s *ArticleService) Update(ctx context.Context, id int, req *domain.UpdateArticleRequest) (*domain.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	if req.Title != nil {
		article.Title = *req.Title
	}
	if req.Category != nil {
		article.Category = *req.Category
	}
	if req.Content != nil {
		article.Content = *req.Content
	}
	if req.IsPublished != nil {
		article.IsPublished = *req.IsPublished
	}

	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	return article, nil
}

func (s *ArticleService) Delete(ctx context.Context, id int) error {
	if _, err := s.articleRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get article: %w", err)
	}
	return s.articleRepo.Delete(ctx, id)
}

// Move shifts an article one position up (toward the front) or down.
// Moving past the boundary returns ErrNoMoreMoves; a no-op move would
// silently hide a stale client view, so the boundary is an error.
func (s *ArticleService) Move(ctx context.Context, id int, direction string) (*domain.Article, error) {
	if direction != "up" && direction != "down" {
		return nil, fmt.Errorf("%w: direction must be up or down", ErrInvalidInput)
	}

	if _, err := s.articleRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	// The article was just seen, so a not-found here means the boundary
	if err := s.articleRepo.SwapWithNeighbor(ctx, id, direction == "up"); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoMoreMoves
		}
		return nil, fmt.Errorf("failed to move article: %w", err)
	}

	s.logger.Info("article moved",
		zap.Int("article_id", id),
		zap.String("direction", direction))
	return s.articleRepo.GetByID(ctx, id)
}
