package repository

import (
	"context"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	return r.db.WithContext(ctx).Create(article).Error
}

func (r *ArticleRepository) GetByID(ctx context.Context, id int) (*domain.Article, error) {
	var article domain.Article
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&article).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *ArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	return r.db.WithContext(ctx).Save(article).Error
}

func (r *ArticleRepository) Delete(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Delete(&domain.Article{}, "id = ?", id).Error
}

func (r *ArticleRepository) List(ctx context.Context, publishedOnly bool) ([]domain.Article, error) {
	var articles []domain.Article
	query := r.db.WithContext(ctx).Model(&domain.Article{})
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	err := query.Order("sort_order ASC").Find(&articles).Error
	return articles, err
}

// MaxSortOrder returns the current highest sort order, 0 when empty
func (r *ArticleRepository) MaxSortOrder(ctx context.Context) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&domain.Article{}).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// SwapWithNeighbor moves an article one position in the given direction.
// The article is locked first and its neighbor resolved under that lock,
// inside the same transaction, so concurrent moves always swap rows that
// are still adjacent at commit time. Returns gorm.ErrRecordNotFound when
// the article does not exist or is already at the boundary. The sort_order
// column is unique, so the swap goes through a temporary negative slot.
func (r *ArticleRepository) SwapWithNeighbor(ctx context.Context, id int, up bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article domain.Article
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(&article).Error; err != nil {
			return err
		}

		var neighbor domain.Article
		if err := neighborQuery(tx.Clauses(clause.Locking{Strength: "UPDATE"}), article.SortOrder, up).
			First(&neighbor).Error; err != nil {
			return err
		}

		if err := tx.Model(&domain.Article{}).Where("id = ?", article.ID).
			Update("sort_order", -article.SortOrder).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Article{}).Where("id = ?", neighbor.ID).
			Update("sort_order", article.SortOrder).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Article{}).Where("id = ?", article.ID).
			Update("sort_order", neighbor.SortOrder).Error
	})
}

// GetNeighbor returns the adjacent article in the given direction, or
// gorm.ErrRecordNotFound at the boundary.
func (r *ArticleRepository) GetNeighbor(ctx context.Context, sortOrder int, up bool) (*domain.Article, error) {
	var article domain.Article
	err := neighborQuery(r.db.WithContext(ctx), sortOrder, up).First(&article).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func neighborQuery(db *gorm.DB, sortOrder int, up bool) *gorm.DB {
	query := db.Model(&domain.Article{})
	if up {
		return query.Where("sort_order < ?", sortOrder).Order("sort_order DESC")
	}
	return query.Where("sort_order > ?", sortOrder).Order("sort_order ASC")
}
