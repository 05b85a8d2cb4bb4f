package repository_test

import (
	"context"
	"testing"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Articles have no relations or Postgres-specific columns, so these tests
// run on an in-memory SQLite database and need no running server.
func setupArticleTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Article{}))
	return db
}

func createArticle(t *testing.T, repo *repository.ArticleRepository, title string, sortOrder int, published bool) *domain.Article {
	article := &domain.Article{
		Title:       title,
		SortOrder:   sortOrder,
		IsPublished: published,
	}
	require.NoError(t, repo.Create(context.Background(), article))
	return article
}

func TestArticleRepository_List(t *testing.T) {
	db := setupArticleTestDB(t)
	repo := repository.NewArticleRepository(db)
	ctx := context.Background()

	// Insert out of order to prove the listing sorts
	createArticle(t, repo, "Third", 3, true)
	createArticle(t, repo, "First", 1, true)
	createArticle(t, repo, "Second", 2, false)

	t.Run("lists in sort order", func(t *testing.T) {
		articles, err := repo.List(ctx, false)
		require.NoError(t, err)
		require.Len(t, articles, 3)
		assert.Equal(t, "First", articles[0].Title)
		assert.Equal(t, "Second", articles[1].Title)
		assert.Equal(t, "Third", articles[2].Title)
	})

	t.Run("published filter drops drafts", func(t *testing.T) {
		articles, err := repo.List(ctx, true)
		require.NoError(t, err)
		require.Len(t, articles, 2)
		for _, a := range articles {
			assert.True(t, a.IsPublished)
		}
	})
}

func TestArticleRepository_MaxSortOrder(t *testing.T) {
	db := setupArticleTestDB(t)
	repo := repository.NewArticleRepository(db)
	ctx := context.Background()

	t.Run("empty table reports zero", func(t *testing.T) {
		max, err := repo.MaxSortOrder(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, max)
	})

	t.Run("reports the highest order", func(t *testing.T) {
		createArticle(t, repo, "A", 1, true)
		createArticle(t, repo, "B", 7, true)

		max, err := repo.MaxSortOrder(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, max)
	})
}

func TestArticleRepository_GetNeighbor(t *testing.T) {
	db := setupArticleTestDB(t)
	repo := repository.NewArticleRepository(db)
	ctx := context.Background()

	createArticle(t, repo, "First", 1, true)
	createArticle(t, repo, "Second", 2, true)
	createArticle(t, repo, "Third", 3, true)

	t.Run("up finds the closest lower order", func(t *testing.T) {
		neighbor, err := repo.GetNeighbor(ctx, 3, true)
		require.NoError(t, err)
		assert.Equal(t, "Second", neighbor.Title)
	})

	t.Run("down finds the closest higher order", func(t *testing.T) {
		neighbor, err := repo.GetNeighbor(ctx, 1, false)
		require.NoError(t, err)
		assert.Equal(t, "Second", neighbor.Title)
	})

	t.Run("top boundary has no up neighbor", func(t *testing.T) {
		_, err := repo.GetNeighbor(ctx, 1, true)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("bottom boundary has no down neighbor", func(t *testing.T) {
		_, err := repo.GetNeighbor(ctx, 3, false)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
