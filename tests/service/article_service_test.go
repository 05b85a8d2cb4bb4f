package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/gaiheki-navi/broker-api/internal/domain"
	"github.com/gaiheki-navi/broker-api/internal/repository"
	"github.com/gaiheki-navi/broker-api/internal/service"
	"github.com/gaiheki-navi/broker-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createArticleService(t *testing.T, db *gorm.DB) *service.ArticleService {
	return service.NewArticleService(repository.NewArticleRepository(db), zap.NewNop())
}

func TestArticleService_Move(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createArticleService(t, db)
	ctx := context.Background()

	var articles []*domain.Article
	for _, title := range []string{"First", "Second", "Third"} {
		article, err := svc.Create(ctx, &domain.CreateArticleRequest{
			Title:       title,
			IsPublished: true,
		})
		require.NoError(t, err)
		articles = append(articles, article)
	}

	titlesInOrder := func() []string {
		list, err := svc.List(ctx, false)
		require.NoError(t, err)
		titles := make([]string, 0, len(list))
		for _, a := range list {
			titles = append(titles, a.Title)
		}
		return titles
	}

	t.Run("new articles append to the end", func(t *testing.T) {
		assert.Equal(t, []string{"First", "Second", "Third"}, titlesInOrder())
	})

	t.Run("moving up swaps with the previous article", func(t *testing.T) {
		moved, err := svc.Move(ctx, articles[2].ID, "up")
		require.NoError(t, err)
		assert.Equal(t, "Third", moved.Title)
		assert.Equal(t, []string{"First", "Third", "Second"}, titlesInOrder())
	})

	t.Run("moving down swaps with the next article", func(t *testing.T) {
		_, err := svc.Move(ctx, articles[2].ID, "down")
		require.NoError(t, err)
		assert.Equal(t, []string{"First", "Second", "Third"}, titlesInOrder())
	})

	t.Run("concurrent moves keep the ordering consistent", func(t *testing.T) {
		var wg sync.WaitGroup
		for _, move := range []struct {
			id        int
			direction string
		}{
			{articles[2].ID, "up"},
			{articles[0].ID, "down"},
		} {
			wg.Add(1)
			go func(id int, direction string) {
				defer wg.Done()
				// Losing the race to the boundary is a valid outcome
				if _, err := svc.Move(ctx, id, direction); err != nil {
					assert.ErrorIs(t, err, service.ErrNoMoreMoves)
				}
			}(move.id, move.direction)
		}
		wg.Wait()

		list, err := svc.List(ctx, false)
		require.NoError(t, err)
		require.Len(t, list, 3)
		seen := make(map[int]bool)
		for _, a := range list {
			assert.Positive(t, a.SortOrder)
			assert.False(t, seen[a.SortOrder], "sort orders must stay unique")
			seen[a.SortOrder] = true
		}

		// Restore the original ordering for the boundary subtests below
		resetOrder := map[string]int{"First": 1, "Second": 2, "Third": 3}
		for _, a := range list {
			require.NoError(t, db.Model(&domain.Article{}).Where("id = ?", a.ID).
				Update("sort_order", -a.ID).Error)
		}
		for _, a := range list {
			require.NoError(t, db.Model(&domain.Article{}).Where("id = ?", a.ID).
				Update("sort_order", resetOrder[a.Title]).Error)
		}
		assert.Equal(t, []string{"First", "Second", "Third"}, titlesInOrder())
	})

	t.Run("moving the first article up hits the boundary", func(t *testing.T) {
		_, err := svc.Move(ctx, articles[0].ID, "up")
		assert.ErrorIs(t, err, service.ErrNoMoreMoves)
		assert.Equal(t, []string{"First", "Second", "Third"}, titlesInOrder())
	})

	t.Run("moving the last article down hits the boundary", func(t *testing.T) {
		_, err := svc.Move(ctx, articles[2].ID, "down")
		assert.ErrorIs(t, err, service.ErrNoMoreMoves)
	})

	t.Run("invalid direction is rejected", func(t *testing.T) {
		_, err := svc.Move(ctx, articles[0].ID, "sideways")
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("missing article returns not found", func(t *testing.T) {
		_, err := svc.Move(ctx, 999999, "up")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("sort orders stay unique after moves", func(t *testing.T) {
		list, err := svc.List(ctx, false)
		require.NoError(t, err)
		seen := make(map[int]bool, len(list))
		for _, a := range list {
			assert.False(t, seen[a.SortOrder], "duplicate sort order %d", a.SortOrder)
			seen[a.SortOrder] = true
		}
	})
}

func TestArticleService_PublishedFilter(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	svc := createArticleService(t, db)
	ctx := context.Background()

	_, err := svc.Create(ctx, &domain.CreateArticleRequest{Title: "Published", IsPublished: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &domain.CreateArticleRequest{Title: "Draft"})
	require.NoError(t, err)

	t.Run("public listing hides drafts", func(t *testing.T) {
		list, err := svc.List(ctx, true)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Published", list[0].Title)
	})

	t.Run("admin listing shows everything", func(t *testing.T) {
		list, err := svc.List(ctx, false)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}
