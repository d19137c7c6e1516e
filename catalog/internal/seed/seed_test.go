package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-catalog/catalog/internal/model"
	"github.com/Astemirdum/library-catalog/catalog/internal/repository"
	"github.com/Astemirdum/library-catalog/catalog/internal/seed"
	"github.com/Astemirdum/library-catalog/catalog/internal/service"
)

func TestRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := zap.NewExample()
	svc := service.NewService(repository.NewMemoryRepository(log), nil, log)

	res, err := seed.Run(ctx, svc, log)
	require.NoError(t, err)
	require.Equal(t, seed.Result{Authors: 4, Books: 5}, res)

	res, err = seed.Run(ctx, svc, log)
	require.NoError(t, err)
	require.Equal(t, seed.Result{}, res)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, model.CatalogSummary{TotalAuthors: 4, TotalBooks: 5}, sum)

	page, err := svc.SearchBooks(ctx, model.BookQueryParams{AuthorName: "garcía", SortBy: "publishedYear", Order: "asc"}.Normalize())
	require.NoError(t, err)
	require.Len(t, page.Data, 2)

	stats, err := svc.AuthorStats(ctx, page.Data[0].AuthorID)
	require.NoError(t, err)
	require.Equal(t, 393, stats.AveragePages)
	require.Equal(t, &model.YearBook{Title: "Cien años de soledad", Year: 1967}, stats.FirstBook)
	require.Equal(t, []string{"Realismo mágico", "Romance"}, stats.Genres)
}
