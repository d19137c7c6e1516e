package service

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-catalog/catalog/internal/model"
)

func (s *Service) AuthorStats(ctx context.Context, authorID string) (model.AuthorStats, error) {
	var (
		author model.Author
		books  []model.Book
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		author, err = s.repo.GetAuthor(gCtx, authorID)
		return err
	})
	g.Go(func() (err error) {
		books, err = s.repo.AuthorBooks(gCtx, authorID, model.OrderAsc)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.AuthorStats{}, err
	}
	return model.AuthorStats{
		AuthorID:   author.ID,
		AuthorName: author.Name,
		BookStats:  ComputeStats(books),
	}, nil
}

// ComputeStats reduces books in the given order. Year extremes take the
// first minimum and the last maximum; page extremes take the first maximum
// and the last minimum.
func ComputeStats(books []model.Book) model.BookStats {
	stats := model.BookStats{
		TotalBooks: len(books),
		Genres:     []string{},
	}
	var (
		pagesSum, pagesCnt int
		seen               = make(map[string]struct{})
	)
	for _, b := range books {
		if y := b.PublishedYear; y != nil {
			if stats.FirstBook == nil || *y < stats.FirstBook.Year {
				stats.FirstBook = &model.YearBook{Title: b.Title, Year: *y}
			}
			if stats.LatestBook == nil || *y >= stats.LatestBook.Year {
				stats.LatestBook = &model.YearBook{Title: b.Title, Year: *y}
			}
		}
		if p := b.Pages; p != nil {
			pagesSum += *p
			pagesCnt++
			if stats.LongestBook == nil || *p > stats.LongestBook.Pages {
				stats.LongestBook = &model.PagesBook{Title: b.Title, Pages: *p}
			}
			if stats.ShortestBook == nil || *p <= stats.ShortestBook.Pages {
				stats.ShortestBook = &model.PagesBook{Title: b.Title, Pages: *p}
			}
		}
		if g := b.Genre; g != nil && *g != "" {
			if _, ok := seen[*g]; !ok {
				seen[*g] = struct{}{}
				stats.Genres = append(stats.Genres, *g)
			}
		}
	}
	if pagesCnt > 0 {
		stats.AveragePages = int(math.Floor(float64(pagesSum)/float64(pagesCnt) + 0.5))
	}
	return stats
}
