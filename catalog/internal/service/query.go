package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-catalog/catalog/internal/model"
)

// SearchBooks returns one page of matching books. The total is counted
// over the whole filter, independent of the page window.
func (s *Service) SearchBooks(ctx context.Context, query model.BookQuery) (model.BookPage, error) {
	var (
		books []model.Book
		total int
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		books, err = s.repo.SearchBooks(gCtx, query)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.repo.CountBooks(gCtx, query.BookFilter)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.BookPage{}, fmt.Errorf("query failed: %w", err)
	}
	if books == nil {
		books = []model.Book{}
	}
	return model.BookPage{
		Data:       books,
		Pagination: model.NewPagination(query.Page, query.Limit, total),
	}, nil
}
