package handler

import (
	"context"

	"github.com/Astemirdum/library-catalog/catalog/internal/model"
	"github.com/Astemirdum/library-catalog/catalog/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CatalogService interface {
	ListAuthors(ctx context.Context) ([]model.AuthorListItem, error)
	CreateAuthor(ctx context.Context, author model.Author) (model.Author, error)
	GetAuthor(ctx context.Context, id string) (model.AuthorDetails, error)
	UpdateAuthor(ctx context.Context, id string, req model.UpdateAuthorRequest) (model.Author, error)
	DeleteAuthor(ctx context.Context, id string) error
	AuthorStats(ctx context.Context, authorID string) (model.AuthorStats, error)

	ListBooks(ctx context.Context, genre string) ([]model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	GetBook(ctx context.Context, id string) (model.Book, error)
	UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id string) error
	SearchBooks(ctx context.Context, query model.BookQuery) (model.BookPage, error)

	Summary(ctx context.Context) (model.CatalogSummary, error)
}

var _ CatalogService = (*service.Service)(nil)
