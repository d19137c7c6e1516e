package repository

import (
	"context"

	"github.com/Astemirdum/library-catalog/catalog/internal/model"
)

// Repository is the catalog store contract. Books are always returned with their author reference.
type Repository interface {
	CreateAuthor(ctx context.Context, author model.Author) (model.Author, error)
	GetAuthor(ctx context.Context, id string) (model.Author, error)
	GetAuthorByEmail(ctx context.Context, email string) (model.Author, error)
	ListAuthors(ctx context.Context) ([]model.AuthorListItem, error)
	UpdateAuthor(ctx context.Context, author model.Author) (model.Author, error)
	DeleteAuthor(ctx context.Context, id string) error

	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	GetBook(ctx context.Context, id string) (model.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (model.Book, error)
	ListBooks(ctx context.Context, genre string) ([]model.Book, error)
	// AuthorBooks lists every book of the author ordered by published year; books without a year come last.
	AuthorBooks(ctx context.Context, authorID string, order model.SortOrder) ([]model.Book, error)
	SearchBooks(ctx context.Context, query model.BookQuery) ([]model.Book, error)
	CountBooks(ctx context.Context, filter model.BookFilter) (int, error)
	UpdateBook(ctx context.Context, book model.Book) (model.Book, error)
	DeleteBook(ctx context.Context, id string) error

	Summary(ctx context.Context) (model.CatalogSummary, error)
}

var (
	_ Repository = (*repository)(nil)
	_ Repository = (*memory)(nil)
)
