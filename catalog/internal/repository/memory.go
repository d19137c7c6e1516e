package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-catalog/catalog/internal/errs"
	"github.com/Astemirdum/library-catalog/catalog/internal/model"
)

// memory keeps the catalog in process. It enforces the same uniqueness and
// foreign key rules as the PostgreSQL schema; natural order is insertion order.
type memory struct {
	mu  sync.RWMutex
	log *zap.Logger
	now func() time.Time

	authors     map[string]model.Author
	authorOrder []string
	books       map[string]model.Book
	bookOrder   []string
}

func NewMemoryRepository(log *zap.Logger) *memory {
	return &memory{
		log:     log.Named("memory"),
		now:     func() time.Time { return time.Now().UTC() },
		authors: make(map[string]model.Author),
		books:   make(map[string]model.Book),
	}
}

func (m *memory) CreateAuthor(_ context.Context, author model.Author) (model.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emailTaken(author.Email, "") {
		return model.Author{}, errs.ErrDuplicateEmail
	}
	author.ID = uuid.NewString()
	author.CreatedAt = m.now()
	m.authors[author.ID] = author
	m.authorOrder = append(m.authorOrder, author.ID)
	m.log.Debug("author created", zap.String("id", author.ID))
	return author, nil
}

func (m *memory) GetAuthor(_ context.Context, id string) (model.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.authors[id]
	if !ok {
		return model.Author{}, errs.ErrAuthorNotFound
	}
	return a, nil
}

func (m *memory) GetAuthorByEmail(_ context.Context, email string) (model.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.authorOrder {
		if a := m.authors[id]; a.Email == email {
			return a, nil
		}
	}
	return model.Author{}, errs.ErrAuthorNotFound
}

func (m *memory) ListAuthors(_ context.Context) ([]model.AuthorListItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int, len(m.authors))
	for _, b := range m.books {
		counts[b.AuthorID]++
	}
	items := make([]model.AuthorListItem, 0, len(m.authorOrder))
	for _, id := range m.authorOrder {
		items = append(items, model.AuthorListItem{Author: m.authors[id], BookCount: counts[id]})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (m *memory) UpdateAuthor(_ context.Context, author model.Author) (model.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.authors[author.ID]
	if !ok {
		return model.Author{}, errs.ErrAuthorNotFound
	}
	if m.emailTaken(author.Email, author.ID) {
		return model.Author{}, errs.ErrDuplicateEmail
	}
	author.CreatedAt = stored.CreatedAt
	m.authors[author.ID] = author
	return author, nil
}

func (m *memory) DeleteAuthor(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.authors[id]; !ok {
		return errs.ErrAuthorNotFound
	}
	for _, b := range m.books {
		if b.AuthorID == id {
			return errs.ErrAuthorHasBooks
		}
	}
	delete(m.authors, id)
	m.authorOrder = without(m.authorOrder, id)
	return nil
}

func (m *memory) CreateBook(_ context.Context, book model.Book) (model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.authors[book.AuthorID]; !ok {
		return model.Book{}, errs.ErrUnknownAuthor
	}
	if m.isbnTaken(book.ISBN, "") {
		return model.Book{}, errs.ErrDuplicateISBN
	}
	book.ID = uuid.NewString()
	book.CreatedAt = m.now()
	book.Author = nil
	m.books[book.ID] = book
	m.bookOrder = append(m.bookOrder, book.ID)
	m.log.Debug("book created", zap.String("id", book.ID))
	return m.withAuthor(book), nil
}

func (m *memory) GetBook(_ context.Context, id string) (model.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.books[id]
	if !ok {
		return model.Book{}, errs.ErrBookNotFound
	}
	return m.withAuthor(b), nil
}

func (m *memory) GetBookByISBN(_ context.Context, isbn string) (model.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.bookOrder {
		if b := m.books[id]; b.ISBN != nil && *b.ISBN == isbn {
			return m.withAuthor(b), nil
		}
	}
	return model.Book{}, errs.ErrBookNotFound
}

func (m *memory) ListBooks(_ context.Context, genre string) ([]model.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	books := m.filter(func(b model.Book) bool {
		return genre == "" || (b.Genre != nil && *b.Genre == genre)
	})
	sortBooks(books, model.SortByCreatedAt, model.OrderDesc)
	return m.withAuthors(books), nil
}

func (m *memory) AuthorBooks(_ context.Context, authorID string, order model.SortOrder) ([]model.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	books := m.filter(func(b model.Book) bool { return b.AuthorID == authorID })
	sort.SliceStable(books, func(i, j int) bool {
		yi, yj := books[i].PublishedYear, books[j].PublishedYear
		switch {
		case yi == nil || yj == nil:
			return yi != nil && yj == nil
		case *yi != *yj:
			if order == model.OrderAsc {
				return *yi < *yj
			}
			return *yi > *yj
		case !books[i].CreatedAt.Equal(books[j].CreatedAt):
			return books[i].CreatedAt.Before(books[j].CreatedAt)
		default:
			return books[i].ID < books[j].ID
		}
	})
	return m.withAuthors(books), nil
}

func (m *memory) SearchBooks(_ context.Context, query model.BookQuery) ([]model.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	books := m.filter(m.matcher(query.BookFilter))
	sortBooks(books, query.SortBy, query.Order)

	offset := query.Offset()
	if offset < 0 || offset >= len(books) {
		return []model.Book{}, nil
	}
	end := offset + query.Limit
	if end < offset || end > len(books) {
		end = len(books)
	}
	return m.withAuthors(books[offset:end]), nil
}

func (m *memory) CountBooks(_ context.Context, filter model.BookFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.filter(m.matcher(filter))), nil
}

func (m *memory) UpdateBook(_ context.Context, book model.Book) (model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.books[book.ID]
	if !ok {
		return model.Book{}, errs.ErrBookNotFound
	}
	if _, ok := m.authors[book.AuthorID]; !ok {
		return model.Book{}, errs.ErrUnknownAuthor
	}
	if m.isbnTaken(book.ISBN, book.ID) {
		return model.Book{}, errs.ErrDuplicateISBN
	}
	book.CreatedAt = stored.CreatedAt
	book.Author = nil
	m.books[book.ID] = book
	return m.withAuthor(book), nil
}

func (m *memory) DeleteBook(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return errs.ErrBookNotFound
	}
	delete(m.books, id)
	m.bookOrder = without(m.bookOrder, id)
	return nil
}

func (m *memory) Summary(_ context.Context) (model.CatalogSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return model.CatalogSummary{TotalAuthors: len(m.authors), TotalBooks: len(m.books)}, nil
}

func (m *memory) emailTaken(email, exceptID string) bool {
	for id, a := range m.authors {
		if id != exceptID && a.Email == email {
			return true
		}
	}
	return false
}

func (m *memory) isbnTaken(isbn *string, exceptID string) bool {
	if isbn == nil {
		return false
	}
	for id, b := range m.books {
		if id != exceptID && b.ISBN != nil && *b.ISBN == *isbn {
			return true
		}
	}
	return false
}

func (m *memory) matcher(f model.BookFilter) func(model.Book) bool {
	search := strings.ToLower(f.Search)
	authorName := strings.ToLower(f.AuthorName)
	return func(b model.Book) bool {
		if search != "" && !strings.Contains(strings.ToLower(b.Title), search) {
			return false
		}
		if f.Genre != "" && (b.Genre == nil || *b.Genre != f.Genre) {
			return false
		}
		if authorName != "" && !strings.Contains(strings.ToLower(m.authors[b.AuthorID].Name), authorName) {
			return false
		}
		return true
	}
}

// filter returns matching books in insertion order.
func (m *memory) filter(keep func(model.Book) bool) []model.Book {
	books := make([]model.Book, 0)
	for _, id := range m.bookOrder {
		if b := m.books[id]; keep(b) {
			books = append(books, b)
		}
	}
	return books
}

func (m *memory) withAuthor(b model.Book) model.Book {
	b.Author = m.authors[b.AuthorID].Ref()
	return b
}

func (m *memory) withAuthors(books []model.Book) []model.Book {
	out := make([]model.Book, 0, len(books))
	for _, b := range books {
		out = append(out, m.withAuthor(b))
	}
	return out
}

// sortBooks orders like the PostgreSQL query: NULL years are the largest value, ties break on id.
func sortBooks(books []model.Book, field model.SortField, order model.SortOrder) {
	cmp := func(a, b model.Book) int {
		switch field {
		case model.SortByTitle:
			return strings.Compare(a.Title, b.Title)
		case model.SortByPublishedYear:
			return compareYears(a.PublishedYear, b.PublishedYear)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(books, func(i, j int) bool {
		c := cmp(books[i], books[j])
		if order != model.OrderAsc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return books[i].ID < books[j].ID
	})
}

func compareYears(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
