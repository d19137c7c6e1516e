package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-catalog/catalog/internal/errs"
	"github.com/Astemirdum/library-catalog/catalog/internal/model"
	catalogRepo "github.com/Astemirdum/library-catalog/catalog/internal/repository"
	"github.com/Astemirdum/library-catalog/pkg/kafka"
)

// EventPublisher receives a notification after every successful catalog write.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.CatalogEvent) error
}

type Service struct {
	log    *zap.Logger
	repo   catalogRepo.Repository
	events EventPublisher
	now    func() time.Time
}

func NewService(repo catalogRepo.Repository, events EventPublisher, log *zap.Logger) *Service {
	if events == nil {
		events = kafka.NopPublisher{}
	}
	return &Service{
		log:    log.Named("service"),
		repo:   repo,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) ListAuthors(ctx context.Context) ([]model.AuthorListItem, error) {
	return s.repo.ListAuthors(ctx)
}

func (s *Service) CreateAuthor(ctx context.Context, author model.Author) (model.Author, error) {
	created, err := s.repo.CreateAuthor(ctx, author)
	if err != nil {
		return model.Author{}, err
	}
	s.publish(ctx, kafka.AuthorCreated, created.ID, created.ID)
	return created, nil
}

// GetAuthor returns the author with every book, newest publication first.
func (s *Service) GetAuthor(ctx context.Context, id string) (model.AuthorDetails, error) {
	author, err := s.repo.GetAuthor(ctx, id)
	if err != nil {
		return model.AuthorDetails{}, err
	}
	books, err := s.repo.AuthorBooks(ctx, id, model.OrderDesc)
	if err != nil {
		return model.AuthorDetails{}, err
	}
	return model.AuthorDetails{Author: author, Books: books}, nil
}

func (s *Service) UpdateAuthor(ctx context.Context, id string, req model.UpdateAuthorRequest) (model.Author, error) {
	stored, err := s.repo.GetAuthor(ctx, id)
	if err != nil {
		return model.Author{}, err
	}
	updated, err := s.repo.UpdateAuthor(ctx, req.Apply(stored))
	if err != nil {
		return model.Author{}, err
	}
	s.publish(ctx, kafka.AuthorUpdated, updated.ID, updated.ID)
	return updated, nil
}

func (s *Service) DeleteAuthor(ctx context.Context, id string) error {
	if err := s.repo.DeleteAuthor(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, kafka.AuthorDeleted, id, id)
	return nil
}

func (s *Service) ListBooks(ctx context.Context, genre string) ([]model.Book, error) {
	return s.repo.ListBooks(ctx, genre)
}

func (s *Service) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	if err := s.authorExists(ctx, book.AuthorID); err != nil {
		return model.Book{}, err
	}
	created, err := s.repo.CreateBook(ctx, book)
	if err != nil {
		return model.Book{}, err
	}
	s.publish(ctx, kafka.BookCreated, created.ID, created.AuthorID)
	return created, nil
}

func (s *Service) GetBook(ctx context.Context, id string) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (model.Book, error) {
	stored, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return model.Book{}, err
	}
	if req.AuthorID != nil {
		if err := s.authorExists(ctx, *req.AuthorID); err != nil {
			return model.Book{}, err
		}
	}
	updated, err := s.repo.UpdateBook(ctx, req.Apply(stored))
	if err != nil {
		return model.Book{}, err
	}
	s.publish(ctx, kafka.BookUpdated, updated.ID, updated.AuthorID)
	return updated, nil
}

func (s *Service) DeleteBook(ctx context.Context, id string) error {
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, kafka.BookDeleted, id, "")
	return nil
}

func (s *Service) Summary(ctx context.Context) (model.CatalogSummary, error) {
	return s.repo.Summary(ctx)
}

// EnsureAuthor creates the author unless one with the same email exists.
// The boolean reports whether a record was inserted.
func (s *Service) EnsureAuthor(ctx context.Context, author model.Author) (model.Author, bool, error) {
	existing, err := s.repo.GetAuthorByEmail(ctx, author.Email)
	if err == nil {
		return existing, false, nil
	}
	if errs.KindOf(err) != errs.KindNotFound {
		return model.Author{}, false, err
	}
	created, err := s.CreateAuthor(ctx, author)
	return created, err == nil, err
}

// EnsureBook creates the book unless one with the same ISBN exists.
func (s *Service) EnsureBook(ctx context.Context, book model.Book) (model.Book, bool, error) {
	if book.ISBN != nil {
		existing, err := s.repo.GetBookByISBN(ctx, *book.ISBN)
		if err == nil {
			return existing, false, nil
		}
		if errs.KindOf(err) != errs.KindNotFound {
			return model.Book{}, false, err
		}
	}
	created, err := s.CreateBook(ctx, book)
	return created, err == nil, err
}

func (s *Service) authorExists(ctx context.Context, id string) error {
	_, err := s.repo.GetAuthor(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errs.ErrAuthorNotFound):
		return errs.ErrUnknownAuthor
	default:
		return err
	}
}

func (s *Service) publish(ctx context.Context, typ kafka.EventType, entityID, authorID string) {
	event := kafka.CatalogEvent{
		Type:      typ,
		EntityID:  entityID,
		AuthorID:  authorID,
		Timestamp: s.now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("publish event",
			zap.String("type", string(typ)),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}
