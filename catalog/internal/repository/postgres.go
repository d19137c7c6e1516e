package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-catalog/catalog/internal/errs"
	"github.com/Astemirdum/library-catalog/catalog/internal/model"
)

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	authorsTableName = `authors`
	booksTableName   = `books`

	emailUniqueConstraint = `authors_email_key`
	isbnUniqueConstraint  = `books_isbn_key`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	authorColumns = []string{
		"a.id::text as id", "a.name", "a.email", "a.bio", "a.nationality", "a.birth_year", "a.created_at",
	}
	bookColumns = []string{
		"b.id::text as id", "b.title", "b.description", "b.isbn", "b.published_year", "b.genre", "b.pages",
		"b.author_id::text as author_id", "b.created_at", "a.name as author_name", "a.email as author_email",
	}
	sortColumns = map[model.SortField]string{
		model.SortByTitle:         "b.title",
		model.SortByPublishedYear: "b.published_year",
		model.SortByCreatedAt:     "b.created_at",
	}
)

type bookRow struct {
	ID            string    `db:"id"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	ISBN          *string   `db:"isbn"`
	PublishedYear *int      `db:"published_year"`
	Genre         *string   `db:"genre"`
	Pages         *int      `db:"pages"`
	AuthorID      string    `db:"author_id"`
	CreatedAt     time.Time `db:"created_at"`
	AuthorName    string    `db:"author_name"`
	AuthorEmail   string    `db:"author_email"`
}

func (r bookRow) toModel() model.Book {
	return model.Book{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		ISBN:          r.ISBN,
		PublishedYear: r.PublishedYear,
		Genre:         r.Genre,
		Pages:         r.Pages,
		AuthorID:      r.AuthorID,
		CreatedAt:     r.CreatedAt,
		Author: &model.AuthorRef{
			ID:    r.AuthorID,
			Name:  r.AuthorName,
			Email: r.AuthorEmail,
		},
	}
}

func (r *repository) CreateAuthor(ctx context.Context, author model.Author) (model.Author, error) {
	q := `
insert into authors (id, name, email, bio, nationality, birth_year)
values (@id, @name, @email, @bio, @nationality, @birth_year)
returning id::text as id, name, email, bio, nationality, birth_year, created_at`
	args := pgx.NamedArgs{
		"id":          uuid.NewString(),
		"name":        author.Name,
		"email":       author.Email,
		"bio":         author.Bio,
		"nationality": author.Nationality,
		"birth_year":  author.BirthYear,
	}
	created, err := r.collectAuthor(ctx, q, args)
	if err != nil {
		return model.Author{}, r.mapAuthorErr("CreateAuthor", err)
	}
	return created, nil
}

func (r *repository) GetAuthor(ctx context.Context, id string) (model.Author, error) {
	return r.getAuthor(ctx, sq.Eq{"a.id": id})
}

func (r *repository) GetAuthorByEmail(ctx context.Context, email string) (model.Author, error) {
	return r.getAuthor(ctx, sq.Eq{"a.email": email})
}

func (r *repository) getAuthor(ctx context.Context, where sq.Sqlizer) (model.Author, error) {
	query, args, err := qb.Select(authorColumns...).
		From(authorsTableName + " a").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Author{}, err
	}
	author, err := r.collectAuthor(ctx, query, args...)
	if err != nil {
		return model.Author{}, r.mapAuthorErr("GetAuthor", err)
	}
	return author, nil
}

func (r *repository) ListAuthors(ctx context.Context) ([]model.AuthorListItem, error) {
	query, args, err := qb.Select(append(authorColumns, "count(b.id) as book_count")...).
		From(authorsTableName + " a").
		LeftJoin(booksTableName + " b on b.author_id = a.id").
		GroupBy("a.id").
		OrderBy("a.name asc", "a.id asc").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	authors, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.AuthorListItem])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return authors, nil
}

func (r *repository) UpdateAuthor(ctx context.Context, author model.Author) (model.Author, error) {
	q := `
update authors
    set name = @name, email = @email, bio = @bio, nationality = @nationality, birth_year = @birth_year
where id = @id
returning id::text as id, name, email, bio, nationality, birth_year, created_at`
	args := pgx.NamedArgs{
		"id":          author.ID,
		"name":        author.Name,
		"email":       author.Email,
		"bio":         author.Bio,
		"nationality": author.Nationality,
		"birth_year":  author.BirthYear,
	}
	updated, err := r.collectAuthor(ctx, q, args)
	if err != nil {
		return model.Author{}, r.mapAuthorErr("UpdateAuthor", err)
	}
	return updated, nil
}

func (r *repository) DeleteAuthor(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `delete from authors where id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return r.mapAuthorErr("DeleteAuthor", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrAuthorNotFound
	}
	return nil
}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	q := `
with b as (
    insert into books (id, title, description, isbn, published_year, genre, pages, author_id)
    values (@id, @title, @description, @isbn, @published_year, @genre, @pages, @author_id)
    returning *
)
select ` + strings.Join(bookColumns, ", ") + `
from b join authors a on a.id = b.author_id`
	args := bookArgs(book)
	args["id"] = uuid.NewString()

	created, err := r.collectBook(ctx, q, args)
	if err != nil {
		return model.Book{}, r.mapBookErr("CreateBook", err)
	}
	return created, nil
}

func (r *repository) UpdateBook(ctx context.Context, book model.Book) (model.Book, error) {
	q := `
with b as (
    update books
        set title = @title, description = @description, isbn = @isbn, published_year = @published_year,
            genre = @genre, pages = @pages, author_id = @author_id
    where id = @id
    returning *
)
select ` + strings.Join(bookColumns, ", ") + `
from b join authors a on a.id = b.author_id`
	args := bookArgs(book)
	args["id"] = book.ID

	updated, err := r.collectBook(ctx, q, args)
	if err != nil {
		return model.Book{}, r.mapBookErr("UpdateBook", err)
	}
	return updated, nil
}

func (r *repository) DeleteBook(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `delete from books where id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return r.mapBookErr("DeleteBook", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrBookNotFound
	}
	return nil
}

func (r *repository) GetBook(ctx context.Context, id string) (model.Book, error) {
	return r.getBook(ctx, sq.Eq{"b.id": id})
}

func (r *repository) GetBookByISBN(ctx context.Context, isbn string) (model.Book, error) {
	return r.getBook(ctx, sq.Eq{"b.isbn": isbn})
}

func (r *repository) getBook(ctx context.Context, where sq.Sqlizer) (model.Book, error) {
	query, args, err := booksSelect().
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	book, err := r.collectBook(ctx, query, args...)
	if err != nil {
		return model.Book{}, r.mapBookErr("GetBook", err)
	}
	return book, nil
}

func (r *repository) ListBooks(ctx context.Context, genre string) ([]model.Book, error) {
	q := booksSelect().OrderBy("b.created_at desc", "b.id asc")
	if genre != "" {
		q = q.Where(sq.Eq{"b.genre": genre})
	}
	return r.selectBooks(ctx, q)
}

func (r *repository) AuthorBooks(ctx context.Context, authorID string, order model.SortOrder) ([]model.Book, error) {
	q := booksSelect().
		Where(sq.Eq{"b.author_id": authorID}).
		OrderBy("b.published_year "+direction(order)+" nulls last", "b.created_at asc", "b.id asc")
	books, err := r.selectBooks(ctx, q)
	if err != nil {
		return nil, r.mapAuthorErr("AuthorBooks", err)
	}
	return books, nil
}

func (r *repository) SearchBooks(ctx context.Context, query model.BookQuery) ([]model.Book, error) {
	column, ok := sortColumns[query.SortBy]
	if !ok {
		column = sortColumns[model.SortByCreatedAt]
	}
	q := booksSelect().
		Where(bookFilter(query.BookFilter)).
		OrderBy(column+" "+direction(query.Order), "b.id asc").
		Limit(uint64(query.Limit)).
		Offset(uint64(query.Offset()))

	return r.selectBooks(ctx, q)
}

func (r *repository) CountBooks(ctx context.Context, filter model.BookFilter) (int, error) {
	query, args, err := qb.Select("count(*)").
		From(booksTableName + " b").
		Join(authorsTableName + " a on a.id = b.author_id").
		Where(bookFilter(filter)).
		ToSql()
	if err != nil {
		return 0, err
	}
	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) Summary(ctx context.Context) (model.CatalogSummary, error) {
	const q = `select (select count(*) from authors), (select count(*) from books)`
	var s model.CatalogSummary
	if err := r.db.QueryRow(ctx, q).Scan(&s.TotalAuthors, &s.TotalBooks); err != nil {
		return model.CatalogSummary{}, err
	}
	return s, nil
}

func direction(order model.SortOrder) string {
	if order == model.OrderAsc {
		return "asc"
	}
	return "desc"
}

func booksSelect() sq.SelectBuilder {
	return qb.Select(bookColumns...).
		From(booksTableName + " b").
		Join(authorsTableName + " a on a.id = b.author_id")
}

func bookFilter(f model.BookFilter) sq.And {
	and := sq.And{}
	if f.Search != "" {
		and = append(and, sq.ILike{"b.title": "%" + escapeLike(f.Search) + "%"})
	}
	if f.Genre != "" {
		and = append(and, sq.Eq{"b.genre": f.Genre})
	}
	if f.AuthorName != "" {
		and = append(and, sq.ILike{"a.name": "%" + escapeLike(f.AuthorName) + "%"})
	}
	return and
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func bookArgs(book model.Book) pgx.NamedArgs {
	return pgx.NamedArgs{
		"title":          book.Title,
		"description":    book.Description,
		"isbn":           book.ISBN,
		"published_year": book.PublishedYear,
		"genre":          book.Genre,
		"pages":          book.Pages,
		"author_id":      book.AuthorID,
	}
}

func (r *repository) selectBooks(ctx context.Context, q sq.SelectBuilder) ([]model.Book, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("selectBooks", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[bookRow])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	books := make([]model.Book, 0, len(items))
	for _, item := range items {
		books = append(books, item.toModel())
	}
	return books, nil
}

func (r *repository) collectBook(ctx context.Context, query string, args ...any) (model.Book, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Book{}, err
	}
	defer rows.Close()

	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[bookRow])
	if err != nil {
		return model.Book{}, err
	}
	return row.toModel(), nil
}

func (r *repository) collectAuthor(ctx context.Context, query string, args ...any) (model.Author, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Author{}, err
	}
	defer rows.Close()

	return pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Author])
}

func (r *repository) mapAuthorErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrAuthorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			if pgErr.ConstraintName == emailUniqueConstraint {
				return errs.ErrDuplicateEmail
			}
		case pgerrcode.ForeignKeyViolation:
			return errs.ErrAuthorHasBooks
		case pgerrcode.InvalidTextRepresentation:
			return errs.ErrAuthorNotFound
		}
	}
	r.log.Error(op, zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func (r *repository) mapBookErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrBookNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			if pgErr.ConstraintName == isbnUniqueConstraint {
				return errs.ErrDuplicateISBN
			}
		case pgerrcode.ForeignKeyViolation:
			return errs.ErrUnknownAuthor
		case pgerrcode.InvalidTextRepresentation:
			return errs.ErrBookNotFound
		}
	}
	r.log.Error(op, zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}
