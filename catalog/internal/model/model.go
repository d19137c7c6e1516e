package model

import (
	"strings"
	"time"
)

type Author struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Bio         *string   `json:"bio" db:"bio"`
	Nationality *string   `json:"nationality" db:"nationality"`
	BirthYear   *int      `json:"birthYear" db:"birth_year"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// AuthorRef is the reduced author projection embedded into book responses.
type AuthorRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (a Author) Ref() *AuthorRef {
	return &AuthorRef{ID: a.ID, Name: a.Name, Email: a.Email}
}

type AuthorListItem struct {
	Author    `json:",inline"`
	BookCount int `json:"bookCount" db:"book_count"`
}

type AuthorDetails struct {
	Author `json:",inline"`
	Books  []Book `json:"books"`
}

type Book struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	ISBN          *string    `json:"isbn"`
	PublishedYear *int       `json:"publishedYear"`
	Genre         *string    `json:"genre"`
	Pages         *int       `json:"pages"`
	AuthorID      string     `json:"authorId"`
	CreatedAt     time.Time  `json:"createdAt"`
	Author        *AuthorRef `json:"author,omitempty"`
}

type CatalogSummary struct {
	TotalAuthors int `json:"totalAuthors"`
	TotalBooks   int `json:"totalBooks"`
}

type CreateAuthorRequest struct {
	Name        string  `json:"name" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Bio         *string `json:"bio"`
	Nationality *string `json:"nationality"`
	BirthYear   *int    `json:"birthYear" validate:"omitempty,min=1,notfuture"`
}

func (r CreateAuthorRequest) Author() Author {
	return Author{
		Name:        r.Name,
		Email:       r.Email,
		Bio:         nonEmpty(r.Bio),
		Nationality: nonEmpty(r.Nationality),
		BirthYear:   r.BirthYear,
	}
}

type UpdateAuthorRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Bio         *string `json:"bio"`
	Nationality *string `json:"nationality"`
	BirthYear   *int    `json:"birthYear" validate:"omitempty,min=1,notfuture"`
}

// Apply returns a copy of a with every supplied field replaced.
// An empty string clears an optional text field.
func (r UpdateAuthorRequest) Apply(a Author) Author {
	if r.Name != nil {
		a.Name = *r.Name
	}
	if r.Email != nil {
		a.Email = *r.Email
	}
	if r.Bio != nil {
		a.Bio = nonEmpty(r.Bio)
	}
	if r.Nationality != nil {
		a.Nationality = nonEmpty(r.Nationality)
	}
	if r.BirthYear != nil {
		a.BirthYear = r.BirthYear
	}
	return a
}

type CreateBookRequest struct {
	Title         string  `json:"title" validate:"required"`
	Description   string  `json:"description" validate:"required"`
	ISBN          *string `json:"isbn"`
	PublishedYear *int    `json:"publishedYear" validate:"omitempty,min=1000,notfuture"`
	Genre         *string `json:"genre"`
	Pages         *int    `json:"pages" validate:"omitempty,gt=0"`
	AuthorID      string  `json:"authorId" validate:"required"`
}

func (r CreateBookRequest) Book() Book {
	return Book{
		Title:         r.Title,
		Description:   r.Description,
		ISBN:          nonEmpty(r.ISBN),
		PublishedYear: r.PublishedYear,
		Genre:         nonEmpty(r.Genre),
		Pages:         r.Pages,
		AuthorID:      r.AuthorID,
	}
}

type UpdateBookRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=1"`
	Description   *string `json:"description" validate:"omitempty,min=1"`
	ISBN          *string `json:"isbn"`
	PublishedYear *int    `json:"publishedYear" validate:"omitempty,min=1000,notfuture"`
	Genre         *string `json:"genre"`
	Pages         *int    `json:"pages" validate:"omitempty,gt=0"`
	AuthorID      *string `json:"authorId" validate:"omitempty,min=1"`
}

// Apply returns a copy of b with every supplied field replaced.
// An empty string clears an optional text field.
func (r UpdateBookRequest) Apply(b Book) Book {
	if r.Title != nil {
		b.Title = *r.Title
	}
	if r.Description != nil {
		b.Description = *r.Description
	}
	if r.ISBN != nil {
		b.ISBN = nonEmpty(r.ISBN)
	}
	if r.PublishedYear != nil {
		b.PublishedYear = r.PublishedYear
	}
	if r.Genre != nil {
		b.Genre = nonEmpty(r.Genre)
	}
	if r.Pages != nil {
		b.Pages = r.Pages
	}
	if r.AuthorID != nil {
		b.AuthorID = *r.AuthorID
	}
	return b
}

type MessageResponse struct {
	Message string `json:"message"`
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}
