package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Astemirdum/library-catalog/catalog/internal/model"
)

type Seeder interface {
	EnsureAuthor(ctx context.Context, author model.Author) (model.Author, bool, error)
	EnsureBook(ctx context.Context, book model.Book) (model.Book, bool, error)
}

type entry struct {
	author model.Author
	books  []model.Book
}

func ptr[T any](v T) *T { return &v }

var catalog = []entry{
	{
		author: model.Author{
			Name:        "Gabriel García Márquez",
			Email:       "gabo@example.com",
			Bio:         ptr("Escritor colombiano, premio Nobel de Literatura 1982"),
			Nationality: ptr("Colombiano"),
			BirthYear:   ptr(1927),
		},
		books: []model.Book{
			{
				Title:         "Cien años de soledad",
				Description:   "Una obra maestra del realismo mágico",
				ISBN:          ptr("978-0307474728"),
				PublishedYear: ptr(1967),
				Genre:         ptr("Realismo mágico"),
				Pages:         ptr(417),
			},
			{
				Title:         "El amor en los tiempos del cólera",
				Description:   "Una historia de amor que trasciende el tiempo",
				ISBN:          ptr("978-0307387370"),
				PublishedYear: ptr(1985),
				Genre:         ptr("Romance"),
				Pages:         ptr(368),
			},
		},
	},
	{
		author: model.Author{
			Name:        "Isabel Allende",
			Email:       "isabel@example.com",
			Bio:         ptr("Escritora chilena, una de las más leídas en español"),
			Nationality: ptr("Chilena"),
			BirthYear:   ptr(1942),
		},
		books: []model.Book{
			{
				Title:         "La casa de los espíritus",
				Description:   "Primera novela de Isabel Allende",
				ISBN:          ptr("978-1501117015"),
				PublishedYear: ptr(1982),
				Genre:         ptr("Ficción"),
				Pages:         ptr(448),
			},
		},
	},
	{
		author: model.Author{
			Name:        "Jorge Luis Borges",
			Email:       "borges@example.com",
			Bio:         ptr("Escritor argentino, maestro del cuento corto"),
			Nationality: ptr("Argentino"),
			BirthYear:   ptr(1899),
		},
		books: []model.Book{
			{
				Title:         "Ficciones",
				Description:   "Colección de cuentos de Borges",
				ISBN:          ptr("978-0142437223"),
				PublishedYear: ptr(1944),
				Genre:         ptr("Cuento"),
				Pages:         ptr(174),
			},
		},
	},
	{
		author: model.Author{
			Name:        "Julio Cortázar",
			Email:       "cortazar@example.com",
			Bio:         ptr("Escritor argentino, exponente del boom latinoamericano"),
			Nationality: ptr("Argentino"),
			BirthYear:   ptr(1914),
		},
		books: []model.Book{
			{
				Title:         "Rayuela",
				Description:   "Novela experimental de Cortázar",
				ISBN:          ptr("978-0394752846"),
				PublishedYear: ptr(1963),
				Genre:         ptr("Ficción experimental"),
				Pages:         ptr(600),
			},
		},
	},
}

type Result struct {
	Authors int `json:"authors"`
	Books   int `json:"books"`
}

// Run inserts the demo catalog. Records whose email or ISBN already exist are left untouched,
// so repeated runs are no-ops. The result counts inserted records only.
func Run(ctx context.Context, s Seeder, log *zap.Logger) (Result, error) {
	var res Result
	for _, e := range catalog {
		author, inserted, err := s.EnsureAuthor(ctx, e.author)
		if err != nil {
			return res, fmt.Errorf("seed author %s: %w", e.author.Email, err)
		}
		if inserted {
			res.Authors++
		}
		log.Debug("author", zap.String("email", author.Email), zap.Bool("inserted", inserted))

		for _, b := range e.books {
			b.AuthorID = author.ID
			book, inserted, err := s.EnsureBook(ctx, b)
			if err != nil {
				return res, fmt.Errorf("seed book %s: %w", *b.ISBN, err)
			}
			if inserted {
				res.Books++
			}
			log.Debug("book", zap.String("title", book.Title), zap.Bool("inserted", inserted))
		}
	}
	return res, nil
}
