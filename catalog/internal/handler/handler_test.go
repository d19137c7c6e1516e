package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-catalog/catalog/internal/errs"
	"github.com/Astemirdum/library-catalog/catalog/internal/handler"
	"github.com/Astemirdum/library-catalog/catalog/internal/model"
	"github.com/Astemirdum/library-catalog/pkg/validate"

	service_mocks "github.com/Astemirdum/library-catalog/catalog/internal/handler/mocks"
)

const (
	authorID = "0b6c7a4e-1f55-4d2e-9c1b-4a3f0d8e2c11"
	bookID   = "f7cdc58f-2caf-4b15-9727-f89dcc629b27"
)

var createdAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type response struct {
	expectedCode int
	expectedBody string
}

func serve(t *testing.T, mockBehavior func(r *service_mocks.MockCatalogService), method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	c := gomock.NewController(t)
	defer c.Finish()
	svc := service_mocks.NewMockCatalogService(c)
	mockBehavior(svc)
	h := handler.New(svc, zap.NewExample().Named("test"))

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	h.Register(e.Group("/api/v1"))

	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)
	return w
}

func sampleBook() model.Book {
	return model.Book{
		ID:            bookID,
		Title:         "Cien años de soledad",
		Description:   "La historia de la familia Buendía",
		ISBN:          ptr("978-0307474728"),
		PublishedYear: ptr(1967),
		Pages:         ptr(417),
		AuthorID:      authorID,
		CreatedAt:     createdAt,
		Author:        &model.AuthorRef{ID: authorID, Name: "Gabriel García Márquez", Email: "gabo@example.com"},
	}
}

const sampleBookJSON = `{"id":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","title":"Cien años de soledad","description":"La historia de la familia Buendía","isbn":"978-0307474728","publishedYear":1967,"genre":null,"pages":417,"authorId":"0b6c7a4e-1f55-4d2e-9c1b-4a3f0d8e2c11","createdAt":"2024-01-02T03:04:05Z","author":{"id":"0b6c7a4e-1f55-4d2e-9c1b-4a3f0d8e2c11","name":"Gabriel García Márquez","email":"gabo@example.com"}}`

func TestHandler_CreateBook(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockCatalogService)

	validBody := fmt.Sprintf(`{"title":"Cien años de soledad","description":"La historia de la familia Buendía","isbn":"978-0307474728","publishedYear":1967,"pages":417,"authorId":"%s"}`, authorID)
	input := model.Book{
		Title:         "Cien años de soledad",
		Description:   "La historia de la familia Buendía",
		ISBN:          ptr("978-0307474728"),
		PublishedYear: ptr(1967),
		Pages:         ptr(417),
		AuthorID:      authorID,
	}

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().CreateBook(gomock.Any(), input).Return(sampleBook(), nil)
			},
			body:     validBody,
			response: response{expectedCode: http.StatusCreated, expectedBody: sampleBookJSON},
		},
		{
			name:         "err. required fields",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			body:         `{}`,
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"title is required; description is required; authorId is required"}`,
			},
		},
		{
			name:         "err. ranges",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			body:         fmt.Sprintf(`{"title":"t","description":"d","publishedYear":999,"pages":0,"authorId":"%s"}`, authorID),
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"publishedYear must be at least 1000; pages must be greater than 0"}`,
			},
		},
		{
			name:         "err. malformed body",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			body:         `{"title":`,
			response:     response{expectedCode: http.StatusBadRequest, expectedBody: `{"message":"invalid request body"}`},
		},
		{
			name: "err. unknown author",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().CreateBook(gomock.Any(), input).Return(model.Book{}, errs.ErrUnknownAuthor)
			},
			body:     validBody,
			response: response{expectedCode: http.StatusNotFound, expectedBody: `{"message":"the specified author does not exist"}`},
		},
		{
			name: "err. duplicate isbn",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().CreateBook(gomock.Any(), input).Return(model.Book{}, errs.ErrDuplicateISBN)
			},
			body:     validBody,
			response: response{expectedCode: http.StatusConflict, expectedBody: `{"message":"isbn is already registered"}`},
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().CreateBook(gomock.Any(), input).Return(model.Book{}, errors.New("connection reset by peer"))
			},
			body:     validBody,
			response: response{expectedCode: http.StatusInternalServerError, expectedBody: `{"message":"internal server error"}`},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := serve(t, tt.mockBehavior, http.MethodPost, "/api/v1/books", tt.body)
			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_SearchBooks(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockCatalogService)

	var tests = []struct {
		name         string
		query        string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:  "ok. defaults",
			query: "",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					SearchBooks(gomock.Any(), model.BookQuery{Page: 1, Limit: 10, SortBy: model.SortByCreatedAt, Order: model.OrderDesc}).
					Return(model.BookPage{Data: []model.Book{sampleBook()}, Pagination: model.NewPagination(1, 10, 1)}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"data":[` + sampleBookJSON + `],"pagination":{"page":1,"limit":10,"total":1,"totalPages":1,"hasNext":false,"hasPrev":false}}`,
			},
		},
		{
			name:  "ok. fallbacks and cap",
			query: "?search=soledad&genre=Ficci%C3%B3n&authorName=garcia&page=x&limit=100&sortBy=invalidField&order=sideways",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					SearchBooks(gomock.Any(), model.BookQuery{
						BookFilter: model.BookFilter{Search: "soledad", Genre: "Ficción", AuthorName: "garcia"},
						Page:       1,
						Limit:      50,
						SortBy:     model.SortByCreatedAt,
						Order:      model.OrderDesc,
					}).
					Return(model.BookPage{Data: []model.Book{}, Pagination: model.NewPagination(1, 50, 0)}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"data":[],"pagination":{"page":1,"limit":50,"total":0,"totalPages":0,"hasNext":false,"hasPrev":false}}`,
			},
		},
		{
			name:  "ok. explicit sort",
			query: "?page=3&limit=10&sortBy=publishedYear&order=asc",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					SearchBooks(gomock.Any(), model.BookQuery{Page: 3, Limit: 10, SortBy: model.SortByPublishedYear, Order: model.OrderAsc}).
					Return(model.BookPage{Data: []model.Book{}, Pagination: model.NewPagination(3, 10, 23)}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"data":[],"pagination":{"page":3,"limit":10,"total":23,"totalPages":3,"hasNext":false,"hasPrev":true}}`,
			},
		},
		{
			name:  "err. internal",
			query: "",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().SearchBooks(gomock.Any(), gomock.Any()).Return(model.BookPage{}, errors.New("query failed: timeout"))
			},
			response: response{expectedCode: http.StatusInternalServerError, expectedBody: `{"message":"internal server error"}`},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := serve(t, tt.mockBehavior, http.MethodGet, "/api/v1/books/search"+tt.query, "")
			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Books(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockCatalogService)

	var tests = []struct {
		name         string
		method       string
		target       string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "get ok",
			method: http.MethodGet,
			target: "/api/v1/books/" + bookID,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().GetBook(gomock.Any(), bookID).Return(sampleBook(), nil)
			},
			response: response{expectedCode: http.StatusOK, expectedBody: sampleBookJSON},
		},
		{
			name:         "get. id is not uuid",
			method:       http.MethodGet,
			target:       "/api/v1/books/42",
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			response:     response{expectedCode: http.StatusNotFound, expectedBody: `{"message":"book not found"}`},
		},
		{
			name:   "get. not found",
			method: http.MethodGet,
			target: "/api/v1/books/" + bookID,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().GetBook(gomock.Any(), bookID).Return(model.Book{}, errs.ErrBookNotFound)
			},
			response: response{expectedCode: http.StatusNotFound, expectedBody: `{"message":"book not found"}`},
		},
		{
			name:   "list by genre",
			method: http.MethodGet,
			target: "/api/v1/books?genre=Romance",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().ListBooks(gomock.Any(), "Romance").Return([]model.Book{}, nil)
			},
			response: response{expectedCode: http.StatusOK, expectedBody: `[]`},
		},
		{
			name:   "update ok",
			method: http.MethodPut,
			target: "/api/v1/books/" + bookID,
			body:   `{"pages":417,"genre":""}`,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					UpdateBook(gomock.Any(), bookID, model.UpdateBookRequest{Pages: ptr(417), Genre: ptr("")}).
					Return(sampleBook(), nil)
			},
			response: response{expectedCode: http.StatusOK, expectedBody: sampleBookJSON},
		},
		{
			name:   "update. duplicate isbn",
			method: http.MethodPut,
			target: "/api/v1/books/" + bookID,
			body:   `{"isbn":"978-0307387370"}`,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					UpdateBook(gomock.Any(), bookID, model.UpdateBookRequest{ISBN: ptr("978-0307387370")}).
					Return(model.Book{}, errs.ErrDuplicateISBN)
			},
			response: response{expectedCode: http.StatusConflict, expectedBody: `{"message":"isbn is already registered"}`},
		},
		{
			name:         "update. future year",
			method:       http.MethodPut,
			target:       "/api/v1/books/" + bookID,
			body:         fmt.Sprintf(`{"publishedYear":%d}`, time.Now().Year()+1),
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			response:     response{expectedCode: http.StatusBadRequest, expectedBody: `{"message":"publishedYear must not be in the future"}`},
		},
		{
			name:   "delete ok",
			method: http.MethodDelete,
			target: "/api/v1/books/" + bookID,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().DeleteBook(gomock.Any(), bookID).Return(nil)
			},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"message":"book deleted"}`},
		},
		{
			name:   "delete. not found",
			method: http.MethodDelete,
			target: "/api/v1/books/" + bookID,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().DeleteBook(gomock.Any(), bookID).Return(errs.ErrBookNotFound)
			},
			response: response{expectedCode: http.StatusNotFound, expectedBody: `{"message":"book not found"}`},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := serve(t, tt.mockBehavior, tt.method, tt.target, tt.body)
			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Authors(t *testing.T) {
	t.Parallel()
	type mockBehavior func(r *service_mocks.MockCatalogService)

	author := model.Author{ID: authorID, Name: "Isabel Allende", Email: "isabel@example.com", BirthYear: ptr(1942), CreatedAt: createdAt}
	authorJSON := `{"id":"0b6c7a4e-1f55-4d2e-9c1b-4a3f0d8e2c11","name":"Isabel Allende","email":"isabel@example.com","bio":null,"nationality":null,"birthYear":1942,"createdAt":"2024-01-02T03:04:05Z"}`

	var tests = []struct {
		name         string
		method       string
		target       string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "create ok",
			method: http.MethodPost,
			target: "/api/v1/authors",
			body:   `{"name":"Isabel Allende","email":"isabel@example.com","birthYear":1942,"bio":""}`,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					CreateAuthor(gomock.Any(), model.Author{Name: "Isabel Allende", Email: "isabel@example.com", BirthYear: ptr(1942)}).
					Return(author, nil)
			},
			response: response{expectedCode: http.StatusCreated, expectedBody: authorJSON},
		},
		{
			name:         "create. invalid email",
			method:       http.MethodPost,
			target:       "/api/v1/authors",
			body:         `{"name":"Isabel Allende","email":"isabel"}`,
			mockBehavior: func(r *service_mocks.MockCatalogService) {},
			response:     response{expectedCode: http.StatusBadRequest, expectedBody: `{"message":"email must be a valid email"}`},
		},
		{
			name:   "create. duplicate email",
			method: http.MethodPost,
			target: "/api/v1/authors",
			body:   `{"name":"Isabel Allende","email":"isabel@example.com"}`,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().CreateAuthor(gomock.Any(), gomock.Any()).Return(model.Author{}, errs.ErrDuplicateEmail)
			},
			response: response{expectedCode: http.StatusConflict, expectedBody: `{"message":"email is already registered"}`},
		},
		{
			name:   "list",
			method: http.MethodGet,
			target: "/api/v1/authors",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().ListAuthors(gomock.Any()).Return([]model.AuthorListItem{{Author: author, BookCount: 2}}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[` + strings.TrimSuffix(authorJSON, "}") + `,"bookCount":2}]`,
			},
		},
		{
			name:   "details",
			method: http.MethodGet,
			target: "/api/v1/authors/" + authorID,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().GetAuthor(gomock.Any(), authorID).Return(model.AuthorDetails{Author: author, Books: []model.Book{}}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: strings.TrimSuffix(authorJSON, "}") + `,"books":[]}`,
			},
		},
		{
			name:   "update. not found",
			method: http.MethodPut,
			target: "/api/v1/authors/" + authorID,
			body:   `{"name":"Isabel"}`,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().
					UpdateAuthor(gomock.Any(), authorID, model.UpdateAuthorRequest{Name: ptr("Isabel")}).
					Return(model.Author{}, errs.ErrAuthorNotFound)
			},
			response: response{expectedCode: http.StatusNotFound, expectedBody: `{"message":"author not found"}`},
		},
		{
			name:   "delete. has books",
			method: http.MethodDelete,
			target: "/api/v1/authors/" + authorID,
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().DeleteAuthor(gomock.Any(), authorID).Return(errs.ErrAuthorHasBooks)
			},
			response: response{expectedCode: http.StatusConflict, expectedBody: `{"message":"author still has books"}`},
		},
		{
			name:   "stats. no books",
			method: http.MethodGet,
			target: "/api/v1/authors/" + authorID + "/stats",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().AuthorStats(gomock.Any(), authorID).Return(model.AuthorStats{
					AuthorID:   authorID,
					AuthorName: "Isabel Allende",
					BookStats:  model.BookStats{Genres: []string{}},
				}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"authorId":"0b6c7a4e-1f55-4d2e-9c1b-4a3f0d8e2c11","authorName":"Isabel Allende","totalBooks":0,"firstBook":null,"latestBook":null,"averagePages":0,"genres":[],"longestBook":null,"shortestBook":null}`,
			},
		},
		{
			name:   "stats. not found",
			method: http.MethodGet,
			target: "/api/v1/authors/" + authorID + "/stats",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().AuthorStats(gomock.Any(), authorID).Return(model.AuthorStats{}, errs.ErrAuthorNotFound)
			},
			response: response{expectedCode: http.StatusNotFound, expectedBody: `{"message":"author not found"}`},
		},
		{
			name:   "summary",
			method: http.MethodGet,
			target: "/api/v1/summary",
			mockBehavior: func(r *service_mocks.MockCatalogService) {
				r.EXPECT().Summary(gomock.Any()).Return(model.CatalogSummary{TotalAuthors: 4, TotalBooks: 5}, nil)
			},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"totalAuthors":4,"totalBooks":5}`},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := serve(t, tt.mockBehavior, tt.method, tt.target, tt.body)
			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_WithAuth(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	svc := service_mocks.NewMockCatalogService(c)
	svc.EXPECT().ListBooks(gomock.Any(), "").Return([]model.Book{}, nil)

	deny := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "no Authorization header")
		}
	}
	e := handler.New(svc, zap.NewExample(), handler.WithAuth(deny)).NewRouter()

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/books", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/books", strings.NewReader(`{}`))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	e.ServeHTTP(w, r)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/manage/health", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
}
