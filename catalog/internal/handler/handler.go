package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-catalog/catalog/internal/errs"
	"github.com/Astemirdum/library-catalog/catalog/internal/model"
	md "github.com/Astemirdum/library-catalog/pkg/middleware"
	"github.com/Astemirdum/library-catalog/pkg/validate"
	_ "github.com/Astemirdum/library-catalog/swagger"
)

const internalErrorMessage = "internal server error"

type Handler struct {
	catalogSvc CatalogService
	auth       echo.MiddlewareFunc
	log        *zap.Logger
}

type Option func(h *Handler)

// WithAuth guards every write route with mw.
func WithAuth(mw echo.MiddlewareFunc) Option {
	return func(h *Handler) {
		h.auth = mw
	}
}

func New(catalogSvc CatalogService, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		catalogSvc: catalogSvc,
		log:        log.Named("handler"),
		auth:       func(next echo.HandlerFunc) echo.HandlerFunc { return next },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.HideBanner = true
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)
	h.Register(api)

	return e
}

// Register mounts the catalog routes on g.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/authors", h.ListAuthors)
	g.POST("/authors", h.CreateAuthor, h.auth)
	g.GET("/authors/:id", h.GetAuthor)
	g.PUT("/authors/:id", h.UpdateAuthor, h.auth)
	g.DELETE("/authors/:id", h.DeleteAuthor, h.auth)
	g.GET("/authors/:id/stats", h.AuthorStats)

	g.GET("/books", h.ListBooks)
	g.POST("/books", h.CreateBook, h.auth)
	g.GET("/books/search", h.SearchBooks)
	g.GET("/books/:id", h.GetBook)
	g.PUT("/books/:id", h.UpdateBook, h.auth)
	g.DELETE("/books/:id", h.DeleteBook, h.auth)

	g.GET("/summary", h.Summary)
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// ListAuthors godoc
// @Summary      List authors
// @Tags         authors
// @Produce      json
// @Success      200  {array}   model.AuthorListItem
// @Failure      500  {object}  errs.ErrorResponse
// @Router       /authors [get]
func (h *Handler) ListAuthors(c echo.Context) error {
	authors, err := h.catalogSvc.ListAuthors(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, authors)
}

// CreateAuthor godoc
// @Summary      Create author
// @Tags         authors
// @Accept       json
// @Produce      json
// @Param        author  body      model.CreateAuthorRequest  true  "author"
// @Success      201     {object}  model.Author
// @Failure      400     {object}  errs.ErrorResponse
// @Failure      409     {object}  errs.ErrorResponse
// @Router       /authors [post]
func (h *Handler) CreateAuthor(c echo.Context) error {
	var req model.CreateAuthorRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	author, err := h.catalogSvc.CreateAuthor(c.Request().Context(), req.Author())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, author)
}

// GetAuthor godoc
// @Summary      Author with books
// @Tags         authors
// @Produce      json
// @Param        id   path      string  true  "author id"
// @Success      200  {object}  model.AuthorDetails
// @Failure      404  {object}  errs.ErrorResponse
// @Router       /authors/{id} [get]
func (h *Handler) GetAuthor(c echo.Context) error {
	id, err := pathID(c, errs.ErrAuthorNotFound)
	if err != nil {
		return err
	}
	author, err := h.catalogSvc.GetAuthor(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, author)
}

// UpdateAuthor godoc
// @Summary      Update author
// @Tags         authors
// @Accept       json
// @Produce      json
// @Param        id      path      string                     true  "author id"
// @Param        author  body      model.UpdateAuthorRequest  true  "fields to replace"
// @Success      200     {object}  model.Author
// @Failure      400     {object}  errs.ErrorResponse
// @Failure      404     {object}  errs.ErrorResponse
// @Failure      409     {object}  errs.ErrorResponse
// @Router       /authors/{id} [put]
func (h *Handler) UpdateAuthor(c echo.Context) error {
	id, err := pathID(c, errs.ErrAuthorNotFound)
	if err != nil {
		return err
	}
	var req model.UpdateAuthorRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	author, err := h.catalogSvc.UpdateAuthor(c.Request().Context(), id, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, author)
}

// DeleteAuthor godoc
// @Summary      Delete author without books
// @Tags         authors
// @Produce      json
// @Param        id   path      string  true  "author id"
// @Success      200  {object}  model.MessageResponse
// @Failure      404  {object}  errs.ErrorResponse
// @Failure      409  {object}  errs.ErrorResponse
// @Router       /authors/{id} [delete]
func (h *Handler) DeleteAuthor(c echo.Context) error {
	id, err := pathID(c, errs.ErrAuthorNotFound)
	if err != nil {
		return err
	}
	if err := h.catalogSvc.DeleteAuthor(c.Request().Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, model.MessageResponse{Message: "author deleted"})
}

// AuthorStats godoc
// @Summary      Author statistics
// @Tags         authors
// @Produce      json
// @Param        id   path      string  true  "author id"
// @Success      200  {object}  model.AuthorStats
// @Failure      404  {object}  errs.ErrorResponse
// @Router       /authors/{id}/stats [get]
func (h *Handler) AuthorStats(c echo.Context) error {
	id, err := pathID(c, errs.ErrAuthorNotFound)
	if err != nil {
		return err
	}
	stats, err := h.catalogSvc.AuthorStats(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// ListBooks godoc
// @Summary      List books
// @Tags         books
// @Produce      json
// @Param        genre  query     string  false  "exact genre"
// @Success      200    {array}   model.Book
// @Failure      500    {object}  errs.ErrorResponse
// @Router       /books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	books, err := h.catalogSvc.ListBooks(c.Request().Context(), c.QueryParam("genre"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

// CreateBook godoc
// @Summary      Create book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        book  body      model.CreateBookRequest  true  "book"
// @Success      201   {object}  model.Book
// @Failure      400   {object}  errs.ErrorResponse
// @Failure      404   {object}  errs.ErrorResponse
// @Failure      409   {object}  errs.ErrorResponse
// @Router       /books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	book, err := h.catalogSvc.CreateBook(c.Request().Context(), req.Book())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, book)
}

// SearchBooks godoc
// @Summary      Search books
// @Tags         books
// @Produce      json
// @Param        search      query     string  false  "title substring"
// @Param        genre       query     string  false  "exact genre"
// @Param        authorName  query     string  false  "author name substring"
// @Param        page        query     int     false  "page, default 1"
// @Param        limit       query     int     false  "page size, default 10, max 50"
// @Param        sortBy      query     string  false  "title, publishedYear or createdAt"
// @Param        order       query     string  false  "asc or desc"
// @Success      200         {object}  model.BookPage
// @Failure      500         {object}  errs.ErrorResponse
// @Router       /books/search [get]
func (h *Handler) SearchBooks(c echo.Context) error {
	var params model.BookQueryParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	page, err := h.catalogSvc.SearchBooks(c.Request().Context(), params.Normalize())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// GetBook godoc
// @Summary      Get book
// @Tags         books
// @Produce      json
// @Param        id   path      string  true  "book id"
// @Success      200  {object}  model.Book
// @Failure      404  {object}  errs.ErrorResponse
// @Router       /books/{id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	id, err := pathID(c, errs.ErrBookNotFound)
	if err != nil {
		return err
	}
	book, err := h.catalogSvc.GetBook(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, book)
}

// UpdateBook godoc
// @Summary      Update book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "book id"
// @Param        book  body      model.UpdateBookRequest  true  "fields to replace"
// @Success      200   {object}  model.Book
// @Failure      400   {object}  errs.ErrorResponse
// @Failure      404   {object}  errs.ErrorResponse
// @Failure      409   {object}  errs.ErrorResponse
// @Router       /books/{id} [put]
func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := pathID(c, errs.ErrBookNotFound)
	if err != nil {
		return err
	}
	var req model.UpdateBookRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	book, err := h.catalogSvc.UpdateBook(c.Request().Context(), id, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, book)
}

// DeleteBook godoc
// @Summary      Delete book
// @Tags         books
// @Produce      json
// @Param        id   path      string  true  "book id"
// @Success      200  {object}  model.MessageResponse
// @Failure      404  {object}  errs.ErrorResponse
// @Router       /books/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := pathID(c, errs.ErrBookNotFound)
	if err != nil {
		return err
	}
	if err := h.catalogSvc.DeleteBook(c.Request().Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, model.MessageResponse{Message: "book deleted"})
}

// Summary godoc
// @Summary      Catalog totals
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  model.CatalogSummary
// @Failure      500  {object}  errs.ErrorResponse
// @Router       /summary [get]
func (h *Handler) Summary(c echo.Context) error {
	sum, err := h.catalogSvc.Summary(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return h.fail(c, errs.Validation(err.Error()))
	}
	return nil
}

// fail translates err into the HTTP response. Internal causes are logged, never returned.
func (h *Handler) fail(c echo.Context, err error) error {
	var code int
	switch errs.KindOf(err) {
	case errs.KindValidation:
		code = http.StatusBadRequest
	case errs.KindNotFound, errs.KindReferential:
		code = http.StatusNotFound
	case errs.KindConflict:
		code = http.StatusConflict
	default:
		h.log.Error("request failed",
			zap.String("path", c.Path()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, internalErrorMessage)
	}
	return echo.NewHTTPError(code, err.Error())
}

// pathID returns the :id parameter. Ids that are not UUIDs cannot exist and are reported as notFound.
func pathID(c echo.Context, notFound error) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", echo.NewHTTPError(http.StatusNotFound, notFound.Error())
	}
	return id, nil
}
