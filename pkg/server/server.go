package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/auth"
	"github.com/rakbuku/rakbuku/pkg/binder"
	"github.com/rakbuku/rakbuku/pkg/books"
	"github.com/rakbuku/rakbuku/pkg/categories"
	"github.com/rakbuku/rakbuku/pkg/config"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
	"github.com/rakbuku/rakbuku/pkg/identity"
	"github.com/rakbuku/rakbuku/pkg/profiles"
	"github.com/rakbuku/rakbuku/pkg/revalidate"
	"github.com/rakbuku/rakbuku/pkg/storage"
	"github.com/rakbuku/rakbuku/pkg/testutils"
	"github.com/rakbuku/rakbuku/pkg/uploads"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

// jsonBodyLimit caps every request body except uploads, which enforce their
// own ceiling.
const jsonBodyLimit = "1M"

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e, err := newEcho(cfg, db)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/upload"
		},
		Limit: jsonBodyLimit,
	}))

	health.RegisterRoutes(e)

	provider := identity.New(cfg, db)
	profileService := profiles.NewService(db)
	authMiddleware := auth.RegisterRoutes(e, provider, profileService)

	categoryService := categories.NewService(db)
	categories.RegisterRoutesWithGroup(e.Group("/categories"), categoryService)

	store := storage.New(cfg)
	if local, ok := store.(*storage.LocalStorage); ok {
		e.Static(storage.PublicPathPrefix+local.Bucket(), local.Root())
	}

	bookService := books.NewService(db, categoryService, store, revalidate.New(cfg))
	books.RegisterRoutesWithGroup(e.Group("/books"), bookService, authMiddleware)

	uploads.RegisterRoutes(e, uploads.NewService(store, cfg.UploadMaxBytes), authMiddleware)

	if cfg.IsTest() {
		testutils.RegisterRoutes(e, provider, profileService, bookService)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler(cfg.ExposeInternalErrors).Handle

	return e, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
