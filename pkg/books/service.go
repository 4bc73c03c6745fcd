package books

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/categories"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
	"github.com/rakbuku/rakbuku/pkg/models"
	"github.com/rakbuku/rakbuku/pkg/revalidate"
	"github.com/rakbuku/rakbuku/pkg/storage"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// Kinds accepted by ListBooksOptions.Kind.
const (
	KindFiction    = "fiction"
	KindNonFiction = "nonfiction"
)

// relatedBooksLimit is how many books ListRelatedBooks returns at most.
const relatedBooksLimit = 4

type ListBooksOptions struct {
	Search *string
	Kind   *string
}

// BookInput holds the writable fields of a book. Create and Update take the
// same input.
type BookInput struct {
	Title            string
	Author           string
	Publisher        string
	Year             int
	Description      *string
	Cover            *string
	ExternalLink     *string
	// KeepExternalLink leaves a stored link as it is on update, ignoring
	// ExternalLink.
	KeepExternalLink bool
	CategoryName     string
}

// Validate checks that every mandatory field is present. A year that isn't
// positive counts as missing.
func (in BookInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" ||
		strings.TrimSpace(in.Author) == "" ||
		strings.TrimSpace(in.Publisher) == "" ||
		in.Year <= 0 ||
		strings.TrimSpace(in.CategoryName) == "" {
		return errcodes.MissingRequiredFields()
	}
	return nil
}

type Service struct {
	db              *bun.DB
	categoryService *categories.Service
	storage         storage.Storage
	invalidator     revalidate.Invalidator
}

func NewService(db *bun.DB, categoryService *categories.Service, store storage.Storage, invalidator revalidate.Invalidator) *Service {
	return &Service{
		db:              db,
		categoryService: categoryService,
		storage:         store,
		invalidator:     invalidator,
	}
}

// ListBooks returns every book, newest first, with its category. Search and
// kind filters are applied in-process.
func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	var books []*models.Book

	err := svc.db.
		NewSelect().
		Model(&books).
		Relation("Category").
		Order("b.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if opts.Kind != nil && *opts.Kind != "" {
		books = filterByKind(books, *opts.Kind)
	}
	if opts.Search != nil && strings.TrimSpace(*opts.Search) != "" {
		books = Search(books, *opts.Search)
	}

	return books, nil
}

// Search keeps the books whose title, author, publisher or description
// contains the query, ignoring case.
func Search(books []*models.Book, query string) []*models.Book {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return books
	}

	matches := make([]*models.Book, 0, len(books))
	for _, b := range books {
		fields := []string{b.Title, b.Author, b.Publisher}
		if b.Description != nil {
			fields = append(fields, *b.Description)
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				matches = append(matches, b)
				break
			}
		}
	}
	return matches
}

func filterByKind(books []*models.Book, kind string) []*models.Book {
	matches := make([]*models.Book, 0, len(books))
	for _, b := range books {
		if b.Category == nil {
			continue
		}
		switch kind {
		case KindFiction:
			if b.Category.IsFiction() {
				matches = append(matches, b)
			}
		case KindNonFiction:
			if b.Category.IsNonFiction() {
				matches = append(matches, b)
			}
		}
	}
	return matches
}

// RetrieveBook fetches a book by id and then its category.
func (svc *Service) RetrieveBook(ctx context.Context, id string) (*models.Book, error) {
	book := &models.Book{}

	err := svc.db.
		NewSelect().
		Model(book).
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	if book.CategoryID != nil {
		category, err := svc.categoryService.RetrieveCategory(ctx, categories.RetrieveCategoryOptions{ID: book.CategoryID})
		if err != nil && !errors.Is(err, errcodes.NotFound("Category")) {
			return nil, err
		}
		book.Category = category
	}

	return book, nil
}

// ListRelatedBooks returns up to four other books by the same author.
func (svc *Service) ListRelatedBooks(ctx context.Context, id string) ([]*models.Book, error) {
	book, err := svc.RetrieveBook(ctx, id)
	if err != nil {
		return nil, err
	}

	books := []*models.Book{}
	err = svc.db.
		NewSelect().
		Model(&books).
		Relation("Category").
		Where("LOWER(b.penulis) = LOWER(?)", book.Author).
		Where("b.id != ?", book.ID).
		Order("b.created_at DESC").
		Limit(relatedBooksLimit).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

// CreateBook resolves the category, inserts the book and marks the listing
// views stale. The category is committed on its own, so a failed insert can
// leave an unused category behind.
func (svc *Service) CreateBook(ctx context.Context, in BookInput) (*models.Book, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	category, err := svc.categoryService.FindOrCreateCategory(ctx, in.CategoryName)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	book := &models.Book{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyInput(book, in, category)

	_, err = svc.db.
		NewInsert().
		Model(book).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("book created", logger.Data{"book_id": book.ID, "category": category.Name})
	revalidate.Notify(ctx, svc.invalidator, revalidate.HomeView, revalidate.FictionView, revalidate.NonFictionView)

	return book, nil
}

// UpdateBook replaces the writable fields of an existing book. A category
// name that doesn't exist yet is created, same as on create.
func (svc *Service) UpdateBook(ctx context.Context, id string, in BookInput) (*models.Book, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	book, err := svc.RetrieveBook(ctx, id)
	if err != nil {
		return nil, err
	}

	category, err := svc.categoryService.FindOrCreateCategory(ctx, in.CategoryName)
	if err != nil {
		return nil, err
	}

	applyInput(book, in, category)
	book.UpdatedAt = time.Now()

	res, err := svc.db.
		NewUpdate().
		Model(book).
		Column("judul", "penulis", "penerbit", "tahun", "deskripsi", "cover", "link_eksternal", "category_id", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, errcodes.NotFound("Book")
	}

	revalidate.Notify(ctx, svc.invalidator,
		revalidate.HomeView, revalidate.FictionView, revalidate.NonFictionView, revalidate.DetailView(book.ID))

	return book, nil
}

// DeleteBook removes the book row and then, best effort, its cover object.
// Deleting a book that doesn't exist succeeds.
func (svc *Service) DeleteBook(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	var cover sql.NullString
	err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		Column("cover").
		Where("b.id = ?", id).
		Scan(ctx, &cover)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return errors.WithStack(err)
	}

	_, err = svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	if cover.Valid && cover.String != "" {
		if name, ok := svc.storage.ObjectName(cover.String); ok {
			if err := svc.storage.Delete(ctx, name); err != nil {
				log.Warn("failed to delete cover", logger.Data{"book_id": id, "object": name, "error": err.Error()})
			}
		}
	}

	revalidate.Notify(ctx, svc.invalidator, revalidate.HomeView, revalidate.FictionView, revalidate.NonFictionView)

	return nil
}

// DeleteAllBooks clears the books table and returns how many rows were
// removed.
func (svc *Service) DeleteAllBooks(ctx context.Context) (int64, error) {
	res, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("1=1").
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func applyInput(book *models.Book, in BookInput, category *models.Category) {
	book.Title = strings.TrimSpace(in.Title)
	book.Author = strings.TrimSpace(in.Author)
	book.Publisher = strings.TrimSpace(in.Publisher)
	book.Year = in.Year
	book.Description = blankToNil(in.Description)
	book.Cover = blankToNil(in.Cover)
	if !in.KeepExternalLink {
		book.ExternalLink = blankToNil(in.ExternalLink)
	}
	book.CategoryID = &category.ID
	book.Category = category
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
