package categories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/database"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
	"github.com/rakbuku/rakbuku/pkg/models"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// findOrCreateAttempts bounds how often FindOrCreateCategory re-reads after
// losing an insert race.
const findOrCreateAttempts = 3

type RetrieveCategoryOptions struct {
	ID   *string
	Name *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveCategory(ctx context.Context, opts RetrieveCategoryOptions) (*models.Category, error) {
	category := &models.Category{}

	q := svc.db.
		NewSelect().
		Model(category)

	if opts.ID != nil {
		q = q.Where("c.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		// Exact match
		q = q.Where("c.name = ?", *opts.Name)
	}

	err := q.Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Category")
		}
		return nil, errors.WithStack(err)
	}

	return category, nil
}

// FindOrCreateCategory returns the category with the given name, creating it
// if it doesn't exist. Concurrent callers with the same new name end up with
// the same row: the insert is a no-op on conflict and the row is re-read.
func (svc *Service) FindOrCreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errcodes.ValidationError("Category name can't be empty")
	}

	var lastErr error
	for attempt := 0; attempt < findOrCreateAttempts; attempt++ {
		category, err := svc.RetrieveCategory(ctx, RetrieveCategoryOptions{Name: &name})
		if err == nil {
			return category, nil
		}
		if !errors.Is(err, errcodes.NotFound("Category")) {
			return nil, err
		}

		err = svc.insertCategory(ctx, name)
		if err != nil && !database.IsUniqueViolation(err) {
			return nil, err
		}
		if err != nil {
			logger.FromContext(ctx).Info("category insert lost a race", logger.Data{"name": name, "attempt": attempt + 1})
			lastErr = err
		}
	}

	category, err := svc.RetrieveCategory(ctx, RetrieveCategoryOptions{Name: &name})
	if err == nil {
		return category, nil
	}
	if lastErr != nil {
		return nil, errors.WithStack(lastErr)
	}
	return nil, err
}

func (svc *Service) insertCategory(ctx context.Context, name string) error {
	category := &models.Category{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Name:      name,
	}
	_, err := svc.db.
		NewInsert().
		Model(category).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories := []*models.Category{}

	err := svc.db.
		NewSelect().
		Model(&categories).
		Order("c.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return categories, nil
}
