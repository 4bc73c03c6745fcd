package profiles

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/rakbuku/rakbuku/pkg/errcodes"
	"github.com/rakbuku/rakbuku/pkg/models"
	"github.com/uptrace/bun"
)

type UpdateProfileOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateProfile stores a profile for a freshly registered user. Profiles
// default to members.
func (svc *Service) CreateProfile(ctx context.Context, profile *models.Profile) error {
	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = profile.CreatedAt
	if profile.RoleName == "" {
		profile.RoleName = string(models.RoleMember)
	}

	_, err := svc.db.
		NewInsert().
		Model(profile).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile := &models.Profile{}

	err := svc.db.
		NewSelect().
		Model(profile).
		Where("p.id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Profile")
		}
		return nil, errors.WithStack(err)
	}

	return profile, nil
}

func (svc *Service) UpdateProfile(ctx context.Context, profile *models.Profile, opts UpdateProfileOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	profile.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	res, err := svc.db.
		NewUpdate().
		Model(profile).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Profile")
	}
	return nil
}

// SetRole changes a user's role, creating the profile if the user never got
// one.
func (svc *Service) SetRole(ctx context.Context, userID string, role models.Role) (*models.Profile, error) {
	profile, err := svc.RetrieveProfile(ctx, userID)
	if errors.Is(err, errcodes.NotFound("Profile")) {
		profile = &models.Profile{ID: userID, RoleName: string(role)}
		return profile, svc.CreateProfile(ctx, profile)
	}
	if err != nil {
		return nil, err
	}

	profile.RoleName = string(role)
	err = svc.UpdateProfile(ctx, profile, UpdateProfileOptions{Columns: []string{"role"}})
	if err != nil {
		return nil, err
	}
	return profile, nil
}
