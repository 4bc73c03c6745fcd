package migrations

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

var seedCategories = []string{"Fiksi", "Non-Fiksi"}

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		for _, name := range seedCategories {
			_, err := db.Exec(`INSERT INTO categories (id, name) VALUES (?, ?)`, uuid.NewString(), name)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DELETE FROM categories WHERE name IN (?)`, bun.In(seedCategories))
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
