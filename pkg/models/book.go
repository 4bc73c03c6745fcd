package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID           string    `bun:",pk" json:"id"`
	CreatedAt    time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	Title        string    `bun:"judul,notnull" json:"judul"`
	Author       string    `bun:"penulis,notnull" json:"penulis"`
	Publisher    string    `bun:"penerbit,notnull" json:"penerbit"`
	Year         int       `bun:"tahun,notnull" json:"tahun"`
	Description  *string   `bun:"deskripsi" json:"deskripsi"`
	Cover        *string   `bun:"cover" json:"cover"`
	ExternalLink *string   `bun:"link_eksternal" json:"link_eksternal"`
	CategoryID   *string   `bun:"category_id" json:"category_id"`
	Category     *Category `bun:"rel:belongs-to,join:category_id=id" json:"category"`
}

// CategoryName returns the name of the loaded category, or an empty string if
// the book has none.
func (b *Book) CategoryName() string {
	if b.Category == nil {
		return ""
	}
	return b.Category.Name
}
