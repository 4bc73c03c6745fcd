package books

import (
	"strconv"
	"strings"

	"github.com/rakbuku/rakbuku/pkg/binder"
)

type ListBooksQuery struct {
	Search *string `query:"search" json:"search,omitempty"`
	Kind   *string `query:"kind" json:"kind,omitempty" validate:"omitempty,oneof=fiction nonfiction"`
}

// BookPayload is the body of both POST /books and PUT /books/:id. Mandatory
// fields are checked by the service so every missing field yields the same
// error.
type BookPayload struct {
	Title        string                `json:"judul"`
	Author       string                `json:"penulis"`
	Publisher    string                `json:"penerbit"`
	Year         Year                  `json:"tahun"`
	Description  *string               `json:"deskripsi"`
	Cover        *string               `json:"cover" validate:"omitempty,httpurl"`
	CategoryName string                `json:"category_name"`
	// The edit form doesn't send link_eksternal, so an absent key keeps the
	// stored link while null or "" clears it.
	ExternalLink binder.OptionalString `json:"link_eksternal" validate:"omitempty,httpurl"`
}

func (p BookPayload) Input() BookInput {
	return BookInput{
		Title:            p.Title,
		Author:           p.Author,
		Publisher:        p.Publisher,
		Year:             int(p.Year),
		Description:      p.Description,
		Cover:            p.Cover,
		ExternalLink:     p.ExternalLink.Value,
		KeepExternalLink: !p.ExternalLink.Set,
		CategoryName:     p.CategoryName,
	}
}

// Year accepts a JSON number or a numeric string. Forms submit the year as a
// string. Null and the empty string leave it unset.
type Year int

func (y *Year) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*y = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return &binder.FieldError{Field: "tahun", Message: "must be a year"}
		}
		s = strings.TrimSpace(unquoted)
		if s == "" {
			*y = 0
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return &binder.FieldError{Field: "tahun", Message: "must be a year"}
	}
	*y = Year(n)
	return nil
}
