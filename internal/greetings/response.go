package greetings

import (
	"time"

	"github.com/Jomoregie1/greetingapi/internal/models"
)

// Item is a greeting as returned in list responses.
type Item struct {
	Message   string  `json:"message"`
	Category  string  `json:"category"`
	CreatedAt *string `json:"created_at,omitempty"`
}

// Page is the envelope for paginated endpoints.
type Page struct {
	TotalCount  int    `json:"total_count"`
	TotalPages  int    `json:"total_pages"`
	CurrentPage int    `json:"current_page"`
	Items       []Item `json:"items"`
}

// RandomGreeting is the single-item response.
type RandomGreeting struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// CategoryList lists the categories present in the store.
type CategoryList struct {
	Categories []string `json:"categories"`
}

func assemblePage(total int, p Pagination, rows []models.Greeting) *Page {
	items := make([]Item, 0, len(rows))
	for _, g := range rows {
		items = append(items, assembleItem(g))
	}
	return &Page{
		TotalCount:  total,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
		Items:       items,
	}
}

func assembleItem(g models.Greeting) Item {
	item := Item{
		Message:  g.Message,
		Category: categoryToken(g.Type),
	}
	if g.CreatedAt != nil {
		ts := g.CreatedAt.UTC().Format(time.RFC3339)
		item.CreatedAt = &ts
	}
	return item
}

func categoryToken(value *string) string {
	if value == nil {
		return Unrecognized
	}
	if token, ok := TokenForValue(*value); ok {
		return token
	}
	return Unrecognized
}
