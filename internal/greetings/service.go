// Package greetings implements the query, pagination and caching layer
// behind the greetings HTTP endpoints.
package greetings

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Jomoregie1/greetingapi/internal/models"
)

// Repository is the read side of the greetings store.
type Repository interface {
	CountGreetings(ctx context.Context, f models.GreetingFilter) (int, error)
	ListGreetings(ctx context.Context, f models.GreetingFilter, limit, offset int) ([]models.Greeting, error)
	GreetingMessages(ctx context.Context, greetingType string) ([]string, error)
	DistinctTypes(ctx context.Context) ([]string, error)
}

// Reader serves the read endpoints. Service and CachedReader implement it.
type Reader interface {
	List(ctx context.Context, req PageRequest) (*Page, error)
	Random(ctx context.Context, c Category) (*RandomGreeting, error)
	Categories(ctx context.Context) (*CategoryList, error)
	Search(ctx context.Context, req PageRequest) (*Page, error)
	Recent(ctx context.Context, req PageRequest) (*Page, error)
}

// Service runs validated requests against a Repository.
type Service struct {
	repo Repository
	pick func(n int) int
}

// NewService creates a Service reading from repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, pick: rand.Intn}
}

// List returns a page of greetings in one category.
func (s *Service) List(ctx context.Context, req PageRequest) (*Page, error) {
	f := models.GreetingFilter{Type: req.CategoryValue()}
	return s.page(ctx, f, req, "")
}

// Search returns a page of greetings matching the text query.
func (s *Service) Search(ctx context.Context, req PageRequest) (*Page, error) {
	f := models.GreetingFilter{Type: req.CategoryValue(), Query: req.Query}
	return s.page(ctx, f, req, "No greetings found matching your search")
}

// Recent returns a page of greetings created this calendar month.
func (s *Service) Recent(ctx context.Context, req PageRequest) (*Page, error) {
	f := models.GreetingFilter{Type: req.CategoryValue(), CurrentMonth: true}
	return s.page(ctx, f, req, "No new greetings have been added this month")
}

// page counts, checks bounds, then fetches. An empty notFound lets an
// empty result through as an empty page.
func (s *Service) page(ctx context.Context, f models.GreetingFilter, req PageRequest, notFound string) (*Page, error) {
	total, err := s.repo.CountGreetings(ctx, f)
	if err != nil {
		return nil, errStoreUnavailable(err)
	}

	p := Paginate(total, req.Limit, req.Offset)
	if p.Exceeds(req.Offset) {
		return nil, errPageOutOfBounds(p.CurrentPage, p)
	}
	if total == 0 && notFound != "" {
		return nil, errNotFound(notFound)
	}

	rows, err := s.repo.ListGreetings(ctx, f, req.Limit, req.Offset)
	if err != nil {
		return nil, errStoreUnavailable(err)
	}

	return assemblePage(total, p, rows), nil
}

// Random picks one greeting of the category uniformly at random.
func (s *Service) Random(ctx context.Context, c Category) (*RandomGreeting, error) {
	messages, err := s.repo.GreetingMessages(ctx, c.Value)
	if err != nil {
		return nil, errStoreUnavailable(err)
	}
	if len(messages) == 0 {
		return nil, errNotFound(fmt.Sprintf("Greeting not found for category %q", c.Token))
	}

	return &RandomGreeting{
		Message:  messages[s.pick(len(messages))],
		Category: c.Token,
	}, nil
}

// Categories lists the known categories that have at least one greeting.
func (s *Service) Categories(ctx context.Context) (*CategoryList, error) {
	values, err := s.repo.DistinctTypes(ctx)
	if err != nil {
		return nil, errStoreUnavailable(err)
	}

	tokens := TokensForValues(values)
	if len(tokens) == 0 {
		return nil, errNoTypesAvailable()
	}
	return &CategoryList{Categories: tokens}, nil
}
