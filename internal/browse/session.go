// Package browse holds the state of an interactive recipe browser: the
// visible list, the list params that produced it, and the recipe selected
// for editing. List changes go through a pagination.Controller, so a
// category, order, or page size change replaces the list while LoadMore
// appends the next page. Only a page size change clears the list up front.
package browse

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/JaimeStill/cookbook/internal/recipes"
	"github.com/JaimeStill/cookbook/pkg/pagination"
	"github.com/JaimeStill/cookbook/pkg/query"
)

var (
	ErrNotVisible      = errors.New("recipe not in visible list")
	ErrInvalidPageSize = errors.New("invalid page size")
)

// Store is the recipe backend a Session drives. Both recipes.System and
// the HTTP client satisfy it.
type Store interface {
	List(ctx context.Context, params recipes.Params, cursor string) (*recipes.Page, error)
	Create(ctx context.Context, cmd recipes.CreateCommand) (*recipes.Recipe, error)
	Update(ctx context.Context, id string, cmd recipes.UpdateCommand) (*recipes.Recipe, error)
	Delete(ctx context.Context, id string) error
}

// Session is the browser state. The zero value is not usable; call New.
type Session struct {
	store Store
	ctrl  *pagination.Controller[recipes.Recipe, recipes.Params]

	mu       sync.Mutex
	selected *recipes.Recipe
}

// New creates a Session listing every category, newest first. Callers that
// are not signed in only see published recipes. The list is empty until
// Refresh.
func New(store Store, signedIn bool, pageSize int) *Session {
	params := recipes.DefaultParams(pageSize)
	params.PublishedOnly = !signedIn

	s := &Session{store: store}
	s.ctrl = pagination.NewController(s.fetch, recipeID, params)
	return s
}

func recipeID(r recipes.Recipe) string {
	return r.ID
}

func (s *Session) fetch(ctx context.Context, params recipes.Params, cursor string) ([]recipes.Recipe, error) {
	page, err := s.store.List(ctx, params, cursor)
	if err != nil {
		return nil, err
	}
	return page.Recipes, nil
}

// Refresh reloads the first page with the current params.
func (s *Session) Refresh(ctx context.Context) error {
	return s.ctrl.Replace(ctx, s.ctrl.Params())
}

// SetCategory filters the list to c, or clears the filter when c is nil.
func (s *Session) SetCategory(ctx context.Context, c *recipes.Category) error {
	return s.ctrl.Replace(ctx, s.ctrl.Params().WithCategory(c))
}

func (s *Session) SetOrder(ctx context.Context, o recipes.Order) error {
	params := s.ctrl.Params()
	params.Order = o
	return s.ctrl.Replace(ctx, params)
}

// SetPageSize changes the page size. Zero lists every match in one page.
// The list is cleared before the fetch, so a failed fetch leaves it empty.
func (s *Session) SetPageSize(ctx context.Context, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	params := s.ctrl.Params()
	params.PageSize = query.Size(n)
	s.ctrl.Reset(params)
	return s.ctrl.Replace(ctx, params)
}

// SetSignedIn switches between the signed-in and anonymous views.
func (s *Session) SetSignedIn(ctx context.Context, signedIn bool) error {
	params := s.ctrl.Params()
	params.PublishedOnly = !signedIn
	return s.ctrl.Replace(ctx, params)
}

// LoadMore appends the page after the last visible recipe.
func (s *Session) LoadMore(ctx context.Context) error {
	return s.ctrl.LoadMore(ctx)
}

// Select chooses a visible recipe for editing.
func (s *Session) Select(id string) (recipes.Recipe, error) {
	for _, r := range s.ctrl.Items() {
		if r.ID == id {
			s.mu.Lock()
			s.selected = &r
			s.mu.Unlock()
			return r, nil
		}
	}
	return recipes.Recipe{}, fmt.Errorf("%w: %s", ErrNotVisible, id)
}

// Selected returns the recipe chosen for editing, if any.
func (s *Session) Selected() (recipes.Recipe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return recipes.Recipe{}, false
	}
	return *s.selected, true
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

// Add creates a recipe and reloads the first page.
func (s *Session) Add(ctx context.Context, cmd recipes.CreateCommand) (*recipes.Recipe, error) {
	r, err := s.store.Create(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return r, s.settle(ctx)
}

// Update changes a recipe and reloads the first page.
func (s *Session) Update(ctx context.Context, id string, cmd recipes.UpdateCommand) (*recipes.Recipe, error) {
	r, err := s.store.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}
	return r, s.settle(ctx)
}

// Delete removes a recipe and reloads the first page.
func (s *Session) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	return s.settle(ctx)
}

func (s *Session) settle(ctx context.Context) error {
	err := s.Refresh(ctx)
	s.ClearSelection()
	return err
}

// Recipes returns the visible list.
func (s *Session) Recipes() []recipes.Recipe {
	return s.ctrl.Items()
}

func (s *Session) Params() recipes.Params {
	return s.ctrl.Params()
}
