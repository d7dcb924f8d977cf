package pagination_test

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/cookbook/pkg/pagination"
	"github.com/JaimeStill/cookbook/pkg/query"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 3, MaxPageSize: 100}
}

type item struct {
	ID string
}

func itemID(i item) string { return i.ID }

type params struct {
	Category string
}

type call struct {
	params params
	cursor string
}

type recorder struct {
	mu    sync.Mutex
	calls []call
	pages map[string][]item
	err   error
}

func (r *recorder) fetch(_ context.Context, p params, cursor string) ([]item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{params: p, cursor: cursor})
	if r.err != nil {
		return nil, r.err
	}
	return r.pages[cursor], nil
}

func ids(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := pagination.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.DefaultPageSize != 3 {
		t.Errorf("DefaultPageSize = %d, want 3", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d, want 100", cfg.MaxPageSize)
	}
}

func TestConfigFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_PAGE_SIZE", "10")
	t.Setenv("TEST_MAX_PAGE", "50")

	env := &pagination.ConfigEnv{
		DefaultPageSize: "TEST_PAGE_SIZE",
		MaxPageSize:     "TEST_MAX_PAGE",
	}

	cfg := pagination.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.DefaultPageSize != 10 {
		t.Errorf("DefaultPageSize = %d, want 10", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize != 50 {
		t.Errorf("MaxPageSize = %d, want 50", cfg.MaxPageSize)
	}
}

func TestConfigFinalizeValidation(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
	err := cfg.Finalize(nil)
	if err == nil || !strings.Contains(err.Error(), "cannot exceed") {
		t.Errorf("err = %v, want default exceeds max", err)
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := defaultConfig()
	cfg.Merge(&pagination.Config{MaxPageSize: 25})

	if cfg.DefaultPageSize != 3 || cfg.MaxPageSize != 25 {
		t.Errorf("merged = %+v", cfg)
	}
}

func TestCursorRequestFromQuery(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantSize   query.PageSize
		wantCursor string
		wantErr    bool
	}{
		{"absent uses default", "", query.Size(3), "", false},
		{"explicit zero unbounded", "page_size=0", query.Size(0), "", false},
		{"positive", "page_size=5&cursor=abc", query.Size(5), "abc", false},
		{"clamped", "page_size=500", query.Size(100), "", false},
		{"negative", "page_size=-1", query.PageSize{}, "", true},
		{"malformed", "page_size=ten", query.PageSize{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req, err := pagination.CursorRequestFromQuery(values, defaultConfig())
			if tt.wantErr {
				if !errors.Is(err, query.ErrInvalid) {
					t.Fatalf("err = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.PageSize != tt.wantSize {
				t.Errorf("PageSize = %v, want %v", req.PageSize, tt.wantSize)
			}
			if req.Cursor != tt.wantCursor {
				t.Errorf("Cursor = %q, want %q", req.Cursor, tt.wantCursor)
			}
		})
	}
}

func TestReplaceFetchesWithoutCursor(t *testing.T) {
	r := &recorder{pages: map[string][]item{"": {{"a"}, {"b"}}}}
	c := pagination.NewController(r.fetch, itemID, params{})

	if err := c.Replace(context.Background(), params{Category: "vegetables"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if len(r.calls) != 1 || r.calls[0].cursor != "" || r.calls[0].params.Category != "vegetables" {
		t.Errorf("calls = %+v", r.calls)
	}
	if got := ids(c.Items()); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("items = %v", got)
	}
	if c.Params().Category != "vegetables" {
		t.Errorf("params = %+v", c.Params())
	}
}

func TestReplaceDiscardsPreviousList(t *testing.T) {
	r := &recorder{pages: map[string][]item{
		"":  {{"a"}, {"b"}},
		"b": {{"c"}},
	}}
	c := pagination.NewController(r.fetch, itemID, params{})
	ctx := context.Background()

	c.Replace(ctx, params{})
	c.LoadMore(ctx)

	r.pages[""] = []item{{"x"}}
	if err := c.Replace(ctx, params{Category: "fish"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := ids(c.Items()); !slices.Equal(got, []string{"x"}) {
		t.Errorf("items = %v, want [x]", got)
	}
}

func TestLoadMoreAppends(t *testing.T) {
	r := &recorder{pages: map[string][]item{
		"":  {{"a"}, {"b"}, {"c"}},
		"c": {{"d"}, {"e"}},
	}}
	c := pagination.NewController(r.fetch, itemID, params{Category: "vegetables"})
	ctx := context.Background()

	if err := c.Replace(ctx, params{Category: "vegetables"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	before := c.Items()

	if err := c.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore: %v", err)
	}

	last := r.calls[len(r.calls)-1]
	if last.cursor != "c" || last.params.Category != "vegetables" {
		t.Errorf("append call = %+v", last)
	}

	got := c.Items()
	if len(got) != len(before)+2 {
		t.Fatalf("len = %d, want %d", len(got), len(before)+2)
	}
	if !slices.Equal(ids(got[:len(before)]), ids(before)) {
		t.Errorf("prefix changed: %v", ids(got))
	}
	if !slices.Equal(ids(got), []string{"a", "b", "c", "d", "e"}) {
		t.Errorf("items = %v", ids(got))
	}
}

func TestLoadMoreOnEmptyListIsNoop(t *testing.T) {
	r := &recorder{}
	c := pagination.NewController(r.fetch, itemID, params{})

	before := c.State()
	if err := c.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore: %v", err)
	}

	if len(r.calls) != 0 {
		t.Errorf("fetch called %d times", len(r.calls))
	}
	after := c.State()
	if after.Seq != before.Seq || len(after.Items) != 0 {
		t.Errorf("state changed: %+v", after)
	}
}

func TestLoadMoreFailureKeepsList(t *testing.T) {
	r := &recorder{pages: map[string][]item{"": {{"a"}, {"b"}}}}
	c := pagination.NewController(r.fetch, itemID, params{})
	ctx := context.Background()

	c.Replace(ctx, params{})

	unavailable := errors.New("backend unavailable")
	r.err = unavailable

	if err := c.LoadMore(ctx); !errors.Is(err, unavailable) {
		t.Fatalf("err = %v, want %v", err, unavailable)
	}
	if got := ids(c.Items()); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("items = %v", got)
	}
}

func TestReplaceFailureKeepsList(t *testing.T) {
	r := &recorder{pages: map[string][]item{"": {{"a"}, {"b"}, {"c"}}}}
	c := pagination.NewController(r.fetch, itemID, params{})
	ctx := context.Background()

	if err := c.Replace(ctx, params{Category: "all"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	unavailable := errors.New("backend unavailable")
	r.err = unavailable

	if err := c.Replace(ctx, params{Category: "vegetables"}); !errors.Is(err, unavailable) {
		t.Fatalf("err = %v, want %v", err, unavailable)
	}

	state := c.State()
	if got := ids(state.Items); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("items = %v, want [a b c]", got)
	}
	if state.Params.Category != "all" {
		t.Errorf("params = %+v, want the params of the visible list", state.Params)
	}
}

func TestResetClearsList(t *testing.T) {
	r := &recorder{pages: map[string][]item{"": {{"a"}}}}
	c := pagination.NewController(r.fetch, itemID, params{})
	ctx := context.Background()

	c.Replace(ctx, params{})
	before := c.State().Seq

	c.Reset(params{Category: "fish"})

	state := c.State()
	if len(state.Items) != 0 {
		t.Errorf("items = %v, want empty", ids(state.Items))
	}
	if state.Params.Category != "fish" {
		t.Errorf("params = %+v", state.Params)
	}
	if state.Seq != before+1 {
		t.Errorf("seq = %d, want %d", state.Seq, before+1)
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	fetch := func(ctx context.Context, p params, cursor string) ([]item, error) {
		if p.Category == "slow" {
			close(started)
			<-release
			return []item{{"stale"}}, nil
		}
		return []item{{"fresh"}}, nil
	}

	c := pagination.NewController(fetch, itemID, params{})
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		errc <- c.Replace(ctx, params{Category: "slow"})
	}()

	<-started
	if err := c.Replace(ctx, params{Category: "fast"}); err != nil {
		t.Fatalf("Replace fast: %v", err)
	}
	close(release)

	if err := <-errc; !errors.Is(err, pagination.ErrStale) {
		t.Errorf("slow Replace err = %v, want ErrStale", err)
	}

	state := c.State()
	if !slices.Equal(ids(state.Items), []string{"fresh"}) {
		t.Errorf("items = %v, want [fresh]", ids(state.Items))
	}
	if state.Params.Category != "fast" {
		t.Errorf("params = %+v", state.Params)
	}
	if state.Seq != 2 {
		t.Errorf("seq = %d, want 2", state.Seq)
	}
}

func TestStateIsCopy(t *testing.T) {
	r := &recorder{pages: map[string][]item{"": {{"a"}}}}
	c := pagination.NewController(r.fetch, itemID, params{})
	c.Replace(context.Background(), params{})

	state := c.State()
	state.Items[0].ID = "mutated"

	if got := c.Items()[0].ID; got != "a" {
		t.Errorf("controller item mutated: %q", got)
	}
}
