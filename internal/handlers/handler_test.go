package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Jomoregie1/greetingapi/internal/greetings"
	"github.com/Jomoregie1/greetingapi/internal/models"
	"github.com/Jomoregie1/greetingapi/internal/store"
)

// stubReader records the last request and returns err when set.
type stubReader struct {
	calls int
	last  greetings.PageRequest
	err   error
}

func (s *stubReader) page(req greetings.PageRequest) (*greetings.Page, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &greetings.Page{TotalCount: 1, TotalPages: 1, CurrentPage: 1, Items: []greetings.Item{
		{Message: "hello", Category: req.CategoryToken()},
	}}, nil
}

func (s *stubReader) List(_ context.Context, req greetings.PageRequest) (*greetings.Page, error) {
	return s.page(req)
}

func (s *stubReader) Search(_ context.Context, req greetings.PageRequest) (*greetings.Page, error) {
	return s.page(req)
}

func (s *stubReader) Recent(_ context.Context, req greetings.PageRequest) (*greetings.Page, error) {
	return s.page(req)
}

func (s *stubReader) Random(_ context.Context, c greetings.Category) (*greetings.RandomGreeting, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &greetings.RandomGreeting{Message: "hi", Category: c.Token}, nil
}

func (s *stubReader) Categories(context.Context) (*greetings.CategoryList, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &greetings.CategoryList{Categories: []string{"Birthday_Dad"}}, nil
}

func serve(handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["detail"]
}

func TestListGreetings(t *testing.T) {
	reader := &stubReader{}
	h := NewHandler(reader, nil, nil, zerolog.Nop())

	rec := serve(h.ListGreetings, "/greetings?category=Birthday_Dad&limit=5&offset=10")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, 5, reader.last.Limit)
	require.Equal(t, 10, reader.last.Offset)

	var page greetings.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, "Birthday_Dad", page.Items[0].Category)
}

func TestListGreetings_TypeAlias(t *testing.T) {
	reader := &stubReader{}
	h := NewHandler(reader, nil, nil, zerolog.Nop())

	rec := serve(h.ListGreetings, "/greetings?type=Morning_Romantic")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Morning_Romantic", reader.last.CategoryToken())
}

func TestValidationFailuresSkipReader(t *testing.T) {
	reader := &stubReader{}
	h := NewHandler(reader, nil, nil, zerolog.Nop())

	cases := []struct {
		handler http.HandlerFunc
		target  string
		status  int
	}{
		{h.ListGreetings, "/greetings?category=Totally_Bogus", http.StatusNotFound},
		{h.ListGreetings, "/greetings?category=Birthday_Dad&limit=0", http.StatusBadRequest},
		{h.ListGreetings, "/greetings?category=Birthday_Dad&limit=101", http.StatusBadRequest},
		{h.ListGreetings, "/greetings?category=Birthday_Dad&offset=-1", http.StatusBadRequest},
		{h.ListGreetings, "/greetings", http.StatusBadRequest},
		{h.SearchGreetings, "/greetings/search", http.StatusBadRequest},
		{h.RandomGreeting, "/greetings/random", http.StatusBadRequest},
		{h.RandomGreeting, "/greetings/random?category=nope", http.StatusNotFound},
		{h.RecentGreetings, "/greetings/recent_greetings?limit=abc", http.StatusBadRequest},
	}

	for _, tc := range cases {
		rec := serve(tc.handler, tc.target)
		require.Equal(t, tc.status, rec.Code, tc.target)
		require.NotEmpty(t, detail(t, rec), tc.target)
	}
	require.Zero(t, reader.calls)
}

func TestReaderErrors(t *testing.T) {
	reader := &stubReader{err: errors.New("pq: relation \"greetings\" does not exist")}
	h := NewHandler(reader, nil, nil, zerolog.Nop())

	rec := serve(h.GreetingTypes, "/greetings/types")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "internal server error", detail(t, rec))

	cat, _ := greetings.Resolve("Birthday_Dad")
	_, notFound := greetings.NewService(emptyRepo{}).Random(context.Background(), cat)
	reader.err = notFound
	rec = serve(h.RandomGreeting, "/greetings/random?category=Birthday_Dad")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, detail(t, rec), "Birthday_Dad")
}

func TestStatusFor(t *testing.T) {
	cases := map[greetings.Kind]int{
		greetings.KindOutOfRange:       http.StatusBadRequest,
		greetings.KindInvalidParameter: http.StatusBadRequest,
		greetings.KindUnknownCategory:  http.StatusNotFound,
		greetings.KindPageOutOfBounds:  http.StatusNotFound,
		greetings.KindNotFound:         http.StatusNotFound,
		greetings.KindNoTypesAvailable: http.StatusNotFound,
		greetings.KindTooManyRequests:  http.StatusTooManyRequests,
		greetings.KindStoreUnavailable: http.StatusInternalServerError,
	}
	for kind, status := range cases {
		require.Equal(t, status, statusFor(kind), kind)
	}
}

func TestHealth(t *testing.T) {
	db, err := store.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "g.db"))
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	rs := store.NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}))
	defer rs.Close()

	var resp HealthResponse

	rec := serve(NewHandler(&stubReader{}, db, nil, zerolog.Nop()).Health, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "healthy", resp.Status)
	require.Equal(t, "not configured, cache disabled", resp.Checks["redis"].Message)

	h := NewHandler(&stubReader{}, db, rs, zerolog.Nop())
	rec = serve(h.Health, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	mr.Close()
	rec = serve(h.Health, "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp = HealthResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "degraded", resp.Status)
	require.Equal(t, "fail", resp.Checks["redis"].Status)
	require.Equal(t, "pass", resp.Checks["database"].Status)
}

func TestRoot(t *testing.T) {
	rec := serve(NewHandler(&stubReader{}, nil, nil, zerolog.Nop()).Root, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RootResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Greeting API", resp.Name)
	require.Equal(t, greetings.Tokens(), resp.Categories)
}

// emptyRepo is a store with no rows.
type emptyRepo struct{}

func (emptyRepo) CountGreetings(context.Context, models.GreetingFilter) (int, error) { return 0, nil }

func (emptyRepo) ListGreetings(context.Context, models.GreetingFilter, int, int) ([]models.Greeting, error) {
	return nil, nil
}

func (emptyRepo) GreetingMessages(context.Context, string) ([]string, error) { return nil, nil }

func (emptyRepo) DistinctTypes(context.Context) ([]string, error) { return nil, nil }
