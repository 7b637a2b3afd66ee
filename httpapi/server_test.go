package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/bookstore"
	"github.com/poiesic/bookstore/auth"
	"github.com/poiesic/bookstore/core"
	"github.com/poiesic/bookstore/storage/recordset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "amana-secret-key-123"

func newTestServer(t *testing.T, opts ...Option) (http.Handler, *bookstore.Catalog) {
	t.Helper()
	dir, err := recordset.OpenDir(t.TempDir())
	require.NoError(t, err)
	books := recordset.New[core.Book]("books", dir)
	reviews := recordset.New[core.Review]("reviews", dir)

	ctx := context.Background()
	require.NoError(t, books.ReplaceAll(ctx, []core.Book{
		{ID: "1", Title: "One", Featured: true, Rating: 4, ReviewCount: 10, DatePublished: core.NewDate(2022, time.March, 1)},
		{ID: "2", Title: "Two", Rating: 5, ReviewCount: 20, DatePublished: core.NewDate(2021, time.March, 1)},
		{ID: "3", Title: "Three", Featured: true, Rating: 1, ReviewCount: 1, DatePublished: core.NewDate(2022, time.December, 31)},
	}))
	require.NoError(t, reviews.ReplaceAll(ctx, []core.Review{
		{ID: "r1", BookID: "1", Rating: 4, Timestamp: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	}))

	cat := bookstore.NewCatalogWith(books, reviews, testSecret)
	return New(cat, opts...).Handler(), cat
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func ids(books []core.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func TestListBooks(t *testing.T) {
	h, _ := newTestServer(t)
	rr := do(t, h, http.MethodGet, "/api/books", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))
	assert.Equal(t, []string{"1", "2", "3"}, ids(decode[[]core.Book](t, rr)))
}

func TestShowBook(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/api/books/2", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Two", decode[core.Book](t, rr).Title)

	rr = do(t, h, http.MethodGet, "/api/books/404", "", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, decode[map[string]any](t, rr)["message"], "404")
}

func TestBookViews(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/api/books/featured", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"1", "3"}, ids(decode[[]core.Book](t, rr)))

	rr = do(t, h, http.MethodGet, "/api/books/top-rated", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"2", "1", "3"}, ids(decode[[]core.Book](t, rr)))

	rr = do(t, h, http.MethodGet, "/api/books/top-rated?limit=1", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"2"}, ids(decode[[]core.Book](t, rr)))

	rr = do(t, h, http.MethodGet, "/api/books/top-rated?limit=many", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPublishedBetween(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/api/books/published-between?startDate=2022-01-01&endDate=2022-12-31", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"1", "3"}, ids(decode[[]core.Book](t, rr)))

	rr = do(t, h, http.MethodGet, "/api/books/published-between?startDate=2022-01-01", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/books/published-between?startDate=soon&endDate=2022-12-31", "", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid date format. Please use YYYY-MM-DD.", decode[map[string]any](t, rr)["message"])
}

func TestReviewsForBook(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/api/reviews/book/1", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]core.Review](t, rr), 1)

	rr = do(t, h, http.MethodGet, "/api/reviews/book/2", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())

	rr = do(t, h, http.MethodGet, "/api/reviews/book/99", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateBook(t *testing.T) {
	h, cat := newTestServer(t)
	body := `{"title":"New","author":"A","description":"D","price":0,"isbn":"X","genre":["a","a"],"extra":"ignored"}`

	rr := do(t, h, http.MethodPost, "/api/books", body, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, unauthorizedMessage, decode[map[string]any](t, rr)["message"])

	rr = do(t, h, http.MethodPost, "/api/books", body, map[string]string{auth.HeaderName: "wrong"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/books", body, map[string]string{auth.HeaderName: testSecret})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[core.Book](t, rr)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"a"}, created.Genre)
	assert.Equal(t, "English", created.Language)

	all, err := cat.Books().ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCreateBook_BadRequests(t *testing.T) {
	h, _ := newTestServer(t)
	key := map[string]string{auth.HeaderName: testSecret}

	rr := do(t, h, http.MethodPost, "/api/books", `{"title":`, key)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/books", `{"title":"a"}{"title":"b"}`, key)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/books", `{"title":"T","author":"A","description":"D","isbn":"I"}`, key)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := decode[map[string]any](t, rr)
	assert.Contains(t, body["errors"], "price")
}

func TestCreateWithoutKey_SkipsBody(t *testing.T) {
	h, cat := newTestServer(t)

	tests := []struct {
		name    string
		target  string
		body    string
		headers map[string]string
	}{
		{name: "malformed book", target: "/api/books", body: `{"title":`},
		{name: "empty book", target: "/api/books", body: ""},
		{name: "malformed book wrong key", target: "/api/books", body: `{"title":`, headers: map[string]string{auth.HeaderName: "wrong"}},
		{name: "mistyped review", target: "/api/reviews", body: `{"bookId":"1","rating":"four"}`},
		{name: "empty review", target: "/api/reviews", body: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, tt.target, tt.body, tt.headers)
			require.Equal(t, http.StatusUnauthorized, rr.Code, rr.Body.String())
			assert.Equal(t, unauthorizedMessage, decode[map[string]any](t, rr)["message"])
		})
	}

	all, err := cat.Books().ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCreateReview(t *testing.T) {
	h, cat := newTestServer(t)
	key := map[string]string{auth.HeaderName: testSecret}

	rr := do(t, h, http.MethodPost, "/api/reviews",
		`{"bookId":"77","author":"a","rating":5,"title":"t","comment":"c"}`, key)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/reviews",
		`{"bookId":"2","author":"a","rating":"4","title":"t","comment":"c"}`, key)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	review := decode[core.Review](t, rr)
	assert.Equal(t, core.Rating(4), review.Rating)
	assert.False(t, review.Verified)

	rr = do(t, h, http.MethodPost, "/api/reviews",
		`{"bookId":"2","author":"a","rating":0,"title":"t","comment":"c"}`, key)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	got, err := cat.ReviewsForBook(context.Background(), "2")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRouting(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodDelete, "/api/books", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	h, _ := newTestServer(t)
	rr := do(t, h, http.MethodGet, "/healthz", "", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	h, _ := newTestServer(t, WithRateLimit(1, 2))

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = do(t, h, http.MethodGet, "/healthz", "", nil).Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRecoverPanic(t *testing.T) {
	s := New(nil)
	h := s.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := do(t, h, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))
}
