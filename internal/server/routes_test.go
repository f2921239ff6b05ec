package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookbrowser/internal/book"
	"bookbrowser/internal/review"
	"bookbrowser/internal/view"

	"github.com/PuerkitoBio/goquery"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFinder struct {
	reviews []review.Review
	err     error
	titles  []string
}

func (f *stubFinder) FindReviews(_ context.Context, title string) ([]review.Review, error) {
	f.titles = append(f.titles, title)
	return f.reviews, f.err
}

func newTestRouter(t *testing.T, repo book.Repository, finder review.Finder) http.Handler {
	t.Helper()
	views, err := view.New()
	require.NoError(t, err)
	logger := discardLogger()

	mux := NewRouter(
		book.NewHTTPHandler(book.NewService(repo), views, logger),
		review.NewHTTPHandler(finder, views, logger),
		views,
		logger,
	)
	return WithMiddleware(context.Background(), mux, logger, MiddlewareOptions{})
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestRouter_Index(t *testing.T) {
	ctrl := gomock.NewController(t)
	router := newTestRouter(t, book.NewMockRepository(ctrl), &stubFinder{})

	w := serve(router, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	action, _ := doc.Find("form#search").Attr("action")
	assert.Equal(t, "/search", action)
	action, _ = doc.Find("form#review").Attr("action")
	assert.Equal(t, "/findreview", action)
}

func TestRouter_UnknownPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	router := newTestRouter(t, book.NewMockRepository(ctrl), &stubFinder{})

	assert.Equal(t, http.StatusNotFound, serve(router, "/nope").Code)
}

func TestRouter_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := book.NewMockRepository(ctrl)
	router := newTestRouter(t, repo, &stubFinder{})

	results := make([]book.Book, 0, book.PageSize)
	for i := 0; i < book.PageSize; i++ {
		results = append(results, book.Book{ID: string(rune('a' + i)), Title: "Harry " + string(rune('A'+i))})
	}
	repo.EXPECT().FindByTitlePrefix(gomock.Any(), "Harry%", book.PageSize, 10).Return(results, nil)

	w := serve(router, "/search?q=Harry&offset=10")

	assert.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, book.PageSize, doc.Find("li.result").Length())
}

func TestRouter_BookDetail(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := book.NewMockRepository(ctrl)
	router := newTestRouter(t, repo, &stubFinder{})

	repo.EXPECT().FindByID(gomock.Any(), "5907").Return(book.Book{
		ID:     "5907",
		Title:  "The Hobbit",
		Genres: "Fantasy|Classics",
	}, nil)
	repo.EXPECT().FindByID(gomock.Any(), "0").Return(book.Book{}, book.ErrNotFound)

	w := serve(router, "/book/5907")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Fantasy,Classics")
	assert.NotContains(t, w.Body.String(), "Fantasy|Classics")

	w = serve(router, "/book/0")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_FindReview(t *testing.T) {
	ctrl := gomock.NewController(t)

	t.Run("success", func(t *testing.T) {
		finder := &stubFinder{reviews: []review.Review{
			{BookTitle: "Dune", Reviewer: "A", Summary: "s1", URL: "http://example.com/1"},
			{BookTitle: "Dune", Reviewer: "B", Summary: "s2", URL: "http://example.com/2"},
		}}
		router := newTestRouter(t, book.NewMockRepository(ctrl), finder)

		w := serve(router, "/findreview?title=Dune")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"Dune"}, finder.titles)
		doc, err := goquery.NewDocumentFromReader(w.Body)
		require.NoError(t, err)
		assert.Equal(t, 2, doc.Find("li.review").Length())
		assert.Contains(t, doc.Find(".count").Text(), "2")
	})

	t.Run("upstream failure", func(t *testing.T) {
		finder := &stubFinder{err: errors.New("upstream down")}
		router := newTestRouter(t, book.NewMockRepository(ctrl), finder)

		w := serve(router, "/findreview?title=Dune")

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.True(t, strings.HasPrefix(w.Body.String(), "<h2>Error</h2>"))
	})
}

func TestRouter_Probes(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := book.NewMockRepository(ctrl)
	router := newTestRouter(t, repo, &stubFinder{})

	assert.Equal(t, http.StatusOK, serve(router, "/healthz").Code)

	repo.EXPECT().Ping(gomock.Any()).Return(nil)
	assert.Equal(t, http.StatusOK, serve(router, "/readyz").Code)

	repo.EXPECT().Ping(gomock.Any()).Return(errors.New("down"))
	assert.Equal(t, http.StatusServiceUnavailable, serve(router, "/readyz").Code)
}

func TestWithMiddleware_RateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := WithMiddleware(ctx, ok, discardLogger(), MiddlewareOptions{RateLimitRPS: 1, RateLimitBurst: 1})

	assert.Equal(t, http.StatusOK, serve(h, "/").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, "/").Code)
}

func TestWithMiddleware_HSTS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	w := serve(WithMiddleware(context.Background(), ok, discardLogger(), MiddlewareOptions{EnableHSTS: true}), "/")
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))

	w = serve(WithMiddleware(context.Background(), ok, discardLogger(), MiddlewareOptions{}), "/")
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
