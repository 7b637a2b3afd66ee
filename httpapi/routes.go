package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Handler returns the routed handler wrapped in middleware:
//
//	recoverPanic → requestID → logRequests → rateLimit → router
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(s.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(s.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/", s.indexHandler)
	router.HandlerFunc(http.MethodGet, "/healthz", s.healthHandler)

	router.HandlerFunc(http.MethodGet, "/api/books", s.listBooksHandler)
	router.Handler(http.MethodPost, "/api/books", s.requireKey(s.createBookHandler))
	// Covers /featured, /top-rated and /published-between as well; see
	// showBookHandler.
	router.HandlerFunc(http.MethodGet, "/api/books/:id", s.showBookHandler)

	router.Handler(http.MethodPost, "/api/reviews", s.requireKey(s.createReviewHandler))
	router.HandlerFunc(http.MethodGet, "/api/reviews/book/:bookId", s.listReviewsHandler)

	return s.recoverPanic(s.requestID(s.logRequests(s.rateLimit(router))))
}
