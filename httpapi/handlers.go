package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/poiesic/bookstore/auth"
	"github.com/poiesic/bookstore/core"
)

// Reserved /api/books/:id values naming collection views.
const (
	featuredView         = "featured"
	topRatedView         = "top-rated"
	publishedBetweenView = "published-between"
)

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, envelope{
		"name": "bookstore",
		"endpoints": []string{
			"GET /api/books",
			"GET /api/books/:id",
			"GET /api/books/featured",
			"GET /api/books/top-rated",
			"GET /api/books/published-between?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD",
			"GET /api/reviews/book/:bookId",
			"POST /api/books",
			"POST /api/reviews",
		},
		"auth": "POST endpoints require the " + auth.HeaderName + " header",
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, envelope{"status": "ok"})
}

func (s *Server) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	books, err := s.svc.Books().ListAll(r.Context())
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, books)
}

// showBookHandler serves a single book, or one of the reserved views. The
// router cannot register static siblings of a wildcard segment.
func (s *Server) showBookHandler(w http.ResponseWriter, r *http.Request) {
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")
	switch id {
	case featuredView:
		s.featuredBooksHandler(w, r)
		return
	case topRatedView:
		s.topRatedBooksHandler(w, r)
		return
	case publishedBetweenView:
		s.publishedBetweenHandler(w, r)
		return
	}

	book, err := s.svc.Books().Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.notFoundMessage(w, r, fmt.Sprintf("Book with ID %s not found", id))
			return
		}
		s.serverErrorResponse(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, book)
}

func (s *Server) featuredBooksHandler(w http.ResponseWriter, r *http.Request) {
	books, err := s.svc.Books().ListFeatured(r.Context())
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, books)
}

func (s *Server) topRatedBooksHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.badRequestMessage(w, r, "limit must be an integer")
			return
		}
		limit = n
	}
	books, err := s.svc.Books().ListTopRated(r.Context(), limit)
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, books)
}

func (s *Server) publishedBetweenHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	startParam, endParam := qs.Get("startDate"), qs.Get("endDate")
	if startParam == "" || endParam == "" {
		s.badRequestMessage(w, r, "Both startDate and endDate query parameters are required.")
		return
	}
	start, err := core.ParseDate(startParam)
	if err != nil {
		s.badRequestMessage(w, r, "Invalid date format. Please use YYYY-MM-DD.")
		return
	}
	end, err := core.ParseDate(endParam)
	if err != nil {
		s.badRequestMessage(w, r, "Invalid date format. Please use YYYY-MM-DD.")
		return
	}

	books, err := s.svc.Books().ListByDateRange(r.Context(), start, end)
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, books)
}

func (s *Server) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	bookID := httprouter.ParamsFromContext(r.Context()).ByName("bookId")
	reviews, err := s.svc.ReviewsForBook(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.notFoundMessage(w, r, fmt.Sprintf("Book with ID %q not found.", bookID))
			return
		}
		s.serverErrorResponse(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, reviews)
}

func (s *Server) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var draft core.BookDraft
	if err := s.readJSON(w, r, &draft); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	book, err := s.svc.CreateBook(r.Context(), r.Header.Get(auth.HeaderName), &draft)
	if err != nil {
		s.mutationErrorResponse(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, book)
}

func (s *Server) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	var draft core.ReviewDraft
	if err := s.readJSON(w, r, &draft); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	review, err := s.svc.CreateReview(r.Context(), r.Header.Get(auth.HeaderName), &draft)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.notFoundMessage(w, r, fmt.Sprintf("Cannot add review: Book with ID %s not found.", draft.BookID))
			return
		}
		s.mutationErrorResponse(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, review)
}
