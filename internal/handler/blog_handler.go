package handler

import (
	"net/http"

	"github.com/boddenberg/loanhub/internal/service"
)

// ============================================================
// Blog — GET /api/blog, GET /api/blog/categories
// ============================================================

func blogPostsHandler(svc *service.BlogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/blog")
		defer span.End()

		writeJSON(w, http.StatusOK, svc.Posts(ctx, r.URL.Query().Get("category")))
	}
}

func blogCategoriesHandler(svc *service.BlogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Categories())
	}
}
