// Package stubapi serves survey definitions over the wire format the SDK
// consumes. It backs cmd/surveydemo and the integration tests; it is not the
// production API.
package stubapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/glimpsehq/glimpse-go/model"
)

// Wire builds the stub API router. Requests must carry the expected project
// token; the survey list is served as-is.
func Wire(token string, surveys []model.Survey) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Get("/api/surveys/", getSurveys(token, surveys))

	return root
}

func getSurveys(token string, surveys []model.Survey) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != token {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, map[string]string{"error": "invalid token"})
			return
		}

		render.JSON(w, r, map[string]any{"surveys": surveys})
	}
}
