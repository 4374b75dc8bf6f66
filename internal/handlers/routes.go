package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// BearerScheme names the security scheme that protected operations declare.
const BearerScheme = "bearer"

var bearerSecurity = []map[string][]string{{BearerScheme: {}}}

// RegisterRoutes registers the session, review and short link routes.
func RegisterRoutes(api huma.API, sessions *SessionHandler, reviews *ReviewHandler, links *ShortLinkHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "create-session",
		Method:      http.MethodPost,
		Path:        "/api/session",
		Summary:     "Create session",
		Description: "Exchanges a username and password for a bearer token.",
		Tags:        []string{"Session"},
		Errors:      []int{http.StatusUnauthorized},
	}, sessions.CreateSession)

	huma.Register(api, huma.Operation{
		OperationID:   "submit-review",
		Method:        http.MethodPost,
		Path:          "/api/review",
		Summary:       "Submit review",
		Description:   "Stores a review and queues it for publishing.",
		Tags:          []string{"Reviews"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerSecurity,
		Errors:        []int{http.StatusUnauthorized},
	}, reviews.SubmitReview)

	huma.Register(api, huma.Operation{
		OperationID: "create-short-link",
		Method:      http.MethodPost,
		Path:        "/api/shorten",
		Summary:     "Create short link",
		Description: "Stores a long URL under a short code. A code is generated when none is given.",
		Tags:        []string{"Links"},
		Security:    bearerSecurity,
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, links.CreateShortLink)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/s/{short}",
		Summary:     "Redirect to long URL",
		Description: "Permanently redirects to the URL stored under the short code.",
		Tags:        []string{"Links"},
		Errors:      []int{http.StatusNotFound},
	}, links.Redirect)
}
