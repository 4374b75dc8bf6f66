package handlers

// CreateSessionRequest is the request body for exchanging credentials for a token.
type CreateSessionRequest struct {
	Body struct {
		Username string `doc:"Account name"     example:"alice"  json:"username" minLength:"1"`
		Password string `doc:"Account password" example:"s3cret" json:"password"`
	}
}

// CreateSessionResponse carries the issued session token.
type CreateSessionResponse struct {
	Body struct {
		Status string `doc:"Always OK on success" example:"OK"                json:"status"`
		Token  string `doc:"Opaque bearer token"  example:"v4.local.AAAAAAAA" json:"token"`
	}
}

// SubmitReviewRequest is the request body for submitting a review.
type SubmitReviewRequest struct {
	Body struct {
		URL      string `doc:"Spotify link being reviewed"        example:"https://open.spotify.com/track/1" json:"url"      minLength:"1"`
		Review   string `doc:"Review text"                        example:"Great record"                     json:"review"`
		Schedule string `doc:"Optional ISO 8601 publication time" example:"2026-12-01T10:00:00Z"             json:"schedule"               required:"false"`
	}
}

// SubmitReviewResponse is returned once the review is persisted.
type SubmitReviewResponse struct {
	Body struct {
		Status string `doc:"Always ok on success"     example:"ok"                                   json:"status"`
		ID     string `doc:"Identifier of the review" example:"0b5f8d1e-6f0c-4c39-9d0e-8f1c2a3b4c5d" json:"id"`
	}
}

// CreateShortLinkRequest is the request body for creating a short link.
type CreateShortLinkRequest struct {
	Body struct {
		URL   string `doc:"The URL to shorten"                     example:"https://example.com/very/long/path" json:"url"   minLength:"1"`
		Short string `doc:"Desired short code, generated if empty" example:"spring-mix"                         json:"short"               required:"false"`
	}
}

// CreateShortLinkResponse is the response for a successfully created short link.
type CreateShortLinkResponse struct {
	Body struct {
		Status   string `doc:"Always ok on success" example:"ok"                                    json:"status"`
		ShortURL string `doc:"The full short URL"   example:"https://onxpoint.example/s/spring-mix" json:"short_url"`
	}
}

// RedirectRequest is the request for redirecting a short link.
type RedirectRequest struct {
	Short string `doc:"The short code" example:"spring-mix" path:"short"`
}

// RedirectResponse redirects to the long URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}
