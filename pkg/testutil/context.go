package testutil

import (
	"net/http"

	"cis/pkg/requestcontext"
)

// WithAuthor adds an authenticated author to the request context, as the
// bearer auth middleware would.
func WithAuthor(req *http.Request, author string) *http.Request {
	return req.WithContext(requestcontext.WithAuthor(req.Context(), author))
}
