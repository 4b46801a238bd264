package testkit

import (
	"context"
	"net/http"
)

func contextWithEmail(r *http.Request, email string) context.Context {
	return context.WithValue(r.Context(), ctxEmail{}, email)
}

func emailFrom(r *http.Request) string {
	email, _ := r.Context().Value(ctxEmail{}).(string)
	return email
}
