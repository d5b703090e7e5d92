package main

import (
	"fmt"
	"net/http"
)

// logRequest logs the method and URL of every incoming request.
func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.logger.Printf("%s %s %s", r.RemoteAddr, r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

// recoverPanic turns a panicking handler into a 500 instead of crashing
// the server, matching the worker's own per-song panic recovery.
func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("internal error: %v", err)})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
