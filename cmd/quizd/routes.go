package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /process", app.handleProcess)
	mux.HandleFunc("POST /playlist", app.handlePlaylist)
	mux.HandleFunc("POST /worker", app.handleWorker)
	mux.HandleFunc("GET /stream", app.handleStream)

	standard := alice.New(app.recoverPanic, app.logRequest)
	return standard.Then(mux)
}
