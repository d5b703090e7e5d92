package main

import (
	"log"
	"os"

	"github.com/teal-fm/quizd/orchestrator"
	"github.com/teal-fm/quizd/queue"
	"github.com/teal-fm/quizd/stream"
	"github.com/teal-fm/quizd/worker"
)

// application wires together the services that back the HTTP surface,
// the same shape the teacher's cmd/main.go builds for its own handlers.
type application struct {
	orchestrator *orchestrator.Orchestrator
	worker       *worker.Worker
	queue        *queue.Client
	stream       *stream.Handler
	logger       *log.Logger
}

func newApplication(o *orchestrator.Orchestrator, w *worker.Worker, q *queue.Client, s *stream.Handler) *application {
	return &application{
		orchestrator: o,
		worker:       w,
		queue:        q,
		stream:       s,
		logger:       log.New(os.Stdout, "quizd: ", log.LstdFlags|log.Lmsgprefix),
	}
}
