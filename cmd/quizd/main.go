// Command quizd serves the music-release-year quiz pipeline: POST
// /process and /playlist, POST /worker, and GET /stream.
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/teal-fm/quizd/config"
	"github.com/teal-fm/quizd/jobstore"
	"github.com/teal-fm/quizd/orchestrator"
	"github.com/teal-fm/quizd/queue"
	"github.com/teal-fm/quizd/service/catalog"
	"github.com/teal-fm/quizd/service/resolver"
	"github.com/teal-fm/quizd/service/streaming"
	"github.com/teal-fm/quizd/stream"
	"github.com/teal-fm/quizd/worker"
)

func main() {
	port := flag.String("port", "", "override the server port from configuration")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if *port != "" {
		cfg.ServerPort = *port
	}

	catalogClient, err := catalog.NewClient(cfg.CatalogAPIToken)
	if err != nil {
		log.Fatalf("catalog client: %v", err)
	}

	streamingClient, err := streaming.NewClient(cfg.StreamingClientID, cfg.StreamingClientSecret, cfg.StreamingTokenURL)
	if err != nil {
		log.Fatalf("streaming client: %v", err)
	}

	store, err := jobstore.New(cfg.KVRestAPIURL, cfg.KVRestAPIToken, cfg.JobTTL)
	if err != nil {
		log.Fatalf("job store: %v", err)
	}

	queueClient, err := queue.New(cfg.QueuePublishURL, cfg.QueueToken)
	if err != nil {
		log.Fatalf("queue client: %v", err)
	}

	r := resolver.New(catalogClient, cfg.ResolverMinScore)
	o := orchestrator.New(r, store, queueClient, streamingClient)
	w := worker.New(r, store)
	s := stream.New(store, cfg.StreamMaxLifetime)

	app := newApplication(o, w, queueClient, s)

	app.logger.Printf("listening on :%s", cfg.ServerPort)
	if err := http.ListenAndServe(":"+cfg.ServerPort, app.routes()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
