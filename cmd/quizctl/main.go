// Command quizctl sends a one-shot /process request to a running quizd
// server and prints the JSON response, for local smoke-testing.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
)

type song struct {
	Artist             string `json:"artist"`
	Title              string `json:"title"`
	SpotifyURL         string `json:"spotifyUrl"`
	CurrentReleaseDate string `json:"currentReleaseDate"`
}

type processRequest struct {
	FirstSong      song   `json:"firstSong"`
	RemainingSongs []song `json:"remainingSongs"`
}

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8080", "quizd base URL")
		artist    = flag.String("artist", "Blues Traveler", "first song's artist")
		title     = flag.String("title", "Hook", "first song's title")
		date      = flag.String("date", "1995-05-01", "first song's currentReleaseDate")
		url       = flag.String("url", "https://open.spotify.example/track/1", "first song's spotifyUrl")
	)
	flag.Parse()

	req := processRequest{
		FirstSong: song{
			Artist:             *artist,
			Title:              *title,
			SpotifyURL:         *url,
			CurrentReleaseDate: *date,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		log.Fatalf("encoding request: %v", err)
	}

	resp, err := http.Post(*serverURL+"/process", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("POST /process: %v", err)
	}
	defer resp.Body.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "\t")

	var out any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("decoding response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "server responded %d\n", resp.StatusCode)
	}
	enc.Encode(out)
}
