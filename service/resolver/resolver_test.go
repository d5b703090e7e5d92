package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/teal-fm/quizd/models"
	"github.com/teal-fm/quizd/service/catalog"
)

func withFastLimiter(t *testing.T) {
	t.Helper()
	old := catalog.Limiter
	catalog.Limiter = rate.NewLimiter(rate.Every(time.Microsecond), 1)
	t.Cleanup(func() { catalog.Limiter = old })
}

func fixedNow(year int) func() time.Time {
	return func() time.Time { return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC) }
}

// TestResolveHappyPath mirrors scenario S1 from spec.md §8: Blues Traveler's
// "Hook" is credited to the 1994 album Four, and the catalog search
// (sorted ascending by year) should surface that year over the 1995
// single reissue.
func TestResolveHappyPath(t *testing.T) {
	withFastLimiter(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/database/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"id":1,"title":"Blues Traveler - Hook","year":"1994","format":["CD"]}]}`))
	})
	mux.HandleFunc("/masters/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"title":"Four","year":1994,"main_release":10}`))
	})
	mux.HandleFunc("/releases/10", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":10,"title":"Four","released":"1994-08-30","formats":[{"name":"CD","descriptions":["Album"]}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cat, err := catalog.NewClient("token", catalog.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	r := New(cat, 80)
	r.now = fixedNow(2024)

	song := models.Song{Artist: "Blues Traveler", Title: "Hook", CurrentReleaseDate: "1995-05-01", SpotifyURL: "u"}
	got := r.Resolve(context.Background(), song)

	if got.ReleaseYear != "1994" {
		t.Errorf("ReleaseYear = %q, want 1994", got.ReleaseYear)
	}
	if got.Source != models.SourceCatalog {
		t.Errorf("Source = %q, want catalog", got.Source)
	}
}

// TestResolveNoResultsFallsBack covers spec.md §8 scenario S3 (catalog
// outage / empty results): the resolver must fall back to the streaming
// service's own metadata.
func TestResolveNoResultsFallsBack(t *testing.T) {
	withFastLimiter(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/database/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cat, _ := catalog.NewClient("token", catalog.WithBaseURL(srv.URL))
	r := New(cat, 80)
	r.now = fixedNow(2024)

	song := models.Song{Artist: "X", Title: "Y", CurrentReleaseDate: "1984-07-15", SpotifyURL: "u"}
	got := r.Resolve(context.Background(), song)

	if got.Source != models.SourceStreaming {
		t.Errorf("Source = %q, want streaming", got.Source)
	}
	if got.ReleaseYear != "1984" || got.ReleaseMonth != "July" || got.ReleaseDay != "15" {
		t.Errorf("got = %+v, want 1984/July/15", got)
	}
}

// TestResolvePromoFiltered covers spec.md §8 scenario S4: a perfect-score
// candidate whose main release is a promo must still fall back.
func TestResolvePromoFiltered(t *testing.T) {
	withFastLimiter(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/database/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"id":1,"title":"Artist - Title","year":"2000","format":["CD"]}]}`))
	})
	mux.HandleFunc("/masters/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"title":"Title","year":2000,"main_release":10}`))
	})
	mux.HandleFunc("/releases/10", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":10,"title":"Title","released":"2000-01-01","formats":[{"name":"CD","descriptions":["Promo"]}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cat, _ := catalog.NewClient("token", catalog.WithBaseURL(srv.URL))
	r := New(cat, 80)
	r.now = fixedNow(2024)

	song := models.Song{Artist: "Artist", Title: "Title", CurrentReleaseDate: "2001-02", SpotifyURL: "u"}
	got := r.Resolve(context.Background(), song)

	if got.Source != models.SourceStreaming {
		t.Errorf("promo candidate should be rejected, got Source = %q", got.Source)
	}
}

func TestScoreCandidateExactMatch(t *testing.T) {
	c := catalogResult(t, "Beatles - Hey Jude", "1968")
	score := scoreCandidate(c, "beatles", "hey jude", 2024)
	if score != 100 {
		t.Errorf("score = %d, want 100", score)
	}
}

func TestScoreCandidateNoDashIsZero(t *testing.T) {
	c := catalogResult(t, "Beatles Hey Jude", "1968")
	score := scoreCandidate(c, "beatles", "hey jude", 2024)
	if score != 0 {
		t.Errorf("score = %d, want 0 for title without ' - '", score)
	}
}

func TestFallbackToStreamingBoundaries(t *testing.T) {
	tests := []struct {
		name               string
		currentReleaseDate string
		wantYear           string
		wantMonth          string
		wantDay            string
	}{
		{"empty", "", models.NotAvailable, models.NotAvailable, models.NotAvailable},
		{"year only", "1999", "1999", models.NotAvailable, models.NotAvailable},
		{"year and month", "1999-03", "1999", "March", models.NotAvailable},
		{"full date", "1999-03-05", "1999", "March", "05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			song := models.Song{Artist: "a", Title: "b", CurrentReleaseDate: tt.currentReleaseDate, SpotifyURL: "u"}
			got := FallbackToStreaming(song)
			if got.ReleaseYear != tt.wantYear || got.ReleaseMonth != tt.wantMonth || got.ReleaseDay != tt.wantDay {
				t.Errorf("FallbackToStreaming(%q) = %+v, want year=%s month=%s day=%s",
					tt.currentReleaseDate, got, tt.wantYear, tt.wantMonth, tt.wantDay)
			}
			if got.Source != models.SourceStreaming {
				t.Errorf("Source = %q, want streaming", got.Source)
			}
		})
	}
}

func TestFallbackToStreamingDeterministic(t *testing.T) {
	song := models.Song{Artist: "a", Title: "b", CurrentReleaseDate: "2001-02-03", SpotifyURL: "u"}
	first := FallbackToStreaming(song)
	second := FallbackToStreaming(song)
	if first != second {
		t.Errorf("FallbackToStreaming not deterministic: %+v != %+v", first, second)
	}
}

func catalogResult(t *testing.T, title, year string) catalog.SearchResult {
	t.Helper()
	return catalog.SearchResult{Title: title, Year: year}
}
