// Package resolver decides a song's original release year: normalize the
// song's artist/title, search the discography catalog, score candidates,
// fetch the winning master's main release, and validate its date — or
// fall back to the streaming service's own metadata.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/teal-fm/quizd/apierr"
	"github.com/teal-fm/quizd/models"
	"github.com/teal-fm/quizd/service/catalog"
)

// citationBase is where a catalog.Master's human-facing page lives; it is
// distinct from the catalog API's own base URL.
const citationBase = "https://discography.example"

// Resolver never returns an error from Resolve — every failure path ends
// in fallbackToStreaming, per spec.md §4.3's "never throws" contract.
type Resolver struct {
	catalog  *catalog.Client
	minScore int
	now      func() time.Time
	logger   *log.Logger
}

// New builds a Resolver. minScore is the selection threshold (spec.md §4.3
// step 6; 80 by default per SPEC_FULL.md §6).
func New(catalogClient *catalog.Client, minScore int) *Resolver {
	return &Resolver{
		catalog:  catalogClient,
		minScore: minScore,
		now:      time.Now,
		logger:   log.New(os.Stdout, "resolver: ", log.LstdFlags|log.Lmsgprefix),
	}
}

// Resolve implements the full algorithm of spec.md §4.3. It never panics
// or returns an error: any failure inside the catalog path is caught and
// routed to FallbackToStreaming.
func (r *Resolver) Resolve(ctx context.Context, song models.Song) models.ProcessedSong {
	processed, err := r.resolveFromCatalog(ctx, song)
	if err != nil {
		var apiErr *apierr.Error
		kind := apierr.KindUpstreamTransient
		if errors.As(err, &apiErr) {
			kind = apiErr.Kind
		}
		r.logger.Printf("falling back to streaming metadata for %q by %q (%s): %v", song.Title, song.Artist, kind, err)
		return FallbackToStreaming(song)
	}
	return processed
}

// classifyCatalogErr maps a catalog transport error to the taxonomy of
// spec.md §7: a 401/403 is UpstreamAuth, anything else transport-level is
// UpstreamTransient.
func classifyCatalogErr(err error) apierr.Kind {
	var catErr *catalog.Error
	if errors.As(err, &catErr) && (catErr.Status == 401 || catErr.Status == 403) {
		return apierr.KindUpstreamAuth
	}
	return apierr.KindUpstreamTransient
}

func (r *Resolver) resolveFromCatalog(ctx context.Context, song models.Song) (models.ProcessedSong, error) {
	normArtist := catalog.Normalize(song.Artist)
	normTitle := catalog.Normalize(song.Title)
	currentYear := r.now().Year()

	results, err := r.catalog.Search(ctx, catalog.SearchParams{
		Query:   normArtist + " " + normTitle,
		Type:    catalog.MasterType,
		PerPage: 10,
		Sort:    "year,asc",
	})
	if err != nil {
		return models.ProcessedSong{}, apierr.New(classifyCatalogErr(err), fmt.Errorf("primary search: %w", err))
	}

	if len(results) == 0 {
		results, err = r.catalog.Search(ctx, catalog.SearchParams{
			Query:   fmt.Sprintf(`artist:"%s"`, normArtist),
			Type:    catalog.MasterType,
			PerPage: 20,
			Sort:    "year,asc",
		})
		if err != nil {
			return models.ProcessedSong{}, apierr.New(classifyCatalogErr(err), fmt.Errorf("retry search: %w", err))
		}
	}

	if len(results) == 0 {
		return models.ProcessedSong{}, apierr.New(apierr.KindNoMatch, fmt.Errorf("no catalog results for %q by %q", song.Title, song.Artist))
	}

	idx, score := bestCandidate(results, normArtist, normTitle, currentYear)
	if idx < 0 || score < r.minScore {
		return models.ProcessedSong{}, apierr.New(apierr.KindNoMatch, fmt.Errorf("best candidate score %d below threshold %d", score, r.minScore))
	}
	best := results[idx]

	master, err := r.catalog.GetMaster(ctx, best.ID)
	if err != nil {
		return models.ProcessedSong{}, apierr.New(classifyCatalogErr(err), fmt.Errorf("get master %d: %w", best.ID, err))
	}

	release, err := r.catalog.GetRelease(ctx, master.MainReleaseID)
	if err != nil {
		return models.ProcessedSong{}, apierr.New(classifyCatalogErr(err), fmt.Errorf("get release %d: %w", master.MainReleaseID, err))
	}

	if len(release.Formats) > 0 && isPromo(release.Formats[0].Descriptions) {
		return models.ProcessedSong{}, apierr.New(apierr.KindNoMatch, fmt.Errorf("main release %d is promotional", master.MainReleaseID))
	}

	year, month, day := dateParts(release.Released)
	if year == models.NotAvailable && master.Year != 0 {
		year = fmt.Sprintf("%d", master.Year)
	}

	if !validYear(year, currentYear) {
		return models.ProcessedSong{}, apierr.New(apierr.KindInvalidYear, fmt.Errorf("year %q out of range", year))
	}

	return models.ProcessedSong{
		Artist:             song.Artist,
		Title:              song.Title,
		SpotifyURL:         song.SpotifyURL,
		CurrentReleaseDate: song.CurrentReleaseDate,
		ReleaseYear:        year,
		ReleaseMonth:       month,
		ReleaseDay:         day,
		Source:             models.SourceCatalog,
		SourceURL:          fmt.Sprintf("%s/master/%d", citationBase, best.ID),
	}, nil
}

// FallbackToStreaming returns a ProcessedSong built solely from the
// streaming service's own release date (spec.md §4.3): it depends only on
// song, so calling it twice on the same song yields equal results.
func FallbackToStreaming(song models.Song) models.ProcessedSong {
	year, month, day := dateParts(song.CurrentReleaseDate)
	return models.ProcessedSong{
		Artist:             song.Artist,
		Title:              song.Title,
		SpotifyURL:         song.SpotifyURL,
		CurrentReleaseDate: song.CurrentReleaseDate,
		ReleaseYear:        year,
		ReleaseMonth:       month,
		ReleaseDay:         day,
		Source:             models.SourceStreaming,
		SourceURL:          song.SpotifyURL,
	}
}
