package jobstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/teal-fm/quizd/models"
)

// fakeKV is a minimal stand-in for an Upstash-shaped REST KV backend: each
// request path is a command and its arguments, e.g. GET /set/foo/bar/EX/60.
type fakeKV struct {
	strings map[string]string
	sets    map[string]map[string]bool
	lists   map[string][]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		strings: make(map[string]string),
		sets:    make(map[string]map[string]bool),
		lists:   make(map[string][]string),
	}
}

func (f *fakeKV) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	for i, p := range parts {
		unescaped, err := url.PathUnescape(p)
		if err == nil {
			parts[i] = unescaped
		}
	}

	var result any
	switch parts[0] {
	case "set":
		f.strings[parts[1]] = parts[2]
		result = "OK"
	case "get":
		if v, ok := f.strings[parts[1]]; ok {
			result = v
		}
	case "del":
		for _, key := range parts[1:] {
			delete(f.strings, key)
			delete(f.sets, key)
			delete(f.lists, key)
		}
		result = len(parts) - 1
	case "sadd":
		key, member := parts[1], parts[2]
		if f.sets[key] == nil {
			f.sets[key] = make(map[string]bool)
		}
		if f.sets[key][member] {
			result = 0
		} else {
			f.sets[key][member] = true
			result = 1
		}
	case "smembers":
		var members []string
		for m := range f.sets[parts[1]] {
			members = append(members, m)
		}
		result = members
	case "rpush":
		key, value := parts[1], parts[2]
		f.lists[key] = append(f.lists[key], value)
		result = len(f.lists[key])
	case "lrange":
		key := parts[1]
		from, _ := strconv.Atoi(parts[2])
		list := f.lists[key]
		if from < 0 || from > len(list) {
			from = len(list)
		}
		result = list[from:]
	case "expire":
		if _, ok := f.strings[parts[1]]; !ok {
			if _, ok := f.sets[parts[1]]; !ok {
				if _, ok := f.lists[parts[1]]; !ok {
					result = 0
					break
				}
			}
		}
		result = 1
	default:
		http.Error(w, "unknown command "+parts[0], http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"result": result})
}

func newTestStore(t *testing.T) (*Store, *fakeKV) {
	t.Helper()
	kv := newFakeKV()
	srv := httptest.NewServer(kv)
	t.Cleanup(srv.Close)

	s, err := New(srv.URL, "test-token", time.Hour)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, kv
}

func TestInitJobSeedsStatusAndYears(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.InitJob(ctx, "job1", "1994"); err != nil {
		t.Fatalf("InitJob() error = %v", err)
	}

	status, ok, err := s.GetStatus(ctx, "job1")
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if !ok || status != models.JobQueued {
		t.Errorf("status = %q (ok=%v), want queued", status, ok)
	}

	results, err := s.ListResults(ctx, "job1", 0)
	if err != nil {
		t.Fatalf("ListResults() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("ListResults() = %+v, want empty", results)
	}
}

func TestAppendResultDedupesByYear(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if err := s.InitJob(ctx, "job1", "1994"); err != nil {
		t.Fatalf("InitJob() error = %v", err)
	}

	first := models.ProcessedSong{Artist: "a", Title: "b", ReleaseYear: "1980", Source: models.SourceCatalog}
	added, err := s.AppendResult(ctx, "job1", first)
	if err != nil {
		t.Fatalf("AppendResult() error = %v", err)
	}
	if !added {
		t.Fatal("first append with a new year should succeed")
	}

	dup := models.ProcessedSong{Artist: "c", Title: "d", ReleaseYear: "1980", Source: models.SourceCatalog}
	added, err = s.AppendResult(ctx, "job1", dup)
	if err != nil {
		t.Fatalf("AppendResult() error = %v", err)
	}
	if added {
		t.Error("second append with a duplicate year should be discarded")
	}

	results, err := s.ListResults(ctx, "job1", 0)
	if err != nil {
		t.Fatalf("ListResults() error = %v", err)
	}
	if len(results) != 1 || results[0].Artist != "a" {
		t.Errorf("ListResults() = %+v, want only the first append", results)
	}
}

func TestAppendResultAgainstFirstYearIsDiscarded(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if err := s.InitJob(ctx, "job1", "1994"); err != nil {
		t.Fatalf("InitJob() error = %v", err)
	}

	clashesWithFirst := models.ProcessedSong{Artist: "a", Title: "b", ReleaseYear: "1994", Source: models.SourceStreaming}
	added, err := s.AppendResult(ctx, "job1", clashesWithFirst)
	if err != nil {
		t.Fatalf("AppendResult() error = %v", err)
	}
	if added {
		t.Error("a result whose year matches the seeded first year should be discarded")
	}
}

func TestListResultsFromOffset(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if err := s.InitJob(ctx, "job1", "1994"); err != nil {
		t.Fatalf("InitJob() error = %v", err)
	}

	years := []string{"1980", "1981", "1982"}
	for _, y := range years {
		if _, err := s.AppendResult(ctx, "job1", models.ProcessedSong{ReleaseYear: y}); err != nil {
			t.Fatalf("AppendResult() error = %v", err)
		}
	}

	results, err := s.ListResults(ctx, "job1", 1)
	if err != nil {
		t.Fatalf("ListResults() error = %v", err)
	}
	if len(results) != 2 || results[0].ReleaseYear != "1981" {
		t.Errorf("ListResults(from=1) = %+v, want [1981, 1982]", results)
	}
}

func TestSetStatusTransitions(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if err := s.InitJob(ctx, "job1", "1994"); err != nil {
		t.Fatalf("InitJob() error = %v", err)
	}

	if err := s.SetStatus(ctx, "job1", models.JobComplete); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	status, ok, err := s.GetStatus(ctx, "job1")
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if !ok || status != models.JobComplete {
		t.Errorf("status = %q (ok=%v), want complete", status, ok)
	}
}

func TestGetStatusMissingJob(t *testing.T) {
	s, _ := newTestStore(t)
	_, ok, err := s.GetStatus(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if ok {
		t.Error("GetStatus() on a missing job should report ok=false")
	}
}

func TestDeleteRemovesAllKeys(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if err := s.InitJob(ctx, "job1", "1994"); err != nil {
		t.Fatalf("InitJob() error = %v", err)
	}
	if _, err := s.AppendResult(ctx, "job1", models.ProcessedSong{ReleaseYear: "1980"}); err != nil {
		t.Fatalf("AppendResult() error = %v", err)
	}

	if err := s.Delete(ctx, "job1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, ok, err := s.GetStatus(ctx, "job1")
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if ok {
		t.Error("status should be gone after Delete()")
	}
	results, err := s.ListResults(ctx, "job1", 0)
	if err != nil {
		t.Fatalf("ListResults() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("ListResults() after Delete() = %+v, want empty", results)
	}
}
