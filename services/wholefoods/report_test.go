package wholefoods

import (
	"path/filepath"
	"testing"
	"time"
	"wholefoods-scraper/lib/crawler"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestReporter(t *testing.T) {
	reporter := NewReporter(SpiderName, []string{"10509"}, []string{"produce"})

	_, err := reporter.Finish(time.Now(), crawler.Stats{})
	require.ErrorIs(t, err, ErrNotStarted)
	_, err = reporter.Write(t.TempDir())
	require.ErrorIs(t, err, ErrNotFinished)

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(90*time.Second + 123*time.Millisecond)
	reporter.Start(start)

	stats, err := reporter.Finish(end, crawler.Stats{
		RequestCount:  12,
		ResponseCount: 11,
		ItemCount:     7,
		StatusCounts:  map[int]int64{200: 9, 404: 1, 500: 1},
	})
	require.NoError(t, err)

	expected := RunStats{
		SpiderName:            "wholefoods",
		StartTime:             "2024-05-01 10:00:00",
		EndTime:               "2024-05-01 10:01:30",
		RuntimeSeconds:        90.12,
		RuntimeMinutes:        1.5,
		StoreIDs:              []string{"10509"},
		Categories:            []string{"produce"},
		ItemScrapedCount:      7,
		ResponseReceivedCount: 11,
		RequestCount:          12,
		Status200Count:        9,
		Status404Count:        1,
		Status500Count:        1,
		ResponseStatusCounts:  map[string]int64{"200": 9, "404": 1, "500": 1},
	}
	if diff := cmp.Diff(expected, stats); diff != "" {
		t.Fatal(diff)
	}

	_, err = reporter.Finish(end, crawler.Stats{})
	require.ErrorIs(t, err, ErrAlreadyFinished)

	dir := t.TempDir()
	path, err := reporter.Write(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "wholefoods_spider_stats_20240501_100130.json"), path)

	_, err = reporter.Write(dir)
	require.ErrorIs(t, err, ErrAlreadyWritten)

	read, err := ReadRunStats(path)
	require.NoError(t, err)
	if diff := cmp.Diff(expected, read); diff != "" {
		t.Fatal(diff)
	}
}
