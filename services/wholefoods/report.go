package wholefoods

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"wholefoods-scraper/lib/crawler"
)

var (
	ErrNotStarted      = errors.New("run reporter was not started")
	ErrAlreadyFinished = errors.New("run stats were already computed")
	ErrNotFinished     = errors.New("run stats were not computed yet")
	ErrAlreadyWritten  = errors.New("run stats were already written")
)

const statsTimeLayout = "2006-01-02 15:04:05"

type RunStats struct {
	SpiderName            string           `json:"spider_name"`
	StartTime             string           `json:"start_time"`
	EndTime               string           `json:"end_time"`
	RuntimeSeconds        float64          `json:"runtime_seconds"`
	RuntimeMinutes        float64          `json:"runtime_minutes"`
	StoreIDs              []string         `json:"store_ids"`
	Categories            []string         `json:"categories"`
	ItemScrapedCount      int64            `json:"item_scraped_count"`
	ResponseReceivedCount int64            `json:"response_received_count"`
	RequestCount          int64            `json:"request_count"`
	Status200Count        int64            `json:"status_200_count"`
	Status404Count        int64            `json:"status_404_count"`
	Status500Count        int64            `json:"status_500_count"`
	ResponseStatusCounts  map[string]int64 `json:"response_status_counts"`
}

// Reporter records when a crawl ran and writes its counters once.
type Reporter struct {
	spiderName string
	storeIDs   []string
	categories []string

	start    time.Time
	end      time.Time
	stats    *RunStats
	filename string
}

func NewReporter(spiderName string, storeIDs, categories []string) *Reporter {
	return &Reporter{
		spiderName: spiderName,
		storeIDs:   storeIDs,
		categories: categories,
	}
}

func (r *Reporter) Start(now time.Time) {
	r.start = now
	slog.Info("spider opened", "spider", r.spiderName, "at", now.Format(statsTimeLayout))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Finish computes the run stats, `now` should come from time.Now so the elapsed
// time is measured on the monotonic clock.
func (r *Reporter) Finish(now time.Time, stats crawler.Stats) (RunStats, error) {
	if r.start.IsZero() {
		return RunStats{}, ErrNotStarted
	}
	if r.stats != nil {
		return *r.stats, ErrAlreadyFinished
	}
	r.end = now

	elapsed := now.Sub(r.start).Seconds()
	statusCounts := make(map[string]int64, len(stats.StatusCounts))
	for code, count := range stats.StatusCounts {
		statusCounts[strconv.Itoa(code)] = count
	}

	out := RunStats{
		SpiderName:            r.spiderName,
		StartTime:             r.start.Format(statsTimeLayout),
		EndTime:               now.Format(statsTimeLayout),
		RuntimeSeconds:        round2(elapsed),
		RuntimeMinutes:        round2(elapsed / 60),
		StoreIDs:              r.storeIDs,
		Categories:            r.categories,
		ItemScrapedCount:      stats.ItemCount,
		ResponseReceivedCount: stats.ResponseCount,
		RequestCount:          stats.RequestCount,
		Status200Count:        stats.Status(200),
		Status404Count:        stats.Status(404),
		Status500Count:        stats.Status(500),
		ResponseStatusCounts:  statusCounts,
	}
	r.stats = &out

	slog.Info(
		"spider closed",
		"spider", r.spiderName,
		"at", out.EndTime,
		"runtime_seconds", out.RuntimeSeconds,
		"runtime_minutes", out.RuntimeMinutes,
	)
	return out, nil
}

func (r *Reporter) Filename() string {
	return fmt.Sprintf("wholefoods_spider_stats_%s.json", r.end.Format("20060102_150405"))
}

// Write serializes the run stats into `dir`, it may only succeed once.
func (r *Reporter) Write(dir string) (string, error) {
	if r.stats == nil {
		return "", ErrNotFinished
	}
	if r.filename != "" {
		return r.filename, ErrAlreadyWritten
	}

	contents, err := json.MarshalIndent(r.stats, "", "    ")
	if err != nil {
		return "", err
	}
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, r.Filename())
	err = os.WriteFile(path, contents, 0o644)
	if err != nil {
		return "", fmt.Errorf("write run stats: %w", err)
	}
	r.filename = path

	slog.Info("stats saved", "path", path)
	return path, nil
}

func ReadRunStats(path string) (RunStats, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return RunStats{}, err
	}
	var out RunStats
	err = json.Unmarshal(contents, &out)
	if err != nil {
		return RunStats{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}
