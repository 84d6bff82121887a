package commands

import (
	"errors"
	"os"
	"sort"
	"strconv"
	"strings"
	"wholefoods-scraper/services/wholefoods"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func renderRunStats(stats wholefoods.RunStats) {
	t := newTable()
	t.AppendHeader(table.Row{"Stat", "Value"})
	t.AppendRows([]table.Row{
		{"Spider", stats.SpiderName},
		{"Started", stats.StartTime},
		{"Finished", stats.EndTime},
		{"Runtime (s)", stats.RuntimeSeconds},
		{"Runtime (min)", stats.RuntimeMinutes},
		{"Stores", strings.Join(stats.StoreIDs, ", ")},
		{"Categories", len(stats.Categories)},
		{"Requests", stats.RequestCount},
		{"Responses", stats.ResponseReceivedCount},
		{"Items", stats.ItemScrapedCount},
	})
	t.AppendSeparator()

	codes := make([]string, 0, len(stats.ResponseStatusCounts))
	for code := range stats.ResponseStatusCounts {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		a, _ := strconv.Atoi(codes[i])
		b, _ := strconv.Atoi(codes[j])
		return a < b
	})
	for _, code := range codes {
		t.AppendRow(table.Row{"HTTP " + code, stats.ResponseStatusCounts[code]})
	}
	t.Render()
}

var errNoDatabase = errors.New("pass --db or configure database in the config file")
