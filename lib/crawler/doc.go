// Package crawler drives a spider through an asynchronous request/response loop.
//
// each scraping method generally has this structure:
// 1. transform input into an HTTP request (url, headers, request-scoped flags, meta).
// 2. make the request.
// 3. make assertions on response validity (expected status, expected body type).
// 4. transform the response into output records and/or follow-up requests.
//
// the engine owns steps 2 and 3: scheduling by priority, deduplication, per-host
// politeness and retries. the spider owns steps 1 and 4 and is the thing that guides
// the program through acquiring all the information it wants.
//
// handlers are always called from the engine goroutine, one at a time, so a spider
// may keep plain mutable state without locking.
package crawler
