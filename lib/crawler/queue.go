package crawler

import "container/heap"

type queueItem struct {
	req *Request
	seq uint64
}

// requestQueue is a max-heap on priority, FIFO among equal priorities.
type requestQueue struct {
	items []queueItem
	seq   uint64
}

func (q *requestQueue) Len() int { return len(q.items) }

func (q *requestQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.req.Priority != b.req.Priority {
		return a.req.Priority > b.req.Priority
	}
	return a.seq < b.seq
}

func (q *requestQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *requestQueue) Push(x any) { q.items = append(q.items, x.(queueItem)) }

func (q *requestQueue) Pop() any {
	n := len(q.items)
	item := q.items[n-1]
	q.items[n-1] = queueItem{}
	q.items = q.items[:n-1]
	return item
}

func (q *requestQueue) push(req *Request) {
	heap.Push(q, queueItem{req: req, seq: q.seq})
	q.seq++
}

func (q *requestQueue) pop() *Request {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(queueItem).req
}
