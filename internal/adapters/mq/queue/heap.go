package queue

// readyHeap orders claimable items by tier, then by enqueue sequence so
// items within a tier come out FIFO.
type readyHeap []*Item

func (h readyHeap) Len() int { return len(h) }

func (h readyHeap) Less(i, j int) bool {
	if h[i].tier != h[j].tier {
		return h[i].tier < h[j].tier
	}
	return h[i].seq < h[j].seq
}

func (h readyHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].readyIndex = i
	h[j].readyIndex = j
}

func (h *readyHeap) Push(x any) {
	item := x.(*Item)
	item.readyIndex = len(*h)
	*h = append(*h, item)
}

func (h *readyHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.readyIndex = -1
	*h = old[:n-1]
	return item
}

// delayedHeap orders retry items by the time their backoff elapses.
type delayedHeap []*Item

func (h delayedHeap) Len() int { return len(h) }

func (h delayedHeap) Less(i, j int) bool {
	return h[i].nextAttempt.Before(h[j].nextAttempt)
}

func (h delayedHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].delayedIndex = i
	h[j].delayedIndex = j
}

func (h *delayedHeap) Push(x any) {
	item := x.(*Item)
	item.delayedIndex = len(*h)
	*h = append(*h, item)
}

func (h *delayedHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.delayedIndex = -1
	*h = old[:n-1]
	return item
}
