package session

import "github.com/KaramelBytes/cleaner-cli/internal/dataset"

// history is a LIFO stack of deep dataset copies.
type history struct {
	stack []*dataset.Dataset
}

func (h *history) push(ds *dataset.Dataset) {
	h.stack = append(h.stack, ds.Clone())
}

func (h *history) pop() (*dataset.Dataset, bool) {
	n := len(h.stack)
	if n == 0 {
		return nil, false
	}
	top := h.stack[n-1]
	h.stack[n-1] = nil
	h.stack = h.stack[:n-1]
	return top, true
}

func (h *history) len() int { return len(h.stack) }

func (h *history) clear() { h.stack = nil }
