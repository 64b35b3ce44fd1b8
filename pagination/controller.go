// Package pagination reveals an ordered result a page at a time.
package pagination

import (
	"sync"
	"time"

	"github.com/aluiziolira/go-bargains/models"
)

// DefaultPageSize matches the number of cards shown per page in the browser.
const DefaultPageSize = 30

// Controller tracks how many items of an ordered result are revealed.
//
// RequestAdvance is the only way to grow the revealed count. While an advance
// is in flight further requests are dropped, which absorbs bursts from a
// trigger that fires repeatedly (a scroll sentinel, a key held down).
type Controller struct {
	pageSize int
	settle   time.Duration

	mu        sync.Mutex
	revealed  int
	advancing bool
	gen       uint64
	pending   int
	settled   *sync.Cond
}

// NewController returns a controller revealing pageSize items per step.
// With a positive settle delay each accepted advance is applied after the
// delay instead of immediately. Non-positive page sizes fall back to
// DefaultPageSize.
func NewController(pageSize int, settle time.Duration) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	c := &Controller{
		pageSize: pageSize,
		settle:   settle,
		revealed: pageSize,
	}
	c.settled = sync.NewCond(&c.mu)
	return c
}

// PageSize returns the step size.
func (c *Controller) PageSize() int {
	return c.pageSize
}

// Revealed returns the current revealed count.
func (c *Controller) Revealed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revealed
}

// Advancing reports whether an advance is in flight.
func (c *Controller) Advancing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advancing
}

// Visible returns the revealed prefix of products.
func (c *Controller) Visible(products []models.Product) []models.Product {
	n := min(c.Revealed(), len(products))
	return products[:n:n]
}

// HasMore reports whether a result of size total has unrevealed items.
func (c *Controller) HasMore(total int) bool {
	return c.Revealed() < total
}

// RequestAdvance reveals the next page of a result of size total. It returns
// false when the request was dropped: an advance is already in flight or
// nothing is left to reveal.
func (c *Controller) RequestAdvance(total int) bool {
	c.mu.Lock()
	if c.advancing || c.revealed >= total {
		c.mu.Unlock()
		return false
	}
	c.advancing = true
	gen := c.gen

	if c.settle <= 0 {
		c.applyLocked(gen, total)
		c.mu.Unlock()
		return true
	}

	c.pending++
	c.mu.Unlock()

	time.AfterFunc(c.settle, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.applyLocked(gen, total)
		c.pending--
		if c.pending == 0 {
			c.settled.Broadcast()
		}
	})
	return true
}

// applyLocked grows the revealed count and releases the guard. An advance
// accepted before the last Reset is stale and changes nothing; Reset already
// released its guard.
func (c *Controller) applyLocked(gen uint64, total int) {
	if gen != c.gen {
		return
	}
	c.revealed = max(c.revealed, min(c.revealed+c.pageSize, total))
	c.advancing = false
}

// Wait blocks until any delayed advance has been applied or discarded.
func (c *Controller) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pending > 0 {
		c.settled.Wait()
	}
}

// Reset returns the revealed count to one page and discards a pending
// delayed advance. Call it whenever the filter or the dataset changes.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revealed = c.pageSize
	c.advancing = false
	c.gen++
}
