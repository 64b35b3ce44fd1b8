package loader

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// attemptHeader carries the attempt id from fetchOnce to the transport. It is
// stripped before the request leaves the process.
const attemptHeader = "X-Bargains-Attempt"

// contextTransport ties requests issued by the collector to the context of
// the Fetch call that issued them. Colly builds its requests without a
// context, so cancellation has to be attached here.
type contextTransport struct {
	base http.RoundTripper

	mu   sync.Mutex
	ctxs map[string]context.Context
}

func newContextTransport(base http.RoundTripper) *contextTransport {
	return &contextTransport{
		base: base,
		ctxs: make(map[string]context.Context),
	}
}

// bind registers ctx under a fresh id. The returned func removes it.
func (t *contextTransport) bind(ctx context.Context) (string, func()) {
	id := uuid.NewString()

	t.mu.Lock()
	t.ctxs[id] = ctx
	t.mu.Unlock()

	return id, func() {
		t.mu.Lock()
		delete(t.ctxs, id)
		t.mu.Unlock()
	}
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := req.Header.Get(attemptHeader)
	t.mu.Lock()
	parent, ok := t.ctxs[id]
	t.mu.Unlock()

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if !ok {
		return base.RoundTrip(req)
	}

	// The request context carries the client timeout; cancelling parent
	// cancels it too.
	ctx, cancel := context.WithCancel(req.Context())
	stop := context.AfterFunc(parent, cancel)
	release := func() {
		stop()
		cancel()
	}

	out := req.Clone(ctx)
	out.Header.Del(attemptHeader)
	resp, err := base.RoundTrip(out)
	if err != nil {
		release()
		return nil, err
	}
	resp.Body = &releaseOnClose{ReadCloser: resp.Body, release: release}
	return resp, nil
}

type releaseOnClose struct {
	io.ReadCloser
	once    sync.Once
	release func()
}

func (b *releaseOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)
	return err
}
