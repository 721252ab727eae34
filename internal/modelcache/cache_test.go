package modelcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/johnmai-dev/CuteMLX/internal/events"
)

type fakeResource struct {
	mu     sync.Mutex
	closed bool
}

func (r *fakeResource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeResource) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// fakeLoader scripts load outcomes per call. If block is non-nil each call
// waits on it after reporting progress.
type fakeLoader struct {
	mu       sync.Mutex
	calls    int
	errs     []error
	progress []float64
	block    chan struct{}
	res      *fakeResource
}

func (l *fakeLoader) Load(_ context.Context, onProgress func(float64)) (Resource, error) {
	l.mu.Lock()
	l.calls++
	n := l.calls
	block := l.block
	prog := l.progress
	l.mu.Unlock()

	for _, p := range prog {
		onProgress(p)
	}
	if block != nil {
		<-block
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= len(l.errs) && l.errs[n-1] != nil {
		return nil, l.errs[n-1]
	}
	if l.res == nil {
		l.res = &fakeResource{}
	}
	return l.res, nil
}

func (l *fakeLoader) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func newTestCache(l Loader, pub events.Publisher) *Cache {
	return New(l, Config{Logger: zerolog.Nop(), Publisher: pub})
}

func TestStatusInitiallyNotLoaded(t *testing.T) {
	c := newTestCache(&fakeLoader{}, nil)
	st := c.Status()
	if st.Phase != PhaseNotLoaded || st.Progress != 0 {
		t.Fatalf("status=%+v", st)
	}
}

func TestLoadSingleFlight(t *testing.T) {
	l := &fakeLoader{block: make(chan struct{})}
	c := newTestCache(l, nil)

	const waiters = 8
	var wg sync.WaitGroup
	results := make([]Resource, waiters)
	errs := make([]error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Load(context.Background())
		}(i)
	}
	// Let the callers pile onto the one flight before releasing it.
	time.Sleep(20 * time.Millisecond)
	if st := c.Status(); st.Phase != PhaseLoading {
		t.Fatalf("phase during load=%s", st.Phase)
	}
	close(l.block)
	wg.Wait()

	if l.callCount() != 1 {
		t.Fatalf("loader calls=%d, want 1", l.callCount())
	}
	for i := 0; i < waiters; i++ {
		if errs[i] != nil {
			t.Fatalf("waiter %d err: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("waiter %d got a different resource", i)
		}
	}
	if st := c.Status(); st.Phase != PhaseReady || st.Progress != 1 {
		t.Fatalf("status after load=%+v", st)
	}
}

func TestLoadReadyFastPath(t *testing.T) {
	l := &fakeLoader{}
	c := newTestCache(l, nil)
	if _, err := c.Load(context.Background()); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if _, err := c.Load(context.Background()); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if l.callCount() != 1 {
		t.Fatalf("loader calls=%d, want 1", l.callCount())
	}
}

func TestLoadFailureResetsAndAllowsRetry(t *testing.T) {
	boom := errors.New("weights corrupt")
	l := &fakeLoader{errs: []error{boom}}
	c := newTestCache(l, nil)

	if _, err := c.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want %v", err, boom)
	}
	if st := c.Status(); st.Phase != PhaseNotLoaded {
		t.Fatalf("phase after failure=%s", st.Phase)
	}
	res, err := c.Load(context.Background())
	if err != nil || res == nil {
		t.Fatalf("retry: res=%v err=%v", res, err)
	}
	if l.callCount() != 2 {
		t.Fatalf("loader calls=%d, want 2", l.callCount())
	}
}

func TestConcurrentWaitersShareFailure(t *testing.T) {
	boom := errors.New("no space left")
	l := &fakeLoader{errs: []error{boom}, block: make(chan struct{})}
	c := newTestCache(l, nil)

	var wg sync.WaitGroup
	errsCh := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Load(context.Background())
			errsCh <- err
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(l.block)
	wg.Wait()
	close(errsCh)
	for err := range errsCh {
		if !errors.Is(err, boom) {
			t.Fatalf("waiter err=%v, want %v", err, boom)
		}
	}
	if l.callCount() != 1 {
		t.Fatalf("loader calls=%d, want 1", l.callCount())
	}
}

func TestCancelledWaiterDoesNotAbortFlight(t *testing.T) {
	l := &fakeLoader{block: make(chan struct{})}
	c := newTestCache(l, nil)

	first := make(chan error, 1)
	go func() {
		_, err := c.Load(context.Background())
		first <- err
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled waiter err=%v", err)
	}

	close(l.block)
	if err := <-first; err != nil {
		t.Fatalf("first caller err: %v", err)
	}
	if st := c.Status(); st.Phase != PhaseReady {
		t.Fatalf("flight should have completed, phase=%s", st.Phase)
	}
	if l.callCount() != 1 {
		t.Fatalf("loader calls=%d, want 1", l.callCount())
	}
}

func TestProgressClampedAndFannedOut(t *testing.T) {
	l := &fakeLoader{progress: []float64{-0.5, 0.25, 0.8, 2.0}}
	pub := events.NewMemory()
	c := newTestCache(l, pub)

	var mu sync.Mutex
	var seen []float64
	c.OnProgress(func(p float64) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	})

	if _, err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	want := []float64{0, 0.25, 0.8, 1}
	if len(seen) != len(want) {
		t.Fatalf("observed %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("observed %v, want %v", seen, want)
		}
	}
	if got := pub.Named("load_progress"); len(got) != len(want) {
		t.Fatalf("progress events=%d, want %d", len(got), len(want))
	}
}

func TestLoadPublishesLifecycleEvents(t *testing.T) {
	pub := events.NewMemory()
	c := newTestCache(&fakeLoader{}, pub)
	if _, err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string]bool{
		"load_start": false,
		"load_ready": false,
	}
	for _, e := range pub.Events() {
		if _, ok := want[e.Name]; ok {
			want[e.Name] = true
		}
	}
	for k, v := range want {
		if !v {
			t.Fatalf("expected event %q; got %+v", k, pub.Events())
		}
	}
}

func TestCloseReleasesResource(t *testing.T) {
	l := &fakeLoader{}
	c := newTestCache(l, nil)
	res, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !res.(*fakeResource).isClosed() {
		t.Fatalf("resource not closed")
	}
	if st := c.Status(); st.Phase != PhaseNotLoaded {
		t.Fatalf("phase after close=%s", st.Phase)
	}
	// Second close is a no-op.
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
