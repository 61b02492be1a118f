package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/coltype/internal/model"
)

// trackingResolver records how many columns it resolves at once
type trackingResolver struct {
	delay   time.Duration
	active  atomic.Int32
	peak    atomic.Int32
	calls   atomic.Int32
	started chan struct{} // closed on the first call when set
}

func (r *trackingResolver) ExplainAt(position int, col model.Column) (model.Decision, error) {
	if r.calls.Add(1) == 1 && r.started != nil {
		close(r.started)
	}
	n := r.active.Add(1)
	for {
		peak := r.peak.Load()
		if n <= peak || r.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(r.delay)
	r.active.Add(-1)
	return model.Decision{Label: model.LabelString, Rule: model.RuleSampled, SampleSize: col.Len()}, nil
}

func columnJobs(n int, resolver ColumnResolver) []*ColumnJob {
	jobs := make([]*ColumnJob, n)
	for i := range jobs {
		jobs[i] = &ColumnJob{
			Position: i,
			Column:   model.Column{Name: string(rune('a' + i%26)), Values: []any{"x"}},
			Resolver: resolver,
		}
	}
	return jobs
}

func TestNewPool_WorkerCount(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{4, 4},
		{1, 1},
		{0, 1},
		{-3, 1},
	}
	for _, tt := range tests {
		if got := NewPoolContext(context.Background(), tt.in).Workers(); got != tt.want {
			t.Errorf("NewPoolContext(context.Background(), %d).Workers() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPool_ResolvesEveryColumn(t *testing.T) {
	pool := NewPoolContext(context.Background(), 3)
	pool.Start()
	defer pool.Shutdown()

	resolver := &trackingResolver{}
	const columns = 12
	for _, job := range columnJobs(columns, resolver) {
		if !pool.Submit(job) {
			t.Fatalf("job for column %d rejected", job.Position)
		}
	}

	results := pool.Wait()
	if len(results) != columns {
		t.Fatalf("expected %d results, got %d", columns, len(results))
	}

	seen := make(map[int]bool)
	for _, r := range results {
		res := r.(*ColumnResult)
		if res.Error != nil {
			t.Errorf("column %d: unexpected error %v", res.Position, res.Error)
		}
		seen[res.Position] = true
	}
	if len(seen) != columns {
		t.Errorf("expected %d distinct positions, got %d", columns, len(seen))
	}
}

func TestPool_BoundedConcurrency(t *testing.T) {
	const workers = 4
	pool := NewPoolContext(context.Background(), workers)
	pool.Start()
	defer pool.Shutdown()

	resolver := &trackingResolver{delay: 5 * time.Millisecond}
	for _, job := range columnJobs(40, resolver) {
		pool.Submit(job)
	}
	pool.Wait()

	if got := resolver.calls.Load(); got != 40 {
		t.Errorf("expected 40 resolutions, got %d", got)
	}
	if peak := resolver.peak.Load(); peak > workers {
		t.Errorf("peak concurrency %d exceeded %d workers", peak, workers)
	}
}

func TestPool_FailuresAreReturned(t *testing.T) {
	pool := NewPoolContext(context.Background(), 2)
	pool.Start()
	defer pool.Shutdown()

	pool.Submit(&ColumnJob{Position: 0, Column: model.Column{Name: "ok"}, Resolver: &stubResolver{label: model.LabelInt}})
	pool.Submit(&ColumnJob{Position: 1, Column: model.Column{Name: "bad"}, Resolver: &stubResolver{panic: true}})

	failed := 0
	for _, r := range pool.Wait() {
		if r.GetError() != nil {
			failed++
			if name := r.(*ColumnResult).Name; name != "bad" {
				t.Errorf("unexpected failing column %q", name)
			}
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failure, got %d", failed)
	}
}

func TestPool_QueueLargerThanBuffer(t *testing.T) {
	pool := NewPoolContext(context.Background(), 1)
	pool.Start()
	defer pool.Shutdown()

	done := make(chan int)
	go func() {
		for _, job := range columnJobs(100, &trackingResolver{}) {
			pool.Submit(job)
		}
		done <- len(pool.Wait())
	}()

	select {
	case n := <-done:
		if n != 100 {
			t.Errorf("expected 100 results, got %d", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("submitting past the queue buffer blocked")
	}
}

func TestPool_SubmitRejectedAfterWait(t *testing.T) {
	pool := NewPoolContext(context.Background(), 2)
	pool.Start()
	defer pool.Shutdown()

	pool.Submit(columnJobs(1, &trackingResolver{})[0])
	if n := len(pool.Wait()); n != 1 {
		t.Fatalf("expected 1 result, got %d", n)
	}

	if pool.Submit(columnJobs(1, &trackingResolver{})[0]) {
		t.Error("expected Submit after Wait to be rejected")
	}
}

func TestPool_SubmitRejectedAfterShutdown(t *testing.T) {
	pool := NewPoolContext(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan bool)
	go func() {
		done <- pool.Submit(columnJobs(1, &trackingResolver{})[0])
	}()

	select {
	case accepted := <-done:
		if accepted {
			t.Error("expected Submit after Shutdown to be rejected")
		}
	case <-time.After(time.Second):
		t.Fatal("Submit after Shutdown blocked")
	}
}

func TestPool_ShutdownDuringWork(t *testing.T) {
	pool := NewPoolContext(context.Background(), 2)
	pool.Start()

	resolver := &trackingResolver{delay: 200 * time.Millisecond, started: make(chan struct{})}
	pool.Submit(columnJobs(1, resolver)[0])
	<-resolver.started

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return")
	}

	// Teardown is idempotent, also after Wait
	pool.Wait()
	pool.Shutdown()
}

func TestPool_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPoolContext(ctx, 2)
	pool.Start()
	defer pool.Shutdown()
	cancel()

	if pool.Submit(columnJobs(1, &trackingResolver{})[0]) {
		t.Error("expected Submit to reject jobs once the parent context is cancelled")
	}
}
