package pool

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsAllTasks(t *testing.T) {
	p := New(4)
	p.Start()
	defer p.Stop()

	var count int64
	const n = 500
	for i := 0; i < n; i++ {
		p.AddTask(func(w Worker) {
			if w.ID < 0 || w.ID >= p.NThreads() {
				t.Errorf("worker id %d out of range", w.ID)
			}
			atomic.AddInt64(&count, 1)
		})
	}
	p.WaitCompletion()

	if got := atomic.LoadInt64(&count); got != n {
		t.Errorf("count = %d, want %d", got, n)
	}
}

func TestPoolWaitCompletionIsRepeatable(t *testing.T) {
	p := New(2)
	p.Start()
	defer p.Stop()

	for batch := 0; batch < 3; batch++ {
		var done int32
		for i := 0; i < 10; i++ {
			p.AddTask(func(w Worker) {
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&done, 1)
			})
		}
		p.WaitCompletion()
		if got := atomic.LoadInt32(&done); got != 10 {
			t.Errorf("batch %d: done = %d, want 10", batch, got)
		}
	}
}

func TestPoolStopThenRestart(t *testing.T) {
	p := New(2)
	p.Start()
	if !p.IsRunning() {
		t.Fatal("expected pool to be running after Start")
	}
	p.Stop()
	if p.IsRunning() {
		t.Fatal("expected pool to be stopped after Stop")
	}

	p.Start()
	defer p.Stop()
	var ran bool
	done := make(chan struct{})
	p.AddTask(func(w Worker) {
		ran = true
		close(done)
	})
	<-done
	if !ran {
		t.Fatal("task did not run after restart")
	}
}
