package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchday/internal/adapters/mq/queue"
	"github.com/okian/matchday/internal/adapters/mq/worker"
	"github.com/okian/matchday/internal/domain/types"
	logging "github.com/okian/matchday/pkg/logger"
)

type mockQueue struct {
	results chan worker.Result
}

func newMockQueue() *mockQueue {
	return &mockQueue{results: make(chan worker.Result, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan worker.Result { return mq.results }

func (mq *mockQueue) Close() error {
	close(mq.results)
	return nil
}

type mockUpdater struct {
	mu       sync.Mutex
	recorded map[string]types.Result
	failures map[string]int // remaining failures per match
}

func newMockUpdater() *mockUpdater {
	return &mockUpdater{
		recorded: make(map[string]types.Result),
		failures: make(map[string]int),
	}
}

func (m *mockUpdater) Record(_ context.Context, r types.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := m.failures[r.MatchID]; n != 0 {
		if n > 0 {
			m.failures[r.MatchID] = n - 1
		}
		return errors.New("store unavailable")
	}
	m.recorded[r.MatchID] = r
	return nil
}

func (m *mockUpdater) failFor(id string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[id] = n
}

func (m *mockUpdater) get(id string) (types.Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recorded[id]
	return r, ok
}

func (m *mockUpdater) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recorded)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		updater := newMockUpdater()
		var failedMu sync.Mutex
		var failed []string

		w := worker.NewInMemoryWorker(q, updater,
			worker.WithName("handoff-test"),
			worker.WithRetries(1, time.Millisecond),
			worker.WithFailureHook(func(_ context.Context, r worker.Result, _ error) {
				failedMu.Lock()
				failed = append(failed, r.MatchID)
				failedMu.Unlock()
			}),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a result is queued", func() {
			q.results <- worker.Result{MatchID: "m1", HomeTeam: "Lions", AwayTeam: "Tigers"}

			convey.Convey("Then it is recorded", func() {
				convey.So(waitFor(func() bool { _, ok := updater.get("m1"); return ok }), convey.ShouldBeTrue)
				r, _ := updater.get("m1")
				convey.So(r.HomeTeam, convey.ShouldEqual, "Lions")
				convey.So(waitFor(func() bool { return w.Processed() == 1 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the updater fails once", func() {
			updater.failFor("m2", 1)
			q.results <- worker.Result{MatchID: "m2"}

			convey.Convey("Then the retry records it", func() {
				convey.So(waitFor(func() bool { _, ok := updater.get("m2"); return ok }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the updater keeps failing", func() {
			updater.failFor("m3", -1)
			q.results <- worker.Result{MatchID: "m3"}

			convey.Convey("Then the failure hook sees the result", func() {
				convey.So(waitFor(func() bool {
					failedMu.Lock()
					defer failedMu.Unlock()
					return len(failed) == 1 && failed[0] == "m3"
				}), convey.ShouldBeTrue)
				_, ok := updater.get("m3")
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer shutdownCancel()

			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(32))
		updater := newMockUpdater()
		pool := worker.NewPool(3, q, updater)
		convey.So(pool.Size(), convey.ShouldEqual, 3)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When many results are enqueued and the pool shuts down", func() {
			for i := range 20 {
				convey.So(q.Enqueue(ctx, types.Result{MatchID: fmt.Sprintf("m%d", i)}), convey.ShouldBeNil)
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()
			convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)

			convey.Convey("Then every result is drained and recorded", func() {
				convey.So(updater.count(), convey.ShouldEqual, 20)
				convey.So(pool.Processed(), convey.ShouldEqual, 20)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("A pool with a non-positive count still has one worker", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, newMockQueue(), newMockUpdater())
		convey.So(pool.Size(), convey.ShouldEqual, 1)
	})
}
