package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/raspa/internal/adapters/mq/queue"
	"github.com/okian/raspa/internal/adapters/mq/worker"
	"github.com/okian/raspa/internal/domain/model"
	"github.com/okian/raspa/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakePusher records every upsert it receives.
type fakePusher struct {
	mu      sync.Mutex
	pushed  []model.PlayRecord
	failIDs map[string]bool
}

func newFakePusher() *fakePusher {
	return &fakePusher{failIDs: make(map[string]bool)}
}

func (p *fakePusher) Upsert(ctx context.Context, rec model.PlayRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failIDs[rec.ID] {
		return errors.New("remote store rejected the write")
	}
	p.pushed = append(p.pushed, rec)
	return nil
}

func (p *fakePusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushed)
}

func (p *fakePusher) first() model.PlayRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pushed[0]
}

func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func record(id string) model.PlayRecord {
	return model.PlayRecord{ID: id, Username: "bob", Date: "2026-08-31"}
}

func TestWorker(t *testing.T) {
	Convey("Given a worker draining the push queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16), queue.WithBufferSize(16))
		pusher := newFakePusher()

		Convey("When records are queued", func() {
			w := worker.NewInMemoryWorker(q, pusher, worker.WithName("worker-test"))
			go w.Run(ctx)

			So(q.Enqueue(ctx, record("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, record("b")), ShouldBeTrue)

			Convey("Then every record reaches the remote store", func() {
				So(waitFor(time.Second, func() bool { return pusher.count() == 2 }), ShouldBeTrue)
			})
		})

		Convey("When a push fails", func() {
			pusher.failIDs["bad"] = true
			w := worker.NewInMemoryWorker(q, pusher)
			go w.Run(ctx)

			So(q.Enqueue(ctx, record("bad")), ShouldBeTrue)
			So(q.Enqueue(ctx, record("good")), ShouldBeTrue)

			Convey("Then the worker keeps draining later records", func() {
				So(waitFor(time.Second, func() bool { return pusher.count() == 1 }), ShouldBeTrue)
				So(pusher.first().ID, ShouldEqual, "good")
			})
		})

		Convey("When the worker is shut down", func() {
			w := worker.NewInMemoryWorker(q, pusher)
			go w.Run(ctx)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			Convey("Then shutdown completes cleanly", func() {
				So(w.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a worker pool", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(64), queue.WithBufferSize(64))
		pusher := newFakePusher()

		Convey("When several workers share the queue", func() {
			p := worker.NewPool(3, q, pusher)
			p.Start(ctx)

			for i := 0; i < 10; i++ {
				So(q.Enqueue(ctx, record("r"+string(rune('0'+i)))), ShouldBeTrue)
			}

			Convey("Then every record is pushed exactly once", func() {
				So(waitFor(time.Second, func() bool { return pusher.count() == 10 }), ShouldBeTrue)

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
				defer shutdownCancel()
				So(p.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})

		Convey("When the pool is created with an invalid worker count", func() {
			p := worker.NewPool(0, q, pusher)

			Convey("Then a sane default is applied and the pool still works", func() {
				p.Start(ctx)
				So(q.Enqueue(ctx, record("a")), ShouldBeTrue)
				So(waitFor(time.Second, func() bool { return pusher.count() == 1 }), ShouldBeTrue)
			})
		})
	})
}
