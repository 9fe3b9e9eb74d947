package prize_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/okian/raspa/internal/domain/prize"
	"github.com/okian/raspa/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type stubStore struct {
	prizes []int
	ok     bool
	put    []int
}

func (s *stubStore) Prizes(ctx context.Context) ([]int, bool) {
	return s.prizes, s.ok
}

func (s *stubStore) PutPrizes(ctx context.Context, prizes []int) error {
	s.put = prizes
	return nil
}

func TestCachedCatalog(t *testing.T) {
	Convey("Given a cached catalog", t, func() {
		ctx := context.Background()

		Convey("When the store holds a catalog", func() {
			store := &stubStore{prizes: []int{38, 58, 88}, ok: true}
			c := prize.NewCachedCatalog(
				prize.WithStore(store),
				prize.WithFallback([]int{5}),
			)

			Convey("Then Current returns the stored catalog", func() {
				So(c.Current(ctx), ShouldResemble, []int{38, 58, 88})
			})

			Convey("And Draw returns a catalog member", func() {
				got := c.Draw(ctx)
				So(got, ShouldBeIn, []int{38, 58, 88})
			})
		})

		Convey("When the store is empty", func() {
			store := &stubStore{}
			c := prize.NewCachedCatalog(
				prize.WithStore(store),
				prize.WithFallback([]int{38, 58, 88}),
			)

			Convey("Then Current falls back to the configured list", func() {
				So(c.Current(ctx), ShouldResemble, []int{38, 58, 88})
			})
		})

		Convey("When no catalog exists at all", func() {
			c := prize.NewCachedCatalog()

			Convey("Then Draw falls back to the default prize", func() {
				So(c.Draw(ctx), ShouldEqual, prize.DefaultPrize)
			})
		})

		Convey("When a custom default prize is configured", func() {
			c := prize.NewCachedCatalog(prize.WithDefaultPrize(7))

			Convey("Then Draw returns it on an empty catalog", func() {
				So(c.Draw(ctx), ShouldEqual, 7)
			})
		})

		Convey("When the random source is deterministic", func() {
			c := prize.NewCachedCatalog(
				prize.WithFallback([]int{38, 58, 88}),
				prize.WithRand(rand.New(rand.NewSource(1))), //nolint:gosec // deterministic seed for reproducible testing
			)

			Convey("Then repeated draws follow the seeded sequence", func() {
				want := rand.New(rand.NewSource(1)) //nolint:gosec // mirror of the seeded source
				for i := 0; i < 10; i++ {
					So(c.Draw(ctx), ShouldEqual, []int{38, 58, 88}[want.Intn(3)])
				}
			})
		})

		Convey("When refreshing the catalog", func() {
			store := &stubStore{}
			c := prize.NewCachedCatalog(prize.WithStore(store))

			err := c.Refresh(ctx, []int{10, 20})

			Convey("Then the store should hold the new list", func() {
				So(err, ShouldBeNil)
				So(store.put, ShouldResemble, []int{10, 20})
			})
		})
	})
}
