package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/campuslink/matchengine/internal/domain/model"
)

func score(studentID, listingID string, composite int, at time.Time) model.MatchScore {
	return model.MatchScore{
		StudentID:      studentID,
		ListingID:      listingID,
		CompositeScore: composite,
		ComputedAt:     at,
	}
}

func TestMemoryScoreStore(t *testing.T) {
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	Convey("Given an in-memory score store", t, func() {
		store := NewMemoryScoreStore(WithScoreClock(func() time.Time { return base }))

		Convey("When a pair has never been scored", func() {
			_, err := store.Get(ctx, "s1", "l1")

			Convey("Then Get should return the not-found sentinel", func() {
				So(err, ShouldEqual, ErrScoreNotFound)
			})
		})

		Convey("When a score is upserted", func() {
			So(store.Upsert(ctx, score("s1", "l1", 80, base)), ShouldBeNil)

			Convey("Then the row is readable and fresh", func() {
				got, err := store.Get(ctx, "s1", "l1")
				So(err, ShouldBeNil)
				So(got.CompositeScore, ShouldEqual, 80)
				So(got.IsStale, ShouldBeFalse)
			})

			Convey("And upserting the same pair replaces the single row", func() {
				So(store.Upsert(ctx, score("s1", "l1", 95, base)), ShouldBeNil)

				got, err := store.Get(ctx, "s1", "l1")
				So(err, ShouldBeNil)
				So(got.CompositeScore, ShouldEqual, 95)
				So(store.Stats(ctx).TotalScores, ShouldEqual, 1)
			})

			Convey("And upserting a stale pair clears its staleness", func() {
				store.MarkStaleByStudent(ctx, "s1")
				So(store.Upsert(ctx, score("s1", "l1", 80, base)), ShouldBeNil)

				got, _ := store.Get(ctx, "s1", "l1")
				So(got.IsStale, ShouldBeFalse)
				So(store.StalePairs(ctx), ShouldBeEmpty)
			})
		})

		Convey("When scores exist for several pairs", func() {
			So(store.Upsert(ctx, score("s1", "l1", 80, base)), ShouldBeNil)
			So(store.Upsert(ctx, score("s1", "l2", 70, base)), ShouldBeNil)
			So(store.Upsert(ctx, score("s2", "l1", 60, base)), ShouldBeNil)

			Convey("Then MarkStaleByStudent scopes to the student's rows", func() {
				affected := store.MarkStaleByStudent(ctx, "s1")
				So(affected, ShouldResemble, []model.Pair{
					{StudentID: "s1", ListingID: "l1"},
					{StudentID: "s1", ListingID: "l2"},
				})

				untouched, _ := store.Get(ctx, "s2", "l1")
				So(untouched.IsStale, ShouldBeFalse)
			})

			Convey("Then MarkStaleByListing scopes to the listing's rows", func() {
				affected := store.MarkStaleByListing(ctx, "l1")
				So(affected, ShouldResemble, []model.Pair{
					{StudentID: "s1", ListingID: "l1"},
					{StudentID: "s2", ListingID: "l1"},
				})
			})

			Convey("Then marking twice reports no additional pairs", func() {
				So(store.MarkStaleByStudent(ctx, "s1"), ShouldHaveLength, 2)
				So(store.MarkStaleByStudent(ctx, "s1"), ShouldBeEmpty)
			})

			Convey("Then stale rows stay readable", func() {
				store.MarkStaleByStudent(ctx, "s1")

				got, err := store.Get(ctx, "s1", "l1")
				So(err, ShouldBeNil)
				So(got.IsStale, ShouldBeTrue)
				So(got.CompositeScore, ShouldEqual, 80)
			})
		})

		Convey("When rows age past the TTL", func() {
			So(store.Upsert(ctx, score("s1", "l1", 80, base.Add(-2*time.Hour))), ShouldBeNil)
			So(store.Upsert(ctx, score("s2", "l1", 60, base.Add(-10*time.Minute))), ShouldBeNil)

			expired := store.MarkExpired(ctx, time.Hour)

			Convey("Then only rows older than the TTL are marked", func() {
				So(expired, ShouldResemble, []model.Pair{{StudentID: "s1", ListingID: "l1"}})

				fresh, _ := store.Get(ctx, "s2", "l1")
				So(fresh.IsStale, ShouldBeFalse)
			})
		})

		Convey("When ranking a listing", func() {
			earlier := base.Add(-time.Hour)
			So(store.Upsert(ctx, score("s1", "l1", 70, base)), ShouldBeNil)
			So(store.Upsert(ctx, score("s2", "l1", 90, base)), ShouldBeNil)
			So(store.Upsert(ctx, score("s3", "l1", 90, earlier)), ShouldBeNil)
			So(store.Upsert(ctx, score("s4", "l2", 99, base)), ShouldBeNil)

			ranked := store.RankedByListing(ctx, "l1", 0)

			Convey("Then rows order by composite desc with older ties first", func() {
				So(ranked, ShouldHaveLength, 3)
				So(ranked[0].StudentID, ShouldEqual, "s3")
				So(ranked[1].StudentID, ShouldEqual, "s2")
				So(ranked[2].StudentID, ShouldEqual, "s1")
			})

			Convey("Then a positive limit truncates the result", func() {
				So(store.RankedByListing(ctx, "l1", 2), ShouldHaveLength, 2)
			})

			Convey("Then an unknown listing ranks empty", func() {
				So(store.RankedByListing(ctx, "l9", 0), ShouldBeEmpty)
			})
		})

		Convey("When aggregating stats", func() {
			So(store.Upsert(ctx, score("s1", "l1", 80, base)), ShouldBeNil)
			So(store.Upsert(ctx, score("s2", "l2", 40, base)), ShouldBeNil)
			store.MarkStaleByListing(ctx, "l2")

			stats := store.Stats(ctx)

			Convey("Then counts and extremes are reported", func() {
				So(stats.TotalScores, ShouldEqual, 2)
				So(stats.StaleScores, ShouldEqual, 1)
				So(stats.MaxScore, ShouldEqual, 80)
				So(stats.MinScore, ShouldEqual, 40)
				So(stats.AvgScore, ShouldAlmostEqual, 60)
				So(stats.UniqueStudents, ShouldEqual, 2)
				So(stats.UniqueListings, ShouldEqual, 2)
			})
		})

		Convey("When the store is empty", func() {
			So(store.Stats(ctx), ShouldResemble, ScoreStats{})
		})
	})
}

func TestMemoryScoreStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryScoreStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			ids := []string{"s1", "s2", "s3"}
			for n := 0; n < 200; n++ {
				id := ids[n%len(ids)]
				_ = store.Upsert(ctx, model.MatchScore{StudentID: id, ListingID: "l1", CompositeScore: n % 101})
				_, _ = store.Get(ctx, id, "l1")
				store.MarkStaleByStudent(ctx, id)
				store.RankedByListing(ctx, "l1", 10)
			}
		}(i)
	}
	wg.Wait()

	if got := store.Stats(ctx).TotalScores; got != 3 {
		t.Errorf("expected 3 rows after concurrent churn, got %d", got)
	}
}
