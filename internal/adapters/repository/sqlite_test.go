package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"kudos/internal/adapters/repository"
)

func openTestStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "kudos.db")
	store, err := repository.OpenSQLite(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreScores(t *testing.T) {
	Convey("Given a file-backed store", t, func() {
		ctx := context.Background()
		store := openTestStore(t)

		Convey("When applying +1 five times to a fresh item", func() {
			var last repository.Score
			for i := 0; i < 5; i++ {
				sc, err := store.Apply(ctx, "alice", 1)
				So(err, ShouldBeNil)
				last = sc
			}

			Convey("Then total and temp both read 5", func() {
				So(last.Total, ShouldEqual, 5)
				So(last.Temp, ShouldEqual, 5)
			})

			Convey("And an era reset zeroes temp but not total", func() {
				So(store.ResetEra(ctx), ShouldBeNil)
				sc, err := store.Query(ctx, "alice")
				So(err, ShouldBeNil)
				So(sc.Total, ShouldEqual, 5)
				So(sc.Temp, ShouldEqual, 0)
			})
		})

		Convey("When identity differs only in case", func() {
			_, err := store.Apply(ctx, "Foo", 1)
			So(err, ShouldBeNil)

			Convey("Then NOCASE collation merges the records", func() {
				sc, err := store.Apply(ctx, "foo", 2)
				So(err, ShouldBeNil)
				So(sc.Total, ShouldEqual, 3)

				sc, err = store.Query(ctx, "FOO")
				So(err, ShouldBeNil)
				So(sc.Total, ShouldEqual, 3)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When querying a never-scored item", func() {
			sc, err := store.Query(ctx, "ghost")

			Convey("Then it materializes as zeros", func() {
				So(err, ShouldBeNil)
				So(sc.Total, ShouldEqual, 0)
				So(sc.Temp, ShouldEqual, 0)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When several items hold scores", func() {
			_, _ = store.Apply(ctx, "carol", 3)
			_, _ = store.Apply(ctx, "bob", 5)
			_, _ = store.Apply(ctx, "alice", 5)

			Convey("Then TopN orders by total desc, name asc with ranks", func() {
				entries, err := store.TopN(ctx, 10)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 3)
				So(entries[0].Item, ShouldEqual, "alice")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].Item, ShouldEqual, "bob")
				So(entries[2].Item, ShouldEqual, "carol")
				So(entries[2].Rank, ShouldEqual, 3)
			})

			Convey("And a non-positive limit is rejected", func() {
				_, err := store.TopN(ctx, -1)
				So(err, ShouldEqual, repository.ErrInvalidLimit)
			})
		})
	})
}

func TestSQLiteStoreDurability(t *testing.T) {
	Convey("Given scores written to a database file", t, func() {
		ctx := context.Background()
		dsn := filepath.Join(t.TempDir(), "kudos.db")

		store, err := repository.OpenSQLite(ctx, dsn)
		So(err, ShouldBeNil)
		_, err = store.Apply(ctx, "alice", 7)
		So(err, ShouldBeNil)
		So(store.Close(), ShouldBeNil)

		Convey("When the same file is reopened", func() {
			reopened, err := repository.OpenSQLite(ctx, dsn)
			So(err, ShouldBeNil)
			defer reopened.Close()

			Convey("Then the scores survive the restart", func() {
				sc, err := reopened.Query(ctx, "alice")
				So(err, ShouldBeNil)
				So(sc.Total, ShouldEqual, 7)
				So(sc.Temp, ShouldEqual, 7)
			})
		})
	})
}

func TestSQLiteStoreQuota(t *testing.T) {
	Convey("Given the quota table", t, func() {
		ctx := context.Background()
		store := openTestStore(t)
		now := time.Unix(1_700_000_000, 0)

		Convey("When consuming up to the cap", func() {
			for i := 0; i < 3; i++ {
				ok, err := store.ConsumeQuota(ctx, "u1", now, time.Hour, 3)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			}

			Convey("Then the next consume denies without mutating", func() {
				ok, err := store.ConsumeQuota(ctx, "u1", now, time.Hour, 3)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)

				ok, _ = store.ConsumeQuota(ctx, "u1", now, time.Hour, 3)
				So(ok, ShouldBeFalse)
			})

			Convey("And a consume after the window reopens the quota", func() {
				later := now.Add(time.Hour)
				ok, err := store.ConsumeQuota(ctx, "u1", later, time.Hour, 3)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)

				ok, err = store.ConsumeQuota(ctx, "u1", later, time.Hour, 3)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When actors differ only in case", func() {
			ok, err := store.ConsumeQuota(ctx, "User", now, time.Hour, 1)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			Convey("Then they share a single quota record", func() {
				ok, err := store.ConsumeQuota(ctx, "user", now, time.Hour, 1)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})
	})
}
