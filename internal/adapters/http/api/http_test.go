package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"kudos/internal/adapters/http/api"
	"kudos/internal/adapters/repository"
	"kudos/internal/app"
	"kudos/internal/domain/model"
)

// fakeDeps satisfies the handler dependencies with canned data.
type fakeDeps struct {
	enqueueErr error
	enqueued   []model.Event
	entries    []repository.Entry
	scores     map[string]repository.Score
}

func (f *fakeDeps) Enqueue(_ context.Context, e model.Event) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.enqueued = append(f.enqueued, e)
	return nil
}

func (f *fakeDeps) TopN(_ context.Context, n int) ([]repository.Entry, error) {
	if n > len(f.entries) {
		n = len(f.entries)
	}
	return f.entries[:n], nil
}

func (f *fakeDeps) Score(_ context.Context, item string) (repository.Score, error) {
	return f.scores[item], nil
}

func (f *fakeDeps) Count(context.Context) int    { return len(f.entries) }
func (f *fakeDeps) QueueLen(context.Context) int { return 0 }

func serve(deps api.Dependencies, r *http.Request, opts ...api.Option) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	api.NewServer(deps, opts...).Router().ServeHTTP(rec, r)
	return rec
}

func TestPostEvent(t *testing.T) {
	Convey("Given the event intake endpoint", t, func() {
		Convey("When a valid envelope is posted", func() {
			deps := &fakeDeps{}
			body := `{"event_id":"ev-1","kind":"message","channel":"C1","actor":"UALICE","text":"<@UBOB>++","ts":"1700000000.000100"}`
			rec := serve(deps, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body)))

			Convey("Then it is queued and acknowledged", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(rec.Body.String(), ShouldContainSubstring, `"status":"queued"`)
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].Kind, ShouldEqual, model.KindMessage)
				So(deps.enqueued[0].TS, ShouldEqual, "1700000000.000100")
			})
		})

		Convey("When the body is not JSON", func() {
			rec := serve(&fakeDeps{}, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("not json")))

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, `"code":"bad_json"`)
			})
		})

		Convey("When the service rejects the event as malformed", func() {
			deps := &fakeDeps{enqueueErr: app.ErrMalformedEvent}
			rec := serve(deps, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"kind":"message"}`)))

			Convey("Then the caller sees a 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, `"code":"malformed_event"`)
			})
		})

		Convey("When the queue is full", func() {
			deps := &fakeDeps{enqueueErr: app.ErrBackpressure}
			rec := serve(deps, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"kind":"message","actor":"U1","text":"x"}`)))

			Convey("Then the caller sees a 503 and may retry", func() {
				So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(rec.Body.String(), ShouldContainSubstring, `"code":"queue_full"`)
			})
		})
	})
}

func TestLeaderboardEndpoint(t *testing.T) {
	Convey("Given some ranked entries", t, func() {
		deps := &fakeDeps{entries: []repository.Entry{
			{Rank: 1, Item: "UBOB", Total: 5, Temp: 5},
			{Rank: 2, Item: "coffee", Total: 3, Temp: 1},
		}}

		Convey("When the leaderboard is fetched with defaults", func() {
			rec := serve(deps, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))

			Convey("Then all entries return as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"item":"UBOB"`)
				So(rec.Body.String(), ShouldContainSubstring, `"rank":2`)
			})
		})

		Convey("When the limit is not a positive integer", func() {
			rec := serve(deps, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=zero", nil))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(rec.Body.String(), ShouldContainSubstring, `"code":"bad_limit"`)
		})

		Convey("When the limit exceeds the configured maximum", func() {
			rec := serve(deps,
				httptest.NewRequest(http.MethodGet, "/leaderboard?limit=50", nil),
				api.WithMaxLeaderboardLimit(25),
			)

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(rec.Body.String(), ShouldContainSubstring, `"code":"limit_exceeded"`)
		})

		Convey("When a smaller limit is given", func() {
			rec := serve(deps, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=1", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "UBOB")
			So(rec.Body.String(), ShouldNotContainSubstring, "coffee")
		})
	})
}

func TestScoreEndpoint(t *testing.T) {
	Convey("Given a store with one scored item", t, func() {
		deps := &fakeDeps{scores: map[string]repository.Score{
			"coffee": {Total: 7, Temp: 2},
		}}

		Convey("When the item is fetched", func() {
			rec := serve(deps, httptest.NewRequest(http.MethodGet, "/score/coffee", nil))

			Convey("Then its counters return", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"item":"coffee"`)
				So(rec.Body.String(), ShouldContainSubstring, `"total":7`)
				So(rec.Body.String(), ShouldContainSubstring, `"temp":2`)
			})
		})

		Convey("When a never-scored item is fetched", func() {
			rec := serve(deps, httptest.NewRequest(http.MethodGet, "/score/ghost", nil))

			Convey("Then it reads as zeros", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"total":0`)
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the router", t, func() {
		rec := serve(&fakeDeps{}, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		Convey("Then the health probe answers", func() {
			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}
