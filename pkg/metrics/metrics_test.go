package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom naming", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When options receive empty values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithRegistry(registry),
			)

			Convey("Then the defaults stand", func() {
				So(manager.namespace, ShouldEqual, "kudos")
				So(manager.subsystem, ShouldEqual, "engine")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global recording helpers", t, func() {
		Convey("When recording event intake metrics", func() {
			So(RecordEventReceived, ShouldNotPanic)
			So(RecordEventDuplicate, ShouldNotPanic)
			So(RecordEventMalformed, ShouldNotPanic)
			So(RecordEventDropped, ShouldNotPanic)
		})

		Convey("When recording command pipeline metrics", func() {
			So(func() { RecordCommandParsed("increment") }, ShouldNotPanic)
			So(RecordSelfTarget, ShouldNotPanic)
			So(RecordQuotaDenial, ShouldNotPanic)
			So(RecordScoreApply, ShouldNotPanic)
			So(RecordEraReset, ShouldNotPanic)
		})

		Convey("When recording store metrics", func() {
			So(RecordStoreError, ShouldNotPanic)
			So(func() { RecordStoreLatency(1.5) }, ShouldNotPanic)
			So(func() { UpdateTrackedItems(3) }, ShouldNotPanic)
		})

		Convey("When recording reply metrics", func() {
			So(func() { RecordReplySent("channel") }, ShouldNotPanic)
			So(RecordReplyFailure, ShouldNotPanic)
		})

		Convey("When recording queue and worker metrics", func() {
			So(func() { UpdateQueueSize(5) }, ShouldNotPanic)
			So(func() { UpdateQueueCapacity(100) }, ShouldNotPanic)
			So(RecordQueueEnqueueError, ShouldNotPanic)
			So(func() { UpdateWorkerCount(4) }, ShouldNotPanic)
			So(func() { RecordHandlerLatency(2.5) }, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() { RecordHTTPRequest("events", "POST", "202") }, ShouldNotPanic)
			So(func() { RecordHTTPRequestDuration("events", "POST", "202", 3.0) }, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the metrics endpoint registry", t, func() {
		Convey("Then the global registry is available", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
