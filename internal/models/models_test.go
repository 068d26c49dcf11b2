package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseBookingStatusSynonyms(t *testing.T) {
	cases := map[string]BookingStatus{
		"pending":   BookingPending,
		"Confirmed": BookingAccepted,
		"accepted":  BookingAccepted,
		"declined":  BookingRejected,
		"canceled":  BookingCancelled,
		"cancelled": BookingCancelled,
	}
	for in, want := range cases {
		got, err := ParseBookingStatus(in)
		if err != nil || got != want {
			t.Errorf("ParseBookingStatus(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseBookingStatus("maybe"); !IsValidationError(err) {
		t.Errorf("expected a validation error, got %v", err)
	}
}

func TestBookingTransitions(t *testing.T) {
	if !BookingPending.CanTransitionTo(BookingAccepted) || !BookingPending.CanTransitionTo(BookingRejected) {
		t.Error("pending should move to accepted or rejected")
	}
	if !BookingAccepted.CanTransitionTo(BookingCancelled) {
		t.Error("accepted should be cancellable")
	}
	if BookingRejected.CanTransitionTo(BookingAccepted) || BookingCancelled.CanTransitionTo(BookingPending) {
		t.Error("terminal states must not move")
	}
}

func TestRoomIDIsOrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	if RoomID(a, b) != RoomID(b, a) {
		t.Fatal("room id depends on participant order")
	}
}

func TestMessageStatusOnlyUpgrades(t *testing.T) {
	if !MessageSent.Upgrades(MessageDelivered) || !MessageDelivered.Upgrades(MessageRead) {
		t.Error("expected forward moves to upgrade")
	}
	if MessageRead.Upgrades(MessageDelivered) || MessageDelivered.Upgrades(MessageDelivered) {
		t.Error("status must never go back or repeat")
	}
	if s, err := ParseMessageStatus("received"); err != nil || s != MessageDelivered {
		t.Errorf("expected received to map to delivered, got %q %v", s, err)
	}
}

func TestAvailabilityRanges(t *testing.T) {
	a := Availability{
		UnavailableDates:      []string{"2024-03-02"},
		UnavailableDateRanges: []DateRange{{Start: "2024-03-10", End: "2024-03-12"}, {Start: "2024-03-20"}},
	}
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	for _, d := range []int{2, 10, 11, 12, 20} {
		if !a.IsDateUnavailable(day(d)) {
			t.Errorf("expected March %d to be unavailable", d)
		}
	}
	for _, d := range []int{1, 9, 13, 21} {
		if a.IsDateUnavailable(day(d)) {
			t.Errorf("expected March %d to be available", d)
		}
	}

	snap := a.WithBookedDates([]string{"2024-03-05"}).CalendarSnapshot(2024, time.March)
	if len(snap) != 31 {
		t.Fatalf("expected 31 days, got %d", len(snap))
	}
	if !snap[5] || !snap[2] || snap[4] {
		t.Errorf("unexpected snapshot %v", snap)
	}
	if len(a.UnavailableDates) != 1 {
		t.Error("WithBookedDates modified the receiver")
	}
}

func TestCoordinatesScan(t *testing.T) {
	var c Coordinates
	if err := c.Scan("SRID=4326;POINT(-0.1870 5.6037)"); err != nil {
		t.Fatal(err)
	}
	if c.Latitude != 5.6037 || c.Longitude != -0.1870 {
		t.Errorf("unexpected coordinates %+v", c)
	}
	if err := c.Scan("5.5,-0.2"); err != nil || c.Latitude != 5.5 {
		t.Errorf("lat,lng form failed: %+v %v", c, err)
	}
	if err := c.Scan("nowhere"); err == nil {
		t.Error("expected a parse error")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]*Review{{Rating: 5}, {Rating: 4}, {Rating: 3}})
	if s.Count != 3 || s.Average != 4 {
		t.Errorf("unexpected summary %+v", s)
	}
	if Summarize(nil).Count != 0 {
		t.Error("empty summary should be zero")
	}
}
