package eventfilter

import (
	"strings"
	"testing"

	"github.com/courtside-hq/courtside/internal/adapter/outbound/realtime"
)

func TestFilter_MatchByEventName(t *testing.T) {
	f, err := New(`event == "score_updated"`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !f.Match(realtime.Event{Event: "score_updated", MatchID: "m-1"}) {
		t.Error("score_updated should match")
	}
	if f.Match(realtime.Event{Event: "match_started", SessionID: "s-1"}) {
		t.Error("match_started should not match")
	}
}

func TestFilter_MatchBySessionAndEvent(t *testing.T) {
	f, err := New(`session_id == "s-1" && event != "registration_updated"`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cases := []struct {
		ev   realtime.Event
		want bool
	}{
		{realtime.Event{Event: "match_started", SessionID: "s-1"}, true},
		{realtime.Event{Event: "registration_updated", SessionID: "s-1"}, false},
		{realtime.Event{Event: "match_started", SessionID: "s-2"}, false},
	}
	for _, tc := range cases {
		if got := f.Match(tc.ev); got != tc.want {
			t.Errorf("Match(%+v) = %v, want %v", tc.ev, got, tc.want)
		}
	}
}

func TestFilter_InvalidExpressionFailsFast(t *testing.T) {
	cases := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"syntax error", `event ==`},
		{"unknown variable", `club_id == "c-1"`},
		{"non-boolean result", `event`},
		{"too long", `event == "` + strings.Repeat("x", 2000) + `"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.expr); err == nil {
				t.Errorf("New(%q) succeeded, want error", tc.expr)
			}
		})
	}
}

func TestFilter_NilMatchesEverything(t *testing.T) {
	var f *Filter
	if !f.Match(realtime.Event{Event: "anything"}) {
		t.Error("nil filter should match every event")
	}
}
