package rules

import "testing"

func TestCanSendMessageBoundaries(t *testing.T) {
	cases := []struct {
		name      string
		isPremium bool
		sent      int
		want      bool
	}{
		{"free under cap", false, 19, true},
		{"free exactly at cap", false, 20, false},
		{"free above cap", false, 21, false},
		{"free zero", false, 0, true},
		{"premium at cap", true, 20, true},
		{"premium far above cap", true, 500, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanSendMessage(tc.isPremium, tc.sent, FreeMessageCap); got != tc.want {
				t.Fatalf("CanSendMessage(%v, %d) = %v, want %v", tc.isPremium, tc.sent, got, tc.want)
			}
		})
	}
}

func TestCanSendMessageDefaultsCap(t *testing.T) {
	if CanSendMessage(false, 19, 0) != true {
		t.Fatal("expected default cap of 20 to allow 20th message")
	}
	if CanSendMessage(false, 20, 0) != false {
		t.Fatal("expected default cap of 20 to block 21st message")
	}
}

func TestVisibleMatchLimit(t *testing.T) {
	cases := []struct {
		name      string
		isPremium bool
		total     int
		want      int
	}{
		{"free with many matches", false, 5, 2},
		{"free with one match", false, 1, 1},
		{"free with none", false, 0, 0},
		{"free with exactly two", false, 2, 2},
		{"premium sees all", true, 5, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := VisibleMatchLimit(tc.isPremium, tc.total, FreeVisibleMatches); got != tc.want {
				t.Fatalf("VisibleMatchLimit(%v, %d) = %d, want %d", tc.isPremium, tc.total, got, tc.want)
			}
		})
	}
}

func TestRecallAndAIGates(t *testing.T) {
	if CanRecall(false) {
		t.Fatal("free account must not recall")
	}
	if !CanRecall(true) {
		t.Fatal("premium account must recall")
	}
	if CanUseAI(false) {
		t.Fatal("free account must not reach the AI client")
	}
	if !CanUseAI(true) {
		t.Fatal("premium account must use AI features")
	}
}
