package services

import (
	"testing"
	"time"
)

func TestNextChatCount(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.Local)
	earlierToday := now.Add(-2 * time.Hour)
	yesterday := now.AddDate(0, 0, -1)
	lastMonth := now.AddDate(0, -1, 0)

	cases := []struct {
		name        string
		count       int
		last        *time.Time
		limit       int
		wantCount   int
		wantAllowed bool
	}{
		{"first ever attempt", 0, nil, 3, 1, true},
		{"second attempt same day", 1, &earlierToday, 3, 2, true},
		{"at limit same day", 3, &earlierToday, 3, 3, false},
		{"over limit stays unchanged", 5, &earlierToday, 3, 5, false},
		{"stale count resets across midnight", 3, &yesterday, 3, 1, true},
		{"stale count resets across months", 3, &lastMonth, 3, 1, true},
		{"zero limit rejects everything", 0, nil, 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, allowed := NextChatCount(tc.count, tc.last, now, tc.limit)
			if got != tc.wantCount || allowed != tc.wantAllowed {
				t.Fatalf("NextChatCount(%d, %v) = (%d, %v), want (%d, %v)",
					tc.count, tc.last, got, allowed, tc.wantCount, tc.wantAllowed)
			}
		})
	}
}

func TestNextChatCountDayBoundary(t *testing.T) {
	// 23:59 yesterday vs 00:01 today is a reset even though barely two
	// minutes passed.
	now := time.Date(2025, 3, 10, 0, 1, 0, 0, time.Local)
	last := time.Date(2025, 3, 9, 23, 59, 0, 0, time.Local)

	got, allowed := NextChatCount(3, &last, now, 3)
	if !allowed || got != 1 {
		t.Fatalf("NextChatCount across midnight = (%d, %v), want (1, true)", got, allowed)
	}
}

func TestNextChatCountSameInstant(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	got, allowed := NextChatCount(2, &now, now, 3)
	if !allowed || got != 3 {
		t.Fatalf("NextChatCount same instant = (%d, %v), want (3, true)", got, allowed)
	}
}
