package drinks

import (
	"testing"
	"time"
)

func TestCheckCooldownNoPriorDrink(t *testing.T) {
	cd := CheckCooldown(nil, time.Now(), DefaultCooldown)
	if cd.Blocked {
		t.Fatalf("expected no block without a prior drink")
	}
}

func TestCheckCooldownExactness(t *testing.T) {
	last := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)

	blocked := CheckCooldown(&last, last.Add(119*time.Second), DefaultCooldown)
	if !blocked.Blocked {
		t.Fatalf("expected block at delta 119s")
	}
	if blocked.RemainingSeconds != 1 {
		t.Fatalf("expected 1 remaining second, got %d", blocked.RemainingSeconds)
	}

	allowed := CheckCooldown(&last, last.Add(120*time.Second), DefaultCooldown)
	if allowed.Blocked {
		t.Fatalf("expected no block at delta 120s")
	}
}

func TestCheckCooldownSubSecondTruncation(t *testing.T) {
	last := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	// 119.9s truncates to 119 whole seconds, still inside the window.
	cd := CheckCooldown(&last, last.Add(119*time.Second+900*time.Millisecond), DefaultCooldown)
	if !cd.Blocked {
		t.Fatalf("expected block at delta 119.9s")
	}
}

func TestCheckCooldownClockSkewBlocks(t *testing.T) {
	last := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	cd := CheckCooldown(&last, last.Add(-30*time.Second), DefaultCooldown)
	if !cd.Blocked {
		t.Fatalf("expected negative delta to fail safe toward blocking")
	}
	if cd.RemainingSeconds != 150 {
		t.Fatalf("expected 150 remaining seconds, got %d", cd.RemainingSeconds)
	}
}
