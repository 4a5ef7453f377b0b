// AngelaMos | 2026
// entity_test.go

package listing

import (
	"testing"
	"time"
)

func TestApplyExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name        string
		listing     Listing
		wantChanged bool
		wantStatus  string
	}{
		{
			name:        "active past deadline expires",
			listing:     Listing{Status: StatusActive, ExpiresAt: past},
			wantChanged: true,
			wantStatus:  StatusExpired,
		},
		{
			name:        "active before deadline stays active",
			listing:     Listing{Status: StatusActive, ExpiresAt: future},
			wantChanged: false,
			wantStatus:  StatusActive,
		},
		{
			name:        "sold listing never expires",
			listing:     Listing{Status: StatusSold, ExpiresAt: past},
			wantChanged: false,
			wantStatus:  StatusSold,
		},
		{
			name:        "draft listing never expires",
			listing:     Listing{Status: StatusDraft, ExpiresAt: past},
			wantChanged: false,
			wantStatus:  StatusDraft,
		},
		{
			name:        "expired listing stays expired",
			listing:     Listing{Status: StatusExpired, ExpiresAt: past},
			wantChanged: false,
			wantStatus:  StatusExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := tt.listing.ApplyExpiry(now)
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if tt.listing.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", tt.listing.Status, tt.wantStatus)
			}
		})
	}
}

func TestApplyExpiryOneWay(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l := Listing{Status: StatusActive, ExpiresAt: now.Add(-time.Minute)}
	if !l.ApplyExpiry(now) {
		t.Fatal("overdue listing did not expire")
	}

	// Pushing the deadline forward does not resurrect it by itself;
	// only an explicit renew flips the status back.
	l.ExpiresAt = now.Add(time.Hour)
	if l.ApplyExpiry(now) {
		t.Fatal("expired listing changed again")
	}
	if l.Status != StatusExpired {
		t.Fatalf("status = %q, want %q", l.Status, StatusExpired)
	}
}

func TestTimeRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l := Listing{ExpiresAt: now.Add(90 * time.Minute)}
	if got := l.TimeRemaining(now); got != 90*time.Minute {
		t.Errorf("TimeRemaining = %v, want 90m", got)
	}

	overdue := Listing{ExpiresAt: now.Add(-time.Hour)}
	if got := overdue.TimeRemaining(now); got != 0 {
		t.Errorf("TimeRemaining = %v, want 0 for overdue", got)
	}
}

func TestListParamsNormalize(t *testing.T) {
	p := ListParams{Page: -3, Limit: 500, Sort: "bogus", Status: "bogus"}
	p.Normalize()

	if p.Page != 1 {
		t.Errorf("page = %d, want 1", p.Page)
	}
	if p.Limit != maxPageSize {
		t.Errorf("limit = %d, want %d", p.Limit, maxPageSize)
	}
	if p.Status != StatusActive {
		t.Errorf("status = %q, want %q", p.Status, StatusActive)
	}
	if p.Sort != "" {
		t.Errorf("sort = %q, want default", p.Sort)
	}
}
