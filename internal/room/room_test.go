package room

import "testing"

func TestStringAndParseRoundTrip(t *testing.T) {
	id := New(42, 7)
	if got := id.String(); got != "42-7" {
		t.Fatalf("String() = %q, want %q", got, "42-7")
	}

	parsed, err := Parse("42-7")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if parsed != id {
		t.Errorf("Parse() = %+v, want %+v", parsed, id)
	}
}

func TestForViewerBuyerSide(t *testing.T) {
	// Viewer 7 looking at item 42 owned by user 3: the viewer is the buyer,
	// so the room is 42-7 no matter which side computes it.
	id, err := ForViewer(42, 7, 3)
	if err != nil {
		t.Fatalf("ForViewer() error: %v", err)
	}
	if id != New(42, 7) {
		t.Errorf("ForViewer() = %+v, want %+v", id, New(42, 7))
	}
}

func TestForViewerOwnerHasNoRoom(t *testing.T) {
	if _, err := ForViewer(42, 3, 3); err == nil {
		t.Fatal("ForViewer() with viewer == owner: expected error, got nil")
	}
}

func TestParseRejectsMalformedIDs(t *testing.T) {
	cases := []string{"", "42", "abc-7", "42-xyz", "42-", "-7", "42-7-9"}
	for _, in := range cases {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q): expected error, got nil", in)
		}
	}
}

func TestIsZero(t *testing.T) {
	if !(ID{}).IsZero() {
		t.Error("zero ID should report IsZero")
	}
	if New(1, 2).IsZero() {
		t.Error("non-zero ID should not report IsZero")
	}
}
