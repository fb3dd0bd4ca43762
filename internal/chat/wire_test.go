package chat

import "testing"

func TestDecodeFrame(t *testing.T) {
	cases := []struct {
		name       string
		payload    string
		wantSender string
		wantText   string
	}{
		{"message field", `{"sender":"a@x","message":"hi"}`, "a@x", "hi"},
		{"content field", `{"sender":"a@x","content":"hi"}`, "a@x", "hi"},
		{"message wins over content", `{"sender":"a@x","message":"live","content":"stored"}`, "a@x", "live"},
		{"extra fields ignored", `{"sender":"a@x","message":"hi","ts":123}`, "a@x", "hi"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sender, text, err := decodeFrame([]byte(tc.payload))
			if err != nil {
				t.Fatalf("decodeFrame() error: %v", err)
			}
			if sender != tc.wantSender || text != tc.wantText {
				t.Errorf("decodeFrame() = (%q, %q), want (%q, %q)", sender, text, tc.wantSender, tc.wantText)
			}
		})
	}
}

func TestDecodeFrameRejectsInvalidJSON(t *testing.T) {
	if _, _, err := decodeFrame([]byte("not json")); err == nil {
		t.Error("decodeFrame() on invalid JSON: expected error, got nil")
	}
}
