package shared

import "testing"

func TestFormatTrackDuration(t *testing.T) {
	tc := []struct {
		name       string
		durationMS int
		want       string
	}{
		{
			name:       "typical track",
			durationMS: 225000,
			want:       "3:45",
		},
		{
			name:       "leading zero seconds",
			durationMS: 181000,
			want:       "3:01",
		},
		{
			name:       "zero",
			durationMS: 0,
			want:       "0:00",
		},
		{
			name:       "negative clamps to zero",
			durationMS: -500,
			want:       "0:00",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatTrackDuration(tt.durationMS)
			if got != tt.want {
				t.Errorf("FormatTrackDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBrowserCommand(t *testing.T) {
	tc := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"darwin", "open", []string{"https://example.com"}},
		{"linux", "xdg-open", []string{"https://example.com"}},
		{"windows", "cmd", []string{"/c", "start", "https://example.com"}},
		{"plan9", "", nil},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := browserCommand(tt.goos, "https://example.com")
			if name != tt.wantName {
				t.Errorf("expected command %q, got %q", tt.wantName, name)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("expected args %v, got %v", tt.wantArgs, args)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("arg %d: expected %q, got %q", i, tt.wantArgs[i], args[i])
				}
			}
		})
	}
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	b, err := GenerateState()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if a == "" || b == "" {
		t.Error("state tokens should not be empty")
	}

	if a == b {
		t.Error("state tokens should be unique")
	}
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]int{"count": 3}

	t.Run("Compact", func(t *testing.T) {
		data, err := MarshalJSON(v, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(data) != `{"count":3}` {
			t.Errorf("unexpected output: %s", data)
		}
	})

	t.Run("Pretty", func(t *testing.T) {
		data, err := MarshalJSON(v, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(data) == `{"count":3}` {
			t.Error("expected indented output")
		}
	})
}
