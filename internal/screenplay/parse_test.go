package screenplay

import "testing"

func TestStripQuotes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"Steel Vengeance"`, "Steel Vengeance"},
		{`'Steel Vengeance'`, "Steel Vengeance"},
		{"`Steel Vengeance`", "Steel Vengeance"},
		{"“Steel Vengeance”", "Steel Vengeance"},
		{`"'Steel Vengeance'"`, "Steel Vengeance"},
		{`  "Steel Vengeance"  `, "Steel Vengeance"},
		{"Steel Vengeance", "Steel Vengeance"},
		{`He said "no"`, `He said "no"`},
		{`""`, ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := StripQuotes(tc.in); got != tc.want {
			t.Fatalf("StripQuotes(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplitTitleMarker(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantTitle string
		wantBody  string
		wantOK    bool
	}{
		{
			name:      "plain marker",
			raw:       "TITLE: Steel Vengeance\nA former Navy SEAL returns to Tokyo.",
			wantTitle: "Steel Vengeance",
			wantBody:  "A former Navy SEAL returns to Tokyo.",
			wantOK:    true,
		},
		{
			name:      "lowercase marker",
			raw:       "title: Night Cargo\nThe docks hide a secret.",
			wantTitle: "Night Cargo",
			wantBody:  "The docks hide a secret.",
			wantOK:    true,
		},
		{
			name:      "quoted title",
			raw:       `TITLE: "Harbor Run"` + "\nBody text.",
			wantTitle: "Harbor Run",
			wantBody:  "Body text.",
			wantOK:    true,
		},
		{
			name:   "no marker",
			raw:    "A former Navy SEAL returns to Tokyo.",
			wantOK: false,
		},
		{
			name:   "marker not on first line",
			raw:    "Here you go.\nTITLE: Steel Vengeance\nBody.",
			wantOK: false,
		},
		{
			name:   "empty title after marker",
			raw:    "TITLE:\nBody.",
			wantOK: false,
		},
		{
			name:   "empty input",
			raw:    "",
			wantOK: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			title, body, ok := SplitTitleMarker(tc.raw)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if title != tc.wantTitle {
				t.Fatalf("title = %q, want %q", title, tc.wantTitle)
			}
			if body != tc.wantBody {
				t.Fatalf("body = %q, want %q", body, tc.wantBody)
			}
		})
	}
}
