package albumsgen

import (
	"encoding/json"
	"testing"
)

func TestReleaseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     ReleaseDate
		wantYear int
		yearErr  bool
	}{
		{name: "number", input: `1971`, want: "1971", wantYear: 1971},
		{name: "string", input: `"1971"`, want: "1971", wantYear: 1971},
		{name: "full date", input: `"1971-11-08"`, want: "1971-11-08", wantYear: 1971},
		{name: "padded string", input: `" 1983 "`, want: "1983", wantYear: 1983},
		{name: "float", input: `1999.0`, want: "1999", wantYear: 1999},
		{name: "null", input: `null`, want: "", yearErr: true},
		{name: "garbage", input: `"unknown"`, want: "unknown", yearErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rd ReleaseDate
			if err := json.Unmarshal([]byte(tt.input), &rd); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if rd != tt.want {
				t.Errorf("expected %q, got %q", tt.want, rd)
			}
			year, err := rd.Year()
			if tt.yearErr {
				if err == nil {
					t.Errorf("expected year error, got %d", year)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected year error: %v", err)
			}
			if year != tt.wantYear {
				t.Errorf("expected year %d, got %d", tt.wantYear, year)
			}
		})
	}
}

func TestReleaseDateRejectsBool(t *testing.T) {
	var rd ReleaseDate
	if err := json.Unmarshal([]byte(`true`), &rd); err == nil {
		t.Fatal("expected error for boolean release date")
	}
}

func TestImages(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "first of many", input: `[{"url":"a"},{"url":"b"}]`, want: "a"},
		{name: "empty", input: `[]`, want: ""},
		{name: "object", input: `{"url":"a"}`, want: ""},
		{name: "string", input: `"a"`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var im Images
			if err := json.Unmarshal([]byte(tt.input), &im); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := im.FirstURL(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestProjectMissingFields(t *testing.T) {
	var p Project
	if err := json.Unmarshal([]byte(`{"currentAlbum": null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.CurrentAlbum != nil {
		t.Error("expected nil current album")
	}
	if p.History != nil {
		t.Error("expected nil history when absent")
	}

	if err := json.Unmarshal([]byte(`{"history": []}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.History == nil {
		t.Error("expected empty non-nil history")
	}
}
