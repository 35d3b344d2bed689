package settings

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Weekly Picks", "weekly_picks"},
		{"Q1--2026  Report!", "q1_2026_report"},
		{"  spaced  ", "spaced"},
		{"UPPER", "upper"},
		{"a/b\\c:d", "a_b_c_d"},
		{"__already__clean__", "already_clean"},
	}
	for _, tc := range cases {
		if got := Sanitize(tc.in); got != tc.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	for _, in := range []string{"Weekly Picks", "Q1--2026  Report!", "plain"} {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSanitizeFallback(t *testing.T) {
	got := Sanitize("   !!!   ")
	if !strings.HasPrefix(got, "unnamed_") {
		t.Fatalf("expected unnamed_<ts> fallback, got %q", got)
	}
}

func TestBuildImageFilename(t *testing.T) {
	if got := BuildImageFilename("My Report", "article", "jpg"); got != "my_report_article.jpg" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestMatchesImagePattern(t *testing.T) {
	if !MatchesImagePattern("My Report", "article", "my_report_article.jpg") {
		t.Fatal("expected current-name image to match")
	}
	if MatchesImagePattern("Renamed Report", "article", "my_report_article.jpg") {
		t.Fatal("stale image from a previous name must not match")
	}
	if MatchesImagePattern("My Report", "cover", "my_report_article.jpg") {
		t.Fatal("wrong image type must not match")
	}
	if MatchesImagePattern("My Report", "article", "") {
		t.Fatal("empty filename must not match")
	}
	if MatchesImagePattern("My Report", "article", "my_report_article") {
		t.Fatal("extensionless filename must not match")
	}
}
