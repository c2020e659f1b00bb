package cache

import "testing"

func TestNormalizeURLStripsTrackingAndFragment(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{
			"https://www.prothomalo.com/bangladesh/abc123?utm_source=fb&utm_medium=social#comments",
			"https://www.prothomalo.com/bangladesh/abc123",
		},
		{
			"HTTPS://WWW.Ittefaq.com.bd:443/751813/some-slug/",
			"https://www.ittefaq.com.bd/751813/some-slug",
		},
		{
			"https://example.com/a?fbclid=xyz&page=2",
			"https://example.com/a?page=2",
		},
		{
			"https://example.com/",
			"https://example.com/",
		},
	}

	for _, tc := range cases {
		if got := NormalizeURL(tc.in); got != tc.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKeyCollidesForEquivalentURLs(t *testing.T) {
	a := Key("https://www.prothomalo.com/bangladesh/abc123?utm_source=fb")
	b := Key("https://www.prothomalo.com/bangladesh/abc123#top")
	if a != b {
		t.Fatalf("expected equivalent URLs to share a key: %s vs %s", a, b)
	}

	c := Key("https://www.prothomalo.com/bangladesh/other")
	if a == c {
		t.Fatal("distinct articles must not collide")
	}
}

func TestNormalizeURLKeepsUnparseableInputStable(t *testing.T) {
	if got := NormalizeURL("  not a url  "); got != "not a url" {
		t.Fatalf("unexpected normalization %q", got)
	}
}
