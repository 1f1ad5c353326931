package indexer

import (
	"errors"
	"testing"

	"github.com/starford/archivist/internal/apperr"
)

func TestReplaceRegion_KeepsSurroundings(t *testing.T) {
	doc := []byte("<h1>Hand written</h1>\n<ul>\n<!-- archivist:begin listing -->\nstale\n<!-- archivist:end listing -->\n</ul>\n<footer>x</footer>\n")
	got, err := ReplaceRegion(doc, RegionListing, "<li>fresh</li>\n")
	if err != nil {
		t.Fatalf("ReplaceRegion: %v", err)
	}
	want := "<h1>Hand written</h1>\n<ul>\n<!-- archivist:begin listing -->\n<li>fresh</li>\n<!-- archivist:end listing -->\n</ul>\n<footer>x</footer>\n"
	if string(got) != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}

	again, err := ReplaceRegion(got, RegionListing, "<li>fresh</li>\n")
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(got) {
		t.Error("replacing with the same content must be stable")
	}
}

func TestReplaceRegion_Failures(t *testing.T) {
	cases := map[string]string{
		"missing":   "<ul></ul>",
		"no end":    "<!-- archivist:begin listing -->",
		"no begin":  "<!-- archivist:end listing -->",
		"reversed":  "<!-- archivist:end listing --><!-- archivist:begin listing -->",
		"duplicate": "<!-- archivist:begin listing --><!-- archivist:end listing --><!-- archivist:begin listing --><!-- archivist:end listing -->",
	}
	for name, doc := range cases {
		if _, err := ReplaceRegion([]byte(doc), RegionListing, "x"); !errors.Is(err, apperr.ErrMarkerMissing) {
			t.Errorf("%s: err = %v, want ErrMarkerMissing", name, err)
		}
	}
}

func TestHasRegion(t *testing.T) {
	if HasRegion([]byte("<nav></nav>"), RegionNav) {
		t.Error("no markers means no region")
	}
	if !HasRegion([]byte("<!-- archivist:end nav -->"), RegionNav) {
		t.Error("a lone marker still counts as a (broken) region")
	}
}
