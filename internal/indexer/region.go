package indexer

import (
	"bytes"
	"fmt"

	"github.com/starford/archivist/internal/apperr"
)

// Region names.
const (
	RegionListing = "listing"
	RegionNav     = "nav"
	RegionRecent  = "recent"
)

// BeginMarker returns the comment that opens the named generated region.
func BeginMarker(name string) string { return "<!-- archivist:begin " + name + " -->" }

// EndMarker returns the comment that closes the named generated region.
func EndMarker(name string) string { return "<!-- archivist:end " + name + " -->" }

// HasRegion reports whether doc mentions either marker of the region.
func HasRegion(doc []byte, name string) bool {
	return bytes.Contains(doc, []byte(BeginMarker(name))) || bytes.Contains(doc, []byte(EndMarker(name)))
}

// ReplaceRegion overwrites everything between the named marker pair with
// content. Both markers must appear exactly once, begin before end;
// anything else is ErrMarkerMissing and doc is not touched.
func ReplaceRegion(doc []byte, name, content string) ([]byte, error) {
	begin, end := []byte(BeginMarker(name)), []byte(EndMarker(name))

	if n := bytes.Count(doc, begin); n != 1 {
		return nil, fmt.Errorf("%w: %d %q markers", apperr.ErrMarkerMissing, n, BeginMarker(name))
	}
	if n := bytes.Count(doc, end); n != 1 {
		return nil, fmt.Errorf("%w: %d %q markers", apperr.ErrMarkerMissing, n, EndMarker(name))
	}
	bi := bytes.Index(doc, begin) + len(begin)
	ei := bytes.Index(doc, end)
	if ei < bi {
		return nil, fmt.Errorf("%w: %q precedes its begin marker", apperr.ErrMarkerMissing, EndMarker(name))
	}

	var out bytes.Buffer
	out.Grow(len(doc) + len(content))
	out.Write(doc[:bi])
	out.WriteByte('\n')
	out.WriteString(content)
	out.Write(doc[ei:])
	return out.Bytes(), nil
}
