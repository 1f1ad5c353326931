package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256("") is well known.
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different inputs must differ")
	}
}

func TestShort(t *testing.T) {
	if got := Short("e3b0c44298fc1c149afb"); got != "e3b0c44298fc" {
		t.Errorf("Short = %q", got)
	}
	if got := Short("abc"); got != "abc" {
		t.Errorf("Short(abc) = %q", got)
	}
}
