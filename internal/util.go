package internal

import (
	"path"
	"strings"
	"time"
)

var timeNow = time.Now

func joinNames(names []string) string { return strings.Join(names, ", ") }

func parentOf(p string) string { return path.Dir(p) }
