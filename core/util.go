package core

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Round rounds `f` half away from zero to `places` decimal places.
func Round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

// ProjectRoot walks up from the working directory until it finds the directory holding go.mod.
// go-test changes the working directory to the package being tested, so relative paths break.
// Falls back to the working directory when no go.mod is found (eg. a deployed binary).
func ProjectRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}

// NowFunc returns the current UTC time truncated to the precision kept by the databases. Mockable.
var NowFunc = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Today returns the current UTC date at midnight.
func Today() time.Time {
	now := NowFunc()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
