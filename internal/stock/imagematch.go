package stock

import (
	"path"
	"regexp"
	"strings"
)

// Product imagery maps colors to images only by filename convention, so the
// whole heuristic is isolated here; swap this for a server-provided mapping
// when one exists.

var (
	tokenSplit = regexp.MustCompile(`[_\-\s.]+`)
	imageExt   = regexp.MustCompile(`\.(png|jpe?g|webp|gif|svg)$`)
)

// ImageMatchesColor reports whether the image file's base name contains the
// color as a whole token, optionally prefixed or suffixed with "dark" or
// "light". Query strings, fragments and the image extension are stripped
// first.
func ImageMatchesColor(url, color string) bool {
	c := strings.ToLower(strings.TrimSpace(color))
	if url == "" || c == "" {
		return false
	}

	file := strings.ToLower(url)
	if i := strings.IndexByte(file, '?'); i >= 0 {
		file = file[:i]
	}
	if i := strings.IndexByte(file, '#'); i >= 0 {
		file = file[:i]
	}
	base := imageExt.ReplaceAllString(path.Base(file), "")

	for _, token := range tokenSplit.Split(base, -1) {
		if token == "" {
			continue
		}
		switch token {
		case c, "dark" + c, "light" + c, c + "dark", c + "light":
			return true
		}
	}
	return false
}

// FindImageIndexForColor returns the first image matching the color, or -1
// when none does, in which case the caller leaves the displayed image alone.
func FindImageIndexForColor(images []string, color string) int {
	for i, url := range images {
		if ImageMatchesColor(url, color) {
			return i
		}
	}
	return -1
}

// DetectColor returns the declared color the image filename matches, if any.
func DetectColor(url string, colors []string) (string, bool) {
	for _, c := range colors {
		if ImageMatchesColor(url, c) {
			return c, true
		}
	}
	return "", false
}
