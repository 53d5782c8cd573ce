// Package linking decides which revenue entries belong to which video.
//
// Revenue entries carry a free-text video title rather than a video id, so the
// link is computed on every load by a Matcher.
package linking

import "strings"

// Matcher reports whether a revenue entry's video title refers to a video.
type Matcher interface {
	Match(videoTitle, entryTitle string) bool
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(videoTitle, entryTitle string) bool

// Match calls f.
func (f MatcherFunc) Match(videoTitle, entryTitle string) bool {
	return f(videoTitle, entryTitle)
}

// Substring links titles when either one contains the other, ignoring case and
// surrounding whitespace. Overlapping titles ("Study Music" and
// "Study Music Vol. 2") both match the same entry.
var Substring Matcher = MatcherFunc(func(videoTitle, entryTitle string) bool {
	v := normalize(videoTitle)
	e := normalize(entryTitle)
	if v == "" || e == "" {
		return false
	}
	return strings.Contains(v, e) || strings.Contains(e, v)
})

// Exact links titles only when they are equal, ignoring case and surrounding
// whitespace.
var Exact Matcher = MatcherFunc(func(videoTitle, entryTitle string) bool {
	v := normalize(videoTitle)
	return v != "" && v == normalize(entryTitle)
})

// Default is the matcher used when none is configured.
var Default = Substring

// ByName returns the matcher registered under name ("substring" or "exact").
func ByName(name string) (Matcher, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "substring":
		return Substring, true
	case "exact":
		return Exact, true
	default:
		return nil, false
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
