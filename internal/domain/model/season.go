package model

// SeasonUnknown labels a record whose season could not be determined.
const SeasonUnknown = "Unknown"

// SeasonNewer reports whether season a is more recent than b. Season labels
// such as "2024-2025" compare lexically; the "Unknown" placeholder and the
// empty label are older than any labelled season.
func SeasonNewer(a, b string) bool {
	aUnknown := a == SeasonUnknown || a == ""
	bUnknown := b == SeasonUnknown || b == ""
	switch {
	case aUnknown:
		return false
	case bUnknown:
		return true
	}
	return a > b
}
