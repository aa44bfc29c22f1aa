package triage

import "strings"

// Marker phrases scanned in free-text chief complaints. Simplified rule
// tables; a site deployment would load these from protocol configuration.
var (
	stemiMarkers = []string{
		"st elevation", "st-elevation", "stemi",
	}
	strokeMarkers = []string{
		"stroke", "cva", "facial droop", "hemiparesis", "slurred speech",
	}
	traumaMarkers = []string{
		"trauma", "mvc", "gsw", "gunshot", "stab",
	}
)

// ComplaintMarkers is the result of scanning a chief complaint for
// protocol trigger phrases.
type ComplaintMarkers struct {
	STEMI  bool
	Stroke bool
	Trauma bool
}

func (m ComplaintMarkers) Any() bool {
	return m.STEMI || m.Stroke || m.Trauma
}

// ScanComplaint performs a case-insensitive substring scan of the chief
// complaint against the marker tables.
func ScanComplaint(text string) ComplaintMarkers {
	lowered := strings.ToLower(text)
	return ComplaintMarkers{
		STEMI:  containsAny(lowered, stemiMarkers),
		Stroke: containsAny(lowered, strokeMarkers),
		Trauma: containsAny(lowered, traumaMarkers),
	}
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
