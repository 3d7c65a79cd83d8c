package enrich

import "github.com/abadojack/whatlanggo"

// WhatlangDetector detects languages with whatlanggo.
type WhatlangDetector struct {
	// AllowUnreliable keeps detections below whatlanggo's confidence
	// threshold instead of reporting them as undetermined.
	AllowUnreliable bool
}

// Detect implements Detector.
func (d WhatlangDetector) Detect(text string) string {
	info := whatlanggo.Detect(text)
	if !d.AllowUnreliable && !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
