package shazam

// Result is the decoded reply from a recognition request.
//
// A reply with no match has an empty Matches slice and a nil Track.
// Confidence is optional; the service does not always supply one.
type Result struct {
	Matches    []Match  `json:"matches"`
	Track      *Track   `json:"track,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Timestamp  int64    `json:"timestamp,omitempty"`
	TagID      string   `json:"tagid,omitempty"`
}

// Match describes one fingerprint match within the submitted clip.
type Match struct {
	ID            string  `json:"id"`
	Offset        float64 `json:"offset"`
	TimeSkew      float64 `json:"timeskew"`
	FrequencySkew float64 `json:"frequencyskew"`
}

// Track holds the identified track's metadata. Following the service's
// naming, Title is the song title and Subtitle is the artist.
type Track struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	URL      string `json:"url,omitempty"`
}

// Matched reports whether the reply identified a track.
func (r *Result) Matched() bool {
	return r != nil && r.Track != nil
}
