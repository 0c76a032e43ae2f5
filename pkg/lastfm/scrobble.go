package lastfm

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"
)

// ScrobbleResponse summarizes the outcome of a track.scrobble call.
type ScrobbleResponse struct {
	Accepted       int    // Number of scrobbles accepted
	Ignored        int    // Number of scrobbles ignored
	IgnoredMessage string // Reason for the ignore, if any
}

// Scrobble submits a single play of artist/title with the given
// timestamp. Requires an authenticated session.
//
// A reply where Last.fm ignored the scrobble is returned as an error:
// from the caller's point of view the play was not logged.
func (c *Client) Scrobble(ctx context.Context, artist, title string, timestamp time.Time) (*ScrobbleResponse, error) {
	if artist == "" || title == "" {
		return nil, fmt.Errorf("lastfm: artist and title are required")
	}

	params := map[string]string{
		"artist":    artist,
		"track":     title,
		"timestamp": strconv.FormatInt(timestamp.Unix(), 10),
	}

	inner, err := c.call(ctx, "track.scrobble", params, true)
	if err != nil {
		return nil, err
	}

	resp, err := unmarshalScrobble(inner)
	if err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse scrobble response: %w", err)
	}

	if resp.Ignored > 0 {
		if resp.IgnoredMessage != "" {
			return resp, fmt.Errorf("lastfm: scrobble was ignored: %s", resp.IgnoredMessage)
		}
		return resp, fmt.Errorf("lastfm: scrobble was ignored")
	}

	return resp, nil
}

// scrobbleResponse is the XML payload of track.scrobble.
type scrobbleResponse struct {
	Scrobbles struct {
		Accepted string `xml:"accepted,attr"`
		Ignored  string `xml:"ignored,attr"`
		Scrobble struct {
			IgnoredMessage struct {
				Code int    `xml:"code,attr"`
				Text string `xml:",chardata"`
			} `xml:"ignoredMessage"`
		} `xml:"scrobble"`
	} `xml:"scrobbles"`
}

func unmarshalScrobble(data []byte) (*ScrobbleResponse, error) {
	wrapped := []byte("<root>" + string(data) + "</root>")

	var resp scrobbleResponse
	if err := xml.Unmarshal(wrapped, &resp); err != nil {
		return nil, err
	}

	accepted, _ := strconv.Atoi(resp.Scrobbles.Accepted)
	ignored, _ := strconv.Atoi(resp.Scrobbles.Ignored)

	return &ScrobbleResponse{
		Accepted:       accepted,
		Ignored:        ignored,
		IgnoredMessage: resp.Scrobbles.Scrobble.IgnoredMessage.Text,
	}, nil
}
