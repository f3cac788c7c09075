// SPDX-License-Identifier: Apache-2.0

// Package tts renders a finished transcript into podcast audio: it splits
// the script on speaker markers, synthesizes each segment, and stitches the
// segments into a single file.
package tts

import (
	"regexp"
	"strings"
)

// Segment is one contiguous stretch of speech by a single speaker.
type Segment struct {
	Speaker string
	Text    string
}

var speakerMarker = regexp.MustCompile(`\[(\w+)\]`)

// Split breaks a transcript into speaker segments. Anything before the first
// marker is dropped; a trailing marker with no following text yields a
// segment with empty text.
func Split(transcript string) []Segment {
	first := strings.Index(transcript, "[")
	if first < 0 {
		return nil
	}
	transcript = transcript[first:]

	markers := speakerMarker.FindAllStringSubmatchIndex(transcript, -1)
	segments := make([]Segment, 0, len(markers))
	for i, m := range markers {
		end := len(transcript)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		segments = append(segments, Segment{
			Speaker: transcript[m[2]:m[3]],
			Text:    strings.TrimSpace(transcript[m[1]:end]),
		})
	}
	return segments
}
