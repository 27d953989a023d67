// Package media reads duration from audio container metadata. It is a
// best-effort fallback; callers swallow failures.
package media

import (
	"bytes"

	mp3 "github.com/tcolgate/mp3"
)

// DurationSeconds sums MPEG frame durations from the audio bytes. The second
// return value is false when the bytes are not decodable MPEG audio.
func DurationSeconds(audio []byte) (float64, bool) {
	dec := mp3.NewDecoder(bytes.NewReader(audio))

	var total float64
	var frames int
	var frame mp3.Frame
	skipped := 0
	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			// EOF ends the stream; a corrupt tail after valid frames still
			// yields a usable total.
			break
		}
		total += frame.Duration().Seconds()
		frames++
	}
	if frames == 0 || total <= 0 {
		return 0, false
	}
	return total, true
}
