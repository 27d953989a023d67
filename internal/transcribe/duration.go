package transcribe

import "github.com/echoscribe/backend/pkg/speech"

// firstDuration evaluates duration sources lazily in priority order and
// returns the first value produced. The order is a documented contract:
// collaborator-reported duration, then last segment end, then container
// metadata, then nil.
func firstDuration(steps ...func() *float64) *float64 {
	for _, step := range steps {
		if d := step(); d != nil {
			return d
		}
	}
	return nil
}

// lastSegmentEnd returns the end timestamp of the final segment, or nil when
// no segments were returned.
func lastSegmentEnd(segments []speech.Segment) *float64 {
	if len(segments) == 0 {
		return nil
	}
	end := segments[len(segments)-1].End
	return &end
}
