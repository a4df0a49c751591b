package service

import "strings"

const fence = "```"

type segment struct {
	code bool
	text string
}

// splitSegments cuts text into alternating prose and fenced code segments.
// A line whose trimmed form starts with a fence opens or closes a block; a
// fence line carrying its own closing fence is a complete block on its own.
// An unterminated block runs to the end of the text. Joining the segments
// with "\n" yields the input unchanged.
func splitSegments(text string) []segment {
	var (
		segments []segment
		current  []string
		inCode   bool
	)

	flush := func(code bool) {
		if len(current) == 0 {
			return
		}
		segments = append(segments, segment{code: code, text: strings.Join(current, "\n")})
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, fence) {
			current = append(current, line)
			continue
		}

		switch {
		case inCode:
			current = append(current, line)
			flush(true)
			inCode = false
		case strings.Count(trimmed, fence) >= 2:
			flush(false)
			current = append(current, line)
			flush(true)
		default:
			flush(false)
			current = append(current, line)
			inCode = true
		}
	}
	flush(inCode)

	return segments
}

func joinSegments(segments []segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.text
	}
	return strings.Join(parts, "\n")
}
