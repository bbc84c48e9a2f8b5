package script

import (
	"strings"
	"unicode/utf8"
)

// TruncationNotice is appended to output cut at the configured limit.
const TruncationNotice = "\n... [output truncated]"

// capture is the output sink of one execution. It is acquired for the
// duration of a call and released on every exit path; writes after release
// are dropped.
type capture struct {
	buf       strings.Builder
	limit     int
	chars     int
	truncated bool
	released  bool
}

// acquireCapture returns a fresh sink and the function that releases it.
// The limit counts characters; zero or less means unlimited.
func acquireCapture(limit int) (*capture, func()) {
	c := &capture{limit: limit}
	return c, func() { c.released = true }
}

func (c *capture) WriteString(s string) {
	if c.released || c.truncated {
		return
	}
	n := utf8.RuneCountInString(s)
	if c.limit > 0 && c.chars+n > c.limit {
		c.buf.WriteString(prefix(s, c.limit-c.chars))
		c.chars = c.limit
		c.truncated = true
		return
	}
	c.buf.WriteString(s)
	c.chars += n
}

// prefix returns the first n characters of s.
func prefix(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// String returns the captured text, with TruncationNotice when cut.
func (c *capture) String() string {
	if c.truncated {
		return strings.ToValidUTF8(c.buf.String(), "") + TruncationNotice
	}
	return c.buf.String()
}
