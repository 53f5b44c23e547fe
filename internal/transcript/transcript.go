// Package transcript turns engine segments into accepted text and keeps the
// last accepted result for replay.
package transcript

import (
	"regexp"
	"strings"
	"sync"
)

// Segment is one ordered piece of engine output.
type Segment struct {
	Text string `json:"text"`
}

// Join concatenates segment texts with single spaces and trims the result.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
		b.WriteByte(' ')
	}
	return strings.TrimSpace(b.String())
}

// Verdict is the filter decision for a transcription.
type Verdict int

const (
	VerdictAccepted Verdict = iota
	VerdictNoSpeech
	VerdictArtifact
)

func (v Verdict) String() string {
	switch v {
	case VerdictAccepted:
		return "accepted"
	case VerdictNoSpeech:
		return "no_speech"
	case VerdictArtifact:
		return "artifact"
	default:
		return "unknown"
	}
}

// artifactPattern matches whole-text recognizer markers such as [BLANK_AUDIO].
var artifactPattern = regexp.MustCompile(`^\[[A-Z0-9_ ]+\]$`)

// Classify decides whether text is speech. Input is expected to be trimmed.
func Classify(text string) Verdict {
	if text == "" {
		return VerdictNoSpeech
	}
	if artifactPattern.MatchString(text) {
		return VerdictArtifact
	}
	return VerdictAccepted
}

// Cache holds the last accepted transcription.
type Cache struct {
	mu   sync.RWMutex
	text string
	set  bool
}

// Set replaces the cached text.
func (c *Cache) Set(text string) {
	c.mu.Lock()
	c.text = text
	c.set = true
	c.mu.Unlock()
}

// Get returns the cached text and whether one exists.
func (c *Cache) Get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.text, c.set
}
