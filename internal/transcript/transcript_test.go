package transcript

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoin(t *testing.T) {
	assert.Equal(t, "Hello world", Join([]Segment{{Text: "Hello"}, {Text: "world"}}))
	assert.Equal(t, "Hello  world", Join([]Segment{{Text: " Hello "}, {Text: "world "}}))
	assert.Equal(t, "", Join(nil))
	assert.Equal(t, "", Join([]Segment{{Text: "  "}}))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want Verdict
	}{
		{"[NOISE]", VerdictArtifact},
		{"[BACKGROUND_NOISE 123]", VerdictArtifact},
		{"[BLANK_AUDIO]", VerdictArtifact},
		{"", VerdictNoSpeech},
		{"Hello world", VerdictAccepted},
		{"[Music]", VerdictAccepted},
		{"[NOISE] and words", VerdictAccepted},
		{"words [NOISE]", VerdictAccepted},
		{"[]", VerdictAccepted},
		{"(inaudible)", VerdictAccepted},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.text), "%q", c.text)
	}
}

func TestCacheLastWriteWins(t *testing.T) {
	var c Cache
	_, ok := c.Get()
	assert.False(t, ok)

	c.Set("first")
	c.Set("second")
	got, ok := c.Get()
	assert.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestCacheConcurrent(t *testing.T) {
	var c Cache
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); c.Set("x") }()
		go func() { defer wg.Done(); _, _ = c.Get() }()
	}
	wg.Wait()
	got, _ := c.Get()
	assert.Equal(t, "x", got)
}
