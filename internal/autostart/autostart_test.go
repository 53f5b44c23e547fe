package autostart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	assert.Equal(t, `"C:\Program Files\openwhisper.exe"`, Quote(`C:\Program Files\openwhisper.exe`))
}
