package util

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "ts3", "ColorCyan")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.NotEmpty(t, lines)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, ColorCyan))
		assert.True(t, strings.HasSuffix(line, ColorReset))
	}
}

func TestPrintBanner_UnknownColor(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "ts3", "ColorPurple")

	assert.NotContains(t, buf.String(), ColorCyan)
	assert.True(t, strings.HasPrefix(buf.String(), ColorReset))
}
