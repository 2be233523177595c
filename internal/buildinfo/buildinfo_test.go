package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	prev := Version
	Version = "1.2.3"
	t.Cleanup(func() { Version = prev })

	var buf bytes.Buffer
	PrintBuildData(&buf)

	assert.Equal(t, "Build version: 1.2.3\nBuild date: N/A\nBuild commit: N/A\n", buf.String())
	assert.Equal(t, "1.2.3 (commit N/A, built N/A)", String())
}
