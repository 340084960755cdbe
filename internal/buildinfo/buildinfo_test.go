package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo_String(t *testing.T) {
	assert.Equal(t, "CLAMP v0.0.0", Info.String())

	Time = "2024-05-01"
	defer func() { Time = "" }()
	assert.Equal(t, "CLAMP v0.0.0 (built 2024-05-01)", Info.String())
	assert.Contains(t, Graffiti, "___")
}
