package freedvtnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseString(t *testing.T) {
	assert.Equal(t, "OK PONG", okResponse("PONG", "").String())
	assert.Equal(t, "OK MODE DATAC3", okResponse("MODE", "DATAC3").String())
	assert.Equal(t, "ERROR Unknown command", errorResponse("Unknown command").String())
}
