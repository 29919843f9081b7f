package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 0, run([]string{"--version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "freedvtnc - Version")
}

func TestRun_BadMode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	var cfg = filepath.Join(t.TempDir(), "tnc.yaml")

	assert.Equal(t, 2, run([]string{"-c", cfg, "--mode", "DATAC2"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Valid: DATAC1, DATAC3, DATAC4")
}

func TestRun_BadLogLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	var cfg = filepath.Join(t.TempDir(), "tnc.yaml")

	assert.Equal(t, 2, run([]string{"-c", cfg, "--log-level", "chatty"}, &stdout, &stderr))
}

func TestRun_UnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, run([]string{"--frobnicate"}, &stdout, &stderr))
}
