package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"franklin/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitInput, exitCode(domain.NewConfigError("GEMINI_API_KEY")))
	assert.Equal(t, exitInput, exitCode(domain.NewInsufficientInputError(50)))
	assert.Equal(t, exitInput, exitCode(domain.NewFileTooLargeError(10<<20)))
	assert.Equal(t, exitSchema, exitCode(domain.NewSchemaError("quiz response is not valid JSON")))
	assert.Equal(t, exitUpstream, exitCode(domain.NewUpstreamUnavailableError(errors.New("timeout"))))
	assert.Equal(t, exitUpstream, exitCode(domain.NewError(domain.CodeUploadInit, "rejected", nil)))
	assert.Equal(t, exitUpstream, exitCode(errors.New("unexpected")))
}

func TestParseArgs(t *testing.T) {
	var stderr bytes.Buffer

	opts, err := parseArgs([]string{"-file", "notes.pdf", "-keep", "focus", "on", "chapter", "2"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "notes.pdf", opts.file)
	assert.True(t, opts.keep)
	assert.Equal(t, "focus on chapter 2", opts.text)

	opts, err = parseArgs([]string{"some", "text"}, &stderr)
	require.NoError(t, err)
	assert.Empty(t, opts.file)
	assert.Equal(t, "some text", opts.text)

	_, err = parseArgs(nil, &stderr)
	assert.Error(t, err)
	assert.Contains(t, stderr.String(), "usage: quizgen")
}

func TestRun_NoArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), nil, &stdout, &stderr)
	assert.Equal(t, exitInput, code)
	assert.Empty(t, stdout.String())
}
