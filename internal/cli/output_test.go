package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftware/sessiondoc/internal/session"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E102", "session not found", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E102", resp.Error.Code)
	assert.Equal(t, "session not found", resp.Error.Message)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Error("E101", "bad identifier", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E101]: bad identifier")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	formatter.VerboseLog("opened store %s", "memory://x/y")
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "opened store memory://x/y")

	formatter.Verbose = false
	errOut.Reset()
	formatter.VerboseLog("silent")
	assert.Empty(t, errOut.String())
}

func TestExitError(t *testing.T) {
	base := errors.New("boom")
	err := WrapExitError(ExitCommandError, "opening store", base)
	assert.Equal(t, "opening store: boom", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "failed")))
}

func TestMapServiceError(t *testing.T) {
	cases := map[string]struct {
		err  error
		code string
	}{
		"invalid id":  {session.ErrInvalidIdentifier, ErrCodeInvalidID},
		"not found":   {session.ErrNotFound, ErrCodeNotFound},
		"conflict":    {session.ErrAlreadyExists, ErrCodeAlreadyExists},
		"transient":   {session.ErrTransient, ErrCodeTransient},
		"consistency": {session.ErrConsistency, ErrCodeConsistency},
		"cursor":      {session.ErrInvalidCursor, ErrCodeInvalidCursor},
		"other":       {errors.New("mystery"), ErrCodeGeneric},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			wrapped := fmt.Errorf("op context: %w", tc.err)
			assert.Equal(t, tc.code, MapServiceError(wrapped))
		})
	}
}
