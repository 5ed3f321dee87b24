package app

import (
	"bytes"
	"errors"
	"testing"

	"github.com/specialistvlad/shotgrid/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyFile buffers writes and fails on Close, like a file whose data is
// only flushed when it is closed.
type flakyFile struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (f *flakyFile) Close() error {
	f.closed = true
	return f.closeErr
}

func TestWriteAndClose(t *testing.T) {
	t.Parallel()

	diskFull := errors.New("no space left on device")
	testCases := []struct {
		name        string
		format      string
		closeErr    error
		errContains string
		wantErr     error
	}{
		{name: "clean close", format: results.FormatText},
		{name: "close error is returned", format: results.FormatJSON, closeErr: diskFull, errContains: "failed to close report", wantErr: diskFull},
		{name: "write error wins over close error", format: "html", closeErr: diskFull, errContains: "failed to write report"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			f := &flakyFile{closeErr: tc.closeErr}

			// --- Act ---
			err := writeAndClose(f, tc.format, results.Report{RunID: "run-1"})

			// --- Assert ---
			assert.True(t, f.closed, "the report file is always closed")
			if tc.errContains == "" {
				require.NoError(t, err)
				assert.Contains(t, f.String(), "run-1")
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}
