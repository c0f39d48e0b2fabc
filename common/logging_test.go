package common

import (
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStreams swaps os.Stdout and os.Stderr for pipes while fn runs and
// returns what was written to each.
func captureStreams(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()

	outR, outW, err := os.Pipe()
	require.NoError(t, err)
	errR, errW, err := os.Pipe()
	require.NoError(t, err)

	origOut, origErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = outW, errW
	defer func() { os.Stdout, os.Stderr = origOut, origErr }()

	fn()

	require.NoError(t, outW.Close())
	require.NoError(t, errW.Close())

	outBytes, err := io.ReadAll(outR)
	require.NoError(t, err)
	errBytes, err := io.ReadAll(errR)
	require.NoError(t, err)
	return string(outBytes), string(errBytes)
}

func TestOutputSplitterRoutesErrorLinesToStderr(t *testing.T) {
	splitter := &OutputSplitter{}

	stdout, stderr := captureStreams(t, func() {
		splitter.Write([]byte("level=error msg=\"statement failed\"\n"))
		splitter.Write([]byte("level=info msg=\"statement compiled\"\n"))
		splitter.Write([]byte("level=debug msg=\"retiring prior edge\"\n"))
	})

	assert.Contains(t, stderr, "statement failed")
	assert.NotContains(t, stderr, "statement compiled")
	assert.Contains(t, stdout, "statement compiled")
	assert.Contains(t, stdout, "retiring prior edge")
	assert.NotContains(t, stdout, "statement failed")
}

// An "error" in the message text alone must not reroute the line; only the
// level token does.
func TestOutputSplitterMatchesLevelTokenOnly(t *testing.T) {
	splitter := &OutputSplitter{}

	stdout, stderr := captureStreams(t, func() {
		splitter.Write([]byte("level=info msg=\"error occurred upstream, retrying read\"\n"))
	})

	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "error occurred upstream")
}

func TestOutputSplitterReportsFullWriteLength(t *testing.T) {
	splitter := &OutputSplitter{}

	for _, line := range []string{
		"level=error msg=\"write failed\"\n",
		"level=info msg=\"space version advanced\"\n",
		"",
	} {
		captureStreams(t, func() {
			n, err := splitter.Write([]byte(line))
			assert.NoError(t, err)
			assert.Equal(t, len(line), n)
		})
	}
}

func TestOutputSplitterConcurrentWrites(t *testing.T) {
	splitter := &OutputSplitter{}

	captureStreams(t, func() {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				line := []byte("level=info msg=\"concurrent send\"\n")
				n, err := splitter.Write(line)
				assert.NoError(t, err)
				assert.Equal(t, len(line), n)
			}()
		}
		wg.Wait()
	})
}

func TestPackageLoggerWritesThroughSplitter(t *testing.T) {
	require.NotNil(t, Logger)

	_, ok := Logger.Out.(*OutputSplitter)
	assert.True(t, ok)
}
