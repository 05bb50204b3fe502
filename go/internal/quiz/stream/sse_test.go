package stream

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFrameNamedEvent(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("event: question.changed\ndata: {\"questionNumber\":2}\n\n"))

	f, err := readFrame(r)
	require.NoError(t, err)
	assert.Equal(t, "question.changed", f.name)
	assert.Equal(t, `{"questionNumber":2}`, string(f.data))
}

func TestReadFrameDefaultsToMessage(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("data: hello\n\n"))

	f, err := readFrame(r)
	require.NoError(t, err)
	assert.Equal(t, "message", f.name)
	assert.Equal(t, "hello", string(f.data))
}

func TestReadFrameMultiLineData(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("event: x\ndata: line1\ndata: line2\n\n"))

	f, err := readFrame(r)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2", string(f.data))
}

func TestReadFrameSkipsCommentsAndBlankRuns(t *testing.T) {
	input := ": keepalive\n\n\n: another\nevent: connected\ndata: abc\n\n"
	r := bufio.NewReader(strings.NewReader(input))

	f, err := readFrame(r)
	require.NoError(t, err)
	assert.Equal(t, "connected", f.name)
	assert.Equal(t, "abc", string(f.data))
}

func TestReadFrameCRLF(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("event: e\r\ndata: d\r\n\r\n"))

	f, err := readFrame(r)
	require.NoError(t, err)
	assert.Equal(t, "e", f.name)
	assert.Equal(t, "d", string(f.data))
}

func TestReadFrameEOF(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("event: partial\n"))

	_, err := readFrame(r)
	assert.ErrorIs(t, err, io.EOF)
}
