package extractor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/featsearch/model"
)

func TestParseCSV(t *testing.T) {
	out := []byte("file,kernel,comp,mem\n/tmp/a.cl,A,3,4.5\n")
	feats, err := ParseCSV(out)
	require.NoError(t, err)
	assert.Equal(t, model.Features{"comp": 3, "mem": 4.5}, feats)

	feats, err = ParseCSV(nil)
	require.NoError(t, err)
	assert.Empty(t, feats)

	_, err = ParseCSV([]byte("file,kernel,comp\n/tmp/a.cl,A\n"))
	assert.ErrorIs(t, err, ErrMalformedOutput)

	_, err = ParseCSV([]byte("file,kernel,comp\n/tmp/a.cl,A,x\n"))
	assert.ErrorIs(t, err, ErrMalformedOutput)

	_, err = ParseCSV([]byte("file,kernel,comp\n"))
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestParseInstCount(t *testing.T) {
	out := []byte("=== stats ===\nTotalInsts : 12\nTotalBlocks : 3\nnoise\n")
	feats, err := ParseInstCount(out)
	require.NoError(t, err)
	assert.Equal(t, model.Features{"TotalInsts": 12, "TotalBlocks": 3}, feats)

	_, err = ParseInstCount([]byte("TotalInsts : many\n"))
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestCommandUnsupportedSpace(t *testing.T) {
	c := &Command{Path: "true", Spaces: []string{"GreweFeatures"}}
	_, err := c.Extract(context.Background(), "src", "AutophaseFeatures")
	assert.ErrorIs(t, err, ErrUnsupportedSpace)
}

func TestCommandRunsTool(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script tool")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "tool.sh")
	require.NoError(t, os.WriteFile(script, []byte("echo \"TotalInsts : $(wc -c < \"$1\" | tr -d ' ')\"\n"), 0o755))

	c := &Command{Path: sh, Args: []string{script}, Parse: ParseInstCount, TempDir: dir}
	feats, err := c.Extract(context.Background(), "abcd", "InstCountFeatures")
	require.NoError(t, err)
	assert.Equal(t, model.Features{"TotalInsts": 4}, feats)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary source removed")

	failing := &Command{Path: sh, Args: []string{"-c", "exit 3", "x"}}
	_, err = failing.Extract(context.Background(), "abcd", "any")
	assert.Error(t, err)
}

type staticExtractor model.Features

func (s staticExtractor) Extract(context.Context, string, string) (model.Features, error) {
	return model.Features(s), nil
}

func TestMux(t *testing.T) {
	m := Mux{"GreweFeatures": staticExtractor{"comp": 1}}
	feats, err := m.Extract(context.Background(), "x", "GreweFeatures")
	require.NoError(t, err)
	assert.Equal(t, model.Features{"comp": 1}, feats)

	_, err = m.Extract(context.Background(), "x", "InstCountFeatures")
	assert.ErrorIs(t, err, ErrUnsupportedSpace)
}
