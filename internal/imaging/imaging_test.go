package imaging

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNormalizer struct {
	calls []string
}

func (f *fakeNormalizer) Normalize(ctx context.Context, src, dst string, size int) error {
	f.calls = append(f.calls, filepath.Base(dst))
	if strings.Contains(src, "broken") {
		return errors.New("convert: not an image")
	}
	return os.WriteFile(dst, []byte("resized"), 0o644)
}

func setupRoot(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, SourceDir)
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0o755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(src, f), []byte("img:"+f), 0o644))
	}
	return root
}

func TestCommandArgs(t *testing.T) {
	c := NewCommand("")
	assert.Equal(t, "convert", c.Path)
	assert.Equal(t, []string{
		"in.png", "-resize", "100x100", "-gravity", "South",
		"-background", "transparent", "-extent", "100x100",
		"-density", "1x1", "out.jpg",
	}, c.Args("in.png", "out.jpg", 100))
}

func TestBatch(t *testing.T) {
	root := setupRoot(t, "jane_at_example.com.png", "broken.jpg")
	fake := &fakeNormalizer{}

	results, err := Batch(context.Background(), fake, root, []int{100, 300})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, BatchResult{Size: 100, Converted: 1, Failed: 1}, results[0])
	assert.Equal(t, BatchResult{Size: 300, Converted: 1, Failed: 1}, results[1])

	out := filepath.Join(root, OutputDir, "300x300", "jane_at_example.com300x300.jpg")
	assert.FileExists(t, out)

	bad, err := os.ReadFile(filepath.Join(root, BadDir, "broken100x100.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "img:broken.jpg", string(bad))
	assert.NotContains(t, fake.calls, "nested100x100.jpg")
}

func TestBatchRejectsBadSize(t *testing.T) {
	root := setupRoot(t, "a.png")
	_, err := Batch(context.Background(), &fakeNormalizer{}, root, []int{0})
	assert.Error(t, err)
}

func TestBatchMissingSource(t *testing.T) {
	_, err := Batch(context.Background(), &fakeNormalizer{}, t.TempDir(), []int{100})
	assert.Error(t, err)
}

func TestCommandFailureFallsBack(t *testing.T) {
	bin, err := exec.LookPath("false")
	if err != nil {
		t.Skip("false not available")
	}
	root := setupRoot(t, "a.png")

	results, err := Batch(context.Background(), NewCommand(bin), root, []int{50})
	require.NoError(t, err)
	assert.Equal(t, 1, results[0].Failed)
	assert.FileExists(t, filepath.Join(root, BadDir, "a50x50.jpg"))
}
