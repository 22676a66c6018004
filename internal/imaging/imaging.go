// Package imaging resizes avatar photos into fixed square sizes with an
// external image tool.
package imaging

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Directory names below the batch root.
const (
	SourceDir = "avatars-unprocessed"
	OutputDir = "avatars-processed-output"
	BadDir    = "avatars-processed-bad"
)

// Normalizer converts src into a size x size image at dst.
type Normalizer interface {
	Normalize(ctx context.Context, src, dst string, size int) error
}

// Command runs ImageMagick's convert (or a compatible binary).
type Command struct {
	Path string
}

// NewCommand returns a Command for the given binary, defaulting to convert.
func NewCommand(path string) *Command {
	if path == "" {
		path = "convert"
	}
	return &Command{Path: path}
}

// Args returns the argument list for one conversion. The image is scaled
// into the square, anchored to the bottom edge and padded transparently.
func (c *Command) Args(src, dst string, size int) []string {
	geom := fmt.Sprintf("%dx%d", size, size)
	return []string{
		src,
		"-resize", geom,
		"-gravity", "South",
		"-background", "transparent",
		"-extent", geom,
		"-density", "1x1",
		dst,
	}
}

func (c *Command) Normalize(ctx context.Context, src, dst string, size int) error {
	out, err := exec.CommandContext(ctx, c.Path, c.Args(src, dst, size)...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s %s: %w: %s", c.Path, filepath.Base(src), err, msg)
		}
		return fmt.Errorf("%s %s: %w", c.Path, filepath.Base(src), err)
	}
	return nil
}

// BatchResult counts the outcome of one size.
type BatchResult struct {
	Size      int
	Converted int
	Failed    int
}

// Batch converts every file in root/avatars-unprocessed into each size.
// Output goes to root/avatars-processed-output/<N>x<N>/<base><N>x<N>.jpg.
// A file that fails to convert is copied unchanged into
// root/avatars-processed-bad under the same name and the batch continues.
func Batch(ctx context.Context, n Normalizer, root string, sizes []int) ([]BatchResult, error) {
	src := filepath.Join(root, SourceDir)
	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src, err)
	}

	badDir := filepath.Join(root, BadDir)
	outRoot := filepath.Join(root, OutputDir)
	for _, d := range []string{badDir, outRoot} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", d, err)
		}
	}

	var results []BatchResult
	for _, size := range sizes {
		if size <= 0 {
			return results, fmt.Errorf("invalid size %d", size)
		}
		geom := fmt.Sprintf("%dx%d", size, size)
		outDir := filepath.Join(outRoot, geom)
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return results, fmt.Errorf("creating %s: %w", outDir, err)
		}

		log.Printf("Processing %d files at %s", len(entries), geom)
		res := BatchResult{Size: size}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if err := ctx.Err(); err != nil {
				return results, err
			}

			name := e.Name()
			base := strings.TrimSuffix(name, filepath.Ext(name))
			outName := base + geom + ".jpg"
			in := filepath.Join(src, name)

			if err := n.Normalize(ctx, in, filepath.Join(outDir, outName), size); err != nil {
				log.Printf("Converting %s failed: %v", name, err)
				res.Failed++
				if cerr := copyFile(in, filepath.Join(badDir, outName)); cerr != nil {
					return results, fmt.Errorf("copying %s to bad dir: %w", name, cerr)
				}
				continue
			}
			res.Converted++
		}
		results = append(results, res)
	}
	return results, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
