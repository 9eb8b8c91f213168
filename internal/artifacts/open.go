// Package artifacts loads the fitted preprocessing and model files that make
// up the prediction pipeline. Every artifact is a JSON (or YAML) document,
// optionally gzip or zstd compressed.
package artifacts

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// maxArtifactSize caps the decompressed size of a single artifact.
const maxArtifactSize = 256 << 20

// readArtifact reads path and transparently decompresses .gz and .zst files.
func readArtifact(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r io.Reader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(bytes.NewReader(raw), zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		defer dec.Close()
		r = dec
	default:
		return raw, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, maxArtifactSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	if len(data) > maxArtifactSize {
		return nil, fmt.Errorf("decompressed artifact exceeds %d bytes", maxArtifactSize)
	}
	return data, nil
}

// baseExt returns the format extension of path with any compression suffix
// removed, e.g. "categories.yaml.gz" -> ".yaml".
func baseExt(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gz", ".zst", ".zstd":
		return strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}
	return ext
}
