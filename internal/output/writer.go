package output

import (
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"pcbfuse/internal/errors"
)

// Write stores the serialized document at path, gzip-compressing to
// path+".gz" when compress is set. It returns the path actually
// written.
func Write(path string, data []byte, compress bool) (string, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Newf(errors.OutputWriteFailed, "creating output directory: %v", err).WithFile(path)
		}
	}

	if !compress {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", errors.Newf(errors.OutputWriteFailed, "writing output: %v", err).WithFile(path)
		}
		return path, nil
	}

	gzPath := path + ".gz"
	f, err := os.Create(gzPath)
	if err != nil {
		return "", errors.Newf(errors.OutputWriteFailed, "creating output: %v", err).WithFile(gzPath)
	}

	zw := gzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		f.Close()
		return "", errors.Newf(errors.OutputWriteFailed, "compressing output: %v", err).WithFile(gzPath)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return "", errors.Newf(errors.OutputWriteFailed, "compressing output: %v", err).WithFile(gzPath)
	}
	if err := f.Close(); err != nil {
		return "", errors.Newf(errors.OutputWriteFailed, "writing output: %v", err).WithFile(gzPath)
	}
	return gzPath, nil
}
