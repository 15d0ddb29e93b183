package analyze

import (
	"compress/gzip"
	"io"
	"os"
	"strings"
)

// FileSource returns a Source that lazily opens path, transparently
// decompressing files with a .gz suffix.
func FileSource(path string) Source {
	return Source{
		Name: path,
		Open: func() (io.ReadCloser, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			if !strings.HasSuffix(path, ".gz") {
				return f, nil
			}
			gz, err := gzip.NewReader(f)
			if err != nil {
				f.Close()
				return nil, err
			}
			return &gzipFile{file: f, Reader: gz}, nil
		},
	}
}

// gzipFile closes both the decompressor and the underlying file.
type gzipFile struct {
	file *os.File
	*gzip.Reader
}

func (g *gzipFile) Close() error {
	gzErr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return gzErr
}
