package docimport

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// File is an uploaded document: a name, a declared content type and bytes.
type File interface {
	Name() string
	ContentType() string
	Open() (io.ReadCloser, error)
}

type localFile struct {
	path string
}

// LocalFile wraps a file on disk. The content type is guessed from the
// extension.
func LocalFile(path string) File { return localFile{path: path} }

func (f localFile) Name() string { return filepath.Base(f.path) }

func (f localFile) ContentType() string {
	return mime.TypeByExtension(filepath.Ext(f.path))
}

func (f localFile) Open() (io.ReadCloser, error) { return os.Open(f.path) }

type bytesFile struct {
	name, contentType string
	data              []byte
}

// BytesFile wraps in-memory content.
func BytesFile(name, contentType string, data []byte) File {
	return bytesFile{name: name, contentType: contentType, data: data}
}

func (f bytesFile) Name() string        { return f.name }
func (f bytesFile) ContentType() string { return f.contentType }

func (f bytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type multipartFile struct {
	fh *multipart.FileHeader
}

// MultipartFile wraps a file part of a parsed multipart form.
func MultipartFile(fh *multipart.FileHeader) File { return multipartFile{fh: fh} }

func (f multipartFile) Name() string        { return f.fh.Filename }
func (f multipartFile) ContentType() string { return f.fh.Header.Get("Content-Type") }

func (f multipartFile) Open() (io.ReadCloser, error) { return f.fh.Open() }

// ErrPathTraversal is returned when a path escapes the configured root.
var ErrPathTraversal = errors.New("docimport: path escapes root")

// ResolvePath confines p to root. Absolute paths are taken relative to root
// and any ".." element is rejected. An empty root returns p unchanged.
func ResolvePath(root, p string) (string, error) {
	if root == "" {
		return p, nil
	}
	for _, elem := range strings.FieldsFunc(filepath.ToSlash(p), func(r rune) bool { return r == '/' }) {
		if elem == ".." {
			return "", ErrPathTraversal
		}
	}
	base := filepath.Clean(root)
	cleaned := filepath.Join(base, filepath.Clean("/"+p))
	if cleaned != base && !strings.HasPrefix(cleaned, base+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return cleaned, nil
}
