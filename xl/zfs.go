package xl

import (
	"archive/zip"
	"compress/flate"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage is the interface for writing Excel file parts.
// Implementations can write to ZIP archives or directory structures.
type Storage interface {
	// WriteBlob stores a fully rendered part.
	WriteBlob(path string, blob []byte) error

	// Create opens a part for streaming. The part is complete once the
	// returned writer is closed, and must be closed before the next part
	// is created.
	Create(path string) (io.WriteCloser, error)
}

// DirStorage writes Excel file parts to a directory structure on disk.
// This is useful for debugging as it allows inspection of generated XML files.
type DirStorage struct {
	Dir string // Root directory path
}

// NewDirStorage creates a new directory-based storage that writes files to the specified directory.
// The directory will be created if it doesn't exist.
func NewDirStorage(dir string) *DirStorage {
	return &DirStorage{
		Dir: dir,
	}
}

func (ds *DirStorage) filename(path string) (string, error) {
	path = strings.TrimPrefix(path, "/")
	fn := filepath.Join(ds.Dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(fn), 0777); err != nil {
		return "", &IOError{Op: "mkdir", Path: filepath.Dir(fn), Err: err}
	}
	return fn, nil
}

// WriteBlob writes a file part to the directory structure.
// Creates any necessary parent directories automatically.
func (ds *DirStorage) WriteBlob(path string, blob []byte) error {
	fn, err := ds.filename(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(fn, blob, 0666); err != nil {
		return &IOError{Op: "write", Path: fn, Err: err}
	}
	return nil
}

func (ds *DirStorage) Create(path string) (io.WriteCloser, error) {
	fn, err := ds.filename(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(fn)
	if err != nil {
		return nil, &IOError{Op: "create", Path: fn, Err: err}
	}
	return dirFile{f}, nil
}

// dirFile reports write failures as I/O errors.
type dirFile struct {
	*os.File
}

func (f dirFile) Write(p []byte) (int, error) {
	n, err := f.File.Write(p)
	if err != nil {
		return n, &IOError{Op: "write", Path: f.Name(), Err: err}
	}
	return n, nil
}

func (f dirFile) Close() error {
	if err := f.File.Close(); err != nil {
		return &IOError{Op: "close", Path: f.Name(), Err: err}
	}
	return nil
}

// zipEpoch is the modification time stamped on every entry, so that equal
// workbooks produce equal files.
var zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// ZipStorage writes Excel file parts to a ZIP archive, creating a standard .xlsx file.
// Every entry is deflate-compressed; entries appear in the order they are written.
type ZipStorage struct {
	z  *zip.Writer
	cw *countingWriter
}

// NewZipStorage creates a new ZIP-based storage that writes to the given writer
// with the default compression level.
func NewZipStorage(out io.Writer) *ZipStorage {
	return newZipStorage(out, DefaultConfig().CompressionLevel)
}

func newZipStorage(out io.Writer, level int) *ZipStorage {
	cw := &countingWriter{w: out}
	z := zip.NewWriter(cw)
	z.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})
	return &ZipStorage{z: z, cw: cw}
}

// WriteBlob writes a file part to the ZIP archive.
// Each part becomes a file entry in the ZIP with the specified path.
func (zs *ZipStorage) WriteBlob(path string, blob []byte) error {
	f, err := zs.Create(path)
	if err != nil {
		return err
	}
	if _, err = f.Write(blob); err != nil {
		return zs.fail(path, err)
	}
	return f.Close()
}

func (zs *ZipStorage) Create(path string) (io.WriteCloser, error) {
	path = strings.TrimPrefix(path, "/")
	f, err := zs.z.CreateHeader(&zip.FileHeader{
		Name:     path,
		Method:   zip.Deflate,
		Modified: zipEpoch,
	})
	if err != nil {
		return nil, zs.fail(path, err)
	}
	return nopCloser{f}, nil
}

// Close finalizes the ZIP archive. Must be called after all writes are complete.
// Failure to call Close will result in an invalid/corrupted Excel file.
func (zs *ZipStorage) Close() error {
	if err := zs.z.Close(); err != nil {
		return zs.fail("central directory", err)
	}
	return nil
}

// Written returns the number of bytes passed to the underlying writer.
func (zs *ZipStorage) Written() int64 { return zs.cw.n }

// fail classifies an archive error: failures of the underlying writer are
// I/O errors, anything else means the archive itself is inconsistent.
func (zs *ZipStorage) fail(part string, err error) error {
	if errors.Is(err, ErrIO) {
		return err
	}
	if zs.cw.err != nil {
		return &IOError{Op: "write", Err: zs.cw.err}
	}
	return &CorruptArchiveError{Part: part, Err: err}
}

// countingWriter tracks the archive size and remembers the first error of
// the underlying writer.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	if cw.err != nil {
		return 0, &IOError{Op: "write", Err: cw.err}
	}
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	if err != nil {
		cw.err = err
		return n, &IOError{Op: "write", Err: err}
	}
	return n, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
