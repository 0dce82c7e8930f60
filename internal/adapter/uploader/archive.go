package uploader

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pharos-backup/pharos/internal/domain"
)

// archiveWriter tars files into parts staged in the scoped working
// directory, starting a new part whenever the uncompressed payload would
// exceed maxSize. The first part is data.tar, additional parts
// data_0001.tar and so on, each with the codec's extension appended.
type archiveWriter struct {
	dir     string
	maxSize int64
	comp    domain.Compressor

	parts   []string
	partIdx int
	written int64

	file *os.File
	cw   io.WriteCloser
	tw   *tar.Writer
}

func newArchiveWriter(dir string, maxSize int64, comp domain.Compressor) *archiveWriter {
	return &archiveWriter{dir: dir, maxSize: maxSize, comp: comp}
}

func (a *archiveWriter) openPart() error {
	name := "data.tar"
	if a.partIdx > 0 {
		name = fmt.Sprintf("data_%04d.tar", a.partIdx)
	}
	if a.comp != nil {
		name += a.comp.Extension()
	}

	file, err := os.Create(filepath.Join(a.dir, name))
	if err != nil {
		return fmt.Errorf("failed to create archive part: %w", err)
	}
	a.file = file
	a.parts = append(a.parts, file.Name())

	var w io.Writer = file
	if a.comp != nil {
		cw, err := a.comp.WrapWriter(file)
		if err != nil {
			file.Close()
			return fmt.Errorf("failed to open compressed writer: %w", err)
		}
		a.cw = cw
		w = cw
	}
	a.tw = tar.NewWriter(w)
	return nil
}

func (a *archiveWriter) closePart() error {
	if a.tw == nil {
		return nil
	}
	if err := a.tw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive part: %w", err)
	}
	if a.cw != nil {
		if err := a.cw.Close(); err != nil {
			return fmt.Errorf("failed to finalize compressed part: %w", err)
		}
		a.cw = nil
	}
	if err := a.file.Close(); err != nil {
		return fmt.Errorf("failed to close archive part: %w", err)
	}
	a.tw = nil
	a.file = nil
	a.written = 0
	a.partIdx++
	return nil
}

// Add appends one filesystem entry under the given archive name. Regular
// files, directories and symlinks are supported; anything else (sockets,
// fifos) is skipped.
func (a *archiveWriter) Add(fsPath, name string) error {
	info, err := os.Lstat(fsPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", fsPath, err)
	}

	size := int64(0)
	if info.Mode().IsRegular() {
		size = info.Size()
	}

	if a.tw != nil && a.written > 0 && a.written+size > a.maxSize {
		if err := a.closePart(); err != nil {
			return err
		}
	}
	if a.tw == nil {
		if err := a.openPart(); err != nil {
			return err
		}
	}

	link := ""
	if info.Mode()&os.ModeSymlink != 0 {
		if link, err = os.Readlink(fsPath); err != nil {
			return fmt.Errorf("failed to read symlink %s: %w", fsPath, err)
		}
	} else if !info.Mode().IsRegular() && !info.IsDir() {
		return nil
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return fmt.Errorf("failed to build tar header for %s: %w", fsPath, err)
	}
	hdr.Name = filepath.ToSlash(name)
	if info.IsDir() {
		hdr.Name += "/"
	}

	if err := a.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", name, err)
	}

	if info.Mode().IsRegular() {
		f, err := os.Open(fsPath)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", fsPath, err)
		}
		_, err = io.Copy(a.tw, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to archive %s: %w", fsPath, err)
		}
		a.written += size
	}
	return nil
}

// Close finalizes the open part and returns the staged part paths in
// creation order.
func (a *archiveWriter) Close() ([]string, error) {
	if err := a.closePart(); err != nil {
		return nil, err
	}
	return a.parts, nil
}
