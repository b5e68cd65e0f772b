package persistence

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/hupe1980/csrgo/internal/fs"
)

const writeBufferSize = 256 * 1024

// SaveToFile writes a file atomically: write reaches a uniquely named
// temporary file in the target directory, which is synced and renamed over
// name. On any error the temporary file is removed and name is untouched.
func SaveToFile(fsys fs.FileSystem, name string, write func(io.Writer) error) (err error) {
	if fsys == nil {
		fsys = fs.Default
	}
	dir := filepath.Dir(name)
	tmpName := filepath.Join(dir, "."+filepath.Base(name)+"."+uuid.NewString()+".tmp")

	f, err := fsys.OpenFile(tmpName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if err != nil {
			if !closed {
				_ = f.Close()
			}
			_ = fsys.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriterSize(f, writeBufferSize)
	if err = write(buf); err != nil {
		return err
	}
	if err = buf.Flush(); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	closed = true
	if err = f.Close(); err != nil {
		return err
	}
	if err = fsys.Rename(tmpName, name); err != nil {
		return err
	}
	return fs.SyncDir(fsys, dir)
}
