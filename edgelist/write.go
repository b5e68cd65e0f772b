package edgelist

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/internal/fs"
	"github.com/hupe1980/csrgo/persistence"
)

// Write writes el as "src,dst" lines.
func Write(w io.Writer, el core.EdgeList) error {
	bw := bufio.NewWriterSize(w, 64*1024)
	buf := make([]byte, 0, 48)
	for _, e := range el {
		buf = strconv.AppendUint(buf[:0], e.Src, 10)
		buf = append(buf, ',')
		buf = strconv.AppendUint(buf, e.Dst, 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile atomically writes el to path, compressing by extension.
func WriteFile(path string, el core.EdgeList) error {
	err := persistence.SaveToFile(fs.Default, path, func(w io.Writer) error {
		cw, err := newCompressor(filepath.Ext(path), w)
		if err != nil {
			return err
		}
		if err := Write(cw, el); err != nil {
			_ = cw.Close()
			return err
		}
		return cw.Close()
	})
	if err != nil {
		return fmt.Errorf("edgelist: write %s: %w", path, err)
	}
	return nil
}
