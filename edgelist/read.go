package edgelist

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/hupe1980/csrgo/core"
)

// ErrMalformed is wrapped by ParseError for lines that are not an id pair.
var ErrMalformed = errors.New("edgelist: malformed line")

// ParseError reports the 1-based line of an unparsable edge.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("edgelist: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

const maxLineSize = 1 << 20

// Read parses edges from r until EOF.
func Read(r io.Reader) (core.EdgeList, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	var (
		el   core.EdgeList
		line int
	)
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 || text[0] == '#' || text[0] == '%' {
			continue
		}
		e, err := parseEdge(text)
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		el = append(el, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("edgelist: line %d: %w", line+1, err)
	}
	return el, nil
}

// ReadFile reads an edge list file, decompressing by extension.
func ReadFile(path string) (core.EdgeList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("edgelist: %w", err)
	}
	defer f.Close()

	r, err := newDecompressor(path, f)
	if err != nil {
		return nil, fmt.Errorf("edgelist: %s: %w", path, err)
	}
	defer r.Close()

	el, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return el, nil
}

func parseEdge(text []byte) (core.Edge, error) {
	a, b, ok := bytes.Cut(text, []byte{','})
	if !ok {
		fields := bytes.Fields(text)
		if len(fields) != 2 {
			return core.Edge{}, fmt.Errorf("%w: %q", ErrMalformed, text)
		}
		a, b = fields[0], fields[1]
	}

	src, err := strconv.ParseUint(string(bytes.TrimSpace(a)), 10, 64)
	if err != nil {
		return core.Edge{}, fmt.Errorf("%w: source: %w", ErrMalformed, err)
	}
	dst, err := strconv.ParseUint(string(bytes.TrimSpace(b)), 10, 64)
	if err != nil {
		return core.Edge{}, fmt.Errorf("%w: destination: %w", ErrMalformed, err)
	}
	return core.Edge{Src: src, Dst: dst}, nil
}
