package terrain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"

	billy "gopkg.in/src-d/go-billy.v4"
	"gopkg.in/src-d/go-billy.v4/osfs"
)

var (
	// ErrMalformed marks a token that is missing or not a number.
	ErrMalformed = errors.New("malformed terrain data")
	// ErrDimensions marks a non-positive row or column count.
	ErrDimensions = errors.New("invalid terrain dimensions")
	// ErrShortData marks input that ends before every elevation was read.
	ErrShortData = errors.New("terrain data ends early")
)

// LoadError reports why a height field could not be produced.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load terrain %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadFile reads a terrain file from the local filesystem.
func LoadFile(path string) (*HeightField, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	dir, name := filepath.Split(abs)
	hf, err := Load(osfs.New(dir), name)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return hf, nil
}

// Load reads a terrain file through fs.
func Load(fs billy.Filesystem, path string) (*HeightField, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	hf, err := Parse(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	return hf, nil
}

// Parse reads the whitespace-delimited terrain format: row count, column
// count, then rows*columns elevations given row by row. Tokens after the last
// elevation are ignored.
func Parse(r io.Reader) (*HeightField, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)

	token := 0
	next := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		token++
		return sc.Text(), nil
	}

	dim := func(name string) (int, error) {
		tok, err := next()
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: missing %s", ErrMalformed, name)
		}
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q", ErrMalformed, name, tok)
		}
		if v <= 0 {
			return 0, fmt.Errorf("%w: %s %d", ErrDimensions, name, v)
		}
		return v, nil
	}

	rows, err := dim("row count")
	if err != nil {
		return nil, &LoadError{Path: "<reader>", Err: err}
	}
	cols, err := dim("column count")
	if err != nil {
		return nil, &LoadError{Path: "<reader>", Err: err}
	}

	values := make([]float64, 0, rows*cols)
	for len(values) < rows*cols {
		tok, err := next()
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Path: "<reader>", Err: fmt.Errorf("%w: read %d of %d elevations", ErrShortData, len(values), rows*cols)}
		}
		if err != nil {
			return nil, &LoadError{Path: "<reader>", Err: err}
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, &LoadError{Path: "<reader>", Err: fmt.Errorf("%w: token %d %q", ErrMalformed, token, tok)}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &LoadError{Path: "<reader>", Err: fmt.Errorf("%w: token %d %q is not a finite elevation", ErrMalformed, token, tok)}
		}
		values = append(values, v)
	}
	hf, err := New(cols, rows, values)
	if err != nil {
		return nil, &LoadError{Path: "<reader>", Err: err}
	}
	return hf, nil
}
