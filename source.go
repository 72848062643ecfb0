package duality

import (
	"bytes"
	"io"

	j "github.com/goccy/go-json"
)

// Source abstracts over polymorphic input sources. Decode materializes the
// input as an any value ready for variant parsing; numbers are preserved as
// json.Number so integer checks do not lose precision.
type Source interface {
	Decode() (any, error)
}

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return jsonSource{r: bytes.NewReader(b)} }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return jsonSource{r: r} }

type jsonSource struct{ r io.Reader }

func (s jsonSource) Decode() (any, error) {
	dec := j.NewDecoder(s.r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, Issues{Issue{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	return v, nil
}
