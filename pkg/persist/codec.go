// Package persist provides codec-based file persistence for arbitrary state types.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
)

// File extensions for supported codecs.
const (
	jsonExtension = ".json"
	lz4Extension  = ".lz4"
)

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

// File modes for written state.
const (
	dirMode  = 0o755
	fileMode = 0o644
)

// Codec defines how state is serialized and deserialized.
type Codec interface {
	// Encode writes the state to the writer.
	Encode(w io.Writer, state any) error
	// Decode reads the state from the reader.
	Decode(r io.Reader, state any) error
	// Extension returns the file extension for this codec (e.g., ".json", ".json.lz4").
	Extension() string
}

// JSONCodec implements Codec using JSON encoding with optional indentation.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing (2-space indent).
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode using JSON encoding.
func (c *JSONCodec) Encode(w io.Writer, state any) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(state)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using JSON decoding.
func (c *JSONCodec) Decode(r io.Reader, state any) error {
	decoder := json.NewDecoder(r)

	err := decoder.Decode(state)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension for JSON files.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// LZ4Codec wraps another codec in an LZ4 frame.
type LZ4Codec struct {
	Inner Codec
}

// NewLZ4Codec creates an LZ4 codec around compact JSON.
func NewLZ4Codec() *LZ4Codec {
	return &LZ4Codec{Inner: &JSONCodec{}}
}

// Encode implements Codec.Encode, compressing the inner encoding.
func (c *LZ4Codec) Encode(w io.Writer, state any) error {
	zw := lz4.NewWriter(w)

	err := c.Inner.Encode(zw, state)
	if err != nil {
		return err
	}

	closeErr := zw.Close()
	if closeErr != nil {
		return fmt.Errorf("lz4 flush: %w", closeErr)
	}

	return nil
}

// Decode implements Codec.Decode, decompressing before the inner decode.
func (c *LZ4Codec) Decode(r io.Reader, state any) error {
	return c.Inner.Decode(lz4.NewReader(r), state)
}

// Extension implements Codec.Extension, appending ".lz4" to the inner extension.
func (c *LZ4Codec) Extension() string {
	return c.Inner.Extension() + lz4Extension
}

// StatePath returns the file SaveState and LoadState use.
func StatePath(dir, basename string, codec Codec) string {
	return filepath.Join(dir, basename+codec.Extension())
}

// SaveState saves the given state to a file in the specified directory.
// The filename is constructed from the basename and the codec's extension.
// The directory is created when missing. The file is written to a temporary
// sibling and renamed into place, so readers never observe a partial write.
func SaveState(dir, basename string, codec Codec, state any) (err error) {
	mkdirErr := os.MkdirAll(dir, dirMode)
	if mkdirErr != nil {
		return fmt.Errorf("create state dir: %w", mkdirErr)
	}

	file, err := os.CreateTemp(dir, "."+basename+".*.tmp")
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}

	defer func() {
		if err != nil {
			_ = file.Close()
			_ = os.Remove(file.Name())
		}
	}()

	err = codec.Encode(file, state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	err = file.Chmod(fileMode)
	if err != nil {
		return fmt.Errorf("chmod state file: %w", err)
	}

	err = file.Close()
	if err != nil {
		return fmt.Errorf("close state file: %w", err)
	}

	err = os.Rename(file.Name(), StatePath(dir, basename, codec))
	if err != nil {
		return fmt.Errorf("rename state file: %w", err)
	}

	return nil
}

// LoadState loads state from a file in the specified directory.
// The filename is constructed from the basename and the codec's extension.
// The state parameter must be a pointer to the target struct.
// A missing file yields an error matching os.ErrNotExist.
func LoadState(dir, basename string, codec Codec, state any) error {
	file, err := os.Open(StatePath(dir, basename, codec))
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	err = codec.Decode(file, state)
	if err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	return nil
}

// IsNotExist reports whether err came from loading a missing state file.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
