package source

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// BytesSource decodes a cover supplied as raw compressed image bytes, the
// form an upstream image generator hands over. The MIME hint is advisory;
// decoding sniffs the actual format.
type BytesSource struct {
	data []byte
	mime string
}

func NewBytesSource(data []byte, mimeHint string) *BytesSource {
	return &BytesSource{data: data, mime: mimeHint}
}

func (s *BytesSource) Image() (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(s.data))
	if err != nil {
		return nil, fmt.Errorf("%w (mime hint %q): %v", ErrImageDecode, s.mime, err)
	}
	return img, nil
}

func (s *BytesSource) Close() error { return nil }

// FileSource decodes a cover image from disk.
type FileSource struct {
	path string
}

func NewFileSource(path string) (*FileSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return &FileSource{path: path}, nil
}

func (s *FileSource) Image() (image.Image, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrImageDecode, s.path, err)
	}
	return img, nil
}

func (s *FileSource) Close() error { return nil }
