// Package imagesource turns the arguments of an image command into decoded
// images. A source is taken from the message's attachments, else from link
// arguments, else from the invoking user's avatar.
package imagesource

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Kind is where a Source came from.
type Kind string

const (
	KindAttachment Kind = "attachment"
	KindLink       Kind = "link"
	KindAvatar     Kind = "avatar"
)

// Source is an immutable decoded image together with the bytes it came from.
// Its dimensions are those of the decoded pixels.
type Source struct {
	kind        Kind
	name        string
	format      string
	data        []byte
	img         image.Image
	fingerprint string
}

func (s *Source) Kind() Kind          { return s.kind }
func (s *Source) Name() string        { return s.name }
func (s *Source) Format() string      { return s.format }
func (s *Source) Fingerprint() string { return s.fingerprint }
func (s *Source) Width() int          { return s.img.Bounds().Dx() }
func (s *Source) Height() int         { return s.img.Bounds().Dy() }

// Image returns the decoded image. Callers must not draw into it.
func (s *Source) Image() image.Image { return s.img }

// Bytes returns a copy of the original encoded bytes.
func (s *Source) Bytes() []byte {
	return bytes.Clone(s.data)
}

// Decode builds a Source from encoded bytes.
func Decode(kind Kind, name string, data []byte) (*Source, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Source{
		kind:        kind,
		name:        name,
		format:      format,
		data:        data,
		img:         img,
		fingerprint: Fingerprint(kind, data),
	}, nil
}

// Fingerprint is the hex SHA-256 of the kind followed by the bytes.
func Fingerprint(kind Kind, data []byte) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
