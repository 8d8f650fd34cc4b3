package imagesource

import (
	"bytes"
	"net/url"
	"path"
	"strings"
)

// SniffLen is how many leading bytes of a link are read before deciding
// whether to download it.
const SniffLen = 11

var (
	pngSignature  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegSignature = []byte{0xff, 0xd8, 0xff}
)

// Sniff reports the image format named by prefix, or "" when it is neither
// PNG nor JPEG.
func Sniff(prefix []byte) string {
	switch {
	case bytes.HasPrefix(prefix, pngSignature):
		return "png"
	case bytes.HasPrefix(prefix, jpegSignature):
		return "jpeg"
	}
	return ""
}

// NormalizeLink strips the <> Discord uses to suppress embeds and checks the
// link is an absolute http(s) URL.
func NormalizeLink(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}

// LooksLikeLink reports whether an argument should be treated as a link rather
// than a plain value.
func LooksLikeLink(arg string) bool {
	s := strings.TrimPrefix(strings.TrimSpace(arg), "<")
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func linkName(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return "image"
	}
	switch base := path.Base(u.Path); base {
	case ".", "/":
		return "image"
	default:
		return base
	}
}
