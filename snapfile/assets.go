package snapfile

import (
	"strings"

	"codesnap/snap"
)

// DefaultMaxAssetBytes is the largest inline asset kept on save.
const DefaultMaxAssetBytes = 2 << 20

// Policy bounds the inline assets a stored document may carry. A zero
// MaxAssetBytes disables the check.
type Policy struct {
	MaxAssetBytes int
}

// Dropped records one asset removed by CapAssets.
type Dropped struct {
	ElementID string // empty for the branding avatar
	Field     string
	Bytes     int
}

// CapAssets removes inline data URLs larger than the policy allows. Images
// lose their src; an oversized branding avatar is cleared and ShowAvatar is
// turned off. Remote URLs are left alone. The document is modified in place.
func CapAssets(s *snap.Snap, p Policy) []Dropped {
	if p.MaxAssetBytes <= 0 || s == nil {
		return nil
	}
	var dropped []Dropped
	var walk func([]snap.Element)
	walk = func(els []snap.Element) {
		for i := range els {
			el := &els[i]
			if el.Image != nil {
				if n := DataURLSize(el.Image.Src); n > p.MaxAssetBytes {
					el.Image.Src = ""
					dropped = append(dropped, Dropped{ElementID: el.ID, Field: "image.src", Bytes: n})
				}
			}
			walk(el.Elements)
		}
	}
	walk(s.Elements)

	if b := s.Background.Branding; b != nil {
		if n := DataURLSize(b.Avatar); n > p.MaxAssetBytes {
			b.Avatar = ""
			b.ShowAvatar = false
			dropped = append(dropped, Dropped{Field: "branding.avatar", Bytes: n})
		}
	}
	return dropped
}

// DataURLSize returns the decoded size of an inline data URL, or 0 for
// anything else.
func DataURLSize(src string) int {
	if !strings.HasPrefix(src, "data:") {
		return 0
	}
	header, body, ok := strings.Cut(src, ",")
	if !ok {
		return 0
	}
	if strings.HasSuffix(header, ";base64") {
		body = strings.TrimRight(body, "=")
		return len(body) * 3 / 4
	}
	return len(body)
}
