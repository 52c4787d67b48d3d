package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/gift"
)

const (
	AvatarSize     = 256
	JPEGQuality    = 85
	MaxAvatarBytes = 2 * 1024 * 1024
	// Decoding bombs are refused before allocating pixels.
	maxSourcePixels = 40_000_000
)

var (
	ErrTooLarge    = errors.New("avatar too large")
	ErrUnsupported = errors.New("unsupported avatar image")
)

// NormalizeAvatar decodes an uploaded picture, fills a square of AvatarSize
// anchored at the center and re-encodes it as JPEG.
func NormalizeAvatar(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxAvatarBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar: %w", err)
	}
	if len(raw) > MaxAvatarBytes {
		return nil, ErrTooLarge
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if cfg.Width*cfg.Height > maxSourcePixels {
		return nil, ErrTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	g := gift.New(gift.ResizeToFill(AvatarSize, AvatarSize, gift.LanczosResampling, gift.CenterAnchor))
	dst := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
