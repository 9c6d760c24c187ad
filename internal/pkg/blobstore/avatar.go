package blobstore

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

const avatarSize = 256

// NormalizeAvatar decodes an uploaded profile image, crops it to a centered
// square thumbnail and re-encodes it as JPEG. Keeps stored avatars small and
// strips any original metadata.
func NormalizeAvatar(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode avatar image: %w", err)
	}

	thumb := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode avatar image: %w", err)
	}
	return buf.Bytes(), nil
}
