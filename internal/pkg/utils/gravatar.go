package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL builds the Gravatar image URL for an email address. Used as the
// fallback when a profile has no uploaded avatar.
func GravatarURL(email string, size int) string {
	if size <= 0 {
		size = 256
	}

	email = strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(email))

	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}
