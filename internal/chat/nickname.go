package chat

import (
	"fmt"
	"regexp"
)

// MaxNicknameLen is the longest accepted nickname.
const MaxNicknameLen = 16

var nicknamePattern = regexp.MustCompile(fmt.Sprintf(`^[A-Za-z0-9-]{1,%d}$`, MaxNicknameLen))

// ValidNickname reports whether s is 1-16 ASCII letters, digits or hyphens.
func ValidNickname(s string) bool {
	return nicknamePattern.MatchString(s)
}
