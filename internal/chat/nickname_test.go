package chat

import (
	"strings"
	"testing"
)

func TestValidNickname(t *testing.T) {
	valid := []string{"a", "Bob", "Al-1ce", "0", "-", "x-y-z", strings.Repeat("z", 16), "ABCdef123-456789"}
	for _, n := range valid {
		if !ValidNickname(n) {
			t.Fatalf("%q should be valid", n)
		}
	}
	invalid := []string{"", strings.Repeat("z", 17), "toolongnicknamexxx", "Al ice", "bob@home", "über", "a_b", "a.b", "tab\t", "new\nline"}
	for _, n := range invalid {
		if ValidNickname(n) {
			t.Fatalf("%q should be invalid", n)
		}
	}
}

func TestValidNicknameLengthLimit(t *testing.T) {
	if MaxNicknameLen != 16 {
		t.Fatalf("MaxNicknameLen = %d", MaxNicknameLen)
	}
	if !ValidNickname(strings.Repeat("a", MaxNicknameLen)) {
		t.Fatalf("nickname of MaxNicknameLen rejected")
	}
	if ValidNickname(strings.Repeat("a", MaxNicknameLen+1)) {
		t.Fatalf("nickname longer than MaxNicknameLen accepted")
	}
}
