package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateInviteCode returns a random project invite code formatted XXXX-XXXX-XXXX
func GenerateInviteCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	code := strings.ToUpper(hex.EncodeToString(buf))
	return code[0:4] + "-" + code[4:8] + "-" + code[8:12], nil
}

// NormalizeInviteCode trims and upper-cases user supplied codes
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
