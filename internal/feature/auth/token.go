package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// newResetToken 32 字节 CSPRNG，hex 编码成 64 字符
func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
