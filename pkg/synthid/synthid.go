// Package synthid generates the platform's synthetic identity strings: the
// per-plan masked phone used as the x-usa-key capability token, and user
// referral codes.
package synthid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Generate returns a synthetic phone identity bound to a plan server, e.g.
// "usa-sv-1-6f2a81c340d9". Uniqueness is enforced by the database index;
// 48 random bits make a retry collision effectively unreachable.
func Generate(serverID string) string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process is in much deeper trouble.
		panic(fmt.Sprintf("synthid: rand: %v", err))
	}
	return fmt.Sprintf("usa-%s-%s", serverID, hex.EncodeToString(b))
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ReferralCode returns an 8-character uppercase code without the ambiguous
// characters 0/O and 1/I.
func ReferralCode() string {
	var sb strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < 8; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("synthid: rand: %v", err))
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}
	return sb.String()
}
