package synthid

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFormat(t *testing.T) {
	re := regexp.MustCompile(`^usa-sv-3-[0-9a-f]{12}$`)
	for i := 0; i < 50; i++ {
		id := Generate("sv-3")
		assert.True(t, re.MatchString(id), "unexpected identity %q", id)
	}
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := Generate("sv-1")
		_, dup := seen[id]
		require.False(t, dup, "collision on %q", id)
		seen[id] = struct{}{}
	}
}

func TestReferralCodeCharset(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := ReferralCode()
		require.Len(t, code, 8)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, c), "bad char %q in %q", c, code)
		}
	}
}
