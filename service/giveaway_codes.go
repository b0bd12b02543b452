package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Codes are typed by hand, so look-alike characters (0/O, 1/I/L) are left out
const (
	giveawayCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	giveawayCodeLength   = 8
)

// generateGiveawayCodes returns n distinct uppercase codes
func generateGiveawayCodes(n int) ([]string, error) {
	seen := make(map[string]struct{}, n)
	codes := make([]string, 0, n)
	alphabetSize := big.NewInt(int64(len(giveawayCodeAlphabet)))

	for len(codes) < n {
		buf := make([]byte, giveawayCodeLength)
		for i := range buf {
			idx, err := rand.Int(rand.Reader, alphabetSize)
			if err != nil {
				return nil, fmt.Errorf("failed to generate giveaway code: %w", err)
			}
			buf[i] = giveawayCodeAlphabet[idx.Int64()]
		}

		code := string(buf)
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}
