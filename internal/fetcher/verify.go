package fetcher

import (
	"crypto/sha256"
	"fmt"

	"neve/internal/deriv"
)

// HashMismatchError reports that fetched content didn't match a
// fixed-output derivation's declared hash.
type HashMismatchError struct {
	Name     string
	Expected deriv.Digest
	Actual   deriv.Digest
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("fetcher: hash mismatch for %s: expected %s, got %s", e.Name, e.Expected, e.Actual)
}

// verifyContent checks content against expected under alg. An empty alg
// means the source declared no expected hash (a non-fixed-output source,
// such as a local input consumed only by an input-addressed derivation)
// and verification is skipped.
func verifyContent(content []byte, alg deriv.HashAlgorithm, expected deriv.Digest) error {
	if alg == "" {
		return nil
	}
	var actual deriv.Digest
	switch alg {
	case deriv.HashBlake3:
		actual = deriv.HashBytes(content)
	case deriv.HashSHA256:
		actual = deriv.Digest(sha256.Sum256(content))
	default:
		return fmt.Errorf("fetcher: unsupported hash algorithm %q", alg)
	}
	if actual != expected {
		return &HashMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}
