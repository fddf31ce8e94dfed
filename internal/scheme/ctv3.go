package scheme

import (
	"strings"

	dErrors "cis/pkg/domain-errors"
)

const (
	ctv3Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	ctv3Length   = 5
)

// CTV3ID generates Read Codes version 3 identifiers: five characters from
// the 62-symbol alphabet 0-9, A-Z, a-z, counted like a base-62 number.
type CTV3ID struct{}

func (CTV3ID) Name() string { return "CTV3ID" }

func (CTV3ID) Valid(id string) bool {
	if len(id) != ctv3Length {
		return false
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(ctv3Alphabet, id[i]) < 0 {
			return false
		}
	}
	return true
}

func (g CTV3ID) Sequence(id string) (int64, bool) {
	if !g.Valid(id) {
		return 0, false
	}
	var n int64
	for i := 0; i < len(id); i++ {
		n = n*int64(len(ctv3Alphabet)) + int64(strings.IndexByte(ctv3Alphabet, id[i]))
	}
	return n, true
}

func (CTV3ID) CheckDigit(string) (int, bool) { return 0, false }

func (g CTV3ID) Next(prev string) (string, error) {
	if prev == "" {
		return strings.Repeat(ctv3Alphabet[:1], ctv3Length), nil
	}
	if !g.Valid(prev) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid CTV3ID: "+prev)
	}
	b := []byte(prev)
	for i := len(b) - 1; i >= 0; i-- {
		pos := strings.IndexByte(ctv3Alphabet, b[i])
		if pos < len(ctv3Alphabet)-1 {
			b[i] = ctv3Alphabet[pos+1]
			return string(b), nil
		}
		b[i] = ctv3Alphabet[0]
	}
	return "", dErrors.New(dErrors.CodeResourceExhausted, "CTV3ID space exhausted")
}
