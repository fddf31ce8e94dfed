package scheme

import (
	"fmt"
	"strconv"

	dErrors "cis/pkg/domain-errors"
)

const snomedHexDigits = 5

// SNOMEDID generates legacy SNOMED RT identifiers of the form L-HHHHH: an
// upper-case axis letter, a dash and five upper-case hexadecimal digits. The
// hex part counts up within an axis and rolls over into the next letter.
type SNOMEDID struct{}

func (SNOMEDID) Name() string { return "SNOMEDID" }

func (SNOMEDID) Valid(id string) bool {
	if len(id) != 2+snomedHexDigits {
		return false
	}
	if id[0] < 'A' || id[0] > 'Z' || id[1] != '-' {
		return false
	}
	for i := 2; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

func (g SNOMEDID) Sequence(id string) (int64, bool) {
	if !g.Valid(id) {
		return 0, false
	}
	n, err := strconv.ParseInt(id[2:], 16, 64)
	if err != nil {
		return 0, false
	}
	return int64(id[0]-'A')<<(4*snomedHexDigits) | n, true
}

func (SNOMEDID) CheckDigit(string) (int, bool) { return 0, false }

func (g SNOMEDID) Next(prev string) (string, error) {
	if prev == "" {
		return format('A', 0), nil
	}
	if !g.Valid(prev) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid SNOMEDID: "+prev)
	}
	n, _ := strconv.ParseInt(prev[2:], 16, 64)
	letter := prev[0]
	n++
	if n >= 1<<(4*snomedHexDigits) {
		if letter == 'Z' {
			return "", dErrors.New(dErrors.CodeResourceExhausted, "SNOMEDID space exhausted")
		}
		letter++
		n = 0
	}
	return format(letter, n), nil
}

func format(letter byte, n int64) string {
	return fmt.Sprintf("%c-%0*X", letter, snomedHexDigits, n)
}
