// Package checkpoint grades student replies to curriculum quick checks.
package checkpoint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/socratiz/internal/curriculum"
)

// Answer types accepted in quick_checks[].answer_type.
const (
	TypeInteger  = "integer"
	TypeDecimal  = "decimal"
	TypeFraction = "fraction"
	TypeText     = "text"
)

// CheckAnswer compares the student's input against a quick check answer.
//
// Normalization rules:
//   - Whitespace is trimmed
//   - Comparison is case-insensitive
//   - For fractions: equivalent fractions are accepted ("2/4" matches "1/2")
//   - For decimals: trailing zeros are ignored ("3.50" matches "3.5")
//   - For integers: leading zeros are ignored ("007" matches "7")
//
// An empty answer_type is inferred from the expected answer.
func CheckAnswer(input string, qc curriculum.QuickCheck) bool {
	input = strings.TrimSpace(input)
	expected := strings.TrimSpace(string(qc.Answer))
	if input == "" || expected == "" {
		return false
	}

	answerType := qc.AnswerType
	if answerType == "" {
		answerType = InferType(expected)
	}

	normalizedInput, err := normalize(input, answerType)
	if err != nil {
		return false
	}
	normalizedExpected, err := normalize(expected, answerType)
	if err != nil {
		return false
	}
	return normalizedInput == normalizedExpected
}

// InferType guesses the answer type of an expected answer.
func InferType(answer string) string {
	answer = strings.TrimSpace(answer)
	if _, err := strconv.ParseInt(answer, 10, 64); err == nil {
		return TypeInteger
	}
	if _, err := strconv.ParseFloat(answer, 64); err == nil {
		return TypeDecimal
	}
	if _, _, err := parseFraction(answer); err == nil {
		return TypeFraction
	}
	return TypeText
}

func normalize(answer, answerType string) (string, error) {
	answer = strings.TrimSpace(answer)

	switch answerType {
	case TypeInteger:
		n, err := strconv.ParseInt(answer, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid integer: %w", err)
		}
		return strconv.FormatInt(n, 10), nil

	case TypeDecimal:
		f, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return "", fmt.Errorf("invalid decimal: %w", err)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil

	case TypeFraction:
		num, den, err := parseFraction(answer)
		if err != nil {
			// Whole numbers are valid fraction answers.
			n, ierr := strconv.ParseInt(answer, 10, 64)
			if ierr != nil {
				return "", err
			}
			num, den = n, 1
		}
		if den == 0 {
			return "", fmt.Errorf("zero denominator")
		}
		if den < 0 {
			num = -num
			den = -den
		}
		g := gcd(abs(num), den)
		if g == 0 {
			g = 1
		}
		num /= g
		den /= g
		return fmt.Sprintf("%d/%d", num, den), nil

	default:
		return strings.Join(strings.Fields(strings.ToLower(answer)), " "), nil
	}
}

// parseFraction parses "a/b" into numerator and denominator.
func parseFraction(s string) (int64, int64, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid fraction format: %q", s)
	}
	num, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid numerator: %w", err)
	}
	den, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid denominator: %w", err)
	}
	return num, den, nil
}

// gcd returns the greatest common divisor of a and b.
// Both a and b must be non-negative.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
