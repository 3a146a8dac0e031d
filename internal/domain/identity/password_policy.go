package identity

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/scg/portal/internal/domain/shared"
)

// DefaultSpecialCharacters is the set a password must draw at least one character from
const DefaultSpecialCharacters = "~!@#$%^&*()_+{}\":;'[]"

// PasswordPolicy holds the rules every new password must satisfy
type PasswordPolicy struct {
	MinLength         int
	HistorySize       int
	SpecialCharacters string
	MaxSimilarity     float64
	CommonPasswords   map[string]struct{}
}

// DefaultPasswordPolicy returns the production policy
func DefaultPasswordPolicy() *PasswordPolicy {
	return &PasswordPolicy{
		MinLength:         16,
		HistorySize:       5,
		SpecialCharacters: DefaultSpecialCharacters,
		MaxSimilarity:     0.7,
		CommonPasswords:   defaultCommonPasswords(),
	}
}

// PasswordPolicyError lists every rule a password broke
type PasswordPolicyError struct {
	Violations []string
}

func (e *PasswordPolicyError) Error() string {
	return strings.Join(e.Violations, " ")
}

// Is lets callers match the error with shared.ErrInvalidInput
func (e *PasswordPolicyError) Is(target error) bool {
	return target == shared.ErrInvalidInput
}

// Validate checks the password against the policy.
// user may be nil; when set its e-mail and password history are checked too.
func (p *PasswordPolicy) Validate(password string, user *User) error {
	var violations []string
	if utf8.RuneCountInString(password) < p.MinLength {
		violations = append(violations, fmt.Sprintf("This password is too short. It must contain at least %d characters.", p.MinLength))
	}
	if isNumeric(password) {
		violations = append(violations, "This password is entirely numeric.")
	}
	if _, ok := p.CommonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		violations = append(violations, "This password is too common.")
	}
	violations = append(violations, p.characterViolations(password)...)
	if user != nil {
		if p.tooSimilar(password, user.Email) {
			violations = append(violations, "The password is too similar to the email address.")
		}
		if p.HistorySize > 0 && user.UsedPassword(password, p.HistorySize) {
			violations = append(violations, fmt.Sprintf("You can not use a password that was already used in this application. Last %d passwords are not allowed.", p.HistorySize))
		}
	}
	if len(violations) > 0 {
		return &PasswordPolicyError{Violations: violations}
	}
	return nil
}

// Help describes the policy to end users
func (p *PasswordPolicy) Help() []string {
	return []string{
		fmt.Sprintf("Your password must contain at least %d characters.", p.MinLength),
		"Your password must contain at least 1 digit, 1 letter, 1 lower case letter and 1 upper case letter.",
		fmt.Sprintf("Your password must contain at least 1 special character from: %s", p.SpecialCharacters),
		"Your password can't be entirely numeric, a commonly used password or too similar to your email.",
		fmt.Sprintf("Your password can't be one of your last %d passwords.", p.HistorySize),
	}
}

func (p *PasswordPolicy) characterViolations(password string) []string {
	var digit, alpha, lower, upper, special bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLetter(r):
			alpha = true
			lower = lower || unicode.IsLower(r)
			upper = upper || unicode.IsUpper(r)
		}
		if strings.ContainsRune(p.SpecialCharacters, r) {
			special = true
		}
	}
	var out []string
	if !digit {
		out = append(out, "This password must contain at least 1 digit.")
	}
	if !alpha {
		out = append(out, "This password must contain at least 1 letter.")
	}
	if !lower {
		out = append(out, "This password must contain at least 1 lower case letter.")
	}
	if !upper {
		out = append(out, "This password must contain at least 1 upper case letter.")
	}
	if !special {
		out = append(out, fmt.Sprintf("This password must contain at least 1 special character from: %s", p.SpecialCharacters))
	}
	return out
}

var nonWord = regexp.MustCompile(`\W+`)

// tooSimilar compares the password with the whole e-mail and each of its word parts
func (p *PasswordPolicy) tooSimilar(password, email string) bool {
	if email == "" || p.MaxSimilarity <= 0 {
		return false
	}
	pw := strings.ToLower(password)
	parts := append([]string{strings.ToLower(email)}, nonWord.Split(strings.ToLower(email), -1)...)
	for _, part := range parts {
		if part == "" {
			continue
		}
		if similarity(pw, part) >= p.MaxSimilarity {
			return true
		}
	}
	return false
}

// similarity is the Ratcliff/Obershelp ratio 2*M/T of two strings
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingRunes(ra, rb)) / float64(total)
}

func matchingRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestCommon(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingRunes(a[:ai], b[:bi]) + matchingRunes(a[ai+size:], b[bi+size:])
}

func longestCommon(a, b []rune) (int, int, int) {
	bestA, bestB, best := 0, 0, 0
	prev := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		cur := make([]int, len(b)+1)
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
					bestA, bestB = i-best, j-best
				}
			}
		}
		prev = cur
	}
	return bestA, bestB, best
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func defaultCommonPasswords() map[string]struct{} {
	list := []string{
		"123456", "password", "12345678", "qwerty", "123456789", "12345", "1234", "111111",
		"1234567", "dragon", "123123", "baseball", "abc123", "football", "monkey", "letmein",
		"696969", "shadow", "master", "666666", "qwertyuiop", "123321", "mustang", "1234567890",
		"michael", "654321", "superman", "1qaz2wsx", "7777777", "121212", "000000", "qazwsx",
		"123qwe", "killer", "trustno1", "jordan", "jennifer", "zxcvbnm", "asdfgh", "hunter",
		"buster", "soccer", "harley", "batman", "andrew", "tigger", "sunshine", "iloveyou",
		"2000", "charlie", "robert", "thomas", "hockey", "ranger", "daniel", "starwars",
		"passw0rd", "password1", "password123", "p@ssw0rd", "welcome", "welcome1", "admin",
		"administrator", "changeme", "letmein123", "qwerty123", "iloveyou123", "princess",
		"p@ssw0rd123456789", "password1234567890", "qwertyuiopasdfgh", "1q2w3e4r5t6y7u8i",
	}
	m := make(map[string]struct{}, len(list))
	for _, p := range list {
		m[p] = struct{}{}
	}
	return m
}
