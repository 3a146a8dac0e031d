package identity

import (
	"github.com/scg/portal/internal/domain/identity"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/infrastructure/config"
)

// ErrPasswordMismatch is returned when the two new password fields differ
var ErrPasswordMismatch = shared.NewDomainError("PASSWORD_MISMATCH", "The two password fields didn't match.")

// PasswordPolicyFromConfig builds the password policy with configured overrides
func PasswordPolicyFromConfig(cfg config.SecurityConfig) *identity.PasswordPolicy {
	policy := identity.DefaultPasswordPolicy()
	if cfg.PasswordMinLength > 0 {
		policy.MinLength = cfg.PasswordMinLength
	}
	if cfg.PasswordHistory > 0 {
		policy.HistorySize = cfg.PasswordHistory
	}
	if cfg.PasswordMaxSimilarity > 0 {
		policy.MaxSimilarity = cfg.PasswordMaxSimilarity
	}
	return policy
}

func checkPasswordPair(p1, p2 string) error {
	if p1 != p2 {
		return ErrPasswordMismatch
	}
	return nil
}
