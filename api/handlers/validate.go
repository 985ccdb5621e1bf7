package handlers

import (
	"regexp"
	"strings"
)

// Wire formats are part of the external contract; changing them is a
// breaking change.
var (
	emailRegex      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	walletRegex     = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	inviteCodeRegex = regexp.MustCompile(`^MOCA-[A-Z2-9]{8}$`)
)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

func isValidWallet(wallet string) bool {
	return walletRegex.MatchString(wallet)
}

func isValidInviteCode(code string) bool {
	return inviteCodeRegex.MatchString(code)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
