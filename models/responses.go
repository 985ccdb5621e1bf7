package models

import "time"

// HealthCheckResponse returns the health check response, duh
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// VerifyCodeResponse is the body returned by the verify-code endpoint and
// reused by the reserve flow to decide whether a code can be consumed.
type VerifyCodeResponse struct {
	Valid    bool   `json:"valid"`
	Message  string `json:"message,omitempty"`
	UsesLeft int    `json:"usesLeft,omitempty"`
	CodeID   string `json:"codeId,omitempty"`
}

// UsedResponse answers the check-email and check-wallet endpoints
type UsedResponse struct {
	Used bool `json:"used"`
}

// ReserveRequest is the reserve endpoint request body
type ReserveRequest struct {
	Email            string `json:"email"`
	Wallet           string `json:"wallet,omitempty"`
	InviteCode       string `json:"inviteCode,omitempty"`
	Signature        string `json:"signature,omitempty"`
	RegistrationType string `json:"registrationType"`
}

// ReserveResponse is the reserve endpoint success body
type ReserveResponse struct {
	Success      bool               `json:"success"`
	Message      string             `json:"message"`
	Registration RegistrationPublic `json:"registration"`
}

// GenerateCodeRequest is the admin generate-code request body
type GenerateCodeRequest struct {
	ReferrerEmail string `json:"referrerEmail,omitempty"`
	MaxUses       int    `json:"maxUses,omitempty"`
}

// GenerateCodeResponse is the admin generate-code success body
type GenerateCodeResponse struct {
	Success       bool   `json:"success"`
	Code          string `json:"code"`
	MaxUses       int    `json:"maxUses"`
	ReferrerEmail string `json:"referrerEmail,omitempty"`
}

// StatsResponse aggregates system counters for the admin dashboard
type StatsResponse struct {
	InviteCodes   InviteCodeStats   `json:"inviteCodes"`
	Registrations RegistrationStats `json:"registrations"`
}

// InviteCodeStats holds the invite code counters
type InviteCodeStats struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

// RegistrationStats holds the registration counters
type RegistrationStats struct {
	Total  int64 `json:"total"`
	NFT    int64 `json:"nft"`
	Invite int64 `json:"invite"`
}

// InviteCodeListItem is one row of the admin invite-codes listing
type InviteCodeListItem struct {
	Code          string    `json:"code"`
	ReferrerEmail string    `json:"referrerEmail,omitempty"`
	MaxUses       int       `json:"maxUses"`
	CurrentUses   int       `json:"currentUses"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	Status        string    `json:"status"`
}

// InviteCodeListResponse is the paginated admin invite-codes body
type InviteCodeListResponse struct {
	Success    bool                 `json:"success"`
	Data       []InviteCodeListItem `json:"data"`
	Pagination Pagination           `json:"pagination"`
}

// Pagination describes a limit/offset page of results
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// VIPStatusResponse is the vip-status endpoint body
type VIPStatusResponse struct {
	IsVip        bool             `json:"isVip"`
	Message      string           `json:"message,omitempty"`
	Registration *VIPRegistration `json:"registration,omitempty"`
}

// VIPRegistration holds the registration details shown on the VIP dashboard
type VIPRegistration struct {
	Email        string    `json:"email"`
	Type         string    `json:"type"`
	RegisteredAt time.Time `json:"registeredAt"`
	InviteCode   string    `json:"inviteCode,omitempty"`
}
