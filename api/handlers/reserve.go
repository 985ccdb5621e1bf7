package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/mocagate/gating-api/api"
	"github.com/mocagate/gating-api/config"
	"github.com/mocagate/gating-api/databases"
	"github.com/mocagate/gating-api/models"
)

// Limiter is the rate-limit surface the reserve flow needs
type Limiter interface {
	Limited(email string) bool
	Increment(email string)
}

// EligibilityChecker answers whether a wallet qualifies on the NFT path
type EligibilityChecker interface {
	CheckEligibility(ctx context.Context, wallet string) (bool, error)
}

// ConfirmationMailer sends the post-registration confirmation email
type ConfirmationMailer interface {
	SendConfirmation(email string)
}

// Reserve exported for testing purposes
type Reserve struct {
	RDB             databases.RegistrationDatabase
	ICDB            databases.InviteCodeDatabase
	Limiter         Limiter
	Eligibility     EligibilityChecker
	VerifySignature func(message, signature, address string) bool
	Mailer          ConfirmationMailer

	// MinStake is the staking duration the contract enforces, surfaced in
	// the not-eligible message. Zero falls back to the 7 day default.
	MinStake time.Duration
}

func (h Reserve) notEligibleMessage() string {
	days := int(h.MinStake.Hours() / 24)
	if days <= 0 {
		days = 7
	}
	return fmt.Sprintf("No eligible NFT found. NFT must be staked for at least %d days.", days)
}

// signatureChallenge is the fixed message an NFT registrant must sign,
// binding the email to the signing wallet.
func signatureChallenge(email string) string {
	return fmt.Sprintf("Register VIP access for %s", email)
}

// ReserveHandler converts a verified credential into a registration:
// rate limit, uniqueness, credential branch, persist, consume, count.
func (h Reserve) ReserveHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("Validation failed", "Invalid request body", http.StatusBadRequest, w, err)
		return
	}

	if !isValidEmail(req.Email) {
		config.ErrorStatus("Validation failed", "Invalid email format", http.StatusBadRequest, w, nil)
		return
	}
	if req.RegistrationType != models.RegistrationTypeNFT && req.RegistrationType != models.RegistrationTypeInvite {
		config.ErrorStatus("Validation failed", "registrationType must be nft or invite", http.StatusBadRequest, w, nil)
		return
	}
	if req.Wallet != "" && !isValidWallet(req.Wallet) {
		config.ErrorStatus("Validation failed", "Invalid Ethereum address", http.StatusBadRequest, w, nil)
		return
	}
	if req.InviteCode != "" && !isValidInviteCode(req.InviteCode) {
		config.ErrorStatus("Validation failed", "Invalid invite code format", http.StatusBadRequest, w, nil)
		return
	}

	email := normalizeEmail(req.Email)
	wallet := strings.ToLower(req.Wallet)

	if h.Limiter.Limited(email) {
		config.ErrorStatus("Rate limit exceeded", "Too many requests. Please try again later.", http.StatusTooManyRequests, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	used, err := registrationExists(ctx, h.RDB, bson.M{"email": email})
	if err != nil {
		config.InternalError(w, err)
		return
	}
	if used {
		config.ErrorStatus("Email already registered", "This email has already been used", http.StatusBadRequest, w, nil)
		return
	}

	if wallet != "" {
		used, err = registrationExists(ctx, h.RDB, bson.M{"walletAddress": wallet})
		if err != nil {
			config.InternalError(w, err)
			return
		}
		if used {
			config.ErrorStatus("Wallet already registered", "This wallet has already been used", http.StatusBadRequest, w, nil)
			return
		}
	}

	var inviteCodeID *primitive.ObjectID

	switch req.RegistrationType {
	case models.RegistrationTypeNFT:
		if wallet == "" {
			config.ErrorStatus("Missing required fields", "Wallet address is required for NFT registration", http.StatusBadRequest, w, nil)
			return
		}
		if req.Signature == "" {
			config.ErrorStatus("Missing signature", "A wallet signature is required for NFT registration", http.StatusBadRequest, w, nil)
			return
		}
		if !h.VerifySignature(signatureChallenge(email), req.Signature, req.Wallet) {
			config.ErrorStatus("Invalid signature", "Signature does not match the supplied wallet", http.StatusBadRequest, w, nil)
			return
		}

		eligible, err := h.Eligibility.CheckEligibility(ctx, wallet)
		if err != nil {
			config.InternalError(w, err)
			return
		}
		if !eligible {
			config.ErrorStatus("Not eligible", h.notEligibleMessage(), http.StatusForbidden, w, nil)
			return
		}

	case models.RegistrationTypeInvite:
		if req.InviteCode == "" {
			config.ErrorStatus("Missing invite code", "Invite code is required for invite registration", http.StatusBadRequest, w, nil)
			return
		}

		verification, err := verifyInviteCode(ctx, h.ICDB, req.InviteCode)
		if err != nil {
			config.InternalError(w, err)
			return
		}
		if !verification.Valid {
			config.ErrorStatus("Invalid invite code", verification.Message, http.StatusBadRequest, w, nil)
			return
		}

		codeID, err := primitive.ObjectIDFromHex(verification.CodeID)
		if err != nil {
			config.InternalError(w, err)
			return
		}
		inviteCodeID = &codeID
	}

	registration := models.Registration{
		Email:            email,
		WalletAddress:    wallet,
		InviteCodeID:     inviteCodeID,
		RegistrationType: req.RegistrationType,
		RegisteredAt:     time.Now().UTC(),
	}

	if _, err := h.RDB.InsertOne(ctx, registration); err != nil {
		// a concurrent duplicate lost the race against the unique index
		if mongo.IsDuplicateKeyError(err) {
			config.ErrorStatus("Already registered", "This email or wallet has already been used", http.StatusBadRequest, w, err)
			return
		}
		config.InternalError(w, err)
		return
	}

	// The insert and the usage increment are two independent writes. The
	// conditional consume keeps currentUses bounded by maxUses; a miss here
	// means a concurrent reservation took the last use after our Verify.
	if inviteCodeID != nil {
		consumed, err := h.ICDB.ConsumeUse(ctx, *inviteCodeID)
		if err != nil {
			zap.S().Errorw("failed to increment invite code usage",
				"codeId", inviteCodeID.Hex(), "error", err)
		} else if !consumed {
			zap.S().Warnw("invite code had no uses left at consume time",
				"codeId", inviteCodeID.Hex())
		}
	}

	h.Limiter.Increment(email)

	if h.Mailer != nil {
		go h.Mailer.SendConfirmation(email)
	}

	writeJSON(w, http.StatusCreated, models.ReserveResponse{
		Success:      true,
		Message:      "Registration successful",
		Registration: registration.Public(),
	})
}
