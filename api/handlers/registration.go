package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/mocagate/gating-api/api"
	"github.com/mocagate/gating-api/config"
	"github.com/mocagate/gating-api/databases"
	"github.com/mocagate/gating-api/models"
)

// Registration exported for testing purposes
type Registration struct {
	DB   databases.RegistrationDatabase
	ICDB databases.InviteCodeDatabase
}

// CheckEmailHandler answers GET /api/check-email?email=
func (h Registration) CheckEmailHandler(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		config.ErrorStatus("Missing email parameter", "", http.StatusBadRequest, w, nil)
		return
	}
	if !isValidEmail(email) {
		config.ErrorStatus("Invalid email format", "", http.StatusBadRequest, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	used, err := registrationExists(ctx, h.DB, bson.M{"email": normalizeEmail(email)})
	if err != nil {
		config.InternalError(w, err)
		return
	}
	writeUsedResponse(w, used)
}

// CheckWalletHandler answers GET /api/check-wallet?wallet=
func (h Registration) CheckWalletHandler(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		config.ErrorStatus("Missing wallet parameter", "", http.StatusBadRequest, w, nil)
		return
	}
	if !isValidWallet(wallet) {
		config.ErrorStatus("Invalid wallet format", "", http.StatusBadRequest, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	used, err := registrationExists(ctx, h.DB, bson.M{"walletAddress": strings.ToLower(wallet)})
	if err != nil {
		config.InternalError(w, err)
		return
	}
	writeUsedResponse(w, used)
}

// VIPStatusHandler answers GET /api/vip-status?wallet=
func (h Registration) VIPStatusHandler(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		config.ErrorStatus("Wallet address is required", "", http.StatusBadRequest, w, nil)
		return
	}
	if !isValidWallet(wallet) {
		config.ErrorStatus("Invalid wallet format", "", http.StatusBadRequest, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	registration, err := h.DB.FindOne(ctx, bson.M{"walletAddress": strings.ToLower(wallet)})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeJSON(w, http.StatusOK, models.VIPStatusResponse{
				IsVip:   false,
				Message: "Wallet not registered",
			})
			return
		}
		config.InternalError(w, err)
		return
	}

	vip := models.VIPRegistration{
		Email:        registration.Email,
		Type:         registration.RegistrationType,
		RegisteredAt: registration.RegisteredAt,
	}
	if registration.InviteCodeID != nil {
		inviteCode, err := h.ICDB.FindOne(ctx, bson.M{"_id": *registration.InviteCodeID})
		if err != nil {
			// status answer stands without the referring code
			zap.S().Warnw("failed to resolve invite code for vip status",
				"codeId", registration.InviteCodeID.Hex(), "error", err)
		} else {
			vip.InviteCode = inviteCode.Code
		}
	}

	writeJSON(w, http.StatusOK, models.VIPStatusResponse{
		IsVip:        true,
		Registration: &vip,
	})
}

func registrationExists(ctx context.Context, db databases.RegistrationDatabase, filter bson.M) (bool, error) {
	_, err := db.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func writeUsedResponse(w http.ResponseWriter, used bool) {
	writeJSON(w, http.StatusOK, models.UsedResponse{Used: used})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("Failed to marshal response", "", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
