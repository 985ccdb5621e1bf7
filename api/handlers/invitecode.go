package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mocagate/gating-api/api"
	"github.com/mocagate/gating-api/config"
	"github.com/mocagate/gating-api/databases"
	"github.com/mocagate/gating-api/models"
)

// InviteCode exported for testing purposes
type InviteCode struct {
	DB databases.InviteCodeDatabase
}

// VerifyCodeHandler answers GET /api/verify-code?code=MOCA-XXXXXXXX. A
// malformed code is a normal invalid-code answer, not an error response.
func (i InviteCode) VerifyCodeHandler(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		config.ErrorStatus("Missing code parameter", "", http.StatusBadRequest, w, nil)
		return
	}
	if !isValidInviteCode(code) {
		writeVerifyResponse(w, models.VerifyCodeResponse{Valid: false, Message: "Invalid code format"})
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	result, err := verifyInviteCode(ctx, i.DB, code)
	if err != nil {
		config.InternalError(w, err)
		return
	}
	writeVerifyResponse(w, result)
}

// verifyInviteCode is the shared verify decision, a pure read. It does not
// reserve a use; the reserve flow consumes one atomically afterwards.
// Decision order: not found, inactive, exhausted, valid.
func verifyInviteCode(ctx context.Context, db databases.InviteCodeDatabase, code string) (models.VerifyCodeResponse, error) {
	inviteCode, err := db.FindOne(ctx, bson.M{"code": code})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.VerifyCodeResponse{Valid: false, Message: "Invite code not found"}, nil
		}
		return models.VerifyCodeResponse{}, err
	}

	if !inviteCode.IsActive {
		return models.VerifyCodeResponse{Valid: false, Message: "Invite code is no longer active"}, nil
	}

	if inviteCode.UsesLeft() <= 0 {
		return models.VerifyCodeResponse{Valid: false, Message: "Invite code has no uses left"}, nil
	}

	return models.VerifyCodeResponse{
		Valid:    true,
		UsesLeft: inviteCode.UsesLeft(),
		CodeID:   inviteCode.ID.Hex(),
	}, nil
}

func writeVerifyResponse(w http.ResponseWriter, result models.VerifyCodeResponse) {
	b, err := json.Marshal(result)
	if err != nil {
		config.ErrorStatus("Failed to marshal response", "", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
