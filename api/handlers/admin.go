package handlers

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mocagate/gating-api/api"
	"github.com/mocagate/gating-api/config"
	"github.com/mocagate/gating-api/databases"
	"github.com/mocagate/gating-api/models"
)

const (
	// codeAlphabet excludes visually ambiguous characters (0, O, I, 1, L)
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codePrefix   = "MOCA-"
	codeLength   = 8

	maxGenerateAttempts = 10
	defaultListLimit    = 50
)

var errCodeGenerationExhausted = errors.New("failed to generate a unique invite code")

// Admin represents the admin handler
type Admin struct {
	ICDB databases.InviteCodeDatabase
	RDB  databases.RegistrationDatabase
}

// generateCode draws codeLength characters from the code alphabet. The
// 32-character alphabet divides 256 evenly, so a byte modulo is unbiased.
func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, codeLength)
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return codePrefix + string(code), nil
}

// generateUniqueCode retries generation on collision up to
// maxGenerateAttempts before giving up.
func (h Admin) generateUniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return "", err
		}

		_, err = h.ICDB.FindOne(ctx, bson.M{"code": code})
		if errors.Is(err, mongo.ErrNoDocuments) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		// collision, try again
	}
	return "", errCodeGenerationExhausted
}

// GenerateCodeHandler answers POST /api/admin/generate-code
func (h Admin) GenerateCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		config.ErrorStatus("Validation failed", "Invalid request body", http.StatusBadRequest, w, err)
		return
	}
	if req.MaxUses < 0 {
		config.ErrorStatus("Validation failed", "maxUses must be positive", http.StatusBadRequest, w, nil)
		return
	}
	if req.MaxUses == 0 {
		req.MaxUses = 1
	}
	if req.ReferrerEmail != "" && !isValidEmail(req.ReferrerEmail) {
		config.ErrorStatus("Validation failed", "Invalid referrer email", http.StatusBadRequest, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	code, err := h.generateUniqueCode(ctx)
	if err != nil {
		config.InternalError(w, err)
		return
	}

	inviteCode := models.InviteCode{
		Code:          code,
		ReferrerEmail: normalizeEmail(req.ReferrerEmail),
		MaxUses:       req.MaxUses,
		CurrentUses:   0,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := h.ICDB.InsertOne(ctx, inviteCode); err != nil {
		config.InternalError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.GenerateCodeResponse{
		Success:       true,
		Code:          inviteCode.Code,
		MaxUses:       inviteCode.MaxUses,
		ReferrerEmail: inviteCode.ReferrerEmail,
	})
}

// activeCodeFilter matches codes that are both switched on and not exhausted
func activeCodeFilter() bson.M {
	return bson.M{
		"isActive": true,
		"$expr":    bson.M{"$lt": bson.A{"$currentUses", "$maxUses"}},
	}
}

// StatsHandler answers GET /api/admin/stats
func (h Admin) StatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var stats models.StatsResponse
	var err error

	if stats.InviteCodes.Total, err = h.ICDB.CountDocuments(ctx, bson.M{}); err != nil {
		config.InternalError(w, err)
		return
	}
	if stats.InviteCodes.Active, err = h.ICDB.CountDocuments(ctx, activeCodeFilter()); err != nil {
		config.InternalError(w, err)
		return
	}
	if stats.Registrations.Total, err = h.RDB.CountDocuments(ctx, bson.M{}); err != nil {
		config.InternalError(w, err)
		return
	}
	if stats.Registrations.NFT, err = h.RDB.CountDocuments(ctx, bson.M{"registrationType": models.RegistrationTypeNFT}); err != nil {
		config.InternalError(w, err)
		return
	}
	if stats.Registrations.Invite, err = h.RDB.CountDocuments(ctx, bson.M{"registrationType": models.RegistrationTypeInvite}); err != nil {
		config.InternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// InviteCodesHandler answers GET /api/admin/invite-codes with limit/offset
// pagination and an optional status filter (active, inactive, all).
func (h Admin) InviteCodesHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultListLimit
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := bson.M{}
	switch r.URL.Query().Get("status") {
	case "active":
		filter = activeCodeFilter()
	case "inactive":
		filter = bson.M{"$or": bson.A{
			bson.M{"isActive": false},
			bson.M{"$expr": bson.M{"$gte": bson.A{"$currentUses", "$maxUses"}}},
		}}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := databases.PaginatedOpts(limit, offset).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	codes, err := h.ICDB.Find(ctx, filter, opts)
	if err != nil {
		config.InternalError(w, err)
		return
	}

	total, err := h.ICDB.CountDocuments(ctx, filter)
	if err != nil {
		config.InternalError(w, err)
		return
	}

	items := make([]models.InviteCodeListItem, 0, len(codes))
	for i := range codes {
		c := &codes[i]
		items = append(items, models.InviteCodeListItem{
			Code:          c.Code,
			ReferrerEmail: c.ReferrerEmail,
			MaxUses:       c.MaxUses,
			CurrentUses:   c.CurrentUses,
			IsActive:      c.IsActive,
			CreatedAt:     c.CreatedAt,
			Status:        c.Status(),
		})
	}

	writeJSON(w, http.StatusOK, models.InviteCodeListResponse{
		Success: true,
		Data:    items,
		Pagination: models.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+limit) < total,
		},
	})
}
