package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mocagate/gating-api/api/handlers"
	"github.com/mocagate/gating-api/databases"
	"github.com/mocagate/gating-api/databases/mocks"
	"github.com/mocagate/gating-api/models"
)

type fakeLimiter struct {
	limited    bool
	increments int
}

func (f *fakeLimiter) Limited(email string) bool { return f.limited }
func (f *fakeLimiter) Increment(email string)    { f.increments++ }

type fakeEligibility struct {
	eligible bool
	err      error
	calls    int
}

func (f *fakeEligibility) CheckEligibility(ctx context.Context, wallet string) (bool, error) {
	f.calls++
	return f.eligible, f.err
}

// reserveFixture wires a Reserve handler over mocked collections. The
// registrations collection reports no existing documents; the invite code
// collection serves a valid single-use code and accepts the consume update.
func reserveFixture(t *testing.T) (handlers.Reserve, *fakeLimiter, *fakeEligibility, *mocks.CollectionHelper, primitive.ObjectID) {
	t.Helper()

	db := &mocks.DatabaseHelper{}
	regConn := &mocks.CollectionHelper{}
	icConn := &mocks.CollectionHelper{}
	db.On("Collection", "registrations").Return(regConn)
	db.On("Collection", "inviteCodes").Return(icConn)

	noDoc := &mocks.SingleResultHelper{}
	noDoc.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	regConn.On("FindOne", mock.Anything, mock.Anything).Return(noDoc)
	regConn.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)

	codeID := primitive.NewObjectID()
	codeResult := &mocks.SingleResultHelper{}
	codeResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.InviteCode)
		(*arg).ID = codeID
		(*arg).Code = "MOCA-ABCDEFGH"
		(*arg).MaxUses = 1
		(*arg).CurrentUses = 0
		(*arg).IsActive = true
	})
	icConn.On("FindOne", mock.Anything, mock.Anything).Return(codeResult)

	updateResult := &mocks.UpdateResultHelper{}
	updateResult.On("ModifiedCount").Return(int64(1))
	icConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResult, nil)

	limiter := &fakeLimiter{}
	eligibility := &fakeEligibility{eligible: true}

	h := handlers.Reserve{
		RDB:             databases.NewRegistrationDatabase(db),
		ICDB:            databases.NewInviteCodeDatabase(db),
		Limiter:         limiter,
		Eligibility:     eligibility,
		VerifySignature: func(message, signature, address string) bool { return true },
	}
	return h, limiter, eligibility, regConn, codeID
}

func postReserve(t *testing.T, h handlers.Reserve, body models.ReserveRequest) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest("POST", "/api/reserve", bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.ReserveHandler).ServeHTTP(rr, req)
	return rr
}

func TestReserve_InviteSuccess(t *testing.T) {
	h, limiter, _, _, _ := reserveFixture(t)

	rr := postReserve(t, h, models.ReserveRequest{
		Email:            "Someone@Example.COM",
		InviteCode:       "MOCA-ABCDEFGH",
		RegistrationType: models.RegistrationTypeInvite,
	})

	if status := rr.Code; status != http.StatusCreated {
		t.Fatalf("handler returned wrong status code: got %v want %v, body %v", status, http.StatusCreated, rr.Body.String())
	}

	var resp models.ReserveResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Registration.Email != "someone@example.com" {
		t.Errorf("email not normalized: got %v", resp.Registration.Email)
	}
	if resp.Registration.Type != models.RegistrationTypeInvite {
		t.Errorf("unexpected type: got %v", resp.Registration.Type)
	}
	if limiter.increments != 1 {
		t.Errorf("expected one rate-limit increment, got %v", limiter.increments)
	}
}

func TestReserve_NFTSuccess(t *testing.T) {
	h, limiter, eligibility, regConn, _ := reserveFixture(t)

	rr := postReserve(t, h, models.ReserveRequest{
		Email:            "vip@example.com",
		Wallet:           "0x1111111111111111111111111111111111111111",
		Signature:        "0xsigned",
		RegistrationType: models.RegistrationTypeNFT,
	})

	if status := rr.Code; status != http.StatusCreated {
		t.Fatalf("handler returned wrong status code: got %v want %v, body %v", status, http.StatusCreated, rr.Body.String())
	}
	if eligibility.calls != 1 {
		t.Errorf("expected one eligibility check, got %v", eligibility.calls)
	}
	if limiter.increments != 1 {
		t.Errorf("expected one rate-limit increment, got %v", limiter.increments)
	}
	regConn.AssertCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestReserve_RateLimited(t *testing.T) {
	h, limiter, _, regConn, _ := reserveFixture(t)
	limiter.limited = true

	rr := postReserve(t, h, models.ReserveRequest{
		Email:            "busy@example.com",
		InviteCode:       "MOCA-ABCDEFGH",
		RegistrationType: models.RegistrationTypeInvite,
	})

	if status := rr.Code; status != http.StatusTooManyRequests {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusTooManyRequests)
	}
	regConn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
	if limiter.increments != 0 {
		t.Errorf("expected no rate-limit increment, got %v", limiter.increments)
	}
}

func TestReserve_DuplicateEmail(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	regConn := &mocks.CollectionHelper{}
	db.On("Collection", "registrations").Return(regConn)
	db.On("Collection", "inviteCodes").Return(&mocks.CollectionHelper{})

	found := &mocks.SingleResultHelper{}
	found.On("Decode", mock.Anything).Return(nil)
	regConn.On("FindOne", mock.Anything, mock.Anything).Return(found)

	limiter := &fakeLimiter{}
	h := handlers.Reserve{
		RDB:     databases.NewRegistrationDatabase(db),
		ICDB:    databases.NewInviteCodeDatabase(db),
		Limiter: limiter,
	}

	rr := postReserve(t, h, models.ReserveRequest{
		Email:            "taken@example.com",
		InviteCode:       "MOCA-ABCDEFGH",
		RegistrationType: models.RegistrationTypeInvite,
	})

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != "Email already registered" {
		t.Errorf("unexpected error: got %v", resp.Error)
	}
	regConn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
	if limiter.increments != 0 {
		t.Errorf("expected no rate-limit increment, got %v", limiter.increments)
	}
}

func TestReserve_NFTNotEligible(t *testing.T) {
	h, limiter, eligibility, regConn, _ := reserveFixture(t)
	eligibility.eligible = false

	rr := postReserve(t, h, models.ReserveRequest{
		Email:            "vip@example.com",
		Wallet:           "0x1111111111111111111111111111111111111111",
		Signature:        "0xsigned",
		RegistrationType: models.RegistrationTypeNFT,
	})

	if status := rr.Code; status != http.StatusForbidden {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusForbidden)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != "Not eligible" {
		t.Errorf("unexpected error: got %v", resp.Error)
	}
	regConn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
	if limiter.increments != 0 {
		t.Errorf("expected no rate-limit increment, got %v", limiter.increments)
	}
}

func TestReserve_NFTNotEligibleMessageUsesConfiguredMinimum(t *testing.T) {
	h, _, eligibility, _, _ := reserveFixture(t)
	eligibility.eligible = false
	h.MinStake = 14 * 24 * time.Hour

	rr := postReserve(t, h, models.ReserveRequest{
		Email:            "vip@example.com",
		Wallet:           "0x1111111111111111111111111111111111111111",
		Signature:        "0xsigned",
		RegistrationType: models.RegistrationTypeNFT,
	})

	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "No eligible NFT found. NFT must be staked for at least 14 days." {
		t.Errorf("unexpected message: got %v", resp.Message)
	}
}

func TestReserve_NFTNotEligibleMessageDefaultsToSevenDays(t *testing.T) {
	h, _, eligibility, _, _ := reserveFixture(t)
	eligibility.eligible = false

	rr := postReserve(t, h, models.ReserveRequest{
		Email:            "vip@example.com",
		Wallet:           "0x1111111111111111111111111111111111111111",
		Signature:        "0xsigned",
		RegistrationType: models.RegistrationTypeNFT,
	})

	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "No eligible NFT found. NFT must be staked for at least 7 days." {
		t.Errorf("unexpected message: got %v", resp.Message)
	}
}

func TestReserve_NFTMissingWallet(t *testing.T) {
	h, _, eligibility, _, _ := reserveFixture(t)

	rr := postReserve(t, h, models.ReserveRequest{
		Email:            "vip@example.com",
		Signature:        "0xsigned",
		RegistrationType: models.RegistrationTypeNFT,
	})

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	if eligibility.calls != 0 {
		t.Errorf("expected no eligibility check, got %v", eligibility.calls)
	}
}

func TestReserve_NFTMissingSignature(t *testing.T) {
	h, _, _, _, _ := reserveFixture(t)

	rr := postReserve(t, h, models.ReserveRequest{
		Email:            "vip@example.com",
		Wallet:           "0x1111111111111111111111111111111111111111",
		RegistrationType: models.RegistrationTypeNFT,
	})

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != "Missing signature" {
		t.Errorf("unexpected error: got %v", resp.Error)
	}
}

func TestReserve_NFTInvalidSignature(t *testing.T) {
	h, _, eligibility, regConn, _ := reserveFixture(t)
	h.VerifySignature = func(message, signature, address string) bool { return false }

	rr := postReserve(t, h, models.ReserveRequest{
		Email:            "vip@example.com",
		Wallet:           "0x1111111111111111111111111111111111111111",
		Signature:        "0xbadsig",
		RegistrationType: models.RegistrationTypeNFT,
	})

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != "Invalid signature" {
		t.Errorf("unexpected error: got %v", resp.Error)
	}
	if eligibility.calls != 0 {
		t.Errorf("expected no eligibility check, got %v", eligibility.calls)
	}
	regConn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestReserve_InviteMissingCode(t *testing.T) {
	h, _, _, _, _ := reserveFixture(t)

	rr := postReserve(t, h, models.ReserveRequest{
		Email:            "someone@example.com",
		RegistrationType: models.RegistrationTypeInvite,
	})

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != "Missing invite code" {
		t.Errorf("unexpected error: got %v", resp.Error)
	}
}

func TestReserve_InviteCodeExhausted(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	regConn := &mocks.CollectionHelper{}
	icConn := &mocks.CollectionHelper{}
	db.On("Collection", "registrations").Return(regConn)
	db.On("Collection", "inviteCodes").Return(icConn)

	noDoc := &mocks.SingleResultHelper{}
	noDoc.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	regConn.On("FindOne", mock.Anything, mock.Anything).Return(noDoc)

	exhausted := &mocks.SingleResultHelper{}
	exhausted.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.InviteCode)
		(*arg).ID = primitive.NewObjectID()
		(*arg).MaxUses = 2
		(*arg).CurrentUses = 2
		(*arg).IsActive = true
	})
	icConn.On("FindOne", mock.Anything, mock.Anything).Return(exhausted)

	h := handlers.Reserve{
		RDB:     databases.NewRegistrationDatabase(db),
		ICDB:    databases.NewInviteCodeDatabase(db),
		Limiter: &fakeLimiter{},
	}

	rr := postReserve(t, h, models.ReserveRequest{
		Email:            "late@example.com",
		InviteCode:       "MOCA-ABCDEFGH",
		RegistrationType: models.RegistrationTypeInvite,
	})

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "Invite code has no uses left" {
		t.Errorf("unexpected message: got %v", resp.Message)
	}
	regConn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestReserve_InvalidRegistrationType(t *testing.T) {
	h, _, _, _, _ := reserveFixture(t)

	rr := postReserve(t, h, models.ReserveRequest{
		Email:            "someone@example.com",
		RegistrationType: "premium",
	})

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
}

func TestReserve_InvalidEmail(t *testing.T) {
	h, _, _, _, _ := reserveFixture(t)

	rr := postReserve(t, h, models.ReserveRequest{
		Email:            "not-an-email",
		InviteCode:       "MOCA-ABCDEFGH",
		RegistrationType: models.RegistrationTypeInvite,
	})

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
}
