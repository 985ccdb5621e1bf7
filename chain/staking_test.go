package chain_test

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/mocagate/gating-api/chain"
)

func signedChallenge(t *testing.T, message string) (signature, address string) {
	t.Helper()

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		t.Fatal(err)
	}
	return hexutil.Encode(sig), crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func TestVerifySignature(t *testing.T) {
	message := "Register VIP access for someone@example.com"
	sig, addr := signedChallenge(t, message)

	if !chain.VerifySignature(message, sig, addr) {
		t.Error("expected valid signature to verify")
	}
}

func TestVerifySignatureCaseInsensitiveAddress(t *testing.T) {
	message := "Register VIP access for someone@example.com"
	sig, addr := signedChallenge(t, message)

	if !chain.VerifySignature(message, sig, "0x"+strings.ToLower(addr[2:])) {
		t.Error("expected lowercase address to verify")
	}
}

func TestVerifySignatureLegacyRecoveryID(t *testing.T) {
	message := "Register VIP access for someone@example.com"
	sig, addr := signedChallenge(t, message)

	// wallets commonly return v as 27/28 rather than 0/1
	raw, err := hexutil.Decode(sig)
	if err != nil {
		t.Fatal(err)
	}
	raw[64] += 27
	if !chain.VerifySignature(message, hexutil.Encode(raw), addr) {
		t.Error("expected 27/28 recovery id to verify")
	}
}

func TestVerifySignatureWrongAddress(t *testing.T) {
	message := "Register VIP access for someone@example.com"
	sig, _ := signedChallenge(t, message)

	if chain.VerifySignature(message, sig, "0x1111111111111111111111111111111111111111") {
		t.Error("expected mismatched address to fail")
	}
}

func TestVerifySignatureWrongMessage(t *testing.T) {
	sig, addr := signedChallenge(t, "Register VIP access for someone@example.com")

	if chain.VerifySignature("Register VIP access for other@example.com", sig, addr) {
		t.Error("expected signature over a different message to fail")
	}
}

func TestVerifySignatureMalformed(t *testing.T) {
	cases := []string{
		"",
		"not-hex",
		"0x1234",
		"0x" + strings.Repeat("00", 64),
		"0x" + strings.Repeat("00", 66),
	}
	for _, sig := range cases {
		if chain.VerifySignature("message", sig, "0x1111111111111111111111111111111111111111") {
			t.Errorf("expected malformed signature %q to fail", sig)
		}
	}
}

