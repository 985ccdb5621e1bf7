// Package chain holds the read-only staking contract client and the wallet
// signature check.
package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// hasEligibleNFT(address) view returns (bool) is the only contract surface
// this service consumes.
const stakingABIJSON = `[{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"hasEligibleNFT","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"}]`

// StakingClient answers whether a wallet holds an NFT staked past the
// configured minimum duration.
type StakingClient interface {
	HasEligibleNFT(ctx context.Context, wallet string) (bool, error)
}

// Client is an eth RPC backed StakingClient
type Client struct {
	eth      *ethclient.Client
	contract common.Address
	abi      abi.ABI
}

// NewClient dials the RPC endpoint and prepares the staking contract binding
func NewClient(rpcURL, contractAddress string) (*Client, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc endpoint: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(stakingABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse staking abi: %w", err)
	}

	return &Client{
		eth:      eth,
		contract: common.HexToAddress(contractAddress),
		abi:      parsed,
	}, nil
}

// HasEligibleNFT performs the read-only hasEligibleNFT call against the
// staking contract at the latest block.
func (c *Client) HasEligibleNFT(ctx context.Context, wallet string) (bool, error) {
	data, err := c.abi.Pack("hasEligibleNFT", common.HexToAddress(wallet))
	if err != nil {
		return false, fmt.Errorf("failed to pack hasEligibleNFT call: %w", err)
	}

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return false, fmt.Errorf("hasEligibleNFT call failed: %w", err)
	}

	results, err := c.abi.Unpack("hasEligibleNFT", out)
	if err != nil {
		return false, fmt.Errorf("failed to unpack hasEligibleNFT result: %w", err)
	}

	eligible, ok := results[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected hasEligibleNFT result type %T", results[0])
	}
	return eligible, nil
}

// VerifySignature recovers the EIP-191 personal-sign signer of message and
// compares it case-insensitively to the expected address. Malformed
// signatures verify false.
func VerifySignature(message, signature, expectedAddress string) bool {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != 65 {
		return false
	}

	// wallets return v as 27/28, SigToPub wants 0/1
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return false
	}

	recovered := crypto.PubkeyToAddress(*pub)
	return strings.EqualFold(recovered.Hex(), expectedAddress)
}
