package funds

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

// Only the two ERC-20 calls the fee flow needs.
const erc20ABI = `[
	{
		"constant": true,
		"inputs": [
			{"name": "owner", "type": "address"},
			{"name": "spender", "type": "address"}
		],
		"name": "allowance",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "from", "type": "address"},
			{"name": "to", "type": "address"},
			{"name": "value", "type": "uint256"}
		],
		"name": "transferFrom",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

var (
	ErrSpenderMismatch  = errors.New("spender is not the signing account")
	ErrFractionalAmount = errors.New("amount must be a whole number of base units")
	ErrTransferReverted = errors.New("transferFrom reverted")
)

// ERC20Transferer moves funds on an EVM chain by calling transferFrom on an
// ERC-20 contract from the ledger's own account.
type ERC20Transferer struct {
	client         *ethclient.Client
	privateKey     *ecdsa.PrivateKey
	chainID        *big.Int
	contractABI    abi.ABI
	receiptTimeout time.Duration
}

// NewERC20Transferer dials the RPC endpoint and loads the signing key.
func NewERC20Transferer(rpcURL, privateKeyHex string, chainID int64, receiptTimeout time.Duration) (*ERC20Transferer, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	return &ERC20Transferer{
		client:         client,
		privateKey:     privateKey,
		chainID:        big.NewInt(chainID),
		contractABI:    parsedABI,
		receiptTimeout: receiptTimeout,
	}, nil
}

// Spender is the account payers must approve.
func (t *ERC20Transferer) Spender() common.Address {
	return crypto.PubkeyToAddress(t.privateKey.PublicKey)
}

// Allowance implements domain.FundsTransferer
func (t *ERC20Transferer) Allowance(ctx context.Context, asset, owner, spender common.Address) (decimal.Decimal, error) {
	contract := bind.NewBoundContract(asset, t.contractABI, t.client, t.client, t.client)

	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "allowance", owner, spender); err != nil {
		return decimal.Zero, fmt.Errorf("failed to call allowance: %w", err)
	}
	if len(out) != 1 {
		return decimal.Zero, fmt.Errorf("unexpected allowance result length %d", len(out))
	}

	amount := abi.ConvertType(out[0], new(big.Int)).(*big.Int)
	return decimal.NewFromBigInt(amount, 0), nil
}

// TransferFrom implements domain.FundsTransferer. It waits for the receipt so
// that success means the transfer is mined.
func (t *ERC20Transferer) TransferFrom(ctx context.Context, asset, spender, from, to common.Address, amount decimal.Decimal) error {
	if spender != t.Spender() {
		return ErrSpenderMismatch
	}
	if !amount.IsInteger() || amount.IsNegative() {
		return ErrFractionalAmount
	}

	opts, err := bind.NewKeyedTransactorWithChainID(t.privateKey, t.chainID)
	if err != nil {
		return fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx

	contract := bind.NewBoundContract(asset, t.contractABI, t.client, t.client, t.client)
	tx, err := contract.Transact(opts, "transferFrom", from, to, amount.BigInt())
	if err != nil {
		return fmt.Errorf("failed to send transferFrom: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, t.receiptTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, t.client, tx)
	if err != nil {
		return fmt.Errorf("failed to wait for transferFrom %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: %s", ErrTransferReverted, tx.Hash().Hex())
	}
	return nil
}

// Close releases the RPC connection.
func (t *ERC20Transferer) Close() {
	t.client.Close()
}
