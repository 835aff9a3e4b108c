package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/zaivio/nodes-api/internal/config"
)

const erc20TransferABI = `[{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}]`

const (
	transferGasLimit = uint64(100_000)
	tokenDecimals    = 18
)

// ERC20Rail settles redemptions by calling transfer() on the reward token
// contract from the configured sender account.
type ERC20Rail struct {
	client          *ethclient.Client
	chainID         *big.Int
	token           common.Address
	sender          common.Address
	senderKey       *ecdsa.PrivateKey
	explorerBaseURL string
	transferABI     abi.ABI
}

func NewERC20Rail(conf *config.ChainConfig) (*ERC20Rail, error) {
	client, err := ethclient.Dial(conf.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("ethclient.Dial -> %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(conf.SenderKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("crypto.HexToECDSA -> %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(erc20TransferABI))
	if err != nil {
		return nil, fmt.Errorf("abi.JSON -> %w", err)
	}

	return &ERC20Rail{
		client:          client,
		chainID:         big.NewInt(conf.ChainID),
		token:           common.HexToAddress(conf.TokenContract),
		sender:          common.HexToAddress(conf.SenderAddress),
		senderKey:       key,
		explorerBaseURL: strings.TrimSuffix(conf.ExplorerBaseURL, "/"),
		transferABI:     parsed,
	}, nil
}

func (r *ERC20Rail) Transfer(ctx context.Context, toAddress string, tokens int) (TransferResult, error) {
	if !common.IsHexAddress(toAddress) {
		return TransferResult{}, fmt.Errorf("invalid destination address %q", toAddress)
	}

	nonce, err := r.client.PendingNonceAt(ctx, r.sender)
	if err != nil {
		return TransferResult{}, fmt.Errorf("r.client.PendingNonceAt -> %w", err)
	}

	gasPrice, err := r.client.SuggestGasPrice(ctx)
	if err != nil {
		return TransferResult{}, fmt.Errorf("r.client.SuggestGasPrice -> %w", err)
	}

	amount := new(big.Int).Mul(
		big.NewInt(int64(tokens)),
		new(big.Int).Exp(big.NewInt(10), big.NewInt(tokenDecimals), nil),
	)

	data, err := r.transferABI.Pack("transfer", common.HexToAddress(toAddress), amount)
	if err != nil {
		return TransferResult{}, fmt.Errorf("r.transferABI.Pack -> %w", err)
	}

	tx := types.NewTransaction(nonce, r.token, big.NewInt(0), transferGasLimit, gasPrice, data)

	signed, err := types.SignTx(tx, types.NewEIP155Signer(r.chainID), r.senderKey)
	if err != nil {
		return TransferResult{}, fmt.Errorf("types.SignTx -> %w", err)
	}

	if err := r.client.SendTransaction(ctx, signed); err != nil {
		return TransferResult{}, fmt.Errorf("r.client.SendTransaction -> %w", err)
	}

	receipt, err := bind.WaitMined(ctx, r.client, signed)
	if err != nil {
		return TransferResult{}, fmt.Errorf("bind.WaitMined -> %w", err)
	}

	result := TransferResult{
		Status:       StatusConfirmed,
		TxHash:       signed.Hash().Hex(),
		ExplorerLink: r.explorerBaseURL + "/tx/" + signed.Hash().Hex(),
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		result.Status = StatusFailed
	}

	return result, nil
}
