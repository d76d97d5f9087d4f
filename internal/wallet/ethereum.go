package wallet

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/logging"
)

// Backend is the RPC surface the adapter needs. *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// DialFunc opens a Backend for an RPC url.
type DialFunc func(ctx context.Context, rawURL string) (Backend, error)

type Options struct {
	// RPCURLs maps every chain the wallet may be switched to onto its RPC endpoint.
	// Ignored when Pool is set.
	RPCURLs map[uint64]string
	Dial    DialFunc
	// Pool shares connections with other wallets. The adapter does not close it.
	Pool *Pool

	InitialChainID uint64
	KeystorePath   string
	Passphrase     string
	ContractABI    abi.ABI
	PollInterval   time.Duration
}

// EthereumAdapter is a Wallet backed by an encrypted keystore account. It
// signs locally and talks to each chain through a Pool connection.
type EthereumAdapter struct {
	Hub

	opts     Options
	pool     *Pool
	ownsPool bool

	connectMu sync.Mutex
	// txMu keeps nonce lookup and send atomic across concurrent writes.
	txMu sync.Mutex

	mu      sync.RWMutex
	key     *keystore.Key
	chainID uint64
}

func NewEthereumAdapter(opts Options) *EthereumAdapter {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	a := &EthereumAdapter{opts: opts, pool: opts.Pool}
	if a.pool == nil {
		a.pool = NewPool(opts.RPCURLs, opts.Dial)
		a.ownsPool = true
	}
	return a
}

func (a *EthereumAdapter) Connect(ctx context.Context) (common.Address, error) {
	a.connectMu.Lock()
	defer a.connectMu.Unlock()

	a.mu.RLock()
	if a.key != nil {
		addr := a.key.Address
		a.mu.RUnlock()
		return addr, nil
	}
	a.mu.RUnlock()

	keyJSON, err := os.ReadFile(a.opts.KeystorePath)
	if err != nil {
		return common.Address{}, a.fail(fmt.Errorf("failed to read keystore: %w", err))
	}
	key, err := keystore.DecryptKey(keyJSON, a.opts.Passphrase)
	if err != nil {
		return common.Address{}, a.fail(&Error{Kind: KindLocked, Err: err})
	}

	id := a.opts.InitialChainID
	if _, err := a.pool.Get(ctx, id); err != nil {
		return common.Address{}, a.fail(err)
	}

	a.mu.Lock()
	a.key = key
	a.chainID = id
	a.mu.Unlock()

	logging.L().Sugar().Infof("wallet connected address=%s chain=%d", key.Address.Hex(), id)
	a.EmitChainChanged(id)
	return key.Address, nil
}

func (a *EthereumAdapter) Connected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.key != nil
}

func (a *EthereumAdapter) Address() common.Address {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.addressLocked()
}

func (a *EthereumAdapter) ChainID(ctx context.Context) (uint64, error) {
	backend, _, err := a.current(ctx)
	if err != nil {
		return 0, err
	}

	id, err := backend.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read chain id: %w", err)
	}
	return id.Uint64(), nil
}

func (a *EthereumAdapter) SwitchChain(ctx context.Context, chainID uint64) error {
	if !a.Connected() {
		return ErrNotConnected
	}

	if _, err := a.pool.Get(ctx, chainID); err != nil {
		return a.fail(err)
	}

	a.mu.Lock()
	a.chainID = chainID
	a.mu.Unlock()

	a.EmitChainChanged(chainID)
	return nil
}

func (a *EthereumAdapter) ReadContract(ctx context.Context, contract common.Address, function string, args ...interface{}) ([]interface{}, error) {
	backend, _, err := a.current(ctx)
	if err != nil {
		return nil, err
	}

	bound := bind.NewBoundContract(contract, a.opts.ContractABI, backend, backend, backend)
	var out []interface{}
	if err := bound.Call(&bind.CallOpts{Context: ctx, From: a.Address()}, &out, function, args...); err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", function, err)
	}
	return out, nil
}

func (a *EthereumAdapter) WriteContract(ctx context.Context, call WriteCall) (common.Hash, error) {
	a.mu.RLock()
	key := a.key
	a.mu.RUnlock()
	if key == nil {
		return common.Hash{}, ErrNotConnected
	}
	backend, chainID, err := a.current(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key.PrivateKey, new(big.Int).SetUint64(chainID))
	if err != nil {
		return common.Hash{}, a.fail(fmt.Errorf("failed to build transactor: %w", err))
	}
	opts.Context = ctx
	if call.Value != nil {
		opts.Value = new(big.Int).Set(call.Value)
	}

	bound := bind.NewBoundContract(call.Contract, a.opts.ContractABI, backend, backend, backend)
	a.txMu.Lock()
	tx, err := bound.Transact(opts, call.Function, call.Args...)
	a.txMu.Unlock()
	if err != nil {
		return common.Hash{}, a.fail(fmt.Errorf("failed to send %s: %w", call.Function, err))
	}

	a.EmitTransactionHash(tx.Hash())
	return tx.Hash(), nil
}

// WaitForReceipt polls the chain that was current when it was called; a
// later SwitchChain does not move it.
func (a *EthereumAdapter) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	backend, _, err := a.current(ctx)
	if err != nil {
		return nil, err
	}

	receipt, err := pollReceipt(ctx, backend, hash, a.opts.PollInterval)
	if err != nil {
		if receipt != nil {
			return receipt, a.fail(err)
		}
		return nil, err
	}
	a.EmitReceiptConfirmed(receipt)
	return receipt, nil
}

// Close drops the RPC connections the adapter opened itself. The account
// stays unlocked in memory.
func (a *EthereumAdapter) Close() {
	if a.ownsPool {
		a.pool.Close()
	}
}

func (a *EthereumAdapter) current(ctx context.Context) (Backend, uint64, error) {
	a.mu.RLock()
	key, chainID := a.key, a.chainID
	a.mu.RUnlock()
	if key == nil {
		return nil, 0, ErrNotConnected
	}
	backend, err := a.pool.Get(ctx, chainID)
	if err != nil {
		return nil, 0, err
	}
	return backend, chainID, nil
}

func (a *EthereumAdapter) addressLocked() common.Address {
	if a.key == nil {
		return common.Address{}
	}
	return a.key.Address
}

func (a *EthereumAdapter) fail(err error) error {
	a.EmitError(err)
	return err
}
