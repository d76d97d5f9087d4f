// Package wallettest provides an in-memory wallet.Wallet for tests.
package wallettest

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet/contract"
)

// Fake is a scriptable wallet. Zero values mean "succeed".
type Fake struct {
	wallet.Hub

	mu sync.Mutex

	Addr        common.Address
	Chain       uint64
	IsConnected bool
	IsClosed    bool

	Price    *big.Int
	PriceErr error

	ConnectErr error
	SwitchErr  error
	WriteErr   error
	ReceiptErr error
	Reverted   bool

	// Hold, when non-nil, blocks WaitForReceipt until it is closed or ctx ends.
	Hold chan struct{}

	TxHash common.Hash
	Calls  []string
	Writes []wallet.WriteCall
}

var _ wallet.Wallet = (*Fake)(nil)

// New returns a connected fake on chainID with the given on-chain price.
func New(chainID uint64, price *big.Int) *Fake {
	return &Fake{
		Addr:        common.HexToAddress("0x00000000000000000000000000000000000000a1"),
		Chain:       chainID,
		IsConnected: true,
		Price:       price,
		TxHash:      common.HexToHash("0xfeed"),
	}
}

func (f *Fake) record(call string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, call)
	f.mu.Unlock()
}

// CallLog returns a copy of the recorded call names.
func (f *Fake) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

func (f *Fake) Connect(context.Context) (common.Address, error) {
	f.record("Connect")
	if f.ConnectErr != nil {
		f.EmitError(f.ConnectErr)
		return common.Address{}, f.ConnectErr
	}
	f.mu.Lock()
	f.IsConnected = true
	chain := f.Chain
	f.mu.Unlock()
	f.EmitChainChanged(chain)
	return f.Addr, nil
}

func (f *Fake) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.IsConnected
}

func (f *Fake) Address() common.Address {
	return f.Addr
}

func (f *Fake) ChainID(context.Context) (uint64, error) {
	f.record("ChainID")
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.IsConnected {
		return 0, wallet.ErrNotConnected
	}
	return f.Chain, nil
}

func (f *Fake) SwitchChain(_ context.Context, chainID uint64) error {
	f.record("SwitchChain")
	if f.SwitchErr != nil {
		f.EmitError(f.SwitchErr)
		return f.SwitchErr
	}
	f.mu.Lock()
	f.Chain = chainID
	f.mu.Unlock()
	f.EmitChainChanged(chainID)
	return nil
}

func (f *Fake) ReadContract(_ context.Context, _ common.Address, function string, _ ...interface{}) ([]interface{}, error) {
	f.record("ReadContract:" + function)
	if function != contract.FnMintPrice {
		return nil, nil
	}
	if f.PriceErr != nil {
		return nil, f.PriceErr
	}
	if f.Price == nil {
		return []interface{}{}, nil
	}
	return []interface{}{new(big.Int).Set(f.Price)}, nil
}

func (f *Fake) WriteContract(_ context.Context, call wallet.WriteCall) (common.Hash, error) {
	f.record("WriteContract:" + call.Function)
	f.mu.Lock()
	f.Writes = append(f.Writes, call)
	f.mu.Unlock()
	if f.WriteErr != nil {
		f.EmitError(f.WriteErr)
		return common.Hash{}, f.WriteErr
	}
	f.EmitTransactionHash(f.TxHash)
	return f.TxHash, nil
}

func (f *Fake) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	f.record("WaitForReceipt")
	if f.Hold != nil {
		select {
		case <-f.Hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.ReceiptErr != nil {
		f.EmitError(f.ReceiptErr)
		return nil, f.ReceiptErr
	}
	receipt := &types.Receipt{TxHash: hash, Status: types.ReceiptStatusSuccessful}
	if f.Reverted {
		receipt.Status = types.ReceiptStatusFailed
		f.EmitError(wallet.ErrReverted)
		return receipt, wallet.ErrReverted
	}
	f.EmitReceiptConfirmed(receipt)
	return receipt, nil
}

// LastWrite returns the most recent WriteContract call.
func (f *Fake) LastWrite() (wallet.WriteCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Writes) == 0 {
		return wallet.WriteCall{}, false
	}
	return f.Writes[len(f.Writes)-1], true
}

// Close disconnects the fake.
func (f *Fake) Close() {
	f.mu.Lock()
	f.IsClosed = true
	f.IsConnected = false
	f.mu.Unlock()
}

func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.IsClosed
}
