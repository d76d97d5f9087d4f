// Package wallet is the boundary to the account that signs mint
// transactions and the chain RPC it talks to. The mint controller only sees
// the Wallet interface. BrowserSession implements it for one web view, with
// signing left to the visitor's browser; EthereumAdapter implements it with a
// local keystore for the CLI. Both reach chains through a shared Pool.
package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrNotConnected = errors.New("wallet not connected")
	ErrReverted     = errors.New("transaction reverted")
)

// WriteCall describes a state-changing contract call.
type WriteCall struct {
	Contract common.Address
	Function string
	Args     []interface{}
	Value    *big.Int
}

// Wallet is the capability set the mint flow needs from a wallet provider.
type Wallet interface {
	Connect(ctx context.Context) (common.Address, error)
	Connected() bool
	Address() common.Address
	ChainID(ctx context.Context) (uint64, error)
	SwitchChain(ctx context.Context, chainID uint64) error
	ReadContract(ctx context.Context, contract common.Address, function string, args ...interface{}) ([]interface{}, error)
	WriteContract(ctx context.Context, call WriteCall) (common.Hash, error)
	// WaitForReceipt blocks until the transaction is mined or ctx ends.
	WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	Subscribe(l Listener) (unsubscribe func())
}

// Listener receives provider events. Callbacks run on the goroutine that
// caused the event and must not block.
type Listener interface {
	OnChainChanged(chainID uint64)
	OnTransactionHash(hash common.Hash)
	OnReceiptConfirmed(receipt *types.Receipt)
	OnError(err error)
}

// Hub fans provider events out to subscribed listeners.
type Hub struct {
	mu        sync.RWMutex
	next      int
	listeners map[int]Listener
}

func (h *Hub) Subscribe(l Listener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listeners == nil {
		h.listeners = make(map[int]Listener)
	}
	id := h.next
	h.next++
	h.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) snapshot() []Listener {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		out = append(out, l)
	}
	return out
}

func (h *Hub) EmitChainChanged(chainID uint64) {
	for _, l := range h.snapshot() {
		l.OnChainChanged(chainID)
	}
}

func (h *Hub) EmitTransactionHash(hash common.Hash) {
	for _, l := range h.snapshot() {
		l.OnTransactionHash(hash)
	}
}

func (h *Hub) EmitReceiptConfirmed(r *types.Receipt) {
	for _, l := range h.snapshot() {
		l.OnReceiptConfirmed(r)
	}
}

func (h *Hub) EmitError(err error) {
	for _, l := range h.snapshot() {
		l.OnError(err)
	}
}
