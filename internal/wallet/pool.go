package wallet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/logging"
)

var ErrPoolClosed = errors.New("chain pool closed")

// Pool holds one verified RPC connection per chain. Connections are dialed
// on first use and stay open until Close, so callers never lose a backend
// they are still using when a wallet switches chain.
type Pool struct {
	rpcURLs map[uint64]string
	dial    DialFunc

	mu       sync.Mutex
	backends map[uint64]Backend
	closed   bool
}

func NewPool(rpcURLs map[uint64]string, dial DialFunc) *Pool {
	if dial == nil {
		dial = dialEthclient
	}
	return &Pool{
		rpcURLs:  rpcURLs,
		dial:     dial,
		backends: make(map[uint64]Backend),
	}
}

func dialEthclient(ctx context.Context, rawURL string) (Backend, error) {
	return ethclient.DialContext(ctx, rawURL)
}

// Has reports whether chainID has a configured RPC endpoint.
func (p *Pool) Has(chainID uint64) bool {
	_, ok := p.rpcURLs[chainID]
	return ok
}

// Get returns the backend for chainID, dialing it the first time. Dials are
// serialized so concurrent callers share one connection.
func (p *Pool) Get(ctx context.Context, chainID uint64) (Backend, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	if b, ok := p.backends[chainID]; ok {
		return b, nil
	}

	b, err := p.dialLocked(ctx, chainID)
	if err != nil {
		return nil, err
	}
	p.backends[chainID] = b
	return b, nil
}

func (p *Pool) dialLocked(ctx context.Context, chainID uint64) (Backend, error) {
	url, ok := p.rpcURLs[chainID]
	if !ok {
		return nil, &Error{Kind: KindWrongChain, Err: fmt.Errorf("unrecognized chain id %d", chainID)}
	}

	backend, err := p.dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain %d: %w", chainID, err)
	}

	remote, err := backend.ChainID(ctx)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}
	if remote.Uint64() != chainID {
		backend.Close()
		return nil, &Error{
			Kind: KindWrongChain,
			Err:  fmt.Errorf("rpc reports chain %d, does not match the target chain %d", remote.Uint64(), chainID),
		}
	}
	logging.L().Sugar().Infof("chain rpc connected chain=%d", chainID)
	return backend, nil
}

// Ping checks that the lowest configured chain answers.
func (p *Pool) Ping(ctx context.Context) error {
	ids := make([]uint64, 0, len(p.rpcURLs))
	for id := range p.rpcURLs {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return errors.New("no chains configured")
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	b, err := p.Get(ctx, ids[0])
	if err != nil {
		return err
	}
	_, err = b.ChainID(ctx)
	return err
}

// Close drops every connection. It is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for id, b := range p.backends {
		b.Close()
		delete(p.backends, id)
	}
}

// pollReceipt waits for hash to be mined on backend. A failed status is
// returned together with ErrReverted.
func pollReceipt(ctx context.Context, backend Backend, hash common.Hash, every time.Duration) (*types.Receipt, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		receipt, err := backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("%w: %s", ErrReverted, hash.Hex())
			}
			return receipt, nil
		case !errors.Is(err, ethereum.NotFound):
			logging.L().Sugar().Warnf("receipt poll failed tx=%s: %v", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
