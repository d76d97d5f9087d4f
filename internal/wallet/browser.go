package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/logging"
)

var (
	ErrNoAccount        = errors.New("no wallet account provided")
	ErrNoPendingRequest = errors.New("no matching wallet request")
	ErrRequestPending   = errors.New("another wallet request is pending")
	ErrReplyTimeout     = errors.New("wallet did not reply in time")
	ErrSessionClosed    = errors.New("wallet session closed")
)

// Wallet request kinds sent to the browser.
const (
	RequestSwitchChain     = "switch_chain"
	RequestSendTransaction = "send_transaction"
)

// Publisher is the event bus surface used to hand requests to the browser.
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// RequestTopic is the bus topic carrying Requests for a view.
func RequestTopic(viewID string) string {
	return "wallet:" + viewID
}

// Request asks the visitor's browser wallet to act. Transactions are fully
// encoded here; the browser only signs and sends them.
type Request struct {
	ID      string        `json:"id"`
	Kind    string        `json:"kind"`
	ChainID uint64        `json:"chainId"`
	From    string        `json:"from,omitempty"`
	To      string        `json:"to,omitempty"`
	Data    hexutil.Bytes `json:"data,omitempty"`
	Value   *hexutil.Big  `json:"value,omitempty"`
}

// Reply is the browser's answer to a Request. Error carries the provider's
// error text verbatim so it can be classified.
type Reply struct {
	RequestID string `json:"requestId" binding:"required"`
	ChainID   uint64 `json:"chainId,omitempty"`
	TxHash    string `json:"txHash,omitempty"`
	Error     string `json:"error,omitempty"`
}

type BrowserOptions struct {
	ViewID       string
	Pool         *Pool
	ContractABI  abi.ABI
	Bus          Publisher
	ReplyTimeout time.Duration
	PollInterval time.Duration
}

type pendingRequest struct {
	req   Request
	reply chan Reply
}

// BrowserSession is the wallet of one visitor's view. The visitor's account
// is bound from the browser; every signature happens there. Reads and
// receipts go through the shared Pool on the chain the browser reports.
type BrowserSession struct {
	Hub

	opts BrowserOptions

	mu        sync.Mutex
	address   common.Address
	bound     bool
	connected bool
	chainID   uint64
	pending   *pendingRequest
	closed    bool
	done      chan struct{}
}

var _ Wallet = (*BrowserSession)(nil)

func NewBrowserSession(opts BrowserOptions) *BrowserSession {
	if opts.ReplyTimeout <= 0 {
		opts.ReplyTimeout = 2 * time.Minute
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	return &BrowserSession{opts: opts, done: make(chan struct{})}
}

// Bind records the account and chain the browser wallet reports.
func (s *BrowserSession) Bind(address string, chainID uint64) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("%w: invalid address %q", ErrNoAccount, address)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.address = common.HexToAddress(address)
	s.chainID = chainID
	s.bound = true
	return nil
}

func (s *BrowserSession) Connect(context.Context) (common.Address, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return common.Address{}, ErrSessionClosed
	}
	if !s.bound {
		s.mu.Unlock()
		return common.Address{}, s.fail(ErrNoAccount)
	}
	s.connected = true
	addr, chainID := s.address, s.chainID
	s.mu.Unlock()

	logging.L().Sugar().Infof("browser wallet connected view=%s address=%s chain=%d", s.opts.ViewID, addr.Hex(), chainID)
	s.EmitChainChanged(chainID)
	return addr, nil
}

func (s *BrowserSession) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *BrowserSession) Address() common.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return common.Address{}
	}
	return s.address
}

func (s *BrowserSession) ChainID(context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return 0, ErrNotConnected
	}
	return s.chainID, nil
}

func (s *BrowserSession) SwitchChain(ctx context.Context, chainID uint64) error {
	if !s.Connected() {
		return ErrNotConnected
	}
	if !s.opts.Pool.Has(chainID) {
		return s.fail(&Error{Kind: KindWrongChain, Err: fmt.Errorf("unrecognized chain id %d", chainID)})
	}

	reply, err := s.ask(ctx, Request{Kind: RequestSwitchChain, ChainID: chainID})
	if err != nil {
		return s.fail(err)
	}
	if reply.Error != "" {
		return s.fail(errors.New(reply.Error))
	}
	if reply.ChainID != 0 && reply.ChainID != chainID {
		return s.fail(&Error{
			Kind: KindWrongChain,
			Err:  fmt.Errorf("browser reports chain %d, does not match the target chain %d", reply.ChainID, chainID),
		})
	}

	s.mu.Lock()
	s.chainID = chainID
	s.mu.Unlock()
	s.EmitChainChanged(chainID)
	return nil
}

func (s *BrowserSession) ReadContract(ctx context.Context, contract common.Address, function string, args ...interface{}) ([]interface{}, error) {
	backend, err := s.backend(ctx)
	if err != nil {
		return nil, err
	}

	bound := bind.NewBoundContract(contract, s.opts.ContractABI, backend, backend, backend)
	var out []interface{}
	if err := bound.Call(&bind.CallOpts{Context: ctx, From: s.Address()}, &out, function, args...); err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", function, err)
	}
	return out, nil
}

// WriteContract encodes the call and hands it to the browser, which signs
// and sends it from the bound account.
func (s *BrowserSession) WriteContract(ctx context.Context, call WriteCall) (common.Hash, error) {
	s.mu.Lock()
	connected, from, chainID := s.connected, s.address, s.chainID
	s.mu.Unlock()
	if !connected {
		return common.Hash{}, ErrNotConnected
	}

	data, err := s.opts.ContractABI.Pack(call.Function, call.Args...)
	if err != nil {
		return common.Hash{}, s.fail(fmt.Errorf("failed to encode %s: %w", call.Function, err))
	}
	req := Request{
		Kind:    RequestSendTransaction,
		ChainID: chainID,
		From:    from.Hex(),
		To:      call.Contract.Hex(),
		Data:    data,
	}
	if call.Value != nil {
		req.Value = (*hexutil.Big)(new(big.Int).Set(call.Value))
	}

	reply, err := s.ask(ctx, req)
	if err != nil {
		return common.Hash{}, s.fail(err)
	}
	if reply.Error != "" {
		return common.Hash{}, s.fail(errors.New(reply.Error))
	}
	raw, err := hexutil.Decode(strings.TrimSpace(reply.TxHash))
	if err != nil || len(raw) != common.HashLength {
		return common.Hash{}, s.fail(fmt.Errorf("browser returned an invalid transaction hash %q", reply.TxHash))
	}

	hash := common.BytesToHash(raw)
	s.EmitTransactionHash(hash)
	return hash, nil
}

func (s *BrowserSession) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	backend, err := s.backend(ctx)
	if err != nil {
		return nil, err
	}

	receipt, err := pollReceipt(ctx, backend, hash, s.opts.PollInterval)
	if err != nil {
		if receipt != nil {
			return receipt, s.fail(err)
		}
		return nil, err
	}
	s.EmitReceiptConfirmed(receipt)
	return receipt, nil
}

// Pending returns the request the browser has not answered yet.
func (s *BrowserSession) Pending() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Request{}, false
	}
	return s.pending.req, true
}

// Respond delivers the browser's reply to the pending request.
func (s *BrowserSession) Respond(r Reply) error {
	s.mu.Lock()
	p := s.pending
	if p == nil || p.req.ID != r.RequestID {
		s.mu.Unlock()
		return ErrNoPendingRequest
	}
	s.pending = nil
	s.mu.Unlock()

	p.reply <- r
	return nil
}

// Close fails any pending request and disconnects the session.
func (s *BrowserSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.connected = false
	close(s.done)
}

func (s *BrowserSession) ask(ctx context.Context, req Request) (Reply, error) {
	req.ID = uuid.NewString()
	p := &pendingRequest{req: req, reply: make(chan Reply, 1)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Reply{}, ErrSessionClosed
	}
	if s.pending != nil {
		s.mu.Unlock()
		return Reply{}, ErrRequestPending
	}
	s.pending = p
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.pending == p {
			s.pending = nil
		}
		s.mu.Unlock()
	}()

	if s.opts.Bus != nil {
		s.opts.Bus.Publish(RequestTopic(s.opts.ViewID), req)
	}

	timer := time.NewTimer(s.opts.ReplyTimeout)
	defer timer.Stop()

	select {
	case r := <-p.reply:
		return r, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	case <-timer.C:
		return Reply{}, ErrReplyTimeout
	case <-s.done:
		return Reply{}, ErrSessionClosed
	}
}

func (s *BrowserSession) backend(ctx context.Context) (Backend, error) {
	s.mu.Lock()
	connected, chainID := s.connected, s.chainID
	s.mu.Unlock()
	if !connected {
		return nil, ErrNotConnected
	}
	return s.opts.Pool.Get(ctx, chainID)
}

func (s *BrowserSession) fail(err error) error {
	s.EmitError(err)
	return err
}
