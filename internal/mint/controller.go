package mint

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/logging"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/metrics"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet/contract"
)

var (
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrContractNotFound   = errors.New("contract not found")
	ErrPriceUnavailable   = errors.New("on-chain mint price unavailable")
	ErrMintInFlight       = errors.New("mint already in progress")
	ErrConfirmTimeout     = errors.New("confirmation timed out")
	ErrClosed             = errors.New("mint controller closed")
)

// User-facing messages.
const (
	MsgConnectWallet     = "Please connect your wallet first"
	MsgContractNotFound  = "Contract not found"
	MsgPriceUnavailable  = "Could not read the mint price from the contract. Please try again."
	MsgRejected          = "Transaction was rejected by user"
	MsgInsufficientFunds = "Insufficient funds for minting"
	MsgMintFailed        = "Minting failed. Please try again."

	MsgConnectRejected = "Wallet connection was rejected"
	MsgWalletLocked    = "Wallet could not be unlocked. Check the wallet passphrase."
	MsgConnectFailed   = "Could not connect your wallet. Please try again."
)

// ProjectSource re-reads a project after a confirmed mint.
type ProjectSource interface {
	GetPublicProject(ctx context.Context, artistName, projectName string) (*domain.Project, error)
}

// Publisher is the event bus surface the controller publishes on.
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// Topic is the bus topic carrying Events for a view.
func Topic(viewID string) string {
	return "mint:" + viewID
}

// Event is published on every state change.
type Event struct {
	ViewID  string `json:"viewId"`
	State   State  `json:"state"`
	Message string `json:"message,omitempty"`
	TxHash  string `json:"txHash,omitempty"`
}

// Session is the per-view mint context. It is never persisted.
type Session struct {
	WalletAddress string   `json:"walletAddress,omitempty"`
	ChainID       uint64   `json:"chainId,omitempty"`
	MintAmount    int64    `json:"mintAmount"`
	PendingTxHash string   `json:"pendingTxHash,omitempty"`
	PricePerUnit  *big.Int `json:"-"`
}

type Options struct {
	ViewID          string
	TargetChainID   uint64
	TargetChainName string
	// ConfirmTimeout bounds the wait for a receipt.
	ConfirmTimeout time.Duration
	Bus            Publisher
	// OwnsWallet makes Close also close the wallet.
	OwnsWallet bool
}

// Quote is the price shown next to the mint button. Estimated quotes come
// from the project's advertised price and are never used as a tx value.
type Quote struct {
	Amount       int64    `json:"amount"`
	PricePerUnit *big.Int `json:"-"`
	Total        *big.Int `json:"-"`
	UnitEther    string   `json:"unitPrice"`
	TotalEther   string   `json:"total"`
	Estimated    bool     `json:"estimated"`
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	State            State           `json:"state"`
	Message          string          `json:"message,omitempty"`
	Error            bool            `json:"error"`
	Session          Session         `json:"session"`
	Quote            Quote           `json:"quote"`
	ControlsDisabled bool            `json:"controlsDisabled"`
	Project          *domain.Project `json:"project,omitempty"`
}

// Controller owns the mint flow for one project view. Methods are safe for
// concurrent use; at most one attempt runs at a time.
type Controller struct {
	wallet   wallet.Wallet
	projects ProjectSource
	opts     Options

	mu          sync.Mutex
	state       State
	message     string
	isError     bool
	inFlight    bool
	closed      bool
	project     *domain.Project
	session     Session
	cancel      context.CancelFunc
	unsubscribe func()
}

func NewController(w wallet.Wallet, projects ProjectSource, project *domain.Project, opts Options) *Controller {
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = 5 * time.Minute
	}
	if opts.TargetChainName == "" {
		opts.TargetChainName = fmt.Sprintf("chain %d", opts.TargetChainID)
	}

	c := &Controller{
		wallet:   w,
		projects: projects,
		opts:     opts,
		state:    Idle,
		project:  project,
		session:  Session{MintAmount: 1},
	}
	if w.Connected() {
		c.session.WalletAddress = w.Address().Hex()
	}
	c.unsubscribe = w.Subscribe(c)
	return c
}

func (c *Controller) Connect(ctx context.Context) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	c.transition(ConnectingWallet, "", false)
	addr, err := c.wallet.Connect(ctx)
	if err != nil {
		c.transition(Failed, "", true)
		c.transition(Idle, c.connectMessage(err), true)
		return fmt.Errorf("failed to connect wallet: %w", err)
	}

	chainID, err := c.wallet.ChainID(ctx)
	if err != nil {
		logging.NewLogger(ctx).LogWarnf("mint.connect", "chain id unavailable: %v", err)
	}

	c.mu.Lock()
	c.session.WalletAddress = addr.Hex()
	if chainID != 0 {
		c.session.ChainID = chainID
	}
	c.mu.Unlock()

	c.transition(Idle, "", false)
	c.refreshPrice(ctx)
	return nil
}

// Quote reads the on-chain unit price when it can and falls back to the
// advertised price as an estimate.
func (c *Controller) Quote(ctx context.Context) Quote {
	c.refreshPrice(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quoteLocked()
}

func (c *Controller) Increment() error {
	return c.setAmount(func(n int64) int64 { return n + 1 })
}

func (c *Controller) Decrement() error {
	return c.setAmount(func(n int64) int64 { return n - 1 })
}

// SetAmount sets the mint amount, clamped to at least 1.
func (c *Controller) SetAmount(n int64) error {
	return c.setAmount(func(int64) int64 { return n })
}

func (c *Controller) setAmount(next func(int64) int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.inFlight {
		return ErrMintInFlight
	}
	n := next(c.session.MintAmount)
	if n < 1 {
		n = 1
	}
	c.session.MintAmount = n
	return nil
}

// Mint runs one attempt to completion: preconditions, chain switch, price
// read, submission and confirmation.
func (c *Controller) Mint(ctx context.Context, displayName string) error {
	a, err := c.begin(ctx)
	if err != nil {
		return err
	}
	return c.run(ctx, a, displayName)
}

// StartMint checks the local preconditions and runs the rest of the attempt
// in the background. Progress is visible through Snapshot and the bus.
func (c *Controller) StartMint(ctx context.Context, displayName string) error {
	a, err := c.begin(ctx)
	if err != nil {
		return err
	}
	go func() {
		_ = c.run(context.WithoutCancel(ctx), a, displayName)
	}()
	return nil
}

type attempt struct {
	contract common.Address
	amount   int64
	project  *domain.Project
}

func (c *Controller) begin(ctx context.Context) (*attempt, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}

	if !c.wallet.Connected() {
		c.release()
		c.transition(Idle, MsgConnectWallet, true)
		metrics.RecordMint("blocked")
		return nil, ErrWalletNotConnected
	}

	c.mu.Lock()
	project := c.project
	amount := c.session.MintAmount
	c.mu.Unlock()

	if project == nil || project.ContractAddress == "" || !common.IsHexAddress(project.ContractAddress) {
		c.release()
		c.transition(Idle, MsgContractNotFound, true)
		metrics.RecordMint("blocked")
		return nil, ErrContractNotFound
	}

	logging.NewLogger(ctx).LogInfof("mint.begin", "project=%s amount=%d", project.ProjectName, amount)
	return &attempt{
		contract: common.HexToAddress(project.ContractAddress),
		amount:   amount,
		project:  project,
	}, nil
}

func (c *Controller) run(parent context.Context, a *attempt, displayName string) error {
	defer c.release()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	log := logging.NewLogger(ctx)

	chainID, err := c.wallet.ChainID(ctx)
	if err != nil {
		return c.fail(err, wallet.Classify(err))
	}
	if chainID != c.opts.TargetChainID {
		c.transition(SwitchingChain, "", false)
		if err := c.wallet.SwitchChain(ctx, c.opts.TargetChainID); err != nil {
			log.LogError("mint.switch_chain", err)
			return c.fail(err, wallet.KindWrongChain)
		}
	}

	price, err := c.readPrice(ctx, a.contract)
	if err != nil {
		log.LogError("mint.read_price", err)
		c.transition(Idle, MsgPriceUnavailable, true)
		metrics.RecordMint("blocked")
		return fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}
	value := new(big.Int).Mul(price, big.NewInt(a.amount))

	c.transition(Submitting, "", false)
	hash, err := c.wallet.WriteContract(ctx, wallet.WriteCall{
		Contract: a.contract,
		Function: contract.FnMint,
		Args:     []interface{}{big.NewInt(a.amount), displayName, c.wallet.Address()},
		Value:    value,
	})
	if err != nil {
		log.LogError("mint.submit", err)
		return c.fail(err, wallet.Classify(err))
	}

	c.mu.Lock()
	c.session.PendingTxHash = hash.Hex()
	c.mu.Unlock()
	c.transition(AwaitingConfirmation, "", false)
	log.LogInfof("mint.submitted", "tx=%s value=%s", hash.Hex(), value)

	waitCtx, waitCancel := context.WithTimeout(ctx, c.opts.ConfirmTimeout)
	defer waitCancel()
	receipt, err := c.wallet.WaitForReceipt(waitCtx, hash)
	if err == nil && receipt != nil && receipt.Status != types.ReceiptStatusSuccessful {
		err = wallet.ErrReverted
	}
	if err != nil {
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			c.clearPending()
			c.transition(Failed, "", true)
			c.transition(Idle, fmt.Sprintf("Transaction %s is still pending. Check your wallet for its final status.", hash.Hex()), true)
			metrics.RecordMint("timeout")
			return fmt.Errorf("%w: %s", ErrConfirmTimeout, hash.Hex())
		}
		c.clearPending()
		return c.fail(err, wallet.Classify(err))
	}

	c.confirm(ctx, a)
	return nil
}

func (c *Controller) confirm(ctx context.Context, a *attempt) {
	refreshed, err := c.projects.GetPublicProject(ctx, a.project.ArtistName, a.project.ProjectName)
	if err != nil {
		logging.NewLogger(ctx).LogWarnf("mint.refresh_project", "refresh after mint failed: %v", err)
	}

	c.mu.Lock()
	if err == nil && refreshed != nil && !c.closed {
		c.project = refreshed
	}
	c.session.MintAmount = 1
	c.session.PendingTxHash = ""
	c.mu.Unlock()

	metrics.RecordMint("confirmed")
	c.transition(Confirmed, fmt.Sprintf("Successfully minted %d NFT(s)!", a.amount), false)
}

func (c *Controller) fail(err error, kind wallet.Kind) error {
	c.transition(Failed, "", true)
	c.transition(Idle, c.messageFor(kind), true)
	metrics.RecordMint(outcomeFor(kind))
	return err
}

func (c *Controller) messageFor(kind wallet.Kind) string {
	switch kind {
	case wallet.KindRejected:
		return MsgRejected
	case wallet.KindInsufficientFunds:
		return MsgInsufficientFunds
	case wallet.KindWrongChain:
		return fmt.Sprintf("Please switch to %s to mint", c.opts.TargetChainName)
	default:
		return MsgMintFailed
	}
}

func (c *Controller) connectMessage(err error) string {
	if errors.Is(err, wallet.ErrNoAccount) {
		return MsgConnectWallet
	}
	switch wallet.Classify(err) {
	case wallet.KindRejected:
		return MsgConnectRejected
	case wallet.KindLocked:
		return MsgWalletLocked
	case wallet.KindWrongChain:
		return fmt.Sprintf("Please switch to %s to mint", c.opts.TargetChainName)
	default:
		return MsgConnectFailed
	}
}

func outcomeFor(kind wallet.Kind) string {
	if kind == wallet.KindOther {
		return "failed"
	}
	return kind.String()
}

func (c *Controller) readPrice(ctx context.Context, addr common.Address) (*big.Int, error) {
	out, err := c.wallet.ReadContract(ctx, addr, contract.FnMintPrice)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("empty mintPrice result")
	}
	price, ok := out[0].(*big.Int)
	if !ok || price == nil {
		return nil, fmt.Errorf("unexpected mintPrice result %T", out[0])
	}

	c.mu.Lock()
	c.session.PricePerUnit = new(big.Int).Set(price)
	c.mu.Unlock()
	return price, nil
}

func (c *Controller) refreshPrice(ctx context.Context) {
	c.mu.Lock()
	project := c.project
	c.mu.Unlock()

	if !c.wallet.Connected() || project == nil || !common.IsHexAddress(project.ContractAddress) {
		return
	}
	if _, err := c.readPrice(ctx, common.HexToAddress(project.ContractAddress)); err != nil {
		logging.NewLogger(ctx).LogWarnf("mint.quote", "falling back to advertised price: %v", err)
		c.mu.Lock()
		c.session.PricePerUnit = nil
		c.mu.Unlock()
	}
}

func (c *Controller) quoteLocked() Quote {
	q := Quote{Amount: c.session.MintAmount}
	if c.session.PricePerUnit != nil {
		q.PricePerUnit = new(big.Int).Set(c.session.PricePerUnit)
	} else {
		q.Estimated = true
		if c.project != nil {
			q.PricePerUnit = WeiFromEther(c.project.MintPrice)
		} else {
			q.PricePerUnit = new(big.Int)
		}
	}
	q.Total = new(big.Int).Mul(q.PricePerUnit, big.NewInt(q.Amount))
	q.UnitEther = FormatEther(q.PricePerUnit)
	q.TotalEther = FormatEther(q.Total)
	return q
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s.PricePerUnit != nil {
		s.PricePerUnit = new(big.Int).Set(s.PricePerUnit)
	}
	var project *domain.Project
	if c.project != nil {
		p := *c.project
		project = &p
	}
	return Snapshot{
		State:            c.state,
		Message:          c.message,
		Error:            c.isError,
		Session:          s,
		Quote:            c.quoteLocked(),
		ControlsDisabled: c.inFlight || c.state.Busy(),
		Project:          project,
	}
}

// Wallet returns the wallet the controller mints with.
func (c *Controller) Wallet() wallet.Wallet {
	return c.wallet
}

// Project returns the latest known project detail.
func (c *Controller) Project() *domain.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.project
}

// Close stops listening to the wallet and cancels an attempt in progress.
// Results arriving afterwards are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancel
	unsubscribe := c.unsubscribe
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	if closer, ok := c.wallet.(interface{ Close() }); ok && c.opts.OwnsWallet {
		closer.Close()
	}
}

func (c *Controller) acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.inFlight {
		return ErrMintInFlight
	}
	c.inFlight = true
	return nil
}

func (c *Controller) release() {
	c.mu.Lock()
	c.inFlight = false
	c.cancel = nil
	c.mu.Unlock()
}

func (c *Controller) clearPending() {
	c.mu.Lock()
	c.session.PendingTxHash = ""
	c.mu.Unlock()
}

func (c *Controller) transition(next State, message string, isError bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = next
	c.message = message
	c.isError = isError
	ev := Event{
		ViewID:  c.opts.ViewID,
		State:   next,
		Message: message,
		TxHash:  c.session.PendingTxHash,
	}
	c.mu.Unlock()

	if c.opts.Bus != nil && c.opts.ViewID != "" {
		c.opts.Bus.Publish(Topic(c.opts.ViewID), ev)
	}
}

// wallet.Listener

func (c *Controller) OnChainChanged(chainID uint64) {
	c.mu.Lock()
	c.session.ChainID = chainID
	c.mu.Unlock()
}

func (c *Controller) OnTransactionHash(hash common.Hash) {
	c.mu.Lock()
	if c.state == Submitting {
		c.session.PendingTxHash = hash.Hex()
	}
	c.mu.Unlock()
}

func (c *Controller) OnReceiptConfirmed(*types.Receipt) {}

func (c *Controller) OnError(err error) {
	logging.L().Sugar().Debugf("wallet error view=%s: %v", c.opts.ViewID, err)
}
