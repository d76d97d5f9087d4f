package mint

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet/contract"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet/wallettest"
)

const contractAddr = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

type stubProjects struct {
	mu      sync.Mutex
	calls   int
	project *domain.Project
	err     error
}

func (s *stubProjects) GetPublicProject(_ context.Context, _, _ string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.project, nil
}

func mintableProject() *domain.Project {
	return &domain.Project{
		ID:              "p1",
		ArtistName:      "Jane Doe",
		ProjectName:     "My Art",
		ProjectSymbol:   "ART",
		TotalSupply:     100,
		MintPrice:       0.05,
		Status:          domain.StatusApproved,
		ContractAddress: contractAddr,
		MintingEnabled:  true,
	}
}

func newTestController(t *testing.T, w *wallettest.Fake, project *domain.Project) (*Controller, *stubProjects) {
	t.Helper()
	projects := &stubProjects{project: project}
	c := NewController(w, projects, project, Options{
		TargetChainID:   1,
		TargetChainName: "Ethereum Mainnet",
		ConfirmTimeout:  time.Second,
	})
	t.Cleanup(c.Close)
	return c, projects
}

func TestMint_WalletNotConnected(t *testing.T) {
	w := wallettest.New(1, big.NewInt(10))
	w.IsConnected = false
	c, _ := newTestController(t, w, mintableProject())

	err := c.Mint(context.Background(), "Jane")
	assert.ErrorIs(t, err, ErrWalletNotConnected)

	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Equal(t, MsgConnectWallet, snap.Message)
	assert.True(t, snap.Error)
	_, wrote := w.LastWrite()
	assert.False(t, wrote)
}

func TestMint_ContractMissingDoesNotTouchWallet(t *testing.T) {
	w := wallettest.New(1, big.NewInt(10))
	project := mintableProject()
	project.ContractAddress = ""
	c, _ := newTestController(t, w, project)

	err := c.Mint(context.Background(), "Jane")
	assert.ErrorIs(t, err, ErrContractNotFound)
	assert.Equal(t, MsgContractNotFound, c.Snapshot().Message)
	assert.Equal(t, Idle, c.Snapshot().State)
	assert.Empty(t, w.CallLog())
}

func TestMint_ValueIsExactMultipleOfOnChainPrice(t *testing.T) {
	price, ok := new(big.Int).SetString("123456789012345678901", 10)
	require.True(t, ok)
	w := wallettest.New(1, price)
	c, _ := newTestController(t, w, mintableProject())

	require.NoError(t, c.SetAmount(3))
	require.NoError(t, c.Mint(context.Background(), "Jane"))

	call, ok := w.LastWrite()
	require.True(t, ok)
	want := new(big.Int).Mul(price, big.NewInt(3))
	assert.Zero(t, want.Cmp(call.Value), "value %s, want %s", call.Value, want)
	assert.Equal(t, contract.FnMint, call.Function)
	assert.Equal(t, common.HexToAddress(contractAddr), call.Contract)
	require.Len(t, call.Args, 3)
	assert.Equal(t, big.NewInt(3), call.Args[0])
	assert.Equal(t, "Jane", call.Args[1])
	assert.Equal(t, w.Addr, call.Args[2])
}

func TestMint_ConfirmedRefreshesAndResets(t *testing.T) {
	w := wallettest.New(1, big.NewInt(1000))
	project := mintableProject()
	c, projects := newTestController(t, w, project)

	refreshed := *project
	refreshed.Description = "after mint"
	projects.project = &refreshed

	require.NoError(t, c.SetAmount(4))
	require.NoError(t, c.Mint(context.Background(), "Jane"))

	snap := c.Snapshot()
	assert.Equal(t, Confirmed, snap.State)
	assert.Equal(t, "Successfully minted 4 NFT(s)!", snap.Message)
	assert.Equal(t, int64(1), snap.Session.MintAmount)
	assert.Empty(t, snap.Session.PendingTxHash)
	assert.Equal(t, "after mint", snap.Project.Description)
	assert.Equal(t, 1, projects.calls)
	assert.False(t, snap.ControlsDisabled)
}

func TestMint_SwitchesChainBeforeSubmitting(t *testing.T) {
	w := wallettest.New(137, big.NewInt(5))
	c, _ := newTestController(t, w, mintableProject())

	require.NoError(t, c.Mint(context.Background(), "Jane"))
	log := w.CallLog()
	require.Contains(t, log, "SwitchChain")
	assert.Less(t, indexOf(log, "SwitchChain"), indexOf(log, "ReadContract:mintPrice"))
	assert.Less(t, indexOf(log, "ReadContract:mintPrice"), indexOf(log, "WriteContract:mint"))
	assert.Less(t, indexOf(log, "WriteContract:mint"), indexOf(log, "WaitForReceipt"))
	assert.Equal(t, uint64(1), c.Snapshot().Session.ChainID)
}

func TestMint_SwitchChainFailure(t *testing.T) {
	w := wallettest.New(137, big.NewInt(5))
	w.SwitchErr = errors.New("Unrecognized chain ID 0x1")
	c, _ := newTestController(t, w, mintableProject())

	err := c.Mint(context.Background(), "Jane")
	require.Error(t, err)
	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Equal(t, "Please switch to Ethereum Mainnet to mint", snap.Message)
	assert.NotContains(t, w.CallLog(), "WriteContract:mint")
}

func TestMint_BlockedWithoutOnChainPrice(t *testing.T) {
	w := wallettest.New(1, nil)
	w.PriceErr = errors.New("execution reverted")
	c, _ := newTestController(t, w, mintableProject())

	err := c.Mint(context.Background(), "Jane")
	assert.ErrorIs(t, err, ErrPriceUnavailable)
	assert.Equal(t, MsgPriceUnavailable, c.Snapshot().Message)
	_, wrote := w.LastWrite()
	assert.False(t, wrote, "advertised price must never fund a transaction")
}

func TestMint_ClassifiesSubmissionErrors(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{errors.New("User denied transaction signature"), MsgRejected},
		{errors.New("insufficient funds for gas * price + value"), MsgInsufficientFunds},
		{errors.New("execution reverted: sold out"), MsgMintFailed},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			w := wallettest.New(1, big.NewInt(5))
			w.WriteErr = tc.err
			c, _ := newTestController(t, w, mintableProject())

			require.Error(t, c.Mint(context.Background(), "Jane"))
			snap := c.Snapshot()
			assert.Equal(t, Idle, snap.State)
			assert.Equal(t, tc.want, snap.Message)
			assert.False(t, snap.ControlsDisabled)

			w.WriteErr = nil
			assert.NoError(t, c.Mint(context.Background(), "Jane"), "retry after failure")
		})
	}
}

func TestMint_RevertedReceipt(t *testing.T) {
	w := wallettest.New(1, big.NewInt(5))
	w.Reverted = true
	c, projects := newTestController(t, w, mintableProject())

	require.Error(t, c.Mint(context.Background(), "Jane"))
	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Equal(t, MsgMintFailed, snap.Message)
	assert.Empty(t, snap.Session.PendingTxHash)
	assert.Zero(t, projects.calls)
}

func TestMint_SingleAttemptInFlight(t *testing.T) {
	w := wallettest.New(1, big.NewInt(5))
	w.Hold = make(chan struct{})
	c, _ := newTestController(t, w, mintableProject())

	require.NoError(t, c.StartMint(context.Background(), "Jane"))
	require.Eventually(t, func() bool {
		return c.Snapshot().State == AwaitingConfirmation
	}, time.Second, 5*time.Millisecond)

	snap := c.Snapshot()
	assert.True(t, snap.ControlsDisabled)
	assert.Equal(t, w.TxHash.Hex(), snap.Session.PendingTxHash)
	assert.ErrorIs(t, c.Mint(context.Background(), "Jane"), ErrMintInFlight)
	assert.ErrorIs(t, c.Increment(), ErrMintInFlight)
	assert.ErrorIs(t, c.Connect(context.Background()), ErrMintInFlight)

	close(w.Hold)
	require.Eventually(t, func() bool {
		snap := c.Snapshot()
		return snap.State == Confirmed && !snap.ControlsDisabled
	}, time.Second, 5*time.Millisecond)
	assert.NoError(t, c.Increment())
}

func TestMint_ConfirmationTimeout(t *testing.T) {
	w := wallettest.New(1, big.NewInt(5))
	w.Hold = make(chan struct{})
	projects := &stubProjects{}
	c := NewController(w, projects, mintableProject(), Options{
		TargetChainID:  1,
		ConfirmTimeout: 20 * time.Millisecond,
	})
	defer c.Close()

	err := c.Mint(context.Background(), "Jane")
	assert.ErrorIs(t, err, ErrConfirmTimeout)

	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Contains(t, snap.Message, w.TxHash.Hex())
	assert.Empty(t, snap.Session.PendingTxHash)
	assert.Zero(t, projects.calls)
}

func TestMint_CloseCancelsAttempt(t *testing.T) {
	w := wallettest.New(1, big.NewInt(5))
	w.Hold = make(chan struct{})
	c, _ := newTestController(t, w, mintableProject())

	done := make(chan error, 1)
	go func() { done <- c.Mint(context.Background(), "Jane") }()
	require.Eventually(t, func() bool {
		return c.Snapshot().State == AwaitingConfirmation
	}, time.Second, 5*time.Millisecond)

	c.Close()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("mint did not stop after Close")
	}
	assert.Equal(t, AwaitingConfirmation, c.Snapshot().State, "no state change after close")
	assert.ErrorIs(t, c.Mint(context.Background(), "Jane"), ErrClosed)
}

func TestAmount_FloorOfOne(t *testing.T) {
	c, _ := newTestController(t, wallettest.New(1, big.NewInt(5)), mintableProject())

	require.NoError(t, c.Decrement())
	assert.Equal(t, int64(1), c.Snapshot().Session.MintAmount)

	require.NoError(t, c.Increment())
	require.NoError(t, c.Increment())
	assert.Equal(t, int64(3), c.Snapshot().Session.MintAmount)

	require.NoError(t, c.SetAmount(-4))
	assert.Equal(t, int64(1), c.Snapshot().Session.MintAmount)
}

func TestQuote(t *testing.T) {
	t.Run("on-chain price", func(t *testing.T) {
		c, _ := newTestController(t, wallettest.New(1, big.NewInt(2_000_000_000_000_000)), mintableProject())
		require.NoError(t, c.SetAmount(2))

		q := c.Quote(context.Background())
		assert.False(t, q.Estimated)
		assert.Equal(t, "0.002", q.UnitEther)
		assert.Equal(t, "0.004", q.TotalEther)
	})

	t.Run("advertised price is an estimate", func(t *testing.T) {
		w := wallettest.New(1, nil)
		w.PriceErr = errors.New("call failed")
		c, _ := newTestController(t, w, mintableProject())

		q := c.Quote(context.Background())
		assert.True(t, q.Estimated)
		assert.Equal(t, "0.05", q.UnitEther)
		assert.Nil(t, c.Snapshot().Session.PricePerUnit)
	})

	t.Run("disconnected wallet uses advertised price", func(t *testing.T) {
		w := wallettest.New(1, big.NewInt(7))
		w.IsConnected = false
		c, _ := newTestController(t, w, mintableProject())

		q := c.Quote(context.Background())
		assert.True(t, q.Estimated)
		assert.Empty(t, w.CallLog())
	})
}

func TestConnect(t *testing.T) {
	t.Run("success reads price", func(t *testing.T) {
		w := wallettest.New(1, big.NewInt(9))
		w.IsConnected = false
		c, _ := newTestController(t, w, mintableProject())

		require.NoError(t, c.Connect(context.Background()))
		snap := c.Snapshot()
		assert.Equal(t, Idle, snap.State)
		assert.Equal(t, w.Addr.Hex(), snap.Session.WalletAddress)
		assert.Equal(t, uint64(1), snap.Session.ChainID)
		assert.False(t, snap.Quote.Estimated)
	})

	failures := []struct {
		name string
		err  error
		want string
	}{
		{"rejection", errors.New("User rejected the request."), MsgConnectRejected},
		{"locked keystore", &wallet.Error{Kind: wallet.KindLocked, Err: errors.New("could not decrypt key with given password")}, MsgWalletLocked},
		{"no account", wallet.ErrNoAccount, MsgConnectWallet},
		{"wrong chain", &wallet.Error{Kind: wallet.KindWrongChain, Err: errors.New("unrecognized chain id 10")}, "Please switch to Ethereum Mainnet to mint"},
		{"rpc down", errors.New("failed to dial chain 1: connection refused"), MsgConnectFailed},
	}
	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			w := wallettest.New(1, big.NewInt(9))
			w.IsConnected = false
			w.ConnectErr = tc.err
			c, _ := newTestController(t, w, mintableProject())

			require.Error(t, c.Connect(context.Background()))
			snap := c.Snapshot()
			assert.Equal(t, Idle, snap.State)
			assert.Equal(t, tc.want, snap.Message)
			assert.NotEqual(t, MsgRejected, snap.Message)
			assert.True(t, snap.Error)
			assert.Empty(t, snap.Session.WalletAddress)
		})
	}
}

func TestClose_OwnedWalletIsClosed(t *testing.T) {
	owned := wallettest.New(1, big.NewInt(1))
	c := NewController(owned, &stubProjects{}, mintableProject(), Options{TargetChainID: 1, OwnsWallet: true})
	assert.Same(t, owned, c.Wallet())
	c.Close()
	assert.True(t, owned.Closed())

	shared := wallettest.New(1, big.NewInt(1))
	c = NewController(shared, &stubProjects{}, mintableProject(), Options{TargetChainID: 1})
	c.Close()
	assert.False(t, shared.Closed())
	assert.True(t, shared.Connected())
}

func TestEventsPublishedPerView(t *testing.T) {
	bus := EventBus.New()
	var (
		mu     sync.Mutex
		states []State
	)
	require.NoError(t, bus.Subscribe(Topic("view-1"), func(ev Event) {
		mu.Lock()
		states = append(states, ev.State)
		mu.Unlock()
	}))

	w := wallettest.New(137, big.NewInt(5))
	c := NewController(w, &stubProjects{}, mintableProject(), Options{
		ViewID:        "view-1",
		TargetChainID: 1,
		Bus:           bus,
	})
	defer c.Close()

	require.NoError(t, c.Mint(context.Background(), "Jane"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{SwitchingChain, Submitting, AwaitingConfirmation, Confirmed}, states)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting_confirmation", AwaitingConfirmation.String())
	assert.True(t, Submitting.Busy())
	assert.False(t, Confirmed.Busy())
	b, err := Failed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "failed", string(b))
}

func indexOf(items []string, s string) int {
	for i, v := range items {
		if v == s {
			return i
		}
	}
	return -1
}
