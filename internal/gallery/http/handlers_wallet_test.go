package http

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/mint"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/views"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet/contract"
)

const visitor = "0x00000000000000000000000000000000000000a1"

// node is a mainnet RPC that prices every mint at 0.01 ETH and has mined
// every transaction.
type node struct {
	bind.ContractBackend
	price []byte
}

func (n *node) ChainID(context.Context) (*big.Int, error) { return big.NewInt(1), nil }

func (n *node) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return n.price, nil
}

func (n *node) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	return &types.Receipt{TxHash: hash, Status: types.ReceiptStatusSuccessful}, nil
}

func (n *node) Close() {}

func setupBrowserEnv(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mintABI, err := contract.ParseMintABI()
	require.NoError(t, err)
	price, err := mintABI.Methods[contract.FnMintPrice].Outputs.Pack(big.NewInt(10_000_000_000_000_000))
	require.NoError(t, err)

	chains := wallet.NewPool(map[uint64]string{1: "mainnet"}, func(context.Context, string) (wallet.Backend, error) {
		return &node{price: price}, nil
	})
	t.Cleanup(chains.Close)

	dir := testDirectory()
	bus := EventBus.New()
	reg := views.NewRegistry[*views.Gallery](time.Hour)
	t.Cleanup(reg.CloseAll)

	factory := func(p *domain.Project, viewID string) *mint.Controller {
		w := wallet.NewBrowserSession(wallet.BrowserOptions{
			ViewID:       viewID,
			Pool:         chains,
			ContractABI:  mintABI,
			Bus:          bus,
			ReplyTimeout: 2 * time.Second,
			PollInterval: 5 * time.Millisecond,
		})
		return mint.NewController(w, dir, p, mint.Options{ViewID: viewID, TargetChainID: 1, Bus: bus, OwnsWallet: true})
	}

	r := gin.New()
	New(reg, dir, factory, bus).Register(r.Group("/api/v1/gallery"))
	return r
}

func TestBrowserWallet_MintSignedByVisitor(t *testing.T) {
	env := &testEnv{router: setupBrowserEnv(t)}
	_, body := env.do(t, http.MethodPost, "/api/v1/gallery/views", gin.H{"path": "/projects/jane-doe/my-art"})
	base := "/api/v1/gallery/views/" + decodeView(t, body["view"]).ID

	w, resp := env.do(t, http.MethodPost, base+"/mint/connect", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var msg string
	require.NoError(t, json.Unmarshal(resp["error"], &msg))
	assert.Equal(t, mint.MsgConnectWallet, msg)

	w, _ = env.do(t, http.MethodPost, base+"/mint/connect", gin.H{"address": "nope", "chainId": 1})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = env.do(t, http.MethodPost, base+"/mint/connect", gin.H{"address": visitor, "chainId": 1})
	require.Equal(t, http.StatusOK, w.Code)
	var snap struct {
		Session struct {
			WalletAddress string `json:"walletAddress"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(resp["mint"], &snap))
	assert.Equal(t, common.HexToAddress(visitor).Hex(), snap.Session.WalletAddress)

	w, _ = env.do(t, http.MethodGet, base+"/mint/wallet", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = env.do(t, http.MethodPost, base+"/mint", gin.H{"displayName": "Jane"})
	require.Equal(t, http.StatusAccepted, w.Code)

	var req wallet.Request
	require.Eventually(t, func() bool {
		w, resp := env.do(t, http.MethodGet, base+"/mint/wallet", nil)
		if w.Code != http.StatusOK {
			return false
		}
		require.NoError(t, json.Unmarshal(resp["request"], &req))
		return true
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, wallet.RequestSendTransaction, req.Kind)
	assert.Equal(t, common.HexToAddress(visitor).Hex(), req.From)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", req.To)
	require.NotNil(t, req.Value)
	assert.Equal(t, "10000000000000000", req.Value.ToInt().String())

	mintABI, err := contract.ParseMintABI()
	require.NoError(t, err)
	args, err := mintABI.Methods[contract.FnMint].Inputs.Unpack(req.Data[4:])
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(visitor), args[2])

	w, _ = env.do(t, http.MethodPost, base+"/mint/wallet", gin.H{"requestId": "stale", "txHash": common.HexToHash("0x01").Hex()})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = env.do(t, http.MethodPost, base+"/mint/wallet", gin.H{"requestId": req.ID, "txHash": common.HexToHash("0xbeef").Hex()})
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		_, body := env.do(t, http.MethodGet, base, nil)
		v := decodeView(t, body["view"])
		return v.Project != nil && v.Project.Mint != nil && v.Project.Mint.State == mint.Confirmed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBrowserWallet_RejectedInBrowser(t *testing.T) {
	env := &testEnv{router: setupBrowserEnv(t)}
	_, body := env.do(t, http.MethodPost, "/api/v1/gallery/views", gin.H{"path": "/projects/jane-doe/my-art"})
	base := "/api/v1/gallery/views/" + decodeView(t, body["view"]).ID

	w, _ := env.do(t, http.MethodPost, base+"/mint/connect", gin.H{"address": visitor, "chainId": 1})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = env.do(t, http.MethodPost, base+"/mint", gin.H{"displayName": "Jane"})
	require.Equal(t, http.StatusAccepted, w.Code)

	var req wallet.Request
	require.Eventually(t, func() bool {
		w, resp := env.do(t, http.MethodGet, base+"/mint/wallet", nil)
		if w.Code != http.StatusOK {
			return false
		}
		require.NoError(t, json.Unmarshal(resp["request"], &req))
		return true
	}, 2*time.Second, 5*time.Millisecond)

	w, _ = env.do(t, http.MethodPost, base+"/mint/wallet", gin.H{"requestId": req.ID, "error": "User rejected the request."})
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		_, body := env.do(t, http.MethodGet, base, nil)
		v := decodeView(t, body["view"])
		return v.Project != nil && v.Project.Mint != nil && v.Project.Mint.Message == mint.MsgRejected
	}, 2*time.Second, 10*time.Millisecond)
}
