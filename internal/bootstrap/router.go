package bootstrap

import (
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/GoSim-25-26J-441/go-mint-studio/internal/api/http"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/auth"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/availability"
	dashhttp "github.com/GoSim-25-26J-441/go-mint-studio/internal/dashboard/http"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/directory"
	galleryhttp "github.com/GoSim-25-26J-441/go-mint-studio/internal/gallery/http"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/mint"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/session"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/views"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet"
)

// MintSettings are the per-deployment mint controller options.
type MintSettings struct {
	TargetChainID   uint64
	TargetChainName string
	ConfirmTimeout  time.Duration
	// WalletReplyTimeout bounds the wait for a browser wallet to answer.
	WalletReplyTimeout time.Duration
}

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	SecureCookie   bool

	Redis     *redis.Client
	Sessions  session.Service
	Directory *directory.Client
	Checker   *availability.Checker
	Chains    *wallet.Pool
	MintABI   abi.ABI
	// Wallets overrides the per-view browser wallets.
	Wallets    WalletFor
	Bus        EventBus.Bus
	Galleries  *views.Registry[*views.Gallery]
	Dashboards *views.Registry[*views.Dashboard]
	Mint       MintSettings
}

// WalletFor returns the wallet a view mints with. Owned wallets are closed
// with the view's controller.
type WalletFor func(viewID string) (w wallet.Wallet, owned bool)

// SharedWallet hands every view the same wallet. Only mintctl uses it: the
// operator's keystore must never be reachable from a web view.
func SharedWallet(w wallet.Wallet) WalletFor {
	return func(string) (wallet.Wallet, bool) {
		return w, false
	}
}

// BrowserWallets gives every view its own browser wallet session on the
// shared chain pool.
func BrowserWallets(chains *wallet.Pool, mintABI abi.ABI, bus wallet.Publisher, replyTimeout time.Duration) WalletFor {
	return func(viewID string) (wallet.Wallet, bool) {
		return wallet.NewBrowserSession(wallet.BrowserOptions{
			ViewID:       viewID,
			Pool:         chains,
			ContractABI:  mintABI,
			Bus:          bus,
			ReplyTimeout: replyTimeout,
		}), true
	}
}

// NewMintFactory builds mint controllers that publish on bus.
func NewMintFactory(walletFor WalletFor, projects mint.ProjectSource, bus mint.Publisher, s MintSettings) views.MintFactory {
	return func(project *domain.Project, viewID string) *mint.Controller {
		w, owned := walletFor(viewID)
		return mint.NewController(w, projects, project, mint.Options{
			ViewID:          viewID,
			TargetChainID:   s.TargetChainID,
			TargetChainName: s.TargetChainName,
			ConfirmTimeout:  s.ConfirmTimeout,
			Bus:             bus,
			OwnsWallet:      owned,
		})
	}
}

// DirectoryForToken scopes the shared backend client to an artist's token.
func DirectoryForToken(c *directory.Client) views.DirectoryFor {
	return func(token string) views.ArtistDirectory {
		return c.WithToken(token)
	}
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", auth.HeaderName, middleware.HeaderRequestID},
		ExposeHeaders:    []string{auth.HeaderName, middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var chainStatus httpapi.ChainStatus
	if dep.Chains != nil {
		chainStatus = dep.Chains
	}
	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Redis, chainStatus)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	galleryGroup := api.Group("/gallery")
	wallets := dep.Wallets
	if wallets == nil {
		wallets = BrowserWallets(dep.Chains, dep.MintABI, dep.Bus, dep.Mint.WalletReplyTimeout)
	}
	newMint := NewMintFactory(wallets, dep.Directory, dep.Bus, dep.Mint)
	galleryhttp.New(dep.Galleries, dep.Directory, newMint, dep.Bus).Register(galleryGroup)

	dashGroup := api.Group("/dashboard")
	dashGroup.Use(auth.WithSession(dep.Sessions, dep.SecureCookie))
	dashhttp.New(dep.Dashboards, dep.Sessions, DirectoryForToken(dep.Directory), dep.Checker).Register(dashGroup)

	return r
}
