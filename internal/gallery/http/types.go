package http

import (
	"github.com/asaskevich/EventBus"
	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/views"
)

// Handler serves the public gallery views and their mint panels.
type Handler struct {
	galleries *views.Registry[*views.Gallery]
	dir       views.PublicDirectory
	newMint   views.MintFactory
	bus       EventBus.Bus
}

// New creates a new Handler
func New(galleries *views.Registry[*views.Gallery], dir views.PublicDirectory, newMint views.MintFactory, bus EventBus.Bus) *Handler {
	return &Handler{
		galleries: galleries,
		dir:       dir,
		newMint:   newMint,
		bus:       bus,
	}
}

type createViewRequest struct {
	Path string `json:"path"`
}

type selectRequest struct {
	ArtistName  string `json:"artistName" binding:"required"`
	ProjectName string `json:"projectName" binding:"required"`
}

// amountRequest either steps the amount by Delta (+1/-1) or sets it.
type amountRequest struct {
	Delta  int    `json:"delta"`
	Amount *int64 `json:"amount"`
}

type mintRequest struct {
	DisplayName string `json:"displayName"`
}

// connectRequest carries the account and chain the browser wallet reports.
type connectRequest struct {
	Address string `json:"address"`
	ChainID uint64 `json:"chainId"`
}

// Register registers the gallery routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/resolve", h.ResolvePath)
	rg.POST("/views", h.CreateView)
	rg.GET("/views/:view_id", h.GetView)
	rg.DELETE("/views/:view_id", h.DeleteView)
	rg.POST("/views/:view_id/select", h.SelectProject)
	rg.POST("/views/:view_id/back", h.Back)
	rg.GET("/views/:view_id/events", h.StreamViewEvents)

	rg.POST("/views/:view_id/mint/connect", h.ConnectWallet)
	rg.POST("/views/:view_id/mint/amount", h.SetAmount)
	rg.GET("/views/:view_id/mint/quote", h.Quote)
	rg.POST("/views/:view_id/mint", h.Mint)
	rg.GET("/views/:view_id/mint/wallet", h.PendingWalletRequest)
	rg.POST("/views/:view_id/mint/wallet", h.WalletReply)
}
