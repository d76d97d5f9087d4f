package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/mint"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/views"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/wallet"
)

// browserWallet is a view wallet that signs in the visitor's browser.
type browserWallet interface {
	Bind(address string, chainID uint64) error
	Pending() (wallet.Request, bool)
	Respond(r wallet.Reply) error
}

// ResolvePath reports which view a URL path opens.
func (h *Handler) ResolvePath(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"route": views.Resolve(c.Query("path"))})
}

// CreateView mounts a new gallery view at the given path. Load failures are
// part of the view state, so the view is returned either way.
func (h *Handler) CreateView(c *gin.Context) {
	var body createViewRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	g := views.NewGallery(uuid.NewString(), h.dir, h.newMint)
	_ = g.Mount(c.Request.Context(), body.Path)
	h.galleries.Put(g.ID(), g)

	c.JSON(http.StatusCreated, gin.H{"view": g.Snapshot()})
}

func (h *Handler) GetView(c *gin.Context) {
	g, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": g.Snapshot()})
}

func (h *Handler) DeleteView(c *gin.Context) {
	if !h.galleries.Delete(c.Param("view_id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "view not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SelectProject(c *gin.Context) {
	g, ok := h.view(c)
	if !ok {
		return
	}

	var body selectRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "artistName and projectName are required"})
		return
	}

	if err := g.Select(c.Request.Context(), body.ArtistName, body.ProjectName); errors.Is(err, views.ErrViewClosed) {
		c.JSON(http.StatusGone, gin.H{"error": "view closed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": g.Snapshot()})
}

// Back returns to the listing, which is fetched again every time.
func (h *Handler) Back(c *gin.Context) {
	g, ok := h.view(c)
	if !ok {
		return
	}
	if err := g.Back(c.Request.Context()); errors.Is(err, views.ErrViewClosed) {
		c.JSON(http.StatusGone, gin.H{"error": "view closed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": g.Snapshot()})
}

// ConnectWallet binds the visitor's browser account to the view's wallet
// and connects it.
func (h *Handler) ConnectWallet(c *gin.Context) {
	ctrl, ok := h.mintController(c)
	if !ok {
		return
	}

	var body connectRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if bw, ok := ctrl.Wallet().(browserWallet); ok && body.Address != "" {
		if err := bw.Bind(body.Address, body.ChainID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "a valid wallet address is required"})
			return
		}
	}

	if err := ctrl.Connect(c.Request.Context()); err != nil {
		writeMintError(c, err, ctrl)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mint": ctrl.Snapshot()})
}

func (h *Handler) SetAmount(c *gin.Context) {
	ctrl, ok := h.mintController(c)
	if !ok {
		return
	}

	var body amountRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var err error
	switch {
	case body.Amount != nil:
		err = ctrl.SetAmount(*body.Amount)
	case body.Delta > 0:
		err = ctrl.Increment()
	case body.Delta < 0:
		err = ctrl.Decrement()
	}
	if err != nil {
		writeMintError(c, err, ctrl)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mint": ctrl.Snapshot()})
}

func (h *Handler) Quote(c *gin.Context) {
	ctrl, ok := h.mintController(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": ctrl.Quote(c.Request.Context())})
}

// Mint starts a mint attempt and returns at once; progress arrives on the
// events stream or by polling the view.
func (h *Handler) Mint(c *gin.Context) {
	ctrl, ok := h.mintController(c)
	if !ok {
		return
	}

	var body mintRequest
	_ = c.ShouldBindJSON(&body)
	name := strings.TrimSpace(body.DisplayName)
	if name == "" {
		name = "Anonymous"
	}

	if err := ctrl.StartMint(c.Request.Context(), name); err != nil {
		writeMintError(c, err, ctrl)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"mint": ctrl.Snapshot()})
}

// PendingWalletRequest returns the request the browser wallet should act
// on next, or 204 when there is none.
func (h *Handler) PendingWalletRequest(c *gin.Context) {
	bw, ok := h.browserWallet(c)
	if !ok {
		return
	}
	req, pending := bw.Pending()
	if !pending {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// WalletReply delivers the browser wallet's answer to a pending request.
func (h *Handler) WalletReply(c *gin.Context) {
	bw, ok := h.browserWallet(c)
	if !ok {
		return
	}

	var body wallet.Reply
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "requestId is required"})
		return
	}
	if err := bw.Respond(body); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no pending wallet request with that id"})
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *Handler) browserWallet(c *gin.Context) (browserWallet, bool) {
	ctrl, ok := h.mintController(c)
	if !ok {
		return nil, false
	}
	bw, ok := ctrl.Wallet().(browserWallet)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "this view does not use a browser wallet"})
		return nil, false
	}
	return bw, true
}

func (h *Handler) view(c *gin.Context) (*views.Gallery, bool) {
	g, ok := h.galleries.Get(c.Param("view_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "view not found"})
		return nil, false
	}
	return g, true
}

func (h *Handler) mintController(c *gin.Context) (*mint.Controller, bool) {
	g, ok := h.view(c)
	if !ok {
		return nil, false
	}
	page := g.Page()
	if page == nil || page.Mint() == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "minting is not available for this view"})
		return nil, false
	}
	return page.Mint(), true
}

func writeMintError(c *gin.Context, err error, ctrl *mint.Controller) {
	snap := ctrl.Snapshot()
	msg := snap.Message
	if msg == "" {
		msg = mint.MsgMintFailed
	}

	switch {
	case errors.Is(err, mint.ErrMintInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "Please wait for the current mint to finish", "mint": snap})
	case errors.Is(err, mint.ErrClosed):
		c.JSON(http.StatusGone, gin.H{"error": "view closed"})
	case errors.Is(err, mint.ErrWalletNotConnected),
		errors.Is(err, mint.ErrContractNotFound),
		errors.Is(err, wallet.ErrNoAccount),
		errors.Is(err, mint.ErrPriceUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": msg, "mint": snap})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": msg, "mint": snap})
	}
}
