package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paisatrack/internal/cache"
	"paisatrack/internal/models"
	"paisatrack/internal/services"
)

// WalletHandler serves wallet CRUD endpoints.
type WalletHandler struct {
	wallets services.WalletServicer
	cache   cache.Service
}

// NewWalletHandler creates a wallet handler.
func NewWalletHandler(wallets services.WalletServicer, cache cache.Service) *WalletHandler {
	return &WalletHandler{wallets: wallets, cache: cache}
}

type createWalletRequest struct {
	Name           string `json:"name" binding:"required,min=1,max=100"`
	Type           string `json:"type" binding:"omitempty,wallet_type"`
	OpeningBalance int64  `json:"openingBalance" binding:"omitempty,min=0"`
}

type updateWalletRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=100"`
	Type           *string `json:"type" binding:"omitempty,wallet_type"`
	OpeningBalance *int64  `json:"openingBalance" binding:"omitempty,min=0"`
}

// Create godoc
// @Summary Create a wallet
// @Tags wallets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createWalletRequest true "Wallet details"
// @Success 201 {object} map[string]interface{}
// @Router /wallets [post]
func (h *WalletHandler) Create(c *gin.Context) {
	var req createWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	userID := getUserID(c)
	wallet, err := h.wallets.Create(c.Request.Context(), userID, services.CreateWalletInput{
		Name:           req.Name,
		Type:           models.WalletType(req.Type),
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.InvalidateUser(userID)
	statusCreated(c, wallet)
}

// List godoc
// @Summary List the user's wallets
// @Tags wallets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /wallets [get]
func (h *WalletHandler) List(c *gin.Context) {
	wallets, err := h.wallets.List(c.Request.Context(), getUserID(c))
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, wallets)
}

// Get godoc
// @Summary Get a wallet
// @Tags wallets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Wallet ID"
// @Success 200 {object} map[string]interface{}
// @Router /wallets/{id} [get]
func (h *WalletHandler) Get(c *gin.Context) {
	wallet, err := h.wallets.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, wallet)
}

// Update godoc
// @Summary Update a wallet
// @Tags wallets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Wallet ID"
// @Param request body updateWalletRequest true "Wallet fields"
// @Success 200 {object} map[string]interface{}
// @Router /wallets/{id} [put]
func (h *WalletHandler) Update(c *gin.Context) {
	var req updateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	var walletType *models.WalletType
	if req.Type != nil {
		t := models.WalletType(*req.Type)
		walletType = &t
	}

	userID := getUserID(c)
	wallet, err := h.wallets.Update(c.Request.Context(), userID, c.Param("id"), services.UpdateWalletInput{
		Name:           req.Name,
		Type:           walletType,
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.InvalidateUser(userID)
	respondSuccess(c, http.StatusOK, wallet)
}

// Delete godoc
// @Summary Delete an unused wallet
// @Tags wallets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Wallet ID"
// @Success 200 {object} map[string]interface{}
// @Router /wallets/{id} [delete]
func (h *WalletHandler) Delete(c *gin.Context) {
	userID := getUserID(c)
	if err := h.wallets.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	h.cache.InvalidateUser(userID)
	respondMessage(c, http.StatusOK, "Wallet deleted")
}
