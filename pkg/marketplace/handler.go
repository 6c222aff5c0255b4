package marketplace

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"piximint/pkg/nfts"
	"piximint/pkg/payments"
	"piximint/pkg/response"
)

type MarketplaceHandler struct {
	service MarketplaceService
}

func NewMarketplaceHandler(service MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{service: service}
}

func (h *MarketplaceHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/listings", h.list)
	router.GET("/listings", h.listActive)
	router.GET("/listings/:id", h.getListing)
	router.PATCH("/listings/:id/delist", h.delist)
	router.POST("/listings/:id/buy", h.buy)
	router.GET("/nfts/:id/listing", h.getListingForNFT)
}

type listRequest struct {
	NFTID          int64   `json:"nft_id" binding:"required"`
	SellerUUID     string  `json:"seller_uuid" binding:"required"`
	ListPriceSol   float64 `json:"list_price_sol" binding:"required"`
	FeeTxSignature string  `json:"fee_tx_signature" binding:"required"`
}

type delistRequest struct {
	SellerUUID string `json:"seller_uuid" binding:"required"`
}

type buyRequest struct {
	BuyerUUID   string `json:"buyer_uuid" binding:"required"`
	TxSignature string `json:"tx_signature" binding:"required"`
}

// @Summary      List an NFT for sale
// @Description  Creates an active listing after verifying the listing-fee payment to the platform wallet.
// @Tags         marketplace
// @Accept       json
// @Produce      json
// @Param        request body listRequest true "Listing request"
// @Success      201 {object} response.APIResponse{data=Listing}
// @Failure      400 {object} response.APIResponse
// @Failure      402 {object} response.APIResponse "Fee payment failed"
// @Failure      403 {object} response.APIResponse "Caller is not the owner"
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse "Already listed"
// @Router       /listings [post]
func (h *MarketplaceHandler) list(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid request payload", nil)
		return
	}

	listing, err := h.service.List(c.Request.Context(), req.NFTID, req.SellerUUID, req.ListPriceSol, req.FeeTxSignature)
	if err != nil {
		switch {
		case errors.Is(err, nfts.ErrNFTNotFound):
			response.SendAPIResponse(c, http.StatusNotFound, false, "nft not found", nil)
		case errors.Is(err, ErrNotOwner):
			response.SendAPIResponse(c, http.StatusForbidden, false, err.Error(), nil)
		case errors.Is(err, ErrAlreadyListed):
			response.SendAPIResponse(c, http.StatusConflict, false, err.Error(), nil)
		case errors.Is(err, payments.ErrPaymentFailed):
			response.SendAPIResponse(c, http.StatusPaymentRequired, false, err.Error(), nil)
		case errors.Is(err, payments.ErrPaymentTimeout):
			response.SendAPIResponse(c, http.StatusGatewayTimeout, false, err.Error(), nil)
		default:
			response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		}
		return
	}

	response.SendAPIResponse(c, http.StatusCreated, true, "nft listed", listing)
}

// @Summary      Delist an NFT
// @Tags         marketplace
// @Accept       json
// @Produce      json
// @Param        id      path int           true "Listing ID"
// @Param        request body delistRequest true "Delist request"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse "Caller is not the seller"
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse "Listing already closed"
// @Router       /listings/{id}/delist [patch]
func (h *MarketplaceHandler) delist(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid listing id", nil)
		return
	}

	var req delistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid request payload", nil)
		return
	}

	if err := h.service.Delist(c.Request.Context(), id, req.SellerUUID); err != nil {
		switch {
		case errors.Is(err, ErrListingNotFound):
			response.SendAPIResponse(c, http.StatusNotFound, false, "listing not found", nil)
		case errors.Is(err, ErrNotSeller):
			response.SendAPIResponse(c, http.StatusForbidden, false, err.Error(), nil)
		case errors.Is(err, ErrNotListed):
			response.SendAPIResponse(c, http.StatusConflict, false, err.Error(), nil)
		default:
			response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		}
		return
	}

	response.SendAPIResponse(c, http.StatusOK, true, "nft delisted", nil)
}

// @Summary      Buy a listed NFT
// @Description  Verifies the buyer's payment of the list price, transfers ownership and closes the listing.
// @Tags         marketplace
// @Accept       json
// @Produce      json
// @Param        id      path int        true "Listing ID"
// @Param        request body buyRequest true "Buy request"
// @Success      200 {object} response.APIResponse{data=Listing}
// @Failure      400 {object} response.APIResponse "Self purchase"
// @Failure      402 {object} response.APIResponse "Payment failed, nothing changed"
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse "Listing no longer active"
// @Failure      502 {object} response.APIResponse "Payment confirmed but local update failed"
// @Router       /listings/{id}/buy [post]
func (h *MarketplaceHandler) buy(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid listing id", nil)
		return
	}

	var req buyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid request payload", nil)
		return
	}

	listing, err := h.service.Buy(c.Request.Context(), id, req.BuyerUUID, req.TxSignature)
	if err != nil {
		switch {
		case errors.Is(err, ErrListingNotFound):
			response.SendAPIResponse(c, http.StatusNotFound, false, "listing not found", nil)
		case errors.Is(err, ErrNotListed):
			response.SendAPIResponse(c, http.StatusConflict, false, err.Error(), nil)
		case errors.Is(err, ErrSelfPurchase):
			response.SendAPIResponse(c, http.StatusBadRequest, false, err.Error(), nil)
		case errors.Is(err, payments.ErrPaymentFailed):
			response.SendAPIResponse(c, http.StatusPaymentRequired, false, err.Error(), nil)
		case errors.Is(err, payments.ErrPaymentTimeout):
			response.SendAPIResponse(c, http.StatusGatewayTimeout, false, err.Error(), nil)
		case errors.Is(err, ErrOwnershipUpdateFailed), errors.Is(err, ErrListingCloseFailed):
			response.SendAPIResponse(c, http.StatusBadGateway, false, err.Error(), nil)
		default:
			response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		}
		return
	}

	response.SendAPIResponse(c, http.StatusOK, true, "nft purchased", listing)
}

// @Summary      Get listing by ID
// @Tags         marketplace
// @Produce      json
// @Param        id path int true "Listing ID"
// @Success      200 {object} response.APIResponse{data=Listing}
// @Failure      404 {object} response.APIResponse
// @Router       /listings/{id} [get]
func (h *MarketplaceHandler) getListing(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid listing id", nil)
		return
	}

	listing, err := h.service.GetListingByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrListingNotFound) {
			response.SendAPIResponse(c, http.StatusNotFound, false, "listing not found", nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "listing fetched", listing)
}

// @Summary      Get active listing for an NFT
// @Tags         marketplace
// @Produce      json
// @Param        id path int true "NFT ID"
// @Success      200 {object} response.APIResponse{data=Listing}
// @Failure      404 {object} response.APIResponse "No active listing"
// @Router       /nfts/{id}/listing [get]
func (h *MarketplaceHandler) getListingForNFT(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid nft id", nil)
		return
	}

	listing, err := h.service.GetActiveListingByNFT(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotListed) {
			response.SendAPIResponse(c, http.StatusNotFound, false, "nft is not listed", nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "listing fetched", listing)
}

// @Summary      List active listings
// @Tags         marketplace
// @Produce      json
// @Param        page  query int false "Page"
// @Param        limit query int false "Limit"
// @Success      200 {object} response.APIResponse{data=ListingList}
// @Router       /listings [get]
func (h *MarketplaceHandler) listActive(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	items, total, err := h.service.ListActiveListings(c.Request.Context(), page, limit)
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "listings fetched", ListingList{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
