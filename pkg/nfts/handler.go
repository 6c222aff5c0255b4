package nfts

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"piximint/pkg/response"
)

// maxUploadBytes caps the source image accepted for a mint.
const maxUploadBytes = 10 << 20

type NFTHandler struct {
	service NFTService
}

func NewNFTHandler(service NFTService) *NFTHandler {
	return &NFTHandler{service: service}
}

func (h *NFTHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/nfts/mint", h.mint)
	router.GET("/nfts", h.listNFTs)
	router.GET("/nfts/:id", h.getNFT)
	router.GET("/nfts/minted-count", h.mintedCount)
}

// @Summary      Mint an NFT
// @Description  Pixelates the uploaded image, assigns rarity and price, burns one pixi token and creates the NFT record.
// @Tags         nfts
// @Accept       multipart/form-data
// @Produce      json
// @Param        creator_uuid formData string true "Creator profile UUID"
// @Param        image        formData file   true "Source image"
// @Success      201 {object} response.APIResponse{data=NFT}
// @Failure      400 {object} response.APIResponse "Invalid payload or image"
// @Failure      402 {object} response.APIResponse "Insufficient pixi tokens"
// @Failure      409 {object} response.APIResponse "Collection full or slot race lost"
// @Failure      502 {object} response.APIResponse "Image upload failed"
// @Failure      500 {object} response.APIResponse
// @Router       /nfts/mint [post]
func (h *NFTHandler) mint(c *gin.Context) {
	creatorUUID := c.PostForm("creator_uuid")
	if creatorUUID == "" {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "creator_uuid is required", nil)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "image file is required", nil)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "image exceeds 10MB limit", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "could not read image file", nil)
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "could not read image file", nil)
		return
	}

	nft, err := h.service.Mint(c.Request.Context(), creatorUUID, payload, filepath.Ext(fileHeader.Filename))
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientBalance):
			response.SendAPIResponse(c, http.StatusPaymentRequired, false, err.Error(), nil)
		case errors.Is(err, ErrSlotsExhausted):
			response.SendAPIResponse(c, http.StatusConflict, false, err.Error(), nil)
		case errors.Is(err, ErrSlotTaken):
			response.SendAPIResponse(c, http.StatusConflict, false, "slot race lost, please retry the mint", nil)
		case errors.Is(err, ErrImageTransformFailed):
			response.SendAPIResponse(c, http.StatusBadRequest, false, err.Error(), nil)
		case errors.Is(err, ErrStorageFailed):
			response.SendAPIResponse(c, http.StatusBadGateway, false, err.Error(), nil)
		default:
			response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		}
		return
	}

	response.SendAPIResponse(c, http.StatusCreated, true, "nft minted", nft)
}

// @Summary      List NFTs
// @Tags         nfts
// @Produce      json
// @Param        owner_uuid   query string false "Filter by owner"
// @Param        creator_uuid query string false "Filter by creator"
// @Param        rarity       query string false "Filter by rarity tier"
// @Param        page         query int    false "Page"
// @Param        limit        query int    false "Limit"
// @Success      200 {object} response.APIResponse{data=NFTList}
// @Router       /nfts [get]
func (h *NFTHandler) listNFTs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	var filters NFTFilters
	if v := c.Query("owner_uuid"); v != "" {
		filters.OwnerUUID = &v
	}
	if v := c.Query("creator_uuid"); v != "" {
		filters.CreatorUUID = &v
	}
	if v := c.Query("rarity"); v != "" {
		filters.Rarity = &v
	}

	items, total, err := h.service.ListNFTs(c.Request.Context(), filters, page, limit)
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "nfts fetched", NFTList{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary      Get NFT by ID
// @Tags         nfts
// @Produce      json
// @Param        id path int true "NFT ID"
// @Success      200 {object} response.APIResponse{data=NFT}
// @Failure      404 {object} response.APIResponse
// @Router       /nfts/{id} [get]
func (h *NFTHandler) getNFT(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid nft id", nil)
		return
	}

	nft, err := h.service.GetNFTByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNFTNotFound) {
			response.SendAPIResponse(c, http.StatusNotFound, false, "nft not found", nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "nft fetched", nft)
}

type mintedCountResponse struct {
	Minted int64 `json:"minted"`
	Max    int   `json:"max"`
}

// @Summary      Minted count
// @Tags         nfts
// @Produce      json
// @Success      200 {object} response.APIResponse{data=mintedCountResponse}
// @Router       /nfts/minted-count [get]
func (h *NFTHandler) mintedCount(c *gin.Context) {
	count, max, err := h.service.MintedCount(c.Request.Context())
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "minted count fetched", mintedCountResponse{
		Minted: count,
		Max:    max,
	})
}
