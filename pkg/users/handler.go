package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"piximint/pkg/payments"
	"piximint/pkg/response"
)

type ProfileHandler struct {
	service ProfileService
}

func NewProfileHandler(service ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/profiles", h.register)
	router.POST("/profiles/login", h.login)
	router.GET("/profiles", h.listProfiles)
	router.GET("/profiles/:uuid", h.getProfile)
	router.PUT("/profiles/:uuid", h.updateProfile)
	router.POST("/profiles/:uuid/credits", h.buyCredits)
}

type registerRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	SolanaPublicKey string `json:"solana_public_key"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Username        string `json:"username" binding:"required"`
	Description     string `json:"description"`
	WebsiteURL      string `json:"website_url"`
	TwitterURL      string `json:"twitter_url"`
	AvatarURL       string `json:"avatar_url"`
	BannerURL       string `json:"banner_url"`
	SolanaPublicKey string `json:"solana_public_key"`
}

type buyCreditsRequest struct {
	Quantity    int64  `json:"quantity" binding:"required"`
	TxSignature string `json:"tx_signature" binding:"required"`
}

// @Summary      Register profile
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        request body registerRequest true "Register request"
// @Success      201 {object} response.APIResponse{data=Profile}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /profiles [post]
func (h *ProfileHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid request payload", nil)
		return
	}

	p, err := h.service.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.SolanaPublicKey)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
			response.SendAPIResponse(c, http.StatusConflict, false, err.Error(), nil)
			return
		}
		response.SendAPIResponse(c, http.StatusBadRequest, false, err.Error(), nil)
		return
	}
	response.SendAPIResponse(c, http.StatusCreated, true, "profile created", p)
}

// @Summary      Login
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        request body loginRequest true "Login request"
// @Success      200 {object} response.APIResponse{data=Profile}
// @Failure      401 {object} response.APIResponse
// @Router       /profiles/login [post]
func (h *ProfileHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid request payload", nil)
		return
	}

	p, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.SendAPIResponse(c, http.StatusUnauthorized, false, "invalid email or password", nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "login successful", p)
}

// @Summary      Get profile by UUID
// @Tags         profiles
// @Produce      json
// @Param        uuid path string true "Profile UUID"
// @Success      200 {object} response.APIResponse{data=Profile}
// @Failure      404 {object} response.APIResponse
// @Router       /profiles/{uuid} [get]
func (h *ProfileHandler) getProfile(c *gin.Context) {
	p, err := h.service.GetProfileByUUID(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			response.SendAPIResponse(c, http.StatusNotFound, false, "profile not found", nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "profile fetched", p)
}

// @Summary      Update profile
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        uuid path string true "Profile UUID"
// @Param        request body updateProfileRequest true "Update request"
// @Success      200 {object} response.APIResponse{data=Profile}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /profiles/{uuid} [put]
func (h *ProfileHandler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid request payload", nil)
		return
	}

	p, err := h.service.UpdateProfile(c.Request.Context(), Profile{
		UUID:            c.Param("uuid"),
		Username:        req.Username,
		Description:     req.Description,
		WebsiteURL:      req.WebsiteURL,
		TwitterURL:      req.TwitterURL,
		AvatarURL:       req.AvatarURL,
		BannerURL:       req.BannerURL,
		SolanaPublicKey: req.SolanaPublicKey,
	})
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			response.SendAPIResponse(c, http.StatusNotFound, false, "profile not found", nil)
			return
		}
		if errors.Is(err, ErrUsernameTaken) {
			response.SendAPIResponse(c, http.StatusConflict, false, err.Error(), nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "profile updated", p)
}

// @Summary      List profiles
// @Tags         profiles
// @Produce      json
// @Param        page  query int false "Page"
// @Param        limit query int false "Limit"
// @Success      200 {object} response.APIResponse{data=ProfileList}
// @Router       /profiles [get]
func (h *ProfileHandler) listProfiles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	items, total, err := h.service.ListProfiles(c.Request.Context(), page, limit)
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "profiles fetched", ProfileList{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary      Buy pixi tokens
// @Description  Credits the profile after verifying a Solana payment of quantity * 0.1 SOL to the platform wallet.
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        uuid    path string           true "Profile UUID"
// @Param        request body buyCreditsRequest true "Credit purchase"
// @Success      200 {object} response.APIResponse{data=Profile}
// @Failure      402 {object} response.APIResponse "Payment failed"
// @Failure      404 {object} response.APIResponse
// @Router       /profiles/{uuid}/credits [post]
func (h *ProfileHandler) buyCredits(c *gin.Context) {
	var req buyCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid request payload", nil)
		return
	}

	p, err := h.service.BuyCredits(c.Request.Context(), c.Param("uuid"), req.Quantity, req.TxSignature)
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileNotFound):
			response.SendAPIResponse(c, http.StatusNotFound, false, "profile not found", nil)
		case errors.Is(err, payments.ErrPaymentFailed):
			response.SendAPIResponse(c, http.StatusPaymentRequired, false, err.Error(), nil)
		case errors.Is(err, payments.ErrPaymentTimeout):
			response.SendAPIResponse(c, http.StatusGatewayTimeout, false, err.Error(), nil)
		default:
			response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		}
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "credits added", p)
}
