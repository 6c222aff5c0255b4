package social

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"piximint/pkg/response"
)

type SocialHandler struct {
	service SocialService
}

func NewSocialHandler(service SocialService) *SocialHandler {
	return &SocialHandler{service: service}
}

func (h *SocialHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/profiles/:uuid/follow", h.follow)
	router.DELETE("/profiles/:uuid/follow", h.unfollow)
	router.GET("/profiles/:uuid/follow-stats", h.followStats)
	router.POST("/nfts/:id/like", h.like)
	router.DELETE("/nfts/:id/like", h.unlike)
	router.GET("/leaderboard", h.leaderboard)
}

type followRequest struct {
	FollowerUUID string `json:"follower_uuid" binding:"required"`
}

// @Summary      Follow a profile
// @Tags         social
// @Accept       json
// @Produce      json
// @Param        uuid    path string        true "Profile UUID to follow"
// @Param        request body followRequest true "Follower"
// @Success      201 {object} response.APIResponse{data=Follow}
// @Failure      400 {object} response.APIResponse "Self follow or bad payload"
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse "Already following"
// @Router       /profiles/{uuid}/follow [post]
func (h *SocialHandler) follow(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "follower_uuid is required", nil)
		return
	}

	follow, err := h.service.Follow(c.Request.Context(), req.FollowerUUID, c.Param("uuid"))
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfFollow):
			response.SendAPIResponse(c, http.StatusBadRequest, false, err.Error(), nil)
		case errors.Is(err, ErrAlreadyFollowing):
			response.SendAPIResponse(c, http.StatusConflict, false, err.Error(), nil)
		case errors.Is(err, ErrTargetNotFound):
			response.SendAPIResponse(c, http.StatusNotFound, false, "profile not found", nil)
		default:
			response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		}
		return
	}

	response.SendAPIResponse(c, http.StatusCreated, true, "profile followed", follow)
}

// @Summary      Unfollow a profile
// @Tags         social
// @Accept       json
// @Produce      json
// @Param        uuid    path string        true "Profile UUID to unfollow"
// @Param        request body followRequest true "Follower"
// @Success      200 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse "Not following"
// @Router       /profiles/{uuid}/follow [delete]
func (h *SocialHandler) unfollow(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "follower_uuid is required", nil)
		return
	}

	if err := h.service.Unfollow(c.Request.Context(), req.FollowerUUID, c.Param("uuid")); err != nil {
		if errors.Is(err, ErrNotFollowing) {
			response.SendAPIResponse(c, http.StatusConflict, false, err.Error(), nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}

	response.SendAPIResponse(c, http.StatusOK, true, "profile unfollowed", nil)
}

// @Summary      Follower and following counts
// @Tags         social
// @Produce      json
// @Param        uuid path string true "Profile UUID"
// @Success      200 {object} response.APIResponse{data=FollowStats}
// @Router       /profiles/{uuid}/follow-stats [get]
func (h *SocialHandler) followStats(c *gin.Context) {
	stats, err := h.service.FollowStats(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "follow stats fetched", stats)
}

type likeRequest struct {
	UserUUID string `json:"user_uuid" binding:"required"`
}

// @Summary      Like an NFT
// @Tags         social
// @Accept       json
// @Produce      json
// @Param        id      path int         true "NFT ID"
// @Param        request body likeRequest true "Liker"
// @Success      201 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse "Already liked"
// @Router       /nfts/{id}/like [post]
func (h *SocialHandler) like(c *gin.Context) {
	nftID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || nftID <= 0 {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid nft id", nil)
		return
	}

	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "user_uuid is required", nil)
		return
	}

	if err := h.service.Like(c.Request.Context(), nftID, req.UserUUID); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyLiked):
			response.SendAPIResponse(c, http.StatusConflict, false, err.Error(), nil)
		case errors.Is(err, ErrTargetNotFound):
			response.SendAPIResponse(c, http.StatusNotFound, false, "nft not found", nil)
		default:
			response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		}
		return
	}

	response.SendAPIResponse(c, http.StatusCreated, true, "nft liked", nil)
}

// @Summary      Unlike an NFT
// @Tags         social
// @Accept       json
// @Produce      json
// @Param        id      path int         true "NFT ID"
// @Param        request body likeRequest true "Liker"
// @Success      200 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse "Not liked"
// @Router       /nfts/{id}/like [delete]
func (h *SocialHandler) unlike(c *gin.Context) {
	nftID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || nftID <= 0 {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "invalid nft id", nil)
		return
	}

	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "user_uuid is required", nil)
		return
	}

	if err := h.service.Unlike(c.Request.Context(), nftID, req.UserUUID); err != nil {
		if errors.Is(err, ErrNotLiked) {
			response.SendAPIResponse(c, http.StatusConflict, false, err.Error(), nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}

	response.SendAPIResponse(c, http.StatusOK, true, "nft unliked", nil)
}

// @Summary      Collector leaderboard
// @Description  Top profiles ranked by owned NFT count, then by total likes across their collection.
// @Tags         social
// @Produce      json
// @Param        limit query int false "Max entries (default 10, max 100)"
// @Success      200 {object} response.APIResponse{data=[]LeaderboardEntry}
// @Router       /leaderboard [get]
func (h *SocialHandler) leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.service.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "leaderboard fetched", entries)
}
