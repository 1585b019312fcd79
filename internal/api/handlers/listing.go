package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/campusswap/backend/internal/models"
	"github.com/campusswap/backend/internal/services"
	"github.com/campusswap/backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	listingService *services.ListingService
}

func NewListingHandler(listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	listing, err := h.listingService.Create(c.Request.Context(), userID, req)
	if err != nil {
		utils.SendInternalError(c, "Failed to create listing", err)
		return
	}

	utils.SendCreated(c, "Listing created successfully", listing)
}

func (h *ListingHandler) GetListings(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	filter := services.ListingFilter{
		SkillTag: c.Query("skill"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	}

	listings, err := h.listingService.GetListings(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, services.ErrInvalidFilter) {
			utils.SendValidationError(c, err.Error())
			return
		}
		utils.SendInternalError(c, "Failed to retrieve listings", err)
		return
	}

	utils.SendSuccess(c, "Listings retrieved successfully", listings)
}

func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, err := strconv.ParseUint(c.Param("listing_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid listing ID")
		return
	}

	listing, err := h.listingService.GetListingByID(c.Request.Context(), uint(listingID))
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			utils.SendNotFound(c, "Listing not found")
			return
		}
		utils.SendInternalError(c, "Failed to retrieve listing", err)
		return
	}

	utils.SendSuccess(c, "Listing retrieved successfully", listing)
}

func (h *ListingHandler) MyListings(c *gin.Context) {
	userID := c.GetUint("user_id")

	listings, err := h.listingService.Mine(c.Request.Context(), userID)
	if err != nil {
		utils.SendInternalError(c, "Failed to retrieve listings", err)
		return
	}

	utils.SendSuccess(c, "Listings retrieved successfully", listings)
}

func (h *ListingHandler) UpdateListing(c *gin.Context) {
	userID := c.GetUint("user_id")

	listingID, err := strconv.ParseUint(c.Param("listing_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid listing ID")
		return
	}

	var req models.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	listing, err := h.listingService.Update(c.Request.Context(), uint(listingID), userID, req)
	if err != nil {
		h.sendListingError(c, err, "Failed to update listing")
		return
	}

	utils.SendSuccess(c, "Listing updated successfully", listing)
}

func (h *ListingHandler) DeactivateListing(c *gin.Context) {
	userID := c.GetUint("user_id")

	listingID, err := strconv.ParseUint(c.Param("listing_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid listing ID")
		return
	}

	if err := h.listingService.Deactivate(c.Request.Context(), uint(listingID), userID); err != nil {
		h.sendListingError(c, err, "Failed to deactivate listing")
		return
	}

	utils.SendSuccess(c, "Listing deactivated successfully", nil)
}

func (h *ListingHandler) UploadImage(c *gin.Context) {
	userID := c.GetUint("user_id")

	listingID, err := strconv.ParseUint(c.Param("listing_id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid listing ID")
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.SendValidationError(c, "image file is required")
		return
	}
	defer file.Close()

	image, err := h.listingService.UploadImage(c.Request.Context(), uint(listingID), userID, file, header)
	if err != nil {
		h.sendListingError(c, err, "Failed to upload image")
		return
	}

	utils.SendCreated(c, "Image uploaded successfully", image)
}

func (h *ListingHandler) sendListingError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrListingNotFound):
		utils.SendNotFound(c, "Listing not found")
	case errors.Is(err, services.ErrNotListingOwner):
		utils.SendForbidden(c, "Listing belongs to another user")
	case errors.Is(err, services.ErrDatabaseQuery):
		utils.SendInternalError(c, fallback, err)
	default:
		utils.SendError(c, http.StatusBadRequest, fallback, err)
	}
}
