package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "khata/internal/errors"
	"khata/internal/services"
)

// TagHandler handles tag-related requests.
type TagHandler struct {
	tagService services.TagServicer
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService services.TagServicer) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// TagNameRequest carries a tag name for create and rename.
type TagNameRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

// CreateTag creates a tag from free text
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req TagNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	tag, err := h.tagService.CreateTag(req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

// ListTags lists all tags by recency of use
func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tagService.AllTags()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// ListRecentTags lists the recent-tags suggestion set
func (h *TagHandler) ListRecentTags(c *gin.Context) {
	tags, err := h.tagService.RecentTags()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// RenameTag renames a tag
func (h *TagHandler) RenameTag(c *gin.Context) {
	var req TagNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	tag, err := h.tagService.RenameTag(c.Param("id"), req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// DeleteTag removes a tag and its links, leaving transactions untouched
func (h *TagHandler) DeleteTag(c *gin.Context) {
	if err := h.tagService.DeleteTag(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTransactionTags lists the tags on a transaction
func (h *TagHandler) GetTransactionTags(c *gin.Context) {
	tags, err := h.tagService.TagsForTransaction(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// SetTransactionTagsRequest carries the replacement tag set.
type SetTransactionTagsRequest struct {
	TagIDs []string `json:"tag_ids"`
}

// SetTransactionTags replaces a transaction's tag set wholesale
// @Summary     Set a transaction's tags
// @Description Full replace: the given set becomes the transaction's tags; an empty set clears them.
// @Tags        tags
// @Accept      json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body SetTransactionTagsRequest true "Replacement tag set"
// @Success     204 "Tags replaced"
// @Failure     400 {object} ErrorResponse "Too many tags"
// @Router      /transactions/{id}/tags [put]
func (h *TagHandler) SetTransactionTags(c *gin.Context) {
	var req SetTransactionTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	if err := h.tagService.SetTagsForTransaction(c.Param("id"), req.TagIDs); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
