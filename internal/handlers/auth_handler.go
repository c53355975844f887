package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	apperrors "khata/internal/errors"
	"khata/internal/middleware"
)

// AuthHandler handles app-unlock requests. The ledger is single-owner:
// unlocking with the configured passcode yields a bearer token for the
// data routes, the API analogue of the app's lock screen.
type AuthHandler struct {
	passcodeHash []byte
}

// NewAuthHandler creates a new AuthHandler from a bcrypt passcode hash.
func NewAuthHandler(passcodeHash []byte) *AuthHandler {
	return &AuthHandler{passcodeHash: passcodeHash}
}

// UnlockRequest carries the passcode attempt.
type UnlockRequest struct {
	Passcode string `json:"passcode" binding:"required"`
}

// Unlock verifies the passcode and issues an unlock token
// @Summary     Unlock the ledger
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body UnlockRequest true "Passcode"
// @Success     200 {object} map[string]string "Unlock token"
// @Failure     401 {object} ErrorResponse "Incorrect passcode"
// @Router      /unlock [post]
func (h *AuthHandler) Unlock(c *gin.Context) {
	var req UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	if bcrypt.CompareHashAndPassword(h.passcodeHash, []byte(req.Passcode)) != nil {
		respondWithError(c, apperrors.ErrInvalidPasscode)
		return
	}

	token, err := middleware.GenerateUnlockToken()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
