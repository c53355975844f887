package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "khata/internal/errors"
	"khata/internal/services"
)

// PersonHandler handles person-related requests.
type PersonHandler struct {
	personService services.PersonServicer
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(personService services.PersonServicer) *PersonHandler {
	return &PersonHandler{personService: personService}
}

// CreatePersonRequest represents the request payload for creating a person
type CreatePersonRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Mobile      string `json:"mobile" binding:"max=20"`
	IsTemporary bool   `json:"is_temporary"`
}

// CreatePerson handles the creation of a new person
// @Summary     Create a person
// @Description Add a counterparty to the ledger. Temporary persons are auto-archived once settled.
// @Tags        persons
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePersonRequest true "Person details"
// @Success     201 {object} models.Person "Person created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /persons [post]
func (h *PersonHandler) CreatePerson(c *gin.Context) {
	var req CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	person, err := h.personService.CreatePerson(req.Name, req.Mobile, req.IsTemporary)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"person": person})
}

// ListPersons lists active persons with balances and last activity
// @Summary     List active persons
// @Tags        persons
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.PersonWithBalance
// @Router      /persons [get]
func (h *PersonHandler) ListPersons(c *gin.Context) {
	persons, err := h.personService.ListPersons(false)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"persons": persons})
}

// ListArchivedPersons lists archived persons with balances
// @Summary     List archived persons
// @Tags        persons
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.PersonWithBalance
// @Router      /persons/archived [get]
func (h *PersonHandler) ListArchivedPersons(c *gin.Context) {
	persons, err := h.personService.ListPersons(true)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"persons": persons})
}

// GetPerson returns one person with their balance
func (h *PersonHandler) GetPerson(c *gin.Context) {
	personID := c.Param("id")

	person, err := h.personService.GetPersonByID(personID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	balance, err := h.personService.PersonBalance(personID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"person": person, "balance": balance})
}

// UpdatePersonRequest represents the request payload for editing a person
type UpdatePersonRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Mobile string `json:"mobile" binding:"max=20"`
}

// UpdatePerson renames a person or updates their mobile number
func (h *PersonHandler) UpdatePerson(c *gin.Context) {
	var req UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	person, err := h.personService.UpdatePerson(c.Param("id"), req.Name, req.Mobile)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"person": person})
}

// ArchivePerson hides a person from the default listing
func (h *PersonHandler) ArchivePerson(c *gin.Context) {
	if err := h.personService.ArchivePerson(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnarchivePerson returns a person to the default listing
func (h *PersonHandler) UnarchivePerson(c *gin.Context) {
	if err := h.personService.UnarchivePerson(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeletePerson permanently deletes a person and their history
// @Summary     Delete a person
// @Description Irreversibly removes the person, their transactions, tag links, and settlements.
// @Tags        persons
// @Security    BearerAuth
// @Param       id path string true "Person ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Person not found"
// @Router      /persons/{id} [delete]
func (h *PersonHandler) DeletePerson(c *gin.Context) {
	if err := h.personService.DeletePerson(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
