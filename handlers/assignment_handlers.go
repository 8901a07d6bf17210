package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/splitbill/splitbill-backend/models"
	"github.com/splitbill/splitbill-backend/services"
	"github.com/splitbill/splitbill-backend/utils"
)

// AssignmentHandler handles assignment-related HTTP requests
type AssignmentHandler struct {
	assignments *services.AssignmentService
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignments *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// Assign handles POST /assignments/assign
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var request models.AssignRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	assignment, err := h.assignments.Assign(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, assignment)
}

// Update handles POST /assignments/update
func (h *AssignmentHandler) Update(c *gin.Context) {
	var request models.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	assignment, err := h.assignments.Update(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, assignment)
}

// Unassign handles POST /assignments/unassign
func (h *AssignmentHandler) Unassign(c *gin.Context) {
	var request models.UnassignRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	if err := h.assignments.Unassign(c.Request.Context(), &request); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, gin.H{"message": "Assignment removed"})
}

// SplitEqually handles POST /assignments/splitEqually
func (h *AssignmentHandler) SplitEqually(c *gin.Context) {
	var request models.SplitEquallyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.HandleError(c, utils.NewBadRequestError("Invalid request"))
		return
	}

	assignments, err := h.assignments.SplitEqually(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, assignments)
}
