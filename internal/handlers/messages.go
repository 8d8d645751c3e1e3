package handlers

import (
	"github.com/gin-gonic/gin"

	"medilink-server/internal/middleware"
	"medilink-server/internal/models"
	"medilink-server/internal/services"
	"medilink-server/internal/utils"
)

// MessageHandler handles the encrypted doctor-patient message histories.
type MessageHandler struct {
	Vault *services.MessageVault
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(vault *services.MessageVault) *MessageHandler {
	return &MessageHandler{Vault: vault}
}

// authorize enforces the vault access rule: a patient may only touch their
// own history, a doctor must be enrolled with the patient. Returns false
// after writing the error response.
func (h *MessageHandler) authorize(c *gin.Context, patientID string) bool {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	switch role {
	case models.RolePatient:
		if userID != patientID {
			utils.Forbidden(c, "Patients may only access their own messages")
			return false
		}
	case models.RoleDoctor:
		enrolled, err := h.Vault.IsEnrolled(userID, patientID)
		if err != nil {
			utils.InternalServerError(c, "Failed to check enrollment")
			return false
		}
		if !enrolled {
			utils.Forbidden(c, "You are not enrolled with this patient")
			return false
		}
	default:
		utils.Forbidden(c, "Messaging is limited to patients and doctors")
		return false
	}
	return true
}

// GetHistory handles GET /messages/:patientID, returning the decrypted
// message list across the patient's enrollments.
func (h *MessageHandler) GetHistory(c *gin.Context) {
	patientID := c.Param("patientID")
	if !h.authorize(c, patientID) {
		return
	}

	messages, err := h.Vault.History(patientID)
	if err != nil {
		utils.InternalServerError(c, "Failed to load messages")
		return
	}
	utils.Success(c, "Messages fetched successfully", messages)
}

// AppendMessageRequest represents the request body for appending a message.
// Timestamp is opaque and preserved verbatim. DoctorID picks the thread when
// a patient is enrolled with several doctors; doctors always write to their
// own thread.
type AppendMessageRequest struct {
	Message   string `json:"message" binding:"required"`
	Timestamp string `json:"timestamp" binding:"required"`
	DoctorID  string `json:"doctorId"`
}

// Append handles POST /messages/:patientID.
func (h *MessageHandler) Append(c *gin.Context) {
	patientID := c.Param("patientID")
	if !h.authorize(c, patientID) {
		return
	}

	var req AppendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	doctorID := req.DoctorID
	if role == models.RoleDoctor {
		doctorID = userID
	}

	rows, err := h.Vault.Append(patientID, doctorID, userID, req.Message, req.Timestamp)
	if err != nil {
		utils.InternalServerError(c, "Failed to append message")
		return
	}
	if rows == 0 {
		utils.NotFound(c, "No enrollment found for this patient")
		return
	}
	utils.Success(c, "Message appended", gin.H{"appended": rows})
}
