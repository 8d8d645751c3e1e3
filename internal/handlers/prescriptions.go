package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"medilink-server/internal/middleware"
	"medilink-server/internal/services"
	"medilink-server/internal/utils"
)

// PrescriptionHandler handles prescription issuance, lookup and the
// collection-code redemption flow.
type PrescriptionHandler struct {
	Ledger *services.PrescriptionLedger
}

// NewPrescriptionHandler creates a new PrescriptionHandler.
func NewPrescriptionHandler(ledger *services.PrescriptionLedger) *PrescriptionHandler {
	return &PrescriptionHandler{Ledger: ledger}
}

// Get handles GET /prescriptions/:id. The record comes back redacted for the
// caller's role, and only when it is tied to the caller.
func (h *PrescriptionHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	view, err := h.Ledger.Fetch(userID, role, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			utils.BadRequest(c, "Invalid role")
		case errors.Is(err, services.ErrNotFound):
			utils.NotFound(c, "Prescription not found")
		default:
			utils.InternalServerError(c, "Failed to load prescription")
		}
		return
	}
	utils.Success(c, "Prescription fetched successfully", view)
}

// List handles GET /prescriptions, returning every prescription tied to the
// caller, redacted for their role.
func (h *PrescriptionHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	views, err := h.Ledger.List(userID, role)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRole) {
			utils.BadRequest(c, "Invalid role")
		} else {
			utils.InternalServerError(c, "Failed to load prescriptions")
		}
		return
	}
	utils.Success(c, "Prescriptions fetched successfully", views)
}

// CreatePrescriptionRequest represents the request body for issuing a
// prescription. PrescriptionID and CollectionCode are optional; missing ones
// are generated.
type CreatePrescriptionRequest struct {
	PrescriptionID string `json:"PrescriptionID"`
	PatientID      string `json:"PatientID" binding:"required"`
	PharmacyID     string `json:"PharmacyID" binding:"required"`
	MedicineName   string `json:"MedicineName" binding:"required"`
	Instructions   string `json:"Instructions"`
	DatePrescribed string `json:"DatePrescribed" binding:"required"` // YYYY-MM-DD
	DurationType   string `json:"DurationType" binding:"required"`
	CollectionCode string `json:"CollectionCode"`
}

// Create handles POST /prescriptions. The route is doctor-only; the issuing
// doctor is always the session user.
func (h *PrescriptionHandler) Create(c *gin.Context) {
	var req CreatePrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.DatePrescribed)
	if err != nil {
		utils.BadRequest(c, "DatePrescribed must be YYYY-MM-DD")
		return
	}

	doctorID, _ := middleware.GetUserIDFromContext(c)
	p, err := h.Ledger.Create(services.CreateInput{
		PrescriptionID: req.PrescriptionID,
		PatientID:      req.PatientID,
		DoctorID:       doctorID,
		PharmacyID:     req.PharmacyID,
		MedicineName:   req.MedicineName,
		Instructions:   req.Instructions,
		DatePrescribed: date,
		DurationType:   req.DurationType,
		CollectionCode: req.CollectionCode,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCode) {
			utils.BadRequest(c, "CollectionCode must be a 6-digit string")
			return
		}
		utils.InternalServerError(c, "Failed to create prescription")
		return
	}
	utils.Created(c, "Prescription created", gin.H{"prescriptionId": p.ID})
}

// RedeemRequest represents the request body for a redemption attempt.
type RedeemRequest struct {
	CollectionCode string `json:"CollectionCode" binding:"required"`
}

// Redeem handles DELETE /prescriptions/:id. The route is pharmacist-only and
// always answers 200 with a status string; a wrong code is a business no-op,
// not an error.
func (h *PrescriptionHandler) Redeem(c *gin.Context) {
	var req RedeemRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	pharmacyID, _ := middleware.GetUserIDFromContext(c)
	outcome, err := h.Ledger.Redeem(c.Param("id"), pharmacyID, req.CollectionCode)
	if err != nil {
		utils.InternalServerError(c, "Redemption failed")
		return
	}
	utils.Success(c, "Redemption processed", gin.H{"status": outcome.String()})
}
