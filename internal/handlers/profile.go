package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"medilink-server/internal/middleware"
	"medilink-server/internal/models"
	"medilink-server/internal/services"
	"medilink-server/internal/utils"
)

// ProfileHandler handles cross-role profile access and patient history
// updates.
type ProfileHandler struct {
	Profiles *services.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

// GetOther handles GET /profile/:role/:userID. Doctors may view patients and
// patients may view doctors; every other combination is forbidden. The
// userID segment may also be an email address.
func (h *ProfileHandler) GetOther(c *gin.Context) {
	targetRole, err := models.ParseRole(c.Param("role"))
	if err != nil {
		utils.BadRequest(c, "Unknown role: "+c.Param("role"))
		return
	}
	viewerRole, _ := middleware.GetUserRoleFromContext(c)

	acct, err := h.Profiles.Other(viewerRole, targetRole, c.Param("userID"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			utils.Forbidden(c, "You are not allowed to view this profile")
		case errors.Is(err, services.ErrNotFound):
			utils.NotFound(c, "Profile not found")
		default:
			utils.InternalServerError(c, "Failed to load profile")
		}
		return
	}
	utils.Success(c, "Profile fetched successfully", acct)
}

// UpdateHistoryRequest represents the request body for a history update.
type UpdateHistoryRequest struct {
	PatientHistory any `json:"PatientHistory" binding:"required"`
}

// UpdatePatientHistory handles PUT /profile/patient/:patientID. The route is
// doctor-only; the payload is stored in canonical JSON text form.
func (h *ProfileHandler) UpdatePatientHistory(c *gin.Context) {
	var req UpdateHistoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updated, err := h.Profiles.UpdatePatientHistory(c.Param("patientID"), req.PatientHistory)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Failed to update history")
		}
		return
	}
	utils.Success(c, "Patient history updated", gin.H{"updated": updated})
}

// DoctorPatients handles GET /doctor/patients: the caller's enrolled
// patients.
func (h *ProfileHandler) DoctorPatients(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)
	patients, err := h.Profiles.PatientsForDoctor(doctorID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch patients")
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

// PatientDoctors handles GET /patient/doctor: the doctors the caller is
// enrolled with.
func (h *ProfileHandler) PatientDoctors(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)
	doctors, err := h.Profiles.DoctorsForPatient(patientID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors")
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}
