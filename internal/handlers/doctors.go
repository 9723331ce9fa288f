package handlers

import (
	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/directory"
	"clinic-booking-server/internal/utils"
)

// DoctorHandler exposes the doctor directory for browsing and search.
type DoctorHandler struct {
	Directory *directory.Directory
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(dir *directory.Directory) *DoctorHandler {
	return &DoctorHandler{Directory: dir}
}

// GetDoctors returns every doctor regardless of availability.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	doctors, err := h.Directory.ListAll()
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors")
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetAvailableDoctors returns doctors currently accepting appointments,
// consumed by patient browse and booking.
func (h *DoctorHandler) GetAvailableDoctors(c *gin.Context) {
	doctors, err := h.Directory.ListAvailable()
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors")
		return
	}
	utils.Success(c, "Available doctors fetched successfully", doctors)
}

// SearchDoctors returns doctors whose specialty matches the query term.
func (h *DoctorHandler) SearchDoctors(c *gin.Context) {
	specialty := c.Query("specialty")
	if specialty == "" {
		utils.BadRequest(c, "specialty query parameter is required")
		return
	}
	doctors, err := h.Directory.Search(specialty)
	if err != nil {
		utils.InternalServerError(c, "Failed to search doctors")
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetDoctorByID returns a single doctor's public profile.
func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	doctor, err := h.Directory.GetByID(c.Param("id"))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}
