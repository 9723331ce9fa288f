package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-booking-server/internal/directory"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/scheduling"
	"clinic-booking-server/internal/stats"
	"clinic-booking-server/internal/utils"
)

// AdminHandler serves the admin dashboard: stats, full listings and the two
// toggle mutations. All routes behind it are ADMIN-gated.
type AdminHandler struct {
	DB        *gorm.DB
	Directory *directory.Directory
	Engine    *scheduling.Engine
	Stats     *stats.Aggregator
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *gorm.DB, dir *directory.Directory, engine *scheduling.Engine, agg *stats.Aggregator) *AdminHandler {
	return &AdminHandler{DB: db, Directory: dir, Engine: engine, Stats: agg}
}

// GetStats returns the dashboard counters.
func (h *AdminHandler) GetStats(c *gin.Context) {
	snap, err := h.Stats.Collect()
	if err != nil {
		utils.InternalServerError(c, "Failed to compute stats")
		return
	}
	utils.Success(c, "Stats fetched successfully", snap)
}

// GetUsers returns every user account.
func (h *AdminHandler) GetUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("created_at desc").Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users")
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}
	utils.Success(c, "Users fetched successfully", sanitized)
}

// GetDoctors returns every doctor with profile fields.
func (h *AdminHandler) GetDoctors(c *gin.Context) {
	doctors, err := h.Directory.ListAll()
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors")
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetAppointments returns the whole appointment ledger.
func (h *AdminHandler) GetAppointments(c *gin.Context) {
	appts, err := h.Engine.ListAll()
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments")
		return
	}
	utils.Success(c, "Appointments fetched successfully", appts)
}

// ToggleDoctorAvailability flips a doctor's availability. The new state is
// recorded explicitly along with who set it and when; existing appointments
// are untouched.
func (h *AdminHandler) ToggleDoctorAvailability(c *gin.Context) {
	adminID, _ := middleware.GetUserIDFromContext(c)

	profile, err := h.Directory.Profile(c.Param("id"))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	updated, err := h.Directory.SetAvailability(profile.UserID, !profile.Available, adminID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Doctor availability updated", gin.H{"available": updated.Available})
}

// ToggleUserActive flips a user's active flag. Deactivated users keep their
// records but can no longer log in.
func (h *AdminHandler) ToggleUserActive(c *gin.Context) {
	adminID, _ := middleware.GetUserIDFromContext(c)

	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	now := time.Now()
	user.Active = !user.Active
	user.ActiveSetBy = adminID
	user.ActiveSetAt = &now
	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user")
		return
	}

	utils.Success(c, "User status updated", gin.H{"active": user.Active})
}
