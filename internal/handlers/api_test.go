package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/routes"
)

const everyDay = "MONDAY,TUESDAY,WEDNESDAY,THURSDAY,FRIDAY,SATURDAY,SUNDAY"

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:api_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	cfg := &config.Config{
		Port:                 "0",
		JWTSecret:            "test-secret-123",
		JWTExpirationMinutes: 60,
		Environment:          "test",
	}

	router := gin.New()
	routes.SetupRoutes(router, db, cfg)
	return &testServer{t: t, router: router, db: db}
}

func (s *testServer) request(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (s *testServer) register(body gin.H) envelope {
	s.t.Helper()
	w, env := s.request(http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(s.t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())
	return env
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	w, env := s.request(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	var data struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.AccessToken
}

func (s *testServer) registerPatient(email string) string {
	s.t.Helper()
	s.register(gin.H{
		"firstName": "Pat", "lastName": "Ient",
		"email": email, "password": "patient123", "role": "PATIENT",
	})
	return s.login(email, "patient123")
}

// registerDoctor returns the doctor's id and token.
func (s *testServer) registerDoctor(email string) (string, string) {
	s.t.Helper()
	env := s.register(gin.H{
		"firstName": "Doc", "lastName": "Tor",
		"email": email, "password": "doctor123", "role": "DOCTOR",
		"specialty": "Cardiology", "workingDays": everyDay, "workingHours": "09:00-17:00",
	})
	var data struct {
		ID string `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.ID, s.login(email, "doctor123")
}

// seedAdmin creates an admin directly; admin accounts are not open for
// self-registration.
func (s *testServer) seedAdmin(email string) string {
	s.t.Helper()
	admin := &models.User{
		FirstName: "Admin", LastName: "Clinic",
		Email: email, Role: models.RoleAdmin, Active: true,
	}
	require.NoError(s.t, admin.SetPassword("admin123"))
	require.NoError(s.t, s.db.Create(admin).Error)
	return s.login(email, "admin123")
}

func futureDate(daysAhead int) string {
	return time.Now().AddDate(0, 0, daysAhead).Format("2006-01-02")
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	s.register(gin.H{
		"firstName": "Pat", "lastName": "Ient",
		"email": "pat@clinic.test", "password": "patient123", "role": "PATIENT",
	})

	t.Run("duplicate email", func(t *testing.T) {
		w, _ := s.request(http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"firstName": "Pat", "lastName": "Again",
			"email": "pat@clinic.test", "password": "patient123", "role": "PATIENT",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("doctor without specialty", func(t *testing.T) {
		w, _ := s.request(http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"firstName": "Doc", "lastName": "Tor",
			"email": "doc@clinic.test", "password": "doctor123", "role": "DOCTOR",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("admin role not self-registerable", func(t *testing.T) {
		w, _ := s.request(http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"firstName": "Sneaky", "lastName": "Admin",
			"email": "sneak@clinic.test", "password": "admin123", "role": "ADMIN",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.registerPatient("login@clinic.test")

	t.Run("wrong password", func(t *testing.T) {
		w, _ := s.request(http.MethodPost, "/api/v1/auth/login", "", gin.H{
			"email": "login@clinic.test", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("profile round trip", func(t *testing.T) {
		token := s.login("login@clinic.test", "patient123")
		w, env := s.request(http.MethodGet, "/api/v1/auth/profile", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var user models.UserSanitized
		require.NoError(t, json.Unmarshal(env.Data, &user))
		assert.Equal(t, "login@clinic.test", user.Email)
		assert.Equal(t, models.RolePatient, user.Role)
	})
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t)
	doctorID, doctorToken := s.registerDoctor("dr.flow@clinic.test")
	patientToken := s.registerPatient("pat.flow@clinic.test")
	otherPatient := s.registerPatient("pat.other@clinic.test")

	bookBody := gin.H{
		"doctorId":        doctorID,
		"appointmentDate": futureDate(1),
		"appointmentTime": "09:00",
		"patientNotes":    "first visit",
	}

	t.Run("unauthenticated", func(t *testing.T) {
		w, _ := s.request(http.MethodPost, "/api/v1/appointments/book", "", bookBody)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("doctors cannot book", func(t *testing.T) {
		w, _ := s.request(http.MethodPost, "/api/v1/appointments/book", doctorToken, bookBody)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	var apptID string
	t.Run("patient books", func(t *testing.T) {
		w, env := s.request(http.MethodPost, "/api/v1/appointments/book", patientToken, bookBody)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var appt models.Appointment
		require.NoError(t, json.Unmarshal(env.Data, &appt))
		assert.Equal(t, models.StatusPending, appt.Status)
		apptID = appt.ID
	})

	t.Run("slot conflict", func(t *testing.T) {
		w, _ := s.request(http.MethodPost, "/api/v1/appointments/book", otherPatient, bookBody)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid slot", func(t *testing.T) {
		w, _ := s.request(http.MethodPost, "/api/v1/appointments/book", patientToken, gin.H{
			"doctorId":        doctorID,
			"appointmentDate": futureDate(1),
			"appointmentTime": "12:00",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("past date", func(t *testing.T) {
		w, _ := s.request(http.MethodPost, "/api/v1/appointments/book", patientToken, gin.H{
			"doctorId":        doctorID,
			"appointmentDate": futureDate(-1),
			"appointmentTime": "09:30",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("patient cannot confirm", func(t *testing.T) {
		w, _ := s.request(http.MethodPut, "/api/v1/appointments/confirm/"+apptID, patientToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		w, _ := s.request(http.MethodPut, "/api/v1/appointments/cancel/"+apptID, otherPatient, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("doctor confirms", func(t *testing.T) {
		w, env := s.request(http.MethodPut, "/api/v1/appointments/confirm/"+apptID, doctorToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var appt models.Appointment
		require.NoError(t, json.Unmarshal(env.Data, &appt))
		assert.Equal(t, models.StatusConfirmed, appt.Status)
	})

	t.Run("doctor completes with notes", func(t *testing.T) {
		w, env := s.request(http.MethodPut, "/api/v1/appointments/complete/"+apptID, doctorToken,
			gin.H{"doctorNotes": "all good"})
		require.Equal(t, http.StatusOK, w.Code)

		var appt models.Appointment
		require.NoError(t, json.Unmarshal(env.Data, &appt))
		assert.Equal(t, models.StatusCompleted, appt.Status)
		assert.Equal(t, "all good", appt.DoctorNotes)
	})

	t.Run("reject after completion is illegal", func(t *testing.T) {
		w, _ := s.request(http.MethodPut, "/api/v1/appointments/reject/"+apptID, doctorToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		w, _ := s.request(http.MethodPut, "/api/v1/appointments/cancel/no-such-id", patientToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("my appointments", func(t *testing.T) {
		w, env := s.request(http.MethodGet, "/api/v1/appointments/my", patientToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var appts []models.Appointment
		require.NoError(t, json.Unmarshal(env.Data, &appts))
		require.Len(t, appts, 1)
		assert.Equal(t, apptID, appts[0].ID)

		// The other patient sees nothing.
		_, env = s.request(http.MethodGet, "/api/v1/appointments/my", otherPatient, nil)
		require.NoError(t, json.Unmarshal(env.Data, &appts))
		assert.Empty(t, appts)
	})

	t.Run("detail access", func(t *testing.T) {
		w, _ := s.request(http.MethodGet, "/api/v1/appointments/"+apptID, doctorToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w, _ = s.request(http.MethodGet, "/api/v1/appointments/"+apptID, otherPatient, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	doctorID, _ := s.registerDoctor("dr.admin@clinic.test")
	patientToken := s.registerPatient("pat.admin@clinic.test")
	adminToken := s.seedAdmin("admin@clinic.test")

	_, env := s.request(http.MethodPost, "/api/v1/appointments/book", patientToken, gin.H{
		"doctorId":        doctorID,
		"appointmentDate": futureDate(1),
		"appointmentTime": "10:00",
	})
	var appt models.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &appt))

	t.Run("non-admin is rejected", func(t *testing.T) {
		for _, path := range []string{"/api/v1/admin/stats", "/api/v1/admin/users", "/api/v1/admin/appointments"} {
			w, _ := s.request(http.MethodGet, path, patientToken, nil)
			assert.Equal(t, http.StatusForbidden, w.Code, path)
		}
	})

	t.Run("stats are consistent", func(t *testing.T) {
		w, env := s.request(http.MethodGet, "/api/v1/admin/stats", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var snap struct {
			TotalPatients         int64 `json:"totalPatients"`
			TotalDoctors          int64 `json:"totalDoctors"`
			TotalAppointments     int64 `json:"totalAppointments"`
			PendingAppointments   int64 `json:"pendingAppointments"`
			ConfirmedAppointments int64 `json:"confirmedAppointments"`
			CompletedAppointments int64 `json:"completedAppointments"`
			CancelledAppointments int64 `json:"cancelledAppointments"`
			RejectedAppointments  int64 `json:"rejectedAppointments"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &snap))
		assert.Equal(t, int64(1), snap.TotalPatients)
		assert.Equal(t, int64(1), snap.TotalDoctors)
		sum := snap.PendingAppointments + snap.ConfirmedAppointments +
			snap.CompletedAppointments + snap.CancelledAppointments + snap.RejectedAppointments
		assert.Equal(t, snap.TotalAppointments, sum)
	})

	t.Run("admin sees all appointments", func(t *testing.T) {
		w, env := s.request(http.MethodGet, "/api/v1/admin/appointments", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var appts []models.Appointment
		require.NoError(t, json.Unmarshal(env.Data, &appts))
		assert.Len(t, appts, 1)
	})

	t.Run("admin cannot transition appointments", func(t *testing.T) {
		w, _ := s.request(http.MethodPut, "/api/v1/appointments/confirm/"+appt.ID, adminToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("toggle doctor availability", func(t *testing.T) {
		w, _ := s.request(http.MethodPut, "/api/v1/admin/doctors/"+doctorID+"/toggle-availability", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		// Disabled doctor disappears from patient browse...
		w, env := s.request(http.MethodGet, "/api/v1/doctors/available", patientToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var doctors []json.RawMessage
		require.NoError(t, json.Unmarshal(env.Data, &doctors))
		assert.Empty(t, doctors)

		// ...new bookings are refused...
		w, _ = s.request(http.MethodPost, "/api/v1/appointments/book", patientToken, gin.H{
			"doctorId":        doctorID,
			"appointmentDate": futureDate(1),
			"appointmentTime": "11:00",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		// ...but the existing appointment is still visible and actionable.
		doctorToken := s.login("dr.admin@clinic.test", "doctor123")
		w, _ = s.request(http.MethodPut, "/api/v1/appointments/confirm/"+appt.ID, doctorToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("toggle user active blocks login", func(t *testing.T) {
		var patient models.User
		require.NoError(t, s.db.Where("email = ?", "pat.admin@clinic.test").First(&patient).Error)

		w, _ := s.request(http.MethodPut, "/api/v1/admin/users/"+patient.ID+"/toggle-active", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w, _ = s.request(http.MethodPost, "/api/v1/auth/login", "", gin.H{
			"email": "pat.admin@clinic.test", "password": "patient123",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDoctorBrowsing(t *testing.T) {
	s := newTestServer(t)
	doctorID, _ := s.registerDoctor("dr.browse@clinic.test")
	patientToken := s.registerPatient("pat.browse@clinic.test")

	t.Run("list available", func(t *testing.T) {
		w, env := s.request(http.MethodGet, "/api/v1/doctors/available", patientToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var doctors []struct {
			ID        string `json:"id"`
			Specialty string `json:"specialty"`
			Available bool   `json:"available"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &doctors))
		require.Len(t, doctors, 1)
		assert.Equal(t, doctorID, doctors[0].ID)
		assert.True(t, doctors[0].Available)
	})

	t.Run("search by specialty", func(t *testing.T) {
		w, env := s.request(http.MethodGet, "/api/v1/doctors/search?specialty=cardio", patientToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var doctors []json.RawMessage
		require.NoError(t, json.Unmarshal(env.Data, &doctors))
		assert.Len(t, doctors, 1)
	})

	t.Run("get by id", func(t *testing.T) {
		w, _ := s.request(http.MethodGet, "/api/v1/doctors/"+doctorID, patientToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w, _ = s.request(http.MethodGet, "/api/v1/doctors/no-such-id", patientToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
