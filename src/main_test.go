package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
	"vms/src/boot"
	"vms/src/db"
	"vms/src/middlewares"
	"vms/src/models"
	"vms/src/types"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB    *gorm.DB
	Token *string

	visitor      models.User
	host         models.User
	receptionist models.User
	lobby        models.Location
	meetingRoom  models.Location
	serverRoom   models.Location
	appointment  models.Appointment
}

func buildTestRouter() *gin.Engine {
	router := setupRouter()
	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		authorized = tokenHandlers(authorized)
		authorized = accessHandlers(authorized)
		authorized = checkinHandlers(authorized)
	}
	return router
}

func (s *TestSuite) SetupSuite() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("stayminutes", stayMinutesValidatorFunc)
	}

	gdb, err := gorm.Open(sqlite.Open("file:apitest?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("error opening test database: %s", err.Error())
	}
	db.NewDB(gdb)
	s.DB = gdb
	boot.InitDb()
	boot.InitNotifier()

	s.visitor = models.User{Name: "Visitor", Email: "visitor@example.com", Role: types.ROLE_VISITOR}
	s.host = models.User{Name: "Host", Email: "host@example.com", Role: types.ROLE_HOST}
	s.receptionist = models.User{Name: "Front Desk", Email: "desk@example.com", Role: types.ROLE_RECEPTIONIST}
	s.lobby = models.Location{Name: "Lobby", IsPublic: true}
	s.meetingRoom = models.Location{Name: "Meeting Room A", IsPublic: false}
	s.serverRoom = models.Location{Name: "Server Room", IsPublic: false}
	for _, m := range []any{&s.visitor, &s.host, &s.receptionist, &s.lobby, &s.meetingRoom, &s.serverRoom} {
		if err := gdb.Create(m).Error; err != nil {
			log.Fatalf("error seeding suite data: %s", err.Error())
		}
	}
	now := time.Now()
	s.appointment = models.Appointment{
		VisitorID:  s.visitor.ID,
		HostID:     s.host.ID,
		LocationID: s.meetingRoom.ID,
		StartsAt:   now,
		EndsAt:     now.Add(time.Hour),
		Status:     types.APPOINTMENT_APPROVED,
	}
	if err := gdb.Create(&s.appointment).Error; err != nil {
		log.Fatalf("error seeding appointment: %s", err.Error())
	}

	token, err := generateJWT(s.receptionist.Email, s.receptionist.ID, s.receptionist.Role)
	if err != nil {
		log.Fatalf("Error generating JWT token: %s\n", err.Error())
	}
	s.Token = &token
}

func (s *TestSuite) request(method, target string, body any) *httptest.ResponseRecorder {
	router := buildTestRouter()
	var reader io.Reader
	if body != nil {
		sbody, _ := json.Marshal(body)
		reader = strings.NewReader(string(sbody))
	}
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *s.Token))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestRejectsMissingToken() {
	router := buildTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/access/logs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 401, w.Code)
}

func (s *TestSuite) TestTokenLifecycleOverHTTP() {
	w := s.request("POST", "/api/v1/tokens", map[string]any{
		"appointment": s.appointment.ID,
		"visitor":     s.visitor.ID,
		"host":        s.host.ID,
	})
	assert.Equal(s.T(), http.StatusCreated, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	tokenID := gjson.GetBytes(rbytes, "data.id").Uint()
	assert.Greater(s.T(), tokenID, uint64(0))

	// issuing again conflicts
	w = s.request("POST", "/api/v1/tokens", map[string]any{
		"appointment": s.appointment.ID,
		"visitor":     s.visitor.ID,
		"host":        s.host.ID,
	})
	assert.Equal(s.T(), http.StatusConflict, w.Code)
	rbytes, _ = io.ReadAll(w.Body)
	assert.Equal(s.T(), "conflict", gjson.GetBytes(rbytes, "kind").String())

	// public location allows
	w = s.request("POST", "/api/v1/access/check", map[string]any{
		"token":    tokenID,
		"location": s.lobby.ID,
	})
	assert.Equal(s.T(), http.StatusOK, w.Code)
	rbytes, _ = io.ReadAll(w.Body)
	assert.True(s.T(), gjson.GetBytes(rbytes, "data.allowed").Bool())

	// restricted location without grant denies
	w = s.request("POST", "/api/v1/access/check", map[string]any{
		"token":    tokenID,
		"location": s.serverRoom.ID,
	})
	assert.Equal(s.T(), http.StatusOK, w.Code)
	rbytes, _ = io.ReadAll(w.Body)
	assert.False(s.T(), gjson.GetBytes(rbytes, "data.allowed").Bool())

	// the denial shows up in the restricted listing
	w = s.request("GET", "/api/v1/access/restricted", nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	rbytes, _ = io.ReadAll(w.Body)
	assert.Equal(s.T(), int64(1), gjson.GetBytes(rbytes, "count").Int())
	assert.Equal(s.T(), s.serverRoom.Name, gjson.GetBytes(rbytes, "data.0.attempt.access_point").String())

	// both attempts are in the audit log
	w = s.request("GET", "/api/v1/access/logs", nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	rbytes, _ = io.ReadAll(w.Body)
	assert.Equal(s.T(), int64(2), gjson.GetBytes(rbytes, "count").Int())

	// extend the stay opened at issuance, then close it
	w = s.request("PUT", fmt.Sprintf("/api/v1/checkins/%d/extend", tokenID), map[string]any{
		"minutes": 30,
	})
	assert.Equal(s.T(), http.StatusOK, w.Code)
	rbytes, _ = io.ReadAll(w.Body)
	assert.NotEmpty(s.T(), gjson.GetBytes(rbytes, "expected_checkout").String())

	w = s.request("PUT", fmt.Sprintf("/api/v1/checkins/%d/checkout", tokenID), nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	w = s.request("PUT", fmt.Sprintf("/api/v1/checkins/%d/checkout", tokenID), nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *TestSuite) TestExtendStayValidation() {
	w := s.request("PUT", "/api/v1/checkins/1/extend", map[string]any{
		"minutes": 0,
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
