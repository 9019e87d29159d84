package common_test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"
	"vms/src/boot"
	"vms/src/db"
	"vms/src/models"
	"vms/src/types"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter int64

// newTestDB swaps in a fresh in-memory database and runs the migrations.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:enginetest%d?mode=memory&cache=shared", n)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("error opening test database: %s", err.Error())
	}
	db.NewDB(gdb)
	boot.InitDb()
	boot.InitNotifier()
	return gdb
}

type fixture struct {
	Visitor     models.User
	Host        models.User
	Lobby       models.Location
	MeetingRoom models.Location
	ServerRoom  models.Location
	Appointment models.Appointment
}

// seed creates a visitor with an approved appointment at the meeting room.
// The lobby is public, the server room is restricted with no grants.
func seed(t *testing.T, gdb *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{
		Visitor:     models.User{Name: "Visitor One", Email: fmt.Sprintf("visitor%d@example.com", testDBCounter), Role: types.ROLE_VISITOR},
		Host:        models.User{Name: "Host One", Email: fmt.Sprintf("host%d@example.com", testDBCounter), Role: types.ROLE_HOST},
		Lobby:       models.Location{Name: "Lobby", IsPublic: true},
		MeetingRoom: models.Location{Name: "Meeting Room A", IsPublic: false},
		ServerRoom:  models.Location{Name: "Server Room", IsPublic: false},
	}
	for _, m := range []any{&f.Visitor, &f.Host, &f.Lobby, &f.MeetingRoom, &f.ServerRoom} {
		if err := gdb.Create(m).Error; err != nil {
			t.Fatalf("error seeding fixture: %s", err.Error())
		}
	}
	now := time.Now()
	f.Appointment = models.Appointment{
		VisitorID:  f.Visitor.ID,
		HostID:     f.Host.ID,
		LocationID: f.MeetingRoom.ID,
		StartsAt:   now,
		EndsAt:     now.Add(time.Hour),
		Status:     types.APPOINTMENT_APPROVED,
	}
	if err := gdb.Create(&f.Appointment).Error; err != nil {
		t.Fatalf("error seeding appointment: %s", err.Error())
	}
	return f
}

// seedToken creates an active token for the fixture appointment without going
// through the issuer, so presence tests control their own windows.
func seedToken(t *testing.T, gdb *gorm.DB, f *fixture) models.Token {
	t.Helper()
	now := time.Now()
	token := models.Token{
		ID:            1,
		VisitorID:     f.Visitor.ID,
		HostID:        f.Host.ID,
		AppointmentID: f.Appointment.ID,
		IssuedAt:      now,
		ExpiredAt:     now.Add(24 * time.Hour),
		Status:        types.TOKEN_ACTIVE,
	}
	if err := gdb.Create(&token).Error; err != nil {
		t.Fatalf("error seeding token: %s", err.Error())
	}
	return token
}
