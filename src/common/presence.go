package common

import (
	"errors"
	"time"
	"vms/src/db"
	"vms/src/models"
	"vms/src/types"

	"gorm.io/gorm"
)

// openCheckIn loads the open presence window for a token. If the open-window
// invariant was ever violated the most recent check-in wins.
func openCheckIn(tx *gorm.DB, tokenID uint) (*models.CheckIn, error) {
	var checkin models.CheckIn
	err := tx.
		Where("token_id = ? AND checkout_time IS NULL", tokenID).
		Order("checkin_time desc").
		First(&checkin).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("no open check-in for this token")
		}
		return nil, err
	}
	return &checkin, nil
}

// CheckInVisitor opens a presence window for an already issued token, e.g.
// when a visitor returns after checking out earlier the same day.
func CheckInVisitor(tokenID uint) (*models.CheckIn, error) {
	var checkin models.CheckIn
	var locationID uint
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var token models.Token
		if err := tx.
			Where(&models.Token{ID: tokenID}).
			First(&token).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFound("token not found")
			}
			return err
		}
		if !token.Usable(time.Now()) {
			return NewInvalidState("token is expired or revoked")
		}
		var appointment models.Appointment
		if err := tx.
			Where(&models.Appointment{ID: token.AppointmentID}).
			First(&appointment).
			Error; err != nil {
			return err
		}
		if appointment.Status != types.APPOINTMENT_APPROVED {
			return NewInvalidState("appointment is not approved")
		}
		var open int64
		if err := tx.
			Model(&models.CheckIn{}).
			Where("token_id = ? AND checkout_time IS NULL", tokenID).
			Count(&open).
			Error; err != nil {
			return err
		}
		if open > 0 {
			return NewConflict("visitor is already checked in")
		}
		checkin = models.CheckIn{
			TokenID:       token.ID,
			VisitorID:     token.VisitorID,
			AppointmentID: appointment.ID,
			CheckinTime:   time.Now(),
		}
		if err := tx.Create(&checkin).Error; err != nil {
			return err
		}
		locationID = appointment.LocationID
		return nil
	})
	if err != nil {
		return nil, err
	}
	Publish(types.VisitorEvent{
		Name:       types.EVENT_VISITOR_CHECKED_IN,
		VisitorID:  checkin.VisitorID,
		TokenID:    checkin.TokenID,
		LocationID: &locationID,
		Timestamp:  checkin.CheckinTime,
	})
	return &checkin, nil
}

// CheckOutVisitor closes the open presence window. Checking out an already
// closed visit is an error, never a silent success: checkout_time is written
// exactly once.
func CheckOutVisitor(tokenID uint) (*models.CheckIn, error) {
	var checkin *models.CheckIn
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		open, err := openCheckIn(tx, tokenID)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := tx.
			Model(&models.CheckIn{}).
			Where("id = ? AND checkout_time IS NULL", open.ID).
			Update("checkout_time", now).
			Error; err != nil {
			return err
		}
		open.CheckoutTime = &now
		checkin = open
		return nil
	})
	if err != nil {
		return nil, err
	}
	return checkin, nil
}

// EndVisitManually marks the visit as ended by the host without closing the
// window; the visitor still has to physically check out.
func EndVisitManually(tokenID uint) (*models.CheckIn, error) {
	var checkin *models.CheckIn
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		open, err := openCheckIn(tx, tokenID)
		if err != nil {
			return err
		}
		if open.ManuallyEnded {
			return NewConflict("visit already ended")
		}
		if err := tx.
			Model(&models.CheckIn{}).
			Where("id = ?", open.ID).
			Update("manually_ended", true).
			Error; err != nil {
			return err
		}
		open.ManuallyEnded = true
		checkin = open
		return nil
	})
	if err != nil {
		return nil, err
	}
	return checkin, nil
}

// ExtendStay pushes the expected checkout forward by the requested minutes.
// The expectation is monotonic: max(expected_checkout, now) + minutes, so a
// shorter follow-up request can never move it backward.
func ExtendStay(tokenID uint, minutes uint) (*models.CheckIn, error) {
	if minutes == 0 {
		return nil, NewValidation("minutes must be greater than zero")
	}
	var checkin *models.CheckIn
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		open, err := openCheckIn(tx, tokenID)
		if err != nil {
			return err
		}
		base := time.Now()
		if open.ExpectedCheckout != nil && open.ExpectedCheckout.After(base) {
			base = *open.ExpectedCheckout
		}
		expected := base.Add(time.Duration(minutes) * time.Minute)
		if err := tx.
			Model(&models.CheckIn{}).
			Where("id = ?", open.ID).
			Update("expected_checkout", expected).
			Error; err != nil {
			return err
		}
		open.ExpectedCheckout = &expected
		checkin = open
		return nil
	})
	if err != nil {
		return nil, err
	}
	return checkin, nil
}

type PresenceStatus struct {
	CheckIn    models.CheckIn `json:"checkin"`
	Overstayed bool           `json:"overstayed"`
	Deadline   time.Time      `json:"deadline"`
}

// Presence reports the latest presence window for a token with the derived
// overstay state. Overstay never mutates the row; it only raises the
// notification event, once per window when redis is around to remember that.
func Presence(tokenID uint) (*PresenceStatus, error) {
	var checkin models.CheckIn
	db := db.GetDb()
	err := db.
		Where(&models.CheckIn{TokenID: tokenID}).
		Order("checkin_time desc").
		Preload("Appointment").
		First(&checkin).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("no check-in for this token")
		}
		return nil, err
	}
	if checkin.Appointment == nil {
		return nil, NewNotFound("appointment for check-in not found")
	}
	deadline := checkin.Deadline(checkin.Appointment)
	status := PresenceStatus{
		CheckIn:    checkin,
		Overstayed: checkin.Open() && time.Now().After(deadline),
		Deadline:   deadline,
	}
	if status.Overstayed && markOverstayNotified(checkin.ID) {
		locationID := checkin.Appointment.LocationID
		Publish(types.VisitorEvent{
			Name:       types.EVENT_VISITOR_OVERSTAYED,
			VisitorID:  checkin.VisitorID,
			TokenID:    checkin.TokenID,
			LocationID: &locationID,
			Timestamp:  time.Now(),
		})
	}
	return &status, nil
}
