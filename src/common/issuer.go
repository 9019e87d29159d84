package common

import (
	"errors"
	"time"
	"vms/src/config"
	"vms/src/db"
	"vms/src/models"
	"vms/src/types"

	"gorm.io/gorm"
)

// nextTokenID returns the lowest unused token id. Gaps left by revoked and
// purged tokens are reassigned so the id space stays dense. Must run inside
// the issuing transaction.
func nextTokenID(tx *gorm.DB) (uint, error) {
	var ids []uint
	if err := tx.Model(&models.Token{}).Unscoped().Order("id asc").Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	next := uint(1)
	for _, id := range ids {
		if id != next {
			break
		}
		next++
	}
	return next, nil
}

// IssueToken mints the single token allowed for an approved appointment and
// opens the initial presence window. Handing over the physical token is the
// check-in event, so both writes happen in one transaction.
func IssueToken(body *types.IssueTokenRequestBody) (*models.Token, error) {
	var token models.Token
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var appointment models.Appointment
		if err := tx.
			Where(&models.Appointment{ID: body.AppointmentID}).
			First(&appointment).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFound("appointment not found")
			}
			return err
		}
		if appointment.Status != types.APPOINTMENT_APPROVED {
			return NewInvalidState("appointment is not approved")
		}
		if appointment.VisitorID != body.VisitorID || appointment.HostID != body.HostID {
			return NewValidation("visitor or host does not match the appointment")
		}
		var issued int64
		if err := tx.
			Model(&models.Token{}).
			Where(&models.Token{AppointmentID: appointment.ID}).
			Count(&issued).
			Error; err != nil {
			return err
		}
		if issued > 0 || appointment.TokenID != nil {
			return NewConflict("token already issued for this appointment")
		}
		id, err := nextTokenID(tx)
		if err != nil {
			return err
		}
		now := time.Now()
		token = models.Token{
			ID:            id,
			VisitorID:     appointment.VisitorID,
			HostID:        appointment.HostID,
			AppointmentID: appointment.ID,
			IssuedAt:      now,
			ExpiredAt:     now.Add(config.TokenTTLHours * time.Hour),
			Status:        types.TOKEN_ACTIVE,
		}
		if err := tx.Create(&token).Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Appointment{}).
			Where("id = ?", appointment.ID).
			Update("token_id", token.ID).
			Error; err != nil {
			return err
		}
		checkin := models.CheckIn{
			TokenID:       token.ID,
			VisitorID:     appointment.VisitorID,
			AppointmentID: appointment.ID,
			CheckinTime:   now,
		}
		if err := tx.Create(&checkin).Error; err != nil {
			return err
		}
		token.Appointment = &appointment
		return nil
	})
	if err != nil {
		return nil, err
	}
	locationID := token.Appointment.LocationID
	Publish(types.VisitorEvent{
		Name:       types.EVENT_VISITOR_CHECKED_IN,
		VisitorID:  token.VisitorID,
		TokenID:    token.ID,
		LocationID: &locationID,
		Timestamp:  token.IssuedAt,
	})
	return &token, nil
}

// DeactivateToken revokes an active token. Revocation is terminal; expired
// and already revoked tokens are left untouched.
func DeactivateToken(tokenID uint) (*models.Token, error) {
	var token models.Token
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
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
			return NewInvalidState("token is not active")
		}
		if err := tx.
			Model(&models.Token{}).
			Where("id = ?", tokenID).
			Update("status", types.TOKEN_REVOKED).
			Error; err != nil {
			return err
		}
		token.Status = types.TOKEN_REVOKED
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &token, nil
}
