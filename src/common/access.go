package common

import (
	"errors"
	"time"
	"vms/src/db"
	"vms/src/models"
	"vms/src/types"

	"gorm.io/gorm"
)

type AccessDecision struct {
	Allowed bool                `json:"allowed"`
	Message string              `json:"message"`
	Record  models.AccessRecord `json:"record"`
}

// CheckAccess decides whether the token may enter the location. Precedence,
// first match wins: public location, approved appointment at this exact
// location, standing host permission, deny. One AccessRecord is written per
// call no matter the branch; a denial also writes the RestrictedAttempt and
// VisitorRestriction rows in the same transaction, so the audit trail can
// never be observed half-applied.
func CheckAccess(tokenID uint, locationID uint) (*AccessDecision, error) {
	var decision AccessDecision
	now := time.Now()
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
		if !token.Usable(now) {
			return NewNotFound("token is expired or revoked")
		}
		var location models.Location
		if err := tx.
			Where(&models.Location{ID: locationID}).
			First(&location).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFound("location not found")
			}
			return err
		}

		allowed := false
		message := ""
		if location.IsPublic {
			allowed = true
			message = "location is open to all visitors"
		}
		if !allowed {
			var matches int64
			if err := tx.
				Model(&models.Appointment{}).
				Where(&models.Appointment{
					VisitorID:  token.VisitorID,
					LocationID: locationID,
					Status:     types.APPOINTMENT_APPROVED,
				}).
				Count(&matches).
				Error; err != nil {
				return err
			}
			if matches > 0 {
				allowed = true
				message = "appointment grants this location"
			}
		}
		if !allowed {
			var grants int64
			if err := tx.
				Model(&models.HostPermission{}).
				Where(&models.HostPermission{HostID: token.HostID, LocationID: locationID}).
				Count(&grants).
				Error; err != nil {
				return err
			}
			if grants > 0 {
				allowed = true
				message = "host has standing permission"
			}
		}

		status := types.ACCESS_RESTRICTED
		if allowed {
			status = types.ACCESS_ALLOWED
		} else {
			message = "entry to this location is restricted"
		}
		record := models.AccessRecord{
			VisitorID:  token.VisitorID,
			TokenID:    token.ID,
			LocationID: location.ID,
			Status:     status,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if !allowed {
			attempt := models.RestrictedAttempt{
				AccessPoint: location.Name,
				Status:      types.ATTEMPT_DENIED,
			}
			if err := tx.Create(&attempt).Error; err != nil {
				return err
			}
			restriction := models.VisitorRestriction{
				TokenID:   token.ID,
				AttemptID: attempt.ID,
				VisitorID: token.VisitorID,
			}
			if err := tx.Create(&restriction).Error; err != nil {
				return err
			}
		}
		decision = AccessDecision{Allowed: allowed, Message: message, Record: record}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		Publish(types.VisitorEvent{
			Name:       types.EVENT_ACCESS_DENIED,
			VisitorID:  decision.Record.VisitorID,
			TokenID:    decision.Record.TokenID,
			LocationID: &decision.Record.LocationID,
			Timestamp:  now,
		})
	}
	return &decision, nil
}
