package iot

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"liyu1981.xyz/iot-access-telemetry/pkg/common"
	"liyu1981.xyz/iot-access-telemetry/pkg/models"
)

// NormalizeTag trims and upper-cases a hex tag id so "1a2b" and "1A2B " hit
// the same row.
func NormalizeTag(rfidTag string) string {
	return strings.ToUpper(strings.TrimSpace(rfidTag))
}

// GreetingFor maps a presentation count to the entry/exit greeting: odd
// counts enter, even counts leave.
func GreetingFor(accessCount int) string {
	if accessCount%2 == 1 {
		return models.GreetingEntry
	}
	return models.GreetingExit
}

func (i *IOT) accessLogger() *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameIOTCore,
		zap.String(common.LoggerFieldIOTCategory, common.LoggerCategoryIOTAccess),
	)
}

func (i *IOT) hashPIN(pin string) (string, error) {
	cost := i.PINCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func pinMatches(access *models.RFIDAccess, pin string) bool {
	if !access.HasPIN() {
		return pin == ""
	}
	return bcrypt.CompareHashAndPassword([]byte(access.PINHash), []byte(pin)) == nil
}

// createIfAbsent inserts access unless the tag already exists. The unique
// index on rfid_tag decides the winner when two first presentations race.
func createIfAbsent(tx *gorm.DB, access *models.RFIDAccess) (bool, error) {
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "rfid_tag"}},
		DoNothing: true,
	}).Create(access)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func findByTag(tx *gorm.DB, rfidTag string) (*models.RFIDAccess, error) {
	var access models.RFIDAccess
	if err := tx.Where("rfid_tag = ?", rfidTag).First(&access).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &access, nil
}

// recordPresentation bumps the counter in the database rather than in memory
// so concurrent presentations of one tag are all counted.
func (i *IOT) recordPresentation(tx *gorm.DB, access *models.RFIDAccess) error {
	err := tx.Model(&models.RFIDAccess{}).
		Where("id = ?", access.ID).
		Updates(map[string]any{
			"access_count":   gorm.Expr("access_count + ?", 1),
			"last_access_at": i.now().UTC(),
		}).Error
	if err != nil {
		return err
	}
	return tx.First(access, access.ID).Error
}

func (i *IOT) authenticate(req *models.AccessRequest) (*models.AccessResult, error) {
	logger := i.accessLogger()

	rfidTag := NormalizeTag(req.RFIDTag)
	if rfidTag == "" {
		return nil, ErrInvalidTag
	}

	logger.Info("Tag presented",
		zap.String("rfid_tag", rfidTag),
		zap.String("action", string(req.Action)))

	var result *models.AccessResult
	var err error
	if req.Action == models.AccessActionVerifyPIN {
		if req.PIN == "" {
			return nil, ErrMissingPIN
		}
		result, err = i.verifyPIN(rfidTag, req.PIN, req.OwnerName)
	} else {
		result, err = i.toggle(rfidTag, req.OwnerName)
	}
	if err != nil {
		logger.Error("Tag presentation failed", zap.String("rfid_tag", rfidTag), zap.Error(err))
		return nil, err
	}

	logger.Info("Tag presentation handled", zap.Reflect("result", result))
	return result, nil
}

func (i *IOT) toggle(rfidTag, ownerName string) (*models.AccessResult, error) {
	var result models.AccessResult

	err := i.Db.Conn.Transaction(func(tx *gorm.DB) error {
		created, err := createIfAbsent(tx, &models.RFIDAccess{
			RFIDTag:      rfidTag,
			OwnerName:    ownerName,
			AccessCount:  1,
			Active:       true,
			LastAccessAt: i.now().UTC(),
		})
		if err != nil {
			return err
		}
		if created {
			result = models.AccessResult{Authenticated: true, New: true, Message: GreetingFor(1), RFIDTag: rfidTag}
			return nil
		}

		access, err := findByTag(tx, rfidTag)
		if err != nil {
			return err
		}
		if !access.Active {
			result = models.AccessResult{Message: models.AccessMessageDeactivated, RFIDTag: rfidTag}
			return nil
		}

		if err := i.recordPresentation(tx, access); err != nil {
			return err
		}
		result = models.AccessResult{Authenticated: true, Message: GreetingFor(access.AccessCount), RFIDTag: rfidTag}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (i *IOT) verifyPIN(rfidTag, pin, ownerName string) (*models.AccessResult, error) {
	hash, err := i.hashPIN(pin)
	if err != nil {
		return nil, err
	}

	var result models.AccessResult
	err = i.Db.Conn.Transaction(func(tx *gorm.DB) error {
		created, err := createIfAbsent(tx, &models.RFIDAccess{
			RFIDTag:      rfidTag,
			OwnerName:    ownerName,
			PINHash:      hash,
			AccessCount:  1,
			Active:       true,
			LastAccessAt: i.now().UTC(),
		})
		if err != nil {
			return err
		}
		if created {
			result = models.AccessResult{Authenticated: true, New: true, Message: models.AccessMessageRegistered, RFIDTag: rfidTag}
			return nil
		}

		access, err := findByTag(tx, rfidTag)
		if err != nil {
			return err
		}
		if !access.Active {
			result = models.AccessResult{Message: models.AccessMessageDeactivated, RFIDTag: rfidTag}
			return nil
		}

		if !access.HasPIN() {
			// first PIN for a tag that was registered through the toggle flow
			if err := tx.Model(access).Update("pin_hash", hash).Error; err != nil {
				return err
			}
			if err := i.recordPresentation(tx, access); err != nil {
				return err
			}
			result = models.AccessResult{Authenticated: true, Message: models.AccessMessageRegistered, RFIDTag: rfidTag}
			return nil
		}

		if !pinMatches(access, pin) {
			result = models.AccessResult{Message: models.AccessMessageInvalidPIN, RFIDTag: rfidTag}
			return nil
		}

		if err := i.recordPresentation(tx, access); err != nil {
			return err
		}
		result = models.AccessResult{Authenticated: true, Message: models.AccessMessageGranted, RFIDTag: rfidTag}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (i *IOT) changePIN(rfidTag, oldPIN, newPIN string) (*models.AccessResult, error) {
	logger := i.accessLogger()

	rfidTag = NormalizeTag(rfidTag)
	if rfidTag == "" {
		return nil, ErrInvalidTag
	}
	if newPIN == "" {
		return nil, ErrMissingPIN
	}

	access, err := findByTag(i.Db.Conn, rfidTag)
	if errors.Is(err, ErrNotFound) {
		return &models.AccessResult{Message: models.AccessMessageNotFound, RFIDTag: rfidTag}, nil
	}
	if err != nil {
		return nil, err
	}

	if !access.Active {
		return &models.AccessResult{Message: models.AccessMessageDeactivated, RFIDTag: rfidTag}, nil
	}

	if !pinMatches(access, oldPIN) {
		logger.Warn("PIN change rejected", zap.String("rfid_tag", rfidTag))
		return &models.AccessResult{Message: models.AccessMessageWrongOldPIN, RFIDTag: rfidTag}, nil
	}

	hash, err := i.hashPIN(newPIN)
	if err != nil {
		return nil, err
	}

	err = i.Db.Conn.Model(access).Updates(map[string]any{
		"pin_hash":       hash,
		"last_access_at": i.now().UTC(),
	}).Error
	if err != nil {
		return nil, err
	}

	logger.Info("PIN changed", zap.String("rfid_tag", rfidTag))
	return &models.AccessResult{Authenticated: true, Message: models.AccessMessagePINChanged, RFIDTag: rfidTag}, nil
}

func (i *IOT) deactivate(rfidTag string) (*models.AccessResult, error) {
	rfidTag = NormalizeTag(rfidTag)
	if rfidTag == "" {
		return nil, ErrInvalidTag
	}

	result := i.Db.Conn.Model(&models.RFIDAccess{}).
		Where("rfid_tag = ?", rfidTag).
		Update("active", false)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return &models.AccessResult{Message: models.AccessMessageNotFound, RFIDTag: rfidTag}, nil
	}

	i.accessLogger().Info("Tag deactivated", zap.String("rfid_tag", rfidTag))
	return &models.AccessResult{Message: models.AccessMessageDeactivated, RFIDTag: rfidTag}, nil
}

type IAccessImpl struct {
	iot *IOT
}

func (ia *IAccessImpl) Authenticate(req *models.AccessRequest) (*models.AccessResult, error) {
	return ia.iot.authenticate(req)
}

func (ia *IAccessImpl) ChangePIN(rfidTag, oldPIN, newPIN string) (*models.AccessResult, error) {
	return ia.iot.changePIN(rfidTag, oldPIN, newPIN)
}

func (ia *IAccessImpl) Deactivate(rfidTag string) (*models.AccessResult, error) {
	return ia.iot.deactivate(rfidTag)
}

func (ia *IAccessImpl) GetAccess(rfidTag string) (*models.RFIDAccess, error) {
	rfidTag = NormalizeTag(rfidTag)
	if rfidTag == "" {
		return nil, ErrInvalidTag
	}
	return findByTag(ia.iot.Db.Conn, rfidTag)
}

func (i *IOT) GetIAccess() IAccess {
	return &IAccessImpl{iot: i}
}
