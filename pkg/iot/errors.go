package iot

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidTag   = errors.New("rfid tag is required")
	ErrMissingPIN   = errors.New("pin is required for verify_pin")
	ErrInvalidRange = errors.New("start date must not be after end date")
	ErrMissingField = errors.New("required field missing")
	ErrEmptyPatch   = errors.New("update carries no fields")
)

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
