package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/avolkov/librarium/internal/entities"
)

// Translate maps gorm-level failures onto the catalog error taxonomy.
// Repositories call it on every statement result so callers only ever see
// entities sentinels.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return entities.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return entities.ErrDuplicateKey
	default:
		return err
	}
}
