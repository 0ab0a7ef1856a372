package postgres

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lecture-service/internal/repositories"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// translateError maps driver errors onto repository sentinels and wraps them with the failed operation
func translateError(err error, op string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("failed to %s: %w", op, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("failed to %s: %w", op, repositories.ErrDuplicate)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// isUniqueViolation catches unique violations on connections opened without TranslateError
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// paginate applies limit and offset with sane bounds; a negative limit returns every row
func paginate(query *gorm.DB, limit, offset int) *gorm.DB {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		return query.Offset(offset)
	}
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return query.Limit(limit).Offset(offset)
}

// schoolEquals matches a school column case-insensitively on every supported dialect
func schoolEquals(query *gorm.DB, column, school string) *gorm.DB {
	return query.Where(fmt.Sprintf("LOWER(%s) = LOWER(?)", column), strings.TrimSpace(school))
}

// checkAffected turns a zero-row mutation into a not-found error
func checkAffected(result *gorm.DB, op string) error {
	if result.Error != nil {
		return translateError(result.Error, op)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to %s: %w", op, repositories.ErrNotFound)
	}
	return nil
}
