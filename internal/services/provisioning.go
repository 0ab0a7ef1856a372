package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/SAP-F-2025/lecture-service/internal/models"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
	"github.com/SAP-F-2025/lecture-service/internal/storage"
)

const defaultBcryptCost = 12

type passwordHasher struct {
	cost int
}

func newPasswordHasher(cost int) passwordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultBcryptCost
	}
	return passwordHasher{cost: cost}
}

func (h passwordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h passwordHasher) Matches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// randomPassword returns a password nobody knows, used for accounts created through single sign-on
func randomPassword() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

type profileFields struct {
	School      string
	Department  string
	Designation string
}

// createAccount inserts the user and, for roles that teach, its profile and timetable; run it inside a transaction
func createAccount(ctx context.Context, tx repositories.Repository, user *models.User, fields profileFields) (*models.TeacherProfile, error) {
	if err := tx.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewServiceError(ErrConflict, "Username or email already exists.", err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if !user.Role.HasTeacherProfile() {
		return nil, nil
	}
	return createProfile(ctx, tx, user, fields)
}

func createProfile(ctx context.Context, tx repositories.Repository, user *models.User, fields profileFields) (*models.TeacherProfile, error) {
	profile := &models.TeacherProfile{
		UserID:      user.ID,
		School:      fields.School,
		Department:  fields.Department,
		Designation: fields.Designation,
	}
	if err := tx.TeacherProfile().Create(ctx, profile); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewServiceError(ErrConflict, "Teacher profile already exists.", err)
		}
		return nil, fmt.Errorf("failed to create teacher profile: %w", err)
	}

	timetable := &models.Timetable{TeacherProfileID: profile.ID}
	if err := tx.Timetable().Create(ctx, timetable); err != nil {
		return nil, fmt.Errorf("failed to create timetable: %w", err)
	}

	profile.User = user
	profile.Timetable = timetable
	return profile, nil
}

// deleteProfileCascade removes the profile's lectures, class slots, timetable and the profile itself,
// returning the storage keys of deleted recordings
func deleteProfileCascade(ctx context.Context, tx repositories.Repository, profileID uint) ([]string, error) {
	lectures, err := tx.Lecture().ListByTeacherProfile(ctx, profileID, repositories.LectureFilters{Limit: -1})
	if err != nil {
		return nil, fmt.Errorf("failed to list lectures: %w", err)
	}
	var keys []string
	for _, l := range lectures {
		if l.Stored {
			keys = append(keys, l.AudioURL)
		}
	}

	if err := tx.Lecture().DeleteByTeacherProfileID(ctx, profileID); err != nil {
		return nil, err
	}

	timetable, err := tx.Timetable().GetByTeacherProfileID(ctx, profileID)
	switch {
	case err == nil:
		if err := tx.ClassSlot().DeleteByTimetableID(ctx, timetable.ID); err != nil {
			return nil, err
		}
		if err := tx.Timetable().DeleteByTeacherProfileID(ctx, profileID); err != nil {
			return nil, err
		}
	case !repositories.IsNotFoundError(err):
		return nil, fmt.Errorf("failed to load timetable: %w", err)
	}

	if err := tx.TeacherProfile().Delete(ctx, profileID); err != nil {
		return nil, err
	}
	return keys, nil
}

// removeAudio deletes stored recordings after their rows are gone; failures are logged only
func removeAudio(ctx context.Context, store storage.AudioStore, logger *slog.Logger, keys ...string) {
	if store == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			logger.WarnContext(ctx, "Failed to delete stored audio", "key", key, "error", err)
		}
	}
}

// identifierTaken reports whether value is already in use as a login handle or an email.
// Login resolves either form, so the two namespaces must not overlap.
func identifierTaken(ctx context.Context, users repositories.UserRepository, value string) (bool, error) {
	for _, check := range []func(context.Context, string) (bool, error){
		users.ExistsByUsername,
		users.ExistsByEmail,
	} {
		exists, err := check(ctx, value)
		if err != nil || exists {
			return exists, err
		}
	}
	return false, nil
}
