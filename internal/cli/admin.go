package cli

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/pondera-health/pondera/internal/db"
	"github.com/pondera-health/pondera/internal/models"
	"github.com/pondera-health/pondera/internal/security"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 12

// RunResetPasswordCommand replaces a user's password with a temporary one
// that must be changed on next login. The temporary password is printed so
// the operator can hand it over out of band.
func RunResetPasswordCommand(dbPath string, email string) error {
	normalizedEmail, err := normalizeCommandEmail(email)
	if err != nil {
		return err
	}

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	var user models.User
	if err := database.Where("lower(trim(email)) = ?", normalizedEmail).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %s not found", normalizedEmail)
		}
		return fmt.Errorf("load user: %w", err)
	}

	temporaryPassword, passwordHash, err := issueTemporaryPassword()
	if err != nil {
		return err
	}

	user.PasswordHash = passwordHash
	user.MustChangePassword = true
	if err := database.Save(&user).Error; err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	fmt.Println("Password reset successful")
	fmt.Printf("Temporary password: %s\n", temporaryPassword)
	fmt.Println("User must change password on next login.")

	return nil
}

// RunCreateProfessionalCommand provisions a professional account. There is
// no self-service registration for professionals, so this is the only path
// that creates one.
func RunCreateProfessionalCommand(dbPath string, email string) error {
	normalizedEmail, err := normalizeCommandEmail(email)
	if err != nil {
		return err
	}

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	var existingCount int64
	if err := database.Model(&models.User{}).
		Where("lower(trim(email)) = ?", normalizedEmail).
		Count(&existingCount).Error; err != nil {
		return fmt.Errorf("check existing user: %w", err)
	}
	if existingCount > 0 {
		return fmt.Errorf("user %s already exists", normalizedEmail)
	}

	temporaryPassword, passwordHash, err := issueTemporaryPassword()
	if err != nil {
		return err
	}

	user := models.User{
		Email:              normalizedEmail,
		PasswordHash:       passwordHash,
		Role:               models.RoleProfessional,
		MustChangePassword: true,
	}
	if err := database.Create(&user).Error; err != nil {
		return fmt.Errorf("create professional: %w", err)
	}

	fmt.Println("Professional account created")
	fmt.Printf("Email: %s\n", normalizedEmail)
	fmt.Printf("Temporary password: %s\n", temporaryPassword)
	fmt.Println("User must change password on next login.")

	return nil
}

func normalizeCommandEmail(email string) (string, error) {
	normalizedEmail := strings.ToLower(strings.TrimSpace(email))
	if normalizedEmail == "" {
		return "", errors.New("email is required")
	}
	if _, err := mail.ParseAddress(normalizedEmail); err != nil {
		return "", fmt.Errorf("invalid email address: %w", err)
	}
	return normalizedEmail, nil
}

func issueTemporaryPassword() (password string, hash string, err error) {
	password, err = security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return "", "", fmt.Errorf("generate temporary password: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("hash temporary password: %w", err)
	}
	return password, string(passwordHash), nil
}
