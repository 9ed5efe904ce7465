package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pondera-health/pondera/internal/db"
	"github.com/pondera-health/pondera/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

func newTestApp(t *testing.T) (*fiber.App, *Handler) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "pondera_test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}

	handler := NewHandler(database, testSecretKey, time.UTC, false)
	app := fiber.New()
	RegisterRoutes(app, handler)
	return app, handler
}

func requestJSON(t *testing.T, app *fiber.App, method string, path string, authCookie string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if authCookie != "" {
		request.Header.Set("Cookie", authCookie)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("%s %s read body failed: %v", method, path, err)
	}
	return response, responseBody
}

func decodeJSON(t *testing.T, body []byte, target any) {
	t.Helper()
	if err := json.Unmarshal(body, target); err != nil {
		t.Fatalf("decode response %s: %v", string(body), err)
	}
}

func authCookieFrom(t *testing.T, response *http.Response) string {
	t.Helper()
	for _, cookie := range response.Cookies() {
		if cookie.Name == authCookieName && cookie.Value != "" {
			return cookie.Name + "=" + cookie.Value
		}
	}
	t.Fatal("response did not set an auth cookie")
	return ""
}

func registerPatient(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	response, body := requestJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    email,
		"password": "correct-horse-battery",
	})
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("register %s status = %d, body %s", email, response.StatusCode, string(body))
	}
	return authCookieFrom(t, response)
}

// loginProfessional seeds a professional directly, then signs in through the
// API. Professionals have no self-service registration route.
func loginProfessional(t *testing.T, app *fiber.App, handler *Handler, email string) string {
	t.Helper()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("clinic-staff-secret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt hash failed: %v", err)
	}
	professional := models.User{
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleProfessional,
	}
	if err := handler.repositories.Users.Create(&professional); err != nil {
		t.Fatalf("seed professional: %v", err)
	}

	response, body := requestJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    email,
		"password": "clinic-staff-secret",
	})
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("professional login status = %d, body %s", response.StatusCode, string(body))
	}
	return authCookieFrom(t, response)
}

func createMeasurementAt(t *testing.T, app *fiber.App, authCookie string, weightKg float64, measuredAt time.Time) map[string]any {
	t.Helper()

	response, body := requestJSON(t, app, http.MethodPost, "/api/measurements", authCookie, fiber.Map{
		"weightKg":   weightKg,
		"measuredAt": measuredAt.Format(time.RFC3339),
	})
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("create measurement status = %d, body %s", response.StatusCode, string(body))
	}

	decoded := map[string]any{}
	decodeJSON(t, body, &decoded)
	return decoded
}
