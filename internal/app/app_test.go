package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/bookjohn/internal/config"
	"github.com/dropDatabas3/bookjohn/internal/security/totp"
)

// envelope refleja el formato de respuesta estándar de la API.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	t     *testing.T
	base  string
	token string
}

// do ejecuta un request JSON y decodifica el envelope.
func (c *apiClient) do(method, path string, body any) (int, envelope) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env), "path %s", path)
	return resp.StatusCode, env
}

func (c *apiClient) decode(env envelope, out any) {
	c.t.Helper()
	require.NoError(c.t, json.Unmarshal(env.Data, out))
}

func newTestApp(t *testing.T) *apiClient {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.JWT.Secret = "e2e-test-secret"
	cfg.Rate.Enabled = false
	cfg.Seed.Enabled = true

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.True(t, a.Seeded)

	srv := httptest.NewServer(a.Handler)
	t.Cleanup(srv.Close)

	return &apiClient{t: t, base: srv.URL}
}

func TestAPI_FullFlow(t *testing.T) {
	c := newTestApp(t)

	// health
	status, env := c.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
	require.Equal(t, "ok", env.Message)

	// registro
	status, _ = c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username":  "alice",
		"email":     "alice@example.com",
		"password":  "supersecret1",
		"firstName": "Alice",
	})
	require.Equal(t, http.StatusCreated, status)

	// username duplicado
	status, env = c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "supersecret1",
	})
	require.Equal(t, http.StatusConflict, status)
	require.False(t, env.Success)

	// login con password incorrecta
	status, _ = c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"usernameOrEmail": "alice",
		"password":        "wrongpassword",
	})
	require.Equal(t, http.StatusUnauthorized, status)

	// login OK por email
	var login struct {
		User struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
		ExpiresIn   int64  `json:"expiresIn"`
	}
	status, env = c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"usernameOrEmail": "alice@example.com",
		"password":        "supersecret1",
	})
	require.Equal(t, http.StatusOK, status)
	c.decode(env, &login)
	require.Equal(t, "alice", login.User.Username)
	require.Equal(t, "Bearer", login.TokenType)
	require.NotEmpty(t, login.AccessToken)
	require.Positive(t, login.ExpiresIn)

	// rutas protegidas sin token
	status, _ = c.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	c.token = login.AccessToken
	status, env = c.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, status)
	var me struct {
		Username      string `json:"username"`
		EmailVerified bool   `json:"emailVerified"`
	}
	c.decode(env, &me)
	require.Equal(t, "alice", me.Username)
	require.False(t, me.EmailVerified)

	t.Run("email verification", func(t *testing.T) {
		status, env := c.do(http.MethodPost, "/api/auth/verify-email", nil)
		require.Equal(t, http.StatusOK, status)
		var start struct {
			Token string `json:"token"`
		}
		c.decode(env, &start)
		require.NotEmpty(t, start.Token)

		status, _ = c.do(http.MethodPost, "/api/auth/verify-email/confirm", map[string]string{"token": start.Token})
		require.Equal(t, http.StatusOK, status)

		status, env = c.do(http.MethodGet, "/api/auth/me", nil)
		require.Equal(t, http.StatusOK, status)
		var me struct {
			EmailVerified bool `json:"emailVerified"`
		}
		c.decode(env, &me)
		require.True(t, me.EmailVerified)

		// el token es one-shot: reusarlo es un token inválido, 400
		status, _ = c.do(http.MethodPost, "/api/auth/verify-email/confirm", map[string]string{"token": start.Token})
		require.Equal(t, http.StatusBadRequest, status)
	})

	var backupCodes []string

	t.Run("mfa enrollment", func(t *testing.T) {
		status, env := c.do(http.MethodPost, "/api/mfa/setup/totp", map[string]string{"deviceName": "phone"})
		require.Equal(t, http.StatusCreated, status)
		var enroll struct {
			Device struct {
				ID       int64 `json:"id"`
				Verified bool  `json:"verified"`
			} `json:"device"`
			Secret      string   `json:"secret"`
			OTPAuthURL  string   `json:"otpauthUrl"`
			BackupCodes []string `json:"backupCodes"`
		}
		c.decode(env, &enroll)
		require.NotEmpty(t, enroll.Secret)
		require.Contains(t, enroll.OTPAuthURL, "otpauth://totp/")
		require.Len(t, enroll.BackupCodes, 10)
		require.False(t, enroll.Device.Verified)
		backupCodes = enroll.BackupCodes

		// un dispositivo sin verificar todavía no habilita MFA
		status, env = c.do(http.MethodGet, "/api/mfa/status", nil)
		require.Equal(t, http.StatusOK, status)
		var st struct {
			Enabled bool `json:"enabled"`
		}
		c.decode(env, &st)
		require.False(t, st.Enabled)

		// código inválido: 400, el usuario ya está autenticado
		status, _ = c.do(http.MethodPost, "/api/mfa/verify", map[string]any{
			"deviceId": enroll.Device.ID,
			"code":     "000000",
		})
		require.Equal(t, http.StatusBadRequest, status)

		code, err := totp.GenerateCode(enroll.Secret, time.Now())
		require.NoError(t, err)
		status, _ = c.do(http.MethodPost, "/api/mfa/verify", map[string]any{
			"deviceId": enroll.Device.ID,
			"code":     code,
		})
		require.Equal(t, http.StatusOK, status)

		status, env = c.do(http.MethodGet, "/api/mfa/status", nil)
		require.Equal(t, http.StatusOK, status)
		c.decode(env, &st)
		require.True(t, st.Enabled)

		status, env = c.do(http.MethodGet, "/api/mfa/devices", nil)
		require.Equal(t, http.StatusOK, status)
		var devs []struct {
			Verified        bool `json:"verified"`
			BackupCodesLeft int  `json:"backupCodesLeft"`
		}
		c.decode(env, &devs)
		require.Len(t, devs, 1)
		require.True(t, devs[0].Verified)
		require.Equal(t, 10, devs[0].BackupCodesLeft)
	})

	t.Run("login with mfa enabled", func(t *testing.T) {
		// sin código ya no alcanza
		status, _ := c.do(http.MethodPost, "/api/auth/login", map[string]string{
			"usernameOrEmail": "alice",
			"password":        "supersecret1",
		})
		require.Equal(t, http.StatusUnauthorized, status)

		// el contador TOTP del enrolamiento ya se usó; un backup code entra
		// igual y se consume
		status, _ = c.do(http.MethodPost, "/api/auth/login", map[string]string{
			"usernameOrEmail": "alice",
			"password":        "supersecret1",
			"code":            backupCodes[0],
		})
		require.Equal(t, http.StatusOK, status)

		status, _ = c.do(http.MethodPost, "/api/auth/login", map[string]string{
			"usernameOrEmail": "alice",
			"password":        "supersecret1",
			"code":            backupCodes[0],
		})
		require.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("books crud", func(t *testing.T) {
		// el seed deja 3 libros
		status, env := c.do(http.MethodGet, "/api/books", nil)
		require.Equal(t, http.StatusOK, status)
		var books []struct {
			ID     int64  `json:"id"`
			Title  string `json:"title"`
			Author string `json:"author"`
			ISBN   string `json:"isbn"`
		}
		c.decode(env, &books)
		require.Len(t, books, 3)

		newBook := map[string]any{
			"title":           "Brave New World",
			"author":          "Aldous Huxley",
			"isbn":            "9780060850524",
			"publicationYear": 1932,
			"genre":           "Dystopian",
		}
		status, env = c.do(http.MethodPost, "/api/books", newBook)
		require.Equal(t, http.StatusCreated, status)
		var created struct {
			ID int64 `json:"id"`
		}
		c.decode(env, &created)

		// ISBN duplicado
		status, _ = c.do(http.MethodPost, "/api/books", newBook)
		require.Equal(t, http.StatusConflict, status)

		// filtro por autor
		status, env = c.do(http.MethodGet, "/api/books?author=huxley", nil)
		require.Equal(t, http.StatusOK, status)
		c.decode(env, &books)
		require.Len(t, books, 1)
		require.Equal(t, "Brave New World", books[0].Title)

		status, env = c.do(http.MethodGet, fmt.Sprintf("/api/books/%d", created.ID), nil)
		require.Equal(t, http.StatusOK, status)

		status, _ = c.do(http.MethodGet, "/api/books/999999", nil)
		require.Equal(t, http.StatusNotFound, status)

		status, env = c.do(http.MethodGet, "/api/books/stats", nil)
		require.Equal(t, http.StatusOK, status)
		var stats struct {
			TotalBooks int `json:"totalBooks"`
		}
		c.decode(env, &stats)
		require.Equal(t, 4, stats.TotalBooks)

		status, _ = c.do(http.MethodDelete, fmt.Sprintf("/api/books/%d", created.ID), nil)
		require.Equal(t, http.StatusOK, status)
		status, _ = c.do(http.MethodGet, fmt.Sprintf("/api/books/%d", created.ID), nil)
		require.Equal(t, http.StatusNotFound, status)
	})

	t.Run("password reset", func(t *testing.T) {
		status, _ := c.do(http.MethodPost, "/api/auth/reset-password", map[string]string{
			"email": "nobody@example.com",
		})
		require.Equal(t, http.StatusNotFound, status)

		status, env := c.do(http.MethodPost, "/api/auth/reset-password", map[string]string{
			"email": "alice@example.com",
		})
		require.Equal(t, http.StatusOK, status)
		var start struct {
			Token string `json:"token"`
		}
		c.decode(env, &start)
		require.NotEmpty(t, start.Token)

		status, _ = c.do(http.MethodPost, "/api/auth/reset-password/confirm", map[string]string{
			"token":       start.Token,
			"newPassword": "brandnewsecret2",
		})
		require.Equal(t, http.StatusOK, status)

		// la password vieja quedó muerta; la nueva entra con un backup code
		status, _ = c.do(http.MethodPost, "/api/auth/login", map[string]string{
			"usernameOrEmail": "alice",
			"password":        "supersecret1",
			"code":            backupCodes[1],
		})
		require.Equal(t, http.StatusUnauthorized, status)

		status, _ = c.do(http.MethodPost, "/api/auth/login", map[string]string{
			"usernameOrEmail": "alice",
			"password":        "brandnewsecret2",
			"code":            backupCodes[1],
		})
		require.Equal(t, http.StatusOK, status)
	})
}

func TestAPI_LoginRateLimit(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.JWT.Secret = "e2e-test-secret"
	cfg.Rate.Enabled = true
	cfg.Rate.Login.Limit = 3
	cfg.Rate.Login.Window = "1h"

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	srv := httptest.NewServer(a.Handler)
	t.Cleanup(srv.Close)

	c := &apiClient{t: t, base: srv.URL}
	status, _ := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "supersecret1",
	})
	require.Equal(t, http.StatusCreated, status)

	for i := 0; i < 3; i++ {
		status, _ = c.do(http.MethodPost, "/api/auth/login", map[string]string{
			"usernameOrEmail": "bob",
			"password":        "wrongpassword",
		})
		require.Equal(t, http.StatusUnauthorized, status)
	}

	// el cuarto intento dentro de la ventana se corta con 429
	status, env := c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"usernameOrEmail": "bob",
		"password":        "supersecret1",
	})
	require.Equal(t, http.StatusTooManyRequests, status)
	require.False(t, env.Success)

	// otra identidad desde el mismo IP no está bloqueada
	status, _ = c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"usernameOrEmail": "bob@example.com",
		"password":        "supersecret1",
	})
	require.Equal(t, http.StatusOK, status)
}

func TestAPI_UsersCRUD(t *testing.T) {
	c := newTestApp(t)

	status, env := c.do(http.MethodPost, "/api/users", map[string]string{
		"username": "carol",
		"email":    "carol@example.com",
		"password": "supersecret1",
	})
	require.Equal(t, http.StatusCreated, status)
	var created struct {
		ID int64 `json:"id"`
	}
	c.decode(env, &created)

	// update parcial sin tocar el flag active
	status, env = c.do(http.MethodPut, fmt.Sprintf("/api/users/%d", created.ID), map[string]any{
		"username":  "carol",
		"email":     "carol@example.com",
		"firstName": "Carol",
	})
	require.Equal(t, http.StatusOK, status)
	var updated struct {
		FirstName string `json:"firstName"`
		Active    bool   `json:"active"`
	}
	c.decode(env, &updated)
	require.Equal(t, "Carol", updated.FirstName)
	require.True(t, updated.Active)

	// el seed incluye al usuario admin
	status, env = c.do(http.MethodGet, "/api/users/stats", nil)
	require.Equal(t, http.StatusOK, status)
	var stats struct {
		TotalUsers int `json:"totalUsers"`
	}
	c.decode(env, &stats)
	require.Equal(t, 2, stats.TotalUsers)

	status, _ = c.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = c.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", created.ID), nil)
	require.Equal(t, http.StatusNotFound, status)
}
