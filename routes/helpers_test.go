package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"reservation-system/config"
	"reservation-system/models"
	"reservation-system/services"
	"reservation-system/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testApp struct {
	t       *testing.T
	router  *gin.Engine
	db      *gorm.DB
	metrics *config.Metrics
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test"},
		JWT:    config.JWTConfig{Secret: "test-secret", ExpiryHours: 1, CookieName: "token"},
		CORS:   config.CORSConfig{AllowOrigins: []string{"http://localhost:3000"}},
	}
	metrics := config.NewMetrics()

	r, err := SetupRouter(Dependencies{
		Config:  cfg,
		DB:      db,
		Logger:  zap.NewNop(),
		Metrics: metrics,
		Tokens:  services.NewMemoryTokenStore(),
	})
	require.NoError(t, err)
	return &testApp{t: t, router: r, db: db, metrics: metrics}
}

func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (a *testApp) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, cookies...)
}

func (a *testApp) api(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(req)
}

// signUp registers a user through the page and logs in, returning the session cookie.
func (a *testApp) signUp(username string) *http.Cookie {
	a.t.Helper()
	rec := a.postForm("/register/", url.Values{
		"username":  {username},
		"email":     {username + "@x.com"},
		"password1": {"s3cret-pass"},
		"password2": {"s3cret-pass"},
	})
	require.Equal(a.t, http.StatusFound, rec.Code, rec.Body.String())

	rec = a.postForm("/login/", url.Values{
		"username": {username},
		"password": {"s3cret-pass"},
	})
	require.Equal(a.t, http.StatusFound, rec.Code, rec.Body.String())
	cookie := findCookie(rec, "token")
	require.NotNil(a.t, cookie)
	return cookie
}

// apiToken logs in through the API and returns the bearer token.
func (a *testApp) apiToken(username string) string {
	a.t.Helper()
	rec := a.api(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": "s3cret-pass",
	})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(a.t, body.Token)
	return body.Token
}

func (a *testApp) haircut() *models.Service {
	a.t.Helper()
	service, err := services.NewCatalogService(a.db).CreateService(context.Background(), services.ServiceInput{
		Name:     "Haircut",
		Price:    "50.00",
		Duration: "01:00:00",
	})
	require.NoError(a.t, err)
	return service
}

func (a *testApp) reservationsOf(username string) []models.Reservation {
	a.t.Helper()
	var list []models.Reservation
	require.NoError(a.t, a.db.
		Joins("JOIN users ON users.id = reservations.user_id").
		Where("users.username = ?", username).
		Find(&list).Error)
	return list
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
