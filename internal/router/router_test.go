package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mapexe/storefront-backend/internal/config"
	"github.com/mapexe/storefront-backend/internal/models"
	"github.com/mapexe/storefront-backend/internal/router"
	"github.com/mapexe/storefront-backend/internal/storage"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type APITestSuite struct {
	suite.Suite
	store  *storage.MemoryStore
	router *router.Router

	aliceToken string // staff
	bobToken   string // staff
	carolToken string // admin
	carolID    uint
}

func testConfig(uploadDir string) *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 1},
		Uploads: config.UploadConfig{
			LocalDir:    uploadDir,
			PublicURL:   "http://localhost:8080/uploads",
			MaxSizeMB:   1,
			AllowedExts: []string{".png"},
		},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		RateLimit: config.RateLimitConfig{GeneralPerSecond: 10000, GeneralBurst: 10000, AuthPerMinute: 10000, AuthBurst: 10000},
		I18n:      config.I18nConfig{DefaultLocale: "en"},
	}
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.store = storage.NewMemoryStore()

	r, err := router.Initialize(s.store, testConfig(s.T().TempDir()))
	s.Require().NoError(err)
	s.router = r

	s.aliceToken = s.register("alice", false)
	s.bobToken = s.register("bob", false)

	// Promote carol directly in the store; registration never grants admin.
	s.carolToken = s.register("carol", false)
	carol, err := s.store.GetAccountByUsername(context.Background(), "carol")
	s.Require().NoError(err)
	isAdmin := true
	_, err = s.store.UpdateAccount(context.Background(), carol.ID, models.AccountPatch{IsAdmin: &isAdmin})
	s.Require().NoError(err)
	s.carolID = carol.ID
}

func (s *APITestSuite) TearDownTest() {
	s.router.Close()
}

func (s *APITestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		s.Require().NoError(err)
	}
	return s.doRaw(method, path, token, raw)
}

func (s *APITestSuite) doRaw(method, path, token string, raw []byte) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (s *APITestSuite) register(username string, isAdmin bool) string {
	w, env := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"password": "secret1",
		"isAdmin":  isAdmin,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		AccessToken string `json:"accessToken"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	return data.AccessToken
}

func (s *APITestSuite) createItem(token string) map[string]interface{} {
	w, env := s.do(http.MethodPost, "/api/items", token, gin.H{
		"name":        "Battle Arena",
		"description": "Arena map",
		"price":       25.99,
		"type":        "map",
		"features":    []string{"PvP"},
		"images":      []string{"https://cdn.example.com/arena.png"},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var item map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &item))
	return item
}

func itemPath(item map[string]interface{}) string {
	return "/api/items/" + strconv.Itoa(int(item["id"].(float64)))
}

func (s *APITestSuite) TestHealth() {
	w, _ := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APITestSuite) TestCreateItemRequiresAuth() {
	w, env := s.do(http.MethodPost, "/api/items", "", gin.H{"name": "x"})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.False(env.Success)
	s.Equal("UNAUTHORIZED", env.Error.Code)
}

func (s *APITestSuite) TestCreateItemValidation() {
	w, env := s.do(http.MethodPost, "/api/items", s.aliceToken, gin.H{
		"name":     "Battle Arena",
		"price":    0,
		"type":     "mod",
		"features": []string{},
		"images":   []string{"nope"},
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("VALIDATION_ERROR", env.Error.Code)

	var details []struct {
		Field string `json:"field"`
	}
	s.Require().NoError(json.Unmarshal(env.Error.Details, &details))
	fields := map[string]bool{}
	for _, d := range details {
		fields[d.Field] = true
	}
	for _, f := range []string{"description", "price", "type", "features"} {
		s.True(fields[f], "missing %s", f)
	}
}

func (s *APITestSuite) TestItemLifecycleAndListing() {
	item := s.createItem(s.aliceToken)
	s.Equal(25.99, item["price"])

	w, env := s.do(http.MethodGet, "/api/items?type=map", "", nil)
	s.Equal(http.StatusOK, w.Code)
	var items []map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &items))
	s.Len(items, 1)

	w, _ = s.do(http.MethodGet, "/api/items?type=mod", "", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	// Legacy path serves the same catalog.
	w, env = s.do(http.MethodGet, "/api/products", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(env.Data, &items))
	s.Len(items, 1)

	w, _ = s.do(http.MethodGet, itemPath(item), "", nil)
	s.Equal(http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/items/abc", "", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(string(env.Error.Details), `"field":"id"`)

	w, env = s.do(http.MethodGet, "/api/items/999", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("NOT_FOUND", env.Error.Code)
}

func (s *APITestSuite) TestIDsBeyondInt64AreRejected() {
	for _, id := range []string{"9223372036854775808", "18446744073709551615", "0"} {
		w, env := s.do(http.MethodGet, "/api/items/"+id, "", nil)
		s.Equal(http.StatusBadRequest, w.Code, id)
		s.Contains(string(env.Error.Details), `"field":"id"`)

		w, _ = s.do(http.MethodGet, "/api/orders/"+id, s.carolToken, nil)
		s.Equal(http.StatusBadRequest, w.Code, id)
	}

	w, _ := s.do(http.MethodGet, "/api/items/9223372036854775807", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APITestSuite) TestAnonymousWritesAreUnauthorizedBeforeBodyIsRead() {
	item := s.createItem(s.aliceToken)
	malformed := []byte(`{"name": `)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/items"},
		{http.MethodPost, "/api/products"},
		{http.MethodPut, itemPath(item)},
		{http.MethodDelete, itemPath(item)},
		{http.MethodPut, "/api/orders/1"},
	} {
		w, env := s.doRaw(tc.method, tc.path, "", malformed)
		s.Equal(http.StatusUnauthorized, w.Code, tc.method+" "+tc.path)
		s.Require().NotNil(env.Error)
		s.Equal("UNAUTHORIZED", env.Error.Code)
	}

	w, env := s.doRaw(http.MethodPost, "/api/items", s.aliceToken, malformed)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("VALIDATION_ERROR", env.Error.Code)
}

func (s *APITestSuite) TestOwnershipGate() {
	item := s.createItem(s.aliceToken)
	path := itemPath(item)

	w, env := s.do(http.MethodPut, path, s.bobToken, gin.H{"name": "Stolen"})
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("FORBIDDEN", env.Error.Code)

	w, _ = s.do(http.MethodDelete, path, s.bobToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w, env = s.do(http.MethodPut, path, s.carolToken, gin.H{"name": "Curated"})
	s.Equal(http.StatusOK, w.Code)

	var updated map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &updated))
	s.Equal("Curated", updated["name"])
	s.Equal(item["createdBy"], updated["createdBy"])

	w, _ = s.do(http.MethodDelete, path, s.aliceToken, nil)
	s.Equal(http.StatusNoContent, w.Code)

	w, _ = s.do(http.MethodDelete, path, s.aliceToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APITestSuite) TestUpdateIgnoresImmutableFields() {
	item := s.createItem(s.aliceToken)

	w, env := s.do(http.MethodPut, itemPath(item), s.aliceToken, gin.H{
		"id":        12345,
		"createdAt": "2001-01-01T00:00:00Z",
		"createdBy": 999,
		"price":     30,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &updated))
	s.Equal(item["id"], updated["id"])
	s.Equal(item["createdAt"], updated["createdAt"])
	s.Equal(item["createdBy"], updated["createdBy"])
	s.Equal(float64(30), updated["price"])
}

func (s *APITestSuite) TestOrderPriceIsSnapshotFromItem() {
	item := s.createItem(s.aliceToken)

	w, env := s.do(http.MethodPost, "/api/orders", "", gin.H{
		"discordUsername": "gamer",
		"discordId":       "123456789012345678",
		"productId":       item["id"],
		"price":           1.00,
		"status":          "completed",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var order map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &order))
	s.Equal(25.99, order["price"])
	s.Equal("pending", order["status"])

	w, env = s.do(http.MethodPost, "/api/orders", "", gin.H{
		"discordUsername": "gamer",
		"discordId":       "123456789012345678",
		"productId":       999,
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("NOT_FOUND", env.Error.Code)
}

func (s *APITestSuite) TestOrderStatusStateMachine() {
	item := s.createItem(s.aliceToken)
	_, env := s.do(http.MethodPost, "/api/orders", "", gin.H{
		"discordUsername": "gamer",
		"discordId":       "123456789012345678",
		"productId":       item["id"],
	})
	var order map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &order))
	path := "/api/orders/" + strconv.Itoa(int(order["id"].(float64)))

	w, _ := s.do(http.MethodGet, "/api/orders", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodGet, path, s.aliceToken, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPut, path, s.aliceToken, gin.H{"status": "completed"})
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPut, path, s.carolToken, gin.H{"status": "cancelled"})
	s.Equal(http.StatusOK, w.Code)

	w, env = s.do(http.MethodPut, path, s.carolToken, gin.H{"status": "completed"})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("INVALID_STATUS_TRANSITION", env.Error.Code)

	w, _ = s.do(http.MethodPut, path, s.carolToken, gin.H{"status": "cancelled"})
	s.Equal(http.StatusOK, w.Code)
}

func (s *APITestSuite) TestOrdersListedNewestFirst() {
	item := s.createItem(s.aliceToken)
	for i := 0; i < 3; i++ {
		w, _ := s.do(http.MethodPost, "/api/orders", "", gin.H{
			"discordUsername": "gamer",
			"discordId":       "123456789012345678",
			"productId":       item["id"],
		})
		s.Require().Equal(http.StatusCreated, w.Code)
	}

	w, env := s.do(http.MethodGet, "/api/orders", s.bobToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var orders []map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &orders))
	s.Require().Len(orders, 3)
	s.Equal(float64(3), orders[0]["id"])
	s.Equal(float64(1), orders[2]["id"])
}

func (s *APITestSuite) TestTestimonialVerifiedIsForcedFalse() {
	w, env := s.do(http.MethodPost, "/api/testimonials", "", gin.H{
		"name":     "GamerX42",
		"role":     "Player",
		"rating":   5,
		"content":  "Great maps",
		"verified": true,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &created))
	s.Equal(false, created["verified"])

	path := "/api/testimonials/" + strconv.Itoa(int(created["id"].(float64))) + "/verify"
	w, _ = s.do(http.MethodPut, path, s.aliceToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPut, path, s.carolToken, nil)
	s.Equal(http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/testimonials?verified=true", "", nil)
	s.Equal(http.StatusOK, w.Code)
	var list []map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &list))
	s.Len(list, 1)

	w, _ = s.do(http.MethodGet, "/api/testimonials?verified=maybe", "", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APITestSuite) TestAccountAdministration() {
	w, _ := s.do(http.MethodGet, "/api/accounts", s.aliceToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w, env := s.do(http.MethodGet, "/api/users", s.carolToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.NotContains(string(env.Data), "password")

	var accounts []map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &accounts))
	s.Len(accounts, 3)

	self := "/api/accounts/" + strconv.Itoa(int(s.carolID))
	w, env = s.do(http.MethodDelete, self, s.carolToken, nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("CANNOT_DELETE_SELF", env.Error.Code)

	bob, err := s.store.GetAccountByUsername(context.Background(), "bob")
	s.Require().NoError(err)
	bobPath := "/api/users/" + strconv.Itoa(int(bob.ID))

	w, env = s.do(http.MethodPut, bobPath+"/make-admin", s.carolToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"isAdmin":true`)

	// The promotion applies to bob's existing token at once.
	w, _ = s.do(http.MethodGet, "/api/admin/stats", s.bobToken, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodDelete, bobPath, s.carolToken, nil)
	s.Equal(http.StatusNoContent, w.Code)

	// bob's token no longer resolves to an account.
	w, _ = s.do(http.MethodGet, "/api/items", s.bobToken, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestAuthFlow() {
	w, env := s.do(http.MethodPost, "/api/login", "", gin.H{"username": "ALICE", "password": "secret1"})
	s.Require().Equal(http.StatusOK, w.Code)

	var login struct {
		AccessToken string `json:"accessToken"`
		User        struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &login))
	s.Equal("alice", login.User.Username)

	w, _ = s.do(http.MethodGet, "/api/auth/me", login.AccessToken, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, "/api/auth/logout", login.AccessToken, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/api/user", login.AccessToken, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w, env = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong"})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("UNAUTHORIZED", env.Error.Code)

	w, env = s.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "Alice", "password": "secret1"})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("CONFLICT", env.Error.Code)
}

func (s *APITestSuite) TestRegisterAdminOnlyByAdmin() {
	body := gin.H{"username": "boss", "password": "secret1", "isAdmin": true}

	w, _ := s.do(http.MethodPost, "/api/auth/register", s.aliceToken, body)
	s.Equal(http.StatusForbidden, w.Code)

	w, env := s.do(http.MethodPost, "/api/auth/register", s.carolToken, body)
	s.Require().Equal(http.StatusCreated, w.Code)
	s.Contains(string(env.Data), `"isAdmin":true`)
}

func (s *APITestSuite) TestDashboardStats() {
	w, _ := s.do(http.MethodGet, "/api/admin/stats", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	s.createItem(s.aliceToken)
	w, env := s.do(http.MethodGet, "/api/admin/stats", s.carolToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var stats struct {
		Items struct {
			Maps int `json:"maps"`
		} `json:"items"`
		Accounts struct {
			Admins int `json:"admins"`
		} `json:"accounts"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &stats))
	s.Equal(1, stats.Items.Maps)
	s.Equal(1, stats.Accounts.Admins)
}

func (s *APITestSuite) TestImageUpload() {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "arena.png")
	s.Require().NoError(err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n0000000000000000"))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	send := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/uploads/images", bytes.NewReader(buf.Bytes()))
		req.Header.Set("Content-Type", mw.FormDataContentType())
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	s.Equal(http.StatusUnauthorized, send("").Code)

	w := send(s.aliceToken)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"mimeType":"image/png"`)
}

func (s *APITestSuite) TestLocalizedErrors() {
	req := httptest.NewRequest(http.MethodGet, "/api/items/999", nil)
	req.Header.Set("Accept-Language", "pt-BR")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusNotFound, w.Code)
	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	s.NotEqual("Product not found", env.Error.Message)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func TestHealthReportsBackingStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openClosedDB(t)

	r, err := router.Initialize(storage.NewGormStore(db), testConfig(t.TempDir()))
	require.NoError(t, err)
	defer r.Close()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func openClosedDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	return db
}
