// helpers_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go_memo_keep/internal/config"
	"go_memo_keep/internal/handlers"
	"go_memo_keep/internal/metrics"
	"go_memo_keep/internal/repository"
	"go_memo_keep/internal/service"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// envelope は {code, message, data} 形式のレスポンス
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type errorData struct {
	Reason string   `json:"reason"`
	Field  string   `json:"field"`
	Errors []string `json:"errors"`
}

type memoBody struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Body             string    `json:"body"`
	Priority         int       `json:"priority"`
	CompletionStatus int       `json:"completionStatus"`
	Tags             []string  `json:"tags"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	Owner            *string   `json:"owner"`
}

type tenantBody struct {
	UserID    string  `json:"userId"`
	UserType  string  `json:"userType"`
	OpenID    *string `json:"openid"`
	Nickname  *string `json:"nickname"`
	AvatarURL *string `json:"avatarUrl"`
	MemoCount int64   `json:"memoCount"`
}

// httpRequestDetails はHTTPリクエストの送信に必要な情報をまとめます。
type httpRequestDetails struct {
	Method     string
	Path       string
	Body       interface{}
	Identifier string
	Headers    map[string]string
}

// steppingClock は呼ぶたびに1ミリ秒進む時計。メモの並び順を実時計の分解能に依存させない。
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

type testApp struct {
	server   *httptest.Server
	db       *gorm.DB
	registry *prometheus.Registry
	cfg      config.Config
}

// newTestApp はテストごとに独立したSQLiteとルーターを用意します。
// 既定ではスタブのIDプロバイダとテストログインを有効にする。
func newTestApp(t *testing.T, opts ...func(*config.Config)) *testApp {
	t.Helper()

	cfg := config.Default()
	cfg.Database = config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		URL:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
	}
	cfg.Wechat.Provider = config.ProviderStub
	cfg.Auth.TestLoginEnabled = true
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.NewDB(cfg.Database, logger)
	require.NoError(t, err, "failed to open test database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	registry := prometheus.NewRegistry()
	m := metrics.New(registry, "test")

	tenantRepo := repository.NewGormTenantRepository()
	memoRepo := repository.NewGormMemoRepository()
	tenantService := service.NewTenantService(db, tenantRepo)
	clock := &steppingClock{now: time.Now().UTC()}
	memoService := service.NewMemoService(db, memoRepo, tenantRepo, m, service.WithMemoClock(clock.Now))
	authService := service.NewAuthService(tenantService, service.NewIdentityProvider(cfg.Wechat), cfg.Wechat, m)

	router := handlers.NewRouter(handlers.RouterDeps{
		Config:        cfg,
		Logger:        logger,
		DB:            sqlDB,
		TenantService: tenantService,
		MemoService:   memoService,
		AuthService:   authService,
		Metrics:       m,
		Gatherer:      registry,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testApp{server: server, db: db, registry: registry, cfg: cfg}
}

// sendRequest はHTTPリクエストを送信し、ステータスとデコード済みのレスポンスを返します。
func sendRequest(t *testing.T, server *httptest.Server, details httpRequestDetails) (int, envelope) {
	t.Helper()

	var reqBodyReader io.Reader
	if details.Body != nil {
		if strPayload, ok := details.Body.(string); ok {
			reqBodyReader = strings.NewReader(strPayload)
		} else {
			reqBodyBytes, err := json.Marshal(details.Body)
			require.NoError(t, err, "Failed to marshal request body")
			reqBodyReader = bytes.NewBuffer(reqBodyBytes)
		}
	}

	req, err := http.NewRequest(details.Method, server.URL+details.Path, reqBodyReader)
	require.NoError(t, err, "Failed to create request")

	if reqBodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if details.Identifier != "" {
		req.Header.Set(config.DefaultIdentityHeader, details.Identifier)
	}
	for key, value := range details.Headers {
		req.Header.Set(key, value)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err, "Failed to execute request")
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")

	var env envelope
	require.NoError(t, json.Unmarshal(respBodyBytes, &env), "response is not an envelope: %s", string(respBodyBytes))
	assert.Equal(t, resp.StatusCode, env.Code, "envelope code should mirror the HTTP status")

	return resp.StatusCode, env
}

func (a *testApp) do(t *testing.T, method, path, identifier string, body interface{}) (int, envelope) {
	t.Helper()
	return sendRequest(t, a.server, httpRequestDetails{Method: method, Path: path, Body: body, Identifier: identifier})
}

// decodeData は envelope の data を dst にデコードします。
func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst), "failed to decode data: %s", string(env.Data))
}

func errorReason(t *testing.T, env envelope) errorData {
	t.Helper()
	var data errorData
	decodeData(t, env, &data)
	return data
}

// createMemo はメモを作成し、作成されたメモを返します。
func (a *testApp) createMemo(t *testing.T, identifier string, body map[string]interface{}) memoBody {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/api/memos", identifier, body)
	require.Equal(t, http.StatusCreated, status, "create memo failed: %s", env.Message)
	var memo memoBody
	decodeData(t, env, &memo)
	return memo
}

func (a *testApp) profile(t *testing.T, identifier string) tenantBody {
	t.Helper()
	status, env := a.do(t, http.MethodGet, "/api/users/profile", identifier, nil)
	require.Equal(t, http.StatusOK, status)
	var tenant tenantBody
	decodeData(t, env, &tenant)
	return tenant
}
