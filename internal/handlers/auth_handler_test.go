package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"go_memo_keep/internal/config"
	"go_memo_keep/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withWechatServer は実際のWeChat APIの代わりに固定のレスポンスを返すサーバーを使います。
func withWechatServer(t *testing.T, body string) func(*config.Config) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return func(c *config.Config) {
		c.Wechat.Provider = config.ProviderWechat
		c.Wechat.AppID = "wx1234567890abcdef"
		c.Wechat.Secret = "abcdef1234567890abcdef1234567890"
		c.Wechat.BaseURL = srv.URL
	}
}

func TestAuthAPI_WechatLogin(t *testing.T) {
	testCases := []struct {
		name         string
		opts         []func(*config.Config)
		body         interface{}
		expectedCode int
		wantReason   string
		check        func(t *testing.T, tenant tenantBody)
	}{
		{
			name:         "正常系: スタブプロバイダでログイン",
			body:         map[string]string{"code": "0123456789abc", "nickname": "Henry"},
			expectedCode: http.StatusOK,
			check: func(t *testing.T, tenant tenantBody) {
				assert.True(t, strings.HasPrefix(tenant.UserID, "wx_stub_"), tenant.UserID)
				assert.Equal(t, model.ChannelWechat, tenant.UserType)
				require.NotNil(t, tenant.OpenID)
				assert.Equal(t, "wx_"+*tenant.OpenID, tenant.UserID)
				assert.Equal(t, "Henry", *tenant.Nickname)
			},
		},
		{
			name:         "正常系: WeChat API から openid を取得",
			opts:         []func(*config.Config){withWechatServer(t, `{"openid":"o-abc","session_key":"sk"}`)},
			body:         map[string]string{"code": "0123456789abc"},
			expectedCode: http.StatusOK,
			check: func(t *testing.T, tenant tenantBody) {
				assert.Equal(t, "wx_o-abc", tenant.UserID)
			},
		},
		{
			name:         "異常系: code がない",
			body:         map[string]string{},
			expectedCode: http.StatusBadRequest,
			wantReason:   "VALIDATION_ERROR",
		},
		{
			name:         "異常系: code が短すぎる",
			body:         map[string]string{"code": "short"},
			expectedCode: http.StatusBadRequest,
			wantReason:   "VALIDATION_ERROR",
		},
		{
			name:         "異常系: JSON形式が不正",
			body:         `{"code": `,
			expectedCode: http.StatusBadRequest,
			wantReason:   "INVALID_REQUEST_BODY",
		},
		{
			name:         "異常系: 無効なコード",
			body:         map[string]string{"code": "invalid-0123456789"},
			expectedCode: http.StatusBadRequest,
			wantReason:   "INVALID_LOGIN_CODE",
		},
		{
			name:         "異常系: 頻度制限",
			opts:         []func(*config.Config){withWechatServer(t, `{"errcode":45011,"errmsg":"limit"}`)},
			body:         map[string]string{"code": "0123456789abc"},
			expectedCode: http.StatusTooManyRequests,
			wantReason:   "PROVIDER_RATE_LIMITED",
		},
		{
			name:         "異常系: 高リスクユーザー",
			opts:         []func(*config.Config){withWechatServer(t, `{"errcode":40226,"errmsg":"risk"}`)},
			body:         map[string]string{"code": "0123456789abc"},
			expectedCode: http.StatusForbidden,
			wantReason:   "PROVIDER_RISK_BLOCKED",
		},
		{
			name:         "異常系: AppSecret が無効",
			opts:         []func(*config.Config){withWechatServer(t, `{"errcode":40125,"errmsg":"invalid appsecret"}`)},
			body:         map[string]string{"code": "0123456789abc"},
			expectedCode: http.StatusInternalServerError,
			wantReason:   "PROVIDER_CONFIG_ERROR",
		},
		{
			name:         "異常系: WeChat API の未知のエラー",
			opts:         []func(*config.Config){withWechatServer(t, `{"errcode":12345,"errmsg":"?"}`)},
			body:         map[string]string{"code": "0123456789abc"},
			expectedCode: http.StatusBadGateway,
			wantReason:   "PROVIDER_UNAVAILABLE",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, tc.opts...)
			status, env := app.do(t, http.MethodPost, "/api/auth/wechat-login", "", tc.body)
			require.Equal(t, tc.expectedCode, status, env.Message)
			if tc.wantReason != "" {
				assert.Equal(t, tc.wantReason, errorReason(t, env).Reason)
			}
			if tc.check != nil {
				var tenant tenantBody
				decodeData(t, env, &tenant)
				tc.check(t, tenant)
			}
		})
	}
}

func TestAuthAPI_TestLogin(t *testing.T) {
	app := newTestApp(t)
	pattern := regexp.MustCompile(`^h5_test_\d+_[0-9a-f]{8}$`)

	status, env := app.do(t, http.MethodPost, "/api/auth/test-login", "", nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	var tenant tenantBody
	decodeData(t, env, &tenant)
	assert.Regexp(t, pattern, tenant.UserID)
	assert.Equal(t, model.ChannelH5, tenant.UserType)

	// 発行された識別子はそのままゲートを通る
	assert.Equal(t, tenant.UserID, app.profile(t, tenant.UserID).UserID)

	status, env = app.do(t, http.MethodPost, "/api/auth/test-login", "", map[string]string{"userType": "app", "nickname": "tester"})
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &tenant)
	assert.True(t, strings.HasPrefix(tenant.UserID, "app_test_"))
	assert.Equal(t, "tester", *tenant.Nickname)

	status, env = app.do(t, http.MethodPost, "/api/auth/test-login", "", map[string]string{"userType": "admin"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", errorReason(t, env).Reason)
}

func TestAuthAPI_TestLogin_Disabled(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.Auth.TestLoginEnabled = false })

	status, env := app.do(t, http.MethodPost, "/api/auth/test-login", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ROUTE_NOT_FOUND", errorReason(t, env).Reason)

	var count int64
	require.NoError(t, app.db.Model(&model.Tenant{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAuthAPI_WechatConfig(t *testing.T) {
	t.Run("異常系: 未設定", func(t *testing.T) {
		app := newTestApp(t)
		status, env := app.do(t, http.MethodGet, "/api/auth/wechat-config", "", nil)
		require.Equal(t, http.StatusOK, status)

		var report model.ProviderConfigReport
		decodeData(t, env, &report)
		assert.False(t, report.Configured)
		assert.Len(t, report.Errors, 2)
	})

	t.Run("正常系: 設定済み", func(t *testing.T) {
		app := newTestApp(t, func(c *config.Config) {
			c.Wechat.AppID = "wx1234567890abcdef"
			c.Wechat.Secret = "abcdef1234567890abcdef1234567890"
		})
		status, env := app.do(t, http.MethodGet, "/api/auth/wechat-config", "", nil)
		require.Equal(t, http.StatusOK, status)

		var report model.ProviderConfigReport
		decodeData(t, env, &report)
		assert.True(t, report.Configured)
		assert.Empty(t, report.Warnings)
		assert.NotContains(t, string(env.Data), "abcdef1234567890abcdef1234567890", "シークレットは返さない")
	})
}

func TestAuthAPI_TestWechatAPI(t *testing.T) {
	testCases := []struct {
		name         string
		opts         []func(*config.Config)
		expectedCode int
		wantSuccess  bool
	}{
		{
			name:         "正常系: 無効なコードとして拒否されれば成功",
			opts:         []func(*config.Config){withWechatServer(t, `{"errcode":40029,"errmsg":"invalid code"}`)},
			expectedCode: http.StatusOK,
			wantSuccess:  true,
		},
		{
			name:         "異常系: AppID が無効",
			opts:         []func(*config.Config){withWechatServer(t, `{"errcode":40013,"errmsg":"invalid appid"}`)},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "異常系: 未設定",
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, tc.opts...)
			status, env := app.do(t, http.MethodPost, "/api/auth/test-wechat-api", "", nil)
			require.Equal(t, tc.expectedCode, status, env.Message)

			var result model.ProviderProbeResult
			decodeData(t, env, &result)
			assert.Equal(t, tc.wantSuccess, result.Success)
			assert.Equal(t, result.Message, env.Message)
			assert.NotContains(t, string(env.Data), "providerCode", "WeChat のエラーコードは返さない")
			assert.NotContains(t, string(env.Data), "40013")
		})
	}
}
