package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"go_memo_keep/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAPI_Register(t *testing.T) {
	app := newTestApp(t)
	const user = "h5_dave"

	status, env := app.do(t, http.MethodPost, "/api/users/register", user, map[string]string{
		"nickname":  "Dave",
		"avatarUrl": "https://example.com/a.png",
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var tenant tenantBody
	decodeData(t, env, &tenant)
	assert.Equal(t, user, tenant.UserID)
	assert.Equal(t, model.ChannelH5, tenant.UserType)
	assert.Equal(t, "Dave", *tenant.Nickname)
	assert.Nil(t, tenant.OpenID)

	// ボディなしの再登録は既存のプロフィールを消さない
	status, env = app.do(t, http.MethodPost, "/api/users/register", user, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &tenant)
	assert.Equal(t, "Dave", *tenant.Nickname)
	assert.Equal(t, "https://example.com/a.png", *tenant.AvatarURL)

	var count int64
	require.NoError(t, app.db.Model(&model.Tenant{}).Where("identifier = ?", user).Count(&count).Error)
	assert.EqualValues(t, 1, count, "登録は何度呼んでも1件")
}

func TestUserAPI_Register_Validation(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPost, "/api/users/register", "h5_eve", map[string]string{
		"nickname": strings.Repeat("x", 101),
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", errorReason(t, env).Reason)
}

func TestUserAPI_UpdateProfile(t *testing.T) {
	app := newTestApp(t)
	const user = "app_frank"

	status, _ := app.do(t, http.MethodPost, "/api/users/register", user, map[string]string{
		"nickname":  "Frank",
		"avatarUrl": "https://example.com/f.png",
	})
	require.Equal(t, http.StatusOK, status)

	testCases := []struct {
		name         string
		body         interface{}
		expectedCode int
		wantReason   string
		check        func(t *testing.T, tenant tenantBody)
	}{
		{
			name:         "異常系: 更新する項目がない",
			body:         map[string]string{},
			expectedCode: http.StatusBadRequest,
			wantReason:   "NO_PROFILE_FIELDS",
		},
		{
			name:         "異常系: ボディなし",
			body:         nil,
			expectedCode: http.StatusBadRequest,
			wantReason:   "NO_PROFILE_FIELDS",
		},
		{
			name:         "正常系: 指定しなかった項目は null で上書き",
			body:         map[string]string{"nickname": "Franky"},
			expectedCode: http.StatusOK,
			check: func(t *testing.T, tenant tenantBody) {
				assert.Equal(t, "Franky", *tenant.Nickname)
				assert.Nil(t, tenant.AvatarURL)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := app.do(t, http.MethodPut, "/api/users/profile", user, tc.body)
			require.Equal(t, tc.expectedCode, status, env.Message)
			if tc.wantReason != "" {
				assert.Equal(t, tc.wantReason, errorReason(t, env).Reason)
			}
			if tc.check != nil {
				var tenant tenantBody
				decodeData(t, env, &tenant)
				tc.check(t, tenant)
				tc.check(t, app.profile(t, user))
			}
		})
	}
}

func TestUserAPI_ProfileAutoRegisters(t *testing.T) {
	app := newTestApp(t)

	// ゲートが初回アクセスでテナントを作る
	tenant := app.profile(t, "other_newcomer")
	assert.Equal(t, "other_newcomer", tenant.UserID)
	assert.Equal(t, model.ChannelOther, tenant.UserType)
	assert.Nil(t, tenant.Nickname)
	assert.EqualValues(t, 0, tenant.MemoCount)
}

func TestUserAPI_Stats(t *testing.T) {
	app := newTestApp(t)
	const user = "wx_grace"

	app.createMemo(t, user, map[string]interface{}{"title": "a", "body": "a", "priority": 2})
	app.createMemo(t, user, map[string]interface{}{"title": "b", "body": "b", "priority": 2, "completionStatus": 1})
	app.createMemo(t, user, map[string]interface{}{"title": "c", "body": "c", "completionStatus": 1})
	app.createMemo(t, user, map[string]interface{}{"title": "d", "body": "d"})
	app.createMemo(t, "wx_someone_else", map[string]interface{}{"title": "e", "body": "e", "priority": 2})

	status, env := app.do(t, http.MethodGet, "/api/users/stats", user, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"totalMemos":4,"completedMemos":2,"pendingMemos":2,"urgentMemos":2}`, string(env.Data))

	status, env = app.do(t, http.MethodGet, "/api/users/stats", "h5_empty", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"totalMemos":0,"completedMemos":0,"pendingMemos":0,"urgentMemos":0}`, string(env.Data))
}
