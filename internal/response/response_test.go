package response

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/keydrop-back/internal/testutil"
)

func TestResponse_Success(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]interface{}
		wantFields []string
	}{
		{
			name: "正常系: 基本的な成功レスポンス",
			data: map[string]interface{}{
				"id":      "abc123",
				"message": "生成しました",
			},
			wantFields: []string{"error", "id", "message"},
		},
		{
			name:       "正常系: 空のデータ",
			data:       map[string]interface{}{},
			wantFields: []string{"error"},
		},
		{
			name: "正常系: ネストしたデータ",
			data: map[string]interface{}{
				"key": map[string]interface{}{
					"id": "123",
					"x":  10.5,
				},
			},
			wantFields: []string{"error", "key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContext(http.MethodGet, "/", nil)

			err := Success(tc.Context, tt.data)

			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, tc.Recorder.Code)

			var resp map[string]interface{}
			json.Unmarshal(tc.Recorder.Body.Bytes(), &resp)

			assert.Equal(t, false, resp["error"])
			for _, field := range tt.wantFields {
				assert.Contains(t, resp, field)
			}
		})
	}
}

func TestResponse_Error(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		message    string
		wantStatus int
		wantError  bool
	}{
		{
			name:       "BadRequest",
			statusCode: http.StatusBadRequest,
			message:    "入力が不正です",
			wantStatus: http.StatusBadRequest,
			wantError:  true,
		},
		{
			name:       "Unauthorized",
			statusCode: http.StatusUnauthorized,
			message:    "認証が必要です",
			wantStatus: http.StatusUnauthorized,
			wantError:  true,
		},
		{
			name:       "Forbidden",
			statusCode: http.StatusForbidden,
			message:    "アクセスが拒否されました",
			wantStatus: http.StatusForbidden,
			wantError:  true,
		},
		{
			name:       "InternalServerError",
			statusCode: http.StatusInternalServerError,
			message:    "サーバーエラーが発生しました",
			wantStatus: http.StatusInternalServerError,
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContext(http.MethodGet, "/", nil)

			err := Error(tc.Context, tt.statusCode, tt.message)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, tc.Recorder.Code)

			var resp map[string]interface{}
			json.Unmarshal(tc.Recorder.Body.Bytes(), &resp)

			assert.Equal(t, tt.wantError, resp["error"])
			assert.Equal(t, tt.message, resp["message"])
			assert.Nil(t, resp["code"], "通常のエラーにはcodeがないべき")
		})
	}
}

func TestResponse_Created(t *testing.T) {
	tc := testutil.NewTestContext(http.MethodPost, "/", nil)

	err := Created(tc.Context, map[string]interface{}{"id": "k1", "error": true})

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, tc.Recorder.Code)

	resp := tc.GetResponseBody()
	// errorフィールドは上書きできない
	assert.Equal(t, false, resp["error"])
	assert.Equal(t, "k1", resp["id"])
}

func TestResponse_Helpers(t *testing.T) {
	tests := []struct {
		name       string
		call       func(c echo.Context) error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "BadRequest",
			call:       func(c echo.Context) error { return BadRequest(c, "入力が不正です") },
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidRequest,
		},
		{
			name:       "Unavailable",
			call:       func(c echo.Context) error { return Unavailable(c, "S3") },
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   CodeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContext(http.MethodGet, "/", nil)

			require.NoError(t, tt.call(tc.Context))

			assert.Equal(t, tt.wantStatus, tc.Recorder.Code)
			resp := tc.GetResponseBody()
			assert.Equal(t, true, resp["error"])
			assert.Equal(t, tt.wantCode, resp["code"])
		})
	}
}

func TestResponse_ErrorWithCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		code       string
		message    string
		wantCode   string
	}{
		{
			name:       "BOX_TOO_SMALL",
			statusCode: http.StatusUnprocessableEntity,
			code:       CodeBoxTooSmall,
			message:    "枠が小さすぎます",
			wantCode:   "BOX_TOO_SMALL",
		},
		{
			name:       "NOT_FOUND",
			statusCode: http.StatusNotFound,
			code:       CodeNotFound,
			message:    "キーが見つかりません",
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "INTERNAL_ERROR",
			statusCode: http.StatusInternalServerError,
			code:       CodeInternalError,
			message:    "サーバーエラーが発生しました",
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContext(http.MethodGet, "/", nil)

			err := ErrorWithCode(tc.Context, tt.statusCode, tt.code, tt.message)

			require.NoError(t, err)
			assert.Equal(t, tt.statusCode, tc.Recorder.Code)

			var resp map[string]interface{}
			json.Unmarshal(tc.Recorder.Body.Bytes(), &resp)

			assert.Equal(t, true, resp["error"])
			assert.Equal(t, tt.wantCode, resp["code"])
			assert.Equal(t, tt.message, resp["message"])
		})
	}
}

func TestResponse_ContentType(t *testing.T) {
	tc := testutil.NewTestContext(http.MethodGet, "/", nil)

	Success(tc.Context, map[string]interface{}{"test": true})

	contentType := tc.Recorder.Header().Get("Content-Type")
	assert.Contains(t, contentType, "application/json")
}
