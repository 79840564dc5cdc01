package middleware

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/kyiku/keydrop-back/internal/testutil"
)

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name            string
		origin          string
		method          string
		wantAllowOrigin string
		wantStatus      int
	}{
		{
			name:            "正常系: 許可されたオリジン",
			origin:          "https://example.cloudfront.net",
			method:          http.MethodGet,
			wantAllowOrigin: "https://example.cloudfront.net",
			wantStatus:      http.StatusOK,
		},
		{
			name:            "正常系: localhostオリジン",
			origin:          "http://localhost:3000",
			method:          http.MethodGet,
			wantAllowOrigin: "http://localhost:3000",
			wantStatus:      http.StatusOK,
		},
		{
			name:            "正常系: 設定されたオリジン",
			origin:          "https://keys.example.com",
			method:          http.MethodDelete,
			wantAllowOrigin: "https://keys.example.com",
			wantStatus:      http.StatusOK,
		},
		{
			name:            "正常系: PREFLIGHTリクエスト",
			origin:          "https://example.cloudfront.net",
			method:          http.MethodOptions,
			wantAllowOrigin: "https://example.cloudfront.net",
			wantStatus:      http.StatusNoContent,
		},
		{
			name:            "異常系: 許可されていないオリジン",
			origin:          "https://malicious-site.com",
			method:          http.MethodGet,
			wantAllowOrigin: "",
			wantStatus:      http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContext(tt.method, "/api/keys", nil)
			tc.Request.Header.Set("Origin", tt.origin)

			handler := CORSMiddleware("https://keys.example.com/")(func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})

			err := handler(tc.Context)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, tc.Recorder.Code)
			assert.Equal(t, tt.wantAllowOrigin, tc.Recorder.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantAllowOrigin != "" {
				methods := tc.Recorder.Header().Get("Access-Control-Allow-Methods")
				assert.Contains(t, methods, "PUT")
				assert.Contains(t, methods, "DELETE")
				assert.Equal(t, "true", tc.Recorder.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}
