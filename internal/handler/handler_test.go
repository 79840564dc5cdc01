package handler

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/keydrop-back/internal/board"
	"github.com/kyiku/keydrop-back/internal/keyshape"
	"github.com/kyiku/keydrop-back/internal/testutil"
)

func newTestBoard() *board.Board {
	return board.New(board.Options{
		Width:        1024,
		Height:       768,
		GravityScale: 900,
		MaxAttempts:  30,
		Step:         10,
	}, keyshape.NewGenerator(), testutil.NewTestLogger())
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []map[string]interface{}
}

func (r *recordingBroadcaster) Broadcast(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := v.(map[string]interface{}); ok {
		r.messages = append(r.messages, m)
	}
}

func (r *recordingBroadcaster) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	for i, m := range r.messages {
		out[i], _ = m["type"].(string)
	}
	return out
}

type fixedCounter int

func (f fixedCounter) Len() int { return int(f) }

func TestHealthHandler_Check(t *testing.T) {
	tests := []struct {
		name        string
		keys        Counter
		clients     Counter
		wantKeys    interface{}
		wantClients interface{}
	}{
		{
			name: "正常系: カウンタなし",
		},
		{
			name:        "正常系: カウンタあり",
			keys:        fixedCounter(3),
			clients:     fixedCounter(2),
			wantKeys:    float64(3),
			wantClients: float64(2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContext(http.MethodGet, "/health", nil)

			h := NewHealthHandler(tt.keys, tt.clients)
			err := h.Check(tc.Context)

			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, tc.Recorder.Code)

			resp := testutil.AssertJSONResponse(tc.Recorder)
			assert.Equal(t, "ok", resp["status"])
			assert.Equal(t, tt.wantKeys, resp["keys"])
			assert.Equal(t, tt.wantClients, resp["clients"])
		})
	}
}
