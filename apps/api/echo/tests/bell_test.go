package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/timeac/apps/api/echo"
	"github.com/trezcool/timeac/core/bell"
)

func Test_bellApi(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{
			name:     "retrieve defaults",
			method:   http.MethodGet,
			path:     "/v1/bell",
			token:    app.token,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, BellResponse{Controls: bell.DefaultControls()}),
		},
		{
			name:     "silence",
			method:   http.MethodPatch,
			path:     "/v1/bell",
			body:     []byte(`{"isSilenced": true}`),
			token:    app.token,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, BellResponse{Controls: bell.Controls{AutoRingEnabled: true, IsSilenced: true}}),
		},
		{
			name:     "disable auto ring",
			method:   http.MethodPatch,
			path:     "/v1/bell",
			body:     []byte(`{"autoRingEnabled": false}`),
			token:    app.token,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, BellResponse{Controls: bell.Controls{IsSilenced: true}}),
		},
		{
			name:     "empty patch",
			method:   http.MethodPatch,
			path:     "/v1/bell",
			body:     []byte(`{}`),
			token:    app.token,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "provide at least one of autoRingEnabled or isSilenced"}),
		},
		{
			name:     "ring",
			method:   http.MethodPost,
			path:     "/v1/bell/ring",
			token:    app.token,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, BellResponse{Controls: bell.Controls{ManualRing: 1, IsRinging: true, IsSilenced: true}}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(tt))
		})
	}
}

func Test_bellApi_currentAlias(t *testing.T) {
	app := setup(t)
	require.NoError(t, app.bellSvc.PublishAlias(context.Background(), "R"))

	rec := app.do(httpTest{method: http.MethodGet, path: "/v1/bell", token: app.token})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BellResponse
	unmarshallObj(t, rec.Body.Bytes(), &resp)
	assert.Equal(t, "R", resp.CurrentAlias)
}
