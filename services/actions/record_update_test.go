package actions

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grantpulse/agentgate/models"
	"github.com/grantpulse/agentgate/services"
	"github.com/grantpulse/agentgate/services/schema"
)

func TestRecordUpdateExecutor_DryRun(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer server.Close()

	executor := NewRecordUpdateExecutor(testHTTPClient(), testDownstreamConfig(server.URL), zap.NewNop())

	result, err := executor.Execute(context.Background(),
		&schema.RecordUpdateParams{
			RecordID: "rec-9",
			Fields:   map[string]interface{}{"title": "Staff Engineer", "level": "L6"},
		},
		acmeTenant(), models.ModeDryRun)
	require.NoError(t, err)

	assert.Equal(t, int64(0), atomic.LoadInt64(&calls))
	data := result.Result.(map[string]interface{})
	assert.Equal(t, "rec-9", data["recordId"])
	assert.Equal(t, []string{"level", "title"}, data["fields"])
	assert.Contains(t, data["description"], "rec-9")
}

func TestRecordUpdateExecutor_Execute(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"updated":true}`))
	}))
	defer server.Close()

	executor := NewRecordUpdateExecutor(testHTTPClient(), testDownstreamConfig(server.URL), zap.NewNop())

	result, err := executor.Execute(context.Background(),
		&schema.RecordUpdateParams{
			RecordID: "rec-9",
			Fields:   map[string]interface{}{"title": "Staff Engineer"},
		},
		acmeTenant(), models.ModeExecute)
	require.NoError(t, err)

	assert.Equal(t, "/records/rec-9", gotPath)
	assert.Equal(t, "Bearer acme-pave-key", gotAuth)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(gotBody, &body))
	fields := body["fields"].(map[string]interface{})
	assert.Equal(t, "Staff Engineer", fields["title"])

	data := result.Result.(map[string]interface{})
	assert.Equal(t, "rec-9", data["recordId"])
	assert.Equal(t, []string{"title"}, data["updated"])
}

func TestRecordUpdateExecutor_ReadOnlyFieldNotes(t *testing.T) {
	executor := NewRecordUpdateExecutor(testHTTPClient(), testDownstreamConfig("http://unused.invalid"), zap.NewNop())

	result, err := executor.Execute(context.Background(),
		&schema.RecordUpdateParams{
			RecordID: "rec-9",
			Fields: map[string]interface{}{
				"id":    "rec-other",
				"title": "Engineer",
				"meta": map[string]interface{}{
					"updatedAt": "2026-01-01",
				},
			},
		},
		acmeTenant(), models.ModeDryRun)
	require.NoError(t, err)

	require.Len(t, result.Notes, 2)
	assert.Contains(t, result.Notes[0], `field "id" is read-only`)
	assert.Contains(t, result.Notes[1], `field "meta.updatedAt" is read-only`)
}

func TestRecordUpdateExecutor_DownstreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	executor := NewRecordUpdateExecutor(testHTTPClient(), testDownstreamConfig(server.URL), zap.NewNop())

	_, err := executor.Execute(context.Background(),
		&schema.RecordUpdateParams{RecordID: "rec-9", Fields: map[string]interface{}{"title": "x"}},
		acmeTenant(), models.ModeExecute)
	require.Error(t, err)
	assert.True(t, services.IsDownstreamError(err))
}

func TestLintFields(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]interface{}
		want   []string
	}{
		{
			name:   "clean fields",
			fields: map[string]interface{}{"title": "x", "level": "L5"},
			want:   nil,
		},
		{
			name:   "top-level read-only",
			fields: map[string]interface{}{"createdAt": "now"},
			want:   []string{`field "createdAt" is read-only downstream and will be ignored`},
		},
		{
			name: "read-only inside arrays",
			fields: map[string]interface{}{
				"grants": []interface{}{
					map[string]interface{}{"id": "g-1", "amount": 10},
				},
			},
			want: []string{`field "grants.id" is read-only downstream and will be ignored`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lintFields(tt.fields))
		})
	}
}
