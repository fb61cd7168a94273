package dto

import (
	"encoding/json"
	"testing"
	"time"

	dom "github.com/hirmezb/tasktracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDueDate_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    *time.Time
		set     bool
		wantErr bool
	}{
		{name: "absent", body: `{}`},
		{name: "null clears", body: `{"dueDate":null}`, set: true},
		{name: "empty clears", body: `{"dueDate":""}`, set: true},
		{name: "date only", body: `{"dueDate":"2026-07-04"}`, set: true, want: ptr(time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC))},
		{name: "rfc3339", body: `{"dueDate":"2026-07-04T10:30:00+02:00"}`, set: true, want: ptr(time.Date(2026, 7, 4, 8, 30, 0, 0, time.UTC))},
		{name: "garbage", body: `{"dueDate":"next tuesday"}`, wantErr: true},
		{name: "wrong type", body: `{"dueDate":42}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateTaskRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDueDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.set, req.DueDate.Set)
			if tt.want == nil {
				assert.Nil(t, req.DueDate.Ptr())
			} else {
				require.NotNil(t, req.DueDate.Ptr())
				assert.True(t, tt.want.Equal(*req.DueDate.Ptr()))
			}
		})
	}
}

func TestUpdateTaskRequest_IgnoresNonAllowListedFields(t *testing.T) {
	var req UpdateTaskRequest
	body := `{"completed":true,"user":"someone-else","id":"x","createdAt":"2000-01-01T00:00:00Z"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	p := req.ToPatch()
	require.NotNil(t, p.Completed)
	assert.True(t, *p.Completed)
	assert.Nil(t, p.Title)
	assert.Nil(t, p.Priority)
	assert.False(t, p.DueDateSet)
}

func TestUpdateTaskRequest_ToPatchPriority(t *testing.T) {
	var req UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"priority":"high","title":"t"}`), &req))

	p := req.ToPatch()
	require.NotNil(t, p.Priority)
	assert.Equal(t, dom.PriorityHigh, *p.Priority)
	assert.Equal(t, "t", *p.Title)
}

func ptr[T any](v T) *T { return &v }
