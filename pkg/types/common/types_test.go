package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Validate(t *testing.T) {
	assert.NoError(t, NewID().Validate())
	assert.Error(t, ID("").Validate())
	assert.Error(t, ID("not-a-uuid").Validate())
}

func TestTimestamp_JSONRoundTrip(t *testing.T) {
	ts := Timestamp(time.Date(2025, 6, 10, 12, 30, 0, 0, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-10T12:30:00Z"`, string(data))

	var parsed Timestamp
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, time.Time(ts).Equal(time.Time(parsed)))
}

func TestPagination_Validate(t *testing.T) {
	assert.NoError(t, Pagination{Page: 1, PageSize: 20}.Validate())
	assert.Error(t, Pagination{Page: 0, PageSize: 20}.Validate())
	assert.Error(t, Pagination{Page: 1, PageSize: 0}.Validate())
	assert.Error(t, Pagination{Page: 1, PageSize: 501}.Validate())
}

func TestPagination_Offset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Pagination{Page: 3, PageSize: 20}.Offset())
}

func TestAPIResponse(t *testing.T) {
	ok := NewSuccessResponse("payload")
	assert.True(t, ok.Success)
	assert.Equal(t, "payload", ok.Data)
	assert.Nil(t, ok.Error)

	bad := NewErrorResponse("OBL_001", "obligation not found")
	assert.False(t, bad.Success)
	require.NotNil(t, bad.Error)
	assert.Equal(t, "OBL_001", bad.Error.Code)
}
