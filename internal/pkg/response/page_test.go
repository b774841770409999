package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageResponse(t *testing.T) {
	p := NewPageResponse[string](nil, 1, 20, 0)
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"page":1,"page_size":20,"total":0,"has_next":false}`, string(raw))

	assert.True(t, NewPageResponse([]int{1, 2}, 1, 2, 3).HasNext)
	assert.False(t, NewPageResponse([]int{3}, 2, 2, 3).HasNext)
}
