package modalkit

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompletion(t *testing.T) {
	c := NewCompletion(CompletionTypeChat, "user-1", "test-model")

	assert.True(t, strings.HasPrefix(c.ID, "cmpl-"))
	assert.Equal(t, CompletionTypeChat, c.Type)
	assert.Equal(t, "user-1", c.PartitionKey)
	assert.Equal(t, "test-model", c.Model)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestNewCompletionIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		c := NewCompletion(CompletionTypeText, "", "")
		assert.False(t, seen[c.ID])
		seen[c.ID] = true
	}
}

func TestCompletionJSONOmitsEmptyPayloads(t *testing.T) {
	c := NewCompletion(CompletionTypeBalance, "", "")
	c.Balance = 0

	data, err := json.Marshal(c)
	require.NoError(t, err)

	raw := string(data)
	assert.Contains(t, raw, `"type":"balance"`)
	assert.NotContains(t, raw, "message")
	assert.NotContains(t, raw, "imageUrl")
	assert.NotContains(t, raw, "usage")
}
