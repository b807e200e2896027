package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, ValidCategory(c), c)
	}
	assert.False(t, ValidCategory("fusion"))
	assert.False(t, ValidCategory(""))
	assert.False(t, ValidCategory("Meats_Seafood"))
}

func TestValidDecision(t *testing.T) {
	assert.True(t, ValidDecision(DecisionActive))
	assert.True(t, ValidDecision(DecisionRejected))
	assert.False(t, ValidDecision("pending_approval"))
	assert.False(t, ValidDecision(""))
}
