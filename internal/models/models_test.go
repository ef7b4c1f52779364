package models_test

import (
	"testing"

	"ideaspark/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderPredicates(t *testing.T) {
	o := &models.Order{Status: models.OrderStatusPending}
	assert.True(t, o.IsPending())
	assert.False(t, o.IsPaid())

	o.Status = models.OrderStatusPaid
	assert.True(t, o.IsPaid())
	assert.False(t, o.IsPending())
}

func TestUserIsActive(t *testing.T) {
	assert.True(t, (&models.User{Status: models.UserStatusActive}).IsActive())
	assert.False(t, (&models.User{Status: models.UserStatusInactive}).IsActive())
}

func TestPreferencesRoundTrip(t *testing.T) {
	prefs := models.Preferences{"theme": "dark"}
	v, err := prefs.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"theme":"dark"}`, v)

	var scanned models.Preferences
	require.NoError(t, scanned.Scan([]byte(`{"theme":"dark"}`)))
	assert.Equal(t, "dark", scanned["theme"])

	require.NoError(t, scanned.Scan(nil))
	assert.Empty(t, scanned)

	assert.Error(t, scanned.Scan(42))
}
