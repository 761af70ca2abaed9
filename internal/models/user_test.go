// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/mauricehans/moto/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_IsAdmin(t *testing.T) {
	tests := []struct {
		name     string
		user     models.User
		expected bool
	}{
		{"active staff superuser", models.User{IsActive: true, IsStaff: true, IsSuperuser: true}, true},
		{"inactive", models.User{IsStaff: true, IsSuperuser: true}, false},
		{"staff only", models.User{IsActive: true, IsStaff: true}, false},
		{"superuser only", models.User{IsActive: true, IsSuperuser: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.IsAdmin())
		})
	}
}

func TestUser_LastLoginUnix(t *testing.T) {
	user := &models.User{}
	assert.Zero(t, user.LastLoginUnix())

	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	user.LastLogin = sql.NullTime{Time: ts, Valid: true}
	assert.Equal(t, ts.Unix(), user.LastLoginUnix())
}

func TestStringList_Scan(t *testing.T) {
	var l models.StringList

	require.NoError(t, l.Scan(`["abs","heated grips"]`))
	assert.Equal(t, models.StringList{"abs", "heated grips"}, l)

	require.NoError(t, l.Scan([]byte(`null`)))
	assert.Equal(t, models.StringList{}, l)

	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)

	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("not json"))
}

func TestStringList_ValueNil(t *testing.T) {
	var l models.StringList
	v, err := l.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestJSONMap_Scan(t *testing.T) {
	var m models.JSONMap

	require.NoError(t, m.Scan(`{"facebook":"https://fb.example"}`))
	assert.Equal(t, "https://fb.example", m["facebook"])

	require.NoError(t, m.Scan(""))
	assert.Empty(t, m)
}

func TestMakeExcerpt(t *testing.T) {
	assert.Equal(t, "short", models.MakeExcerpt("short"))

	long := strings.Repeat("é", 400)
	excerpt := models.MakeExcerpt(long)
	assert.Equal(t, models.ExcerptLength, len([]rune(excerpt)))
	assert.True(t, strings.HasSuffix(excerpt, "..."))
}

func TestDefaultGarageSettings(t *testing.T) {
	s := models.DefaultGarageSettings()

	assert.Equal(t, "Agde Moto Gattuso", s.Name)
	assert.Len(t, s.BusinessHours, 7)
	sunday, ok := s.BusinessHours["sunday"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, sunday["is_closed"])
}

func TestValidLicenseAndCondition(t *testing.T) {
	assert.True(t, models.ValidLicense("A2"))
	assert.False(t, models.ValidLicense("B"))
	assert.True(t, models.ValidCondition(models.ConditionRefurbished))
	assert.False(t, models.ValidCondition("broken"))
}
