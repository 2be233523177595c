package models

import (
	"testing"

	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUserProfile_Defaults(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want UserProfile
	}{
		{
			name: "no document",
			data: nil,
			want: UserProfile{UserID: "u"},
		},
		{
			name: "marker only",
			data: map[string]any{"suppliesLastFetched": "2025-01-01T00:00:00Z"},
			want: UserProfile{UserID: "u"},
		},
		{
			name: "admin without permissions gets all",
			data: map[string]any{FieldRole: "Admin", FieldEmail: "a@x.org"},
			want: UserProfile{UserID: "u", Email: "a@x.org", Role: RoleAdmin, Managed: true,
				Permissions: Permissions{CanEdit: true, CanUpload: true, CanDelete: true}},
		},
		{
			name: "staff missing canDelete",
			data: map[string]any{FieldRole: RoleStaff, FieldPermissions: map[string]any{FieldCanEdit: true, FieldCanUpload: "true"}},
			want: UserProfile{UserID: "u", Role: RoleStaff, Managed: true,
				Permissions: Permissions{CanEdit: true, CanUpload: true}},
		},
		{
			name: "blocked without role is staff",
			data: map[string]any{FieldIsBlocked: true},
			want: UserProfile{UserID: "u", Role: RoleStaff, Managed: true, IsBlocked: true},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeUserProfile("u", tc.data)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeUserProfile_Invalid(t *testing.T) {
	_, err := DecodeUserProfile("u", map[string]any{FieldRole: "root"})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = DecodeUserProfile("u", map[string]any{FieldRole: RoleStaff, FieldPermissions: "all"})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = DecodeUserProfile("u", map[string]any{FieldIsBlocked: 1.0})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUserProfile_Allows(t *testing.T) {
	assert.True(t, UserProfile{}.Allows(PermDelete), "unmanaged")

	admin := UserProfile{Role: RoleAdmin, Managed: true, Permissions: Permissions{CanEdit: true, CanUpload: true, CanDelete: true}}
	assert.True(t, admin.Allows(PermDelete))
	assert.True(t, admin.IsAdmin())

	admin.IsBlocked = true
	assert.False(t, admin.Allows(PermEdit))

	staff := UserProfile{Role: RoleStaff, Managed: true, Permissions: Permissions{CanUpload: true}}
	assert.True(t, staff.Allows(PermUpload))
	assert.False(t, staff.Allows(PermEdit))
	assert.False(t, staff.Allows(Permission("rename")))
}
