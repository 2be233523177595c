package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medsupply/internal/common"
)

// Roles of a user profile.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User document field names.
const (
	FieldEmail       = "email"
	FieldDisplayName = "displayName"
	FieldRole        = "role"
	FieldPermissions = "permissions"
	FieldIsBlocked   = "isBlocked"
	FieldCanEdit     = "canEdit"
	FieldCanUpload   = "canUpload"
	FieldCanDelete   = "canDelete"
)

// Permission is an action gated by a user profile.
type Permission string

const (
	PermEdit   Permission = "edit"
	PermUpload Permission = "upload"
	PermDelete Permission = "delete"
)

type Permissions struct {
	CanEdit   bool
	CanUpload bool
	CanDelete bool
}

// UserProfile is the users/<id> document. Managed is false when the document
// is absent or carries none of the role, permissions and isBlocked fields;
// such users are not subject to access control.
type UserProfile struct {
	UserID      string
	Email       string
	DisplayName string
	Role        string
	Permissions Permissions
	IsBlocked   bool
	Managed     bool
}

func (p UserProfile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Allows reports whether the user may perform perm. Blocked users may do
// nothing.
func (p UserProfile) Allows(perm Permission) bool {
	if !p.Managed {
		return true
	}
	if p.IsBlocked {
		return false
	}
	switch perm {
	case PermEdit:
		return p.Permissions.CanEdit
	case PermUpload:
		return p.Permissions.CanUpload
	case PermDelete:
		return p.Permissions.CanDelete
	}
	return false
}

// DecodeUserProfile reads a user document. A nil document yields an
// unmanaged profile. A missing role means staff; missing permission flags
// default to true for admins and false for staff.
func DecodeUserProfile(userID string, data map[string]any) (UserProfile, error) {
	p := UserProfile{UserID: userID}
	if data == nil {
		return p, nil
	}
	p.Email = stringField(data, FieldEmail)
	p.DisplayName = stringField(data, FieldDisplayName)

	_, hasRole := data[FieldRole]
	_, hasPerms := data[FieldPermissions]
	_, hasBlocked := data[FieldIsBlocked]
	p.Managed = hasRole || hasPerms || hasBlocked
	if !p.Managed {
		return p, nil
	}

	p.Role = strings.ToLower(strings.TrimSpace(stringField(data, FieldRole)))
	switch p.Role {
	case "":
		p.Role = RoleStaff
	case RoleAdmin, RoleStaff:
	default:
		return UserProfile{}, fmt.Errorf("%w: user %q has unknown role %q", common.ErrValidation, userID, p.Role)
	}

	var err error
	if p.IsBlocked, err = boolField(data, FieldIsBlocked, false); err != nil {
		return UserProfile{}, fmt.Errorf("user %q: %w", userID, err)
	}

	perms := map[string]any{}
	switch v := data[FieldPermissions].(type) {
	case nil:
	case map[string]any:
		perms = v
	default:
		return UserProfile{}, fmt.Errorf("%w: user %q: permissions is %T", common.ErrValidation, userID, v)
	}
	def := p.IsAdmin()
	for _, f := range []struct {
		name string
		dst  *bool
	}{
		{FieldCanEdit, &p.Permissions.CanEdit},
		{FieldCanUpload, &p.Permissions.CanUpload},
		{FieldCanDelete, &p.Permissions.CanDelete},
	} {
		if *f.dst, err = boolField(perms, f.name, def); err != nil {
			return UserProfile{}, fmt.Errorf("user %q: %w", userID, err)
		}
	}
	return p, nil
}

func boolField(data map[string]any, name string, def bool) (bool, error) {
	switch v := data[name].(type) {
	case nil:
		return def, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: field %s is not a boolean: %v", common.ErrValidation, name, data[name])
}
