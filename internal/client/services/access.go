package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medsupply/internal/client/client"
	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/dmitrijs2005/medsupply/internal/logging"
)

// AccessControl checks user profiles in the users collection before writes.
type AccessControl struct {
	store  client.Store
	logger logging.Logger
}

func NewAccessControl(store client.Store, l logging.Logger) *AccessControl {
	return &AccessControl{store: store, logger: l.With("module", "access")}
}

// Profile loads the profile of userID. An absent document is an unmanaged
// profile.
func (a *AccessControl) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	if userID == "" {
		return models.UserProfile{}, nil
	}
	doc, err := a.store.GetByKey(ctx, common.UsersCollection, userID)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("load profile of %s: %w", userID, err)
	}
	if doc == nil {
		return models.DecodeUserProfile(userID, nil)
	}
	return models.DecodeUserProfile(userID, doc.Data)
}

// Require fails with common.ErrorUnauthorized unless userID may perform perm.
func (a *AccessControl) Require(ctx context.Context, userID string, perm models.Permission) error {
	p, err := a.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if p.Allows(perm) {
		return nil
	}
	a.logger.Warn(ctx, "permission denied", "user", userID, "permission", perm, "blocked", p.IsBlocked)
	if p.IsBlocked {
		return fmt.Errorf("%w: user %s is blocked", common.ErrorUnauthorized, userID)
	}
	return fmt.Errorf("%w: user %s lacks %s permission", common.ErrorUnauthorized, userID, perm)
}
