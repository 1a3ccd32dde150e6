package service

import (
	"context"

	"go.uber.org/zap"

	"buildhub/internal/model"
)

// Targets is the addressing of one dispatch call. Global broadcasts create a
// single record; the other three modes are resolved to concrete users.
type Targets struct {
	RecipientID  string
	RecipientIDs []string
	Roles        []string
	Global       bool
}

func (t Targets) empty() bool {
	return t.RecipientID == "" && len(t.RecipientIDs) == 0 && len(t.Roles) == 0
}

// ResolveOptions tunes one resolution. SkipUserID is typically the actor that
// triggered the event, to avoid self-notification.
type ResolveOptions struct {
	SkipUserID string
}

// RecipientResolver turns targets into a deduplicated list of user IDs,
// dropping disabled users and the skip identity. The seen-set lives for one
// Resolve call, so a user matched by both an explicit list and a role comes
// out exactly once.
type RecipientResolver struct {
	users  UserStore
	logger *zap.Logger
}

func NewRecipientResolver(users UserStore, logger *zap.Logger) *RecipientResolver {
	return &RecipientResolver{
		users:  users,
		logger: logger,
	}
}

// Resolve returns recipients in first-seen order. A failed user lookup or
// role query is logged and skipped; it never fails the remaining targets.
func (r *RecipientResolver) Resolve(ctx context.Context, targets Targets, opts ResolveOptions) []string {
	seen := map[string]bool{}
	recipients := []string{}

	admit := func(u *model.User) {
		if u.Disabled || u.ID == opts.SkipUserID || seen[u.ID] {
			return
		}
		seen[u.ID] = true
		recipients = append(recipients, u.ID)
	}

	ids := targets.RecipientIDs
	if targets.RecipientID != "" {
		ids = append([]string{targets.RecipientID}, ids...)
	}
	for _, id := range ids {
		u, err := r.users.FindByID(ctx, id)
		if err != nil {
			r.logger.Warn("Skipping unresolvable recipient",
				zap.String("user_id", id),
				zap.Error(err),
			)
			continue
		}
		admit(u)
	}

	for _, role := range targets.Roles {
		users, err := r.users.ListByRole(ctx, role)
		if err != nil {
			r.logger.Warn("Skipping unresolvable role",
				zap.String("role", role),
				zap.Error(err),
			)
			continue
		}
		for i := range users {
			admit(&users[i])
		}
	}

	return recipients
}
