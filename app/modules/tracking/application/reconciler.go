package trackingservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	trackingdomain "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/domain"
	"github.com/Black-And-White-Club/elo-tracker/app/observability"
	"golang.org/x/sync/singleflight"
)

// RoleClient is the slice of the chat platform's role API the reconciler
// needs. Implementations wrap credential rejections in trackingdomain.ErrAuth.
type RoleClient interface {
	GuildRoles(ctx context.Context, guildID trackingdomain.GuildID) ([]trackingdomain.Role, error)
	GuildMember(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) (*trackingdomain.Member, error)
	// CreateRole creates a hoisted role named name.
	CreateRole(ctx context.Context, guildID trackingdomain.GuildID, name string) (*trackingdomain.Role, error)
	AddMemberRole(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, roleID string) error
	RemoveMemberRole(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, roleID string) error
}

// Reconciler brings a member's tier roles in line with a desired tier.
type Reconciler struct {
	roles       RoleClient
	logger      *slog.Logger
	metrics     observability.TrackingMetrics
	callTimeout time.Duration
	creates     singleflight.Group
}

// NewReconciler creates a Reconciler. callTimeout bounds every individual
// role API call; zero means no bound beyond ctx.
func NewReconciler(roles RoleClient, logger *slog.Logger, metrics observability.TrackingMetrics, callTimeout time.Duration) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoOpTrackingMetrics{}
	}
	return &Reconciler{
		roles:       roles,
		logger:      logger,
		metrics:     metrics,
		callTimeout: callTimeout,
	}
}

// Reconcile leaves the member holding exactly the role labelled desired, or
// no tier role at all when desired is TierUntracked. Non-tier roles are never
// touched. A held role already matching desired is kept as is.
//
// Every call is attempted once. The first failure aborts and is returned
// wrapped in ErrRoleMutation; mutations already applied are not undone.
func (r *Reconciler) Reconcile(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, desired trackingdomain.Tier) error {
	member, err := call(ctx, r.callTimeout, func(ctx context.Context) (*trackingdomain.Member, error) {
		return r.roles.GuildMember(ctx, guildID, memberID)
	})
	if err != nil {
		return fmt.Errorf("%w: fetch member: %w", trackingdomain.ErrRoleMutation, err)
	}

	guildRoles, err := call(ctx, r.callTimeout, func(ctx context.Context) ([]trackingdomain.Role, error) {
		return r.roles.GuildRoles(ctx, guildID)
	})
	if err != nil {
		return fmt.Errorf("%w: list roles: %w", trackingdomain.ErrRoleMutation, err)
	}

	kept := false
	for _, role := range guildRoles {
		if !trackingdomain.IsVocabularyLabel(role.Name) || !member.HasRole(role.ID) {
			continue
		}
		if !kept && desired != trackingdomain.TierUntracked && role.Name == desired.String() {
			kept = true
			continue
		}
		if err := r.revoke(ctx, guildID, memberID, role); err != nil {
			return err
		}
	}

	if desired == trackingdomain.TierUntracked || kept {
		return nil
	}

	target := findRole(guildRoles, desired.String())
	if target == nil {
		target, err = r.ensureRole(ctx, guildID, desired.String())
		if err != nil {
			return err
		}
	}

	return r.grant(ctx, guildID, memberID, *target)
}

func (r *Reconciler) revoke(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, role trackingdomain.Role) error {
	_, err := call(ctx, r.callTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.roles.RemoveMemberRole(ctx, guildID, memberID, role.ID)
	})
	r.metrics.RecordRoleMutation("revoke", mutationOutcome(err))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to revoke tier role",
			slog.String("guild_id", string(guildID)),
			slog.String("member_id", string(memberID)),
			slog.String("role", role.Name),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: revoke %s: %w", trackingdomain.ErrRoleMutation, role.Name, err)
	}
	r.logger.DebugContext(ctx, "Revoked tier role",
		slog.String("member_id", string(memberID)),
		slog.String("role", role.Name),
	)
	return nil
}

func (r *Reconciler) grant(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, role trackingdomain.Role) error {
	_, err := call(ctx, r.callTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.roles.AddMemberRole(ctx, guildID, memberID, role.ID)
	})
	r.metrics.RecordRoleMutation("grant", mutationOutcome(err))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to grant tier role",
			slog.String("guild_id", string(guildID)),
			slog.String("member_id", string(memberID)),
			slog.String("role", role.Name),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: grant %s: %w", trackingdomain.ErrRoleMutation, role.Name, err)
	}
	r.logger.InfoContext(ctx, "Granted tier role",
		slog.String("guild_id", string(guildID)),
		slog.String("member_id", string(memberID)),
		slog.String("role", role.Name),
	)
	return nil
}

// ensureRole returns the guild role labelled label, creating it when absent.
// Concurrent callers for the same guild and label share one lookup and at
// most one creation. The shared flight outlives any single caller's
// cancellation; each of its calls is still bounded by the call timeout.
func (r *Reconciler) ensureRole(ctx context.Context, guildID trackingdomain.GuildID, label string) (*trackingdomain.Role, error) {
	flightCtx := context.WithoutCancel(ctx)
	flight := r.creates.DoChan(string(guildID)+"/"+label, func() (interface{}, error) {
		ctx := flightCtx
		current, err := call(ctx, r.callTimeout, func(ctx context.Context) ([]trackingdomain.Role, error) {
			return r.roles.GuildRoles(ctx, guildID)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: list roles: %w", trackingdomain.ErrRoleMutation, err)
		}
		if existing := findRole(current, label); existing != nil {
			return existing, nil
		}

		created, err := call(ctx, r.callTimeout, func(ctx context.Context) (*trackingdomain.Role, error) {
			return r.roles.CreateRole(ctx, guildID, label)
		})
		r.metrics.RecordRoleMutation("create", mutationOutcome(err))
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to create tier role",
				slog.String("guild_id", string(guildID)),
				slog.String("role", label),
				slog.Any("error", err),
			)
			return nil, fmt.Errorf("%w: create %s: %w", trackingdomain.ErrRoleMutation, label, err)
		}
		r.logger.InfoContext(ctx, "Created tier role",
			slog.String("guild_id", string(guildID)),
			slog.String("role", label),
			slog.String("role_id", created.ID),
		)
		return created, nil
	})

	select {
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*trackingdomain.Role), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: ensure %s: %w", trackingdomain.ErrRoleMutation, label, ctx.Err())
	}
}

// findRole returns the first role whose name equals label exactly.
func findRole(roles []trackingdomain.Role, label string) *trackingdomain.Role {
	for i := range roles {
		if roles[i].Name == label {
			role := roles[i]
			return &role
		}
	}
	return nil
}

func mutationOutcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// call runs fn under a per-call deadline when timeout is positive.
func call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}
