package trackingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	trackingdomain "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/domain"
	"github.com/uptrace/bun"
)

// BunRepository implements Repository on bun. The same code serves the
// Postgres and SQLite dialects.
type BunRepository struct {
	db bun.IDB
}

// NewBunRepository creates a tracked player repository.
func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

// Get retrieves a tracked player by guild and member.
func (r *BunRepository) Get(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) (*trackingdomain.TrackedPlayer, error) {
	row := new(TrackedPlayer)
	err := r.db.NewSelect().
		Model(row).
		Where("guild_id = ?", string(guildID)).
		Where("member_id = ?", string(memberID)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tracked player: %w", err)
	}
	return toDomain(row), nil
}

// Upsert inserts the tracked player or overwrites its player id and tier.
func (r *BunRepository) Upsert(ctx context.Context, player *trackingdomain.TrackedPlayer) error {
	if player == nil {
		return errors.New("tracked player cannot be nil")
	}

	row := toRow(player)
	now := time.Now().UTC()
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = now
	}
	row.CreatedAt = now

	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (guild_id, member_id) DO UPDATE").
		Set("player_id = EXCLUDED.player_id").
		Set("tier = EXCLUDED.tier").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert tracked player: %w", err)
	}
	return nil
}

// Delete removes a tracked player. Missing rows are ignored.
func (r *BunRepository) Delete(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) error {
	_, err := r.db.NewDelete().
		Model((*TrackedPlayer)(nil)).
		Where("guild_id = ?", string(guildID)).
		Where("member_id = ?", string(memberID)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete tracked player: %w", err)
	}
	return nil
}

var _ Repository = (*BunRepository)(nil)
