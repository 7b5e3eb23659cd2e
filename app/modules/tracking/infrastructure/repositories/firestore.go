package trackingdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	trackingdomain "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	guildsCollection  = "guilds"
	membersCollection = "members"
)

// FirestoreRepository implements Repository with one document per member,
// nested under its guild: guilds/{guild_id}/members/{member_id}.
type FirestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a document-store repository.
func NewFirestoreRepository(client *firestore.Client) *FirestoreRepository {
	return &FirestoreRepository{client: client}
}

func (r *FirestoreRepository) doc(guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) *firestore.DocumentRef {
	return r.client.Collection(guildsCollection).Doc(string(guildID)).Collection(membersCollection).Doc(string(memberID))
}

// Get retrieves a tracked player document.
func (r *FirestoreRepository) Get(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) (*trackingdomain.TrackedPlayer, error) {
	snap, err := r.doc(guildID, memberID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tracked player document: %w", err)
	}

	var d trackedPlayerDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to decode tracked player document: %w", err)
	}

	return &trackingdomain.TrackedPlayer{
		GuildID:   guildID,
		MemberID:  memberID,
		PlayerID:  trackingdomain.PlayerID(d.PlayerID),
		Tier:      trackingdomain.Tier(d.Tier),
		UpdatedAt: d.UpdatedAt,
	}, nil
}

// Upsert merges player id, tier and timestamp into the member document,
// leaving any other fields on it untouched.
func (r *FirestoreRepository) Upsert(ctx context.Context, player *trackingdomain.TrackedPlayer) error {
	if player == nil {
		return errors.New("tracked player cannot be nil")
	}

	updatedAt := player.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := r.doc(player.GuildID, player.MemberID).Set(ctx, map[string]interface{}{
		"player_id":  string(player.PlayerID),
		"tier":       string(player.Tier),
		"updated_at": updatedAt,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to upsert tracked player document: %w", err)
	}
	return nil
}

// Delete removes the member document. Firestore treats deleting a missing
// document as success.
func (r *FirestoreRepository) Delete(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) error {
	if _, err := r.doc(guildID, memberID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete tracked player document: %w", err)
	}
	return nil
}

var _ Repository = (*FirestoreRepository)(nil)
