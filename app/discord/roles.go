package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	trackingdomain "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/domain"
	"github.com/bwmarrin/discordgo"
)

// RoleSession is the part of *discordgo.Session the role client uses.
type RoleSession interface {
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// RoleClient implements the reconciler's role API over Discord REST.
type RoleClient struct {
	session RoleSession
}

// NewRoleClient creates a RoleClient.
func NewRoleClient(session RoleSession) *RoleClient {
	return &RoleClient{session: session}
}

func (c *RoleClient) GuildRoles(ctx context.Context, guildID trackingdomain.GuildID) ([]trackingdomain.Role, error) {
	roles, err := c.session.GuildRoles(string(guildID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(err)
	}
	out := make([]trackingdomain.Role, 0, len(roles))
	for _, r := range roles {
		if r == nil {
			continue
		}
		out = append(out, trackingdomain.Role{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

func (c *RoleClient) GuildMember(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) (*trackingdomain.Member, error) {
	m, err := c.session.GuildMember(string(guildID), string(memberID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(err)
	}
	return &trackingdomain.Member{
		GuildID: guildID,
		ID:      memberID,
		RoleIDs: append([]string(nil), m.Roles...),
	}, nil
}

// CreateRole creates a hoisted role so tier holders are listed separately.
func (c *RoleClient) CreateRole(ctx context.Context, guildID trackingdomain.GuildID, name string) (*trackingdomain.Role, error) {
	hoist := true
	r, err := c.session.GuildRoleCreate(string(guildID), &discordgo.RoleParams{
		Name:  name,
		Hoist: &hoist,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(err)
	}
	return &trackingdomain.Role{ID: r.ID, Name: r.Name}, nil
}

func (c *RoleClient) AddMemberRole(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, roleID string) error {
	return classify(c.session.GuildMemberRoleAdd(string(guildID), string(memberID), roleID, discordgo.WithContext(ctx)))
}

func (c *RoleClient) RemoveMemberRole(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, roleID string) error {
	return classify(c.session.GuildMemberRoleRemove(string(guildID), string(memberID), roleID, discordgo.WithContext(ctx)))
}

// classify marks a rejected bot token as ErrAuth. Missing permissions (403)
// stay plain role failures: the token is fine, the guild setup is not.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", trackingdomain.ErrAuth, err)
	}
	return err
}
