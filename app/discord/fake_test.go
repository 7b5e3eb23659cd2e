package discord

import (
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
)

// FakePublisher records published messages.
type FakePublisher struct {
	mu     sync.Mutex
	topics []string
	msgs   []*message.Message

	PublishErr error
}

func (f *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishErr != nil {
		return f.PublishErr
	}
	for _, m := range msgs {
		f.topics = append(f.topics, topic)
		f.msgs = append(f.msgs, m)
	}
	return nil
}

func (f *FakePublisher) Close() error { return nil }

var _ message.Publisher = (*FakePublisher)(nil)

// FakeSession is a programmable stub for the REST calls on *discordgo.Session.
type FakeSession struct {
	trace []string

	GuildRolesFunc            func(guildID string) ([]*discordgo.Role, error)
	GuildMemberFunc           func(guildID, userID string) (*discordgo.Member, error)
	GuildRoleCreateFunc       func(guildID string, data *discordgo.RoleParams) (*discordgo.Role, error)
	GuildMemberRoleAddFunc    func(guildID, userID, roleID string) error
	GuildMemberRoleRemoveFunc func(guildID, userID, roleID string) error
	ChannelMessageSendFunc    func(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error)
}

func (f *FakeSession) record(step string, options []discordgo.RequestOption) {
	if len(options) == 0 {
		step += " (no ctx)"
	}
	f.trace = append(f.trace, step)
}

func (f *FakeSession) GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	f.record("GuildRoles", options)
	if f.GuildRolesFunc != nil {
		return f.GuildRolesFunc(guildID)
	}
	return nil, nil
}

func (f *FakeSession) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.record("GuildMember", options)
	if f.GuildMemberFunc != nil {
		return f.GuildMemberFunc(guildID, userID)
	}
	return &discordgo.Member{}, nil
}

func (f *FakeSession) GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error) {
	f.record("GuildRoleCreate", options)
	if f.GuildRoleCreateFunc != nil {
		return f.GuildRoleCreateFunc(guildID, data)
	}
	return &discordgo.Role{ID: "new", Name: data.Name}, nil
}

func (f *FakeSession) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	f.record("GuildMemberRoleAdd", options)
	if f.GuildMemberRoleAddFunc != nil {
		return f.GuildMemberRoleAddFunc(guildID, userID, roleID)
	}
	return nil
}

func (f *FakeSession) GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	f.record("GuildMemberRoleRemove", options)
	if f.GuildMemberRoleRemoveFunc != nil {
		return f.GuildMemberRoleRemoveFunc(guildID, userID, roleID)
	}
	return nil
}

func (f *FakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.record("ChannelMessageSendComplex", options)
	if f.ChannelMessageSendFunc != nil {
		return f.ChannelMessageSendFunc(channelID, data)
	}
	return &discordgo.Message{}, nil
}

var (
	_ RoleSession    = (*FakeSession)(nil)
	_ MessageSession = (*FakeSession)(nil)
	_ RoleSession    = (*discordgo.Session)(nil)
	_ MessageSession = (*discordgo.Session)(nil)
)
