package trackingservice

import (
	"context"
	"fmt"
	"sort"
	"sync"

	trackingdomain "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/domain"
	trackingdb "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/infrastructure/repositories"
)

// ------------------------
// Fake Repository
// ------------------------

type FakeRepo struct {
	trace []string

	GetFunc    func(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) (*trackingdomain.TrackedPlayer, error)
	UpsertFunc func(ctx context.Context, player *trackingdomain.TrackedPlayer) error
	DeleteFunc func(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) error
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{trace: []string{}}
}

func (f *FakeRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRepo) Get(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) (*trackingdomain.TrackedPlayer, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, guildID, memberID)
	}
	return nil, trackingdb.ErrNotFound
}

func (f *FakeRepo) Upsert(ctx context.Context, player *trackingdomain.TrackedPlayer) error {
	f.record("Upsert")
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, player)
	}
	return nil
}

func (f *FakeRepo) Delete(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, guildID, memberID)
	}
	return nil
}

func (f *FakeRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ trackingdb.Repository = (*FakeRepo)(nil)

// ------------------------
// Fake Resolver
// ------------------------

type FakeResolver struct {
	trace []string

	ResolveIdentityFunc func(ctx context.Context, handle string) (trackingdomain.PlayerID, error)
	ResolveTierFunc     func(ctx context.Context, playerID trackingdomain.PlayerID) (trackingdomain.Tier, error)
}

func (f *FakeResolver) ResolveIdentity(ctx context.Context, handle string) (trackingdomain.PlayerID, error) {
	f.trace = append(f.trace, "ResolveIdentity")
	if f.ResolveIdentityFunc != nil {
		return f.ResolveIdentityFunc(ctx, handle)
	}
	return "", trackingdomain.ErrPlayerNotFound
}

func (f *FakeResolver) ResolveTier(ctx context.Context, playerID trackingdomain.PlayerID) (trackingdomain.Tier, error) {
	f.trace = append(f.trace, "ResolveTier")
	if f.ResolveTierFunc != nil {
		return f.ResolveTierFunc(ctx, playerID)
	}
	return trackingdomain.TierUnranked, nil
}

func (f *FakeResolver) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ Resolver = (*FakeResolver)(nil)

// ------------------------
// Fake Role Client
// ------------------------

// FakeRoleClient keeps one guild's roles and member role sets in memory.
// The Func fields inject failures; returning nil falls through to the
// in-memory behavior.
type FakeRoleClient struct {
	mu      sync.Mutex
	trace   []string
	nextID  int
	roles   []trackingdomain.Role
	members map[trackingdomain.MemberID]map[string]bool

	GuildMemberErr func(memberID trackingdomain.MemberID) error
	GuildRolesErr  func() error
	CreateRoleErr  func(name string) error
	AddErr         func(roleID string) error
	RemoveErr      func(roleID string) error

	// BeforeCall runs outside the lock ahead of every call, so it may block
	// on ctx. A non-nil error fails the call.
	BeforeCall func(ctx context.Context, method string) error
}

func NewFakeRoleClient() *FakeRoleClient {
	return &FakeRoleClient{members: map[trackingdomain.MemberID]map[string]bool{}}
}

func (f *FakeRoleClient) record(step string) {
	f.trace = append(f.trace, step)
}

// enter records step and runs BeforeCall.
func (f *FakeRoleClient) enter(ctx context.Context, method string, step func() string) error {
	f.mu.Lock()
	f.record(step())
	f.mu.Unlock()
	if f.BeforeCall == nil {
		return nil
	}
	return f.BeforeCall(ctx, method)
}

// AddRole seeds a guild role and returns its id.
func (f *FakeRoleClient) AddRole(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addRoleLocked(name).ID
}

func (f *FakeRoleClient) addRoleLocked(name string) trackingdomain.Role {
	f.nextID++
	role := trackingdomain.Role{ID: fmt.Sprintf("r%d", f.nextID), Name: name}
	f.roles = append(f.roles, role)
	return role
}

// Give seeds a held role.
func (f *FakeRoleClient) Give(memberID trackingdomain.MemberID, roleIDs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	held := f.members[memberID]
	if held == nil {
		held = map[string]bool{}
		f.members[memberID] = held
	}
	for _, id := range roleIDs {
		held[id] = true
	}
}

// HeldNames returns the sorted names of roles memberID holds.
func (f *FakeRoleClient) HeldNames(memberID trackingdomain.MemberID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := []string{}
	for _, r := range f.roles {
		if f.members[memberID][r.ID] {
			names = append(names, r.Name)
		}
	}
	sort.Strings(names)
	return names
}

// RoleCount returns how many guild roles are named name.
func (f *FakeRoleClient) RoleCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.roles {
		if r.Name == name {
			n++
		}
	}
	return n
}

func (f *FakeRoleClient) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRoleClient) GuildRoles(ctx context.Context, guildID trackingdomain.GuildID) ([]trackingdomain.Role, error) {
	if err := f.enter(ctx, "GuildRoles", func() string { return "GuildRoles" }); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GuildRolesErr != nil {
		if err := f.GuildRolesErr(); err != nil {
			return nil, err
		}
	}
	out := make([]trackingdomain.Role, len(f.roles))
	copy(out, f.roles)
	return out, nil
}

func (f *FakeRoleClient) GuildMember(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID) (*trackingdomain.Member, error) {
	if err := f.enter(ctx, "GuildMember", func() string { return "GuildMember" }); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GuildMemberErr != nil {
		if err := f.GuildMemberErr(memberID); err != nil {
			return nil, err
		}
	}
	m := &trackingdomain.Member{GuildID: guildID, ID: memberID}
	for id := range f.members[memberID] {
		m.RoleIDs = append(m.RoleIDs, id)
	}
	sort.Strings(m.RoleIDs)
	return m, nil
}

func (f *FakeRoleClient) CreateRole(ctx context.Context, guildID trackingdomain.GuildID, name string) (*trackingdomain.Role, error) {
	if err := f.enter(ctx, "CreateRole", func() string { return "CreateRole:" + name }); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateRoleErr != nil {
		if err := f.CreateRoleErr(name); err != nil {
			return nil, err
		}
	}
	role := f.addRoleLocked(name)
	return &role, nil
}

func (f *FakeRoleClient) AddMemberRole(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, roleID string) error {
	if err := f.enter(ctx, "AddMemberRole", func() string { return "Add:" + f.nameLocked(roleID) }); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AddErr != nil {
		if err := f.AddErr(roleID); err != nil {
			return err
		}
	}
	held := f.members[memberID]
	if held == nil {
		held = map[string]bool{}
		f.members[memberID] = held
	}
	held[roleID] = true
	return nil
}

func (f *FakeRoleClient) RemoveMemberRole(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, roleID string) error {
	if err := f.enter(ctx, "RemoveMemberRole", func() string { return "Remove:" + f.nameLocked(roleID) }); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RemoveErr != nil {
		if err := f.RemoveErr(roleID); err != nil {
			return err
		}
	}
	delete(f.members[memberID], roleID)
	return nil
}

func (f *FakeRoleClient) nameLocked(roleID string) string {
	for _, r := range f.roles {
		if r.ID == roleID {
			return r.Name
		}
	}
	return roleID
}

var _ RoleClient = (*FakeRoleClient)(nil)

// ------------------------
// Fake Reconciler
// ------------------------

type FakeReconciler struct {
	trace   []string
	desired []trackingdomain.Tier

	ReconcileFunc func(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, desired trackingdomain.Tier) error
}

func (f *FakeReconciler) Reconcile(ctx context.Context, guildID trackingdomain.GuildID, memberID trackingdomain.MemberID, desired trackingdomain.Tier) error {
	f.trace = append(f.trace, "Reconcile")
	f.desired = append(f.desired, desired)
	if f.ReconcileFunc != nil {
		return f.ReconcileFunc(ctx, guildID, memberID, desired)
	}
	return nil
}

var _ RoleReconciler = (*FakeReconciler)(nil)
