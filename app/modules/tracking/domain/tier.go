package trackingdomain

import (
	"fmt"
	"strings"
)

// Tier is a competitive rank label. Its string value is also the display
// label of the guild role that represents it.
type Tier string

const (
	// TierUntracked means the member is no longer tracked. It is not part of
	// the vocabulary and never maps to a role.
	TierUntracked Tier = ""

	// TierUnranked means the player has no entry in the tracked queue.
	TierUnranked Tier = "UNRANKED"

	TierIron        Tier = "IRON"
	TierBronze      Tier = "BRONZE"
	TierSilver      Tier = "SILVER"
	TierGold        Tier = "GOLD"
	TierPlatinum    Tier = "PLATINUM"
	TierEmerald     Tier = "EMERALD"
	TierDiamond     Tier = "DIAMOND"
	TierMaster      Tier = "MASTER"
	TierGrandmaster Tier = "GRANDMASTER"
	TierChallenger  Tier = "CHALLENGER"
)

// vocabulary is ordered for display only.
var vocabulary = []Tier{
	TierUnranked,
	TierIron,
	TierBronze,
	TierSilver,
	TierGold,
	TierPlatinum,
	TierEmerald,
	TierDiamond,
	TierMaster,
	TierGrandmaster,
	TierChallenger,
}

// Vocabulary returns a copy of the ordered tier vocabulary.
func Vocabulary() []Tier {
	out := make([]Tier, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// IsVocabularyLabel reports whether a role label names a tier.
func IsVocabularyLabel(label string) bool {
	return Tier(label).IsValid()
}

// IsValid reports whether t is a member of the vocabulary.
func (t Tier) IsValid() bool {
	for _, v := range vocabulary {
		if t == v {
			return true
		}
	}
	return false
}

// String returns the display label.
func (t Tier) String() string {
	return string(t)
}

// ParseTier maps a ranking API tier string onto the vocabulary. Matching is
// case-insensitive so "Unranked" and "UNRANKED" are the same tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return TierUntracked, fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}
