package member

import (
	"fmt"
	"strings"
)

// Tier is the ordinal loyalty classification.
type Tier string

const (
	TierBronze   Tier = "Bronze"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
)

// Minimum balances for each tier above Bronze.
const (
	SilverThreshold   int64 = 2_500
	GoldThreshold     int64 = 5_000
	PlatinumThreshold int64 = 10_000
)

var tiers = []struct {
	tier Tier
	min  int64
}{
	{TierBronze, 0},
	{TierSilver, SilverThreshold},
	{TierGold, GoldThreshold},
	{TierPlatinum, PlatinumThreshold},
}

// Tiers lists all tiers from lowest to highest.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	for i, t := range tiers {
		out[i] = t.tier
	}
	return out
}

// Rank returns the ordinal position of t (Bronze is 0), or -1 if unknown.
func (t Tier) Rank() int {
	for i, candidate := range tiers {
		if candidate.tier == t {
			return i
		}
	}
	return -1
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool { return t.Rank() >= 0 }

// MinPoints is the balance at which t is earned.
func (t Tier) MinPoints() int64 {
	if r := t.Rank(); r >= 0 {
		return tiers[r].min
	}
	return 0
}

// ParseTier accepts a tier name in any letter case.
func ParseTier(s string) (Tier, error) {
	for _, t := range tiers {
		if strings.EqualFold(string(t.tier), strings.TrimSpace(s)) {
			return t.tier, nil
		}
	}
	return "", fmt.Errorf("%w: unknown tier %q", ErrInvalidField, s)
}

// TierForPoints returns the tier earned by a balance.
func TierForPoints(points int64) Tier {
	earned := TierBronze
	for _, t := range tiers {
		if points >= t.min {
			earned = t.tier
		}
	}
	return earned
}

// NextTier returns the tier above t. ok is false for Platinum.
func NextTier(t Tier) (next Tier, ok bool) {
	r := t.Rank()
	if r < 0 || r+1 >= len(tiers) {
		return "", false
	}
	return tiers[r+1].tier, true
}

// PointsToNextTier returns how many more points the balance needs to earn the
// next tier above the one it currently earns. Zero at Platinum.
func PointsToNextTier(points int64) int64 {
	next, ok := NextTier(TierForPoints(points))
	if !ok {
		return 0
	}
	return next.MinPoints() - points
}
