package loyalty

import (
	"testing"

	"github.com/asia-medicare/medicare_portal/internal/member"
)

func TestCatalog(t *testing.T) {
	want := map[string]int64{"r1": 2000, "r2": 5000, "r3": 500}
	rewards := Catalog()
	if len(rewards) != len(want) {
		t.Fatalf("expected %d rewards, got %d", len(want), len(rewards))
	}
	for _, r := range rewards {
		if want[r.ID] != r.Points {
			t.Fatalf("reward %s: expected cost %d, got %d", r.ID, want[r.ID], r.Points)
		}
		for _, lang := range member.Languages() {
			loc := r.Localize(lang)
			if loc.Title == "" || loc.Description == "" {
				t.Fatalf("reward %s missing %s copy", r.ID, lang)
			}
		}
	}
	if _, ok := FindReward("r9"); ok {
		t.Fatal("unexpected reward r9")
	}
}

func TestLocalizeFallsBackToEnglish(t *testing.T) {
	r, _ := FindReward("r1")
	if got := r.Localize(member.Language("fr")).Title; got != "Luxury Airport Limo" {
		t.Fatalf("expected english fallback, got %q", got)
	}
	if got := r.Localize(member.LanguageChinese).Title; got != "豪华机场接送" {
		t.Fatalf("expected chinese title, got %q", got)
	}
}

func TestEligibleProperty(t *testing.T) {
	for _, r := range Catalog() {
		for _, p := range []int64{0, 1, 499, 500, 501, 1999, 2000, 4999, 5000, 12_500} {
			if got, want := Eligible(p, r), p >= r.Points; got != want {
				t.Fatalf("Eligible(%d, %s) = %v, want %v", p, r.ID, got, want)
			}
		}
	}
}

func TestOffers(t *testing.T) {
	redeemable := func(offers []Offer) map[string]bool {
		out := map[string]bool{}
		for _, o := range offers {
			out[o.ID] = o.Redeemable
		}
		return out
	}

	for id, ok := range redeemable(Offers(nil, member.LanguageEnglish)) {
		if ok {
			t.Fatalf("signed-out offer %s must be disabled", id)
		}
	}

	balance := int64(500)
	got := redeemable(Offers(&balance, member.LanguageEnglish))
	if !got["r3"] || got["r1"] || got["r2"] {
		t.Fatalf("unexpected controls at 500 points: %v", got)
	}

	balance = 0
	for id, ok := range redeemable(Offers(&balance, member.LanguageEnglish)) {
		if ok {
			t.Fatalf("offer %s must be disabled at 0 points", id)
		}
	}
}

func TestProgressFor(t *testing.T) {
	demo := member.Profile{Points: 12_500, Tier: member.TierGold}
	prog := ProgressFor(demo)
	if prog.EarnedTier != member.TierPlatinum || prog.Tier != member.TierGold || prog.PercentToNext != 100 || prog.PointsToNext != 0 {
		t.Fatalf("unexpected demo progress %+v", prog)
	}

	prog = ProgressFor(member.Profile{Points: 3_750, Tier: member.TierSilver})
	if prog.NextTier != member.TierGold || prog.PointsToNext != 1_250 || prog.PercentToNext != 50 {
		t.Fatalf("unexpected silver progress %+v", prog)
	}
}

func TestTierBenefitsCoverEveryTier(t *testing.T) {
	benefits := TierBenefits()
	tiers := member.Tiers()
	if len(benefits) != len(tiers) {
		t.Fatalf("expected %d tiers, got %d", len(tiers), len(benefits))
	}
	for i, b := range benefits {
		if b.Tier != tiers[i] || len(b.Benefits) == 0 {
			t.Fatalf("unexpected benefit row %d: %+v", i, b)
		}
	}
}
