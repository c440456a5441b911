// Package loyalty holds the rewards catalog and the server-side redemption flow.
package loyalty

import (
	"github.com/asia-medicare/medicare_portal/internal/member"
)

// RewardType is the catalog category tag.
type RewardType string

const (
	RewardLimousine RewardType = "limousine"
	RewardHotel     RewardType = "hotel"
	RewardService   RewardType = "service"
)

// Reward is a catalog entry with per-language copy.
type Reward struct {
	ID          string
	Title       map[member.Language]string
	Description map[member.Language]string
	Points      int64
	Type        RewardType
	Image       string
}

// LocalizedReward is a Reward rendered for one language.
type LocalizedReward struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Points      int64      `json:"points"`
	Type        RewardType `json:"type"`
	Image       string     `json:"image"`
}

// Localize picks the copy for lang, falling back to English.
func (r Reward) Localize(lang member.Language) LocalizedReward {
	pick := func(m map[member.Language]string) string {
		if s, ok := m[lang]; ok && s != "" {
			return s
		}
		return m[member.DefaultLanguage]
	}
	return LocalizedReward{
		ID:          r.ID,
		Title:       pick(r.Title),
		Description: pick(r.Description),
		Points:      r.Points,
		Type:        r.Type,
		Image:       r.Image,
	}
}

var catalog = []Reward{
	{
		ID: "r1",
		Title: map[member.Language]string{
			member.LanguageEnglish: "Luxury Airport Limo",
			member.LanguageThai:    "รถรับส่งสนามบินสุดหรู",
			member.LanguageArabic:  "ليموزين مطار فاخرة",
			member.LanguageChinese: "豪华机场接送",
		},
		Description: map[member.Language]string{
			member.LanguageEnglish: "VIP Mercedes S-Class transfer between any Bangkok airport and city.",
			member.LanguageThai:    "บริการรถรับส่ง Mercedes S-Class ในกทม. และสนามบิน",
			member.LanguageArabic:  "مرسيدس S-Class داخل بانكوك.",
			member.LanguageChinese: "曼谷市内的梅赛德斯 S 级接送服务。",
		},
		Points: 2000,
		Type:   RewardLimousine,
		Image:  "https://images.unsplash.com/photo-1549194388-f61be84a6e9e?q=80&w=800&auto=format&fit=crop",
	},
	{
		ID: "r2",
		Title: map[member.Language]string{
			member.LanguageEnglish: "Medical Wellness Stay",
			member.LanguageThai:    "ที่พักโรงแรม 5 ดาวพร้อมบริการสุขภาพ",
			member.LanguageArabic:  "إقامة عافية طبية",
			member.LanguageChinese: "医疗康养住宿",
		},
		Description: map[member.Language]string{
			member.LanguageEnglish: "Luxury hotel suite night with premium breakfast and spa access.",
			member.LanguageThai:    "พักห้องสวีทหนึ่งคืนพร้อมอาหารเช้าและบริการสปา",
			member.LanguageArabic:  "إقامة في جناح فاخر مع إفطار وسبا.",
			member.LanguageChinese: "豪华套房一晚住宿，包含早餐和水疗。",
		},
		Points: 5000,
		Type:   RewardHotel,
		Image:  "https://images.unsplash.com/photo-1566073771259-6a8506099945?q=80&w=800&auto=format&fit=crop",
	},
	{
		ID: "r3",
		Title: map[member.Language]string{
			member.LanguageEnglish: "VIP Hospital Fast Track",
			member.LanguageThai:    "บริการช่องทางด่วนในโรงพยาบาล",
			member.LanguageArabic:  "مسار سريع لكبار الشخصيات",
			member.LanguageChinese: "VIP 医院快速通道",
		},
		Description: map[member.Language]string{
			member.LanguageEnglish: "Priority registration and escort at our elite partner hospitals.",
			member.LanguageThai:    "บริการลงทะเบียนและผู้ติดตามส่วนตัว ณ โรงพยาบาลชั้นนำ",
			member.LanguageArabic:  "تسجيل الأولوية في المستشفيات الشريكة النخبة.",
			member.LanguageChinese: "在精英合作医院享受优先注册和护送服务。",
		},
		Points: 500,
		Type:   RewardService,
		Image:  "https://images.unsplash.com/photo-1581056771107-24ca5f033842?q=80&w=800&auto=format&fit=crop",
	},
}

// Catalog returns the rewards in display order.
func Catalog() []Reward {
	out := make([]Reward, len(catalog))
	copy(out, catalog)
	return out
}

// FindReward looks up a reward by id.
func FindReward(id string) (Reward, bool) {
	for _, r := range catalog {
		if r.ID == id {
			return r, true
		}
	}
	return Reward{}, false
}

// Eligible reports whether a balance covers the reward. The redemption
// control is enabled exactly when this holds.
func Eligible(points int64, r Reward) bool {
	return points >= r.Points
}

// Offer is a localized reward with its redemption control state.
type Offer struct {
	LocalizedReward
	Redeemable bool `json:"redeemable"`
}

// Offers renders the catalog for a balance. A nil balance (signed out)
// disables every control.
func Offers(points *int64, lang member.Language) []Offer {
	out := make([]Offer, 0, len(catalog))
	for _, r := range catalog {
		out = append(out, Offer{
			LocalizedReward: r.Localize(lang),
			Redeemable:      points != nil && Eligible(*points, r),
		})
	}
	return out
}

// TierBenefit describes the privileges of a tier.
type TierBenefit struct {
	Tier     member.Tier `json:"tier"`
	Range    string      `json:"points"`
	Benefits []string    `json:"benefits"`
}

// TierBenefits returns the privilege roadmap, lowest tier first.
func TierBenefits() []TierBenefit {
	return []TierBenefit{
		{Tier: member.TierBronze, Range: "0 - 2,499", Benefits: []string{"Standard Concierge", "Point Accrual (1/100 THB)", "Quarterly Newsletter"}},
		{Tier: member.TierSilver, Range: "2,500 - 4,999", Benefits: []string{"Priority Support", "5% Discount on Concierge Fees", "Birthday Bonus Points", "Express Check-in"}},
		{Tier: member.TierGold, Range: "5,000 - 9,999", Benefits: []string{"Dedicated Personal Manager", "10% Discount on Concierge Fees", "1 Free Limo Transfer/Year", "VIP Lounge Access"}},
		{Tier: member.TierPlatinum, Range: "10,000+", Benefits: []string{"Unlimited Fast-Track Services", "24/7 Global Medical Assistance", "Complimentary Room Upgrades", "Elite Networking Events"}},
	}
}

// Progress is the member card milestone summary.
type Progress struct {
	Tier          member.Tier `json:"tier"`
	EarnedTier    member.Tier `json:"earnedTier"`
	Points        int64       `json:"points"`
	NextTier      member.Tier `json:"nextTier,omitempty"`
	PointsToNext  int64       `json:"pointsToNext"`
	PercentToNext int         `json:"percent"`
}

// ProgressFor summarizes a profile's progress toward the next tier.
func ProgressFor(p member.Profile) Progress {
	earned := member.TierForPoints(p.Points)
	prog := Progress{
		Tier:         p.Tier,
		EarnedTier:   earned,
		Points:       p.Points,
		PointsToNext: member.PointsToNextTier(p.Points),
	}
	next, ok := member.NextTier(earned)
	if !ok {
		prog.PercentToNext = 100
		return prog
	}
	prog.NextTier = next
	floor := earned.MinPoints()
	span := next.MinPoints() - floor
	prog.PercentToNext = int((p.Points - floor) * 100 / span)
	return prog
}
