// Package experience classifies a requester as beginner, intermediate or
// advanced to pick explanation length and vocabulary.
package experience

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"scentmatch-backend/internal/collections"
	"scentmatch-backend/internal/shared/telemetry"
	"scentmatch-backend/internal/users"
)

type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

// ParseLevel maps free-form input to a Level, defaulting to Beginner.
func ParseLevel(raw string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(raw))) {
	case Intermediate:
		return Intermediate
	case Advanced:
		return Advanced
	default:
		return Beginner
	}
}

type Style struct {
	MaxWords         int    `json:"maxWords"`
	Complexity       string `json:"complexity"`
	IncludeEducation bool   `json:"includeEducation"`
	VocabularyLevel  string `json:"vocabularyLevel"`
}

type Analysis struct {
	Level                       Level   `json:"level"`
	Confidence                  float64 `json:"confidence"`
	RecommendedExplanationStyle Style   `json:"recommendedExplanationStyle"`
}

// StyleFor returns the explanation style for a level.
func StyleFor(level Level) Style {
	switch level {
	case Advanced:
		return Style{MaxWords: 100, Complexity: "detailed", IncludeEducation: false, VocabularyLevel: "advanced"}
	case Intermediate:
		return Style{MaxWords: 60, Complexity: "moderate", IncludeEducation: false, VocabularyLevel: "intermediate"}
	default:
		return Style{MaxWords: 35, Complexity: "simple", IncludeEducation: true, VocabularyLevel: "basic"}
	}
}

const (
	anonymousConfidence = 0.95
	fallbackConfidence  = 0.6
)

// Thresholds for authenticated users.
const (
	advancedMinItems      = 10
	advancedMinDays       = 30
	advancedMinEngagement = 0.7
	advancedMinSignals    = 2

	intermediateMinItems      = 3
	intermediateMinDays       = 7
	intermediateMinEngagement = 0.4
)

// UserContext identifies the requester. UserID is empty for anonymous quiz takers.
type UserContext struct {
	UserID        string
	DeclaredLevel string
}

type StatsSource interface {
	Stats(ctx context.Context, userID string) (collections.Stats, error)
}

type ProfileSource interface {
	GetByID(ctx context.Context, userID string) (users.User, error)
}

type Detector struct {
	Stats    StatsSource
	Profiles ProfileSource
	Recorder telemetry.Recorder
	Now      func() time.Time
}

func NewDetector(stats StatsSource, profiles ProfileSource, recorder telemetry.Recorder) *Detector {
	return &Detector{Stats: stats, Profiles: profiles, Recorder: telemetry.OrNop(recorder), Now: time.Now}
}

// Analyze never fails: anonymous requesters and lookup errors yield the beginner profile.
func (d *Detector) Analyze(ctx context.Context, uc UserContext) Analysis {
	userID := strings.TrimSpace(uc.UserID)
	if userID == "" {
		return analysis(Beginner, anonymousConfidence)
	}
	if d == nil || d.Stats == nil {
		return analysis(Beginner, fallbackConfidence)
	}
	rec := telemetry.OrNop(d.Recorder)

	stats, err := d.Stats.Stats(ctx, userID)
	if err != nil {
		rec.Event(ctx, "experience.detection_failed", map[string]any{
			"user_id": userID,
			"stage":   "collection_stats",
			"error":   err.Error(),
		})
		return analysis(Beginner, fallbackConfidence)
	}

	var profile users.User
	if d.Profiles != nil {
		profile, err = d.Profiles.GetByID(ctx, userID)
		if err != nil && !errors.Is(err, users.ErrNotFound) {
			rec.Event(ctx, "experience.detection_failed", map[string]any{
				"user_id": userID,
				"stage":   "profile",
				"error":   err.Error(),
			})
			return analysis(Beginner, fallbackConfidence)
		}
	}

	now := time.Now().UTC()
	if d.Now != nil {
		now = d.Now().UTC()
	}
	in := signals{
		items:      stats.Owned,
		days:       profile.AccountAgeDays(now),
		engagement: profile.EngagementScore,
		knowledge:  knowledgeSignals(stats, uc.DeclaredLevel),
	}
	level := classify(in)
	if declared := strings.TrimSpace(uc.DeclaredLevel); declared != "" && ParseLevel(declared) == Beginner {
		// Users who ask for the basics get them regardless of history.
		level = Beginner
	}

	out := analysis(level, confidence(in))
	rec.Event(ctx, "experience.detected", map[string]any{
		"user_id":    userID,
		"level":      string(out.Level),
		"confidence": out.Confidence,
		"items":      in.items,
		"days":       in.days,
		"engagement": in.engagement,
		"knowledge":  in.knowledge,
	})
	return out
}

type signals struct {
	items      int
	days       int
	engagement float64
	knowledge  int
}

func classify(s signals) Level {
	if s.items >= advancedMinItems && s.days >= advancedMinDays &&
		s.engagement >= advancedMinEngagement && s.knowledge >= advancedMinSignals {
		return Advanced
	}
	if s.items >= intermediateMinItems && s.days >= intermediateMinDays && s.engagement >= intermediateMinEngagement {
		return Intermediate
	}
	return Beginner
}

// knowledgeSignals counts evidence of fragrance literacy beyond collection size.
func knowledgeSignals(stats collections.Stats, declared string) int {
	n := 0
	if stats.DistinctFamilies >= 3 {
		n++
	}
	if stats.Rated >= 3 {
		n++
	}
	if stats.Tried >= 2 {
		n++
	}
	if ParseLevel(declared) == Advanced {
		n++
	}
	return n
}

func confidence(s signals) float64 {
	c := 0.6 +
		0.1*math.Min(float64(s.items), 10)/10 +
		0.1*math.Min(float64(s.days), 30)/30 +
		0.15*math.Min(math.Max(s.engagement, 0), 1)
	return math.Round(math.Min(c, 0.95)*100) / 100
}

func analysis(level Level, conf float64) Analysis {
	return Analysis{
		Level:                       level,
		Confidence:                  conf,
		RecommendedExplanationStyle: StyleFor(level),
	}
}
