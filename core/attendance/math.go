package attendance

import (
	"math"

	"github.com/bunkmate-io/bunkmate/core"
)

const (
	// DefaultGoal is the minimum attendance percentage required for a
	// subject unless the subject overrides it.
	DefaultGoal = core.DefaultAttendanceGoal

	// SafeMargin is the cushion (in percentage points) above the goal from
	// which a subject is considered comfortably safe.
	SafeMargin = 5.0

	// Unreachable is returned by RecoveryRequired when no finite number of
	// attended classes can reach the goal (100% goal with an absence on
	// record).
	Unreachable = -1
)

// Band is the display classification of a subject's standing vs its goal.
type Band string

const (
	BandSafe    Band = "safe"    // percentage >= goal + SafeMargin
	BandWarning Band = "warning" // percentage >= goal - SafeMargin
	BandDanger  Band = "danger"
)

// Stats is the decision-support record derived from raw attendance counts.
// It is recomputed from scratch on every call; nothing here is cached.
type Stats struct {
	Present   int `json:"present"`
	Absent    int `json:"absent"`
	Cancelled int `json:"cancelled"`
	Total     int `json:"total"` // present + absent; cancelled never counts

	Percentage          float64 `json:"percentage"`
	BunkBuffer          int     `json:"bunk_buffer"`
	RecoveryRequired    int     `json:"recovery_required"`
	RecoveryUnreachable bool    `json:"recovery_unreachable,omitempty"`
	AboveGoal           bool    `json:"above_goal"`
	Safe                bool    `json:"safe"`
	Band                Band    `json:"band"`
}

// ComputeStats derives all attendance metrics for the given counts and goal
// percentage. Negative counts are clamped to 0 and the goal is clamped into
// [0, 100]; with no classes logged yet (total = 0) everything floors to a
// neutral zero-valued state rather than erroring.
func ComputeStats(present, absent, cancelled int, goal float64) Stats {
	present = clampCount(present)
	absent = clampCount(absent)
	cancelled = clampCount(cancelled)
	goal = clampGoal(goal)

	total := present + absent
	var pct float64
	if total > 0 {
		pct = float64(present) / float64(total) * 100
	}

	stats := Stats{
		Present:    present,
		Absent:     absent,
		Cancelled:  cancelled,
		Total:      total,
		Percentage: pct,
		AboveGoal:  pct >= goal,
		Safe:       pct >= goal+SafeMargin,
		Band:       BandFor(pct, goal),
	}
	if total == 0 {
		return stats
	}

	if stats.AboveGoal {
		stats.BunkBuffer = BunkBuffer(present, total, goal)
	} else if req := RecoveryRequired(present, total, goal); req == Unreachable {
		stats.RecoveryUnreachable = true
	} else {
		stats.RecoveryRequired = req
	}
	return stats
}

// BunkBuffer answers "how many of the next classes can I skip and still meet
// the goal": the maximum integer x >= 0 with present/(total+x) >= goal/100.
// The present count is held constant; only future absences are modeled.
// Returns 0 when already below the goal or when no classes are logged.
func BunkBuffer(present, total int, goal float64) int {
	present = clampCount(present)
	total = clampCount(total)
	g := clampGoal(goal) / 100
	if total == 0 || g <= 0 {
		return 0
	}
	x := int(math.Floor((float64(present) - g*float64(total)) / g))
	if x < 0 {
		return 0
	}
	return x
}

// RecoveryRequired answers "how many consecutive classes must I attend to
// reach the goal": the minimum integer x >= 0 with
// (present+x)/(total+x) >= goal/100. Returns 0 when already at/above the
// goal or when no classes are logged, and Unreachable for a 100% goal with
// an absence already on record.
func RecoveryRequired(present, total int, goal float64) int {
	present = clampCount(present)
	total = clampCount(total)
	g := clampGoal(goal) / 100
	if total == 0 || g <= 0 {
		return 0
	}
	if g >= 1 {
		if present >= total {
			return 0
		}
		return Unreachable
	}
	x := int(math.Ceil((g*float64(total) - float64(present)) / (1 - g)))
	if x < 0 {
		return 0
	}
	return x
}

// BandFor buckets a percentage against a goal for display banding.
func BandFor(pct, goal float64) Band {
	goal = clampGoal(goal)
	switch {
	case pct >= goal+SafeMargin:
		return BandSafe
	case pct >= goal-SafeMargin:
		return BandWarning
	default:
		return BandDanger
	}
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func clampGoal(goal float64) float64 {
	switch {
	case goal < 0:
		return 0
	case goal > 100:
		return 100
	}
	return goal
}
