// Package health computes compliance health scores from an entity's
// obligations.  Scoring is pure: the same obligations and reference instant
// always yield the same report.
package health

import (
	"sort"
	"time"

	"github.com/complyhq/compliance-engine/internal/domain/obligation"
	"github.com/complyhq/compliance-engine/pkg/types/common"
)

// Scoring penalties.  The score starts at MaxScore and is clamped to
// [MinScore, MaxScore] after all penalties apply.
const (
	MaxScore = 100
	MinScore = 0

	overduePenalty  = 25
	imminentPenalty = 10

	// imminentWindowDays is the look-ahead window that counts a pending
	// obligation as an upcoming deadline.
	imminentWindowDays = 30
)

// Issue is one overdue pending obligation contributing to a score penalty.
type Issue struct {
	EntityID     common.ID `json:"entity_id"`
	ObligationID common.ID `json:"obligation_id"`
	TemplateRef  string    `json:"template_ref"`
	DueDate      time.Time `json:"due_date"`
	DaysOverdue  int       `json:"days_overdue"`
}

// Deadline is one pending obligation due inside the imminent window.
type Deadline struct {
	EntityID     common.ID           `json:"entity_id"`
	ObligationID common.ID           `json:"obligation_id"`
	TemplateRef  string              `json:"template_ref"`
	DueDate      time.Time           `json:"due_date"`
	DaysUntil    int                 `json:"days_until"`
	Priority     obligation.Priority `json:"priority"`
}

// EntityReport is the health picture of a single entity.
type EntityReport struct {
	EntityID      common.ID  `json:"entity_id"`
	Score         int        `json:"score"`
	Issues        []Issue    `json:"issues"`
	NextDeadlines []Deadline `json:"next_deadlines"`
	ComputedAt    time.Time  `json:"computed_at"`
}

// PortfolioReport aggregates entity reports across a portfolio.  The
// portfolio score is the minimum entity score: a portfolio is only as healthy
// as its worst member.
type PortfolioReport struct {
	Score         int            `json:"score"`
	EntityScores  []EntityReport `json:"entity_scores"`
	Issues        []Issue        `json:"issues"`
	NextDeadlines []Deadline     `json:"next_deadlines"`
	ComputedAt    time.Time      `json:"computed_at"`
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

func sortDeadlines(ds []Deadline) {
	sort.SliceStable(ds, func(i, j int) bool {
		return ds[i].DueDate.Before(ds[j].DueDate)
	})
}

func sortIssues(is []Issue) {
	sort.SliceStable(is, func(i, j int) bool {
		return is[i].DueDate.Before(is[j].DueDate)
	})
}

// Score computes an entity's health report from its obligations as of now.
// Completed obligations and ongoing duties without a due date never affect
// the score.
func Score(entityID common.ID, obligations []*obligation.Obligation, now time.Time) EntityReport {
	report := EntityReport{
		EntityID:      entityID,
		Score:         MaxScore,
		Issues:        []Issue{},
		NextDeadlines: []Deadline{},
		ComputedAt:    now.UTC(),
	}

	for _, o := range obligations {
		if o.Status != obligation.StatusPending || o.DueDate == nil {
			continue
		}
		days, _ := obligation.DaysUntil(o.DueDate, now)
		switch {
		case days < 0:
			report.Score -= overduePenalty
			report.Issues = append(report.Issues, Issue{
				EntityID:     entityID,
				ObligationID: o.ID,
				TemplateRef:  o.TemplateRef,
				DueDate:      *o.DueDate,
				DaysOverdue:  -days,
			})
		case days <= imminentWindowDays:
			report.Score -= imminentPenalty
			report.NextDeadlines = append(report.NextDeadlines, Deadline{
				EntityID:     entityID,
				ObligationID: o.ID,
				TemplateRef:  o.TemplateRef,
				DueDate:      *o.DueDate,
				DaysUntil:    days,
				Priority:     obligation.Classify(o.DueDate, now),
			})
		}
	}

	report.Score = clamp(report.Score)
	sortIssues(report.Issues)
	sortDeadlines(report.NextDeadlines)
	return report
}

// Portfolio combines entity reports into a portfolio view.  An empty
// portfolio scores MaxScore: nothing is owed, so nothing is at risk.
func Portfolio(reports []EntityReport, now time.Time) PortfolioReport {
	out := PortfolioReport{
		Score:         MaxScore,
		EntityScores:  reports,
		Issues:        []Issue{},
		NextDeadlines: []Deadline{},
		ComputedAt:    now.UTC(),
	}

	for _, r := range reports {
		if r.Score < out.Score {
			out.Score = r.Score
		}
		out.Issues = append(out.Issues, r.Issues...)
		out.NextDeadlines = append(out.NextDeadlines, r.NextDeadlines...)
	}

	sortIssues(out.Issues)
	sortDeadlines(out.NextDeadlines)
	return out
}
