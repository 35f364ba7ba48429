package signals

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func votes(up, down int) []models.IssueVote {
	var out []models.IssueVote
	for range up {
		out = append(out, models.IssueVote{VoteType: models.VoteUp})
	}
	for range down {
		out = append(out, models.IssueVote{VoteType: models.VoteDown})
	}
	return out
}

func rating(v int) *int { return &v }

func TestEngagement(t *testing.T) {
	tally := TallyIssueVotes(append(votes(4, 1), models.IssueVote{VoteType: "meh"}))
	assert.Equal(t, VoteTally{Up: 4, Down: 1}, tally)
	assert.Equal(t, 5, Engagement(tally, 2))
	assert.Equal(t, -3, Engagement(VoteTally{Down: 3}, 0))
}

func TestThresholdBoundaries(t *testing.T) {
	assert.False(t, IsActive(2))
	assert.True(t, IsActive(3))

	assert.False(t, IsBacklash(2))
	assert.True(t, IsBacklash(3))

	assert.False(t, IsSupported(4))
	assert.True(t, IsSupported(5))
}

func TestBacklashScore(t *testing.T) {
	feedback := []models.IssueFeedback{
		{Rating: rating(1)},
		{Rating: rating(2)},
		{Rating: rating(3)},
		{Rating: nil}, // missing counts as a 5
	}
	assert.Equal(t, 2, LowRatings(feedback))
	assert.Equal(t, 3, BacklashScore(VoteTally{Up: 9, Down: 1}, feedback))
	assert.Equal(t, 0, BacklashScore(VoteTally{}, nil))
}

func TestSupportScore(t *testing.T) {
	assert.Equal(t, 6, SupportScore(VoteTally{Up: 6, Down: 10}))
}

type ranked struct {
	id    string
	score int
}

func ids(items []ranked) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.id
	}
	return out
}

func TestRankIsStableAndBounded(t *testing.T) {
	items := []ranked{{"a", 3}, {"b", 7}, {"c", 3}, {"d", 7}, {"e", 1}}
	score := func(i ranked) int { return i.score }

	got := Rank(items, score, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "d", "a"}, ids(got))

	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, ids(Rank(items, score, 10)))
	assert.Empty(t, Rank(items, score, 0))
	assert.Empty(t, Rank([]ranked{}, score, 5))

	// input is left untouched
	assert.Equal(t, "a", items[0].id)
}

func TestExpiringWithin(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+30*60)
	today := civictime.Day{Year: 2026, Month: time.February, Day: 12}
	rep := func(name string, end civictime.Stamp) models.Representative {
		return models.Representative{CandidateName: name, TermEnd: end}
	}
	reps := []models.Representative{
		rep("today", civictime.Raw("2026-02-12")),
		rep("edge", civictime.Raw(today.AddDays(30).String())),
		rep("past edge", civictime.Raw(today.AddDays(31).String())),
		rep("ended", civictime.Raw("2026-02-11")),
		rep("missing", civictime.Stamp{}),
		rep("garbage", civictime.Raw("someday")),
		rep("typed", civictime.At(time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC))),
	}

	got := ExpiringWithin(reps, today, DefaultTermHorizonDays, ist)
	require.Len(t, got, 3)
	assert.Equal(t, "today", got[0].Representative.CandidateName)
	assert.Equal(t, 0, got[0].DaysLeft)
	assert.Equal(t, "edge", got[1].Representative.CandidateName)
	assert.Equal(t, 30, got[1].DaysLeft)
	assert.Equal(t, "typed", got[2].Representative.CandidateName)
	assert.Equal(t, 8, got[2].DaysLeft)

	assert.Len(t, ExpiringWithin(reps, today, 0, ist), 1)
	assert.NotNil(t, ExpiringWithin(nil, today, 30, ist))
}

func TestAccountability(t *testing.T) {
	issues := []models.Issue{
		{Status: models.IssueOpen},
		{Status: models.IssueAccepted},
		{Status: models.IssueInProgress},
		{Status: models.IssueClosed},
	}
	assert.Equal(t, 0.33, ResolutionRate(issues))
	assert.Equal(t, 0.0, ResolutionRate([]models.Issue{{Status: models.IssueOpen}}))

	score := func(v float64) *float64 { return &v }
	posts := []models.PolicyPost{
		{ID: "p1", Upvotes: 4, AIConfidenceScore: score(0.8)},
		{ID: "p2", Upvotes: 1, AIConfidenceScore: score(0.6)},
		{ID: "p3", Upvotes: 0},
	}
	assert.Equal(t, 4+2+1+0+3, PolicyEngagement(posts, map[string]int{"p1": 2, "p3": 3}))

	bi := BalanceIndex(posts)
	require.NotNil(t, bi)
	assert.InDelta(t, 0.7, *bi, 1e-9)
	assert.Nil(t, BalanceIndex(posts[2:]))
}
