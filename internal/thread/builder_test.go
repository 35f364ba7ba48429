package thread

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func comment(id, parent string) models.PolicyComment {
	c := models.PolicyComment{ID: id, PostID: "p1", UserID: "u-" + id, Content: "text " + id}
	if parent != "" {
		c.ParentCommentID = &parent
	}
	return c
}

func ids(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func count(nodes []Node) int {
	total := 0
	for _, n := range nodes {
		total += 1 + count(n.Replies)
	}
	return total
}

func TestBuildNestsAndPromotesOrphans(t *testing.T) {
	forest := Build(Input{
		Post: models.PolicyPost{ID: "p1"},
		Comments: []models.PolicyComment{
			comment("A", ""),
			comment("B", "A"),
			comment("C", "B"),
			comment("D", "missing"),
		},
	})

	require.Equal(t, []string{"A", "D"}, ids(forest))
	require.Equal(t, []string{"B"}, ids(forest[0].Replies))
	require.Equal(t, []string{"C"}, ids(forest[0].Replies[0].Replies))
	assert.Empty(t, forest[1].Replies)
	assert.Equal(t, 4, count(forest))
}

func TestBuildKeepsSiblingOrder(t *testing.T) {
	forest := Build(Input{Comments: []models.PolicyComment{
		comment("root", ""),
		comment("r3", "root"),
		comment("r1", "root"),
		comment("r2", "root"),
	}})
	require.Len(t, forest, 1)
	assert.Equal(t, []string{"r3", "r1", "r2"}, ids(forest[0].Replies))
}

func TestBuildSurvivesCyclesAndSelfReference(t *testing.T) {
	forest := Build(Input{Comments: []models.PolicyComment{
		comment("X", "Y"),
		comment("Y", "X"),
		comment("S", "S"),
		comment("Z", "Y"),
	}})

	assert.Equal(t, []string{"X", "S"}, ids(forest))
	assert.Equal(t, []string{"Y"}, ids(forest[0].Replies))
	assert.Equal(t, []string{"Z"}, ids(forest[0].Replies[0].Replies))
	assert.Equal(t, 4, count(forest))
}

func TestBuildIgnoresParentsOnOtherPosts(t *testing.T) {
	foreign := comment("F", "")
	foreign.PostID = "p2"
	forest := Build(Input{Comments: []models.PolicyComment{foreign, comment("K", "F")}})
	assert.Equal(t, []string{"F", "K"}, ids(forest))
}

func TestBuildEmpty(t *testing.T) {
	forest := Build(Input{})
	assert.NotNil(t, forest)
	assert.Empty(t, forest)
}

func TestBuildAnnotatesNodes(t *testing.T) {
	now := time.Date(2026, 2, 12, 18, 0, 0, 0, ist)
	op := comment("A", "")
	op.UserID = "rep-user"
	op.CreatedAt = civictime.Raw("2026-02-12T17:53:00")
	bot := comment("B", "A")
	bot.AIGenerated = true
	bot.UserID = "system"
	citizen := comment("C", "A")
	citizen.UserID = "cit-1"
	stranger := comment("D", "")
	stranger.UserID = "cit-2"
	stranger.CreatedAt = civictime.Raw("not a time")

	forest := Build(Input{
		Post:     models.PolicyPost{ID: "p1", CreatedByUserID: "rep-user"},
		Comments: []models.PolicyComment{op, bot, citizen, stranger},
		Roster: RosterByUser([]models.Representative{
			{UserID: "rep-user", CandidateName: "A. Rao", Type: models.RoleElectedRep},
		}),
		Aliases:  map[string]string{"cit-1": "SteadyHeron42"},
		Scores:   map[string]int{"A": 3, "C": -1},
		Viewer:   map[string]int{"C": -1},
		Now:      now,
		Location: ist,
	})
	require.Len(t, forest, 2)

	a := forest[0]
	assert.True(t, a.IsOP)
	assert.True(t, a.IsOfficial)
	assert.Equal(t, "A. Rao", a.Username)
	assert.Equal(t, models.RoleElectedRep, a.Role)
	assert.Equal(t, 3, a.Score)
	assert.Nil(t, a.ViewerVote)
	assert.Equal(t, "12 Feb 2026, 05:53 PM", a.CreatedAt)
	assert.Equal(t, "7m ago", a.TimeAgo)

	b, c := a.Replies[0], a.Replies[1]
	assert.Equal(t, KindSystem, b.Author.Kind)
	assert.Equal(t, "AI Bot", b.Username)
	assert.False(t, b.IsOfficial)

	assert.Equal(t, KindCitizen, c.Author.Kind)
	assert.Equal(t, "SteadyHeron42", c.Username)
	assert.Equal(t, -1, c.Score)
	require.NotNil(t, c.ViewerVote)
	assert.Equal(t, -1, *c.ViewerVote)
	assert.False(t, c.IsOP)

	d := forest[1]
	assert.Equal(t, "Citizen", d.Username)
	assert.Equal(t, 0, d.Score)
	assert.Empty(t, d.CreatedAt, "unparseable timestamps leave the display fields blank")
}

func TestResolveIdentityPrecedence(t *testing.T) {
	roster := RosterByUser([]models.Representative{{UserID: "u1", CandidateName: "Rep", Type: models.RoleOppositionRep}})
	aliases := map[string]string{"u1": "ShouldNotWin"}

	ai := ResolveIdentity(models.PolicyComment{UserID: "u1", AIGenerated: true}, roster, aliases)
	assert.Equal(t, Identity{Kind: KindSystem, Name: "AI Bot", Role: "AI"}, ai)

	official := ResolveIdentity(models.PolicyComment{UserID: "u1"}, roster, aliases)
	assert.Equal(t, Identity{Kind: KindOfficial, Name: "Rep", Role: models.RoleOppositionRep}, official)

	anon := ResolveIdentity(models.PolicyComment{UserID: "u9"}, roster, aliases)
	assert.Equal(t, "Citizen", anon.Name)
}
