package snapshot

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/models"
	"civicpulse/internal/signals"
	"time"
)

// assemble 把读取到的数据转换为快照，纯函数
func assemble(id string, now time.Time, today civictime.Day, loc *time.Location, opts Options, in inputs) *Snapshot {
	snap := Empty(id, now, today)
	inWindow := func(s civictime.Stamp) bool { return civictime.InWindow(s, today, loc) }

	// 第一层
	for _, e := range in.elections {
		if e.Status == models.ElectionUpcoming || e.Status == models.ElectionOngoing {
			snap.Governance.ActiveElections = append(snap.Governance.ActiveElections, ElectionSignal{
				ElectionID: e.ID,
				Name:       e.ElectionName,
				Status:     e.Status,
				Start:      e.StartTime,
				End:        e.EndTime,
			})
		}
	}
	snap.Governance.RepTermsEnding = termSignals(signals.ExpiringWithin(in.reps, today, opts.TermHorizonDays, loc))

	// 第二、三、四层中与问题相关的部分
	var (
		backlash []BacklashSignal
		support  []SupportSignal
		trending []TrendingIssue
	)
	for _, d := range in.issues {
		is := d.issue
		tally := signals.TallyIssueVotes(d.votes)

		if d.votesOK && d.feedbackOK {
			if score := signals.BacklashScore(tally, d.feedback); signals.IsBacklash(score) {
				backlash = append(backlash, BacklashSignal{IssueID: is.ID, Title: is.Title, NegativeScore: score})
			}
		}
		if d.votesOK {
			if score := signals.SupportScore(tally); signals.IsSupported(score) {
				support = append(support, SupportSignal{IssueID: is.ID, Title: is.Title, Support: score})
			}
		}
		if d.votesOK && d.commentsOK {
			trending = append(trending, TrendingIssue{
				IssueID:    is.ID,
				Title:      is.Title,
				Status:     is.Status,
				Engagement: signals.Engagement(tally, len(d.comments)),
			})
		}
		if d.commentsOK {
			n := civictime.CountInWindow(d.comments, func(c models.IssueComment) civictime.Stamp { return c.CreatedAt }, today, loc)
			if signals.IsActive(n) {
				snap.Focus.ActiveIssueDiscussions = append(snap.Focus.ActiveIssueDiscussions, ActiveDiscussion{
					IssueID: is.ID, Title: is.Title, CommentCountToday: n,
				})
			}
		}
		if inWindow(is.CreatedAt) {
			snap.Fresh.NewIssues = append(snap.Fresh.NewIssues, NewIssue{
				IssueID: is.ID, Title: is.Title, Category: is.Category, CreatedAt: is.CreatedAt,
			})
		}
		if d.resolutionsOK && resolvedOn(d.resolutions, inWindow) {
			snap.Fresh.IssuesResolved = append(snap.Fresh.IssuesResolved, ResolvedIssue{IssueID: is.ID, Title: is.Title})
		}
	}
	snap.Sentiment.BacklashSignals = signals.Rank(backlash, func(b BacklashSignal) int { return b.NegativeScore }, opts.BacklashLimit)
	snap.Sentiment.SupportedIssues = signals.Rank(support, func(s SupportSignal) int { return s.Support }, opts.SupportLimit)
	snap.Focus.TrendingIssues = signals.Rank(trending, func(t TrendingIssue) int { return t.Engagement }, opts.TrendingLimit)

	// 政策帖
	authors := make(map[string]string, len(in.reps))
	for _, r := range in.reps {
		if _, ok := authors[r.UserID]; !ok {
			authors[r.UserID] = r.CandidateName
		}
	}
	for _, d := range in.posts {
		p := d.post
		if d.commentsOK {
			n := civictime.CountInWindow(d.comments, func(c models.PolicyComment) civictime.Stamp { return c.CreatedAt }, today, loc)
			if signals.IsActive(n) {
				snap.Focus.ActivePolicyDebates = append(snap.Focus.ActivePolicyDebates, ActiveDebate{
					PostID: p.ID, Title: p.Title, CommentCountToday: n,
				})
			}
		}
		if inWindow(p.CreatedAt) {
			snap.Fresh.NewPolicyPosts = append(snap.Fresh.NewPolicyPosts, NewPolicyPost{
				PostID:     p.ID,
				Title:      p.Title,
				AuthorRole: p.CreatedByRole,
				AuthorName: authors[p.CreatedByUserID],
			})
		}
	}
	return snap
}

// resolvedOn 是否有当天经公民确认的解决记录
func resolvedOn(resolutions []models.IssueResolution, inWindow func(civictime.Stamp) bool) bool {
	for _, r := range resolutions {
		if r.CitizenConfirmed && inWindow(r.ConfirmedAt) {
			return true
		}
	}
	return false
}

func termSignals(expiring []signals.Expiring) []TermSignal {
	out := make([]TermSignal, 0, len(expiring))
	for _, e := range expiring {
		out = append(out, TermSignal{
			RepresentativeID: e.Representative.ID,
			Name:             e.Representative.CandidateName,
			Party:            e.Representative.PartyName,
			Role:             e.Representative.Type,
			TermEnd:          e.TermEnd,
			DaysLeft:         e.DaysLeft,
		})
	}
	return out
}
