// Package thread 把政策帖的扁平评论列表组装成带注释的评论森林。
package thread

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/models"
	"civicpulse/internal/utils"
	"html/template"
	"time"
)

// Node 评论树节点
type Node struct {
	ID              string        `json:"id"`
	PostID          string        `json:"post_id"`
	UserID          string        `json:"user_id"`
	ParentCommentID *string       `json:"parent_comment_id"`
	Content         string        `json:"content"`
	ContentHTML     template.HTML `json:"content_html"`
	AIGenerated     bool          `json:"ai_generated"`

	Author     Identity `json:"author"`
	Username   string   `json:"username"`
	Role       string   `json:"role"`
	IsOfficial bool     `json:"is_official"`
	IsOP       bool     `json:"is_op"`

	CreatedAt string `json:"created_at"`
	TimeAgo   string `json:"time_ago"`

	Score      int  `json:"score"`
	ViewerVote *int `json:"viewer_vote"`

	Replies []Node `json:"replies"`
}

// Input 构建评论树所需的全部数据，Build 本身不做 I/O
type Input struct {
	Post     models.PolicyPost
	Comments []models.PolicyComment // 按创建顺序
	Roster   map[string]models.Representative
	Aliases  map[string]string // user_id -> 别名
	Scores   map[string]int    // comment_id -> 净得分
	Viewer   map[string]int    // comment_id -> 当前查看者的票
	Now      time.Time
	Location *time.Location
}

// Build 组装评论森林。
//
// 第一遍把所有评论放进 arena 并建立 id -> 下标索引，第二遍按父子关系挂接。
// 父评论缺失、指向自己或属于其他帖子的评论提升为根；环上的评论在按顺序
// 第一次遇到时提升为根，因此每条评论恰好出现一次。根和兄弟都保持输入顺序。
func Build(in Input) []Node {
	n := len(in.Comments)
	arena := make([]Node, n)
	index := make(map[string]int, n)
	for i, c := range in.Comments {
		arena[i] = annotate(c, in)
		if _, dup := index[c.ID]; !dup {
			index[c.ID] = i
		}
	}

	children := make([][]int, n)
	isRoot := make([]bool, n)
	for i, c := range in.Comments {
		p, ok := parentOf(c, i, index, in.Comments)
		if !ok {
			isRoot[i] = true
			continue
		}
		children[p] = append(children[p], i)
	}

	// 从根出发不可达的节点必然在环上，按输入顺序逐个提升
	reached := make([]bool, n)
	var mark func(i int)
	mark = func(i int) {
		if reached[i] {
			return
		}
		reached[i] = true
		for _, c := range children[i] {
			mark(c)
		}
	}
	for i := range n {
		if isRoot[i] {
			mark(i)
		}
	}
	for i := range n {
		if !reached[i] {
			isRoot[i] = true
			mark(i)
		}
	}

	placed := make([]bool, n)
	var materialize func(i int) Node
	materialize = func(i int) Node {
		placed[i] = true
		node := arena[i]
		node.Replies = make([]Node, 0, len(children[i]))
		for _, c := range children[i] {
			if placed[c] || isRoot[c] {
				continue
			}
			node.Replies = append(node.Replies, materialize(c))
		}
		return node
	}

	roots := make([]Node, 0)
	for i := range n {
		if isRoot[i] && !placed[i] {
			roots = append(roots, materialize(i))
		}
	}
	return roots
}

func parentOf(c models.PolicyComment, self int, index map[string]int, comments []models.PolicyComment) (int, bool) {
	if c.ParentCommentID == nil || *c.ParentCommentID == "" {
		return 0, false
	}
	p, ok := index[*c.ParentCommentID]
	if !ok || p == self {
		return 0, false
	}
	if comments[p].PostID != c.PostID {
		return 0, false
	}
	return p, true
}

func annotate(c models.PolicyComment, in Input) Node {
	who := ResolveIdentity(c, in.Roster, in.Aliases)
	node := Node{
		ID:              c.ID,
		PostID:          c.PostID,
		UserID:          c.UserID,
		ParentCommentID: c.ParentCommentID,
		Content:         c.Content,
		ContentHTML:     utils.RenderMarkdown(c.Content),
		AIGenerated:     c.AIGenerated,
		Author:          who,
		Username:        who.Name,
		Role:            who.Role,
		IsOfficial:      who.IsOfficial(),
		IsOP:            c.UserID != "" && c.UserID == in.Post.CreatedByUserID,
		Score:           in.Scores[c.ID],
	}
	if v, ok := in.Viewer[c.ID]; ok {
		vote := v
		node.ViewerVote = &vote
	}
	if t, err := c.CreatedAt.Time(in.Location); err == nil {
		node.CreatedAt = civictime.FormatDisplay(t, in.Location)
		node.TimeAgo = civictime.TimeAgo(t, in.Now)
	}
	return node
}
