package handlers_test

import (
	"bytes"
	"civicpulse/internal/civictime"
	"civicpulse/internal/handlers"
	"civicpulse/internal/middleware"
	"civicpulse/internal/models"
	"civicpulse/internal/router"
	"civicpulse/internal/services"
	"civicpulse/internal/snapshot"
	"civicpulse/internal/store"
	"civicpulse/internal/thread"
	"civicpulse/internal/utils"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

type testServer struct {
	t       *testing.T
	engine  *gin.Engine
	store   *store.MemoryStore
	cookies map[string][]*http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := store.NewMemoryStore()
	clock := civictime.FixedClock(time.Date(2026, 2, 12, 15, 0, 0, 0, ist), ist)
	composer := snapshot.NewComposer(s, clock, snapshot.DefaultOptions())
	audit := services.NewAuditor(s, clock)
	comments := services.NewCommentService(s, clock, services.NewAliasService(s, clock), audit, nil, services.AIOptions{})
	briefs := services.NewBriefService(s, composer, audit, nil, time.Second)
	cache, err := utils.NewCache[*snapshot.Snapshot](16)
	require.NoError(t, err)

	sessionStore, err := middleware.NewSessionStore("test-secret")
	require.NoError(t, err)
	r := router.New(middleware.Sessions(sessionStore))
	// 模拟外部登录服务写 session
	r.GET("/test/login/:id", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(middleware.SessionUserKey, c.Param("id"))
		require.NoError(t, session.Save())
		c.Status(http.StatusNoContent)
	})
	router.RegisterRoutes(r, router.Handlers{
		Snapshot: handlers.NewSnapshotHandler(composer, cache, time.Minute, 30),
		Comment:  handlers.NewCommentHandler(thread.NewService(s, clock, 4), comments),
		Vote:     handlers.NewVoteHandler(s, audit, cache),
		Brief:    handlers.NewBriefHandler(briefs, services.NewBriefQueue(briefs)),
	})

	ctx := context.Background()
	for _, row := range []any{
		&models.PolicyPost{ID: "p1", ConstituencyID: "k1", Title: "Lighting budget", CreatedAt: civictime.Raw("2026-02-12T09:00:00")},
		&models.PolicyComment{ID: "c1", PostID: "p1", UserID: "author", Content: "First!", CreatedAt: civictime.Raw("2026-02-12T10:00:00")},
		&models.Issue{ID: "i1", ConstituencyID: "k1", Title: "Potholes", CreatedAt: civictime.Raw("2026-02-12T08:00:00")},
		&models.Representative{ID: "r1", UserID: "rep", ConstituencyID: "k1", CandidateName: "A. Rao", TermEnd: civictime.Raw("2026-02-20")},
	} {
		require.NoError(t, s.Insert(ctx, row))
	}
	return &testServer{t: t, engine: r, store: s, cookies: map[string][]*http.Cookie{}}
}

func (ts *testServer) login(userID string) []*http.Cookie {
	if c, ok := ts.cookies[userID]; ok {
		return c
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test/login/"+userID, nil))
	require.Equal(ts.t, http.StatusNoContent, w.Code)
	ts.cookies[userID] = w.Result().Cookies()
	return ts.cookies[userID]
}

// do 发送请求，userID 为空表示匿名
func (ts *testServer) do(method, path string, body any, userID string) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		for _, c := range ts.login(userID) {
			req.AddCookie(c)
		}
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["absorbed_fetch_errors"])

	ts.store.FailOn("election_constituencies", assert.AnError)
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/constituencies/k1/snapshot", nil, "").Code)

	w = ts.do(http.MethodGet, "/healthz", nil, "")
	assert.EqualValues(t, 1, decode(t, w)["absorbed_fetch_errors"])
}

func TestRespondErrorStatuses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		code int
	}{
		{context.Canceled, 499},
		{fmt.Errorf("compose: %w", context.Canceled), 499},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{store.ErrNotFound, http.StatusNotFound},
		{services.ErrAIDisabled, http.StatusServiceUnavailable},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		handlers.RespondError(c, tc.err)
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
		// 只有 500 会记录到 gin 的错误列表
		assert.Equal(t, tc.code == http.StatusInternalServerError, len(c.Errors) > 0, tc.err.Error())
	}
}

func TestSnapshotIsCachedAndInvalidatedByVotes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/constituencies/k1/snapshot", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	body := decode(t, w)
	for _, tier := range []string{"governance", "sentiment", "focus", "fresh", "meta"} {
		assert.Contains(t, body, tier)
	}
	fresh := body["fresh"].(map[string]any)
	assert.Len(t, fresh["new_issues"], 1)
	assert.Len(t, fresh["new_policy_posts"], 1)

	w = ts.do(http.MethodGet, "/constituencies/k1/snapshot", nil, "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	w = ts.do(http.MethodPost, "/issues/i1/vote", gin.H{"vote_type": "up"}, "citizen")
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(http.MethodGet, "/constituencies/k1/snapshot", nil, "")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
}

func TestSnapshotDegradedIsNotCached(t *testing.T) {
	ts := newTestServer(t)
	ts.store.FailOn("election_constituencies", assert.AnError)

	w := ts.do(http.MethodGet, "/constituencies/k1/snapshot", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	meta := decode(t, w)["meta"].(map[string]any)
	assert.Equal(t, []any{"election_constituencies"}, meta["degraded"])

	w = ts.do(http.MethodGet, "/constituencies/k1/snapshot", nil, "")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
}

func TestIssueVote(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/issues/i1/vote", gin.H{"vote_type": "up"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodPost, "/issues/i1/vote", gin.H{"vote_type": "sideways"}, "citizen")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/issues/missing/vote", gin.H{"vote_type": "up"}, "citizen")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 问题投票只追加，同一用户两次都会计入
	for range 2 {
		w = ts.do(http.MethodPost, "/issues/i1/vote", gin.H{"vote_type": "down"}, "citizen")
		require.Equal(t, http.StatusCreated, w.Code)
	}
	votes, err := store.All[models.IssueVote](context.Background(), ts.store, store.Filter{"issue_id": "i1"})
	require.NoError(t, err)
	assert.Len(t, votes, 2)
}

func TestCommentVoteToggle(t *testing.T) {
	ts := newTestServer(t)
	vote := func(value int) map[string]any {
		w := ts.do(http.MethodPost, "/comments/c1/vote", gin.H{"value": value}, "citizen")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode(t, w)
	}

	got := vote(1)
	assert.Equal(t, "inserted", got["transition"])
	assert.EqualValues(t, 1, got["score"])
	assert.EqualValues(t, 1, got["viewer_vote"])

	got = vote(-1)
	assert.Equal(t, "switched", got["transition"])
	assert.EqualValues(t, -1, got["score"])

	got = vote(-1)
	assert.Equal(t, "removed", got["transition"])
	assert.EqualValues(t, 0, got["score"])
	assert.Nil(t, got["viewer_vote"])

	w := ts.do(http.MethodPost, "/comments/c1/vote", gin.H{"value": 2}, "citizen")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/comments/nope/vote", gin.H{"value": 1}, "citizen")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPolicyVoteRefreshesCounters(t *testing.T) {
	ts := newTestServer(t)

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/policy/p1/vote", gin.H{"value": 1}, "a").Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/policy/p1/vote", gin.H{"value": 1}, "b").Code)
	w := ts.do(http.MethodPost, "/policy/p1/vote", gin.H{"value": -1}, "c")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.EqualValues(t, 2, got["upvotes"])
	assert.EqualValues(t, 1, got["downvotes"])

	post, err := store.One[models.PolicyPost](context.Background(), ts.store, store.Filter{"id": "p1"})
	require.NoError(t, err)
	assert.Equal(t, 2, post.Upvotes)
	assert.Equal(t, 1, post.Downvotes)

	w = ts.do(http.MethodPost, "/policy/missing/vote", gin.H{"value": 1}, "a")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPolicyVoteCountersSurviveConcurrentVoters(t *testing.T) {
	ts := newTestServer(t)
	const voters = 24
	for i := range voters {
		ts.login(fmt.Sprintf("v%d", i))
	}

	var wg sync.WaitGroup
	codes := make([]int, voters)
	for i := range voters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value := 1
			if i%3 == 0 {
				value = -1
			}
			codes[i] = ts.do(http.MethodPost, "/policy/p1/vote", gin.H{"value": value}, fmt.Sprintf("v%d", i)).Code
		}()
	}
	wg.Wait()
	for _, code := range codes {
		require.Equal(t, http.StatusOK, code)
	}

	// 帖子上的计数必须和账本一致
	post, err := store.One[models.PolicyPost](context.Background(), ts.store, store.Filter{"id": "p1"})
	require.NoError(t, err)
	assert.Equal(t, 16, post.Upvotes)
	assert.Equal(t, 8, post.Downvotes)
}

func TestCommentsCreateAndList(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/policy/p1/comments", gin.H{"content": "hi"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodPost, "/policy/p1/comments", gin.H{"content": "  "}, "citizen")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/policy/p1/comments", gin.H{"content": "hi", "parent_comment_id": "nope"}, "citizen")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/policy/missing/comments", gin.H{"content": "hi"}, "citizen")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, "/policy/p1/comments", gin.H{"content": "Agree with **this**", "parent_comment_id": "c1"}, "citizen")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/comments/c1/vote", gin.H{"value": 1}, "citizen").Code)

	w = ts.do(http.MethodGet, "/policy/p1/comments", nil, "citizen")
	require.Equal(t, http.StatusOK, w.Code)
	forest := decode(t, w)["comments"].([]any)
	require.Len(t, forest, 1)
	root := forest[0].(map[string]any)
	assert.Equal(t, "c1", root["id"])
	assert.EqualValues(t, 1, root["score"])
	assert.EqualValues(t, 1, root["viewer_vote"])
	replies := root["replies"].([]any)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].(map[string]any)["content_html"], "<strong>this</strong>")

	// 匿名访问没有 viewer_vote
	w = ts.do(http.MethodGet, "/policy/p1/comments", nil, "")
	root = decode(t, w)["comments"].([]any)[0].(map[string]any)
	assert.Nil(t, root["viewer_vote"])

	w = ts.do(http.MethodGet, "/policy/missing/comments", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTermsAndAccountability(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/constituencies/k1/terms?days=7", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["terms"])

	w = ts.do(http.MethodGet, "/constituencies/k1/terms", nil, "")
	got := decode(t, w)
	assert.EqualValues(t, 30, got["horizon_days"])
	assert.Len(t, got["terms"], 1)

	w = ts.do(http.MethodGet, "/constituencies/k1/terms?days=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/constituencies/k1/accountability?rep_user_id=rep", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	got = decode(t, w)
	assert.EqualValues(t, 0, got["resolution_rate"])
	assert.Nil(t, got["system_score"])
}

func TestBriefWithoutAI(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/constituencies/k1/brief", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, "/constituencies/k1/brief", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodPost, "/constituencies/k1/brief", nil, "citizen")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
