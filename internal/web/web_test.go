package web_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/teamrank/internal/factory"
	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/testutil"
	"github.com/mcoot/teamrank/internal/web"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
}

func newWebTestServer(t *testing.T, kind model.StrategyKind) *webTestServer {
	t.Helper()

	app := factory.NewTestApp(kind)
	router := web.NewRouter(web.RouterConfig{
		Logger:             testutil.NopLogger(),
		Metrics:            app.Metrics,
		RosterService:      app.RosterService,
		MatchService:       app.MatchService,
		TeamsService:       app.TeamsService,
		LeaderboardService: app.LeaderboardService,
	})

	return &webTestServer{t: t, handler: router, app: app}
}

func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form)
}

// recordMatch posts a match and requires it to succeed
func (ts *webTestServer) recordMatch(teamA, teamB, winner string) {
	ts.t.Helper()
	rr := ts.post("/matches", url.Values{"team_a": {teamA}, "team_b": {teamB}, "winner": {winner}})
	require.Equal(ts.t, http.StatusCreated, rr.Code, rr.Body.String())
}

func parseHTML(t *testing.T, r io.Reader) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(r)
	require.NoError(t, err)
	return doc
}

func texts(sel *goquery.Selection) []string {
	return sel.Map(func(_ int, s *goquery.Selection) string {
		return strings.TrimSpace(s.Text())
	})
}

func TestEmptyLeaderboard(t *testing.T) {
	ts := newWebTestServer(t, model.StrategyElo)

	rr := ts.get("/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	doc := parseHTML(t, rr.Body)
	assert.Equal(t, "Leaderboard - teamrank", doc.Find("title").Text())
	assert.Equal(t, "No players registered yet.", doc.Find("p.empty").Text())
}

func TestLeaderboardOrdersByRating(t *testing.T) {
	ts := newWebTestServer(t, model.StrategyElo)
	ts.recordMatch("Alice", "Bob", "B")
	ts.recordMatch("Carol", "Dave", "A")

	doc := parseHTML(t, ts.get("/").Body)

	rows := doc.Find("#leaderboard tbody tr")
	require.Equal(t, 4, rows.Length())
	assert.Equal(t, []string{"Bob", "Carol", "Alice", "Dave"}, texts(rows.Find("td.name")))
	assert.Equal(t, []string{"1016", "1016", "984", "984"}, texts(rows.Find("td.rating")))
	assert.Equal(t, []string{"1", "2", "3", "4"}, texts(rows.Find("td.rank")))

	href, ok := rows.First().Find("td.name a").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "/players/bob", href)
}

func TestLeaderboardLimit(t *testing.T) {
	ts := newWebTestServer(t, model.StrategyElo)
	ts.recordMatch("Alice", "Bob", "A")

	doc := parseHTML(t, ts.get("/?limit=1").Body)
	assert.Equal(t, []string{"Alice"}, texts(doc.Find("#leaderboard td.name")))

	rr := ts.get("/?limit=lots")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPlayerPage(t *testing.T) {
	ts := newWebTestServer(t, model.StrategyBayesian)
	ts.recordMatch("Alice", "Bob", "A")

	rr := ts.get("/players/ALICE")
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(t, rr.Body)

	assert.Equal(t, "Alice", doc.Find("h1").Text())
	assert.Equal(t, "alice", doc.Find("dd.key").Text())
	assert.Equal(t, "1 W / 0 L in 1 matches", doc.Find("dd.record").Text())
	assert.Equal(t, "100.0%", doc.Find("dd.winrate").Text())
	assert.Equal(t, "2024-01-01 12:00 UTC", doc.Find("dd.last-match").Text())
	assert.Contains(t, doc.Find("dd.skill").Text(), "±")
}

func TestPlayerPageNotFound(t *testing.T) {
	ts := newWebTestServer(t, model.StrategyElo)

	rr := ts.get("/players/nobody")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	doc := parseHTML(t, rr.Body)
	assert.Contains(t, doc.Find("p.error").Text(), "player not found")
}

func TestRecordMatchShowsChanges(t *testing.T) {
	ts := newWebTestServer(t, model.StrategyElo)

	rr := ts.post("/matches", url.Values{"team_a": {"Alice Bob"}, "team_b": {"Carol Dave"}, "winner": {"a"}})
	require.Equal(t, http.StatusCreated, rr.Code)
	doc := parseHTML(t, rr.Body)

	assert.Equal(t, "Team A won", doc.Find("#winner").Text())
	won := doc.Find("#changes tr.won")
	require.Equal(t, 2, won.Length())
	assert.Equal(t, []string{"1000", "1000"}, texts(won.Find("td.before")))
	assert.Equal(t, []string{"1016", "1016"}, texts(won.Find("td.after")))
	assert.Equal(t, []string{"984", "984"}, texts(doc.Find("#changes tr.lost td.after")))
}

func TestRecordMatchValidationKeepsInput(t *testing.T) {
	ts := newWebTestServer(t, model.StrategyElo)

	rr := ts.post("/matches", url.Values{"team_a": {"Alice <b>"}, "team_b": {"alice"}, "winner": {"a"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	doc := parseHTML(t, rr.Body)

	assert.Contains(t, doc.Find(".flash.error").Text(), "both teams")
	value, _ := doc.Find("input#team_a").Attr("value")
	assert.Equal(t, "Alice <b>", value)
	checked, ok := doc.Find(`input[name="winner"][checked]`).Attr("value")
	require.True(t, ok)
	assert.Equal(t, "A", checked)
	assert.Zero(t, ts.app.MemoryStore.Saves())
}

func TestTeamsFlow(t *testing.T) {
	ts := newWebTestServer(t, model.StrategyElo)
	ts.recordMatch("Alice Bob", "Carol Dave", "A")

	doc := parseHTML(t, ts.get("/teams").Body)
	assert.Equal(t, 1, doc.Find("form#teams-form textarea#players").Length())

	rr := ts.post("/teams", url.Values{"players": {"alice bob carol dave"}, "metric": {"mu"}})
	require.Equal(t, http.StatusOK, rr.Code)
	doc = parseHTML(t, rr.Body)

	teamA, _ := doc.Find("#team-a li.member").First().Attr("data-key")
	assert.Equal(t, "alice", teamA)
	assert.Equal(t, []string{"alice", "carol"}, doc.Find("#team-a li.member").Map(func(_ int, s *goquery.Selection) string {
		key, _ := s.Attr("data-key")
		return key
	}))
	assert.Equal(t, "Difference (mu): 0.00", doc.Find("#difference").Text())
	assert.Equal(t, "Win chance: 50.0%", doc.Find("#team-a p.win").Text())
}

func TestTeamsValidation(t *testing.T) {
	ts := newWebTestServer(t, model.StrategyElo)

	rr := ts.post("/teams", url.Values{"players": {"alice bob carol"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	doc := parseHTML(t, rr.Body)
	assert.Contains(t, doc.Find(".flash.error").Text(), "even number")
	assert.Equal(t, "alice bob carol", doc.Find("textarea#players").Text())
}

func TestOutputIsEscaped(t *testing.T) {
	ts := newWebTestServer(t, model.StrategyElo)
	ts.recordMatch("<script>x</script>", "Bob", "A")

	rr := ts.get("/")
	assert.NotContains(t, rr.Body.String(), "<script>x</script>")
	assert.Contains(t, rr.Body.String(), "&lt;script&gt;")
}

func TestLeaderboardLinksEscapeKeys(t *testing.T) {
	ts := newWebTestServer(t, model.StrategyElo)
	_, err := ts.app.RosterService.Register(context.Background(), []string{"AC/DC", "Q&A #1?"})
	require.NoError(t, err)

	doc := parseHTML(t, ts.get("/").Body)
	var hrefs []string
	doc.Find("#leaderboard td.name a").Each(func(_ int, a *goquery.Selection) {
		hrefs = append(hrefs, a.AttrOr("href", ""))
	})
	require.Equal(t, []string{"/players/ac%2Fdc", "/players/q&a%20%231%3F"}, hrefs)

	for i, key := range []string{"ac/dc", "q&a #1?"} {
		rr := ts.get(hrefs[i])
		require.Equal(t, http.StatusOK, rr.Code, hrefs[i])
		page := parseHTML(t, rr.Body)
		assert.Equal(t, key, strings.TrimSpace(page.Find("#player dd.key").Text()))
	}
}
