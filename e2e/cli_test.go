package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/teamrank/internal/api"
	"github.com/mcoot/teamrank/internal/factory"
	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/rating"
	filestorage "github.com/mcoot/teamrank/internal/storage/file"
	"github.com/mcoot/teamrank/internal/testutil"
	"github.com/mcoot/teamrank/internal/web"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "teamrank-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/teamrank")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server backed by a player file
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T, playerFile string) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := testutil.NopLogger()
	ratingCfg := rating.DefaultConfig()
	ratingCfg.Kind = model.StrategyElo

	app, err := factory.New(context.Background(), factory.Config{
		Rating:      ratingCfg,
		Logger:      logger,
		StorageType: factory.StorageTypeFile,
		FileConfig:  filestorage.Config{Path: playerFile},
	})
	require.NoError(t, err)

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		RosterService:      app.RosterService,
		MatchService:       app.MatchService,
		TeamsService:       app.TeamsService,
		LeaderboardService: app.LeaderboardService,
	})
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:             logger,
		RosterService:      app.RosterService,
		MatchService:       app.MatchService,
		TeamsService:       app.TeamsService,
		LeaderboardService: app.LeaderboardService,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := api.NewServer(mux, api.DefaultServerConfig(), logger)
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			_ = server.Shutdown(context.Background())
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type ratingResponse struct {
	Elo *int `json:"elo"`
}

type playerResponse struct {
	Key           string         `json:"key"`
	DisplayName   string         `json:"display_name"`
	Rating        ratingResponse `json:"rating"`
	MatchesPlayed int            `json:"matches_played"`
	Wins          int            `json:"wins"`
}

type registerResponse struct {
	Players []playerResponse `json:"players"`
	Created []string         `json:"created"`
}

type matchResponse struct {
	Winner string `json:"winner"`
	TeamA  []struct {
		Key    string         `json:"key"`
		Before ratingResponse `json:"before"`
		After  ratingResponse `json:"after"`
	} `json:"team_a"`
}

type teamsResponse struct {
	TeamA      []playerResponse `json:"team_a"`
	TeamB      []playerResponse `json:"team_b"`
	Difference float64          `json:"difference"`
}

type leaderboardResponse struct {
	Standings []struct {
		Rank   int            `json:"rank"`
		Player playerResponse `json:"player"`
	} `json:"standings"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Strategy string `json:"strategy"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t, filepath.Join(t.TempDir(), "players.json"))
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "elo", resp.Strategy)
}

func TestCLI_SeasonFlow(t *testing.T) {
	ts := startTestServer(t, filepath.Join(t.TempDir(), "players.json"))
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register players, one twice with different casing
	output, err := cli.run("player", "add", "Alice", "Bob", "Carol", "Dave", "alice")
	require.NoError(t, err, "output: %s", output)

	var reg registerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &reg))
	assert.Equal(t, []string{"alice", "bob", "carol", "dave"}, reg.Created)

	// Record a match
	output, err = cli.run("match", "--team-a", "alice,bob", "--team-b", "carol,dave", "--winner", "A")
	require.NoError(t, err, "output: %s", output)

	var match matchResponse
	require.NoError(t, json.Unmarshal([]byte(output), &match))
	assert.Equal(t, "A", match.Winner)
	require.Len(t, match.TeamA, 2)
	require.NotNil(t, match.TeamA[0].Before.Elo)
	require.NotNil(t, match.TeamA[0].After.Elo)
	assert.Equal(t, 1000, *match.TeamA[0].Before.Elo)
	assert.Equal(t, 1016, *match.TeamA[0].After.Elo)

	// Balanced teams pair one winner with one loser
	output, err = cli.run("team", "alice", "bob", "carol", "dave")
	require.NoError(t, err, "output: %s", output)

	var split teamsResponse
	require.NoError(t, json.Unmarshal([]byte(output), &split))
	require.Len(t, split.TeamA, 2)
	assert.Equal(t, "alice", split.TeamA[0].Key)
	assert.Equal(t, "carol", split.TeamA[1].Key)
	assert.Equal(t, 0.0, split.Difference)

	// Leaderboard
	output, err = cli.run("top", "-n", "2")
	require.NoError(t, err, "output: %s", output)

	var board leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	require.Len(t, board.Standings, 2)
	assert.Equal(t, 1, board.Standings[0].Rank)
	require.NotNil(t, board.Standings[0].Player.Rating.Elo)
	assert.Equal(t, 1016, *board.Standings[0].Player.Rating.Elo)
}

func TestCLI_Errors(t *testing.T) {
	ts := startTestServer(t, filepath.Join(t.TempDir(), "players.json"))
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("player", "show", "nobody")
	require.Error(t, err)
	assert.Contains(t, output, "PLAYER_NOT_FOUND")

	output, err = cli.run("team", "a", "b", "c")
	require.Error(t, err)
	assert.Contains(t, output, "ODD_ROSTER")

	output, err = cli.run("match", "--team-a", "a", "--team-b", "b", "--winner", "C")
	require.Error(t, err)
	assert.Contains(t, output, "INVALID_WINNER")
}

func TestCLI_PersistsAcrossRestart(t *testing.T) {
	playerFile := filepath.Join(t.TempDir(), "players.json")

	ts := startTestServer(t, playerFile)
	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("match", "--team-a", "alice", "--team-b", "bob", "--winner", "B")
	require.NoError(t, err, "output: %s", output)
	ts.shutdown()

	ts = startTestServer(t, playerFile)
	defer ts.shutdown()
	cli.serverURL = ts.addr

	output, err = cli.run("player", "show", "Bob")
	require.NoError(t, err, "output: %s", output)

	var player playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &player))
	assert.Equal(t, "bob", player.Key)
	assert.Equal(t, 1, player.Wins)
	require.NotNil(t, player.Rating.Elo)
	assert.Equal(t, 1016, *player.Rating.Elo)
}
