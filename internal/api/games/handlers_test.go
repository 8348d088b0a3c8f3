package games

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crtorres/canasta/internal/db"
	"github.com/crtorres/canasta/internal/models"
	"github.com/crtorres/canasta/internal/testutil"
)

type fixture struct {
	db     *db.DB
	gameID string
	homeP1 string
	awayP1 string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	InitHandlers(database)

	ctx := context.Background()
	home, err := database.Queries.CreateTeam(ctx, "Aros", "")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	away, err := database.Queries.CreateTeam(ctx, "Bravos", "")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	hp, err := database.Queries.CreatePlayer(ctx, home.ID, "Seven", 7, "")
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	ap, err := database.Queries.CreatePlayer(ctx, away.ID, "Nine", 9, "")
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	gameID, err := database.CreateGame(ctx, home.ID, away.ID)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return &fixture{db: database, gameID: gameID, homeP1: hp.ID, awayP1: ap.ID}
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target, gameID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if gameID != "" {
		req.SetPathValue("id", gameID)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleGameDetailReturnsFullGame(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(t, HandleGameDetail, http.MethodGet, "/api/v1/games/"+f.gameID, f.gameID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var game models.Game
	if err := json.Unmarshal(rec.Body.Bytes(), &game); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if game.ID != f.gameID {
		t.Fatalf("game id = %s, want %s", game.ID, f.gameID)
	}
	if game.Status != models.StatusScheduled || game.CurrentPeriod != 1 {
		t.Fatalf("fresh game metadata = %s P%d", game.Status, game.CurrentPeriod)
	}
	if len(game.HomeTeam.Players) != 1 || len(game.AwayTeam.Players) != 1 {
		t.Fatal("rosters incomplete")
	}
	// Every player carries four zero-initialized periods.
	for _, ps := range game.HomeTeam.Players[0].StatsByPeriod {
		if ps != (models.PeriodStats{}) {
			t.Fatalf("fresh stats not zeroed: %+v", ps)
		}
	}
}

func TestHandleGameDetailNotFound(t *testing.T) {
	newFixture(t)
	rec := doJSON(t, HandleGameDetail, http.MethodGet, "/api/v1/games/ghost", "ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleStatsBatchAppliesDeltas(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(t, HandleStatsBatch, http.MethodPost, "/api/v1/games/"+f.gameID+"/stats/batch", f.gameID, map[string]any{
		"deltas": []models.StatDelta{
			models.NewShotDelta(f.homeP1, 2, 2, true),
			models.NewShotDelta(f.homeP1, 2, 3, false),
			models.NewEventDelta(f.awayP1, 1, models.EventRebound),
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp batchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Applied != 3 {
		t.Fatalf("resp = %+v", resp)
	}

	game, err := f.db.GetGame(context.Background(), f.gameID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	p, _, _ := game.FindPlayer(f.homeP1)
	if p.StatsByPeriod[1].Points2.Made != 1 || p.StatsByPeriod[1].Points3.Attempted != 1 {
		t.Fatalf("stats = %+v", p.StatsByPeriod[1])
	}
}

func TestHandleStatsBatchAllOrNothing(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(t, HandleStatsBatch, http.MethodPost, "/api/v1/games/"+f.gameID+"/stats/batch", f.gameID, map[string]any{
		"deltas": []models.StatDelta{
			models.NewShotDelta(f.homeP1, 1, 2, true),
			models.NewEventDelta("ghost", 1, models.EventFoul),
		},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	game, err := f.db.GetGame(context.Background(), f.gameID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	p, _, _ := game.FindPlayer(f.homeP1)
	if p.StatsByPeriod[0].Points2.Made != 0 {
		t.Fatal("partial batch landed")
	}
}

func TestHandleStatsBatchEmptyIsNoOp(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(t, HandleStatsBatch, http.MethodPost, "/api/v1/games/"+f.gameID+"/stats/batch", f.gameID, map[string]any{
		"deltas": []models.StatDelta{},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleStatusUpdateLifecycle(t *testing.T) {
	f := newFixture(t)

	for _, step := range []struct {
		to   models.GameStatus
		code int
	}{
		{models.StatusLive, http.StatusOK},
		{models.StatusScheduled, http.StatusOK}, // pausable
		{models.StatusFinished, http.StatusOK},
		{models.StatusLive, http.StatusConflict}, // finished is terminal
	} {
		rec := doJSON(t, HandleStatusUpdate, http.MethodPut, "/api/v1/games/"+f.gameID+"/status", f.gameID, map[string]any{"status": step.to})
		if rec.Code != step.code {
			t.Fatalf("transition to %s: status = %d, want %d", step.to, rec.Code, step.code)
		}
	}
}

func TestHandlePeriodUpdateValidatesRange(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(t, HandlePeriodUpdate, http.MethodPut, "/api/v1/games/"+f.gameID+"/period", f.gameID, map[string]any{"period": 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	rec = doJSON(t, HandlePeriodUpdate, http.MethodPut, "/api/v1/games/"+f.gameID+"/period", f.gameID, map[string]any{"period": 5})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleScoreboardComputesScores(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(t, HandleStatsBatch, http.MethodPost, "/api/v1/games/"+f.gameID+"/stats/batch", f.gameID, map[string]any{
		"deltas": []models.StatDelta{
			models.NewShotDelta(f.homeP1, 1, 3, true),
			models.NewShotDelta(f.awayP1, 2, 2, true),
			models.NewShotDelta(f.awayP1, 2, 2, true),
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("batch status = %d", rec.Code)
	}

	rec = doJSON(t, HandleScoreboard, http.MethodGet, "/api/v1/games/"+f.gameID+"/scoreboard", f.gameID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var board models.Scoreboard
	if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if board.HomeTeam.Score != 3 || board.AwayTeam.Score != 4 {
		t.Fatalf("scores = %d-%d, want 3-4", board.HomeTeam.Score, board.AwayTeam.Score)
	}
}

func TestHandleGameCreateRejectsSelfPlay(t *testing.T) {
	f := newFixture(t)
	_ = f

	rec := doJSON(t, HandleGameCreate, http.MethodPost, "/api/v1/games", "", map[string]any{
		"homeTeamId": "t1",
		"awayTeamId": "t1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleGamesListFiltersByStatus(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(t, HandleGamesList, http.MethodGet, "/api/v1/games?status=finished", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Games []models.Game `json:"games"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Games) != 0 {
		t.Fatalf("finished games = %d, want 0", len(resp.Games))
	}

	rec = doJSON(t, HandleGamesList, http.MethodGet, fmt.Sprintf("/api/v1/games?status=%s", models.StatusScheduled), "", nil)
	var all struct {
		Games []models.Game `json:"games"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all.Games) != 1 || all.Games[0].ID != f.gameID {
		t.Fatalf("scheduled games = %+v", all.Games)
	}
}
