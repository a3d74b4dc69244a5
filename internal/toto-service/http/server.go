package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/campus-toto/internal/repo"
	"github.com/radieske/campus-toto/internal/rowstore"
	"github.com/radieske/campus-toto/internal/settlement"
	"github.com/radieske/campus-toto/internal/shared/pubsub"
	"github.com/radieske/campus-toto/internal/toto-service/dto"
	"github.com/radieske/campus-toto/internal/toto-service/ws"
	"github.com/radieske/campus-toto/pkg/contracts/events"
	"github.com/radieske/campus-toto/pkg/oddsmath"
)

// Limiter é a janela de apostas. Nil desliga o limite.
type Limiter interface {
	Allow(ctx context.Context) (bool, error)
}

// MatchCache é o espelho advisory da lista pública de partidas. Nil desliga.
type MatchCache interface {
	Get(ctx context.Context, dst any) (bool, error)
	Set(ctx context.Context, v any) error
	Invalidate(ctx context.Context) error
}

// Publisher emite os eventos Kafka do serviço. Nil desliga a publicação.
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
	PublishMatchFinished(ctx context.Context, e events.MatchFinished) error
}

// Broadcaster alimenta o feed WebSocket via Redis Pub/Sub. Nil desliga.
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Server é a API pública do toto: cadastro por nickname, partidas abertas,
// aposta e histórico, mais as rotas de admin atrás do token compartilhado.
type Server struct {
	Log     *zap.Logger
	Users   *repo.Users
	Matches *repo.Matches
	Bets    *repo.Bets
	Teams   *repo.Teams
	Engine  *settlement.Engine

	Limiter Limiter
	Cache   MatchCache
	Publ    Publisher
	Bcast   Broadcaster
	Hub     *ws.Hub

	AdminToken string
	MinBet     int64
	MaxBet     int64

	// Callbacks de métricas, opcionais.
	OnBetAccepted func()
	OnBetRejected func(reason string)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Admin-Token"},
	}))

	r.Get("/v1/users/{nickname}", s.getUser)
	r.Get("/v1/users/{nickname}/bets", s.listUserBets)
	r.Get("/v1/matches", s.listMatches)
	r.Get("/v1/matches/{id}", s.getMatch)
	r.Post("/v1/bets", s.placeBet)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.adminOnly)
		r.Post("/matches", s.createMatch)
		r.Post("/matches/{id}/reprice", s.repriceMatch)
		r.Post("/matches/{id}/finish", s.finishMatch)
		r.Post("/settlements/sweep", s.sweep)
	})

	if s.Hub != nil {
		r.Get("/ws", s.Hub.HandleWS)
	}
	return r
}

// getUser busca o jogador, cadastrando com o saldo inicial no primeiro acesso
// (o fluxo de "login" original: digitou o nickname, está dentro).
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	nickname := chi.URLParam(r, "nickname")
	user, created, err := s.Users.GetOrCreate(r.Context(), nickname)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.UserResponse{
		Nickname: user.Nickname,
		Balance:  user.Balance,
		Created:  created,
	})
}

func (s *Server) listUserBets(w http.ResponseWriter, r *http.Request) {
	bets, err := s.Bets.ListByUser(r.Context(), chi.URLParam(r, "nickname"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	out := make([]dto.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, dto.BetResponse{
			MatchID:   b.MatchID,
			Choice:    string(b.Choice),
			Amount:    b.Amount,
			Timestamp: b.Timestamp,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// listMatches serve as partidas abertas, preferindo o espelho no Redis. O TTL
// do espelho é o cooldown de releitura da planilha.
func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	if s.Cache != nil {
		var cached []dto.MatchResponse
		if ok, _ := s.Cache.Get(r.Context(), &cached); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	open, err := s.Matches.ListWaiting(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	out := make([]dto.MatchResponse, 0, len(open))
	for _, m := range open {
		out = append(out, toMatchResponse(m))
	}
	if s.Cache != nil {
		_ = s.Cache.Set(r.Context(), out)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.Matches.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchResponse(m))
}

// placeBet valida todas as precondições antes de tocar na planilha: falhou
// qualquer uma, nada é debitado nem registrado.
func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.reject(w, http.StatusBadRequest, "bad json", "payload")
		return
	}
	if req.Nickname == "" || req.MatchID == "" {
		s.reject(w, http.StatusBadRequest, "nickname e matchId obrigatórios", "payload")
		return
	}
	choice := oddsmath.Result(req.Choice)
	if !choice.Valid() {
		s.reject(w, http.StatusUnprocessableEntity, "choice inválido", "choice")
		return
	}

	ctx := r.Context()

	if s.Limiter != nil {
		ok, err := s.Limiter.Allow(ctx)
		if err != nil {
			s.Log.Warn("rate window check", zap.Error(err))
		}
		if !ok {
			s.reject(w, http.StatusTooManyRequests, "muitas apostas nesta janela, tente em instantes", "rate_limited")
			return
		}
	}

	user, err := s.Users.Get(ctx, req.Nickname)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	m, err := s.Matches.Get(ctx, req.MatchID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if m.Status != repo.StatusWaiting {
		s.reject(w, http.StatusConflict, repo.ErrMatchNotOpen.Error(), "match_not_open")
		return
	}
	if req.Amount < s.MinBet || req.Amount > s.MaxBet {
		s.reject(w, http.StatusUnprocessableEntity, repo.ErrBetOutOfRange.Error(), "amount")
		return
	}
	if dup, err := s.Bets.Exists(ctx, req.Nickname, req.MatchID); err != nil {
		s.writeErr(w, err)
		return
	} else if dup {
		s.reject(w, http.StatusConflict, repo.ErrDuplicateBet.Error(), "duplicate")
		return
	}
	if req.Amount > user.Balance {
		s.reject(w, http.StatusUnprocessableEntity, repo.ErrInsufficientFunds.Error(), "balance")
		return
	}

	newBalance, err := s.Users.AdjustBalance(ctx, req.Nickname, -req.Amount)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	bet := repo.Bet{
		Nickname:  req.Nickname,
		MatchID:   req.MatchID,
		Choice:    choice,
		Amount:    req.Amount,
		Timestamp: time.Now(),
	}
	if err := s.Bets.Append(ctx, bet); err != nil {
		// estorna o débito; a planilha não tem transação, isto é o melhor
		// esforço possível para não deixar mutação parcial
		if _, rerr := s.Users.AdjustBalance(ctx, req.Nickname, req.Amount); rerr != nil {
			s.Log.Error("estorno após falha de append",
				zap.String("nickname", req.Nickname), zap.Error(rerr))
		}
		s.writeErr(w, err)
		return
	}

	betID := uuid.NewString()
	if s.Publ != nil {
		_ = s.Publ.PublishBetPlaced(ctx, events.BetPlaced{
			BetID:    betID,
			Nickname: req.Nickname,
			MatchID:  req.MatchID,
			Choice:   string(choice),
			Amount:   req.Amount,
			Odds:     m.OddsFor(choice),
		})
	}
	s.broadcast(ctx, pubsub.WSUpdate{MatchID: req.MatchID, Kind: "bet_placed", Payload: map[string]any{
		"nickname": req.Nickname,
		"choice":   string(choice),
		"amount":   req.Amount,
	}})
	if s.OnBetAccepted != nil {
		s.OnBetAccepted()
	}

	writeJSON(w, http.StatusCreated, dto.PlaceBetResponse{BetID: betID, NewBalance: newBalance})
}

func (s *Server) createMatch(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Home == "" || req.Away == "" {
		http.Error(w, "home e away obrigatórios", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	homeElo, err := s.Teams.Rating(ctx, req.Home)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	awayElo, err := s.Teams.Rating(ctx, req.Away)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	m, err := s.Matches.Create(ctx, req.MatchID, req.Home, req.Away, homeElo, awayElo)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.invalidateCache(ctx)
	writeJSON(w, http.StatusCreated, toMatchResponse(m))
}

// repriceMatch recalcula as odds de uma partida WAITING com os ratings atuais
// (o "re-registro" do admin).
func (s *Server) repriceMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	matchID := chi.URLParam(r, "id")

	cur, err := s.Matches.Get(ctx, matchID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	homeElo, err := s.Teams.Rating(ctx, cur.Home)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	awayElo, err := s.Teams.Rating(ctx, cur.Away)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	m, err := s.Matches.Reprice(ctx, matchID, homeElo, awayElo)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.invalidateCache(ctx)
	writeJSON(w, http.StatusOK, toMatchResponse(m))
}

func (s *Server) finishMatch(w http.ResponseWriter, r *http.Request) {
	var req dto.FinishMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	result := oddsmath.Result(req.Result)
	if !result.Valid() {
		http.Error(w, "result inválido", http.StatusUnprocessableEntity)
		return
	}

	ctx := r.Context()
	matchID := chi.URLParam(r, "id")
	stats := oddsmath.MatchStats{
		HomeXG:     req.HomeXG,
		AwayXG:     req.AwayXG,
		HomePasses: req.HomePasses,
		AwayPasses: req.AwayPasses,
		HomePPDA:   req.HomePPDA,
		AwayPPDA:   req.AwayPPDA,
	}
	if err := s.Matches.Finish(ctx, matchID, result, stats); err != nil {
		s.writeErr(w, err)
		return
	}
	s.invalidateCache(ctx)

	if s.Publ != nil {
		if err := s.Publ.PublishMatchFinished(ctx, events.MatchFinished{
			MatchID: matchID,
			Result:  string(result),
		}); err != nil {
			s.Log.Warn("publish match_finished", zap.Error(err))
		}
	}
	s.broadcast(ctx, pubsub.WSUpdate{MatchID: matchID, Kind: "match_finished", Payload: map[string]string{
		"result": string(result),
	}})

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"FINISHED"}`))
}

// sweep roda a liquidação na hora, sem esperar o worker.
func (s *Server) sweep(w http.ResponseWriter, r *http.Request) {
	n, err := s.Engine.Sweep(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SweepResponse{Settled: n})
}

// adminOnly compara o token do header com o segredo compartilhado. É o portão
// de admin herdado do jogo: igualdade de string, nada além disso.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminToken == "" || r.Header.Get("X-Admin-Token") != s.AdminToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) broadcast(ctx context.Context, upd pubsub.WSUpdate) {
	if s.Bcast == nil {
		return
	}
	b, _ := json.Marshal(upd)
	if err := s.Bcast.Publish(ctx, pubsub.ChannelTotoBroadcast, b); err != nil {
		s.Log.Warn("ws broadcast publish", zap.Error(err))
	}
}

func (s *Server) invalidateCache(ctx context.Context) {
	if s.Cache != nil {
		_ = s.Cache.Invalidate(ctx)
	}
}

func (s *Server) reject(w http.ResponseWriter, status int, msg, reason string) {
	if s.OnBetRejected != nil {
		s.OnBetRejected(reason)
	}
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// writeErr mapeia os erros do domínio para status HTTP.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rowstore.ErrRowNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
	case errors.Is(err, repo.ErrInsufficientFunds),
		errors.Is(err, repo.ErrBetOutOfRange),
		errors.Is(err, repo.ErrInvalidChoice),
		errors.Is(err, repo.ErrBadRow):
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, repo.ErrDuplicateBet),
		errors.Is(err, repo.ErrMatchNotOpen),
		errors.Is(err, repo.ErrAlreadySettled),
		errors.Is(err, repo.ErrNotFinished):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, rowstore.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "planilha indisponível, tente de novo"})
	case errors.Is(err, rowstore.ErrBadSchema):
		s.Log.Error("schema da planilha", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "planilha mal configurada, avise o admin"})
	default:
		s.Log.Error("internal", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}

func toMatchResponse(m repo.Match) dto.MatchResponse {
	return dto.MatchResponse{
		MatchID:  m.ID,
		Home:     m.Home,
		Away:     m.Away,
		HomeOdds: m.HomeOdds,
		DrawOdds: m.DrawOdds,
		AwayOdds: m.AwayOdds,
		Status:   m.Status,
		Result:   string(m.Result),
		Settled:  m.Settled,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
