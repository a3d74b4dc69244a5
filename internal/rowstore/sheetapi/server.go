// Package sheetapi expõe um rowstore.Store pela mesma API HTTP que o
// sheetclient consome. É o lado servidor do contrato da planilha, usado pelo
// cmd/sheet-simulator e pelos testes de integração do cliente.
package sheetapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/campus-toto/internal/rowstore"
	"github.com/radieske/campus-toto/internal/rowstore/sheetclient"
)

type Server struct {
	Store rowstore.Store
}

func New(store rowstore.Store) *Server { return &Server{Store: store} }

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/sheets/{sheet}/header", s.header)
	r.Get("/sheets/{sheet}/rows", s.allRows)
	r.Post("/sheets/{sheet}/rows", s.appendRow)
	r.Get("/sheets/{sheet}/find", s.findRow)
	r.Get("/sheets/{sheet}/rows/{index}/{column}", s.readCell)
	r.Put("/sheets/{sheet}/rows/{index}/{column}", s.updateCell)
	return r
}

func (s *Server) header(w http.ResponseWriter, r *http.Request) {
	cols, err := rowstore.Columns(chi.URLParam(r, "sheet"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sheetclient.HeaderResponse{Columns: cols})
}

func (s *Server) allRows(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Store.GetAllRows(r.Context(), chi.URLParam(r, "sheet"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sheetclient.RowsResponse{Rows: rows})
}

func (s *Server) appendRow(w http.ResponseWriter, r *http.Request) {
	var req sheetclient.AppendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := s.Store.AppendRow(r.Context(), chi.URLParam(r, "sheet"), req.Row); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) findRow(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("column")
	value := r.URL.Query().Get("value")
	if column == "" {
		http.Error(w, "column required", http.StatusBadRequest)
		return
	}
	idx, row, err := s.Store.FindRow(r.Context(), chi.URLParam(r, "sheet"), column, value)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sheetclient.FindResponse{Index: idx, Row: row})
}

func (s *Server) readCell(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "bad index", http.StatusBadRequest)
		return
	}
	v, err := s.Store.ReadCell(r.Context(), chi.URLParam(r, "sheet"), idx, chi.URLParam(r, "column"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sheetclient.CellResponse{Value: v})
}

func (s *Server) updateCell(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "bad index", http.StatusBadRequest)
		return
	}
	var req sheetclient.CellUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := s.Store.UpdateCell(r.Context(), chi.URLParam(r, "sheet"), idx, chi.URLParam(r, "column"), req.Value); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rowstore.ErrRowNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, rowstore.ErrBadSchema):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
