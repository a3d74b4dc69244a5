// Package postgres implementa o contrato rowstore sobre Postgres, para rodar
// o jogo localmente sem a planilha hospedada (SHEET_BACKEND=postgres). Cada
// worksheet vira uma tabela sheet_<nome> com as colunas do Schema em TEXT,
// mais um serial id que preserva a ordem de append.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/radieske/campus-toto/internal/rowstore"
)

type Store struct{ DB *sql.DB }

func New(db *sql.DB) *Store { return &Store{DB: db} }

func tableFor(sheet string) string { return "sheet_" + strings.ToLower(sheet) }

// column confere que o nome vem do Schema antes de entrar na query.
func column(sheet, col string) (string, error) {
	cols, err := rowstore.Columns(sheet)
	if err != nil {
		return "", err
	}
	for _, c := range cols {
		if c == col {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: coluna %q não existe na worksheet %q", rowstore.ErrBadSchema, col, sheet)
}

// Validate cria as tabelas que faltam e confere as colunas esperadas.
func (s *Store) Validate(ctx context.Context) error {
	for sheet := range rowstore.Schema {
		cols, _ := rowstore.Columns(sheet)
		defs := make([]string, 0, len(cols)+1)
		defs = append(defs, "id BIGSERIAL PRIMARY KEY")
		for _, c := range cols {
			defs = append(defs, c+" TEXT NOT NULL DEFAULT ''")
		}
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableFor(sheet), strings.Join(defs, ", "))
		if _, err := s.DB.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create %s: %w", tableFor(sheet), err)
		}

		// SELECT vazio detecta coluna removida à mão
		probe := fmt.Sprintf("SELECT %s FROM %s LIMIT 0", strings.Join(cols, ", "), tableFor(sheet))
		if _, err := s.DB.ExecContext(ctx, probe); err != nil {
			return fmt.Errorf("%w: tabela %s sem as colunas do Schema: %v",
				rowstore.ErrBadSchema, tableFor(sheet), err)
		}
	}
	return nil
}

func (s *Store) GetAllRows(ctx context.Context, sheet string) ([]rowstore.Row, error) {
	cols, err := rowstore.Columns(sheet)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", strings.Join(cols, ", "), tableFor(sheet))
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rowstore.ErrUnavailable, err)
	}
	defer rows.Close()

	var out []rowstore.Row
	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := make(rowstore.Row, len(cols))
		for i, c := range cols {
			r[c] = vals[i].String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) FindRow(ctx context.Context, sheet, col, value string) (int, rowstore.Row, error) {
	all, err := s.GetAllRows(ctx, sheet)
	if err != nil {
		return 0, nil, err
	}
	for i, r := range all {
		if r[col] == value {
			return i, r, nil
		}
	}
	return 0, nil, rowstore.ErrRowNotFound
}

func (s *Store) ReadCell(ctx context.Context, sheet string, index int, col string) (string, error) {
	c, err := column(sheet, col)
	if err != nil {
		return "", err
	}
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY id OFFSET $1 LIMIT 1", c, tableFor(sheet))
	var v string
	err = s.DB.QueryRowContext(ctx, q, index).Scan(&v)
	if err == sql.ErrNoRows {
		return "", rowstore.ErrRowNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", rowstore.ErrUnavailable, err)
	}
	return v, nil
}

func (s *Store) UpdateCell(ctx context.Context, sheet string, index int, col, value string) error {
	c, err := column(sheet, col)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(
		"UPDATE %s SET %s=$1 WHERE id = (SELECT id FROM %s ORDER BY id OFFSET $2 LIMIT 1)",
		tableFor(sheet), c, tableFor(sheet),
	)
	res, err := s.DB.ExecContext(ctx, q, value, index)
	if err != nil {
		return fmt.Errorf("%w: %v", rowstore.ErrUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rowstore.ErrRowNotFound
	}
	return nil
}

func (s *Store) AppendRow(ctx context.Context, sheet string, row rowstore.Row) error {
	cols, err := rowstore.Columns(sheet)
	if err != nil {
		return err
	}
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[c]
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableFor(sheet), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := s.DB.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("%w: %v", rowstore.ErrUnavailable, err)
	}
	return nil
}
