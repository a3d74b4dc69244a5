package repo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/radieske/campus-toto/internal/rowstore"
	"github.com/radieske/campus-toto/pkg/oddsmath"
)

// Campos obrigatórios falham alto; estatísticas em branco valem zero.

func parseInt(row rowstore.Row, col string) (int64, error) {
	v := strings.TrimSpace(row[col])
	if v == "" {
		return 0, fmt.Errorf("%w: campo %q vazio", ErrBadRow, col)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: campo %q = %q", ErrBadRow, col, v)
	}
	return n, nil
}

func parseOdds(row rowstore.Row, col string) (float64, error) {
	v := strings.TrimSpace(row[col])
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 1 {
		return 0, fmt.Errorf("%w: odd %q = %q", ErrBadRow, col, v)
	}
	return f, nil
}

// parseStat tolera campo vazio: a planilha nem sempre tem as estatísticas.
func parseStat(row rowstore.Row, col string) float64 {
	v := strings.TrimSpace(row[col])
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseSettled(row rowstore.Row) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(row[rowstore.ColIsSettled])) {
	case "TRUE":
		return true, nil
	case "FALSE", "":
		return false, nil
	}
	return false, fmt.Errorf("%w: is_settled = %q", ErrBadRow, row[rowstore.ColIsSettled])
}

func parseResult(row rowstore.Row) (oddsmath.Result, error) {
	v := oddsmath.Result(strings.ToUpper(strings.TrimSpace(row[rowstore.ColResult])))
	if v == "" {
		return "", nil
	}
	if !v.Valid() {
		return "", fmt.Errorf("%w: result = %q", ErrBadRow, row[rowstore.ColResult])
	}
	return v, nil
}

func formatInt(n int64) string { return strconv.FormatInt(n, 10) }

func formatOdds(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }
