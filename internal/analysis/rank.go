package analysis

import (
	"sort"

	"github.com/cory-johannsen/expcalc/internal/game/encounter"
	"github.com/cory-johannsen/expcalc/internal/game/location"
)

// Ranked is one row of an efficiency ranking.
type Ranked struct {
	Location *location.Location
	MethodResult
}

// Rank returns the topN locations offering method m, highest efficiency first.
// Ties are broken by expected EXP, then by location order.
//
// Postcondition: len(result) <= topN; topN <= 0 returns every match.
func Rank(results []LocationResult, m encounter.Method, topN int) []Ranked {
	var rows []Ranked
	for _, lr := range results {
		if mr, ok := lr.Method(m); ok {
			rows = append(rows, Ranked{Location: lr.Location, MethodResult: mr})
		}
	}
	return top(rows, topN)
}

// RankAll ranks every method of every location together.
//
// Postcondition: len(result) <= topN; topN <= 0 returns every row.
func RankAll(results []LocationResult, topN int) []Ranked {
	var rows []Ranked
	for _, lr := range results {
		for _, mr := range lr.Methods {
			rows = append(rows, Ranked{Location: lr.Location, MethodResult: mr})
		}
	}
	return top(rows, topN)
}

func top(rows []Ranked, n int) []Ranked {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Efficiency != rows[j].Efficiency {
			return rows[i].Efficiency > rows[j].Efficiency
		}
		if rows[i].Expectation.ExpectedExp != rows[j].Expectation.ExpectedExp {
			return rows[i].Expectation.ExpectedExp > rows[j].Expectation.ExpectedExp
		}
		return lessLocation(rows[i].Location, rows[j].Location)
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
