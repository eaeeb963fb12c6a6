// Package recommend scores food categories for a demographic query against a
// precomputed preference table.
//
// The table maps composite keys of the form "{age}_{gender}_{day}_{hour}" to
// the categories people in that cell prefer, each with a score. A query picks
// an age code, a gender code and a set of hours; every weekday (1..7) is
// combined with every target hour, the scores found under matching keys are
// summed per category, and the highest totals win.
//
// The table is loaded once through a Provider and never mutated afterwards,
// so a single instance is shared by every request.
package recommend
