// Package stats computes exploratory statistics over a Record Table. The
// results are reported only and never feed the model.
package stats

import (
	"errors"
	"fmt"

	"github.com/okian/survival/internal/domain/table"
)

// Sentinel kinds for stats errors.
var (
	ErrEmptyGroup   = errors.New("empty group")
	ErrInvalidValue = errors.New("invalid value")
)

// Rate names produced by SurvivalRates.
const (
	WomenSurvivalRate = "women_survival_rate"
	MenSurvivalRate   = "men_survival_rate"
)

// Group maps one value of the grouping column to a named rate.
type Group struct {
	Name  string
	Value string
}

// Rates maps a rate name to a ratio in [0,1].
type Rates map[string]float64

// GroupRates partitions the rows of t by groupColumn and returns the mean of
// labelColumn within each group. Rows matching no group are ignored. An empty
// group is an error, as the ratio is undefined.
func GroupRates(t *table.Table, groupColumn, labelColumn string, groups []Group) (Rates, error) {
	keys, err := t.Column(groupColumn)
	if err != nil {
		return nil, err
	}
	labels, err := t.Column(labelColumn)
	if err != nil {
		return nil, err
	}

	sums := make([]float64, len(groups))
	counts := make([]int, len(groups))
	for i, k := range keys {
		if k.IsNull() {
			continue
		}
		for g, grp := range groups {
			if k.Text() != grp.Value {
				continue
			}
			l := labels[i]
			if l.IsNull() || l.Kind != table.KindNumeric {
				return nil, fmt.Errorf("%w: column %q row %d", ErrInvalidValue, labelColumn, i+1)
			}
			sums[g] += l.Num
			counts[g]++
		}
	}

	out := make(Rates, len(groups))
	for g, grp := range groups {
		if counts[g] == 0 {
			return nil, fmt.Errorf("%w: no rows with %s == %q", ErrEmptyGroup, groupColumn, grp.Value)
		}
		out[grp.Name] = sums[g] / float64(counts[g])
	}
	return out, nil
}

// SurvivalRates returns the survival rate of women and men in t.
func SurvivalRates(t *table.Table) (Rates, error) {
	return GroupRates(t, "Sex", "Survived", []Group{
		{Name: WomenSurvivalRate, Value: "female"},
		{Name: MenSurvivalRate, Value: "male"},
	})
}
