package encoding

import "fmt"

// Drift lists the indicator columns that Reconcile had to add or drop.
type Drift struct {
	Added   []string // zero-filled: category seen in training only
	Dropped []string // discarded: category never seen in training
}

// Empty reports whether reconciliation changed nothing.
func (d Drift) Empty() bool { return len(d.Added) == 0 && len(d.Dropped) == 0 }

// Reconcile lays m out on the columns of reference, which fixes the feature
// set at training time. Indicator columns missing from m are zero-filled and
// indicator columns unknown to reference are dropped. A missing numeric
// column cannot be recovered and yields ErrColumnMismatch.
func Reconcile(m, reference *Matrix) (*Matrix, Drift, error) {
	var drift Drift
	target := reference.Layout()
	src := make([]int, len(target))
	for k, spec := range target {
		j := m.index(spec.Name)
		src[k] = j
		if j >= 0 {
			continue
		}
		if !spec.Indicator {
			return nil, drift, fmt.Errorf("%w: numeric column %q is absent", ErrColumnMismatch, spec.Name)
		}
		drift.Added = append(drift.Added, spec.Name)
	}
	for _, spec := range m.layout {
		if reference.index(spec.Name) >= 0 {
			continue
		}
		if !spec.Indicator {
			return nil, drift, fmt.Errorf("%w: numeric column %q is unknown to the model", ErrColumnMismatch, spec.Name)
		}
		drift.Dropped = append(drift.Dropped, spec.Name)
	}
	if drift.Empty() && len(m.layout) == len(target) {
		same := true
		for k := range src {
			if src[k] != k {
				same = false
				break
			}
		}
		if same {
			return m, drift, nil
		}
	}

	rows, cols := m.rows, len(target)
	data := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for k, j := range src {
			if j >= 0 {
				data[i*cols+k] = m.At(i, j)
			}
		}
	}
	return newMatrix(rows, target, data), drift, nil
}
