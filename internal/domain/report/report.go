// Package report turns model output into the submission table and the
// human-readable prediction summary.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/survival/internal/domain/table"
	"gonum.org/v1/gonum/mat"
)

// Sentinel kinds for report errors.
var (
	ErrLengthMismatch    = errors.New("predictions do not match test rows")
	ErrNoPredictions     = errors.New("no predictions")
	ErrInvalidPrediction = errors.New("prediction must be 0 or 1")
)

// Predictor is the capability the reporter needs from a trained model.
type Predictor interface {
	Predict(X mat.Matrix) ([]int, error)
}

// TableWriter persists a table at a destination.
type TableWriter interface {
	WriteTable(destination string, t *table.Table) error
}

// GeneratePredictions applies p to every row of X.
func GeneratePredictions(p Predictor, X mat.Matrix) ([]int, error) {
	preds, err := p.Predict(X)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if n, _ := X.Dims(); len(preds) != n {
		return nil, fmt.Errorf("%w: %d predictions for %d rows", ErrLengthMismatch, len(preds), n)
	}
	for i, v := range preds {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("%w: row %d is %d", ErrInvalidPrediction, i+1, v)
		}
	}
	return preds, nil
}

// BuildSubmission builds the two-column output table: the identifier column
// copied from test and the predicted label, in test row order.
func BuildSubmission(test *table.Table, idColumn, labelColumn string, predictions []int) (*table.Table, error) {
	ids, err := test.Column(idColumn)
	if err != nil {
		return nil, err
	}
	if len(ids) != len(predictions) {
		return nil, fmt.Errorf("%w: %d predictions for %d rows", ErrLengthMismatch, len(predictions), len(ids))
	}
	idKind, _ := test.Kind(idColumn)
	out, err := table.New(table.Schema{
		{Name: idColumn, Kind: idKind},
		{Name: labelColumn, Kind: table.KindNumeric},
	})
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		if err := out.Append(id, table.Number(float64(predictions[i]))); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CreateSubmission builds the output table, writes it to destination and
// prints a confirmation line to out.
func CreateSubmission(w TableWriter, out io.Writer, test *table.Table, idColumn, labelColumn string, predictions []int, destination string) error {
	sub, err := BuildSubmission(test, idColumn, labelColumn, predictions)
	if err != nil {
		return err
	}
	if err := w.WriteTable(destination, sub); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Submission file saved successfully to: %s\n", destination)
	return err
}

// Summary tallies binary predictions.
type Summary struct {
	Total    int
	Survived int
	Died     int
}

// SurvivedPct returns the share predicted positive, in percent.
func (s Summary) SurvivedPct() float64 { return float64(s.Survived) / float64(s.Total) * 100 }

// DiedPct returns the share predicted negative, in percent.
func (s Summary) DiedPct() float64 { return float64(s.Died) / float64(s.Total) * 100 }

// Summarize counts predictions per class.
func Summarize(predictions []int) (Summary, error) {
	if len(predictions) == 0 {
		return Summary{}, ErrNoPredictions
	}
	s := Summary{Total: len(predictions)}
	for _, p := range predictions {
		s.Survived += p
	}
	s.Died = s.Total - s.Survived
	return s, nil
}

// PrintSummary writes the prediction tally to w.
func PrintSummary(w io.Writer, predictions []int) error {
	s, err := Summarize(predictions)
	if err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString("\n=== Prediction Summary ===\n")
	fmt.Fprintf(&b, "Total passengers: %d\n", s.Total)
	fmt.Fprintf(&b, "Predicted to survive: %d (%.1f%%)\n", s.Survived, s.SurvivedPct())
	fmt.Fprintf(&b, "Predicted to die: %d (%.1f%%)\n", s.Died, s.DiedPct())
	b.WriteString(strings.Repeat("=", 26) + "\n")
	_, err = io.WriteString(w, b.String())
	return err
}
