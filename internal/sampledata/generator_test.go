package sampledata_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/survival/internal/domain/table"
	"github.com/okian/survival/internal/sampledata"
	. "github.com/smartystreets/goconvey/convey"
)

type recordingWriter struct {
	paths []string
	fail  string
}

func (w *recordingWriter) WriteTable(destination string, _ *table.Table) error {
	if destination == w.fail {
		return errors.New("disk full")
	}
	w.paths = append(w.paths, destination)
	return nil
}

func TestGenerate(t *testing.T) {
	Convey("Given a small generator config", t, func() {
		cfg := sampledata.Config{TrainRows: 40, TestRows: 12, Seed: 7}

		Convey("When manifests are generated", func() {
			train, test, err := sampledata.Generate(context.Background(), cfg)
			So(err, ShouldBeNil)

			Convey("Then row counts and layouts match", func() {
				So(train.Len(), ShouldEqual, 40)
				So(test.Len(), ShouldEqual, 12)
				So(train.Columns(), ShouldResemble, sampledata.TrainSchema().Names())
				So(test.Columns(), ShouldResemble, sampledata.TestSchema().Names())
				So(test.Has("Survived"), ShouldBeFalse)
			})

			Convey("Then test ids continue after the training ids", func() {
				ids, _ := test.Column("PassengerId")
				So(ids[0].Num, ShouldEqual, 41.0)
				So(ids[11].Num, ShouldEqual, 52.0)
			})

			Convey("Then both sexes appear in both tables", func() {
				for _, tbl := range []*table.Table{train, test} {
					sexes, _ := tbl.Column("Sex")
					So(sexes[0].Str, ShouldEqual, "male")
					So(sexes[1].Str, ShouldEqual, "female")
				}
			})

			Convey("Then labels are binary and model features are never missing", func() {
				labels, _ := train.Column("Survived")
				for _, l := range labels {
					So(l.Num, ShouldBeIn, []float64{0, 1})
				}
				for _, col := range []string{"Pclass", "Sex", "SibSp", "Parch"} {
					vals, _ := train.Column(col)
					for _, v := range vals {
						So(v.IsNull(), ShouldBeFalse)
					}
				}
			})
		})

		Convey("When generated twice with the same seed", func() {
			a, _, err := sampledata.Generate(context.Background(), cfg)
			So(err, ShouldBeNil)
			b, _, err := sampledata.Generate(context.Background(), cfg)
			So(err, ShouldBeNil)

			Convey("Then the tables are identical", func() {
				for i := 0; i < a.Len(); i++ {
					So(a.Row(i), ShouldResemble, b.Row(i))
				}
			})
		})

		Convey("When the training set is too small", func() {
			_, _, err := sampledata.Generate(context.Background(), sampledata.Config{TrainRows: 1, TestRows: 1})
			So(errors.Is(err, sampledata.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, _, err := sampledata.Generate(ctx, cfg)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestWriteFiles(t *testing.T) {
	Convey("Given a writer", t, func() {
		w := &recordingWriter{}
		cfg := sampledata.DefaultConfig()

		Convey("When both manifests are written", func() {
			err := sampledata.WriteFiles(context.Background(), w, cfg, "train.csv", "test.csv")

			Convey("Then training is written before test", func() {
				So(err, ShouldBeNil)
				So(w.paths, ShouldResemble, []string{"train.csv", "test.csv"})
			})
		})

		Convey("When the test write fails", func() {
			w.fail = "test.csv"
			err := sampledata.WriteFiles(context.Background(), w, cfg, "train.csv", "test.csv")

			Convey("Then the failing manifest is named", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "write test manifest")
			})
		})
	})
}
