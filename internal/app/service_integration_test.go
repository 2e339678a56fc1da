package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/survival/internal/adapters/csvfile"
	service "github.com/okian/survival/internal/app"
	"github.com/okian/survival/internal/config"
	"github.com/okian/survival/internal/sampledata"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given generated passenger files on disk", t, func() {
		dir := t.TempDir()
		store := csvfile.New()
		trainPath := filepath.Join(dir, "titanic", "train.csv")
		testPath := filepath.Join(dir, "titanic", "test.csv")
		err := sampledata.WriteFiles(context.Background(), store, sampledata.DefaultConfig(), trainPath, testPath)
		So(err, ShouldBeNil)

		outPath := filepath.Join(dir, "output", "submission.csv")
		configure := func(c *config.Config) {
			c.TrainPath = trainPath
			c.TestPath = testPath
			c.OutputPath = outPath
			c.TreeCount = 25
		}

		Convey("When the pipeline runs end-to-end", func() {
			var out bytes.Buffer
			res, err := newService(store, &out, configure).Run(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the submission has a header and one line per test passenger", func() {
				raw, err := os.ReadFile(outPath)
				So(err, ShouldBeNil)
				lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
				So(lines[0], ShouldEqual, "PassengerId,Survived")
				So(lines, ShouldHaveLength, sampledata.DefaultTestRows+1)
				So(lines[1], ShouldStartWith, "892,")
			})

			Convey("Then the report counts every test passenger", func() {
				So(res.TrainRows, ShouldEqual, sampledata.DefaultTrainRows)
				So(out.String(), ShouldContainSubstring, "Total passengers: 418")
				So(res.Summary.Survived+res.Summary.Died, ShouldEqual, 418)
			})
		})

		Convey("When the pipeline runs twice", func() {
			_, err := newService(store, io.Discard, configure).Run(context.Background())
			So(err, ShouldBeNil)
			first, err := os.ReadFile(outPath)
			So(err, ShouldBeNil)

			_, err = newService(store, io.Discard, configure).Run(context.Background())
			So(err, ShouldBeNil)
			second, err := os.ReadFile(outPath)
			So(err, ShouldBeNil)

			Convey("Then the output files are byte-identical", func() {
				So(bytes.Equal(first, second), ShouldBeTrue)
			})
		})

		Convey("When the training file is missing", func() {
			_, err := newService(store, io.Discard, func(c *config.Config) {
				configure(c)
				c.TrainPath = filepath.Join(dir, "nope.csv")
			}).Run(context.Background())

			Convey("Then the run fails with DataNotFound and writes nothing", func() {
				So(errors.Is(err, csvfile.ErrDataNotFound), ShouldBeTrue)
				_, statErr := os.Stat(outPath)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})

		Convey("When the test file is missing", func() {
			_, err := newService(store, io.Discard, func(c *config.Config) {
				configure(c)
				c.TestPath = filepath.Join(dir, "nope.csv")
			}).Run(context.Background())

			Convey("Then the run fails with DataNotFound", func() {
				So(errors.Is(err, csvfile.ErrDataNotFound), ShouldBeTrue)
				var nf *csvfile.NotFoundError
				So(errors.As(err, &nf), ShouldBeTrue)
				So(nf.Path, ShouldEqual, filepath.Join(dir, "nope.csv"))
			})
		})

		Convey("When a feature column is absent from the data", func() {
			_, err := newService(store, io.Discard, func(c *config.Config) {
				configure(c)
				c.Features = []string{"Pclass", "Deck"}
			}).Run(context.Background())

			Convey("Then preprocessing fails naming the column", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldStartWith, service.StagePreprocess+":")
				So(err.Error(), ShouldContainSubstring, "Deck")
			})
		})
	})
}
