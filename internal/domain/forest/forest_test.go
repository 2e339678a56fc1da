package forest_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/survival/internal/domain/forest"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/mat"
)

// Pclass, SibSp, Parch, Sex_female, Sex_male
func passengerFeatures() (*mat.Dense, []int) {
	X := mat.NewDense(4, 5, []float64{
		3, 1, 0, 0, 1,
		1, 0, 0, 1, 0,
		3, 0, 0, 1, 0,
		2, 1, 1, 0, 1,
	})
	return X, []int{0, 1, 1, 0}
}

func TestTrain(t *testing.T) {
	Convey("Given a small encoded training set", t, func() {
		X, y := passengerFeatures()

		Convey("When training with explicit parameters", func() {
			params := forest.DefaultParams()
			params.TreeCount = 10
			params.MaxDepth = 3
			params.RandomState = 42
			model, err := forest.Train(X, y, params)
			So(err, ShouldBeNil)

			Convey("Then the parameters read back unchanged", func() {
				info := model.Info()
				So(info.TreeCount, ShouldEqual, 10)
				So(info.MaxDepth, ShouldEqual, 3)
				So(info.RandomState, ShouldEqual, int64(42))
				So(info.FeatureCount, ShouldEqual, 5)
				So(model.Params(), ShouldResemble, params)
			})

			Convey("Then no tree is deeper than the limit", func() {
				So(model.Depth(), ShouldBeLessThanOrEqualTo, 3)
			})

			Convey("Then the fitted model predicts every training row", func() {
				preds, err := model.Predict(X)
				So(err, ShouldBeNil)
				So(preds, ShouldHaveLength, len(y))
			})
		})

		Convey("When training twice with different parameter sets", func() {
			p1 := forest.Params{TreeCount: 20, MaxDepth: 2, RandomState: 10, Bootstrap: true}
			p2 := forest.Params{TreeCount: 30, MaxDepth: 5, RandomState: 20, Bootstrap: true}
			m1, err := forest.Train(X, y, p1)
			So(err, ShouldBeNil)
			m2, err := forest.Train(X, y, p2)
			So(err, ShouldBeNil)

			Convey("Then each model keeps its own parameters", func() {
				So(m1.Info().TreeCount, ShouldNotEqual, m2.Info().TreeCount)
				So(m1.Info().MaxDepth, ShouldNotEqual, m2.Info().MaxDepth)
			})
		})

		Convey("When labels and rows disagree", func() {
			_, err := forest.Train(X, []int{0, 1}, forest.DefaultParams())

			Convey("Then it is a shape mismatch", func() {
				So(errors.Is(err, forest.ErrShapeMismatch), ShouldBeTrue)
			})
		})

		Convey("When a label is not binary", func() {
			_, err := forest.Train(X, []int{0, 1, 2, 0}, forest.DefaultParams())

			Convey("Then it is rejected", func() {
				So(errors.Is(err, forest.ErrInvalidLabel), ShouldBeTrue)
			})
		})

		Convey("When a feature is NaN", func() {
			bad := mat.DenseCopyOf(X)
			bad.Set(2, 1, math.NaN())
			_, err := forest.Train(bad, y, forest.DefaultParams())

			Convey("Then it is rejected", func() {
				So(errors.Is(err, forest.ErrInvalidFeature), ShouldBeTrue)
			})
		})

		Convey("When the tree count is zero", func() {
			_, err := forest.Train(X, y, forest.Params{TreeCount: 0})

			Convey("Then the parameters are invalid", func() {
				So(errors.Is(err, forest.ErrInvalidParams), ShouldBeTrue)
			})
		})
	})
}

func TestPredict(t *testing.T) {
	Convey("Given a forest trained on two numeric features", t, func() {
		X := mat.NewDense(4, 2, []float64{1, 5, 2, 6, 3, 7, 4, 8})
		y := []int{0, 1, 0, 1}
		model, err := forest.Train(X, y, forest.Params{TreeCount: 10, RandomState: 42, Bootstrap: true})
		So(err, ShouldBeNil)

		Convey("When predicting unseen rows", func() {
			test := mat.NewDense(4, 2, []float64{5, 9, 6, 10, 7, 11, 8, 12})
			preds, err := model.Predict(test)
			So(err, ShouldBeNil)

			Convey("Then there is one binary prediction per row", func() {
				So(preds, ShouldHaveLength, 4)
				for _, p := range preds {
					So(p, ShouldBeIn, []int{0, 1})
				}
			})

			Convey("Then probabilities stay in [0,1]", func() {
				proba, err := model.PredictProba(test)
				So(err, ShouldBeNil)
				for _, p := range proba {
					So(p, ShouldBeBetweenOrEqual, 0.0, 1.0)
				}
			})
		})

		Convey("When the input width differs", func() {
			_, err := model.Predict(mat.NewDense(1, 3, []float64{1, 2, 3}))

			Convey("Then it is a shape mismatch", func() {
				So(errors.Is(err, forest.ErrShapeMismatch), ShouldBeTrue)
			})
		})
	})

	Convey("Given a separable training set", t, func() {
		X := mat.NewDense(6, 1, []float64{1, 2, 3, 10, 11, 12})
		y := []int{0, 0, 0, 1, 1, 1}
		params := forest.Params{TreeCount: 25, MaxDepth: 3, RandomState: 7, Bootstrap: true}

		Convey("Then the forest learns the boundary", func() {
			model, err := forest.Train(X, y, params)
			So(err, ShouldBeNil)
			preds, err := model.Predict(mat.NewDense(2, 1, []float64{0, 20}))
			So(err, ShouldBeNil)
			So(preds, ShouldResemble, []int{0, 1})
		})

		Convey("Then the same seed gives the same probabilities", func() {
			m1, err := forest.Train(X, y, params)
			So(err, ShouldBeNil)
			m2, err := forest.Train(X, y, params)
			So(err, ShouldBeNil)
			probe := mat.NewDense(3, 1, []float64{4, 6.5, 9})
			p1, _ := m1.PredictProba(probe)
			p2, _ := m2.PredictProba(probe)
			So(p1, ShouldResemble, p2)
		})
	})

	Convey("Given a single-class training set", t, func() {
		X := mat.NewDense(3, 1, []float64{1, 2, 3})
		model, err := forest.Train(X, []int{1, 1, 1}, forest.Params{TreeCount: 3, Bootstrap: true})
		So(err, ShouldBeNil)

		Convey("Then every prediction is that class", func() {
			preds, err := model.Predict(mat.NewDense(2, 1, []float64{-5, 50}))
			So(err, ShouldBeNil)
			So(preds, ShouldResemble, []int{1, 1})
		})
	})
}
