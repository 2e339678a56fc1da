// Package sampledata generates synthetic passenger manifests with the column
// layout of the Kaggle Titanic files. Output is a pure function of Config.
package sampledata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/survival/internal/domain/table"
)

// ErrInvalidConfig reports unusable generator settings.
var ErrInvalidConfig = errors.New("invalid sample data config")

// Default sizes match the Kaggle split.
const (
	DefaultTrainRows = 891
	DefaultTestRows  = 418
	DefaultSeed      = 1
)

// Generation parameters.
const (
	missingAgeRatio      = 0.2
	missingEmbarkedRatio = 0.005
	maleRatio            = 0.65
	maxAge               = 75
	fareDecimals         = 10000
)

// ticketNamespace derives stable ticket identifiers from passenger ids.
var ticketNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8") //nolint:gochecknoglobals // fixed namespace

// Name, port and fare pools.
var ( //nolint:gochecknoglobals // read-only pools
	surnames = []string{
		"Braund", "Cumings", "Heikkinen", "Futrelle", "Allen", "Moran", "McCarthy",
		"Palsson", "Johnson", "Nasser", "Sandstrom", "Bonnell", "Saundercock",
		"Andersson", "Vestrom", "Hewlett", "Rice", "Williams", "Vander Planke", "Masselmani",
	}
	maleNames   = []string{"Owen", "William", "James", "Timothy", "Gosta", "Charles", "Ernst", "Eugene", "Harald", "Patrick"}
	femaleNames = []string{"Laina", "Lily", "Marguerite", "Elisabeth", "Anna", "Hulda", "Fatima", "Agnes", "Julia", "Mary"}
	ports       = []string{"S", "S", "S", "S", "S", "S", "C", "C", "Q"}
	baseFare    = map[int]float64{1: 60, 2: 20, 3: 8}
)

// Config controls the generated manifests.
type Config struct {
	TrainRows int
	TestRows  int
	Seed      int64
}

// DefaultConfig returns the Kaggle-sized configuration.
func DefaultConfig() Config {
	return Config{TrainRows: DefaultTrainRows, TestRows: DefaultTestRows, Seed: DefaultSeed}
}

// Validate checks the row counts. Training needs at least two rows so both
// sexes are present.
func (c Config) Validate() error {
	if c.TrainRows < 2 {
		return fmt.Errorf("%w: train rows %d < 2", ErrInvalidConfig, c.TrainRows)
	}
	if c.TestRows < 1 {
		return fmt.Errorf("%w: test rows %d < 1", ErrInvalidConfig, c.TestRows)
	}
	return nil
}

// TrainSchema is the column layout of the labelled file.
func TrainSchema() table.Schema {
	return table.Schema{
		{Name: "PassengerId", Kind: table.KindNumeric},
		{Name: "Survived", Kind: table.KindNumeric},
		{Name: "Pclass", Kind: table.KindNumeric},
		{Name: "Name", Kind: table.KindString},
		{Name: "Sex", Kind: table.KindString},
		{Name: "Age", Kind: table.KindNumeric},
		{Name: "SibSp", Kind: table.KindNumeric},
		{Name: "Parch", Kind: table.KindNumeric},
		{Name: "Ticket", Kind: table.KindString},
		{Name: "Fare", Kind: table.KindNumeric},
		{Name: "Embarked", Kind: table.KindString},
	}
}

// TestSchema is TrainSchema without the Survived column.
func TestSchema() table.Schema {
	s := TrainSchema()
	return append(s[:1:1], s[2:]...)
}

type passenger struct {
	id       int
	survived int
	pclass   int
	name     string
	sex      string
	age      float64
	hasAge   bool
	sibsp    int
	parch    int
	ticket   string
	fare     float64
	embarked string
}

// Generate builds the training and test tables. Test ids continue after the
// training ids. The first two rows of each table are one male and one female
// passenger, so every sex category appears in both.
func Generate(ctx context.Context, cfg Config) (train, test *table.Table, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	rnd := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible fixtures

	train, err = table.New(TrainSchema())
	if err != nil {
		return nil, nil, err
	}
	test, err = table.New(TestSchema())
	if err != nil {
		return nil, nil, err
	}

	for i := 0; i < cfg.TrainRows+cfg.TestRows; i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("generate passengers: %w", err)
		}
		p := newPassenger(rnd, i+1, forcedSex(i, cfg.TrainRows))
		if i < cfg.TrainRows {
			err = train.Append(p.trainRow()...)
		} else {
			err = test.Append(p.testRow()...)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return train, test, nil
}

func forcedSex(i, trainRows int) string {
	local := i
	if i >= trainRows {
		local = i - trainRows
	}
	switch local {
	case 0:
		return "male"
	case 1:
		return "female"
	}
	return ""
}

func newPassenger(rnd *rand.Rand, id int, sex string) passenger {
	p := passenger{id: id, sex: sex}
	if p.sex == "" {
		p.sex = "female"
		if rnd.Float64() < maleRatio {
			p.sex = "male"
		}
	}
	switch r := rnd.Float64(); {
	case r < 0.24:
		p.pclass = 1
	case r < 0.45:
		p.pclass = 2
	default:
		p.pclass = 3
	}
	p.sibsp = weighted(rnd, []float64{0.68, 0.23, 0.05, 0.04})
	p.parch = weighted(rnd, []float64{0.76, 0.13, 0.09, 0.02})

	p.hasAge = rnd.Float64() >= missingAgeRatio
	if p.hasAge {
		p.age = float64(1 + rnd.Intn(maxAge))
	}

	p.fare = baseFare[p.pclass] * (1 + 2*rnd.Float64()) * float64(1+p.sibsp+p.parch)
	p.fare = math.Round(p.fare*fareDecimals) / fareDecimals

	if rnd.Float64() >= missingEmbarkedRatio {
		p.embarked = ports[rnd.Intn(len(ports))]
	}

	surname := surnames[rnd.Intn(len(surnames))]
	if p.sex == "male" {
		p.name = fmt.Sprintf("%s, Mr. %s", surname, maleNames[rnd.Intn(len(maleNames))])
	} else {
		p.name = fmt.Sprintf("%s, Mrs. %s", surname, femaleNames[rnd.Intn(len(femaleNames))])
	}

	p.ticket = "T-" + strings.ToUpper(uuid.NewSHA1(ticketNamespace, []byte(fmt.Sprint(id))).String()[:8])
	p.survived = survives(rnd, p)
	return p
}

// survives draws the outcome from a sex and class dependent probability.
func survives(rnd *rand.Rand, p passenger) int {
	prob := 0.19
	if p.sex == "female" {
		prob = 0.74
	}
	switch p.pclass {
	case 1:
		prob += 0.15
	case 3:
		prob -= 0.12
	}
	if p.sibsp > 2 {
		prob -= 0.1
	}
	if rnd.Float64() < prob {
		return 1
	}
	return 0
}

func weighted(rnd *rand.Rand, weights []float64) int {
	r := rnd.Float64()
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}

func (p passenger) testRow() []table.Value {
	age := table.Null(table.KindNumeric)
	if p.hasAge {
		age = table.Number(p.age)
	}
	embarked := table.Null(table.KindString)
	if p.embarked != "" {
		embarked = table.String(p.embarked)
	}
	return []table.Value{
		table.Number(float64(p.id)),
		table.Number(float64(p.pclass)),
		table.String(p.name),
		table.String(p.sex),
		age,
		table.Number(float64(p.sibsp)),
		table.Number(float64(p.parch)),
		table.String(p.ticket),
		table.Number(p.fare),
		embarked,
	}
}

func (p passenger) trainRow() []table.Value {
	row := p.testRow()
	return append(row[:1:1], append([]table.Value{table.Number(float64(p.survived))}, row[1:]...)...)
}
