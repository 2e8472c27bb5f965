package core

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"

	"github.com/huangsam/pokestats/core/algo"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
	"github.com/sjwhitworth/golearn/evaluation"
	"gonum.org/v1/gonum/mat"
)

// splitStream separates the split permutation from the k-means streams.
const splitStream = 0x5eed

// TrainLegendary fits a random forest that predicts the Legendary flag from the
// standardized stats, evaluates it on a seeded hold-out split and optionally
// predicts the named entities.
func TrainLegendary(table *schema.EntityTable, cfg *contract.Config, names []string) (*schema.ClassifierReport, error) {
	if !table.Has(schema.ColLegendary) {
		return nil, &contract.MissingColumnError{Column: schema.ColLegendary, Source: table.Source}
	}
	n := table.Len()
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 rows to train and test, have %d", n)
	}

	data, _, err := Standardize(table, schema.StatColumns)
	if err != nil {
		return nil, err
	}

	train, test := splitIndices(n, cfg.TestRatio, cfg.Seed)
	xTrain, yTrain := pick(data, table, train)
	xTest, yTest := pick(data, table, test)

	forest := algo.NewForest(cfg.Trees, cfg.TreeFeatures, schema.StatColumns, schema.ColLegendary)
	if err := forest.Fit(xTrain, yTrain); err != nil {
		return nil, err
	}
	cm, _, err := forest.Evaluate(xTest, yTest)
	if err != nil {
		return nil, err
	}

	report := &schema.ClassifierReport{
		Trees:     cfg.Trees,
		TrainSize: len(train),
		TestSize:  len(test),
		Accuracy:  evaluation.GetAccuracy(cm),
		Confusion: map[string]map[string]int(cm),
	}
	classes := make([]string, 0, len(cm))
	for class := range cm {
		classes = append(classes, class)
	}
	slices.Sort(classes)
	for _, class := range classes {
		report.Classes = append(report.Classes, schema.ClassMetrics{
			Class:     class,
			Precision: finite(evaluation.GetPrecision(class, cm)),
			Recall:    finite(evaluation.GetRecall(class, cm)),
			F1:        finite(evaluation.GetF1Score(class, cm)),
		})
	}

	if len(names) > 0 {
		preds, err := predictNamed(forest, data, table, names)
		if err != nil {
			return nil, err
		}
		report.Predictions = preds
	}
	return report, nil
}

// splitIndices returns a seeded train/test split. Both sides get at least one row.
func splitIndices(n int, ratio float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewPCG(uint64(seed), splitStream))
	perm := rng.Perm(n)
	testSize := int(math.Round(float64(n) * ratio))
	testSize = max(1, min(testSize, n-1))
	test = slices.Clone(perm[:testSize])
	train = slices.Clone(perm[testSize:])
	slices.Sort(test)
	slices.Sort(train)
	return train, test
}

func pick(data *mat.Dense, table *schema.EntityTable, idx []int) ([][]float64, []string) {
	x := make([][]float64, len(idx))
	y := make([]string, len(idx))
	for i, r := range idx {
		x[i] = mat.Row(nil, r, data)
		y[i] = strconv.FormatBool(table.Entities[r].Legendary)
	}
	return x, y
}

func predictNamed(forest *algo.Forest, data *mat.Dense, table *schema.EntityTable, names []string) ([]schema.Prediction, error) {
	rows := Unlabeled(table)
	x := make([][]float64, len(names))
	out := make([]schema.Prediction, len(names))
	for i, name := range names {
		r, err := findByName(rows, name)
		if err != nil {
			return nil, err
		}
		x[i] = mat.Row(nil, r.Row, data)
		out[i] = schema.Prediction{Name: r.Name, Actual: strconv.FormatBool(r.Legendary)}
	}
	pred, err := forest.Predict(x)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Predicted = pred[i]
	}
	return out, nil
}

// finite maps NaN (no positives for a class) to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
