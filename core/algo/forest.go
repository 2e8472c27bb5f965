package algo

import (
	"fmt"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/ensemble"
	"github.com/sjwhitworth/golearn/evaluation"
)

// Forest adapts the golearn random forest to plain float rows and string labels.
type Forest struct {
	Trees    int
	Features int // Features sampled per tree

	attrs     []base.Attribute
	classAttr *base.CategoricalAttribute
	model     *ensemble.RandomForest
}

// NewForest creates an untrained forest over the named float features.
func NewForest(trees, features int, featureNames []string, className string) *Forest {
	attrs := make([]base.Attribute, len(featureNames))
	for i, name := range featureNames {
		attrs[i] = base.NewFloatAttribute(name)
	}
	classAttr := base.NewCategoricalAttribute()
	classAttr.SetName(className)
	return &Forest{Trees: trees, Features: features, attrs: attrs, classAttr: classAttr}
}

// Fit trains the forest on x with labels y.
func (f *Forest) Fit(x [][]float64, y []string) error {
	if len(x) == 0 {
		return fmt.Errorf("cannot train forest on zero rows")
	}
	if y == nil {
		return fmt.Errorf("cannot train forest without labels")
	}
	train, err := f.instances(x, y)
	if err != nil {
		return err
	}
	model := ensemble.NewRandomForest(f.Trees, f.Features)
	if err := model.Fit(train); err != nil {
		return fmt.Errorf("cannot train random forest: %w", err)
	}
	f.model = model
	return nil
}

// Predict returns the predicted label for every row of x.
func (f *Forest) Predict(x [][]float64) ([]string, error) {
	if f.model == nil {
		return nil, fmt.Errorf("forest is not trained")
	}
	if len(x) == 0 {
		return nil, nil
	}
	grid, err := f.instances(x, nil)
	if err != nil {
		return nil, err
	}
	pred, err := f.model.Predict(grid)
	if err != nil {
		return nil, fmt.Errorf("cannot predict: %w", err)
	}
	out := make([]string, len(x))
	for i := range out {
		out[i] = base.GetClass(pred, i)
	}
	return out, nil
}

// Evaluate predicts x and compares against the actual labels y.
func (f *Forest) Evaluate(x [][]float64, y []string) (evaluation.ConfusionMatrix, []string, error) {
	if f.model == nil {
		return nil, nil, fmt.Errorf("forest is not trained")
	}
	ref, err := f.instances(x, y)
	if err != nil {
		return nil, nil, err
	}
	pred, err := f.model.Predict(ref)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot predict: %w", err)
	}
	cm, err := evaluation.GetConfusionMatrix(ref, pred)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot build confusion matrix: %w", err)
	}
	out := make([]string, len(x))
	for i := range out {
		out[i] = base.GetClass(pred, i)
	}
	return cm, out, nil
}

// instances packs rows into golearn dense instances. A nil y fills the class
// column with the first known class so prediction grids share the schema.
func (f *Forest) instances(x [][]float64, y []string) (*base.DenseInstances, error) {
	if y != nil && len(y) != len(x) {
		return nil, fmt.Errorf("have %d rows but %d labels", len(x), len(y))
	}

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(f.attrs))
	for i, a := range f.attrs {
		specs[i] = inst.AddAttribute(a)
	}
	classSpec := inst.AddAttribute(f.classAttr)
	if err := inst.AddClassAttribute(f.classAttr); err != nil {
		return nil, fmt.Errorf("cannot set class attribute: %w", err)
	}
	if err := inst.Extend(len(x)); err != nil {
		return nil, fmt.Errorf("cannot allocate instances: %w", err)
	}

	placeholder := ""
	if values := f.classAttr.GetValues(); len(values) > 0 {
		placeholder = values[0]
	}
	for i, row := range x {
		if len(row) != len(f.attrs) {
			return nil, fmt.Errorf("row %d has %d features, forest expects %d", i, len(row), len(f.attrs))
		}
		for j, v := range row {
			inst.Set(specs[j], i, base.PackFloatToBytes(v))
		}
		label := placeholder
		if y != nil {
			label = y[i]
		}
		inst.Set(classSpec, i, f.classAttr.GetSysValFromString(label))
	}
	return inst, nil
}
