package ensemble

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// scaler standardizes feature columns to zero mean and unit variance using
// statistics from the training split only.
type scaler struct {
	means []float64
	stds  []float64
}

func fitScaler(x *mat.Dense) scaler {
	rows, cols := x.Dims()
	s := scaler{
		means: make([]float64, cols),
		stds:  make([]float64, cols),
	}
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		s.means[j] = stat.Mean(col, nil)
		s.stds[j] = stat.StdDev(col, nil)
		if s.stds[j] == 0 || math.IsNaN(s.stds[j]) {
			s.stds[j] = 1
		}
	}
	return s
}

// transform standardizes in place.
func (s scaler) transform(x *mat.Dense) {
	rows, cols := x.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x.Set(i, j, (x.At(i, j)-s.means[j])/s.stds[j])
		}
	}
}

// transformVec standardizes a single sample.
func (s scaler) transformVec(v []float64) []float64 {
	out := make([]float64, len(v))
	for j := range v {
		out[j] = (v[j] - s.means[j]) / s.stds[j]
	}
	return out
}

// softmaxModel is a multinomial logistic classifier trained by batch
// gradient descent. Weights are classes x (dim+1) with the bias in the
// last column.
type softmaxModel struct {
	weights *mat.Dense
	classes int
	dim     int
}

// trainSoftmax fits a softmax classifier on standardized inputs. Labels
// must be class indices in [0, classes).
func trainSoftmax(x *mat.Dense, labels []int, classes, iters int, lr float64) (*softmaxModel, error) {
	rows, dim := x.Dims()
	if rows == 0 || rows != len(labels) {
		return nil, fmt.Errorf("softmax: %d rows vs %d labels", rows, len(labels))
	}
	if classes < 2 {
		return nil, fmt.Errorf("softmax: need at least 2 classes, got %d", classes)
	}

	// Augment with a bias column of ones.
	xb := mat.NewDense(rows, dim+1, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < dim; j++ {
			xb.Set(i, j, x.At(i, j))
		}
		xb.Set(i, dim, 1)
	}

	// One-hot targets.
	oneHot := mat.NewDense(rows, classes, nil)
	for i, label := range labels {
		if label < 0 || label >= classes {
			return nil, fmt.Errorf("softmax: label %d outside [0,%d)", label, classes)
		}
		oneHot.Set(i, label, 1)
	}

	w := mat.NewDense(classes, dim+1, nil)
	var logits, grad mat.Dense
	for iter := 0; iter < iters; iter++ {
		logits.Mul(xb, w.T()) // rows x classes
		softmaxRows(&logits)
		logits.Sub(&logits, oneHot)
		grad.Mul(logits.T(), xb) // classes x (dim+1)
		grad.Scale(lr/float64(rows), &grad)
		w.Sub(w, &grad)
	}

	return &softmaxModel{weights: w, classes: classes, dim: dim}, nil
}

// softmaxRows converts each row of logits into a probability distribution
// in place, with the usual max-shift for numerical stability.
func softmaxRows(m *mat.Dense) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		maxv := m.At(i, 0)
		for j := 1; j < cols; j++ {
			if m.At(i, j) > maxv {
				maxv = m.At(i, j)
			}
		}
		sum := 0.0
		for j := 0; j < cols; j++ {
			e := math.Exp(m.At(i, j) - maxv)
			m.Set(i, j, e)
			sum += e
		}
		for j := 0; j < cols; j++ {
			m.Set(i, j, m.At(i, j)/sum)
		}
	}
}

// proba returns the class probability vector for one standardized sample.
func (m *softmaxModel) proba(x []float64) []float64 {
	logits := make([]float64, m.classes)
	maxv := math.Inf(-1)
	for c := 0; c < m.classes; c++ {
		v := m.weights.At(c, m.dim) // bias
		for j := 0; j < m.dim && j < len(x); j++ {
			v += m.weights.At(c, j) * x[j]
		}
		logits[c] = v
		if v > maxv {
			maxv = v
		}
	}
	sum := 0.0
	for c := range logits {
		logits[c] = math.Exp(logits[c] - maxv)
		sum += logits[c]
	}
	for c := range logits {
		logits[c] /= sum
	}
	return logits
}

// predict returns the arg-max class index.
func (m *softmaxModel) predict(x []float64) int {
	return argmax(m.proba(x))
}

// accuracy scores the classifier on a held-out standardized set.
func (m *softmaxModel) accuracy(x *mat.Dense, labels []int) float64 {
	rows, _ := x.Dims()
	if rows == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < rows; i++ {
		if m.predict(mat.Row(nil, i, x)) == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(rows)
}

// linearModel is an ordinary least-squares regressor solved via QR.
type linearModel struct {
	weights []float64 // dim+1, bias last
	dim     int
}

// trainLinear fits the regressor on standardized inputs.
func trainLinear(x *mat.Dense, y []float64) (*linearModel, error) {
	rows, dim := x.Dims()
	if rows == 0 || rows != len(y) {
		return nil, fmt.Errorf("linear: %d rows vs %d targets", rows, len(y))
	}

	xb := mat.NewDense(rows, dim+1, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < dim; j++ {
			xb.Set(i, j, x.At(i, j))
		}
		xb.Set(i, dim, 1)
	}

	yv := mat.NewVecDense(rows, y)
	var w mat.VecDense
	if err := w.SolveVec(xb, yv); err != nil {
		return nil, fmt.Errorf("linear: solve: %w", err)
	}

	weights := make([]float64, dim+1)
	for j := 0; j <= dim; j++ {
		weights[j] = w.AtVec(j)
	}
	return &linearModel{weights: weights, dim: dim}, nil
}

// predict evaluates the fit for one standardized sample.
func (m *linearModel) predict(x []float64) float64 {
	v := m.weights[m.dim]
	for j := 0; j < m.dim && j < len(x); j++ {
		v += m.weights[j] * x[j]
	}
	return v
}

// rSquared scores the regressor on a held-out standardized set.
func (m *linearModel) rSquared(x *mat.Dense, y []float64) float64 {
	rows, _ := x.Dims()
	if rows == 0 {
		return 0
	}
	estimates := make([]float64, rows)
	for i := 0; i < rows; i++ {
		estimates[i] = m.predict(mat.Row(nil, i, x))
	}
	return stat.RSquaredFrom(estimates, y, nil)
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
