package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// rankTol is the magnitude, relative to the largest diagonal entry of R, below which a column is
// treated as linearly dependent on the columns before it.
const rankTol = 1e-10

type OLSOptions struct {
	FitIntercept bool `json:"fit_intercept" yaml:"fit_intercept"`
}

func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// OLSRegression computes ordinary least squares using QR factorization. It serves as the linear
// baseline the forest is compared against.
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
	fitted    bool
}

func NewOLSRegression(opt *OLSOptions) *OLSRegression {
	if opt == nil {
		opt = NewDefaultOLSOptions()
	}
	return &OLSRegression{
		opt: opt,
	}
}

// Fit solves for the coefficients. Columns that are linear combinations of earlier columns get a
// coefficient of zero.
func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	m, n, target, err := fitValidate(x, y)
	if err != nil {
		return err
	}

	design := o.design(x, m, n)
	_, cols := design.Dims()
	if m < cols {
		return fmt.Errorf("%d rows cannot determine %d coefficients, %w", m, cols, ErrUnderdetermined)
	}

	// The normal equations keep the factorization at cols x cols regardless of the number of rows.
	var gram, rhs mat.Dense
	gram.Mul(design.T(), design)
	rhs.Mul(design.T(), mat.NewVecDense(m, target))

	qr := new(mat.QR)
	qr.Factorize(&gram)

	q := new(mat.Dense)
	r := new(mat.Dense)
	qr.QTo(q)
	qr.RTo(r)

	yq := new(mat.Dense)
	yq.Mul(q.T(), &rhs)

	var maxDiag float64
	for i := 0; i < cols; i++ {
		maxDiag = math.Max(maxDiag, math.Abs(r.At(i, i)))
	}
	tol := rankTol * maxDiag

	c := make([]float64, cols)
	for i := cols - 1; i >= 0; i-- {
		if math.Abs(r.At(i, i)) <= tol {
			continue
		}
		c[i] = yq.At(i, 0)
		for j := i + 1; j < cols; j++ {
			c[i] -= c[j] * r.At(i, j)
		}
		c[i] /= r.At(i, i)
	}

	o.intercept = 0
	o.coef = c
	if o.opt.FitIntercept {
		o.intercept = c[0]
		o.coef = c[1:]
	}
	o.fitted = true
	return nil
}

// design prepends a column of ones when fitting an intercept.
func (o *OLSRegression) design(x mat.Matrix, m, n int) mat.Matrix {
	if !o.opt.FitIntercept {
		return x
	}
	d := mat.NewDense(m, n+1, nil)
	for i := 0; i < m; i++ {
		d.Set(i, 0, 1.0)
		for j := 0; j < n; j++ {
			d.Set(i, j+1, x.At(i, j))
		}
	}
	return d
}

func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if !o.fitted {
		return nil, ErrNotFitted
	}
	m, err := predictValidate(x, len(o.coef))
	if err != nil {
		return nil, err
	}

	res := make([]float64, m)
	for i := 0; i < m; i++ {
		val := o.intercept
		for j, c := range o.coef {
			val += c * x.At(i, j)
		}
		res[i] = val
	}
	return res, nil
}

func (o *OLSRegression) Score(x, y mat.Matrix) (float64, error) {
	target, err := scoreValidate(x, y)
	if err != nil {
		return 0.0, err
	}
	res, err := o.Predict(x)
	if err != nil {
		return 0.0, err
	}
	return rSquared(res, target), nil
}

func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}
