package transform

import "context"

var _ Transform = (*Identity)(nil)

// Identity passes the raw features through.
type Identity struct {
	train [][]float64
}

func NewIdentity() *Identity {
	return &Identity{}
}

func (t *Identity) Precompute(_ context.Context, train [][]float64) error {
	t.train = train
	return nil
}

func (t *Identity) TrainingRows(positions []int) ([][]float64, error) {
	if t.train == nil {
		return nil, ErrNotPrecomputed
	}
	if err := checkPositions(positions, len(t.train)); err != nil {
		return nil, err
	}
	rows := make([][]float64, len(positions))
	for i, pos := range positions {
		rows[i] = t.train[pos]
	}
	return rows, nil
}

func (t *Identity) QueryRow(query []float64, _ []int) ([]float64, error) {
	return query, nil
}
