package memory

import (
	"context"

	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// TxRunner ejecuta callbacks sobre una copia del estado y la confirma si no hay error.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run serializa la transacción con el resto: toma el mutex, clona el estado, ejecuta fn y
// reemplaza el estado solo si fn y el contexto terminan bien.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	work := r.store.st.clone()
	if err := fn(r.store.reposFor(&view{store: r.store, tx: work, locked: true})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.st = work
	return nil
}
