package postgres

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/puntoventa-api/internal/domain"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("otro")))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, isForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isForeignKeyViolation(errors.New("23503")))
}

func TestWrap_ClasificaTransitorios(t *testing.T) {
	for _, code := range []string{"08006", "08003", "40001", "40P01", "55P03", "57P01"} {
		err := wrap("op", &pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, domain.ErrTransient, "código %s debe ser transitorio", code)
	}

	err := wrap("insert item", &pgconn.PgError{Code: "23514"})
	assert.NotErrorIs(t, err, domain.ErrTransient)
	assert.Contains(t, err.Error(), "insert item")

	var pgErr *pgconn.PgError
	assert.ErrorAs(t, wrap("op", &pgconn.PgError{Code: "40001"}), &pgErr, "el error original debe seguir accesible")
}

func TestNullableYDeref(t *testing.T) {
	assert.Nil(t, nullable(""))
	assert.Equal(t, "SKU-1", nullable("SKU-1"))
	assert.Equal(t, "", deref(nil))
	s := "x"
	assert.Equal(t, "x", deref(&s))
}

func TestLikePattern_EscapaComodines(t *testing.T) {
	assert.Equal(t, "%camisa%", likePattern("  camisa "))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/db?sslmode=disable",
		migrateURL("postgres://u:p@localhost:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://h/db", migrateURL("postgresql://h/db"))
	assert.Equal(t, "pgx5://ya/db", migrateURL("pgx5://ya/db"))
}

func TestMigraciones_EmbebidasEnPares(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	up, down := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	assert.Positive(t, up)
	assert.Equal(t, up, down, "cada migración up necesita su down")
}
