// seed_items carga un catálogo de artículos desde un CSV separado por ';' usando el mismo
// flujo de "caja de tallas" que la API (POST /api/items/box).
//
// Uso: go run ./cmd/seed_items <team_id> [ruta/catalogo.csv]
// Por defecto busca catalogo.csv en el directorio actual. Acepta UTF-8 o Latin-1.
// Columnas: nombre;color;talla;sku;precio;iva_bps;tipo_medida;cantidad[;unidad]
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/application/stock"
	"github.com/jhoicas/puntoventa-api/internal/infrastructure/postgres"
	"github.com/jhoicas/puntoventa-api/pkg/config"
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

// seedUser autor de los movimientos BOX_IN generados por la carga.
const seedUser = "seed_items"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Uso: seed_items <team_id> [catalogo.csv]")
		os.Exit(2)
	}
	teamID := os.Args[1]
	csvPath := "catalogo.csv"
	if len(os.Args) > 2 {
		csvPath = os.Args[2]
	}

	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	boxes, err := parseCatalog(decodeCatalog(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "seed_items"})

	ctx := context.Background()
	if cfg.DB.Migrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones de PostgreSQL")
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	ledger := stock.NewLedgerUseCase(postgres.NewTxRunner(pool), postgres.NewRepos(pool), log)

	var created, updated int
	for _, box := range boxes {
		out, err := ledger.SubmitBox(ctx, teamID, seedUser, box)
		if err != nil {
			log.Error().Err(err).Str("base", box.BaseName).Str("color", box.Color).Msg("caja rechazada")
			continue
		}
		for _, r := range out.Items {
			if r.Created {
				created++
			} else {
				updated++
			}
		}
	}
	fmt.Printf("Cargado %s: %d cajas, %d artículos nuevos, %d recargados\n", csvPath, len(boxes), created, updated)
}

// decodeCatalog convierte a UTF-8 los archivos exportados en Latin-1 (Excel en Windows).
func decodeCatalog(raw []byte) io.Reader {
	if utf8.Valid(raw) {
		return bytes.NewReader(bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf")))
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder())
}

// parseCatalog agrupa las filas por (nombre, color) en cajas, conservando el orden de aparición.
func parseCatalog(r io.Reader) ([]dto.BoxRequest, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		boxes []dto.BoxRequest
		index = make(map[string]int)
	)
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "nombre") {
			continue
		}
		if len(rec) < 8 {
			return nil, fmt.Errorf("línea %d: se esperaban al menos 8 columnas, hay %d", line, len(rec))
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}

		price, err := decimal.NewFromString(strings.ReplaceAll(rec[4], ",", "."))
		if err != nil {
			return nil, fmt.Errorf("línea %d: precio %q inválido", line, rec[4])
		}
		taxBps, err := strconv.Atoi(rec[5])
		if err != nil {
			return nil, fmt.Errorf("línea %d: iva_bps %q inválido", line, rec[5])
		}
		qty, err := decimal.NewFromString(strings.ReplaceAll(rec[7], ",", "."))
		if err != nil {
			return nil, fmt.Errorf("línea %d: cantidad %q inválida", line, rec[7])
		}
		unit := ""
		if len(rec) > 8 {
			unit = rec[8]
		}

		key := strings.ToLower(rec[0]) + "|" + strings.ToLower(rec[1])
		i, ok := index[key]
		if !ok {
			boxes = append(boxes, dto.BoxRequest{
				BaseName:        rec[0],
				Color:           rec[1],
				Price:           price,
				TaxRateBps:      taxBps,
				MeasurementType: strings.ToUpper(rec[6]),
				Unit:            unit,
			})
			i = len(boxes) - 1
			index[key] = i
		}
		boxes[i].Sizes = append(boxes[i].Sizes, dto.BoxSizeRequest{Size: rec[2], SKU: rec[3], Quantity: qty})
	}
	return boxes, nil
}
