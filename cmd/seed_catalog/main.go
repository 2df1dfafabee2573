// seed_catalog genera el script SQL con roles, administrador inicial y catálogo de productos
// a partir de un CSV separado por ';' (sku;name;price;stock_level;tax_rate;category).
//
// Uso: go run ./cmd/seed_catalog -in catalogo.csv [-latin1] [-out ruta.sql]
// La contraseña del administrador se toma de SEED_ADMIN_PASSWORD (y el email de SEED_ADMIN_EMAIL).
// Escribe por defecto: internal/infrastructure/postgres/migrations/002_seed_catalog.sql
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pos-api/pkg/config"
)

func main() {
	in := flag.String("in", "catalogo.csv", "CSV del catálogo")
	out := flag.String("out", "", "archivo SQL de salida")
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail("Cargar configuración: %v", err)
	}
	if cfg.Seed.AdminPassword == "" {
		fail("SEED_ADMIN_PASSWORD es obligatorio")
	}

	f, err := os.Open(*in)
	if err != nil {
		fail("Abrir CSV: %v", err)
	}
	defer f.Close()

	items, err := parseCatalog(f, *latin1)
	if err != nil {
		fail("Leer catálogo: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		fail("Hash de contraseña: %v", err)
	}

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "002_seed_catalog.sql")
	}
	w, err := os.Create(outPath)
	if err != nil {
		fail("Crear archivo: %v", err)
	}
	defer w.Close()

	if err := writeSeedSQL(w, filepath.Base(*in), items, cfg.Seed.AdminEmail, string(hash)); err != nil {
		fail("Escribir SQL: %v", err)
	}
	fmt.Printf("Generado %s: %d productos, %d categorías\n", outPath, len(items), len(categoryNames(items)))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
