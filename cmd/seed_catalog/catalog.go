package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogItem fila del CSV: sku;name;price;stock_level;tax_rate;category
type catalogItem struct {
	SKU        string
	Name       string
	Price      decimal.Decimal
	StockLevel int64
	TaxRate    decimal.Decimal
	Category   string
}

// parseCatalog lee el CSV separado por ';' con encabezado. latin1 decodifica ISO-8859-1.
func parseCatalog(r io.Reader, latin1 bool) ([]catalogItem, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catálogo vacío")
		}
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}

	var out []catalogItem
	seen := make(map[string]int)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("línea %d: se esperaban al menos 5 columnas, hay %d", line, len(rec))
		}
		item := catalogItem{SKU: strings.TrimSpace(rec[0]), Name: strings.TrimSpace(rec[1])}
		if item.SKU == "" || item.Name == "" {
			return nil, fmt.Errorf("línea %d: sku y name son obligatorios", line)
		}
		if item.Price, err = decimal.NewFromString(strings.TrimSpace(rec[2])); err != nil || item.Price.IsNegative() {
			return nil, fmt.Errorf("línea %d: price inválido %q", line, rec[2])
		}
		if item.StockLevel, err = strconv.ParseInt(strings.TrimSpace(rec[3]), 10, 64); err != nil || item.StockLevel < 0 {
			return nil, fmt.Errorf("línea %d: stock_level inválido %q", line, rec[3])
		}
		if item.TaxRate, err = decimal.NewFromString(strings.TrimSpace(rec[4])); err != nil {
			return nil, fmt.Errorf("línea %d: tax_rate inválido %q", line, rec[4])
		}
		if len(rec) > 5 {
			item.Category = strings.TrimSpace(rec[5])
		}
		if prev, dup := seen[item.SKU]; dup {
			return nil, fmt.Errorf("línea %d: sku %s repetido (línea %d)", line, item.SKU, prev)
		}
		seen[item.SKU] = line
		out = append(out, item)
	}
	return out, nil
}

// writeSeedSQL escribe roles, el administrador inicial, categorías y productos.
// Los productos existentes conservan stock_level: solo se actualizan datos de catálogo.
func writeSeedSQL(w io.Writer, source string, items []catalogItem, adminEmail, adminHash string) error {
	var b strings.Builder
	b.WriteString("-- Catálogo inicial del punto de venta\n")
	fmt.Fprintf(&b, "-- Generado por cmd/seed_catalog desde %s\n\n", source)

	b.WriteString("-- 1. Roles\n")
	b.WriteString("INSERT INTO roles (name) VALUES ('Admin'), ('Manager'), ('Cashier') ON CONFLICT (name) DO NOTHING;\n\n")

	b.WriteString("-- 2. Administrador\n")
	b.WriteString("INSERT INTO users (email, password_hash, first_name, role_id, status)\n")
	fmt.Fprintf(&b, "SELECT '%s', '%s', 'Admin', id, 'active' FROM roles WHERE name = 'Admin'\n",
		escapeSQL(adminEmail), escapeSQL(adminHash))
	b.WriteString("ON CONFLICT ((LOWER(email))) DO NOTHING;\n\n")

	categories := categoryNames(items)
	if len(categories) > 0 {
		b.WriteString("-- 3. Categorías\n")
		b.WriteString("INSERT INTO categories (name) VALUES\n")
		for i, name := range categories {
			sep := ","
			if i == len(categories)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "  ('%s')%s\n", escapeSQL(name), sep)
		}
		b.WriteString("ON CONFLICT (name) DO NOTHING;\n\n")
	}

	b.WriteString("-- 4. Productos\n")
	for _, it := range items {
		category := "NULL"
		if it.Category != "" {
			category = fmt.Sprintf("(SELECT id FROM categories WHERE name = '%s')", escapeSQL(it.Category))
		}
		b.WriteString("INSERT INTO products (category_id, sku, name, price, stock_level, tax_rate)\n")
		fmt.Fprintf(&b, "VALUES (%s, '%s', '%s', %s, %d, %s)\n",
			category, escapeSQL(it.SKU), escapeSQL(it.Name), it.Price.StringFixed(2), it.StockLevel, it.TaxRate.StringFixed(2))
		b.WriteString("ON CONFLICT (sku) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price,\n")
		b.WriteString("  tax_rate = EXCLUDED.tax_rate, category_id = EXCLUDED.category_id, updated_at = NOW();\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func categoryNames(items []catalogItem) []string {
	set := make(map[string]struct{})
	for _, it := range items {
		if it.Category != "" {
			set[it.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
