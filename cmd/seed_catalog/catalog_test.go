package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const sampleCSV = `sku;name;price;stock_level;tax_rate;category
CAF-001;Café 500g;12.50;40;19;Bebidas
AZU-001;Azúcar 1kg;3.2;100;5;Despensa
PAN-001;Pan d'Or;1;0;0;
`

func TestParseCatalog(t *testing.T) {
	items, err := parseCatalog(strings.NewReader(sampleCSV), false)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "CAF-001", items[0].SKU)
	assert.Equal(t, "Café 500g", items[0].Name)
	assert.Equal(t, "12.5", items[0].Price.String())
	assert.Equal(t, int64(40), items[0].StockLevel)
	assert.Equal(t, "Bebidas", items[0].Category)
	assert.Empty(t, items[2].Category)
}

func TestParseCatalog_Latin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String(sampleCSV)
	require.NoError(t, err)

	items, err := parseCatalog(strings.NewReader(encoded), true)
	require.NoError(t, err)
	assert.Equal(t, "Azúcar 1kg", items[1].Name)
}

func TestParseCatalog_Errores(t *testing.T) {
	header := "sku;name;price;stock_level;tax_rate\n"
	cases := map[string]string{
		"vacío":             "",
		"precio negativo":   header + "A;B;-1;1;0\n",
		"stock negativo":    header + "A;B;1;-1;0\n",
		"sku repetido":      header + "A;B;1;1;0\nA;C;1;1;0\n",
		"columnas de menos": header + "A;B;1\n",
		"sin nombre":        header + "A;;1;1;0\n",
	}
	for name, csv := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseCatalog(strings.NewReader(csv), false)
			assert.Error(t, err)
		})
	}
}

func TestWriteSeedSQL(t *testing.T) {
	items, err := parseCatalog(strings.NewReader(sampleCSV), false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeSeedSQL(&buf, "catalogo.csv", items, "admin@pos.local", "$2a$10$hash"))
	sql := buf.String()

	assert.Contains(t, sql, "('Admin'), ('Manager'), ('Cashier')")
	assert.Contains(t, sql, "SELECT 'admin@pos.local', '$2a$10$hash', 'Admin', id, 'active'")
	assert.Contains(t, sql, "('Bebidas'),\n  ('Despensa')\n")
	assert.Contains(t, sql, "VALUES ((SELECT id FROM categories WHERE name = 'Bebidas'), 'CAF-001', 'Café 500g', 12.50, 40, 19.00)")
	assert.Contains(t, sql, "VALUES (NULL, 'PAN-001', 'Pan d''Or', 1.00, 0, 0.00)")
	assert.Equal(t, 3, strings.Count(sql, "ON CONFLICT (sku) DO UPDATE"))
	assert.NotContains(t, sql, "stock_level = EXCLUDED", "el seed no pisa el stock existente")
}
