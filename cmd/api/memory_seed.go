package main

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/pkg/config"
)

// seedMemory carga datos de demostración para el driver memory: un Admin con las
// credenciales de SEED_ADMIN_*, un cajero, dos productos y una venta pendiente por usuario.
func seedMemory(store *memory.Store, seed config.SeedConfig) error {
	if seed.AdminPassword == "" {
		return errors.New("SEED_ADMIN_PASSWORD es obligatorio con DB_DRIVER=memory")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	store.PutUser(entity.User{
		ID: 1, Email: seed.AdminEmail, PasswordHash: string(hash),
		FirstName: "Admin", Role: entity.RoleAdmin, Status: entity.UserStatusActive,
		CreatedAt: now, UpdatedAt: now,
	})
	store.PutUser(entity.User{
		ID: 2, Email: "cajero@pos.local", PasswordHash: string(hash),
		FirstName: "Cajero", Role: entity.RoleCashier, Status: entity.UserStatusActive,
		CreatedAt: now, UpdatedAt: now,
	})

	store.PutProduct(entity.Product{
		ID: 1, SKU: "CAF-250", Name: "Café molido 250g",
		Price: decimal.RequireFromString("12500"), StockLevel: 40,
		CreatedAt: now, UpdatedAt: now,
	})
	store.PutProduct(entity.Product{
		ID: 2, SKU: "AZU-1000", Name: "Azúcar 1kg",
		Price: decimal.RequireFromString("4800"), StockLevel: 25,
		CreatedAt: now, UpdatedAt: now,
	})

	for _, s := range []struct{ id, user int64 }{{1, 1}, {2, 2}} {
		store.PutSale(entity.Sale{
			ID: s.id, UserID: s.user, PaymentType: "cash", Status: entity.SaleStatusPending,
			CreatedAt: now, UpdatedAt: now,
		})
	}
	return nil
}
