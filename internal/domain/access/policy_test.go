package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-api/internal/domain/access"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

func TestCanAccessSale(t *testing.T) {
	policy := access.NewRolePolicy()
	sale := &entity.Sale{ID: 1, UserID: 10}

	cases := []struct {
		name  string
		actor entity.Actor
		want  bool
	}{
		{"admin ajeno", entity.Actor{ID: 99, Role: entity.RoleAdmin}, true},
		{"manager ajeno", entity.Actor{ID: 99, Role: entity.RoleManager}, true},
		{"cajero dueño", entity.Actor{ID: 10, Role: entity.RoleCashier}, true},
		{"cajero ajeno", entity.Actor{ID: 11, Role: entity.RoleCashier}, false},
		{"rol desconocido con mismo id", entity.Actor{ID: 10, Role: "user"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, policy.CanAccessSale(tc.actor, sale))
		})
	}
}

func TestCanAccessSale_VentaNilSoloPrivilegiados(t *testing.T) {
	policy := access.NewRolePolicy()
	assert.True(t, policy.CanAccessSale(entity.Actor{ID: 1, Role: entity.RoleManager}, nil))
	assert.False(t, policy.CanAccessSale(entity.Actor{ID: 1, Role: entity.RoleCashier}, nil))
}

// El cajero nunca elimina, aunque sea dueño de la venta.
func TestCanDelete(t *testing.T) {
	policy := access.NewRolePolicy()
	assert.True(t, policy.CanDelete(entity.Actor{ID: 1, Role: entity.RoleAdmin}))
	assert.True(t, policy.CanDelete(entity.Actor{ID: 1, Role: entity.RoleManager}))
	assert.False(t, policy.CanDelete(entity.Actor{ID: 1, Role: entity.RoleCashier}))
}

func TestOwnerScope(t *testing.T) {
	policy := access.NewRolePolicy()
	assert.Nil(t, policy.OwnerScope(entity.Actor{ID: 3, Role: entity.RoleAdmin}))

	scope := policy.OwnerScope(entity.Actor{ID: 3, Role: entity.RoleCashier})
	if assert.NotNil(t, scope) {
		assert.Equal(t, int64(3), *scope)
	}
}
