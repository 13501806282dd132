package platform

import (
	"context"

	"github.com/ruslano69/dbdump/pkg/adapters"
)

// MySQL - настройки для MySQL / MariaDB
type MySQL struct {
	conn Connection
}

// InitConnection переключает сессию на utf8mb4
func (p *MySQL) InitConnection(ctx context.Context) error {
	return p.conn.Exec(ctx, "SET NAMES utf8mb4")
}

// RegisterCustomTypeMappings: enum и set выгружаются как строки
func (p *MySQL) RegisterCustomTypeMappings() {
	p.conn.TypeMappings().Register("enum", adapters.TypeString)
	p.conn.TypeMappings().Register("set", adapters.TypeString)
}

// PreambleExtras возвращает преамбулу MySQL
func (p *MySQL) PreambleExtras() []string {
	return []string{
		"SET NAMES utf8mb4;",
		`SET SQL_MODE = "NO_AUTO_VALUE_ON_ZERO";`,
	}
}
