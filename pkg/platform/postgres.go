package platform

import (
	"context"

	"github.com/ruslano69/dbdump/pkg/adapters"
)

// PostgreSQL - настройки для PostgreSQL
type PostgreSQL struct {
	conn Connection
}

// InitConnection ничего не делает
func (p *PostgreSQL) InitConnection(context.Context) error {
	return nil
}

// RegisterCustomTypeMappings: пользовательские перечисления выгружаются как строки
func (p *PostgreSQL) RegisterCustomTypeMappings() {
	p.conn.TypeMappings().Register("enum", adapters.TypeString)
}

// PreambleExtras возвращает преамбулу PostgreSQL.
// TODO: оператор записан в синтаксисе MySQL и PostgreSQL его не примет; заменить на
// SET session_replication_role или убрать после проверки на живой выгрузке
func (p *PostgreSQL) PreambleExtras() []string {
	return []string{
		`SET SQL_MODE = "NO_AUTO_VALUE_ON_ZERO";`,
	}
}
