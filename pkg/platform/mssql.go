package platform

import (
	"context"

	"github.com/ruslano69/dbdump/pkg/adapters"
)

// MSSQL - настройки для Microsoft SQL Server
type MSSQL struct {
	conn Connection
}

// InitConnection отключает сообщения о числе строк
func (p *MSSQL) InitConnection(ctx context.Context) error {
	return p.conn.Exec(ctx, "SET NOCOUNT ON")
}

// RegisterCustomTypeMappings: sql_variant и hierarchyid выгружаются как строки
func (p *MSSQL) RegisterCustomTypeMappings() {
	p.conn.TypeMappings().Register("sql_variant", adapters.TypeString)
	p.conn.TypeMappings().Register("hierarchyid", adapters.TypeString)
}

func (p *MSSQL) PreambleExtras() []string {
	return []string{"SET NOCOUNT ON;"}
}
