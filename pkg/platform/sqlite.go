package platform

import "context"

// SQLite - настройки для SQLite
type SQLite struct {
	conn Connection
}

func (p *SQLite) InitConnection(context.Context) error { return nil }

func (p *SQLite) RegisterCustomTypeMappings() {}

// PreambleExtras отключает проверку внешних ключей на время загрузки дампа
func (p *SQLite) PreambleExtras() []string {
	return []string{"PRAGMA foreign_keys = OFF;"}
}
