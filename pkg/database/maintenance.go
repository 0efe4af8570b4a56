package database

import "fmt"

var coreTables = []string{
	"message_reactions",
	"message_read_status",
	"messages",
	"conversation_participants",
	"conversations",
	"users",
}

// DropAllTables removes every core table. Dependents drop first via CASCADE.
func DropAllTables() error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	for _, table := range coreTables {
		if err := DB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return err
		}
	}
	return nil
}

// TruncateAllTables empties every core table and resets identity sequences.
func TruncateAllTables() error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	for _, table := range coreTables {
		exists, err := TableExists(table)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		if err := DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			return err
		}
	}
	return nil
}
