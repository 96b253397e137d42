package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the repos.
const (
	documentsTable = "documents"
	turnsTable     = "turn_events"
)

var (
	// DocumentsColumns holds the columns for the "documents" table.
	DocumentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "path", Type: field.TypeString, Unique: true},
		{Name: "body", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	// DocumentsTable holds the schema information for the "documents" table.
	DocumentsTable = &schema.Table{
		Name:       documentsTable,
		Columns:    DocumentsColumns,
		PrimaryKey: []*schema.Column{DocumentsColumns[0]},
	}

	// TurnEventsColumns holds the columns for the "turn_events" table.
	TurnEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "session_id", Type: field.TypeString},
		{Name: "student_id", Type: field.TypeString, Default: ""},
		{Name: "content_path", Type: field.TypeString, Default: ""},
		{Name: "role", Type: field.TypeString},
		{Name: "state_id", Type: field.TypeString, Default: ""},
		{Name: "intent", Type: field.TypeString, Default: ""},
		{Name: "event", Type: field.TypeString, Default: ""},
		{Name: "text", Type: field.TypeString, Size: 2147483647},
		{Name: "violations", Type: field.TypeString, Default: "[]"},
		{Name: "filtered", Type: field.TypeBool, Default: false},
		{Name: "fallback", Type: field.TypeBool, Default: false},
		{Name: "frustrated", Type: field.TypeBool, Default: false},
	}
	// TurnEventsTable holds the schema information for the "turn_events" table.
	TurnEventsTable = &schema.Table{
		Name:       turnsTable,
		Columns:    TurnEventsColumns,
		PrimaryKey: []*schema.Column{TurnEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "turnevent_session_id_sequence",
				Unique:  false,
				Columns: []*schema.Column{TurnEventsColumns[3], TurnEventsColumns[1]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		DocumentsTable,
		TurnEventsTable,
	}
)

// migrate creates or extends the tables through ent's migration engine.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
