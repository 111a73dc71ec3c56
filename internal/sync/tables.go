package sync

import (
	"fmt"
	"strings"
)

// tableSpec maps an allow-listed sync table to its local table and the
// column set mirrored to the external database.
type tableSpec struct {
	localTable   string
	columns      []string
	hasUpdatedAt bool
}

// AllowedTables is the fixed set of tables the orchestrator will touch.
// Any other name is rejected before any network call.
var AllowedTables = map[string]tableSpec{
	"users": {
		localTable: "users",
		columns:    []string{"id", "email", "username", "name", "role", "avatar_url", "created_at"},
	},
	"projects": {
		localTable:   "projects",
		columns:      []string{"id", "name", "description", "owner_id", "start_date", "end_date", "priority", "status", "deleted_at", "created_at", "updated_at"},
		hasUpdatedAt: true,
	},
	"tasks": {
		localTable:   "tasks",
		columns:      []string{"id", "project_id", "status_id", "title", "description", "priority", "due_date", "assignee_id", "completed_at", "created_at", "updated_at"},
		hasUpdatedAt: true,
	},
	"statuses": {
		localTable: "task_statuses",
		columns:    []string{"id", "project_id", "name", "position"},
	},
	"comments": {
		localTable:   "comments",
		columns:      []string{"id", "task_id", "author_id", "body", "created_at", "updated_at"},
		hasUpdatedAt: true,
	},
}

// updateSQL builds "UPDATE t SET col = @col, ... WHERE id = @id" with named
// parameters only.
func (s tableSpec) updateSQL(table string) string {
	assignments := make([]string, 0, len(s.columns)-1)
	for _, col := range s.columns {
		if col == "id" {
			continue
		}
		assignments = append(assignments, fmt.Sprintf("%s = @%s", col, col))
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = @id", table, strings.Join(assignments, ", "))
}

// insertSQL builds "INSERT INTO t (...) VALUES (@...)" with named parameters.
func (s tableSpec) insertSQL(table string) string {
	placeholders := make([]string, len(s.columns))
	for i, col := range s.columns {
		placeholders[i] = "@" + col
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(s.columns, ", "), strings.Join(placeholders, ", "))
}

func (s tableSpec) selectSQL(table string) string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(s.columns, ", "), table)
}
