package sqlbase

// Migrations returns the schema shared by the PostgreSQL and SQLite backends.
// Timestamps are stored as unix milliseconds so both engines compare them the same way.
func Migrations() map[int][]string {
	return map[int][]string{
		1: {
			`CREATE TABLE workflows (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				created_at BIGINT,
				updated_at BIGINT,
				last_executed_at BIGINT
			)`,
			`CREATE TABLE workflow_steps (
				workflow_id TEXT NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				id TEXT NOT NULL DEFAULT '',
				name TEXT NOT NULL DEFAULT '',
				step_type TEXT NOT NULL,
				status TEXT NOT NULL,
				ai_prompt TEXT NOT NULL DEFAULT '',
				configuration TEXT NOT NULL DEFAULT '',
				result TEXT NOT NULL DEFAULT '',
				PRIMARY KEY (workflow_id, position)
			)`,
			`CREATE INDEX idx_workflows_created_at ON workflows(created_at)`,
		},
		2: {
			`CREATE TABLE workflow_executions (
				id TEXT PRIMARY KEY,
				workflow_id TEXT NOT NULL,
				status TEXT NOT NULL,
				started_at BIGINT,
				completed_at BIGINT,
				execution_time_ms BIGINT,
				input_data TEXT NOT NULL DEFAULT '',
				output_data TEXT NOT NULL DEFAULT '',
				error_message TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX idx_workflow_executions_workflow_id ON workflow_executions(workflow_id, started_at)`,
		},
	}
}

// Tables lists the tables created by Migrations, children first.
var Tables = []string{"workflow_steps", "workflow_executions", "workflows", "schema_migrations"}
