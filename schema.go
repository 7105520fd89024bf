package sage

// Schema describes how one entity kind maps onto the embedded store: a table
// name plus an ordered list of columns with storage types and index flags.
// The mapping is plain data — the store generates its DDL from these values
// at open time, so adding an entity means declaring a Schema, not writing SQL.
type Schema struct {
	Table   string
	Columns []Column

	// VectorColumn names the single column eligible for nearest-neighbor
	// queries, with its fixed dimensionality. Empty means no vector field.
	VectorColumn string
	VectorDim    int
}

// Column is one field of an entity's storage mapping.
type Column struct {
	Name       string
	Type       string // SQLite storage type: INTEGER, TEXT, or REAL
	PrimaryKey bool
	Indexed    bool
}

// Built-in schemas for the four entity kinds. Identity columns are
// auto-assigned INTEGER keys; indexed columns match the declared query
// surface of each repository.
var (
	StudentSchema = Schema{
		Table: "students",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "name", Type: "TEXT"},
			{Name: "email", Type: "TEXT", Indexed: true},
			{Name: "learning_preferences", Type: "TEXT"},
			{Name: "created_at", Type: "INTEGER"},
			{Name: "updated_at", Type: "INTEGER"},
		},
	}

	InteractionSchema = Schema{
		Table: "interactions",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "student_id", Type: "INTEGER", Indexed: true},
			{Name: "input_type", Type: "TEXT"},
			{Name: "input_content", Type: "TEXT"},
			{Name: "agent_response", Type: "TEXT"},
			{Name: "timestamp", Type: "INTEGER", Indexed: true},
			{Name: "session_id", Type: "TEXT", Indexed: true},
		},
	}

	LearningProgressSchema = Schema{
		Table: "learning_progress",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "student_id", Type: "INTEGER", Indexed: true},
			{Name: "subject", Type: "TEXT", Indexed: true},
			{Name: "topic", Type: "TEXT", Indexed: true},
			{Name: "completion_percentage", Type: "REAL"},
			{Name: "performance_score", Type: "REAL"},
			{Name: "last_accessed", Type: "INTEGER"},
		},
	}

	CurriculumContentSchema = Schema{
		Table: "curriculum_content",
		Columns: []Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "title", Type: "TEXT", Indexed: true},
			{Name: "content", Type: "TEXT"},
			{Name: "subject", Type: "TEXT", Indexed: true},
			{Name: "difficulty_level", Type: "INTEGER", Indexed: true},
			{Name: "content_type", Type: "TEXT"},
			{Name: "created_at", Type: "INTEGER"},
			{Name: "updated_at", Type: "INTEGER"},
			{Name: "vector_embedding", Type: "TEXT"}, // JSON-encoded []float32, NULL when absent
		},
		VectorColumn: "vector_embedding",
		VectorDim:    EmbeddingDim,
	}
)

// Schemas returns the four built-in entity schemas in registration order.
func Schemas() []Schema {
	return []Schema{StudentSchema, InteractionSchema, LearningProgressSchema, CurriculumContentSchema}
}
