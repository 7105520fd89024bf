// Package sage provides the building blocks for a multi-agent educational
// assistant: typed entity records with validation, an embedded file-backed
// store with indexed and vector-similarity queries, and a declarative agent
// layer that routes natural-language queries to specialized sub-agents.
//
// # Quick Start
//
//	cfg := config.Load(os.Getenv("SAGE_CONFIG"))
//	db, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.Database.Dir), sage.Schemas())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	students := sqlite.NewStudentRepo(db)
//	s := sage.NewStudent("Ann", "ann@example.com")
//	if errs := sage.ValidateStudent(s); len(errs) == 0 {
//		s, err = students.Create(ctx, s)
//	}
//
// # Core Contracts
//
// The root package defines the contracts all components implement:
//
//   - [Provider] — opaque LLM backend (prompt in, text out)
//   - [Agent] — composable work unit (LLMAgent, Router, or custom)
//   - [Schema] — data-driven entity-to-storage mapping
//
// Storage lives in store/sqlite: one generic repository per entity kind plus
// entity-specific indexed queries and nearest-neighbor search over curriculum
// embeddings. Write failures are propagated; read failures degrade to empty
// results after logging.
//
// See cmd/sage for a complete composition root.
package sage
