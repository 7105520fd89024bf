package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/edusage/sage"
)

// curriculumTable maps sage.CurriculumContent onto the curriculum_content
// schema. The embedding is serialized as a JSON array in a nullable TEXT
// column; a nil slice round-trips as NULL.
var curriculumTable = Table[sage.CurriculumContent]{
	Schema: sage.CurriculumContentSchema,
	ID:     func(c sage.CurriculumContent) int64 { return c.ID },
	SetID:  func(c *sage.CurriculumContent, id int64) { c.ID = id },
	Bind: func(c sage.CurriculumContent) ([]any, error) {
		var emb any
		if len(c.Embedding) > 0 {
			data, err := json.Marshal(c.Embedding)
			if err != nil {
				return nil, err
			}
			emb = string(data)
		}
		return []any{c.Title, c.Content, c.Subject, c.DifficultyLevel, c.ContentType, c.CreatedAt, c.UpdatedAt, emb}, nil
	},
	Scan: func(row rowScanner) (sage.CurriculumContent, error) {
		var c sage.CurriculumContent
		var emb sql.NullString
		err := row.Scan(&c.ID, &c.Title, &c.Content, &c.Subject, &c.DifficultyLevel, &c.ContentType, &c.CreatedAt, &c.UpdatedAt, &emb)
		if err != nil {
			return c, err
		}
		if emb.Valid {
			_ = json.Unmarshal([]byte(emb.String), &c.Embedding)
		}
		return c, nil
	},
}

// CurriculumRepo is the CurriculumContent repository: generic CRUD, the
// indexed subject and difficulty queries, and nearest-neighbor search over
// the embedding column.
type CurriculumRepo struct {
	*Repository[sage.CurriculumContent]
}

// NewCurriculumRepo creates a CurriculumRepo bound to db.
func NewCurriculumRepo(db *DB) *CurriculumRepo {
	return &CurriculumRepo{Repository: NewRepository(db, curriculumTable)}
}

// FindBySubject returns all content for a subject.
func (r *CurriculumRepo) FindBySubject(ctx context.Context, subject string) []sage.CurriculumContent {
	return r.find(ctx, "find content by subject", "subject = ?", subject)
}

// FindByDifficultyRange returns content with difficulty in [min, max],
// inclusive on both ends.
func (r *CurriculumRepo) FindByDifficultyRange(ctx context.Context, min, max int) []sage.CurriculumContent {
	return r.find(ctx, "find content by difficulty", "difficulty_level BETWEEN ? AND ?", min, max)
}

// FindAdvanced returns content above difficulty 7, optionally narrowed to
// one subject. An empty subject means no filter.
func (r *CurriculumRepo) FindAdvanced(ctx context.Context, subject string) []sage.CurriculumContent {
	where := "difficulty_level > 7"
	args := []any{}
	if subject != "" {
		where += " AND subject = ?"
		args = append(args, subject)
	}
	return r.find(ctx, "find advanced content", where, args...)
}

// FindWithEmbeddings returns all content carrying a vector embedding.
func (r *CurriculumRepo) FindWithEmbeddings(ctx context.Context) []sage.CurriculumContent {
	return r.find(ctx, "find content with embeddings", "vector_embedding IS NOT NULL")
}

// FindSimilar performs brute-force cosine similarity search over embedded
// content and returns at most k entities, most similar first. The query
// vector is passed through unmodified; rows whose stored vector has a
// different dimensionality simply score zero.
func (r *CurriculumRepo) FindSimilar(ctx context.Context, query []float32, k int) []sage.CurriculumContent {
	start := time.Now()
	candidates := r.FindWithEmbeddings(ctx)
	if len(candidates) == 0 || k <= 0 {
		return nil
	}

	type scored struct {
		content sage.CurriculumContent
		score   float32
	}
	results := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, scored{content: c, score: cosineSimilarity(query, c.Embedding)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > k {
		results = results[:k]
	}

	out := make([]sage.CurriculumContent, len(results))
	for i, s := range results {
		out[i] = s.content
	}
	r.log.Debug("sqlite: find similar ok", "scanned", len(candidates), "returned", len(out), "duration", time.Since(start))
	return out
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Mismatched or empty vectors score zero.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}
