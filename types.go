package sage

import "fmt"

// Interaction input types.
const (
	InputText  = "text"
	InputVoice = "voice"
	InputImage = "image"
)

// EmbeddingDim is the platform-wide embedding size. The curriculum vector
// column is declared with this dimensionality and it is the only field
// eligible for nearest-neighbor queries.
const EmbeddingDim = 384

// Student is a learner profile. The zero ID means "not yet persisted";
// the repository assigns the identity on first Create.
type Student struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	LearningPreferences string `json:"learning_preferences"`
	CreatedAt           int64  `json:"created_at"` // epoch milliseconds
	UpdatedAt           int64  `json:"updated_at"`
}

// NewStudent creates a Student with both timestamps set to now.
func NewStudent(name, email string) Student {
	now := NowUnixMilli()
	return Student{Name: name, Email: email, CreatedAt: now, UpdatedAt: now}
}

// UpdatePreferences replaces the learning preferences and advances UpdatedAt.
// UpdatedAt always strictly increases, even within one clock millisecond.
func (s *Student) UpdatePreferences(preferences string) {
	s.LearningPreferences = preferences
	s.UpdatedAt = bump(s.UpdatedAt)
}

func (s Student) String() string {
	return fmt.Sprintf("Student(id=%d, name=%q, email=%q)", s.ID, s.Name, s.Email)
}

// Interaction is one student exchange with an agent.
type Interaction struct {
	ID            int64  `json:"id"`
	StudentID     int64  `json:"student_id"`
	InputType     string `json:"input_type"` // text, voice, or image
	InputContent  string `json:"input_content"`
	AgentResponse string `json:"agent_response"`
	Timestamp     int64  `json:"timestamp"` // epoch milliseconds
	SessionID     string `json:"session_id"`
}

// NewInteraction creates an Interaction stamped with the current time.
func NewInteraction(studentID int64, inputType, content, response, sessionID string) Interaction {
	return Interaction{
		StudentID:     studentID,
		InputType:     inputType,
		InputContent:  content,
		AgentResponse: response,
		Timestamp:     NowUnixMilli(),
		SessionID:     sessionID,
	}
}

// IsMultimodal reports whether the interaction carries voice or image input.
func (i Interaction) IsMultimodal() bool {
	return i.InputType == InputVoice || i.InputType == InputImage
}

func (i Interaction) String() string {
	return fmt.Sprintf("Interaction(id=%d, student_id=%d, type=%q)", i.ID, i.StudentID, i.InputType)
}

// LearningProgress tracks a student's advancement through one topic.
type LearningProgress struct {
	ID                   int64   `json:"id"`
	StudentID            int64   `json:"student_id"`
	Subject              string  `json:"subject"`
	Topic                string  `json:"topic"`
	CompletionPercentage float64 `json:"completion_percentage"`
	PerformanceScore     float64 `json:"performance_score"`
	LastAccessed         int64   `json:"last_accessed"` // epoch milliseconds
}

// NewLearningProgress creates a progress record stamped with the current time.
func NewLearningProgress(studentID int64, subject, topic string) LearningProgress {
	return LearningProgress{
		StudentID:    studentID,
		Subject:      subject,
		Topic:        topic,
		LastAccessed: NowUnixMilli(),
	}
}

// UpdateProgress sets both metrics, clamped into [0, 100], and advances
// LastAccessed. Only this mutator clamps; the struct fields themselves are
// not self-enforcing.
func (p *LearningProgress) UpdateProgress(completion, score float64) {
	p.CompletionPercentage = clamp(completion, 0, 100)
	p.PerformanceScore = clamp(score, 0, 100)
	p.LastAccessed = bump(p.LastAccessed)
}

// IsCompleted reports whether the topic has reached exactly 100%.
func (p LearningProgress) IsCompleted() bool {
	return p.CompletionPercentage >= 100.0
}

func (p LearningProgress) String() string {
	return fmt.Sprintf("LearningProgress(id=%d, subject=%q, topic=%q, %.1f%%)",
		p.ID, p.Subject, p.Topic, p.CompletionPercentage)
}

// CurriculumContent is a unit of educational material, optionally carrying a
// vector embedding for similarity search.
type CurriculumContent struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Subject         string    `json:"subject"`
	DifficultyLevel int       `json:"difficulty_level"` // 1..10
	ContentType     string    `json:"content_type"`
	CreatedAt       int64     `json:"created_at"` // epoch milliseconds
	UpdatedAt       int64     `json:"updated_at"`
	Embedding       []float32 `json:"-"` // nil when not embedded
}

// NewCurriculumContent creates a content record with both timestamps set to now.
func NewCurriculumContent(title, body, subject string, difficulty int, contentType string) CurriculumContent {
	now := NowUnixMilli()
	return CurriculumContent{
		Title:           title,
		Content:         body,
		Subject:         subject,
		DifficultyLevel: difficulty,
		ContentType:     contentType,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// UpdateContent replaces the body and advances UpdatedAt.
func (c *CurriculumContent) UpdateContent(body string) {
	c.Content = body
	c.UpdatedAt = bump(c.UpdatedAt)
}

// IsAdvanced reports whether the content is above difficulty 7.
func (c CurriculumContent) IsAdvanced() bool {
	return c.DifficultyLevel > 7
}

func (c CurriculumContent) String() string {
	return fmt.Sprintf("CurriculumContent(id=%d, title=%q, subject=%q, difficulty=%d)",
		c.ID, c.Title, c.Subject, c.DifficultyLevel)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// bump returns the current epoch-millisecond time, advanced past prev when
// two mutations land inside the same clock millisecond.
func bump(prev int64) int64 {
	now := NowUnixMilli()
	if now <= prev {
		return prev + 1
	}
	return now
}
