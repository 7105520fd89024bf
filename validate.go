package sage

import (
	"regexp"
	"strings"
)

// emailRe accepts the basic x@y.z shape: one local part, one @, and a dot
// somewhere in the domain. Not RFC 5322.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateStudent returns human-readable problems with s.
// An empty slice means the record is valid.
func ValidateStudent(s Student) []string {
	var errs []string
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "Student name cannot be empty")
	}
	if len(s.Name) > 100 {
		errs = append(errs, "Student name cannot exceed 100 characters")
	}
	if !emailRe.MatchString(s.Email) {
		errs = append(errs, "Student email must be valid")
	}
	return errs
}

// ValidateInteraction returns human-readable problems with i.
func ValidateInteraction(i Interaction) []string {
	var errs []string
	if i.StudentID < 1 {
		errs = append(errs, "Interaction must have valid student_id")
	}
	switch i.InputType {
	case InputText, InputVoice, InputImage:
	default:
		errs = append(errs, "Input type must be 'text', 'voice', or 'image'")
	}
	if i.InputContent == "" {
		errs = append(errs, "Input content cannot be empty")
	}
	if i.SessionID == "" {
		errs = append(errs, "Session ID cannot be empty")
	}
	return errs
}

// ValidateLearningProgress returns human-readable problems with p.
func ValidateLearningProgress(p LearningProgress) []string {
	var errs []string
	if p.StudentID < 1 {
		errs = append(errs, "Learning progress must have valid student_id")
	}
	if strings.TrimSpace(p.Subject) == "" {
		errs = append(errs, "Subject cannot be empty")
	}
	if strings.TrimSpace(p.Topic) == "" {
		errs = append(errs, "Topic cannot be empty")
	}
	if p.CompletionPercentage < 0 || p.CompletionPercentage > 100 {
		errs = append(errs, "Completion percentage must be between 0 and 100")
	}
	if p.PerformanceScore < 0 || p.PerformanceScore > 100 {
		errs = append(errs, "Performance score must be between 0 and 100")
	}
	return errs
}

// ValidateCurriculumContent returns human-readable problems with c.
func ValidateCurriculumContent(c CurriculumContent) []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "Content title cannot be empty")
	}
	if strings.TrimSpace(c.Content) == "" {
		errs = append(errs, "Content body cannot be empty")
	}
	if strings.TrimSpace(c.Subject) == "" {
		errs = append(errs, "Subject cannot be empty")
	}
	if c.DifficultyLevel < 1 || c.DifficultyLevel > 10 {
		errs = append(errs, "Difficulty level must be between 1 and 10")
	}
	if strings.TrimSpace(c.ContentType) == "" {
		errs = append(errs, "Content type cannot be empty")
	}
	return errs
}

// ValidateInputType reports whether content is acceptable for the given
// interaction input type. Text must be non-blank; voice and image payload
// references must be non-empty; unknown types are always rejected.
func ValidateInputType(content, inputType string) bool {
	switch inputType {
	case InputText:
		return strings.TrimSpace(content) != ""
	case InputVoice, InputImage:
		return content != ""
	default:
		return false
	}
}

// SanitizeString trims whitespace, strips NUL bytes, and truncates to maxLen
// runes with a trailing ellipsis. maxLen <= 0 means the default of 1000.
func SanitizeString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 1000
	}
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\x00", "")
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return s
}
