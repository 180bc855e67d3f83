package models

// ComplexityLevel represents the complexity level of a course
type ComplexityLevel string

const (
	ComplexityLevelAbsoluteBeginner  ComplexityLevel = "Absolute beginner"
	ComplexityLevelBeginner          ComplexityLevel = "Beginner"
	ComplexityLevelIntermediate      ComplexityLevel = "Intermediate"
	ComplexityLevelUpperIntermediate ComplexityLevel = "Upper Intermediate"
	ComplexityLevelAdvanced          ComplexityLevel = "Advanced"
)

// Course is the course aggregate.
// ContentVersion equals the number of entries ever appended to the content list
// and is used as the optimistic concurrency token when appending.
type Course struct {
	ID              int             `json:"id"`
	Slug            string          `json:"slug"`
	AuthorID        int             `json:"authorId"`
	Title           string          `json:"title"`
	ShortSummary    string          `json:"shortSummary"`
	ComplexityLevel ComplexityLevel `json:"complexityLevel"`
	ContentVersion  int             `json:"contentVersion"`
}

// CourseWithContents is a course with its content list resolved into content records, in list order
type CourseWithContents struct {
	Course
	Contents []CourseContent `json:"contents"`
}
