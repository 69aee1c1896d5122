package catalog

// LessonType is the kind of content a lesson carries.
type LessonType string

const (
	LessonText  LessonType = "text"
	LessonVideo LessonType = "video"
	LessonTest  LessonType = "test"
)

// Lesson is one ordered step of a course.
type Lesson struct {
	ID       string     `json:"id" validate:"required"`
	CourseID string     `json:"-"`
	Title    string     `json:"title" validate:"required"`
	Order    int        `json:"order" validate:"gte=0"`
	Type     LessonType `json:"type" validate:"required,oneof=text video test"`

	// TestID is set iff Type is test.
	TestID string `json:"testId,omitempty" validate:"required_if=Type test,excluded_unless=Type test"`

	Content  string `json:"content,omitempty"`
	VideoURL string `json:"videoUrl,omitempty" validate:"omitempty,url"`

	RequiresPrevious            bool `json:"requiresPrevious"`
	IsFinalTest                 bool `json:"isFinalTest"`
	FinalTestRequiresAllLessons bool `json:"finalTestRequiresAllLessons"`
	FinalTestRequiresAllTests   bool `json:"finalTestRequiresAllTests"`
}

// IsTest reports whether the lesson hosts a test.
func (l Lesson) IsTest() bool { return l.Type == LessonTest }

// Course is an ordered collection of lessons.
type Course struct {
	ID          string   `json:"id" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description,omitempty"`
	Lessons     []Lesson `json:"lessons" validate:"required,min=1,dive"`
}

// QuestionType selects how an answer is compared.
type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
	QuestionText     QuestionType = "text"
	QuestionMatching QuestionType = "matching"
)

// TextCheck selects whether a text answer is graded automatically.
type TextCheck string

const (
	TextCheckAutomatic TextCheck = "automatic"
	TextCheckManual    TextCheck = "manual"
)

// MatchPair is one left/right pair of a matching question. The student
// orders the right-hand sides to line up with the left-hand sides.
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Question is one item of a test.
type Question struct {
	ID     string       `json:"id" validate:"required"`
	Type   QuestionType `json:"type" validate:"required"`
	Prompt string       `json:"prompt" validate:"required"`
	Points int          `json:"points" validate:"gte=0"` // zero means DefaultPoints

	Options        []string    `json:"options,omitempty"`
	CorrectAnswer  string      `json:"correctAnswer,omitempty"`
	CorrectAnswers []string    `json:"correctAnswers,omitempty"`
	Pairs          []MatchPair `json:"pairs,omitempty"`
	TextCheck      TextCheck   `json:"textCheck,omitempty" validate:"omitempty,oneof=automatic manual"`
}

// IsManual reports whether the question needs a human grader.
func (q Question) IsManual() bool {
	return q.Type == QuestionText && q.TextCheck == TextCheckManual
}

// Test is a timed set of questions attached to a test lesson.
type Test struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title" validate:"required"`

	// TimeLimit is in minutes. Zero means untimed.
	TimeLimit int `json:"timeLimit" validate:"gte=0"`
	// PassScore is a percentage. Zero means DefaultPassScore.
	PassScore int `json:"passScore" validate:"gte=0,lte=100"`

	// MaxAttempts nil or zero means unlimited.
	MaxAttempts *int `json:"maxAttempts,omitempty" validate:"omitempty,gte=0"`

	Questions []Question `json:"questions" validate:"dive"`
}

// TotalPoints sums the points of every question.
func (t Test) TotalPoints() int {
	total := 0
	for _, q := range t.Questions {
		total += q.Points
	}
	return total
}

// Document is the on-disk catalog format.
type Document struct {
	Version string   `json:"version" validate:"required"`
	Courses []Course `json:"courses" validate:"dive"`
	Tests   []Test   `json:"tests" validate:"dive"`
}
