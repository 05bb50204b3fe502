package quiz_api_client

// Consumed quiz service endpoints. The exit contract uses the path-variable
// form; the legacy body-based variant is not replicated.
const (
	StartPath          = "/start"
	ExitPathFormat     = "/players/%s/exit"
	QuestionPathFormat = "/api/questions/%d"
	QuestionsPath      = "/api/questions"
	ChangeQuestionPath = "/api/change-question"
	SubmitAnswerPath   = "/api/submit-answer"

	AdminStreamPath  = "/stream/admin"
	PlayerStreamPath = "/stream/player"
)
