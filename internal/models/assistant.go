package models

// AssistantID names one of the backend's chat personas.
type AssistantID string

const (
	AssistantTypeX              AssistantID = "typeX"
	AssistantReferences         AssistantID = "references"
	AssistantAcademicReferences AssistantID = "academicReferences"
	AssistantTherapyGPT         AssistantID = "therapyGPT"
	AssistantWhatsTrendy        AssistantID = "whatsTrendy"

	DefaultAssistant = AssistantTypeX
)

// CourseAssistantKey is the lookup key used for welcome text and suggestions in a course-scoped chat.
// It is never sent to the backend as an assistant id.
const CourseAssistantKey = "course"

// Assistants lists the personas in display order.
var Assistants = []AssistantID{
	AssistantTypeX,
	AssistantReferences,
	AssistantAcademicReferences,
	AssistantTherapyGPT,
	AssistantWhatsTrendy,
}

func (a AssistantID) Valid() bool {
	for _, known := range Assistants {
		if a == known {
			return true
		}
	}
	return false
}

func (a AssistantID) String() string {
	return string(a)
}
