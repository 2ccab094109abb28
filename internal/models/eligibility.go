package models

// EligibilityResult is the derived (never stored) assessment of whether a
// student may take a course. Prerequisite satisfaction is evaluated one level
// deep over the declared edges; deeper chains are only enforced if the
// catalog pre-populates them.
type EligibilityResult struct {
	CourseID           string      `json:"course_id"`
	PrerequisitesMet   bool        `json:"prerequisites_met"`
	UnmetPrerequisites []CourseRef `json:"unmet_prerequisites"`
	HasCapacity        bool        `json:"has_capacity"`
}
