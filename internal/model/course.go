package model

// Course is a single catalog entry. Every field is a string so the backing
// file keeps a uniform schema; empty optional fields persist as "".
type Course struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Instructor    string `json:"instructor"`
	Semester      string `json:"semester"`
	Schedule      string `json:"schedule"`
	Classroom     string `json:"classroom"`
	Prerequisites string `json:"prerequisites"`
	Grading       string `json:"grading"`
	Description   string `json:"description"`
}

// CreateCourseRequest is the payload for submitting a course, accepted as
// JSON or as a URL-encoded form. Binding only bounds the code length; the
// catalog rules live in validator.ValidateCourse.
type CreateCourseRequest struct {
	Code          string `json:"code" form:"code" binding:"max=64"`
	Name          string `json:"name" form:"name"`
	Instructor    string `json:"instructor" form:"instructor"`
	Semester      string `json:"semester" form:"semester"`
	Schedule      string `json:"schedule" form:"schedule"`
	Classroom     string `json:"classroom" form:"classroom"`
	Prerequisites string `json:"prerequisites" form:"prerequisites"`
	Grading       string `json:"grading" form:"grading"`
	Description   string `json:"description" form:"description"`
}

// Fields flattens the request into the field map the validator consumes.
func (r CreateCourseRequest) Fields() map[string]string {
	return map[string]string{
		"code":          r.Code,
		"name":          r.Name,
		"instructor":    r.Instructor,
		"semester":      r.Semester,
		"schedule":      r.Schedule,
		"classroom":     r.Classroom,
		"prerequisites": r.Prerequisites,
		"grading":       r.Grading,
		"description":   r.Description,
	}
}
