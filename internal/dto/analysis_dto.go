package dto

type AnalysisRequest struct {
	Transcript     string `json:"transcript"`
	JobDescription string `json:"job_description"`
}
