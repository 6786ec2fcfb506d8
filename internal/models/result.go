package models

import "time"

type SessionResponse struct {
	ID                 string     `json:"id"`
	ResumeFilename     string     `json:"resume_filename,omitempty"`
	HasResume          bool       `json:"has_resume"`
	ResumePageCount    int        `json:"resume_page_count"`
	JobDescription     string     `json:"job_description"`
	JobDescriptionMode string     `json:"job_description_mode"`
	LastCritique       string     `json:"last_critique,omitempty"`
	Messages           []TurnPair `json:"messages"`
	Pending            bool       `json:"pending"`
	CreatedAt          time.Time  `json:"created_at"`
}

type UploadResponse struct {
	Filename  string `json:"filename"`
	PageCount int    `json:"page_count"`
	TextChars int    `json:"text_chars"`
}

type JobDescriptionTextRequest struct {
	Text string `json:"text"`
}

type JobDescriptionURLRequest struct {
	URL string `json:"url"`
}

type JobDescriptionModeRequest struct {
	Mode string `json:"mode"`
}

type JobDescriptionResponse struct {
	JobDescription string `json:"job_description"`
	Success        bool   `json:"success"`
}

type AnalyzeResponse struct {
	ContentCritique string     `json:"content_critique"`
	LayoutCritique  string     `json:"layout_critique"`
	FailedPaths     []string   `json:"failed_paths,omitempty"`
	Messages        []TurnPair `json:"messages"`
}

type ReviseRequest struct {
	ExtraInstructions string `json:"extra_instructions"`
}

type ReviseResponse struct {
	Revision string     `json:"revision"`
	Messages []TurnPair `json:"messages"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply    string     `json:"reply"`
	Messages []TurnPair `json:"messages"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
