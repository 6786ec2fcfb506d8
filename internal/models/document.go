package models

// Document is the plain text extracted from an uploaded file. It only lives
// long enough to populate a session's resume text or job description.
type Document struct {
	Filename  string
	Text      string
	PageCount int
}

// Image is one rasterized page of a resume, PNG encoded.
type Image struct {
	Page int
	PNG  []byte
}
