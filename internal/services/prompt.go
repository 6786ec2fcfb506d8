package services

import (
	"fmt"
	"strings"
)

// ChatbotSystemPrompt seeds every new conversation.
const ChatbotSystemPrompt = "This is a conversation between a human and an AI. " +
	"The AI is an honest and intelligent HR specialist with expertise in building effective resumes. " +
	"If the AI does not know the answer, it will say 'I don't know' and will not make up information."

// InvalidJobDescriptionMessage is returned by the text refinement step when
// no job information can be found.
const InvalidJobDescriptionMessage = "Please provide a valid job description in as text or URL link"

const jobExtractionQuery = "Extract the job information (role, responsibilities, requirements, qualifications, company) " +
	"from the page text given under CONTEXT. Return an empty string if there is no job description in it."

const layoutCritiqueSystemPrompt = `You are an honest and reliable HR specialist with expertise in building effective resumes.
You are not afraid to constructively comment on the weak aspects of the resume. Be honest, do not make up information.
You will be given the pages of a resume as images. Critique the visual aspects of the resume, focusing on:

1. Layout and structure: clear and logical sections, enough white space between sections, consistent alignment of headings, bullet points and text blocks, balanced margins.
2. Fonts: professional and readable typefaces, appropriate sizes for headings and body text, one font family throughout with bold and italics reserved for emphasis, a visual hierarchy that makes the name and job titles stand out.
3. Color scheme: choice of colors for text, highlights and headings.
4. Visual elements: whether icons or graphics are appropriate and professional for the target role.
5. Emphasis: use of bold and italics for names, job titles and section headers.
6. Consistency: uniform formatting of dates, locations and bullet points, and equal spacing between headings and paragraphs.
7. Length and page breaks: whether the length is appropriate and page breaks fall cleanly between sections.
8. Scannability: bullet points instead of large text blocks, and short sentences.

Be specific in your feedback. Suggest actionable improvements only where the resume does not already follow them.`

const jobRefinementSystemPrompt = `You are an HR specialist with expertise in building effective resumes.
You will be given a job description in text, which may reference URLs describing the job and its requirements.
Information already extracted from those URLs is provided below the original text.
Append the extracted information to the original job description only if it is relevant to the job.

Your output only contains information about the job description and requirements, exclude any filler text.
If there is no relevant information, return '` + InvalidJobDescriptionMessage + `'`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildContentCritiquePrompt creates the content critique prompt. The job
// description section is only present when jobDescription is not empty.
func (pb *PromptBuilder) BuildContentCritiquePrompt(resume, jobDescription, guidelines string) string {
	var b strings.Builder

	b.WriteString("You are an HR specialist with expertise in building effective resumes.\n")
	b.WriteString("You are not afraid to constructively comment on the weak aspects of the resume. Be honest, do not make up information.\n")

	if jobDescription != "" {
		b.WriteString(`You will be given a job description and a resume. Based on the job description, critique the resume by focusing on the following:

- How well the resume highlights the required skills and qualifications.
- Areas where the resume could better align with the job description.
- Suggestions for enhancing the structure, formatting, or presentation.
- Any missing or underemphasized experiences or accomplishments that could strengthen the resume.
- Content that adds no value to the resume with respect to the job description.

Be specific in your feedback and suggest actionable improvements. Also consider the job level of the resume and the job description. If the resume is not suitable for the job, explain why.
`)
	} else {
		b.WriteString(`You will be given a resume. Critique the resume by focusing on the following:

- How well the resume highlights the candidate's skills and qualifications.
- Suggestions for enhancing the structure, formatting, or presentation.
- Any missing or underemphasized experiences or accomplishments that could strengthen the resume.
- Content that adds no value to the resume.

Be specific in your feedback and suggest actionable improvements. Also consider the job level of the resume.
`)
	}

	if guidelines != "" {
		fmt.Fprintf(&b, "\nREFERENCE GUIDELINES:\n%s\n", guidelines)
	}

	fmt.Fprintf(&b, "\n<START OF RESUME>\n%s\n<END OF RESUME>\n", resume)

	if jobDescription != "" {
		fmt.Fprintf(&b, "\n<START OF JOB DESCRIPTION>\n%s\n<END OF JOB DESCRIPTION>\n", jobDescription)
	}

	return b.String()
}

func (pb *PromptBuilder) LayoutCritiqueSystemPrompt() string {
	return layoutCritiqueSystemPrompt
}

func (pb *PromptBuilder) BuildLayoutJobDescription(jobDescription string) string {
	return fmt.Sprintf("# Job description:\n\n%s", jobDescription)
}

// BuildRevisionPrompt creates the rewrite prompt. Without a job description
// the prompt forbids inventing facts and has no job description section.
func (pb *PromptBuilder) BuildRevisionPrompt(resume, critique, jobDescription, extraInstructions string) string {
	var b strings.Builder

	if jobDescription != "" {
		b.WriteString("You are a senior career advisor. You are given an original resume, a job description and a critique on the strengths and weaknesses of the resume.\n")
	} else {
		b.WriteString("You are a responsible and honest senior career advisor. You are given an original resume and a critique on the strengths and weaknesses of the resume.\n")
	}
	b.WriteString("Your task is to use the critique to improve the resume. The improved version should address the weak points of the resume and implement the recommendations as needed.\n")
	if jobDescription == "" {
		b.WriteString("DO NOT make up facts that did not exist in the original resume.\n")
	}
	b.WriteString("The output should only contain the improved resume, nothing else. The improved resume should be formatted in Markdown.\n")
	if extraInstructions != "" {
		fmt.Fprintf(&b, "%s\n", extraInstructions)
	}

	fmt.Fprintf(&b, "\n<START OF RESUME>\n%s\n<END OF RESUME>\n", resume)
	if jobDescription != "" {
		fmt.Fprintf(&b, "\n<START OF JOB DESCRIPTION>\n%s\n<END OF JOB DESCRIPTION>\n", jobDescription)
	}
	fmt.Fprintf(&b, "\n<START OF CRITIQUE>\n%s\n<END OF CRITIQUE>\n\nIMPROVED RESUME:\n", critique)

	return b.String()
}

// BuildJobExtractionPrompt asks for the job information inside one chunk of
// page text.
func (pb *PromptBuilder) BuildJobExtractionPrompt(pageText string) string {
	return fmt.Sprintf(`CONTEXT:
---------------------
%s
---------------------

Given the context information and not prior knowledge, answer the query.
QUERY: %s
ANSWER:`, pageText, jobExtractionQuery)
}

// BuildJobCombinePrompt merges partial extractions of a long page.
func (pb *PromptBuilder) BuildJobCombinePrompt(partials []string) string {
	var parts []string
	for i, p := range partials {
		parts = append(parts, fmt.Sprintf("--- Part %d ---\n%s", i+1, strings.TrimSpace(p)))
	}
	return pb.BuildJobExtractionPrompt(strings.Join(parts, "\n\n"))
}

// ExtractedPosting is job information pulled from a URL found in free text.
type ExtractedPosting struct {
	URL     string
	Content string
}

func (pb *PromptBuilder) BuildJobRefinementPrompt(text string, postings []ExtractedPosting) string {
	var b strings.Builder

	b.WriteString(jobRefinementSystemPrompt)
	fmt.Fprintf(&b, "\n\nORIGINAL JOB DESCRIPTION:\n%s\n", text)

	if len(postings) == 0 {
		b.WriteString("\nEXTRACTED FROM URLS:\nNone.\n")
	} else {
		b.WriteString("\nEXTRACTED FROM URLS:\n")
		for _, p := range postings {
			fmt.Fprintf(&b, "--- %s ---\n%s\n", p.URL, strings.TrimSpace(p.Content))
		}
	}

	b.WriteString("\nJOB DESCRIPTION:\n")
	return b.String()
}

// BuildGuidelineQuery creates the retrieval query for resume guidelines.
func (pb *PromptBuilder) BuildGuidelineQuery(resume string) string {
	return fmt.Sprintf("Resume writing best practices and evaluation criteria for this resume:\n%s", resume)
}

// FormatGuidelineContext renders retrieved guideline chunks.
func FormatGuidelineContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Guideline %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
