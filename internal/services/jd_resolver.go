package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// MaxChunkSize bounds the page text sent to one extraction call.
const MaxChunkSize = 128000

// URLExtractionFailedMessage is the job description text of a failed URL extraction.
const URLExtractionFailedMessage = "Job description cannot be extracted from given URL"

var urlPattern = regexp.MustCompile(`https?://[^\s<>"'()\[\]{}]+`)

// Resolution is the outcome of one job description acquisition.
type Resolution struct {
	Text    string
	Success bool
	Err     error
}

// JobDescriptionResolver normalizes job descriptions from files, free text
// and URLs. It never returns errors past its boundary; failures are
// reported through Resolution.
type JobDescriptionResolver struct {
	normalizer    DocumentNormalizer
	fetcher       Fetcher
	extraction    TextModel
	chunker       *TextChunker
	promptBuilder *PromptBuilder
	logger        zerolog.Logger
}

func NewJobDescriptionResolver(
	normalizer DocumentNormalizer,
	fetcher Fetcher,
	extraction TextModel,
	logger zerolog.Logger,
) *JobDescriptionResolver {
	return &JobDescriptionResolver{
		normalizer:    normalizer,
		fetcher:       fetcher,
		extraction:    extraction,
		chunker:       NewTextChunker(MaxChunkSize, 0),
		promptBuilder: NewPromptBuilder(),
		logger:        logger,
	}
}

// FromFile reads a PDF or DOCX job posting.
func (r *JobDescriptionResolver) FromFile(filename string, data []byte) Resolution {
	doc, err := r.normalizer.Normalize(filename, data)
	if err != nil {
		r.logger.Warn().Err(err).Str("filename", filename).Msg("⚠️ Job description file could not be parsed")
		return Resolution{Err: fmt.Errorf("%w: %w", ErrExtractionFailed, err)}
	}
	return Resolution{Text: doc.Text, Success: true}
}

// FromText refines free text, pulling in job information from any URLs it
// references.
func (r *JobDescriptionResolver) FromText(ctx context.Context, text string) Resolution {
	text = strings.TrimSpace(text)
	if text == "" {
		return invalidJobDescription(fmt.Errorf("%w: empty job description", ErrExtractionFailed))
	}

	var postings []ExtractedPosting
	for _, u := range DetectURLs(text) {
		res := r.FromURL(ctx, u)
		if !res.Success {
			r.logger.Warn().Err(res.Err).Str("url", u).Msg("⚠️ Skipping URL referenced in job description")
			continue
		}
		postings = append(postings, ExtractedPosting{URL: u, Content: res.Text})
	}

	response, err := r.extraction.Complete(ctx, r.promptBuilder.BuildJobRefinementPrompt(text, postings))
	if err != nil {
		return invalidJobDescription(fmt.Errorf("%w: %w", ErrExtractionFailed, classifyModelError(err)))
	}

	response = strings.TrimSpace(response)
	if response == "" || strings.Contains(strings.ToLower(response), strings.ToLower(InvalidJobDescriptionMessage)) {
		return invalidJobDescription(fmt.Errorf("%w: no job information found", ErrExtractionFailed))
	}

	return Resolution{Text: response, Success: true}
}

// FromURL fetches a posting and extracts its job information.
func (r *JobDescriptionResolver) FromURL(ctx context.Context, rawURL string) Resolution {
	jd, err := r.extractFromURL(ctx, strings.TrimSpace(rawURL))
	if err != nil {
		r.logger.Warn().Err(err).Str("url", rawURL).Msg("⚠️ Job description URL extraction failed")
		return Resolution{
			Text: URLExtractionFailedMessage,
			Err:  fmt.Errorf("%w: %w", ErrExtractionFailed, err),
		}
	}
	return Resolution{Text: jd, Success: true}
}

func (r *JobDescriptionResolver) extractFromURL(ctx context.Context, rawURL string) (string, error) {
	if !urlPattern.MatchString(rawURL) {
		return "", fmt.Errorf("invalid url %q", rawURL)
	}

	body, err := r.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch url: %w", err)
	}

	chunks := r.chunker.Chunk(ExtractVisibleText(string(body)))
	if len(chunks) == 0 {
		return "", fmt.Errorf("page has no text content")
	}

	r.logger.Info().Str("url", rawURL).Int("chunks", len(chunks)).Msg("🔍 Extracting job information")

	var partials []string
	for _, chunk := range chunks {
		answer, err := r.extraction.Complete(ctx, r.promptBuilder.BuildJobExtractionPrompt(chunk))
		if err != nil {
			return "", fmt.Errorf("failed to extract job information: %w", classifyModelError(err))
		}
		if answer = strings.TrimSpace(answer); answer != "" {
			partials = append(partials, answer)
		}
	}

	switch len(partials) {
	case 0:
		return "", fmt.Errorf("no job information found")
	case 1:
		return partials[0], nil
	}

	combined, err := r.extraction.Complete(ctx, r.promptBuilder.BuildJobCombinePrompt(partials))
	if err != nil {
		return "", fmt.Errorf("failed to combine job information: %w", classifyModelError(err))
	}
	if combined = strings.TrimSpace(combined); combined == "" {
		return "", fmt.Errorf("no job information found")
	}
	return combined, nil
}

// DetectURLs returns the distinct http(s) URLs in text, in order of
// appearance, without trailing punctuation.
func DetectURLs(text string) []string {
	seen := map[string]bool{}
	var urls []string
	for _, match := range urlPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:!?")
		if !seen[match] {
			seen[match] = true
			urls = append(urls, match)
		}
	}
	return urls
}

func invalidJobDescription(err error) Resolution {
	return Resolution{Text: InvalidJobDescriptionMessage, Err: err}
}
