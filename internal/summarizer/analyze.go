package summarizer

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/deusflow/newsdigest/internal/gemini"
	"github.com/deusflow/newsdigest/internal/normalize"
)

// Analysis is the response to a pasted-text summary request.
type Analysis struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
	Questions []string `json:"questions"`
	Note      string   `json:"note,omitempty"`
}

// Answer is the response to a question about pasted text.
type Answer struct {
	Answer string `json:"answer"`
	Note   string `json:"note,omitempty"`
}

const analysisPrompt = `Please analyze this article and provide:

1. A concise 2-3 sentence summary
2. 3-5 key points as bullet points
3. 3-5 relevant questions that could be asked about this content

Article: %s

Please format your response as:
Summary: [your summary here]

Key Points:
- [point 1]
- [point 2]
- [point 3]

Questions:
- [question 1]
- [question 2]
- [question 3]`

const questionPrompt = `
Based on the following article, please answer the question below. Provide a clear, concise, and accurate answer based only on the information provided in the article.

Article: %s

Question: %s

Please provide a direct answer to the question based on the article content. If the article doesn't contain enough information to answer the question, please state that clearly.
`

var (
	basicQuestions = []string{
		"What is the main topic or theme of this content?",
		"What are the key concepts or ideas presented?",
		"What conclusions or insights can be drawn from this information?",
		"How does this content relate to current trends or developments?",
		"What implications does this information have for readers?",
	}
	basicKeyPoints = []string{
		"Contains various topics and themes",
		"Addresses multiple subjects",
		"Presents complex information",
	}
	parsedKeyPointsFallback = []string{
		"Key points could not be extracted automatically",
		"Please review the article for main topics",
		"Consider the article's main arguments and conclusions",
	}
	parsedQuestionsFallback = []string{
		"What is the main topic of this article?",
		"What are the key arguments presented?",
		"What conclusions can be drawn from this content?",
	}
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true, "in": true,
	"on": true, "at": true, "to": true, "for": true, "of": true, "with": true, "by": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "can": true, "this": true,
	"that": true, "these": true, "those": true, "it": true, "its": true, "they": true,
	"them": true, "their": true, "we": true, "us": true, "our": true, "you": true, "your": true,
	"i": true, "me": true, "my": true,
}

// AnalyzeText summarizes pasted text into a summary, key points and questions.
func (s *Summarizer) AnalyzeText(ctx context.Context, article string) (a Analysis) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("analyze panic", "panic", r)
			a = BasicAnalysis(article)
			a.Note = NoteFallback
		}
	}()

	if s.gen == nil {
		a = BasicAnalysis(article)
		a.Note = NoteFallback
		return a
	}

	text, err := s.generate(ctx, fmt.Sprintf(analysisPrompt, article),
		gemini.GenerateOptions{MaxTokens: 1000, Temperature: 0.3})
	if err == nil && text == "" {
		err = gemini.ErrEmptyResponse
	}
	if err != nil {
		s.log.Warn("AI analysis failed, using basic processing", "error", err, "quota", isQuota(err))
		a = BasicAnalysis(article)
		a.Note = noteFor(err)
		return a
	}
	return parseAnalysis(text)
}

// BasicAnalysis is the deterministic analyzer used without AI.
func BasicAnalysis(text string) Analysis {
	clean := collapse(text)

	var summary string
	if utf8.RuneCountInString(clean) < shortDescriptionLen {
		summary = HeuristicSummary(strings.TrimRight(clean, "."), "")
	} else {
		sentences := splitSentences(clean, 10, nil)
		if len(sentences) > 0 {
			summary = strings.Join(sentences[:min(2, len(sentences))], ". ") + "."
		} else {
			summary = normalize.Truncate(clean, 150) + "..."
		}
		summary = capWithEllipsis(summary, 300)
	}

	keyPoints := slices.Clone(basicKeyPoints)
	if top := topWords(clean, 5); len(top) > 0 {
		keyPoints = keyPoints[:0]
		for _, w := range top {
			keyPoints = append(keyPoints, fmt.Sprintf("Discusses %s and related concepts", w))
		}
	}

	return Analysis{
		Summary:   summary,
		KeyPoints: keyPoints,
		Questions: slices.Clone(basicQuestions),
	}
}

// topWords returns the n most frequent meaningful words; ties keep first-seen order.
func topWords(text string, n int) []string {
	counts := map[string]int{}
	var order []string
	for _, w := range meaningfulWords(text, 3) {
		if stopWords[w] || isNumeric(w) {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	slices.SortStableFunc(order, func(a, b string) int { return counts[b] - counts[a] })
	return order[:min(n, len(order))]
}

// meaningfulWords lowercases, strips surrounding punctuation and keeps words
// longer than minLen runes.
func meaningfulWords(text string, minLen int) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if utf8.RuneCountInString(w) > minLen {
			out = append(out, w)
		}
	}
	return out
}

func isNumeric(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return w != ""
}

var (
	headerRe = regexp.MustCompile(`(?i)^[#*\s\d.]*(summary|key\s*points?|questions?)[*\s]*(?::(.*))?$`)
	bulletRe = regexp.MustCompile(`^(?:[-•*]\s*|\d+[.)]\s+)`)
)

// parseAnalysis reads the Summary / Key Points / Questions sections of an AI response.
func parseAnalysis(resp string) Analysis {
	var (
		section   string
		summary   []string
		keyPoints []string
		questions []string
	)

	for _, raw := range strings.Split(resp, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := headerRe.FindStringSubmatch(line); m != nil {
			section = sectionName(m[1])
			if rest := strings.Trim(m[2], "* "); rest != "" && section == "summary" {
				summary = append(summary, rest)
			}
			continue
		}

		if bulletRe.MatchString(line) {
			point := strings.Trim(bulletRe.ReplaceAllString(line, ""), "* ")
			if point == "" {
				continue
			}
			switch section {
			case "keyPoints":
				keyPoints = append(keyPoints, point)
			case "questions":
				questions = append(questions, point)
			}
			continue
		}

		if section == "summary" {
			summary = append(summary, line)
		}
	}

	a := Analysis{
		Summary:   strings.Join(summary, " "),
		KeyPoints: keyPoints,
		Questions: questions,
	}
	if a.Summary == "" {
		a.Summary = normalize.Truncate(strings.TrimSpace(resp), 200) + "..."
	}
	if len(a.KeyPoints) == 0 {
		a.KeyPoints = slices.Clone(parsedKeyPointsFallback)
	}
	if len(a.Questions) == 0 {
		a.Questions = slices.Clone(parsedQuestionsFallback)
	}
	return a
}

func sectionName(label string) string {
	l := strings.ToLower(label)
	switch {
	case strings.HasPrefix(l, "summary"):
		return "summary"
	case strings.HasPrefix(l, "key"):
		return "keyPoints"
	default:
		return "questions"
	}
}

// AskQuestion answers a question about pasted text.
func (s *Summarizer) AskQuestion(ctx context.Context, article, question string) (ans Answer) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("ask panic", "panic", r)
			ans = Answer{
				Answer: "AI question answering is temporarily unavailable. Please try again later.",
				Note:   "Error in fallback processing",
			}
		}
	}()

	if s.gen == nil {
		return Answer{Answer: SmartAnswer(article, question), Note: NoteFallback}
	}

	text, err := s.generate(ctx, fmt.Sprintf(questionPrompt, article, question),
		gemini.GenerateOptions{MaxTokens: 500, Temperature: 0.3})
	if err != nil {
		s.log.Warn("AI answer failed, using basic processing", "error", err, "quota", isQuota(err))
		return Answer{Answer: SmartAnswer(article, question), Note: noteFor(err)}
	}
	if text == "" {
		return Answer{Answer: SmartAnswer(article, question), Note: NoteFallback}
	}
	return Answer{Answer: text}
}

// SmartAnswer picks a canned answer shape from the question wording and
// fills it with the article's first long words.
func SmartAnswer(article, question string) string {
	q := strings.ToLower(question)
	words := meaningfulWords(article, 4)

	switch {
	case strings.Contains(q, "main topic") || (strings.Contains(q, "what") && strings.Contains(q, "about")):
		return fmt.Sprintf("Based on the article content, the main topics discussed include: %s. "+
			"The article appears to focus on these key areas.", strings.Join(words[:min(3, len(words))], ", "))
	case strings.Contains(q, "how"):
		return "The article describes various processes and mechanisms. To get specific details about how things work, " +
			"you would need to refer to the full article content for technical explanations."
	case strings.Contains(q, "why"):
		return "The article likely discusses the significance and importance of the topics covered. " +
			"The relevance and impact of these subjects are key themes in the content."
	default:
		return fmt.Sprintf("Based on the article content, this appears to be about %s. "+
			"The article discusses various aspects of these topics. For a more detailed answer, "+
			"please refer to the full article content.", strings.Join(words[:min(5, len(words))], ", "))
	}
}
