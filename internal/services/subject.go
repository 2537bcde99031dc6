package services

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/gr1shq/showdesk/internal/models"
)

const subjectExcerptLimit = 2000

// SubjectClassifier detects the educational subject of a transcript.
type SubjectClassifier struct {
	gen TextGenerator
	log *logrus.Logger
}

func NewSubjectClassifier(gen TextGenerator, log *logrus.Logger) *SubjectClassifier {
	return &SubjectClassifier{gen: gen, log: log}
}

// Detect never fails: any provider or parse problem degrades to the
// unknown subject with the failure reason in the topic field.
func (c *SubjectClassifier) Detect(ctx context.Context, transcript string) models.SubjectInfo {
	prompt := buildSubjectPrompt(truncate(transcript, subjectExcerptLimit))

	raw, err := c.gen.GenerateText(ctx, prompt)
	if err != nil {
		c.log.WithError(err).Warn("subject detection call failed")
		return models.UnknownSubject(err.Error())
	}

	value, ok := ExtractJSON(raw)
	if !ok {
		c.log.WithField("response", raw).Warn("subject detection returned unparsable response")
		return models.UnknownSubject("unable to parse detection response")
	}

	var info models.SubjectInfo
	if err := json.Unmarshal(value, &info); err != nil {
		c.log.WithField("response", raw).Warn("subject detection returned wrong-shaped response")
		return models.UnknownSubject(err.Error())
	}

	if info.Subject == "" {
		info.Subject = models.SubjectUnknown
	}
	if info.Level == "" {
		info.Level = "unknown"
	}
	if info.Concepts == nil {
		info.Concepts = []string{}
	}
	return info
}

func buildSubjectPrompt(excerpt string) string {
	return fmt.Sprintf(`Analyze this educational content and respond with ONLY valid JSON:

{
    "subject": "one of: coding, history, science, math, language, art, business, other",
    "topic": "specific topic being taught",
    "level": "beginner, intermediate, or advanced",
    "concepts": ["concept1", "concept2", "concept3"]
}

Content to analyze:
%s

Remember: Response must be ONLY the JSON object, nothing else.`, excerpt)
}

// truncate cuts s to at most limit bytes without splitting a UTF-8 rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
