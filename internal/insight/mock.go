package insight

import (
	"context"
	"math/rand"
	"strings"
	"time"
)

// Mock generation is used for offline development and tests: it derives a
// plausible result from keyword matching against the topic and simulates
// upstream latency. It carries no correctness guarantees.

const (
	mockDelayMinMs = 800
	mockDelayMaxMs = 2000
)

type topicDomain int

const (
	domainGeneric topicDomain = iota
	domainAI
	domainNLP
)

func classifyTopic(topic string) topicDomain {
	lower := strings.ToLower(topic)
	switch {
	case strings.Contains(lower, "artificial") || strings.Contains(lower, "искусственн") ||
		strings.Contains(lower, " ai") || strings.HasPrefix(lower, "ai") || strings.Contains(lower, "ии"):
		return domainAI
	case strings.Contains(lower, "language") || strings.Contains(lower, "язык") ||
		strings.Contains(lower, "перевод") || strings.Contains(lower, "nlp"):
		return domainNLP
	default:
		return domainGeneric
	}
}

func mockDelay(ctx context.Context) error {
	delay := time.Duration(mockDelayMinMs+rand.Intn(mockDelayMaxMs-mockDelayMinMs+1)) * time.Millisecond
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func mockInsights(req AnalysisRequest) InsightResult {
	domain := classifyTopic(req.Topic)
	return InsightResult{
		Summary:      mockSummary(domain),
		KeyConcepts:  mockConcepts(domain),
		RelatedLinks: mockLinks(domain),
	}
}

func mockSummary(domain topicDomain) string {
	area := "technology"
	switch domain {
	case domainAI:
		area = "artificial intelligence"
	case domainNLP:
		area = "natural language processing"
	}
	return "This text surveys the core concepts of " + area + " and their practical application. " +
		"It covers the key methods and tools used in the field along with current development trends. " +
		"Particular attention is paid to applying " + area + " in business and research settings. " +
		"The text targets readers with an intermediate background in the subject area."
}

func mockConcepts(domain topicDomain) []KeyConcept {
	switch domain {
	case domainAI:
		return []KeyConcept{
			{Name: "Neural networks", Color: "blue"},
			{Name: "Transformers", Color: "purple"},
			{Name: "Machine learning", Color: "green"},
			{Name: "Generative AI", Color: "yellow"},
			{Name: "AI ethics", Color: "red"},
		}
	case domainNLP:
		return []KeyConcept{
			{Name: "Natural language processing", Color: "blue"},
			{Name: "Sentiment analysis", Color: "purple"},
			{Name: "Multilingual models", Color: "green"},
			{Name: "Language transformers", Color: "yellow"},
			{Name: "Semantic analysis", Color: "red"},
		}
	default:
		return []KeyConcept{
			{Name: "Data analytics", Color: "blue"},
			{Name: "Machine learning", Color: "purple"},
			{Name: "Algorithmic efficiency", Color: "green"},
			{Name: "Digital transformation", Color: "yellow"},
			{Name: "Technology ethics", Color: "red"},
		}
	}
}

func mockLinks(domain topicDomain) []RelatedLink {
	switch domain {
	case domainAI:
		return []RelatedLink{
			{Title: "Foundations of artificial intelligence", URL: "https://example.com/ai-basics"},
			{Title: "Neural networks and deep learning", URL: "https://example.com/neural-networks"},
			{Title: "Ethical problems in AI development", URL: "https://example.com/ai-ethics"},
		}
	case domainNLP:
		return []RelatedLink{
			{Title: "Introduction to natural language processing", URL: "https://example.com/nlp-intro"},
			{Title: "Transformers and language models", URL: "https://example.com/transformers"},
			{Title: "Multilingual text analysis", URL: "https://example.com/multilingual-nlp"},
		}
	default:
		return []RelatedLink{
			{Title: "Introduction to data analysis", URL: "https://example.com/data-analysis-intro"},
			{Title: "Modern information processing technology", URL: "https://example.com/modern-tech"},
			{Title: "Ethical aspects of technology use", URL: "https://example.com/tech-ethics"},
		}
	}
}
