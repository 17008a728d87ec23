package news

import (
	"time"

	"github.com/deusflow/newsdigest/internal/domain"
)

// DemoArticles is the curated set served when no feed delivers. Publish times
// are relative to now: 0h, -1h and -4h.
func DemoArticles(now time.Time) []domain.Article {
	now = now.UTC()
	articles := []domain.Article{
		{
			Title: "Revolutionary AI Technology Transforms Healthcare Diagnosis",
			Description: "New artificial intelligence breakthrough promises to revolutionize medical diagnosis and treatment, " +
				"reducing diagnostic time by 70%. The technology uses advanced machine learning algorithms to analyze medical images and patient data.",
			URL:         "https://example.com/ai-healthcare",
			ImageURL:    "/placeholder.svg?height=400&width=600&text=AI+Healthcare",
			PublishedAt: now,
			Source:      domain.Source{ID: "tech-news", Name: "News18"},
			Author:      "Dr. Sarah Johnson",
			Content: "Revolutionary AI technology is transforming healthcare diagnosis and treatment. The new system uses advanced " +
				"machine learning algorithms to analyze medical images and patient data, providing faster and more accurate diagnoses.",
			Category: "technology",
			Summary: "Scientists have developed new AI technology that can diagnose medical conditions 70% faster than traditional methods. " +
				"This breakthrough could help doctors treat patients more quickly and accurately. The technology is being tested in hospitals across the country.",
			FullContent: "Revolutionary AI technology is transforming healthcare diagnosis and treatment. The new system uses advanced " +
				"machine learning algorithms to analyze medical images and patient data, providing faster and more accurate diagnoses. " +
				"This breakthrough could significantly improve patient outcomes and reduce healthcare costs. The AI system has been trained " +
				"on millions of medical cases and can identify patterns that human doctors might miss. Early trials show promising results " +
				"with 95% accuracy in detecting various conditions. The technology is expected to be rolled out to major hospitals within " +
				"the next two years, potentially saving thousands of lives through earlier detection and treatment.",
		},
		{
			Title: "India Wins Cricket World Cup in Thrilling Final",
			Description: "Team India defeats Australia in a nail-biting finish to claim the Cricket World Cup trophy after 12 years. " +
				"The match went into the final over with both teams giving their best performance.",
			URL:         "https://example.com/cricket-world-cup",
			ImageURL:    "/placeholder.svg?height=400&width=600&text=Cricket+World+Cup",
			PublishedAt: now.Add(-time.Hour),
			Source:      domain.Source{ID: "sports", Name: "News18"},
			Author:      "Sports Reporter",
			Content: "In a thrilling final match that kept fans on the edge of their seats, Team India defeated Australia " +
				"to claim the Cricket World Cup trophy after 12 years.",
			Category: "sports",
			Summary: "India won the Cricket World Cup by beating Australia in an exciting final match. This is India's first " +
				"World Cup victory in 12 years. The team played exceptionally well and made the whole country proud.",
			FullContent: "In a thrilling final match that kept fans on the edge of their seats, Team India defeated Australia to claim " +
				"the Cricket World Cup trophy after 12 years. The match showcased exceptional cricket from both teams, with India ultimately " +
				"emerging victorious in a nail-biting finish. Captain Virat Kohli's brilliant century and the bowling attack's stellar " +
				"performance in the final overs sealed the victory. The entire nation erupted in celebration as India lifted the coveted " +
				"trophy. This victory marks a new chapter in Indian cricket history and establishes the team as a dominant force in world cricket.",
		},
		{
			Title: "Stock Market Reaches All-Time High Amid Economic Recovery",
			Description: "Indian stock markets surge to record levels as investors show confidence in economic growth prospects. " +
				"The BSE Sensex crossed 75,000 points for the first time in history.",
			URL:         "https://example.com/stock-market",
			ImageURL:    "/placeholder.svg?height=400&width=600&text=Stock+Market",
			PublishedAt: now.Add(-4 * time.Hour),
			Source:      domain.Source{ID: "business", Name: "News18"},
			Author:      "Financial Correspondent",
			Content: "The Indian stock market has reached unprecedented heights with the BSE Sensex crossing 75,000 points " +
				"for the first time in history.",
			Category: "business",
			Summary: "Indian stock markets have reached their highest levels ever. Investors are confident about the country's " +
				"economic growth. This shows that the economy is recovering well from previous challenges.",
			FullContent: "The Indian stock market has reached unprecedented heights with the BSE Sensex crossing 75,000 points for " +
				"the first time in history. This surge reflects strong investor confidence in the country's economic recovery and growth " +
				"prospects. Market analysts attribute this growth to strong corporate earnings, positive economic indicators, and increased " +
				"foreign investment. The technology and banking sectors led the rally, with several companies hitting new highs. Experts " +
				"believe this trend will continue as the economy shows signs of robust recovery and the government implements business-friendly policies.",
		},
	}
	for i := range articles {
		articles[i].ID = domain.GenerateID(articles[i].URL)
	}
	return articles
}

func demoResponse(now time.Time, source string) domain.NewsResponse {
	articles := DemoArticles(now)
	return domain.NewsResponse{
		Articles:     articles,
		TotalResults: len(articles),
		Source:       source,
	}
}
