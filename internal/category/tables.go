package category

// SpecificCategories are the topics a feed can assert without keyword review.
var SpecificCategories = []string{
	"technology",
	"business",
	"sports",
	"entertainment",
	"politics",
	"education",
	"auto",
	"lifestyle",
	"health",
}

// DefaultKeywords is scanned top to bottom; order is the tie-break.
var DefaultKeywords = []Keywords{
	{Category: "technology", Words: []string{
		"tech", "ai", "artificial intelligence", "computer", "software", "digital", "app",
		"smartphone", "innovation", "quantum", "blockchain", "crypto", "data", "internet",
		"cyber", "robot", "automation", "gadget", "device",
	}},
	{Category: "business", Words: []string{
		"business", "economy", "market", "stock", "financial", "company", "corporate",
		"trade", "investment", "revenue", "profit", "earnings", "banking", "finance",
		"economic", "industry", "startup", "ipo", "merger",
	}},
	{Category: "sports", Words: []string{
		"sport", "game", "team", "player", "championship", "olympic", "football",
		"basketball", "soccer", "cricket", "tennis", "golf", "match", "tournament",
		"league", "score", "athlete", "coach", "stadium",
	}},
	{Category: "entertainment", Words: []string{
		"movie", "film", "music", "celebrity", "hollywood", "entertainment", "actor",
		"actress", "concert", "show", "tv", "streaming", "bollywood", "cinema", "series",
		"album", "director", "producer",
	}},
	{Category: "politics", Words: []string{
		"government", "minister", "election", "political", "parliament", "policy", "law",
		"court", "justice", "vote", "democracy", "congress", "party", "campaign",
		"governance", "prime minister", "president",
	}},
	{Category: "health", Words: []string{
		"health", "medical", "doctor", "hospital", "disease", "treatment", "medicine",
		"patient", "healthcare", "wellness", "virus", "vaccine", "therapy", "diagnosis",
		"surgery", "clinic", "pharmaceutical",
	}},
	{Category: "education", Words: []string{
		"education", "school", "university", "student", "teacher", "learning", "study",
		"exam", "academic", "college", "research", "scholarship", "curriculum", "degree",
		"admission", "campus",
	}},
	{Category: "lifestyle", Words: []string{
		"lifestyle", "fashion", "food", "travel", "culture", "art", "beauty", "wellness",
		"recipe", "style", "design", "home", "relationship", "fitness", "yoga", "meditation",
	}},
	{Category: "auto", Words: []string{
		"car", "vehicle", "automotive", "bike", "motorcycle", "transport", "driving", "fuel",
		"engine", "electric vehicle", "ev", "automobile", "traffic", "highway", "racing",
	}},
}
