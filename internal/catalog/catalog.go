package catalog

import "github.com/sadopc/drivetheory/internal/progress"

type Category struct {
	ID             string
	Title          string
	Description    string
	Color          string
	TotalQuestions int
}

type Question struct {
	ID            string
	CategoryID    string
	Prompt        string
	Options       []string
	CorrectAnswer int
	Explanation   string
}

// Categories is the fixed list of quiz topics, in display order.
var Categories = []Category{
	{
		ID:             "road-signs",
		Title:          "Road Signs",
		Description:    "Learn all UK road signs and their meanings",
		Color:          "#6366F1",
		TotalQuestions: 100,
	},
	{
		ID:             "highway-code",
		Title:          "Highway Code",
		Description:    "Master the rules of the road",
		Color:          "#22C55E",
		TotalQuestions: 150,
	},
	{
		ID:             "hazard-perception",
		Title:          "Hazard Perception",
		Description:    "Identify potential dangers on the road",
		Color:          "#F59E0B",
		TotalQuestions: 75,
	},
	{
		ID:             "vehicle-safety",
		Title:          "Vehicle Safety",
		Description:    "Vehicle maintenance and safety checks",
		Color:          "#EF4444",
		TotalQuestions: 50,
	},
	{
		ID:             "road-markings",
		Title:          "Road Markings",
		Description:    "Understand road markings and lanes",
		Color:          "#8B5CF6",
		TotalQuestions: 60,
	},
}

// Find returns the category with the given id.
func Find(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Seeds converts the catalog into progress seeds.
func Seeds() []progress.CategorySeed {
	seeds := make([]progress.CategorySeed, 0, len(Categories))
	for _, c := range Categories {
		seeds = append(seeds, progress.CategorySeed{ID: c.ID, TotalQuestions: c.TotalQuestions})
	}
	return seeds
}

// Questions returns the question bank for a category, nil if none.
func Questions(categoryID string) []Question {
	return questionBank[categoryID]
}
