package models

// DetailSelection is a structured activity tag attached to an entry,
// stored alongside the body text rather than encoded in it. A DET token
// in the body references a selection by item id.
type DetailSelection struct {
	CategoryID string `json:"category_id" yaml:"category"`
	ItemID     string `json:"item_id" yaml:"item"`
	ItemTitle  string `json:"item_title" yaml:"item_title"`
	Note       string `json:"note,omitempty" yaml:"note,omitempty"`
}

// DetailItem is one selectable item within a category.
type DetailItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// DetailCategory groups related detail items.
type DetailCategory struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Items []DetailItem `json:"items"`
}

// DefaultDetailCategories returns the built-in activity catalog offered by
// the details picker.
func DefaultDetailCategories() []DetailCategory {
	return []DetailCategory{
		{
			ID:    "physical",
			Title: "Physical activity",
			Items: []DetailItem{
				{ID: "walk", Title: "Walk"},
				{ID: "run", Title: "Run"},
				{ID: "gym", Title: "Gym"},
				{ID: "bike", Title: "Cycling"},
				{ID: "hike", Title: "Hiking"},
				{ID: "swim", Title: "Swimming"},
				{ID: "yoga", Title: "Yoga"},
			},
		},
		{
			ID:    "sleep",
			Title: "Sleep",
			Items: []DetailItem{
				{ID: "good_sleep", Title: "Restful"},
				{ID: "bad_sleep", Title: "Poor"},
				{ID: "late", Title: "Late to bed"},
				{ID: "early", Title: "Early to bed"},
				{ID: "nightmares", Title: "Nightmares"},
			},
		},
		{
			ID:    "food",
			Title: "Food & drink",
			Items: []DetailItem{
				{ID: "healthy", Title: "Healthy"},
				{ID: "fastfood", Title: "Fast food"},
				{ID: "coffee", Title: "Coffee"},
				{ID: "sweets", Title: "Sweets"},
				{ID: "alcohol", Title: "Alcohol"},
			},
		},
		{
			ID:    "work",
			Title: "Work & school",
			Items: []DetailItem{
				{ID: "productive", Title: "Productive"},
				{ID: "stress", Title: "Stress"},
				{ID: "deadline", Title: "Deadline"},
				{ID: "meeting", Title: "Meetings"},
			},
		},
		{
			ID:    "social",
			Title: "Social",
			Items: []DetailItem{
				{ID: "friends", Title: "Friends"},
				{ID: "family", Title: "Family"},
				{ID: "date", Title: "Date"},
				{ID: "alone", Title: "Time alone"},
			},
		},
	}
}

// FindDetailItem looks an item up across the default catalog.
func FindDetailItem(itemID string) (DetailCategory, DetailItem, bool) {
	for _, cat := range DefaultDetailCategories() {
		for _, item := range cat.Items {
			if item.ID == itemID {
				return cat, item, true
			}
		}
	}
	return DetailCategory{}, DetailItem{}, false
}
