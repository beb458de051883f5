package catalog

var questionBank = map[string][]Question{
	"road-signs": {
		{
			ID:            "rs-1",
			CategoryID:    "road-signs",
			Prompt:        "What does a circular sign with a red border and white background indicate?",
			Options:       []string{"Give way", "A prohibition or restriction", "A warning", "Information"},
			CorrectAnswer: 1,
			Explanation:   "Circular signs with a red border indicate prohibitions or restrictions. The red border signals that something is not allowed or limited.",
		},
		{
			ID:            "rs-2",
			CategoryID:    "road-signs",
			Prompt:        "What shape are warning signs in the UK?",
			Options:       []string{"Circular", "Rectangular", "Triangular", "Octagonal"},
			CorrectAnswer: 2,
			Explanation:   "Warning signs in the UK are triangular with a red border. They alert drivers to potential hazards ahead.",
		},
		{
			ID:            "rs-3",
			CategoryID:    "road-signs",
			Prompt:        "What does a blue circular sign indicate?",
			Options:       []string{"A warning", "A prohibition", "A positive instruction", "Information only"},
			CorrectAnswer: 2,
			Explanation:   "Blue circular signs give positive instructions, such as 'turn left' or 'minimum speed'. They tell you what you must do.",
		},
	},
	"highway-code": {
		{
			ID:            "hc-1",
			CategoryID:    "highway-code",
			Prompt:        "What is the national speed limit on a single carriageway for cars?",
			Options:       []string{"50 mph", "60 mph", "70 mph", "80 mph"},
			CorrectAnswer: 1,
			Explanation:   "The national speed limit on a single carriageway for cars is 60 mph. On dual carriageways and motorways, it's 70 mph.",
		},
		{
			ID:         "hc-2",
			CategoryID: "highway-code",
			Prompt:     "When should you use your horn?",
			Options: []string{
				"To greet a friend",
				"To warn others of your presence",
				"To show frustration",
				"At any time you wish",
			},
			CorrectAnswer: 1,
			Explanation:   "You should only use your horn to warn others of your presence. It should not be used to express frustration or greet people.",
		},
	},
	"hazard-perception": {
		{
			ID:         "hp-1",
			CategoryID: "hazard-perception",
			Prompt:     "What should you do when approaching a pedestrian crossing with people waiting?",
			Options: []string{
				"Speed up to pass quickly",
				"Sound your horn",
				"Be prepared to stop",
				"Flash your headlights",
			},
			CorrectAnswer: 2,
			Explanation:   "You should always be prepared to stop when approaching a pedestrian crossing with people waiting. They have priority once on the crossing.",
		},
	},
	"vehicle-safety": {
		{
			ID:            "vs-1",
			CategoryID:    "vehicle-safety",
			Prompt:        "How often should you check your tyre pressure?",
			Options:       []string{"Once a year", "Every month", "At least once a week", "Only before MOT"},
			CorrectAnswer: 2,
			Explanation:   "You should check your tyre pressure at least once a week and before any long journey. Correct tyre pressure improves safety and fuel efficiency.",
		},
	},
	"road-markings": {
		{
			ID:         "rm-1",
			CategoryID: "road-markings",
			Prompt:     "What do double white lines in the centre of the road mean?",
			Options: []string{
				"You may overtake if safe",
				"You must not cross or straddle them",
				"They mark a bus lane",
				"They indicate a cycle lane",
			},
			CorrectAnswer: 1,
			Explanation:   "Double white lines where the line nearest you is solid mean you must not cross or straddle them except to turn into a premises or side road.",
		},
	},
}
