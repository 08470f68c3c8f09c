package model

// Question is a single multiple-choice item. The questions array is fixed
// once the game leaves waiting.
type Question struct {
	Prompt        string   `json:"prompt" bson:"prompt"`
	Options       []string `json:"options" bson:"options"`
	CorrectOption int      `json:"correctOption" bson:"correctOption"`
}
