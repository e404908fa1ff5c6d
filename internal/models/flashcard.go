package models

type Flashcard struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}
