package models

import "time"

// UserInfo is the identity portion of a user, as returned by /exchange.
type UserInfo struct {
	ID      string `json:"id" bson:"id"`
	Email   string `json:"email" bson:"email"`
	Name    string `json:"name" bson:"name"`
	Picture string `json:"picture" bson:"picture"`
}

// User is a stored account with its saved items.
type User struct {
	UserInfo   `bson:",inline"`
	Provider   string    `json:"provider" bson:"provider"`
	Items      []Item    `json:"items" bson:"items"`
	SignupDate time.Time `json:"signupDate" bson:"signup_date"`
}

// Item is a saved product in a user's list.
type Item struct {
	ID      string    `json:"id" bson:"id"`
	Title   string    `json:"title" bson:"title"`
	Image   string    `json:"image" bson:"image"`
	Price   string    `json:"price" bson:"price"`
	URL     string    `json:"url" bson:"url"`
	Source  string    `json:"source" bson:"source"`
	AddedAt time.Time `json:"addedAt" bson:"added_at"`
}

// SignInEvent is one entry in the append-only sign-in log.
type SignInEvent struct {
	Email     string    `json:"email" bson:"email"`
	Action    string    `json:"action" bson:"action"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
